// Package nudge warns when today's open habits are about to break a streak.
package nudge

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"github.com/brk3/habitledger/internal/logger"
)

// HabitsAtRisk returns the names of habits still open today when a streak
// is running into today and fewer than window remain before midnight in
// now's location. Nil means there is nothing to warn about.
func HabitsAtRisk(ctx context.Context, q Querier, now time.Time, window time.Duration) ([]string, error) {
	today := datekey.Midnight(now)
	left := datekey.AddDays(today, 1).Sub(now)
	if left > window {
		logger.Debug("Streak not yet at risk", "time_left", left, "window", window)
		return nil, nil
	}

	summary, err := q.Day(ctx, datekey.Key(today))
	if err != nil {
		return nil, fmt.Errorf("fetch today: %w", err)
	}
	if summary.Complete || len(summary.Missing) == 0 {
		return nil, nil
	}

	yesterday, err := q.Day(ctx, datekey.Key(datekey.AddDays(today, -1)))
	if err != nil {
		return nil, fmt.Errorf("fetch yesterday: %w", err)
	}
	if yesterday.CurrentStreak == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(summary.Missing))
	for _, h := range summary.Missing {
		names = append(names, h.Name)
	}
	return names, nil
}

// Run checks for habits at risk and sends one nudge if there are any. It
// reports whether a nudge was sent.
func Run(ctx context.Context, q Querier, n Notifier, now time.Time, window time.Duration) (bool, error) {
	habits, err := HabitsAtRisk(ctx, q, now, window)
	if err != nil {
		return false, err
	}
	if len(habits) == 0 {
		logger.Info("No streaks at risk")
		return false, nil
	}
	hours := int(datekey.AddDays(datekey.Midnight(now), 1).Sub(now).Hours())
	if err := n.SendNudge(ctx, habits, hours); err != nil {
		return false, fmt.Errorf("send nudge: %w", err)
	}
	logger.Info("Sent nudge", "habits", len(habits), "hours_left", hours)
	return true, nil
}
