package engine

import (
	"fmt"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"github.com/brk3/habitledger/pkg/habit"
)

// MonthlyBadge awards a badge for year/month when the month ended before
// cursor and every one of its days is complete. The month holding the cursor
// never qualifies, however well it is going.
func (e *Engine) MonthlyBadge(year int, month time.Month, cursor time.Time) *habit.Badge {
	first, last := datekey.MonthBounds(year, month, e.loc)
	if datekey.Key(last) >= datekey.Key(cursor) {
		return nil
	}
	days := datekey.DaysIn(year, month)
	for i := 0; i < days; i++ {
		if !e.IsDayComplete(datekey.AddDays(first, i)) {
			return nil
		}
	}
	tier := tierFor(days)
	return &habit.Badge{
		Year:  year,
		Month: month,
		Tier:  tier,
		Label: badgeLabel(tier, month, year),
	}
}

// TotalBadges scans back from the cursor's month over at most
// MaxBadgeScanMonths months and stops counting at capacity.
func (e *Engine) TotalBadges(cursor time.Time, capacity int) habit.BadgeTally {
	capacity = max(capacity, 0)
	tally := habit.BadgeTally{
		AsOf:     datekey.Key(cursor),
		Capacity: capacity,
		Badges:   []habit.Badge{},
	}
	first := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, e.loc)
	for i := 0; i < MaxBadgeScanMonths && tally.Earned < capacity; i++ {
		m := first.AddDate(0, -i, 0)
		if b := e.MonthlyBadge(m.Year(), m.Month(), cursor); b != nil {
			tally.Badges = append(tally.Badges, *b)
			tally.Earned++
		}
	}
	return tally
}

func tierFor(days int) habit.BadgeTier {
	switch days {
	case 31:
		return habit.TierGold
	case 30:
		return habit.TierSilver
	case 28, 29:
		return habit.TierFebruary
	}
	return habit.TierGeneric
}

func badgeLabel(tier habit.BadgeTier, month time.Month, year int) string {
	switch tier {
	case habit.TierGold:
		return fmt.Sprintf("Gold: all 31 days of %s %d", month, year)
	case habit.TierSilver:
		return fmt.Sprintf("Silver: all 30 days of %s %d", month, year)
	case habit.TierFebruary:
		return fmt.Sprintf("February perfect: %d", year)
	}
	return fmt.Sprintf("Perfect month: %s %d", month, year)
}
