package nudge

import (
	"context"

	"github.com/brk3/habitledger/pkg/habit"
)

// Querier is the slice of the API client the nudge needs.
type Querier interface {
	Day(ctx context.Context, date string) (*habit.DaySummary, error)
}

type Notifier interface {
	SendNudge(ctx context.Context, habits []string, hoursTillExpiry int) error
}
