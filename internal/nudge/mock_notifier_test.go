package nudge

import (
	"context"
	"fmt"

	"github.com/brk3/habitledger/pkg/habit"
)

type mockNotifier struct {
	called    bool
	habits    []string
	threshold int
	err       error
}

func (m *mockNotifier) SendNudge(_ context.Context, habits []string, hoursTillExpiry int) error {
	m.called = true
	m.habits = habits
	m.threshold = hoursTillExpiry
	return m.err
}

type mockClient struct {
	days map[string]*habit.DaySummary
	err  error
}

func (f *mockClient) Day(_ context.Context, date string) (*habit.DaySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.days[date]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("no day %s", date)
}
