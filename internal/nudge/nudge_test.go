package nudge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brk3/habitledger/pkg/habit"
	"github.com/google/go-cmp/cmp"
)

var (
	guitar = habit.Habit{ID: "g", Name: "guitar"}
	coding = habit.Habit{ID: "c", Name: "coding"}
)

func atRiskClient() *mockClient {
	return &mockClient{days: map[string]*habit.DaySummary{
		"2025-06-15": {Date: "2025-06-15", Missing: []habit.Habit{guitar, coding}},
		"2025-06-14": {Date: "2025-06-14", Complete: true, CurrentStreak: 3},
	}}
}

func TestHabitsAtRisk(t *testing.T) {
	now := time.Date(2025, 6, 15, 22, 30, 0, 0, time.UTC)
	got, err := HabitsAtRisk(context.Background(), atRiskClient(), now, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"guitar", "coding"}, got); diff != "" {
		t.Fatalf("habits at risk mismatch (-want +got):\n%s", diff)
	}
}

func TestHabitsAtRisk_OutsideWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	got, err := HabitsAtRisk(context.Background(), &mockClient{err: errors.New("must not be called")}, now, 2*time.Hour)
	if err != nil || got != nil {
		t.Fatalf("got %v, %v want nil, nil", got, err)
	}
}

func TestHabitsAtRisk_NoStreak(t *testing.T) {
	c := atRiskClient()
	c.days["2025-06-14"] = &habit.DaySummary{Date: "2025-06-14"}
	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)

	got, err := HabitsAtRisk(context.Background(), c, now, 2*time.Hour)
	if err != nil || got != nil {
		t.Fatalf("got %v, %v want nil, nil", got, err)
	}
}

func TestHabitsAtRisk_TodayDone(t *testing.T) {
	c := atRiskClient()
	c.days["2025-06-15"] = &habit.DaySummary{Date: "2025-06-15", Complete: true}
	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)

	got, err := HabitsAtRisk(context.Background(), c, now, 2*time.Hour)
	if err != nil || got != nil {
		t.Fatalf("got %v, %v want nil, nil", got, err)
	}
}

func TestRun(t *testing.T) {
	n := &mockNotifier{}
	now := time.Date(2025, 6, 15, 21, 0, 0, 0, time.UTC)

	sent, err := Run(context.Background(), atRiskClient(), n, now, 4*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !sent || !n.called {
		t.Fatal("expected a nudge")
	}
	if n.threshold != 3 {
		t.Fatalf("got %d hours want 3", n.threshold)
	}
}

func TestRun_NotifierError(t *testing.T) {
	n := &mockNotifier{err: errors.New("smtp down")}
	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)

	sent, err := Run(context.Background(), atRiskClient(), n, now, time.Hour)
	if err == nil || sent {
		t.Fatalf("got sent=%v err=%v, want failure", sent, err)
	}
}

func TestRun_NothingToSend(t *testing.T) {
	n := &mockNotifier{}
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	sent, err := Run(context.Background(), atRiskClient(), n, now, time.Hour)
	if err != nil || sent || n.called {
		t.Fatalf("got sent=%v err=%v called=%v", sent, err, n.called)
	}
}
