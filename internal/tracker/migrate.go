package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"github.com/brk3/habitledger/internal/storage"
	"github.com/brk3/habitledger/pkg/habit"
	"github.com/google/uuid"
)

var newHabitID = func() string { return uuid.New().String() }

type MigrationResult struct {
	Skipped bool
	Reason  string
	Habits  int
	Days    int
}

type migrationMarker struct {
	At     time.Time `json:"at"`
	Habits int       `json:"habits"`
	Days   int       `json:"days"`
}

// Migrate copies the legacy habits and ledger into target once. It does
// nothing when target carries a migration marker or already holds data, in
// which case the marker is written so later runs skip early.
func Migrate(ctx context.Context, legacy, target storage.Store, now time.Time) (MigrationResult, error) {
	_, marked, err := target.Get(ctx, storage.NamespaceMeta, storage.KeyMigrated)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("read migration marker: %w", err)
	}
	if marked {
		return MigrationResult{Skipped: true, Reason: "already migrated"}, nil
	}

	hasData, err := holdsData(ctx, target)
	if err != nil {
		return MigrationResult{}, err
	}
	if hasData {
		if err := writeMarker(ctx, target, migrationMarker{At: now}); err != nil {
			return MigrationResult{}, err
		}
		return MigrationResult{Skipped: true, Reason: "target has data"}, nil
	}

	habitData, foundHabits, err := legacy.Get(ctx, storage.NamespaceHabits, storage.KeyHabits)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("read legacy habits: %w", err)
	}
	ledgerData, foundLedger, err := legacy.Get(ctx, storage.NamespaceLedger, storage.KeyLedger)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("read legacy ledger: %w", err)
	}
	if !foundHabits && !foundLedger {
		return MigrationResult{Skipped: true, Reason: "no legacy data"}, nil
	}

	days := map[string]habit.DayRecord{}
	if foundLedger {
		if days, err = decodeLedger(ledgerData); err != nil {
			return MigrationResult{}, err
		}
	}
	habits := []habit.Habit{}
	if foundHabits {
		var names []string
		if habits, names, err = decodeHabits(habitData); err != nil {
			return MigrationResult{}, err
		}
		if names != nil {
			habits, days = convertLegacy(names, days, newHabitID)
		}
	}

	// Ledger first: holdsData only looks at the habit list, so a failure
	// before it lands makes the next run copy again.
	ledgerData, err = encodeLedger(days)
	if err != nil {
		return MigrationResult{}, err
	}
	if err := target.Set(ctx, storage.NamespaceLedger, storage.KeyLedger, ledgerData); err != nil {
		return MigrationResult{}, fmt.Errorf("write ledger: %w", err)
	}
	if foundHabits {
		habitData, err = encodeHabits(habits)
		if err != nil {
			return MigrationResult{}, err
		}
		if err := target.Set(ctx, storage.NamespaceHabits, storage.KeyHabits, habitData); err != nil {
			return MigrationResult{}, fmt.Errorf("write habits: %w", err)
		}
	}
	m := migrationMarker{At: now, Habits: len(habits), Days: len(days)}
	if err := writeMarker(ctx, target, m); err != nil {
		return MigrationResult{}, err
	}
	return MigrationResult{Habits: m.Habits, Days: m.Days}, nil
}

// holdsData reports whether target already has a habit list. The habit list
// is the last data key an import writes, so a target holding only a ledger
// is a half-finished import and gets copied again.
func holdsData(ctx context.Context, s storage.Store) (bool, error) {
	_, found, err := s.Get(ctx, storage.NamespaceHabits, storage.KeyHabits)
	if err != nil {
		return false, fmt.Errorf("read habits: %w", err)
	}
	return found, nil
}

func writeMarker(ctx context.Context, s storage.Store, m migrationMarker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, storage.NamespaceMeta, storage.KeyMigrated, data); err != nil {
		return fmt.Errorf("write migration marker: %w", err)
	}
	return nil
}

// convertLegacy gives every bare habit name an id and rewrites completion
// keys of the form "{index}-{weekday}" to that id. An entry only counts when
// its weekday (0 = Sunday) matches the date it is stored under; the legacy
// grid wrote all seven columns into every day.
func convertLegacy(names []string, days map[string]habit.DayRecord, newID func() string) ([]habit.Habit, map[string]habit.DayRecord) {
	habits := make([]habit.Habit, 0, len(names))
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = newID()
		habits = append(habits, habit.Habit{ID: ids[i], Name: n})
	}

	out := make(map[string]habit.DayRecord, len(days))
	for key, rec := range days {
		next := habit.DayRecord{Habits: map[string]bool{}, Mood: rec.Mood, Notes: rec.Notes}
		weekday := -1
		if d, err := datekey.Parse(key, time.UTC); err == nil {
			weekday = int(d.Weekday())
		}
		for k, done := range rec.Habits {
			idx, wd, ok := splitPositional(k)
			if !ok || idx >= len(ids) || wd != weekday {
				continue
			}
			next.Habits[ids[idx]] = done
		}
		out[key] = next
	}
	return habits, out
}

func splitPositional(k string) (idx, weekday int, ok bool) {
	a, b, found := strings.Cut(k, "-")
	if !found {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(a)
	if err != nil || idx < 0 {
		return 0, 0, false
	}
	weekday, err = strconv.Atoi(b)
	if err != nil || weekday < 0 || weekday > 6 {
		return 0, 0, false
	}
	return idx, weekday, true
}
