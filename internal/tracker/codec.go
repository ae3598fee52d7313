package tracker

import (
	"encoding/json"
	"fmt"

	"github.com/brk3/habitledger/pkg/habit"
)

func encodeHabits(habits []habit.Habit) ([]byte, error) {
	if habits == nil {
		habits = []habit.Habit{}
	}
	return json.Marshal(habits)
}

// decodeHabits accepts the current list of {id, name} objects or the legacy
// list of bare names. For legacy lists, names[i] is the habit that position
// i referred to and habits is nil.
func decodeHabits(data []byte) (habits []habit.Habit, names []string, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode habits: %w", err)
	}
	if len(raw) == 0 {
		return []habit.Habit{}, nil, nil
	}

	var first string
	if json.Unmarshal(raw[0], &first) == nil {
		if err := json.Unmarshal(data, &names); err != nil {
			return nil, nil, fmt.Errorf("decode legacy habit names: %w", err)
		}
		return nil, names, nil
	}

	if err := json.Unmarshal(data, &habits); err != nil {
		return nil, nil, fmt.Errorf("decode habits: %w", err)
	}
	return habits, nil, nil
}

func encodeLedger(days map[string]habit.DayRecord) ([]byte, error) {
	if days == nil {
		days = map[string]habit.DayRecord{}
	}
	return json.Marshal(days)
}

func decodeLedger(data []byte) (map[string]habit.DayRecord, error) {
	days := map[string]habit.DayRecord{}
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	for k, d := range days {
		if d.Habits == nil {
			d.Habits = map[string]bool{}
			days[k] = d
		}
	}
	return days, nil
}
