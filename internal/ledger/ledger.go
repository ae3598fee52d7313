// Package ledger keeps the in-memory map from date key to DayRecord.
//
// The map is authoritative for the life of the process. Every mutation hands
// a full snapshot to the installed Flusher, which is how the ledger reaches
// storage.
package ledger

import (
	"github.com/brk3/habitledger/pkg/habit"
)

type Flusher func(days map[string]habit.DayRecord)

type Ledger struct {
	days  map[string]*habit.DayRecord
	flush Flusher
}

func New() *Ledger {
	return &Ledger{days: map[string]*habit.DayRecord{}}
}

// Load replaces the contents with days. It does not flush.
func (l *Ledger) Load(days map[string]habit.DayRecord) {
	l.days = make(map[string]*habit.DayRecord, len(days))
	for k, d := range days {
		rec := d.Clone()
		l.days[k] = &rec
	}
}

func (l *Ledger) SetFlusher(f Flusher) {
	l.flush = f
}

// Ensure returns the record for key, creating an empty one on first access.
// It never overwrites an existing record.
func (l *Ledger) Ensure(key string) *habit.DayRecord {
	if rec, ok := l.days[key]; ok {
		return rec
	}
	rec := habit.NewDayRecord()
	l.days[key] = &rec
	return &rec
}

// Lookup reads without creating.
func (l *Ledger) Lookup(key string) (habit.DayRecord, bool) {
	rec, ok := l.days[key]
	if !ok {
		return habit.DayRecord{}, false
	}
	return rec.Clone(), true
}

// ToggleHabit flips the habit for key (missing counts as false) and returns
// the new value.
func (l *Ledger) ToggleHabit(key, habitID string) bool {
	rec := l.Ensure(key)
	next := !rec.Habits[habitID]
	rec.Habits[habitID] = next
	l.persist()
	return next
}

func (l *Ledger) SetMood(key string, m habit.Mood) error {
	if !m.Valid() {
		return habit.ErrInvalidMood
	}
	l.Ensure(key).Mood = m
	l.persist()
	return nil
}

func (l *Ledger) SetNotes(key, text string) {
	l.Ensure(key).Notes = text
	l.persist()
}

// ResetDay discards everything recorded for key but keeps the key.
func (l *Ledger) ResetDay(key string) {
	rec := habit.NewDayRecord()
	l.days[key] = &rec
	l.persist()
}

func (l *Ledger) WipeAll() {
	l.days = map[string]*habit.DayRecord{}
	l.persist()
}

func (l *Ledger) Len() int {
	return len(l.days)
}

// Snapshot returns a deep copy of every record.
func (l *Ledger) Snapshot() map[string]habit.DayRecord {
	out := make(map[string]habit.DayRecord, len(l.days))
	for k, rec := range l.days {
		out[k] = rec.Clone()
	}
	return out
}

func (l *Ledger) persist() {
	if l.flush != nil {
		l.flush(l.Snapshot())
	}
}

// Keys returns every date key with a record, in no particular order.
func (l *Ledger) Keys() []string {
	out := make([]string, 0, len(l.days))
	for k := range l.days {
		out = append(out, k)
	}
	return out
}
