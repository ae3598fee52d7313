// Package registry holds the ordered list of habits.
//
// Order is display order only. Everything that records or aggregates
// completion keys by Habit.ID, so removing or reordering habits never
// reattributes history.
package registry

import (
	"strings"
	"unicode/utf8"

	"github.com/brk3/habitledger/pkg/habit"
	"github.com/google/uuid"
)

const MaxNameLength = 60

type Flusher func(habits []habit.Habit)

type Registry struct {
	habits []habit.Habit
	flush  Flusher
	newID  func() string
}

func New() *Registry {
	return &Registry{newID: func() string { return uuid.New().String() }}
}

func (r *Registry) SetFlusher(f Flusher) {
	r.flush = f
}

// Load replaces the list without flushing.
func (r *Registry) Load(habits []habit.Habit) {
	r.habits = append([]habit.Habit(nil), habits...)
}

// Seed adds each valid name and flushes once.
func (r *Registry) Seed(names []string) {
	for _, n := range names {
		if name, ok := cleanName(n); ok {
			r.habits = append(r.habits, habit.Habit{ID: r.newID(), Name: name})
		}
	}
	r.persist()
}

// Add appends a habit with a fresh id. Empty, blank or over-long names are
// ignored and ok is false.
func (r *Registry) Add(name string) (h habit.Habit, ok bool) {
	name, ok = cleanName(name)
	if !ok {
		return habit.Habit{}, false
	}
	h = habit.Habit{ID: r.newID(), Name: name}
	r.habits = append(r.habits, h)
	r.persist()
	return h, true
}

// Rename reports false when the id is unknown or the name is rejected.
func (r *Registry) Rename(id, name string) bool {
	name, ok := cleanName(name)
	if !ok {
		return false
	}
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.habits[i].Name = name
	r.persist()
	return true
}

// Remove drops the habit from the list. Completion history recorded under
// its id stays in the ledger and is simply never read again.
func (r *Registry) Remove(id string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.habits = append(r.habits[:i], r.habits[i+1:]...)
	r.persist()
	return true
}

func (r *Registry) Get(id string) (habit.Habit, bool) {
	i := r.index(id)
	if i < 0 {
		return habit.Habit{}, false
	}
	return r.habits[i], true
}

func (r *Registry) List() []habit.Habit {
	return append([]habit.Habit{}, r.habits...)
}

func (r *Registry) Len() int {
	return len(r.habits)
}

func (r *Registry) index(id string) int {
	for i := range r.habits {
		if r.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) persist() {
	if r.flush != nil {
		r.flush(r.List())
	}
}

func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", false
	}
	return name, true
}
