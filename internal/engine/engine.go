// Package engine derives completion statistics from a ledger and a habit list.
//
// Nothing here mutates state or reads the clock: every figure is relative to
// the dates passed in, usually the tracker's view cursor. All methods are
// total. Empty habit lists and empty ledgers give 0, false or nil.
package engine

import (
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"github.com/brk3/habitledger/pkg/habit"
)

// MaxBadgeScanMonths bounds how far back TotalBadges looks.
const MaxBadgeScanMonths = 24

type DayReader interface {
	Lookup(key string) (habit.DayRecord, bool)
	Keys() []string
}

// Days adapts a plain snapshot to DayReader.
type Days map[string]habit.DayRecord

func (d Days) Lookup(key string) (habit.DayRecord, bool) {
	rec, ok := d[key]
	return rec, ok
}

func (d Days) Keys() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	return out
}

type Engine struct {
	days   DayReader
	habits []habit.Habit
	week   datekey.Convention
	loc    *time.Location
}

func New(days DayReader, habits []habit.Habit, week datekey.Convention, loc *time.Location) *Engine {
	if days == nil {
		days = Days{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{days: days, habits: habits, week: week, loc: loc}
}

// IsDayComplete is true when a record exists for the date and every current
// habit is marked done in it.
func (e *Engine) IsDayComplete(t time.Time) bool {
	rec, ok := e.days.Lookup(datekey.Key(t))
	if !ok {
		return false
	}
	for _, h := range e.habits {
		if !rec.Habits[h.ID] {
			return false
		}
	}
	return true
}

func (e *Engine) doneCount(rec habit.DayRecord) int {
	n := 0
	for _, h := range e.habits {
		if rec.Habits[h.ID] {
			n++
		}
	}
	return n
}

// DayProgress is the rounded share of current habits done on t.
func (e *Engine) DayProgress(t time.Time) int {
	rec, ok := e.days.Lookup(datekey.Key(t))
	if !ok {
		return 0
	}
	return percent(e.doneCount(rec), len(e.habits))
}

// Streak counts complete days walking back from t, t included.
func (e *Engine) Streak(t time.Time) int {
	n := 0
	for d := datekey.Midnight(t); e.IsDayComplete(d); d = datekey.AddDays(d, -1) {
		n++
	}
	return n
}

// Summary bundles the per-day figures shown for a single date.
func (e *Engine) Summary(t time.Time) habit.DaySummary {
	key := datekey.Key(t)
	rec, ok := e.days.Lookup(key)
	if !ok {
		rec = habit.NewDayRecord()
	}
	missing := []habit.Habit{}
	for _, h := range e.habits {
		if !rec.Habits[h.ID] {
			missing = append(missing, h)
		}
	}
	return habit.DaySummary{
		Date:          key,
		Record:        rec,
		Progress:      e.DayProgress(t),
		Complete:      e.IsDayComplete(t),
		CurrentStreak: e.Streak(t),
		LongestStreak: e.LongestStreak(t),
		Missing:       missing,
	}
}

// Weekly reports the 7 days of the week containing anchor.
func (e *Engine) Weekly(anchor time.Time) habit.WeeklyStats {
	start := datekey.WeekStart(anchor, e.week)
	out := habit.WeeklyStats{
		Start:     datekey.Key(start),
		End:       datekey.Key(datekey.AddDays(start, 6)),
		WeekStart: e.week.String(),
		Days:      make([]string, 7),
	}

	counts := make([]int, len(e.habits))
	for i := 0; i < 7; i++ {
		d := datekey.AddDays(start, i)
		out.Days[i] = datekey.Key(d)
		out.PerDayComplete[i] = e.IsDayComplete(d)
		out.PerDayProgress[i] = e.DayProgress(d)

		rec, ok := e.days.Lookup(datekey.Key(d))
		if !ok {
			continue
		}
		for j, h := range e.habits {
			if rec.Habits[h.ID] {
				counts[j]++
			}
		}
	}

	out.PerHabit = e.habitPercents(counts, 7)
	return out
}

// Monthly aggregates a calendar month. The overall figure averages habit
// instances (days x habits), not whole days.
func (e *Engine) Monthly(year int, month time.Month) habit.MonthlyStats {
	days := datekey.DaysIn(year, month)
	first, _ := datekey.MonthBounds(year, month, e.loc)

	counts := make([]int, len(e.habits))
	total := 0
	for i := 0; i < days; i++ {
		rec, ok := e.days.Lookup(datekey.Key(datekey.AddDays(first, i)))
		if !ok {
			continue
		}
		for j, h := range e.habits {
			if rec.Habits[h.ID] {
				counts[j]++
				total++
			}
		}
	}

	return habit.MonthlyStats{
		Year:           year,
		Month:          month,
		DaysInMonth:    days,
		OverallPercent: percent(total, days*len(e.habits)),
		PerHabit:       e.habitPercents(counts, days),
		PerWeek:        e.monthWeeks(first, days),
	}
}

// monthWeeks cuts the month into 7-day slices starting on the 1st. The last
// slice holds whatever is left (0 to 3 days after the 28th).
func (e *Engine) monthWeeks(first time.Time, days int) []habit.WeekPercent {
	var out []habit.WeekPercent
	for start, week := 0, 1; start < days; start, week = start+7, week+1 {
		end := min(start+7, days)
		wp := habit.WeekPercent{
			Week:  week,
			Start: datekey.Key(datekey.AddDays(first, start)),
			End:   datekey.Key(datekey.AddDays(first, end-1)),
			Days:  end - start,
		}
		for i := start; i < end; i++ {
			if e.IsDayComplete(datekey.AddDays(first, i)) {
				wp.CompleteDays++
			}
		}
		wp.Percent = percent(wp.CompleteDays, wp.Days)
		out = append(out, wp)
	}
	return out
}

func (e *Engine) habitPercents(counts []int, days int) []habit.HabitPercent {
	out := make([]habit.HabitPercent, len(e.habits))
	for i, h := range e.habits {
		out[i] = habit.HabitPercent{
			HabitID: h.ID,
			Name:    h.Name,
			Days:    counts[i],
			Percent: percent(counts[i], days),
		}
	}
	return out
}

// percent matches JavaScript's Math.round(100*num/den) for non-negative
// inputs: halves round up. Zero denominators give 0.
func percent(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	return (200*num + den) / (2 * den)
}
