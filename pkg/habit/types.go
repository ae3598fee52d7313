package habit

import "time"

// Habit is identified by ID. Name is display text only and may change.
type Habit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DayRecord is everything recorded for one calendar date.
type DayRecord struct {
	Habits map[string]bool `json:"habits"`
	Mood   Mood            `json:"mood"`
	Notes  string          `json:"notes"`
}

// NewDayRecord returns the empty record created on first access to a date.
func NewDayRecord() DayRecord {
	return DayRecord{Habits: map[string]bool{}}
}

// Clone returns a deep copy so callers can't mutate ledger state.
func (d DayRecord) Clone() DayRecord {
	out := DayRecord{Habits: make(map[string]bool, len(d.Habits)), Mood: d.Mood, Notes: d.Notes}
	for k, v := range d.Habits {
		out.Habits[k] = v
	}
	return out
}

type DaySummary struct {
	Date          string    `json:"date"`
	Record        DayRecord `json:"record"`
	Progress      int       `json:"progress"`
	Complete      bool      `json:"complete"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	Missing       []Habit   `json:"missing"`
}

type HabitPercent struct {
	HabitID string `json:"habit_id"`
	Name    string `json:"name"`
	Days    int    `json:"days"`
	Percent int    `json:"percent"`
}

type WeeklyStats struct {
	Start          string         `json:"start"`
	End            string         `json:"end"`
	WeekStart      string         `json:"week_start"`
	Days           []string       `json:"days"`
	PerDayComplete [7]bool        `json:"per_day_complete"`
	PerDayProgress [7]int         `json:"per_day_progress"`
	PerHabit       []HabitPercent `json:"per_habit"`
}

// WeekPercent covers one calendar slice of a month, starting on the 1st.
type WeekPercent struct {
	Week         int    `json:"week"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Days         int    `json:"days"`
	CompleteDays int    `json:"complete_days"`
	Percent      int    `json:"percent"`
}

type MonthlyStats struct {
	Year           int            `json:"year"`
	Month          time.Month     `json:"month"`
	DaysInMonth    int            `json:"days_in_month"`
	OverallPercent int            `json:"overall_percent"`
	PerHabit       []HabitPercent `json:"per_habit"`
	PerWeek        []WeekPercent  `json:"per_week"`
	Badge          *Badge         `json:"badge,omitempty"`
}

type BadgeTier string

const (
	TierGold     BadgeTier = "gold"
	TierSilver   BadgeTier = "silver"
	TierFebruary BadgeTier = "february"
	TierGeneric  BadgeTier = "generic"
)

// Badge is awarded for a fully complete calendar month that has already ended.
type Badge struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Tier  BadgeTier  `json:"tier"`
	Label string     `json:"label"`
}

type BadgeTally struct {
	AsOf     string  `json:"as_of"`
	Capacity int     `json:"capacity"`
	Earned   int     `json:"earned"`
	Badges   []Badge `json:"badges"`
}
