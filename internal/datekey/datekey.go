// Package datekey turns calendar dates into the stable YYYY-MM-DD strings the
// ledger is keyed by, and does the week arithmetic the statistics need.
//
// Keys are always built from the date's own calendar fields. Formatting via
// UTC would move a late-evening date onto the next day for anyone west of
// Greenwich.
package datekey

import (
	"fmt"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// Key returns the YYYY-MM-DD key for t in t's location.
func Key(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// Parse is the inverse of Key: midnight of that calendar date in loc.
func Parse(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves by whole calendar days, so a DST change never lands the
// result on the wrong date.
func AddDays(t time.Time, n int) time.Time {
	return Midnight(t).AddDate(0, 0, n)
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns midnight of the first and last day of the month in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (first, last time.Time) {
	if loc == nil {
		loc = time.Local
	}
	first = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last = time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, loc)
	return first, last
}

// Convention selects which weekday a 7-day window starts on.
type Convention int

const (
	ConventionSunday Convention = iota
	ConventionMonday
)

func (c Convention) String() string {
	if c == ConventionMonday {
		return "monday"
	}
	return "sunday"
}

func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday", "sun":
		return ConventionSunday, nil
	case "monday", "mon":
		return ConventionMonday, nil
	}
	return ConventionSunday, fmt.Errorf("unknown week start %q: want sunday or monday", s)
}

func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Convention) UnmarshalText(text []byte) error {
	parsed, err := ParseConvention(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// WeekStart returns midnight of the first day of the week containing t.
func WeekStart(t time.Time, c Convention) time.Time {
	wd := int(t.Weekday())
	offset := wd
	if c == ConventionMonday {
		if t.Weekday() == time.Sunday {
			offset = 6
		} else {
			offset = wd - 1
		}
	}
	return AddDays(t, -offset)
}
