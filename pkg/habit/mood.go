package habit

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Mood is a closed set of four ratings plus an explicit unset state.
type Mood int

const (
	MoodUnset Mood = iota
	MoodLow
	MoodMeh
	MoodGood
	MoodGreat
)

var ErrInvalidMood = errors.New("mood must be between 1 and 4")

var moodNames = map[Mood]string{
	MoodUnset: "unset",
	MoodLow:   "low",
	MoodMeh:   "meh",
	MoodGood:  "good",
	MoodGreat: "great",
}

func (m Mood) Valid() bool {
	return m >= MoodUnset && m <= MoodGreat
}

func (m Mood) String() string {
	if name, ok := moodNames[m]; ok {
		return name
	}
	return "mood(" + strconv.Itoa(int(m)) + ")"
}

// ParseMood accepts a number ("3") or a name ("good"). The empty string and
// "unset" clear the mood.
func ParseMood(s string) (Mood, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return MoodUnset, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		m := Mood(n)
		if !m.Valid() {
			return MoodUnset, ErrInvalidMood
		}
		return m, nil
	}
	for m, name := range moodNames {
		if name == s {
			return m, nil
		}
	}
	return MoodUnset, ErrInvalidMood
}

func (m Mood) MarshalJSON() ([]byte, error) {
	if m == MoodUnset {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(m))), nil
}

// UnmarshalJSON reads null, a number, or the quoted numbers older data was
// saved with. Anything out of range decodes as unset so one bad day never
// blocks loading the rest of the ledger.
func (m *Mood) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*m = MoodUnset
	case float64:
		*m = Mood(int(v))
	case string:
		parsed, err := ParseMood(v)
		if err != nil {
			parsed = MoodUnset
		}
		*m = parsed
	default:
		*m = MoodUnset
	}
	if !m.Valid() {
		*m = MoodUnset
	}
	return nil
}
