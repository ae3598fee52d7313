package datekey

import (
	"testing"
	"time"
)

func TestKey_IndependentOfOffset(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-10", -10*3600),
		time.FixedZone("UTC-5", -5*3600),
		time.FixedZone("UTC+9", 9*3600),
		time.FixedZone("UTC+14", 14*3600),
	}

	for _, loc := range zones {
		late := time.Date(2025, time.June, 1, 23, 30, 0, 0, loc)
		early := time.Date(2025, time.June, 2, 0, 30, 0, 0, loc)

		if got := Key(late); got != "2025-06-01" {
			t.Errorf("%s 23:30: got %s want 2025-06-01", loc, got)
		}
		if got := Key(early); got != "2025-06-02" {
			t.Errorf("%s 00:30: got %s want 2025-06-02", loc, got)
		}
	}
}

func TestKey_UTCFormattingWouldShift(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2026, time.January, 1, 23, 30, 0, 0, loc)

	if late.UTC().Format(Layout) == Key(late) {
		t.Fatal("expected UTC formatting to disagree with the local key near midnight")
	}
	if Key(late) != "2026-01-01" {
		t.Fatalf("got %s want 2026-01-01", Key(late))
	}
}

func TestKey_ZeroPads(t *testing.T) {
	d := time.Date(987, time.March, 4, 12, 0, 0, 0, time.UTC)
	if got := Key(d); got != "0987-03-04" {
		t.Fatalf("got %s", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	d, err := Parse("2024-02-29", loc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Location() != loc || d.Hour() != 0 {
		t.Fatalf("expected midnight in %s, got %s", loc, d)
	}
	if Key(d) != "2024-02-29" {
		t.Fatalf("round trip gave %s", Key(d))
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "2024-13-01", "2023-02-29", "01/02/2024", "2024-1-1"} {
		if _, err := Parse(in, time.UTC); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestWeekStart(t *testing.T) {
	// 2025-06-04 is a Wednesday.
	wed := time.Date(2025, time.June, 4, 15, 45, 0, 0, time.UTC)
	sun := time.Date(2025, time.June, 8, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		conv Convention
		want string
	}{
		{"sunday start, midweek", wed, ConventionSunday, "2025-06-01"},
		{"monday start, midweek", wed, ConventionMonday, "2025-06-02"},
		{"sunday start, on sunday", sun, ConventionSunday, "2025-06-08"},
		{"monday start, on sunday", sun, ConventionMonday, "2025-06-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.in, tt.conv)
			if Key(got) != tt.want {
				t.Fatalf("got %s want %s", Key(got), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Fatalf("expected midnight, got %s", got)
			}
		})
	}
}

func TestAddDays_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// DST starts 2025-03-09 in New York.
	d := time.Date(2025, time.March, 10, 0, 0, 0, 0, loc)
	if got := Key(AddDays(d, -1)); got != "2025-03-09" {
		t.Fatalf("got %s want 2025-03-09", got)
	}
	if got := Key(AddDays(d, -2)); got != "2025-03-08" {
		t.Fatalf("got %s want 2025-03-08", got)
	}
}

func TestDaysIn(t *testing.T) {
	cases := map[string]struct {
		year  int
		month time.Month
		want  int
	}{
		"jan":          {2026, time.January, 31},
		"apr":          {2026, time.April, 30},
		"feb":          {2025, time.February, 28},
		"feb leap":     {2024, time.February, 29},
		"feb non-leap": {1900, time.February, 28},
		"dec":          {2025, time.December, 31},
	}
	for name, c := range cases {
		if got := DaysIn(c.year, c.month); got != c.want {
			t.Errorf("%s: got %d want %d", name, got, c.want)
		}
	}
}

func TestConvention_Text(t *testing.T) {
	var c Convention
	if err := c.UnmarshalText([]byte("Monday")); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if c != ConventionMonday {
		t.Fatalf("got %v", c)
	}
	if err := c.UnmarshalText([]byte("friday")); err == nil {
		t.Fatal("expected error for friday")
	}
	b, _ := ConventionSunday.MarshalText()
	if string(b) != "sunday" {
		t.Fatalf("got %s", b)
	}
}
