package dateutil

import (
	"errors"
	"testing"
	"time"
)

// Friday, January 10, 2025
var friday = time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, err := ParseDate("2025-01-15", time.UTC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := date(2025, 1, 15); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("uses location", func(t *testing.T) {
		loc := time.FixedZone("UTC-5", -5*60*60)
		got, err := ParseDate("2025-01-15", loc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Location() != loc || got.Hour() != 0 {
			t.Errorf("expected local midnight, got %v", got)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := ParseDate("01-15-2025", time.UTC)
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("got error %v, want %v", err, ErrInvalidDateFormat)
		}
	})
}

func TestNewDateRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart time.Time
		wantEnd   time.Time
		wantDays  int
	}{
		{"explicit range", "2025-01-15", "2025-01-20", date(2025, 1, 15), date(2025, 1, 20), 6},
		{"same day", "2025-01-15", "2025-01-15", date(2025, 1, 15), date(2025, 1, 15), 1},
		{"empty end defaults to start", "2025-01-15", "", date(2025, 1, 15), date(2025, 1, 15), 1},
		{"empty start is today", "", "tomorrow", date(2025, 1, 10), date(2025, 1, 11), 2},
		{"relative keywords", "monday", "next-week", date(2025, 1, 13), date(2025, 1, 17), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, err := NewDateRange(tt.start, tt.end, friday, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !dr.Start.Equal(tt.wantStart) {
				t.Errorf("got start %v, want %v", dr.Start, tt.wantStart)
			}
			if !dr.End.Equal(tt.wantEnd) {
				t.Errorf("got end %v, want %v", dr.End, tt.wantEnd)
			}
			if dr.Days() != tt.wantDays {
				t.Errorf("got %d days, want %d", dr.Days(), tt.wantDays)
			}
			if len(dr.Dates()) != tt.wantDays {
				t.Errorf("got %d dates, want %d", len(dr.Dates()), tt.wantDays)
			}
		})
	}
}

func TestNewDateRange_Errors(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		endDate   string
		wantErr   error
	}{
		{"invalid start date format", "01-15-2025", "", ErrInvalidDateFormat},
		{"invalid end date format", "2025-01-15", "01-20-2025", ErrInvalidDateFormat},
		{"end date before start date", "2025-01-20", "2025-01-15", ErrEndDateBeforeStart},
		{"start in the past", "2024-12-31", "", ErrDateInPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDateRange(tt.startDate, tt.endDate, friday, time.UTC)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRelativeDate(t *testing.T) {
	monday := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		input      string
		relativeTo time.Time
		want       time.Time
		wantErr    error
	}{
		{name: "empty returns today", input: "", relativeTo: friday, want: date(2025, 1, 10)},
		{name: "TODAY uppercase", input: "TODAY", relativeTo: friday, want: date(2025, 1, 10)},
		{name: "tomorrow", input: "tomorrow", relativeTo: friday, want: date(2025, 1, 11)},
		{name: "monday from friday", input: "monday", relativeTo: friday, want: date(2025, 1, 13)},
		{name: "friday from friday is next week", input: "friday", relativeTo: friday, want: date(2025, 1, 17)},
		{name: "monday from monday", input: "monday", relativeTo: monday, want: date(2025, 1, 20)},
		{name: "next-saturday", input: "next-saturday", relativeTo: friday, want: date(2025, 1, 11)},
		{name: "next-week", input: "next-week", relativeTo: friday, want: date(2025, 1, 17)},
		{name: "absolute today", input: "2025-01-10", relativeTo: friday, want: date(2025, 1, 10)},
		{name: "absolute future", input: "2030-12-31", relativeTo: friday, want: date(2030, 12, 31)},
		{name: "whitespace", input: "  monday  ", relativeTo: friday, want: date(2025, 1, 13)},
		{name: "past date", input: "2025-01-09", relativeTo: friday, wantErr: ErrDateInPast},
		{name: "unknown next", input: "next-month", relativeTo: friday, wantErr: ErrInvalidDateFormat},
		{name: "garbage", input: "someday", relativeTo: friday, wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeDate(tt.input, tt.relativeTo)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
	}{
		{"monday", time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)},
		{"wednesday", time.Date(2025, 1, 8, 14, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2025, 1, 12, 23, 59, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMonday, gotSunday := WeekRange(tt.input)
			if !gotMonday.Equal(date(2025, 1, 6)) {
				t.Errorf("monday: got %v", gotMonday)
			}
			if !gotSunday.Equal(date(2025, 1, 12)) {
				t.Errorf("sunday: got %v", gotSunday)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(date(2025, 1, 10), date(2025, 1, 10).Add(23*time.Hour)); got != 0 {
		t.Errorf("same day: got %d, want 0", got)
	}
	if got := DaysBetween(date(2024, 12, 30), date(2025, 1, 2)); got != 3 {
		t.Errorf("across year: got %d, want 3", got)
	}
	if got := DaysBetween(date(2025, 1, 2), date(2024, 12, 30)); got != -3 {
		t.Errorf("backwards: got %d, want -3", got)
	}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	a := time.Date(2025, 3, 8, 0, 0, 0, 0, loc)
	b := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("across DST: got %d, want 2", got)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:15", 555, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{" 08:30 ", 510, false},
		{"24:15", 0, true},
		{"9:00", 0, true},
		{"09:60", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidClockFormat) {
					t.Errorf("ParseClock(%q): expected ErrInvalidClockFormat, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "00:00"},
		{555, "09:15"},
		{1440, "24:00"},
		{-5, "00:00"},
		{2000, "24:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.input); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAt(t *testing.T) {
	got := At(date(2025, 1, 10), 9*60+30)
	want := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := At(date(2025, 1, 10), 24*60); !got.Equal(date(2025, 1, 11)) {
		t.Errorf("24:00 should roll to next midnight, got %v", got)
	}
}

func TestTruncateToDay(t *testing.T) {
	got := TruncateToDay(time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC))
	if want := date(2025, 1, 15); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
