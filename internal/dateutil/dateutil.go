// Package dateutil provides date and clock parsing for poll windows.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidClockFormat = errors.New("time must be in HH:MM format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrDateInPast         = errors.New("date is in the past")
)

// DateLayout is the on-disk and CLI date format.
const DateLayout = "2006-01-02"

var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DateRange is an inclusive range of calendar dates, both at local midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of dates in the range, counting both ends.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Dates returns every date in the range.
func (r DateRange) Dates() []time.Time {
	n := r.Days()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Start.AddDate(0, 0, i))
	}
	return out
}

// NewDateRange parses an inclusive range in loc.
// Both inputs accept anything ParseRelativeDate accepts. An empty end
// defaults to the start date.
func NewDateRange(startDate, endDate string, now time.Time, loc *time.Location) (DateRange, error) {
	now = now.In(loc)
	start, err := ParseRelativeDate(startDate, now)
	if err != nil {
		return DateRange{}, fmt.Errorf("start: %w", err)
	}

	end := start
	if endDate != "" {
		end, err = ParseRelativeDate(endDate, now)
		if err != nil {
			return DateRange{}, fmt.Errorf("end: %w", err)
		}
	}

	if end.Before(start) {
		return DateRange{}, ErrEndDateBeforeStart
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "next-week"
//   - Weekday names: "monday" through "sunday" (next occurrence, always future)
//   - Next prefixed: "next-monday" through "next-sunday"
//
// Results are midnight in relativeTo's location.
// Returns ErrDateInPast for absolute dates before relativeTo's day.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	}

	if name, ok := strings.CutPrefix(input, "next-"); ok {
		if target, ok := weekdayMap[name]; ok {
			return nextWeekday(today, target), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}
	if target, ok := weekdayMap[input]; ok {
		return nextWeekday(today, target), nil
	}

	result, err := ParseDate(input, relativeTo.Location())
	if err != nil {
		return time.Time{}, err
	}
	if result.Before(today) {
		return time.Time{}, ErrDateInPast
	}
	return result, nil
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b. DST shifts do not affect
// the result.
func DaysBetween(a, b time.Time) int {
	x := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	y := time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(y.Sub(x).Hours() / 24)
}

// ParseClock converts "HH:MM" to minutes since midnight.
// "24:00" is accepted as the end of the day.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' || !isDigits(s[0:2]) || !isDigits(s[3:5]) {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidClockFormat, s)
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	mins := int(s[3]-'0')*10 + int(s[4]-'0')
	if mins > 59 || hours > 24 || (hours == 24 && mins != 0) {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidClockFormat, s)
	}
	return hours*60 + mins, nil
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m > 24*60 {
		m = 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// At returns the instant minutes after midnight of date, in date's location.
func At(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, minutes, 0, 0, date.Location())
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
