package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/huddle/internal/poll"
)

// ImportOptions controls how calendar events become intervals.
type ImportOptions struct {
	Owner    *poll.Guest
	Location *time.Location // for floating and all-day values; defaults to time.Local

	// Recurring events are expanded inside [WindowStart, WindowEnd).
	// With a zero window only the first occurrence is used.
	WindowStart time.Time
	WindowEnd   time.Time
}

// Import reads VEVENTs and returns them as intervals owned by opts.Owner,
// ordered as they appear. Events without an end or with a non-positive
// length are skipped. All-day events cover whole days.
func Import(r io.Reader, opts ImportOptions) ([]poll.Interval, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, ErrEmptyCalendar
	}

	var out []poll.Interval
	for _, ve := range events {
		start, end, ok := eventSpan(ve, opts.Location)
		if !ok {
			continue
		}

		for _, occ := range occurrences(ve, start, opts) {
			out = append(out, poll.Interval{
				From:      occ,
				To:        occ.Add(end.Sub(start)),
				OwnerID:   opts.Owner.ID,
				OwnerName: opts.Owner.Name,
			})
		}
	}
	return out, nil
}

// eventSpan returns the event's first occurrence.
func eventSpan(ve *ical.VEvent, loc *time.Location) (start, end time.Time, ok bool) {
	if allDay(ve) {
		day, err := parseDate(ve.GetProperty(ical.ComponentPropertyDtStart).Value, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		end = day.AddDate(0, 0, 1)
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			if e, err := parseDate(p.Value, loc); err == nil && e.After(day) {
				end = e
			}
		}
		return day, end, true
	}

	start, err := instant(ve, ical.ComponentPropertyDtStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = instant(ve, ical.ComponentPropertyDtEnd, loc)
	if err != nil || !start.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// instant reads a DATE-TIME property. Floating values (no TZID, no Z) are
// read in loc instead of the process-local zone.
func instant(ve *ical.VEvent, prop ical.ComponentProperty, loc *time.Location) (time.Time, error) {
	p := ve.GetProperty(prop)
	if p == nil {
		return time.Time{}, fmt.Errorf("missing %s", prop)
	}
	_, hasTZ := p.ICalParameters["TZID"]
	if !hasTZ && !strings.HasSuffix(p.Value, "Z") {
		return time.ParseInLocation("20060102T150405", strings.TrimSpace(p.Value), loc)
	}

	var (
		t   time.Time
		err error
	)
	if prop == ical.ComponentPropertyDtEnd {
		t, err = ve.GetEndAt()
	} else {
		t, err = ve.GetStartAt()
	}
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// occurrences expands an RRULE inside the import window.
func occurrences(ve *ical.VEvent, start time.Time, opts ImportOptions) []time.Time {
	prop := ve.GetProperty(ical.ComponentPropertyRrule)
	if prop == nil || opts.WindowStart.IsZero() || opts.WindowEnd.IsZero() {
		return []time.Time{start}
	}

	rule, err := rrule.StrToRRule(strings.TrimPrefix(prop.Value, "RRULE:"))
	if err != nil {
		return []time.Time{start}
	}
	rule.DTStart(start)

	var set rrule.Set
	set.RRule(rule)
	return set.Between(opts.WindowStart, opts.WindowEnd, true)
}

// allDay reports VALUE=DATE or a DTSTART without a time part.
func allDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseDate(v string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("20060102", strings.TrimSpace(v), loc)
}
