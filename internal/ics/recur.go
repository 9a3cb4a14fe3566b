package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/poll"
)

// Recurring expands an RRULE (e.g. "FREQ=WEEKLY;BYDAY=MO,WE") into
// intervals inside the poll window. Every occurrence spans the clock range
// [from, to) of its date. The rule starts on the first window date.
func Recurring(p *poll.Poll, owner *poll.Guest, rule, from, to string) ([]poll.Interval, error) {
	fromMin, err := dateutil.ParseClock(from)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	toMin, err := dateutil.ParseClock(to)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if fromMin >= toMin {
		return nil, fmt.Errorf("%w: %s-%s is empty", ErrInvalidRule, from, to)
	}

	r, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	r.DTStart(dateutil.At(p.WindowStart, fromMin))

	var set rrule.Set
	set.RRule(r)

	var out []poll.Interval
	for _, occ := range set.Between(p.Start(), p.End().Add(-time.Second), true) {
		day := dateutil.TruncateToDay(occ)
		out = append(out, poll.Interval{
			From:      dateutil.At(day, fromMin),
			To:        dateutil.At(day, toMin),
			OwnerID:   owner.ID,
			OwnerName: owner.Name,
		})
	}
	return out, nil
}
