// Package ics converts between iCalendar data and poll availability.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/poll"
)

// Errors.
var (
	ErrEmptyCalendar = errors.New("calendar has no events")
	ErrInvalidRule   = errors.New("invalid recurrence rule")
)

// ProductID identifies calendars written by huddle.
const ProductID = "-//huddle//availability//EN"

// Export writes one VEVENT per slot. The summary carries the poll title and
// the slot weight; the description lists contributors when known.
func Export(w io.Writer, p *poll.Poll, slots []grid.Slot, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetName(p.Title)

	for _, s := range slots {
		ev := cal.AddEvent(eventUID(p, s))
		ev.SetDtStampTime(now)
		ev.SetStartAt(s.From)
		ev.SetEndAt(s.To)
		ev.SetSummary(fmt.Sprintf("%s (%d available)", p.Title, s.Weight))
		if len(s.Contributors) > 0 {
			ev.SetDescription("Available: " + strings.Join(s.Contributors, ", "))
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func eventUID(p *poll.Poll, s grid.Slot) string {
	return fmt.Sprintf("%s-%d@huddle", p.ID, s.From.Unix())
}
