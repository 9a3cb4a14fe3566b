// Package poll defines the scheduling poll domain: a date window, a daily
// time band, guests and the availability intervals they submit.
package poll

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/grid"
)

// Validation errors.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrInvalidBand     = errors.New("day band must be HH:MM-HH:MM on 15-minute boundaries with start before end")
	ErrInvalidWindow   = errors.New("window end must be on or after window start")
	ErrWindowTooLong   = errors.New("window is too long")
	ErrUnknownTimeZone = errors.New("unknown time zone")
	ErrOutsideBand     = errors.New("range is outside the daily band")
)

// Domain errors.
var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrGuestNotFound = errors.New("guest not found")
	ErrAmbiguousID   = errors.New("poll id prefix matches more than one poll")
)

// MaxWindowDays caps the number of dates a poll may cover.
const MaxWindowDays = 62

// Poll is a meeting poll over an inclusive date window.
type Poll struct {
	ID          string
	Title       string
	Host        string
	WindowStart time.Time // midnight of the first date
	WindowEnd   time.Time // midnight of the last date (inclusive)
	DayStart    string    // "HH:MM"
	DayEnd      string    // "HH:MM", "24:00" allowed
	TimeZone    string    // IANA name the window is anchored in
	CreatedAt   time.Time
}

// New creates a poll with validation. The window's location becomes the
// poll's time zone.
func New(title, host string, window dateutil.DateRange, dayStart, dayEnd string, now time.Time) (*Poll, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, ErrEmptyName
	}

	p := &Poll{
		ID:          uuid.NewString(),
		Title:       title,
		Host:        host,
		WindowStart: dateutil.TruncateToDay(window.Start),
		WindowEnd:   dateutil.TruncateToDay(window.End),
		DayStart:    dayStart,
		DayEnd:      dayEnd,
		TimeZone:    window.Start.Location().String(),
		CreatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the window and the daily band.
func (p *Poll) Validate() error {
	if p.WindowEnd.Before(p.WindowStart) {
		return ErrInvalidWindow
	}
	if days := p.Days(); days > MaxWindowDays {
		return fmt.Errorf("%w: %d days (max %d)", ErrWindowTooLong, days, MaxWindowDays)
	}
	if _, _, err := p.Band(); err != nil {
		return err
	}
	return nil
}

// Band returns the daily band as minutes since midnight.
func (p *Poll) Band() (start, end int, err error) {
	start, err = dateutil.ParseClock(p.DayStart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidBand, err)
	}
	end, err = dateutil.ParseClock(p.DayEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidBand, err)
	}
	if start >= end || start%grid.CellMinutes != 0 || end%grid.CellMinutes != 0 {
		return 0, 0, fmt.Errorf("%w: got %s-%s", ErrInvalidBand, p.DayStart, p.DayEnd)
	}
	return start, end, nil
}

// Location loads the poll's time zone.
func (p *Poll) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimeZone, p.TimeZone)
	}
	return loc, nil
}

// Days returns the inclusive number of dates in the window.
func (p *Poll) Days() int {
	return dateutil.DaysBetween(p.WindowStart, p.WindowEnd) + 1
}

// Dates returns every date in the window.
func (p *Poll) Dates() []time.Time {
	return dateutil.DateRange{Start: p.WindowStart, End: p.WindowEnd}.Dates()
}

// Start returns the first instant of the window.
func (p *Poll) Start() time.Time {
	return p.WindowStart
}

// End returns the exclusive end of the window: midnight after the last date.
func (p *Poll) End() time.Time {
	return p.WindowEnd.AddDate(0, 0, 1)
}

// NewGrid returns an empty grid for the poll window. The grid carries one
// extra day so that ranges ending on the window's exclusive end still map.
func (p *Poll) NewGrid(trackContributors bool) (*grid.Grid, error) {
	g, err := grid.New(grid.Config{
		Days:              p.Days() + 1,
		Reference:         p.WindowStart,
		TrackContributors: trackContributors,
	})
	if err != nil {
		return nil, fmt.Errorf("creating grid for poll %s: %w", p.ID, err)
	}
	return g, nil
}

// InBand reports whether [from, to) lies inside the window and inside the
// daily band of a single date.
func (p *Poll) InBand(from, to time.Time) bool {
	if !from.Before(to) || from.Before(p.Start()) || to.After(p.End()) {
		return false
	}
	start, end, err := p.Band()
	if err != nil {
		return false
	}

	loc := p.WindowStart.Location()
	from, to = from.In(loc), to.In(loc)
	day := dateutil.TruncateToDay(from)
	return !from.Before(dateutil.At(day, start)) && !to.After(dateutil.At(day, end))
}

// BandRange returns the band of the given window date as instants.
func (p *Poll) BandRange(date time.Time) (from, to time.Time, err error) {
	start, end, err := p.Band()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	day := dateutil.TruncateToDay(date.In(p.WindowStart.Location()))
	return dateutil.At(day, start), dateutil.At(day, end), nil
}

// ClipSlots trims each slot to the daily band and drops slots that fall
// entirely outside it.
func (p *Poll) ClipSlots(slots []grid.Slot) []grid.Slot {
	var out []grid.Slot
	for _, s := range slots {
		bandFrom, bandTo, err := p.BandRange(s.From)
		if err != nil {
			return nil
		}
		from, to := maxTime(s.From, bandFrom), minTime(s.To, bandTo)
		if !from.Before(to) {
			continue
		}
		s.From, s.To = from, to
		out = append(out, s)
	}
	return out
}

// Guest is a named participant of a poll.
type Guest struct {
	ID        string
	PollID    string
	Name      string
	UpdatedAt time.Time
}

// NewGuest creates a guest with a fresh ID.
func NewGuest(pollID, name string, now time.Time) (*Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Guest{ID: uuid.NewString(), PollID: pollID, Name: name, UpdatedAt: now}, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
