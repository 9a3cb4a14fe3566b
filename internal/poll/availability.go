package poll

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/javiermolinar/huddle/internal/grid"
)

// Interval is one guest's available range [From, To).
type Interval struct {
	From      time.Time
	To        time.Time
	OwnerID   string
	OwnerName string
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.To.Sub(iv.From)
}

// clip limits iv to the poll window. ok is false when nothing is left.
func (p *Poll) clip(iv Interval) (Interval, bool) {
	iv.From = maxTime(iv.From, p.Start())
	iv.To = minTime(iv.To, p.End())
	return iv, iv.From.Before(iv.To)
}

// BuildAggregate builds a contributor-tracking grid from every interval
// except those owned by excludeOwnerID. Pass "" to include everyone.
// Intervals are clipped to the window; fully outside ones are skipped.
func BuildAggregate(p *Poll, intervals []Interval, excludeOwnerID string) (*grid.Grid, error) {
	g, err := p.NewGrid(true)
	if err != nil {
		return nil, err
	}

	for _, iv := range intervals {
		if excludeOwnerID != "" && iv.OwnerID == excludeOwnerID {
			continue
		}
		iv, ok := p.clip(iv)
		if !ok {
			continue
		}
		if err := g.IncrementRange(iv.From, iv.To, iv.OwnerName); err != nil {
			return nil, fmt.Errorf("adding %s's availability: %w", iv.OwnerName, err)
		}
	}
	return g, nil
}

// BuildOwn builds an editable 0/1 grid seeded with the given intervals.
func BuildOwn(p *Poll, intervals []Interval) (*grid.Grid, error) {
	g, err := p.NewGrid(false)
	if err != nil {
		return nil, err
	}

	for _, iv := range intervals {
		iv, ok := p.clip(iv)
		if !ok {
			continue
		}
		if err := g.SetRange(iv.From, iv.To, 1); err != nil {
			return nil, fmt.Errorf("seeding availability: %w", err)
		}
	}
	return g, nil
}

// IntervalsFromSlots converts extracted slots into intervals owned by g.
// Slots that touch end to start are joined, so a range split at midnight
// is stored as one interval.
func IntervalsFromSlots(slots []grid.Slot, g *Guest) []Interval {
	var out []Interval
	for _, s := range slots {
		if n := len(out); n > 0 && out[n-1].To.Equal(s.From) {
			out[n-1].To = s.To
			continue
		}
		out = append(out, Interval{From: s.From, To: s.To, OwnerID: g.ID, OwnerName: g.Name})
	}
	return out
}

// Rank returns slots with Weight >= minWeight, best first: higher weight,
// then longer duration, then earlier start.
func Rank(slots []grid.Slot, minWeight int) []grid.Slot {
	out := make([]grid.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Weight >= minWeight {
			out = append(out, s)
		}
	}

	slices.SortStableFunc(out, func(a, b grid.Slot) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Duration(), a.Duration()); c != 0 {
			return c
		}
		return a.From.Compare(b.From)
	})
	return out
}

// Full returns the slots every one of total guests can attend.
func Full(slots []grid.Slot, total int) []grid.Slot {
	if total <= 0 {
		return nil
	}
	var out []grid.Slot
	for _, s := range slots {
		if s.Weight >= total {
			out = append(out, s)
		}
	}
	return out
}

// FreeIn returns the parts of the poll's daily band not covered by busy,
// owned by g. Busy ranges outside the window are ignored.
func FreeIn(p *Poll, busy []Interval, g *Guest) ([]Interval, error) {
	own, err := p.NewGrid(false)
	if err != nil {
		return nil, err
	}

	for _, date := range p.Dates() {
		from, to, err := p.BandRange(date)
		if err != nil {
			return nil, err
		}
		if err := own.SetRange(from, to, 1); err != nil {
			return nil, fmt.Errorf("filling band: %w", err)
		}
	}
	for _, iv := range busy {
		iv, ok := p.clip(iv)
		if !ok {
			continue
		}
		if err := own.SetRange(iv.From, iv.To, 0); err != nil {
			return nil, fmt.Errorf("removing busy range: %w", err)
		}
	}

	return IntervalsFromSlots(own.ExtractSlots(), g), nil
}
