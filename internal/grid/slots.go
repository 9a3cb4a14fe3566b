package grid

import (
	"fmt"
	"slices"
	"time"
)

// Slot is a maximal run of same-valued, non-zero cells within one day.
type Slot struct {
	From         time.Time
	To           time.Time
	Weight       int
	Contributors []string // nil unless the grid tracks contributors
}

// Duration returns the length of the slot.
func (s Slot) Duration() time.Duration {
	return s.To.Sub(s.From)
}

// Contains reports whether t falls inside [From, To).
func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.From) && t.Before(s.To)
}

// String returns "2006-01-02 15:04-15:04 xN".
func (s Slot) String() string {
	return fmt.Sprintf("%s %s-%s x%d",
		s.From.Format("2006-01-02"), s.From.Format("15:04"), s.To.Format("15:04"), s.Weight)
}

// ExtractSlots scans the grid day by day and returns every run of equal,
// non-zero cells as a Slot, in day-then-time order.
//
// Runs never cross midnight: a constant run spanning two days is reported
// as one slot per day. The slot's contributor list starts with the names of
// its first cell, followed by any names first seen further along the run.
func (g *Grid) ExtractSlots() []Slot {
	var out []Slot

	for d := 0; d < g.config.Days; d++ {
		prev := 0
		start := 0
		var names []string

		for c := 0; c < ColumnsPerDay; c++ {
			v := g.counts[g.cellIndex(d, c)]
			if v != prev {
				if prev != 0 {
					out = append(out, g.makeSlot(d, start, c, prev, names))
				}
				if v != 0 {
					start = c
					names = g.cellNames(d, c)
				}
				prev = v
				continue
			}
			if v != 0 && g.names != nil {
				names = mergeNames(names, g.names[g.cellIndex(d, c)])
			}
		}

		// Close the run at the end of the day.
		if prev != 0 {
			out = append(out, g.makeSlot(d, start, ColumnsPerDay, prev, names))
		}
	}

	return out
}

func (g *Grid) makeSlot(day, startCol, endCol, weight int, names []string) Slot {
	return Slot{
		From:         g.CellTime(day, startCol),
		To:           g.CellTime(day, endCol),
		Weight:       weight,
		Contributors: names,
	}
}

func (g *Grid) cellNames(day, col int) []string {
	if g.names == nil {
		return nil
	}
	src := g.names[g.cellIndex(day, col)]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// mergeNames appends names from next that are not already in names.
func mergeNames(names, next []string) []string {
	for _, n := range next {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}
