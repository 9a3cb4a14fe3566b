// Package grid implements the quarter-hour availability grid.
//
// A Grid is a matrix of counters with one row per calendar day and one
// column per 15-minute cell. Single-user grids hold 0/1 values and are
// edited with SetRange; aggregate grids accumulate many guests through
// IncrementRange and optionally remember who contributed to each cell.
package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Grid errors.
var (
	ErrOutOfRange   = errors.New("instant outside grid window")
	ErrInvalidRange = errors.New("range start is after range end")
	ErrInvalidValue = errors.New("cell value must be 0 or 1")
	ErrInvalidShape = errors.New("grid needs at least one day")
)

const (
	// CellMinutes is the width of one cell.
	CellMinutes = 15
	// ColumnsPerDay is 24 hours * 4 cells per hour = 96 cells.
	ColumnsPerDay = 96
	// MinutesPerDay is 24 hours * 60 minutes.
	MinutesPerDay = 1440
)

// Config holds the grid shape.
type Config struct {
	Days              int       // Number of rows, fixed for the grid lifetime
	Reference         time.Time // Date of day index 0; its location anchors wall-clock mapping
	TrackContributors bool      // Keep a name list per cell (aggregate grids)
}

// Grid is a days x 96 matrix of cell counts.
// Cells are stored row-major so that a time range maps to one contiguous run.
type Grid struct {
	config Config
	ref    time.Time  // local midnight of config.Reference
	counts []int      // len = Days * ColumnsPerDay
	names  [][]string // nil unless TrackContributors
}

// New creates an empty grid of the configured shape.
// Callers sizing a grid for an N-day window should pass N+1 days so that
// ranges touching the exclusive end boundary still map inside the grid.
func New(config Config) (*Grid, error) {
	if config.Days < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShape, config.Days)
	}
	ref := config.Reference
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: reference date is required", ErrInvalidShape)
	}

	g := &Grid{
		config: config,
		ref:    time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()),
		counts: make([]int, config.Days*ColumnsPerDay),
	}
	if config.TrackContributors {
		g.names = make([][]string, len(g.counts))
	}
	return g, nil
}

// Config returns the grid configuration.
func (g *Grid) Config() Config {
	return g.config
}

// Days returns the number of rows.
func (g *Grid) Days() int {
	return g.config.Days
}

// Reference returns local midnight of day 0.
func (g *Grid) Reference() time.Time {
	return g.ref
}

// Location returns the time zone used for wall-clock mapping.
func (g *Grid) Location() *time.Location {
	return g.ref.Location()
}

// TracksContributors reports whether cells keep contributor names.
func (g *Grid) TracksContributors() bool {
	return g.names != nil
}

func (g *Grid) cellIndex(day, col int) int {
	return day*ColumnsPerDay + col
}

func (g *Grid) isValidPosition(day, col int) bool {
	return day >= 0 && day < g.config.Days && col >= 0 && col < ColumnsPerDay
}

// IndexOf maps an instant to its (day, column) cell.
// The day index counts calendar days since the reference date and the
// column is minutes since local midnight divided by CellMinutes.
func (g *Grid) IndexOf(t time.Time) (day, col int, err error) {
	local := t.In(g.ref.Location())
	day = daysBetween(g.ref, local)
	col = (local.Hour()*60 + local.Minute()) / CellMinutes

	if !g.isValidPosition(day, col) {
		return 0, 0, fmt.Errorf("%w: %s maps to day %d column %d (grid has %d days)",
			ErrOutOfRange, local.Format(time.RFC3339), day, col, g.config.Days)
	}
	return day, col, nil
}

// CellTime returns the wall-clock start of a cell.
// Columns past the end of a day roll into the next day, so CellTime(d, 96)
// is midnight of day d+1.
func (g *Grid) CellTime(day, col int) time.Time {
	return time.Date(g.ref.Year(), g.ref.Month(), g.ref.Day()+day, 0, col*CellMinutes, 0, 0, g.ref.Location())
}

// Count returns the value of a cell, or 0 if the position is outside the grid.
func (g *Grid) Count(day, col int) int {
	if !g.isValidPosition(day, col) {
		return 0
	}
	return g.counts[g.cellIndex(day, col)]
}

// Contributors returns a copy of the names recorded for a cell.
// It returns nil when tracking is disabled or the position is invalid.
func (g *Grid) Contributors(day, col int) []string {
	if g.names == nil || !g.isValidPosition(day, col) {
		return nil
	}
	names := g.names[g.cellIndex(day, col)]
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// IsOccupied reports whether the cell containing t has a non-zero count.
func (g *Grid) IsOccupied(t time.Time) (bool, error) {
	day, col, err := g.IndexOf(t)
	if err != nil {
		return false, err
	}
	return g.counts[g.cellIndex(day, col)] != 0, nil
}

// cellRange converts the half-open range [from, to) into an inclusive run
// of flat cell indices. The end is mapped from the last instant before to,
// so a range ending on a cell boundary does not spill into the next cell
// and a sub-minute range still covers its cell. An empty range returns
// last < first.
func (g *Grid) cellRange(from, to time.Time) (first, last int, err error) {
	if from.After(to) {
		return 0, -1, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	fromDay, fromCol, err := g.IndexOf(from)
	if err != nil {
		return 0, -1, err
	}
	first = g.cellIndex(fromDay, fromCol)
	if from.Equal(to) {
		return first, first - 1, nil
	}

	toDay, toCol, err := g.IndexOf(to.Add(-time.Nanosecond))
	if err != nil {
		return 0, -1, err
	}
	return first, g.cellIndex(toDay, toCol), nil
}

// SetRange assigns value (0 or 1) to every cell covered by [from, to).
// Both endpoints are validated before any cell changes. On grids that track
// contributors the touched cells lose their names.
func (g *Grid) SetRange(from, to time.Time, value int) error {
	if value != 0 && value != 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidValue, value)
	}

	first, last, err := g.cellRange(from, to)
	if err != nil {
		return err
	}

	for i := first; i <= last; i++ {
		g.counts[i] = value
		if g.names != nil {
			g.names[i] = nil
		}
	}
	return nil
}

// IncrementRange adds one to every cell covered by [from, to) and, when
// tracking is enabled, appends name to each of those cells.
// Aggregate grids are never decremented; rebuild them instead.
func (g *Grid) IncrementRange(from, to time.Time, name string) error {
	first, last, err := g.cellRange(from, to)
	if err != nil {
		return err
	}

	for i := first; i <= last; i++ {
		g.counts[i]++
		if g.names != nil {
			g.names[i] = append(g.names[i], name)
		}
	}
	return nil
}

// Clear resets every cell to 0 and drops contributor names.
func (g *Grid) Clear() {
	clear(g.counts)
	if g.names != nil {
		for i := range g.names {
			g.names[i] = nil
		}
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		config: g.config,
		ref:    g.ref,
		counts: make([]int, len(g.counts)),
	}
	copy(out.counts, g.counts)
	if g.names != nil {
		out.names = make([][]string, len(g.names))
		for i, names := range g.names {
			if len(names) > 0 {
				out.names[i] = append([]string(nil), names...)
			}
		}
	}
	return out
}

// Equal reports whether two grids have the same shape and counts.
// Contributor names are not compared.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.config.Days != other.config.Days || !g.ref.Equal(other.ref) {
		return false
	}
	for i, v := range g.counts {
		if other.counts[i] != v {
			return false
		}
	}
	return true
}

// daysBetween counts calendar days from ref to t, both in ref's location.
// Comparing dates at UTC noon keeps DST shifts out of the result.
func daysBetween(ref, t time.Time) int {
	a := time.Date(ref.Year(), ref.Month(), ref.Day(), 12, 0, 0, 0, time.UTC)
	b := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ============================================================================
// Debug/Print Helpers
// ============================================================================

// PrintDay returns one character per cell for a day: '-' for empty cells,
// the count for 1-9 and '+' for anything larger.
func (g *Grid) PrintDay(day int) string {
	if day < 0 || day >= g.config.Days {
		return ""
	}

	var sb strings.Builder
	for c := 0; c < ColumnsPerDay; c++ {
		v := g.counts[g.cellIndex(day, c)]
		switch {
		case v == 0:
			sb.WriteByte('-')
		case v < 10:
			sb.WriteByte(byte('0' + v))
		default:
			sb.WriteByte('+')
		}
	}
	return sb.String()
}

// String returns all days joined by "|".
func (g *Grid) String() string {
	parts := make([]string, 0, g.config.Days)
	for d := 0; d < g.config.Days; d++ {
		parts = append(parts, g.PrintDay(d))
	}
	return strings.Join(parts, "|")
}
