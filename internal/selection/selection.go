// Package selection turns pointer drag gestures into grid edits.
//
// A gesture starts over a cell, moves across others, and ends with a
// commit or a cancel. The create/delete intent is decided once per gesture
// from the cell under the anchor and then held until the gesture finishes.
package selection

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/huddle/internal/grid"
)

// Controller errors.
var (
	ErrGestureActive = errors.New("a gesture is already in progress")
	ErrNoGesture     = errors.New("no gesture in progress")
)

// Mode is the latched intent of a gesture.
type Mode int

const (
	ModeUnset Mode = iota
	ModeCreating
	ModeDeleting
)

func (m Mode) String() string {
	switch m {
	case ModeCreating:
		return "creating"
	case ModeDeleting:
		return "deleting"
	default:
		return "unset"
	}
}

// value is the cell value committed for the mode.
func (m Mode) value() int {
	if m == ModeCreating {
		return 1
	}
	return 0
}

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePreviewingCreate
	StatePreviewingDelete
)

func (s State) String() string {
	switch s {
	case StatePreviewingCreate:
		return "previewing-create"
	case StatePreviewingDelete:
		return "previewing-delete"
	default:
		return "idle"
	}
}

// Gesture is the in-flight drag. The zero value is "no gesture".
type Gesture struct {
	Active  bool
	Mode    Mode
	Anchor  time.Time // instant where the gesture started
	Current time.Time // latest pointer instant
}

// Shape decides how a gesture that crosses day columns is read.
type Shape int

const (
	// ShapeSpan selects one chronological run from anchor to pointer.
	ShapeSpan Shape = iota
	// ShapeBlock selects the same time-of-day rows on every day between
	// the anchor and the pointer.
	ShapeBlock
)

// Range is one half-open [From, To) range of a selection.
type Range struct {
	From time.Time
	To   time.Time
}

// Preview is the uncommitted selection shown while dragging. From and To
// bound the whole selection; Ranges is what End commits, one range per
// day column for block gestures.
type Preview struct {
	From   time.Time
	To     time.Time
	Mode   Mode
	Ranges []Range
}

// Contains reports whether at falls inside one of the preview ranges.
func (p Preview) Contains(at time.Time) bool {
	for _, r := range p.Ranges {
		if !at.Before(r.From) && at.Before(r.To) {
			return true
		}
	}
	return false
}

// Option configures a Controller.
type Option func(*Controller)

// WithShape sets how multi-day gestures are read. The default is ShapeSpan.
func WithShape(s Shape) Option {
	return func(c *Controller) { c.shape = s }
}

// Controller owns one editable grid and the current gesture.
// It is not safe for concurrent use.
type Controller struct {
	grid    *grid.Grid
	shape   Shape
	gesture Gesture
	preview *Preview
}

// NewController creates a controller editing g.
func NewController(g *grid.Grid, opts ...Option) *Controller {
	c := &Controller{grid: g}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Grid returns the grid being edited.
func (c *Controller) Grid() *grid.Grid {
	return c.grid
}

// Gesture returns a copy of the in-flight gesture.
func (c *Controller) Gesture() Gesture {
	return c.gesture
}

// Preview returns the current preview, if any.
func (c *Controller) Preview() (Preview, bool) {
	if c.preview == nil {
		return Preview{}, false
	}
	return *c.preview, true
}

// State derives the lifecycle state from the gesture.
// A started gesture with no preview yet is still idle from the caller's view.
func (c *Controller) State() State {
	if !c.gesture.Active {
		return StateIdle
	}
	switch c.gesture.Mode {
	case ModeCreating:
		return StatePreviewingCreate
	case ModeDeleting:
		return StatePreviewingDelete
	default:
		return StateIdle
	}
}

// Start begins a gesture at the given instant. The latch is unset until
// the first Move or End computes a preview.
func (c *Controller) Start(at time.Time) error {
	if c.gesture.Active {
		return ErrGestureActive
	}
	if _, _, err := c.grid.IndexOf(at); err != nil {
		return fmt.Errorf("start gesture: %w", err)
	}

	c.gesture = Gesture{Active: true, Anchor: at, Current: at}
	c.preview = nil
	return nil
}

// Move updates the gesture with a new pointer instant and returns the
// preview range. The grid is not modified.
func (c *Controller) Move(at time.Time) (Preview, error) {
	if !c.gesture.Active {
		return Preview{}, ErrNoGesture
	}

	next, preview, err := c.gesture.advance(c.grid, c.shape, at)
	if err != nil {
		return Preview{}, fmt.Errorf("move gesture: %w", err)
	}
	c.gesture = next
	c.preview = &preview
	return preview, nil
}

// End commits the gesture to the grid and returns the grid's slots.
// A gesture that never moved commits the single anchor cell. The latch
// and preview are reset whether or not the commit succeeds.
func (c *Controller) End() ([]grid.Slot, error) {
	if !c.gesture.Active {
		return nil, ErrNoGesture
	}
	defer c.reset()

	_, preview, err := c.gesture.advance(c.grid, c.shape, c.gesture.Current)
	if err != nil {
		return nil, fmt.Errorf("end gesture: %w", err)
	}
	for _, r := range preview.Ranges {
		if err := c.grid.SetRange(r.From, r.To, preview.Mode.value()); err != nil {
			return nil, fmt.Errorf("commit %s: %w", preview.Mode, err)
		}
	}
	return c.grid.ExtractSlots(), nil
}

// CancelOutside discards the gesture without touching the grid.
// It is a no-op when no gesture is active.
func (c *Controller) CancelOutside() {
	c.reset()
}

func (c *Controller) reset() {
	c.gesture = Gesture{}
	c.preview = nil
}

// advance returns the gesture moved to at, with the mode latched from the
// anchor cell if it was still unset, and the resulting preview.
func (g Gesture) advance(gr *grid.Grid, shape Shape, at time.Time) (Gesture, Preview, error) {
	mode := g.Mode
	if mode == ModeUnset {
		occupied, err := gr.IsOccupied(g.Anchor)
		if err != nil {
			return g, Preview{}, err
		}
		mode = ModeCreating
		if occupied {
			mode = ModeDeleting
		}
	}

	ranges, err := selectRanges(gr, shape, g.Anchor, at)
	if err != nil {
		return g, Preview{}, err
	}

	next := g
	next.Mode = mode
	next.Current = at
	return next, Preview{
		From:   ranges[0].From,
		To:     ranges[len(ranges)-1].To,
		Mode:   mode,
		Ranges: ranges,
	}, nil
}

// selectRanges snaps two instants to their cells and returns the ranges
// the shape covers, earliest first.
//
// A span runs from the earlier cell to the end of the later one. A block
// swaps the time-of-day bounds independently of the days, so dragging up
// while moving right still yields from <= to on every day.
func selectRanges(gr *grid.Grid, shape Shape, a, b time.Time) ([]Range, error) {
	aDay, aCol, err := gr.IndexOf(a)
	if err != nil {
		return nil, err
	}
	bDay, bCol, err := gr.IndexOf(b)
	if err != nil {
		return nil, err
	}

	if shape == ShapeBlock {
		fromDay, toDay := min(aDay, bDay), max(aDay, bDay)
		fromCol, toCol := min(aCol, bCol), max(aCol, bCol)
		out := make([]Range, 0, toDay-fromDay+1)
		for day := fromDay; day <= toDay; day++ {
			out = append(out, Range{From: gr.CellTime(day, fromCol), To: gr.CellTime(day, toCol+1)})
		}
		return out, nil
	}

	if bDay < aDay || (bDay == aDay && bCol < aCol) {
		aDay, aCol, bDay, bCol = bDay, bCol, aDay, aCol
	}
	return []Range{{From: gr.CellTime(aDay, aCol), To: gr.CellTime(bDay, bCol+1)}}, nil
}
