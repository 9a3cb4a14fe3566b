package selection

import (
	"errors"
	"testing"
	"time"

	td "github.com/maxatome/go-testdeep"

	"github.com/javiermolinar/huddle/internal/grid"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, 1+day, hour, minute, 0, 0, time.UTC)
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	g, err := grid.New(grid.Config{Days: 3, Reference: at(0, 0, 0)})
	if err != nil {
		t.Fatalf("grid.New() error: %v", err)
	}
	return NewController(g)
}

func drag(t *testing.T, c *Controller, points ...time.Time) []grid.Slot {
	t.Helper()
	if err := c.Start(points[0]); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	for _, p := range points[1:] {
		if _, err := c.Move(p); err != nil {
			t.Fatalf("Move(%v) error: %v", p, err)
		}
	}
	slots, err := c.End()
	if err != nil {
		t.Fatalf("End() error: %v", err)
	}
	return slots
}

func TestController_CreateGesture(t *testing.T) {
	c := newTestController(t)

	if err := c.Start(at(0, 9, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle before first move, got %s", c.State())
	}

	preview, err := c.Move(at(0, 10, 20))
	if err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	td.CmpDeeply(t, preview, Preview{
		From:   at(0, 9, 0),
		To:     at(0, 10, 30),
		Mode:   ModeCreating,
		Ranges: []Range{{From: at(0, 9, 0), To: at(0, 10, 30)}},
	})
	if c.State() != StatePreviewingCreate {
		t.Errorf("expected previewing-create, got %s", c.State())
	}
	if slots := c.Grid().ExtractSlots(); len(slots) != 0 {
		t.Errorf("preview must not touch the grid, got %v", slots)
	}

	slots, err := c.End()
	if err != nil {
		t.Fatalf("End() error: %v", err)
	}
	td.CmpDeeply(t, slots, []grid.Slot{{From: at(0, 9, 0), To: at(0, 10, 30), Weight: 1}})

	if c.State() != StateIdle {
		t.Errorf("expected idle after End, got %s", c.State())
	}
	if g := c.Gesture(); g.Active || g.Mode != ModeUnset {
		t.Errorf("expected latch reset, got %+v", g)
	}
	if _, ok := c.Preview(); ok {
		t.Errorf("expected preview cleared after End")
	}
}

func TestController_BackwardDragSwaps(t *testing.T) {
	c := newTestController(t)

	if err := c.Start(at(1, 11, 5)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	preview, err := c.Move(at(0, 22, 50))
	if err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	td.CmpDeeply(t, preview, Preview{
		From:   at(0, 22, 45),
		To:     at(1, 11, 15),
		Mode:   ModeCreating,
		Ranges: []Range{{From: at(0, 22, 45), To: at(1, 11, 15)}},
	})

	slots, err := c.End()
	if err != nil {
		t.Fatalf("End() error: %v", err)
	}
	// Committed range crosses midnight and comes back as two slots.
	td.CmpDeeply(t, slots, []grid.Slot{
		{From: at(0, 22, 45), To: at(1, 0, 0), Weight: 1},
		{From: at(1, 0, 0), To: at(1, 11, 15), Weight: 1},
	})
}

func TestController_BlockAcrossDays(t *testing.T) {
	g, err := grid.New(grid.Config{Days: 3, Reference: at(0, 0, 0)})
	if err != nil {
		t.Fatalf("grid.New() error: %v", err)
	}
	c := NewController(g, WithShape(ShapeBlock))

	t.Run("one row dragged right", func(t *testing.T) {
		slots := drag(t, c, at(0, 9, 0), at(2, 9, 10))
		td.CmpDeeply(t, slots, []grid.Slot{
			{From: at(0, 9, 0), To: at(0, 9, 15), Weight: 1},
			{From: at(1, 9, 0), To: at(1, 9, 15), Weight: 1},
			{From: at(2, 9, 0), To: at(2, 9, 15), Weight: 1},
		})
		c.Grid().Clear()
	})

	t.Run("up and to the right swaps time of day", func(t *testing.T) {
		if err := c.Start(at(0, 12, 0)); err != nil {
			t.Fatalf("Start() error: %v", err)
		}
		preview, err := c.Move(at(2, 10, 0))
		if err != nil {
			t.Fatalf("Move() error: %v", err)
		}
		td.CmpDeeply(t, preview, Preview{
			From: at(0, 10, 0),
			To:   at(2, 12, 15),
			Mode: ModeCreating,
			Ranges: []Range{
				{From: at(0, 10, 0), To: at(0, 12, 15)},
				{From: at(1, 10, 0), To: at(1, 12, 15)},
				{From: at(2, 10, 0), To: at(2, 12, 15)},
			},
		})
		if !preview.Contains(at(1, 11, 0)) || preview.Contains(at(1, 13, 0)) || preview.Contains(at(0, 23, 0)) {
			t.Errorf("Contains() does not follow the block")
		}

		slots, err := c.End()
		if err != nil {
			t.Fatalf("End() error: %v", err)
		}
		if len(slots) != 3 {
			t.Fatalf("expected one slot per day, got %v", slots)
		}
		for _, s := range slots {
			if s.Duration() != 2*time.Hour+15*time.Minute {
				t.Errorf("slot %v-%v has wrong length", s.From, s.To)
			}
		}
	})

	t.Run("down and to the left", func(t *testing.T) {
		// Start on an occupied cell so the block deletes.
		if err := c.Start(at(2, 10, 0)); err != nil {
			t.Fatalf("Start() error: %v", err)
		}
		preview, err := c.Move(at(1, 11, 0))
		if err != nil {
			t.Fatalf("Move() error: %v", err)
		}
		if preview.Mode != ModeDeleting {
			t.Errorf("expected deleting, got %s", preview.Mode)
		}
		slots, err := c.End()
		if err != nil {
			t.Fatalf("End() error: %v", err)
		}
		td.CmpDeeply(t, slots, []grid.Slot{
			{From: at(0, 10, 0), To: at(0, 12, 15), Weight: 1},
			{From: at(1, 11, 15), To: at(1, 12, 15), Weight: 1},
			{From: at(2, 11, 15), To: at(2, 12, 15), Weight: 1},
		})
	})
}

func TestController_SpanAcrossDays(t *testing.T) {
	c := newTestController(t)

	if err := c.Start(at(0, 12, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	preview, err := c.Move(at(1, 10, 0))
	if err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	td.CmpDeeply(t, preview.Ranges, []Range{{From: at(0, 12, 0), To: at(1, 10, 15)}})
	c.CancelOutside()
}

func TestController_ClickCommitsOneCell(t *testing.T) {
	c := newTestController(t)

	slots := drag(t, c, at(0, 9, 7))
	td.CmpDeeply(t, slots, []grid.Slot{{From: at(0, 9, 0), To: at(0, 9, 15), Weight: 1}})

	// Clicking the same cell again deletes it.
	slots = drag(t, c, at(0, 9, 7))
	if len(slots) != 0 {
		t.Errorf("expected empty grid, got %v", slots)
	}
}

func TestController_DeleteLatchHoldsOverEmptyCells(t *testing.T) {
	c := newTestController(t)
	drag(t, c, at(0, 9, 0), at(0, 10, 45))

	// Start inside the slot and drag well past its end.
	if err := c.Start(at(0, 10, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	for _, p := range []time.Time{at(0, 10, 30), at(0, 12, 0), at(0, 14, 0)} {
		preview, err := c.Move(p)
		if err != nil {
			t.Fatalf("Move() error: %v", err)
		}
		if preview.Mode != ModeDeleting {
			t.Errorf("Move(%v) mode = %s, want deleting", p, preview.Mode)
		}
	}
	slots, err := c.End()
	if err != nil {
		t.Fatalf("End() error: %v", err)
	}
	td.CmpDeeply(t, slots, []grid.Slot{{From: at(0, 9, 0), To: at(0, 10, 0), Weight: 1}})
}

func TestController_CreateLatchHoldsOverOccupiedCells(t *testing.T) {
	c := newTestController(t)
	drag(t, c, at(0, 11, 0), at(0, 11, 45))

	// Start before the slot and drag across it.
	if err := c.Start(at(0, 10, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	for _, p := range []time.Time{at(0, 11, 0), at(0, 11, 30), at(0, 12, 15)} {
		preview, err := c.Move(p)
		if err != nil {
			t.Fatalf("Move() error: %v", err)
		}
		if preview.Mode != ModeCreating {
			t.Errorf("Move(%v) mode = %s, want creating", p, preview.Mode)
		}
	}
	slots, err := c.End()
	if err != nil {
		t.Fatalf("End() error: %v", err)
	}
	td.CmpDeeply(t, slots, []grid.Slot{{From: at(0, 10, 0), To: at(0, 12, 30), Weight: 1}})
}

func TestController_LatchResetsBetweenGestures(t *testing.T) {
	c := newTestController(t)
	drag(t, c, at(0, 9, 0), at(0, 9, 45))

	// Deleting gesture.
	if err := c.Start(at(0, 9, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if _, err := c.Move(at(0, 9, 15)); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if c.State() != StatePreviewingDelete {
		t.Errorf("expected previewing-delete, got %s", c.State())
	}
	c.CancelOutside()

	// A fresh gesture on empty territory must create, not inherit delete.
	if err := c.Start(at(0, 15, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	preview, err := c.Move(at(0, 15, 30))
	if err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if preview.Mode != ModeCreating {
		t.Errorf("expected creating, got %s", preview.Mode)
	}
}

func TestController_CancelOutsideDiscards(t *testing.T) {
	c := newTestController(t)
	before := c.Grid().Clone()

	if err := c.Start(at(0, 9, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if _, err := c.Move(at(0, 12, 0)); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	c.CancelOutside()

	if !c.Grid().Equal(before) {
		t.Errorf("cancel must not modify the grid")
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %s", c.State())
	}
	if _, ok := c.Preview(); ok {
		t.Errorf("expected preview cleared")
	}

	// Cancel while idle is a no-op.
	c.CancelOutside()
}

func TestController_Errors(t *testing.T) {
	c := newTestController(t)

	if _, err := c.Move(at(0, 9, 0)); !errors.Is(err, ErrNoGesture) {
		t.Errorf("Move while idle: expected ErrNoGesture, got %v", err)
	}
	if _, err := c.End(); !errors.Is(err, ErrNoGesture) {
		t.Errorf("End while idle: expected ErrNoGesture, got %v", err)
	}
	if err := c.Start(at(5, 9, 0)); !errors.Is(err, grid.ErrOutOfRange) {
		t.Errorf("Start outside window: expected ErrOutOfRange, got %v", err)
	}

	if err := c.Start(at(0, 9, 0)); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := c.Start(at(0, 10, 0)); !errors.Is(err, ErrGestureActive) {
		t.Errorf("second Start: expected ErrGestureActive, got %v", err)
	}
	if _, err := c.Move(at(7, 9, 0)); !errors.Is(err, grid.ErrOutOfRange) {
		t.Errorf("Move outside window: expected ErrOutOfRange, got %v", err)
	}

	// A failed move keeps the previous gesture.
	if g := c.Gesture(); !g.Active || !g.Current.Equal(at(0, 9, 0)) {
		t.Errorf("unexpected gesture after failed move: %+v", g)
	}
}

func TestModeAndStateStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{ModeUnset.String(), "unset"},
		{ModeCreating.String(), "creating"},
		{ModeDeleting.String(), "deleting"},
		{StateIdle.String(), "idle"},
		{StatePreviewingCreate.String(), "previewing-create"},
		{StatePreviewingDelete.String(), "previewing-delete"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
