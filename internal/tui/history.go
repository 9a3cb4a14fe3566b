package tui

import (
	"errors"

	"github.com/javiermolinar/huddle/internal/grid"
)

// ErrNothingToUndo is returned by Undo on an empty history.
var ErrNothingToUndo = errors.New("nothing to undo")

const defaultMaxHistory = 50

// historyEntry is the editor's grid before one edit.
type historyEntry struct {
	Description string // e.g. "Added Mon Jan 1 09:00-10:00"
	Grid        *grid.Grid
}

// History is a bounded undo stack of own-grid snapshots.
type History struct {
	entries []historyEntry
	max     int
}

// NewHistory returns an empty history keeping at most max snapshots.
func NewHistory(max int) *History {
	if max <= 0 {
		max = defaultMaxHistory
	}
	return &History{max: max}
}

// Push records a copy of g taken before an edit. The oldest entry is
// dropped when the stack is full.
func (h *History) Push(description string, g *grid.Grid) {
	if len(h.entries) >= h.max {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, historyEntry{Description: description, Grid: g.Clone()})
}

// Undo pops the last snapshot.
func (h *History) Undo() (*grid.Grid, string, error) {
	if len(h.entries) == 0 {
		return nil, "", ErrNothingToUndo
	}
	e := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return e.Grid, e.Description, nil
}

// Len returns the number of undoable edits.
func (h *History) Len() int {
	return len(h.entries)
}

// Reset forgets every snapshot.
func (h *History) Reset() {
	h.entries = nil
}
