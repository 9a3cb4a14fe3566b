// Package tui is the terminal availability editor: a heat map of everyone
// else's availability with the editor's own cells painted on top by
// dragging the mouse.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/huddle/internal/config"
	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/poll"
	"github.com/javiermolinar/huddle/internal/selection"
	"github.com/javiermolinar/huddle/internal/tui/commands"
	"github.com/javiermolinar/huddle/internal/tui/theme"
)

// Model is the editor's bubbletea model.
type Model struct {
	// Dependencies
	repo   poll.Repository
	config *config.Config
	pollID string
	name   string

	styles Styles
	keys   KeyMap
	help   help.Model

	// Loaded data
	poll      *poll.Poll
	guest     *poll.Guest
	guests    []*poll.Guest
	others    []poll.Interval // every interval not owned by guest
	aggregate *grid.Grid      // contributor-tracking grid of others
	ctrl      *selection.Controller
	history   *History
	bandStart int // minutes since midnight
	bandEnd   int

	loading     bool
	dirty       bool // own grid differs from the last save
	confirmQuit bool

	// Layout
	width  int
	height int
	scroll int
	hover  *cellPos

	overlay Overlay

	statusMsg  string
	statusTime time.Time
	err        error

	now func() time.Time
}

// New creates the editor for pollID, editing as name.
func New(repo poll.Repository, cfg *config.Config, pollID, name string) Model {
	t, _ := theme.Load(cfg.UI.Theme)
	palette := theme.NewPalette(t)

	return Model{
		repo:    repo,
		config:  cfg,
		pollID:  pollID,
		name:    name,
		styles:  NewStyles(palette),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		overlay: NewOverlay(palette.Surface),
		loading: true,
		now:     time.Now,
	}
}

// Init loads the poll.
func (m Model) Init() tea.Cmd {
	return commands.LoadPoll(m.repo, m.pollID, m.name)
}

// load installs freshly loaded data and rebuilds both grids.
func (m Model) load(msg commands.LoadedMsg) (Model, error) {
	start, end, err := msg.Poll.Band()
	if err != nil {
		return m, err
	}

	var own []poll.Interval
	others := make([]poll.Interval, 0, len(msg.Intervals))
	for _, iv := range msg.Intervals {
		if iv.OwnerID == msg.Guest.ID {
			own = append(own, iv)
			continue
		}
		others = append(others, iv)
	}

	aggregate, err := poll.BuildAggregate(msg.Poll, others, "")
	if err != nil {
		return m, fmt.Errorf("building heat map: %w", err)
	}
	ownGrid, err := poll.BuildOwn(msg.Poll, own)
	if err != nil {
		return m, fmt.Errorf("building own grid: %w", err)
	}

	m.poll = msg.Poll
	m.guest = msg.Guest
	m.guests = msg.Guests
	m.others = others
	m.aggregate = aggregate
	m.ctrl = newEditor(ownGrid)
	m.history = NewHistory(defaultMaxHistory)
	m.bandStart, m.bandEnd = start, end
	m.loading = false
	m.dirty = false
	m.hover = nil
	m.clampScroll()
	return m, nil
}

// newEditor wraps g in a controller that reads multi-day drags as blocks
// of the rows under the pointer.
func newEditor(g *grid.Grid) *selection.Controller {
	return selection.NewController(g, selection.WithShape(selection.ShapeBlock))
}

// otherCount is the number of guests besides the editor, at least 1.
func (m Model) otherCount() int {
	n := 0
	for _, g := range m.guests {
		if m.guest == nil || g.ID != m.guest.ID {
			n++
		}
	}
	return max(n, 1)
}

// ownIntervals returns the editor's availability as storable intervals.
func (m Model) ownIntervals() []poll.Interval {
	return poll.IntervalsFromSlots(m.ctrl.Grid().ExtractSlots(), m.guest)
}

// everyone returns the slots of all guests including the unsaved edits,
// clipped to the band and ranked best first.
func (m Model) everyone() ([]grid.Slot, error) {
	all := append(append([]poll.Interval(nil), m.others...), m.ownIntervals()...)
	g, err := poll.BuildAggregate(m.poll, all, "")
	if err != nil {
		return nil, err
	}
	return poll.Rank(m.poll.ClipSlots(g.ExtractSlots()), 1), nil
}

// Run starts the editor and blocks until it quits.
func Run(repo poll.Repository, cfg *config.Config, pollID, name string, debug bool) error {
	if err := InitDebugLogger(debug); err != nil {
		return err
	}
	defer CloseDebugLogger()

	p := tea.NewProgram(New(repo, cfg, pollID, name), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
