package tui

import (
	"bytes"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/huddle/internal/export"
	"github.com/javiermolinar/huddle/internal/poll"
	"github.com/javiermolinar/huddle/internal/selection"
	"github.com/javiermolinar/huddle/internal/tui/commands"
)

const statusTimeout = 3 * time.Second

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampScroll()
		return m, nil

	case commands.LoadedMsg:
		loaded, err := m.load(msg)
		if err != nil {
			LogError("load", err)
			return m.setError(err)
		}
		return loaded, nil

	case commands.SavedMsg:
		m.dirty = false
		LogSave(m.name, msg.Count)
		return m.setStatus(fmt.Sprintf("Saved %d ranges", msg.Count))

	case commands.CopiedMsg:
		return m.setStatus(fmt.Sprintf("Copied %d ranges", msg.Count))

	case commands.SuggestionMsg:
		s := msg.Suggestion
		body := fmt.Sprintf("%s %s-%s\n%d of %d others free",
			s.From.Format("Mon Jan 2"), s.From.Format("15:04"), s.To.Format("15:04"),
			s.Weight, m.otherCount())
		if s.Reason != "" {
			body += "\n\n" + s.Reason
		}
		m.overlay.Show("Suggested time", body)
		m.statusMsg = ""
		return m, nil

	case commands.ErrMsg:
		LogError("command", msg.Err)
		m.loading = false
		return m.setError(msg.Err)

	case commands.StatusMsg:
		return m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.err = nil
		}
		return m, nil
	}

	return m, nil
}

func (m Model) setStatus(s string) (Model, tea.Cmd) {
	m.statusMsg = s
	m.err = nil
	m.statusTime = m.now().Add(statusTimeout)
	return m, commands.ClearStatusAfter(statusTimeout)
}

func (m Model) setError(err error) (Model, tea.Cmd) {
	m.err = err
	m.statusMsg = fmt.Sprintf("Error: %v", err)
	m.statusTime = m.now().Add(2 * statusTimeout)
	return m, commands.ClearStatusAfter(2 * statusTimeout)
}

// ============================================================================
// Keyboard
// ============================================================================

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	LogKeyPress(msg)

	if key.Matches(msg, m.keys.Quit) {
		if m.dirty && !m.confirmQuit && msg.String() != "ctrl+c" {
			m.confirmQuit = true
			m.statusMsg = "Unsaved changes: press q again to quit, s to save"
			return m, nil
		}
		return m, tea.Quit
	}
	m.confirmQuit = false

	if m.overlay.Active() {
		if key.Matches(msg, m.keys.Close, m.keys.Details) {
			m.overlay.Hide()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, commands.LoadPoll(m.repo, m.pollID, m.name)
	}

	if m.loading || m.ctrl == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.scroll--
	case key.Matches(msg, m.keys.Down):
		m.scroll++
	case key.Matches(msg, m.keys.PageUp):
		m.scroll -= m.visibleRows()
	case key.Matches(msg, m.keys.PageDown):
		m.scroll += m.visibleRows()

	case key.Matches(msg, m.keys.Close):
		if m.ctrl.Gesture().Active {
			m.ctrl.CancelOutside()
			return m.setStatus("Selection cancelled")
		}

	case key.Matches(msg, m.keys.Save):
		intervals := m.ownIntervals()
		m.statusMsg = "Saving..."
		return m, commands.SaveAvailability(m.repo, m.poll.ID, m.guest, intervals)

	case key.Matches(msg, m.keys.Copy):
		slots := m.ctrl.Grid().ExtractSlots()
		if len(slots) == 0 {
			return m.setStatus("Nothing to copy")
		}
		var buf bytes.Buffer
		if err := export.Write(&buf, export.FormatText, m.poll, slots, m.now()); err != nil {
			return m.setError(err)
		}
		return m, commands.Copy(buf.String(), len(m.ownIntervals()))

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.CancelOutside()
		m.history.Push("Clear", m.ctrl.Grid())
		m.ctrl.Grid().Clear()
		m.dirty = true
		return m.setStatus("Cleared your availability (not saved)")

	case key.Matches(msg, m.keys.Undo):
		m.ctrl.CancelOutside()
		g, desc, err := m.history.Undo()
		if err != nil {
			return m.setStatus("Nothing to undo")
		}
		m.ctrl = newEditor(g)
		m.dirty = true
		return m.setStatus("Undid " + desc)

	case key.Matches(msg, m.keys.Suggest):
		ranked, err := m.everyone()
		if err != nil {
			return m.setError(err)
		}
		m.statusMsg = "Asking for a time..."
		return m, commands.Suggest(m.config, m.poll, m.guests, ranked, 0)

	case key.Matches(msg, m.keys.Details):
		if m.hover != nil {
			m.overlay.Show(m.cellTitle(*m.hover), m.cellDetails(*m.hover))
		}
	}

	m.clampScroll()
	return m, nil
}

// ============================================================================
// Mouse
// ============================================================================

// handleMouseMsg feeds pointer events to the selection controller.
// Press starts a gesture, motion extends it, release inside the grid
// commits and release outside cancels.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.loading || m.ctrl == nil || m.overlay.Active() {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll--
		m.clampScroll()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scroll++
		m.clampScroll()
		return m, nil
	}

	pos, inside := m.cellAt(msg.X, msg.Y)
	if inside {
		m.hover = &pos
	} else {
		m.hover = nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return m, nil
		}
		at := m.instant(pos)
		if err := m.ctrl.Start(at); err != nil {
			LogError("gesture start", err)
			return m, nil
		}
		if _, err := m.ctrl.Move(at); err != nil {
			LogError("gesture move", err)
		}
		LogGesture("GESTURE_START", at, m.ctrl)

	case tea.MouseActionMotion:
		if !inside || !m.ctrl.Gesture().Active {
			return m, nil
		}
		at := m.instant(pos)
		if _, err := m.ctrl.Move(at); err != nil {
			LogError("gesture move", err)
			return m, nil
		}
		LogGesture("GESTURE_MOVE", at, m.ctrl)

	case tea.MouseActionRelease:
		if !m.ctrl.Gesture().Active {
			return m, nil
		}
		if !inside {
			m.ctrl.CancelOutside()
			LogGesture("GESTURE_CANCEL", time.Time{}, m.ctrl)
			return m.setStatus("Selection cancelled")
		}
		at := m.instant(pos)
		preview, err := m.ctrl.Move(at)
		if err != nil {
			LogError("gesture move", err)
			m.ctrl.CancelOutside()
			return m.setError(err)
		}
		for _, r := range preview.Ranges {
			if !m.poll.InBand(r.From, r.To) {
				m.ctrl.CancelOutside()
				LogGesture("GESTURE_CANCEL", at, m.ctrl)
				return m.setError(fmt.Errorf("%w: %s", poll.ErrOutsideBand, rangeLabel(r.From, r.To)))
			}
		}
		before := m.ctrl.Grid().Clone()
		if _, err := m.ctrl.End(); err != nil {
			LogError("gesture end", err)
			return m.setError(err)
		}
		LogGesture("GESTURE_END", at, m.ctrl)
		m.dirty = true
		verb := "Added"
		if preview.Mode == selection.ModeDeleting {
			verb = "Removed"
		}
		label := verb + " " + previewLabel(preview)
		m.history.Push(label, before)
		return m.setStatus(label + " (not saved)")
	}

	return m, nil
}
