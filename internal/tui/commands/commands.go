// Package commands provides the editor's tea.Cmd constructors and the
// messages they produce.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/huddle/internal/config"
	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/llm"
	"github.com/javiermolinar/huddle/internal/poll"
)

// LoadedMsg carries everything the editor needs for one poll.
type LoadedMsg struct {
	Poll      *poll.Poll
	Guest     *poll.Guest // the person editing
	Guests    []*poll.Guest
	Intervals []poll.Interval // every guest's availability
}

// SavedMsg is sent after the editor's availability was stored.
type SavedMsg struct {
	Count int
}

// CopiedMsg is sent after text was put on the clipboard.
type CopiedMsg struct {
	Count int
}

// SuggestionMsg carries the advisor's answer.
type SuggestionMsg struct {
	Suggestion llm.Suggestion
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsg shows a temporary status line.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// LoadPoll resolves the poll, registers name as a guest and loads all
// availability.
func LoadPoll(repo poll.Repository, pollID, name string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		p, err := repo.GetPoll(ctx, pollID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		guest, err := repo.UpsertGuest(ctx, p.ID, name)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("joining poll: %w", err)}
		}
		guests, err := repo.ListGuests(ctx, p.ID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		intervals, err := repo.ListAvailability(ctx, p.ID)
		if err != nil {
			return ErrMsg{Err: err}
		}

		return LoadedMsg{Poll: p, Guest: guest, Guests: guests, Intervals: intervals}
	}
}

// SaveAvailability replaces the guest's stored intervals.
func SaveAvailability(repo poll.Repository, pollID string, guest *poll.Guest, intervals []poll.Interval) tea.Cmd {
	return func() tea.Msg {
		if err := repo.ReplaceAvailability(context.Background(), pollID, guest, intervals); err != nil {
			return ErrMsg{Err: fmt.Errorf("saving availability: %w", err)}
		}
		return SavedMsg{Count: len(intervals)}
	}
}

// Copy writes text to the system clipboard. count is echoed back.
func Copy(text string, count int) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWrite(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return CopiedMsg{Count: count}
	}
}

// Suggest asks the configured model for a meeting time among ranked.
func Suggest(cfg *config.Config, p *poll.Poll, guests []*poll.Guest, ranked []grid.Slot, length time.Duration) tea.Cmd {
	return func() tea.Msg {
		client, err := llm.NewClient(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.APIKey)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("creating LLM client: %w", err)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		s, err := llm.NewAdvisor(client).Suggest(ctx, p, guests, ranked, length)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SuggestionMsg{Suggestion: s}
	}
}

// ClearStatusAfter emits ClearStatusMsg once d has passed.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
