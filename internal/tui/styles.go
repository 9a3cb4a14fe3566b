package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/huddle/internal/tui/theme"
)

// Styles holds the lipgloss styles of the editor, derived from a theme.
type Styles struct {
	Title     lipgloss.Style
	Info      lipgloss.Style
	Dirty     lipgloss.Style
	DayHeader lipgloss.Style
	TimeLabel lipgloss.Style

	// Heat[0] is an empty cell; Heat[i] shades weight level i.
	Heat [theme.HeatLevels + 1]lipgloss.Style

	Own           lipgloss.Style
	PreviewCreate lipgloss.Style
	PreviewDelete lipgloss.Style
	Hover         lipgloss.Style

	Status lipgloss.Style
	Error  lipgloss.Style
	Box    lipgloss.Style
}

// NewStyles builds Styles from a palette.
func NewStyles(p *theme.Palette) Styles {
	s := Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.TextOnAccent).
			Background(p.Accent).
			Padding(0, 1),
		Info:      lipgloss.NewStyle().Foreground(p.FgMuted),
		Dirty:     lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		DayHeader: lipgloss.NewStyle().Foreground(p.Fg).Bold(true),
		TimeLabel: lipgloss.NewStyle().Foreground(p.FgMuted),

		Own:           lipgloss.NewStyle().Foreground(p.TextOnOwn).Background(p.Own).Bold(true),
		PreviewCreate: lipgloss.NewStyle().Foreground(p.TextOnCreate).Background(p.Create),
		PreviewDelete: lipgloss.NewStyle().Foreground(p.TextOnDelete).Background(p.Delete).Strikethrough(true),
		Hover:         lipgloss.NewStyle().Underline(true),

		Status: lipgloss.NewStyle().Foreground(p.Fg),
		Error:  lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Foreground(p.Fg).
			Padding(0, 1),
	}

	s.Heat[0] = lipgloss.NewStyle().Foreground(p.FgMuted).Background(p.Surface)
	for i := 1; i <= theme.HeatLevels; i++ {
		s.Heat[i] = lipgloss.NewStyle().Foreground(p.TextOnHeat[i-1]).Background(p.Heat[i-1])
	}
	return s
}
