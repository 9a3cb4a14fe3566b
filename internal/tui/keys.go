package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap lists the editor's key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Save     key.Binding
	Copy     key.Binding
	Clear    key.Binding
	Undo     key.Binding
	Reload   key.Binding
	Suggest  key.Binding
	Details  key.Binding
	Close    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy mine")),
		Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear mine")),
		Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Suggest:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "ask for a time")),
		Details:  key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "cell details")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Undo, k.Clear, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Save, k.Undo, k.Clear, k.Copy, k.Reload},
		{k.Suggest, k.Details, k.Close, k.Help, k.Quit},
	}
}
