// Package theme provides color themes for the availability editor.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is used when no theme is configured or the name is unknown.
const DefaultName = "frappe"

// Theme holds the hex colors of a theme.
type Theme struct {
	Name    string `toml:"name"`
	Bg      string `toml:"bg"`       // screen background
	Surface string `toml:"surface"`  // empty cells, header bar
	Fg      string `toml:"fg"`       // primary text
	FgMuted string `toml:"fg_muted"` // time labels, hints
	Accent  string `toml:"accent"`   // title, borders
	Heat    string `toml:"heat"`     // cells where everyone is free
	Own     string `toml:"own"`      // the editor's own availability
	Create  string `toml:"create"`   // drag preview that adds
	Delete  string `toml:"delete"`   // drag preview that removes
	Warning string `toml:"warning"`  // unsaved marker, errors
}

// Load loads a theme by name from the embedded files, falling back to
// DefaultName for unknown names.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultName
	}

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()
	return &t, nil
}

func (t *Theme) applyDefaults() {
	t.Surface = coalesce(t.Surface, t.Bg)
	t.FgMuted = coalesce(t.FgMuted, t.Fg)
	t.Create = coalesce(t.Create, t.Own, t.Accent)
	t.Delete = coalesce(t.Delete, t.Warning, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns the names of the embedded themes.
func Available() []string {
	return []string{"mocha", "frappe", "latte"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
