package theme

import (
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{"load mocha theme", "mocha", "mocha"},
		{"load frappe theme", "frappe", "frappe"},
		{"load latte theme", "Latte", "latte"},
		{"empty name uses default", "", DefaultName},
		{"unknown theme falls back", "nonexistent", DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) error: %v", tt.themeName, err)
			}
			if th.Name != tt.wantName {
				t.Errorf("Load(%q).Name = %q, want %q", tt.themeName, th.Name, tt.wantName)
			}
		})
	}
}

func TestLoad_AllColorsSet(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			th, err := Load(name)
			if err != nil {
				t.Fatalf("Load(%q) error: %v", name, err)
			}
			colors := map[string]string{
				"bg": th.Bg, "surface": th.Surface, "fg": th.Fg, "fg_muted": th.FgMuted,
				"accent": th.Accent, "heat": th.Heat, "own": th.Own,
				"create": th.Create, "delete": th.Delete, "warning": th.Warning,
			}
			for key, v := range colors {
				if _, _, _, ok := rgb(v); !ok {
					t.Errorf("%s = %q, want #rrggbb", key, v)
				}
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	th := &Theme{Bg: "#000000", Fg: "#ffffff", Own: "#0000ff", Warning: "#ff8800"}
	th.applyDefaults()

	if th.Surface != "#000000" {
		t.Errorf("Surface = %q, want bg", th.Surface)
	}
	if th.FgMuted != "#ffffff" {
		t.Errorf("FgMuted = %q, want fg", th.FgMuted)
	}
	if th.Create != "#0000ff" {
		t.Errorf("Create = %q, want own", th.Create)
	}
	if th.Delete != "#ff8800" {
		t.Errorf("Delete = %q, want warning", th.Delete)
	}
}

func TestIsAvailable(t *testing.T) {
	if !IsAvailable("MOCHA") {
		t.Error("expected mocha to be available")
	}
	if IsAvailable("light") {
		t.Error("expected light to be unavailable")
	}
}
