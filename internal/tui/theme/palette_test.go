package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewPalette_HeatRamp(t *testing.T) {
	th := &Theme{
		Bg:      "#000000",
		Surface: "#000000",
		Fg:      "#ffffff",
		FgMuted: "#888888",
		Heat:    "#00ff00",
		Own:     "#0000ff",
	}
	p := NewPalette(th)

	if p.Heat[HeatLevels-1] != lipgloss.Color("#00ff00") {
		t.Errorf("top heat level = %q, want the heat color", p.Heat[HeatLevels-1])
	}
	for i := 1; i < HeatLevels; i++ {
		_, prev, _, _ := rgb(string(p.Heat[i-1]))
		_, cur, _, _ := rgb(string(p.Heat[i]))
		if cur <= prev {
			t.Errorf("heat level %d green %d not brighter than level %d green %d", i, cur, i-1, prev)
		}
	}
	if p.TextOnHeat[HeatLevels-1] != lipgloss.Color("#000000") {
		t.Errorf("text on bright green = %q, want dark text", p.TextOnHeat[HeatLevels-1])
	}
	if p.TextOnOwn != lipgloss.Color("#ffffff") {
		t.Errorf("text on blue = %q, want light text", p.TextOnOwn)
	}
}

func TestNewPalette_NilUsesDefault(t *testing.T) {
	p := NewPalette(nil)
	if p.Bg == "" || p.Heat[0] == "" {
		t.Fatal("expected default palette colors")
	}
}

func TestHeatLevel(t *testing.T) {
	tests := []struct {
		weight, total int
		want          int
	}{
		{0, 4, 0},
		{1, 0, 0},
		{1, 10, 1},
		{2, 4, 3},
		{4, 4, HeatLevels},
		{6, 4, HeatLevels},
		{1, 1, HeatLevels},
	}
	for _, tt := range tests {
		if got := HeatLevel(tt.weight, tt.total); got != tt.want {
			t.Errorf("HeatLevel(%d, %d) = %d, want %d", tt.weight, tt.total, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		a, b  string
		ratio float64
		want  string
	}{
		{"#000000", "#ffffff", 0, "#000000"},
		{"#000000", "#ffffff", 1, "#ffffff"},
		{"#000000", "#ffffff", 0.5, "#808080"},
		{"#000000", "#ffffff", 2, "#ffffff"},
		{"bad", "#ffffff", 0.5, "bad"},
	}
	for _, tt := range tests {
		if got := blend(tt.a, tt.b, tt.ratio); got != tt.want {
			t.Errorf("blend(%q, %q, %v) = %q, want %q", tt.a, tt.b, tt.ratio, got, tt.want)
		}
	}
}

func TestReadableOn(t *testing.T) {
	if got := readableOn("#ffffff", "#000000", "#eeeeee"); got != "#000000" {
		t.Errorf("readableOn(white) = %q, want black", got)
	}
	if got := readableOn("#000000", "#111111", "#ffffff"); got != "#ffffff" {
		t.Errorf("readableOn(black) = %q, want white", got)
	}
}
