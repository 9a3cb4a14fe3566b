package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// HeatLevels is the number of shades between an empty cell and a cell
// where every guest is free.
const HeatLevels = 5

// Palette holds lipgloss colors derived from a Theme.
type Palette struct {
	Bg      lipgloss.Color
	Surface lipgloss.Color
	Fg      lipgloss.Color
	FgMuted lipgloss.Color
	Accent  lipgloss.Color
	Own     lipgloss.Color
	Create  lipgloss.Color
	Delete  lipgloss.Color
	Warning lipgloss.Color

	// Heat[i] shades level i+1; TextOnHeat[i] is readable on it.
	Heat       [HeatLevels]lipgloss.Color
	TextOnHeat [HeatLevels]lipgloss.Color

	TextOnAccent lipgloss.Color
	TextOnOwn    lipgloss.Color
	TextOnCreate lipgloss.Color
	TextOnDelete lipgloss.Color
}

// NewPalette derives a Palette from t. A nil theme uses DefaultName.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	p := &Palette{
		Bg:      lipgloss.Color(t.Bg),
		Surface: lipgloss.Color(t.Surface),
		Fg:      lipgloss.Color(t.Fg),
		FgMuted: lipgloss.Color(t.FgMuted),
		Accent:  lipgloss.Color(t.Accent),
		Own:     lipgloss.Color(t.Own),
		Create:  lipgloss.Color(t.Create),
		Delete:  lipgloss.Color(t.Delete),
		Warning: lipgloss.Color(t.Warning),

		TextOnAccent: lipgloss.Color(readableOn(t.Accent, t.Bg, t.Fg)),
		TextOnOwn:    lipgloss.Color(readableOn(t.Own, t.Bg, t.Fg)),
		TextOnCreate: lipgloss.Color(readableOn(t.Create, t.Bg, t.Fg)),
		TextOnDelete: lipgloss.Color(readableOn(t.Delete, t.Bg, t.Fg)),
	}

	for i := range HeatLevels {
		// Level 1 is mostly surface, the top level is the heat color itself.
		ratio := float64(i+1) / HeatLevels
		shade := blend(t.Surface, t.Heat, 0.2+0.8*ratio)
		p.Heat[i] = lipgloss.Color(shade)
		p.TextOnHeat[i] = lipgloss.Color(readableOn(shade, t.Bg, t.Fg))
	}
	return p
}

// HeatLevel maps weight out of total to a level in [0, HeatLevels].
// Zero weight is level 0; full attendance is HeatLevels.
func HeatLevel(weight, total int) int {
	if weight <= 0 || total <= 0 {
		return 0
	}
	if weight >= total {
		return HeatLevels
	}
	level := int(math.Ceil(float64(weight) * HeatLevels / float64(total)))
	return min(max(level, 1), HeatLevels)
}

// rgb parses "#rrggbb". ok is false for anything else.
func rgb(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func hexColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// blend mixes a toward b; ratio 0 is a, 1 is b. Invalid input returns a.
func blend(a, b string, ratio float64) string {
	ar, ag, ab, ok1 := rgb(a)
	br, bg, bb, ok2 := rgb(b)
	if !ok1 || !ok2 {
		return a
	}
	ratio = math.Min(math.Max(ratio, 0), 1)
	mix := func(x, y int) int {
		return int(math.Round(float64(x)*(1-ratio) + float64(y)*ratio))
	}
	return hexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// readableOn picks whichever of the two text colors contrasts more with bg.
func readableOn(bg, textA, textB string) string {
	if contrast(bg, textA) >= contrast(bg, textB) {
		return textA
	}
	return textB
}

func contrast(a, b string) float64 {
	l1, l2 := luminance(a), luminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func luminance(hex string) float64 {
	r, g, b, ok := rgb(hex)
	if !ok {
		return 0
	}
	return 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b)
}

func linear(c int) float64 {
	v := float64(c) / 255
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
