package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Overlay is a centered box drawn over the grid.
type Overlay struct {
	active bool
	title  string
	body   string
	bg     lipgloss.Color
}

// NewOverlay returns a hidden overlay with the given background.
func NewOverlay(bg lipgloss.Color) Overlay {
	return Overlay{bg: bg}
}

// Show makes the overlay visible with new content.
func (o *Overlay) Show(title, body string) {
	o.active = true
	o.title = title
	o.body = body
}

// Hide hides the overlay.
func (o *Overlay) Hide() {
	o.active = false
}

// Active reports whether the overlay is visible.
func (o Overlay) Active() bool {
	return o.active
}

// Render draws the box centered on base, which is first padded or cut to
// width x height. Inactive overlays return base unchanged.
func (o Overlay) Render(base string, width, height int, box lipgloss.Style) string {
	if !o.active || width <= 0 || height <= 0 {
		return base
	}

	content := box.Background(o.bg).Render(o.title + "\n\n" + strings.TrimRight(o.body, "\n"))
	boxLines := strings.Split(content, "\n")
	boxW := lipgloss.Width(content)
	if boxW > width {
		boxW = width
	}

	lines := fitLines(base, width, height)
	top := max((height-len(boxLines))/2, 0)
	left := max((width-boxW)/2, 0)

	for i, bl := range boxLines {
		row := top + i
		if row >= height {
			break
		}
		bl = ansi.Truncate(bl, boxW, "")
		if w := lipgloss.Width(bl); w < boxW {
			bl += strings.Repeat(" ", boxW-w)
		}
		lines[row] = ansi.Cut(lines[row], 0, left) + bl + ansi.Cut(lines[row], left+boxW, width)
	}
	return strings.Join(lines, "\n")
}

// fitLines splits s into exactly height lines of exactly width cells.
func fitLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	for i, line := range lines {
		w := lipgloss.Width(line)
		switch {
		case w > width:
			lines[i] = ansi.Cut(line, 0, width)
		case w < width:
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return lines
}
