package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const defaultWidth = 80

// Heat tiers, from everyone free down to a lone guest.
var (
	colorFull     = color.New(color.FgGreen, color.Bold)
	colorMajority = color.New(color.FgGreen)
	colorFew      = color.New(color.FgYellow)

	colorAccent = color.New(color.FgCyan)
	colorHeader = color.New(color.Bold)
	colorMuted  = color.New(color.FgWhite, color.Faint)
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// DisableColor turns off colored output for the whole process.
func DisableColor() {
	color.NoColor = true
}

// heatColor picks the tier for weight out of total guests.
func heatColor(weight, total int) *color.Color {
	switch {
	case total > 0 && weight >= total:
		return colorFull
	case total > 0 && 2*weight > total:
		return colorMajority
	default:
		return colorFew
	}
}

// formatWeight colors s by how many of total guests are free.
func formatWeight(s string, weight, total int) string {
	return heatColor(weight, total).Sprint(s)
}

func formatAccent(s string) string { return colorAccent.Sprint(s) }
func formatHeader(s string) string { return colorHeader.Sprint(s) }
func formatMuted(s string) string  { return colorMuted.Sprint(s) }
