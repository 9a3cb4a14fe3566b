package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/poll"
)

// SlotOpts configures slot printing.
type SlotOpts struct {
	Total     int  // guests counted for the weight bar
	ShowNames bool // list contributors after each slot
	Width     int  // line width for names (0 = terminal width)
	BarWidth  int  // weight bar cells (0 = 10)
}

// printSlots prints slots grouped by date:
//
//	Mon Jan 1
//	  09:00-10:30  [██████░░░░] 2/3  1h30m  ana, bo
func printSlots(w io.Writer, slots []grid.Slot, opts SlotOpts) {
	width := opts.Width
	if width <= 0 {
		width = termWidth()
	}
	barWidth := opts.BarWidth
	if barWidth <= 0 {
		barWidth = 10
	}

	var day time.Time
	for _, s := range slots {
		if d := dateutil.TruncateToDay(s.From); !d.Equal(day) {
			if !day.IsZero() {
				fmt.Fprintln(w)
			}
			day = d
			fmt.Fprintln(w, formatHeader(d.Format("Mon Jan 2")))
		}

		clock := fmt.Sprintf("%s-%s", s.From.Format("15:04"), endClock(s))
		weight := fmt.Sprintf("%d/%d", s.Weight, opts.Total)
		line := fmt.Sprintf("  %s  %s %s  %s",
			clock,
			WeightBar(s.Weight, opts.Total, barWidth),
			formatWeight(fmt.Sprintf("%-5s", weight), s.Weight, opts.Total),
			formatMuted(fmt.Sprintf("%-6s", FormatDuration(int(s.Duration().Minutes())))),
		)
		if opts.ShowNames && len(s.Contributors) > 0 {
			// "  HH:MM-HH:MM  [bar] w/t    dur     "
			used := 2 + 11 + 2 + barWidth + 2 + 1 + 5 + 2 + 6 + 2
			line += "  " + truncate(strings.Join(s.Contributors, ", "), max(width-used, 10))
		}
		fmt.Fprintln(w, line)
	}
}

// printPoll prints the header block of a poll.
func printPoll(w io.Writer, p *poll.Poll, guests []*poll.Guest, now time.Time) {
	fmt.Fprintf(w, "%s  %s\n", formatHeader(p.Title), formatAccent(p.ID))
	fmt.Fprintf(w, "  Dates:  %s - %s (%d days)\n",
		p.WindowStart.Format("Mon Jan 2"), p.WindowEnd.Format("Mon Jan 2 2006"), p.Days())
	fmt.Fprintf(w, "  Hours:  %s-%s %s\n", p.DayStart, p.DayEnd, p.TimeZone)
	fmt.Fprintf(w, "  Host:   %s, created %s\n", p.Host, humanize.RelTime(p.CreatedAt, now, "ago", "from now"))

	names := make([]string, 0, len(guests))
	for _, g := range guests {
		names = append(names, g.Name)
	}
	if len(names) == 0 {
		fmt.Fprintf(w, "  Guests: %s\n", formatMuted("none yet"))
		return
	}
	fmt.Fprintf(w, "  Guests: %d (%s)\n", len(names), strings.Join(names, ", "))
}

// WeightBar draws weight out of total as a bar of width cells.
func WeightBar(weight, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", width) + "]"
	}
	filled := min(weight*width/total, width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + formatWeight(bar, weight, total) + "]"
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// endClock prints a slot end, using "24:00" for the next midnight.
func endClock(s grid.Slot) string {
	if !dateutil.TruncateToDay(s.To).Equal(dateutil.TruncateToDay(s.From)) {
		return "24:00"
	}
	return s.To.Format("15:04")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	for _, para := range strings.Split(stripMarkdownCodeBlocks(text), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			fmt.Fprintln(w)
			continue
		}

		line := ""
		for _, word := range words {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) <= width-len(prefix):
				line += " " + word
			default:
				fmt.Fprintln(w, prefix+line)
				line = word
			}
		}
		fmt.Fprintln(w, prefix+line)
	}
}

// stripMarkdownCodeBlocks removes ```...``` fences from text.
func stripMarkdownCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			continue // Skip the fence line
		}
		if !inCodeBlock {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
