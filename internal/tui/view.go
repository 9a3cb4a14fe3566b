package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/selection"
	"github.com/javiermolinar/huddle/internal/tui/theme"
)

// View renders the editor.
func (m Model) View() string {
	if m.poll == nil {
		if m.err != nil {
			return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\nPress q to quit."
		}
		return "Loading poll..."
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderTitle(), m.renderInfo(), m.renderDayHeader())
	lines = append(lines, m.renderRows()...)
	lines = append(lines, m.renderStatus(), m.help.View(m.keys))

	base := strings.Join(lines, "\n")
	if m.width <= 0 || m.height <= 0 {
		return base
	}
	return m.overlay.Render(base, m.width, m.height, m.styles.Box)
}

func (m Model) renderTitle() string {
	title := m.styles.Title.Render(m.poll.Title)
	who := m.styles.Info.Render(" editing as " + m.guest.Name)
	if m.dirty {
		who += m.styles.Dirty.Render(" ● unsaved")
	}
	return title + who
}

func (m Model) renderInfo() string {
	info := fmt.Sprintf("%s - %s  %s-%s  %s  %d guests",
		m.poll.WindowStart.Format("Jan 2"),
		m.poll.WindowEnd.Format("Jan 2"),
		dateutil.FormatClock(m.bandStart),
		dateutil.FormatClock(m.bandEnd),
		m.poll.TimeZone,
		len(m.guests),
	)
	return m.styles.Info.Render(info)
}

func (m Model) renderDayHeader() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", timeLabelWidth))
	w := m.colWidth()
	for _, date := range m.poll.Dates() {
		label := date.Format("Mon 02")
		if len(label) > w-1 {
			label = date.Format("02")
		}
		b.WriteString(m.styles.DayHeader.Render(pad(label, w-1)))
		b.WriteByte(' ')
	}
	return b.String()
}

// renderRows draws the visible band rows, one line per quarter hour.
func (m Model) renderRows() []string {
	preview, previewing := m.ctrl.Preview()
	total := m.otherCount()
	w := m.colWidth()

	last := min(m.scroll+m.visibleRows(), m.rows())
	out := make([]string, 0, last-m.scroll)
	for row := m.scroll; row < last; row++ {
		var b strings.Builder
		minutes := m.bandStart + row*grid.CellMinutes
		label := ""
		if minutes%60 == 0 {
			label = dateutil.FormatClock(minutes)
		}
		b.WriteString(m.styles.TimeLabel.Render(pad(label, timeLabelWidth-1)))
		b.WriteByte(' ')

		for day := range m.days() {
			pos := cellPos{Day: day, Row: row}
			b.WriteString(m.renderCell(pos, w-1, total, preview, previewing))
			b.WriteByte(' ')
		}
		out = append(out, b.String())
	}
	return out
}

// renderCell paints one cell. A live preview wins over the editor's own
// cells, which win over the heat shade of everyone else.
func (m Model) renderCell(pos cellPos, width, total int, preview selection.Preview, previewing bool) string {
	day, col := m.gridIndex(pos)
	count := m.aggregate.Count(day, col)
	at := m.instant(pos)

	text := "·"
	if count > 0 {
		text = strconv.Itoa(count)
	}

	var style lipgloss.Style
	switch {
	case previewing && preview.Contains(at):
		style = m.styles.PreviewCreate
		if preview.Mode == selection.ModeDeleting {
			style = m.styles.PreviewDelete
		}
	case m.ctrl.Grid().Count(day, col) > 0:
		style = m.styles.Own
	default:
		style = m.styles.Heat[theme.HeatLevel(count, total)]
	}
	if m.hover != nil && *m.hover == pos {
		style = m.styles.Hover.Inherit(style)
	}
	return style.Render(center(text, width))
}

func (m Model) renderStatus() string {
	var s string
	switch {
	case m.err != nil:
		s = m.styles.Error.Render(m.statusMsg)
	case m.statusMsg != "":
		s = m.styles.Status.Render(m.statusMsg)
	case m.hover != nil:
		s = m.styles.Info.Render(m.cellTitle(*m.hover) + "  " + m.cellSummary(*m.hover))
	}
	if m.width > 0 {
		s = ansi.Truncate(s, m.width, "…")
	}
	return s
}

// cellTitle names the quarter hour at pos.
func (m Model) cellTitle(pos cellPos) string {
	at := m.instant(pos)
	return rangeLabel(at, at.Add(15*time.Minute))
}

// cellSummary is the one-line availability of the cell at pos.
func (m Model) cellSummary(pos cellPos) string {
	day, col := m.gridIndex(pos)
	names := m.aggregate.Contributors(day, col)
	s := fmt.Sprintf("%d/%d others free", len(names), m.otherCount())
	if len(names) > 0 {
		s += ": " + strings.Join(names, ", ")
	}
	return s
}

// cellDetails is the overlay body for the cell at pos.
func (m Model) cellDetails(pos cellPos) string {
	day, col := m.gridIndex(pos)
	var b strings.Builder
	b.WriteString(m.cellSummary(pos))
	b.WriteString("\n")
	if m.ctrl.Grid().Count(day, col) > 0 {
		b.WriteString("You: available")
	} else {
		b.WriteString("You: not available")
	}

	for _, s := range m.aggregate.ExtractSlots() {
		if s.Contains(m.instant(pos)) {
			fmt.Fprintf(&b, "\nSame group: %s", rangeLabel(s.From, s.To))
			break
		}
	}
	return b.String()
}

// rangeLabel formats [from, to) as "Mon Jan 2 09:00-10:30". A range ending
// at the next midnight ends at "24:00"; longer ranges name both dates.
// previewLabel names a selection; blocks name their first and last day.
func previewLabel(p selection.Preview) string {
	if len(p.Ranges) < 2 {
		return rangeLabel(p.From, p.To)
	}
	first, last := p.Ranges[0], p.Ranges[len(p.Ranges)-1]
	return rangeLabel(first.From, first.To) + " to " + last.From.Format("Mon Jan 2")
}

func rangeLabel(from, to time.Time) string {
	day := from.Format("Mon Jan 2")
	switch {
	case dateutil.TruncateToDay(to).Equal(dateutil.TruncateToDay(from)):
		return fmt.Sprintf("%s %s-%s", day, from.Format("15:04"), to.Format("15:04"))
	case to.Equal(dateutil.TruncateToDay(from).AddDate(0, 0, 1)):
		return fmt.Sprintf("%s %s-24:00", day, from.Format("15:04"))
	default:
		return fmt.Sprintf("%s %s - %s", day, from.Format("15:04"), to.Format("Mon Jan 2 15:04"))
	}
}

// pad left-aligns s in width cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return ansi.Truncate(s, width, "")
}

// center centers s in width cells.
func center(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
