package tui

import (
	"time"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/grid"
)

const (
	timeLabelWidth = 6 // "09:00 "
	headerLines    = 3 // title, info, day labels
	footerLines    = 2 // status, help
	minColWidth    = 4
	maxColWidth    = 12
)

// cellPos addresses a visible cell: a window day and a band row.
type cellPos struct {
	Day int
	Row int
}

// rows is the number of quarter-hour rows in the daily band.
func (m Model) rows() int {
	return (m.bandEnd - m.bandStart) / grid.CellMinutes
}

// days is the number of window dates shown as columns.
func (m Model) days() int {
	if m.poll == nil {
		return 0
	}
	return m.poll.Days()
}

// colWidth is the width of one day column including its separator.
func (m Model) colWidth() int {
	days := m.days()
	if days == 0 {
		return minColWidth
	}
	w := (m.width - timeLabelWidth) / days
	return min(max(w, minColWidth), maxColWidth)
}

// visibleRows is how many band rows fit between header and footer.
func (m Model) visibleRows() int {
	return max(m.height-headerLines-footerLines, 1)
}

// clampScroll keeps the scroll offset inside the band.
func (m *Model) clampScroll() {
	m.scroll = min(max(m.scroll, 0), max(m.rows()-m.visibleRows(), 0))
}

// cellAt maps a terminal position to a cell. ok is false outside the grid.
func (m Model) cellAt(x, y int) (cellPos, bool) {
	if m.poll == nil || x < timeLabelWidth {
		return cellPos{}, false
	}
	day := (x - timeLabelWidth) / m.colWidth()
	if day >= m.days() {
		return cellPos{}, false
	}

	r := y - headerLines
	if r < 0 || r >= m.visibleRows() {
		return cellPos{}, false
	}
	row := r + m.scroll
	if row >= m.rows() {
		return cellPos{}, false
	}
	return cellPos{Day: day, Row: row}, true
}

// instant returns the start of the cell at pos.
func (m Model) instant(pos cellPos) time.Time {
	date := m.poll.WindowStart.AddDate(0, 0, pos.Day)
	return dateutil.At(date, m.bandStart+pos.Row*grid.CellMinutes)
}

// gridIndex returns the grid column of pos; rows map 1:1 to columns
// offset by the band start.
func (m Model) gridIndex(pos cellPos) (day, col int) {
	return pos.Day, m.bandStart/grid.CellMinutes + pos.Row
}
