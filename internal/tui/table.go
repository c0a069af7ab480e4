package tui

import (
	"fmt"
	"strings"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/session"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const (
	maxColumnWidth = 24
	minColumnWidth = 3
	markerWidth    = 4
)

func (m *Model) clampCell(t session.Table) {
	m.row = min(max(m.row, 0), max(len(t.Rows)-1, 0))
	m.col = min(max(m.col, 0), max(len(t.Columns)-1, 0))
}

func (m *Model) handleTableKey(msg tea.KeyMsg) tea.Cmd {
	t := m.sess.Table()
	m.clampCell(t)

	switch {
	case key.Matches(msg, m.keys.up):
		m.row--
	case key.Matches(msg, m.keys.down):
		m.row++
	case key.Matches(msg, m.keys.prevObject):
		m.col--
	case key.Matches(msg, m.keys.nextObject):
		m.col++
	case key.Matches(msg, m.keys.edit):
		if len(t.Columns) > 0 {
			return m.startCellEdit(t)
		}
	case key.Matches(msg, m.keys.sort):
		if len(t.Columns) == 0 {
			return nil
		}
		m.sess.ToggleSort(m.ctx, t.Columns[m.col])
		col, dir := m.sess.SortState()
		m.row, m.rowOffset = 0, 0
		m.setStatus(fmt.Sprintf("sorted by %s %s", col, dir))
	case key.Matches(msg, m.keys.selectRow):
		m.sess.ToggleRow(m.row)
	case key.Matches(msg, m.keys.selectAll):
		m.sess.SelectAll()
	case key.Matches(msg, m.keys.newRow):
		m.row = m.sess.NewRow(m.ctx)
		m.setStatus(fmt.Sprintf("added row %d", m.row+1))
	case key.Matches(msg, m.keys.delRows):
		n := len(m.sess.SelectedRows())
		if n == 0 {
			m.setError(jform.ErrNoSelection)
			return nil
		}
		m.dialog = newDialog(dialogConfirmDeleteRows, fmt.Sprintf("Delete %d selected rows?", n))
		return nil
	}

	t = m.sess.Table()
	m.clampCell(t)
	m.rowOffset = follow(m.row, m.rowOffset, m.bodyHeight()-1)
	m.colOffset = m.followColumn(t, m.width)
	return nil
}

func (m *Model) startCellEdit(t session.Table) tea.Cmd {
	m.editing = true
	m.editor.SetValue(t.Rows[m.row][m.col])
	m.editor.CursorEnd()
	return m.editor.Focus()
}

func (m *Model) handleCellEditKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEsc {
		m.stopEditing()
		return nil
	}
	if msg.Type != tea.KeyEnter && !key.Matches(msg, m.keys.nextCell, m.keys.prevCell) {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return cmd
	}

	t := m.sess.Table()
	m.clampCell(t)
	column := t.Columns[m.col]
	v, err := m.sess.EditCell(m.ctx, m.row, column, m.editor.Value())
	m.stopEditing()
	if err != nil {
		m.setError(err)
		return nil
	}
	m.setStatus(fmt.Sprintf("row %d %s = %s", m.row+1, column, jform.Compact(v)))

	var moved bool
	switch {
	case key.Matches(msg, m.keys.nextCell):
		moved = m.moveCell(t, 1)
	case key.Matches(msg, m.keys.prevCell):
		moved = m.moveCell(t, -1)
	}
	if !moved {
		return nil
	}
	// The edit may have added a column.
	t = m.sess.Table()
	m.clampCell(t)
	m.rowOffset = follow(m.row, m.rowOffset, m.bodyHeight()-1)
	m.colOffset = m.followColumn(t, m.width)
	return m.startCellEdit(t)
}

// moveCell steps delta cells in reading order, wrapping across rows. It
// reports false at either end of the table and leaves the focus alone.
func (m *Model) moveCell(t session.Table, delta int) bool {
	cols := len(t.Columns)
	pos := m.row*cols + m.col + delta
	if pos < 0 || pos >= cols*len(t.Rows) {
		return false
	}
	m.row, m.col = pos/cols, pos%cols
	return true
}

func (m *Model) deleteRows() {
	n, err := m.sess.DeleteSelected(m.ctx)
	if err != nil {
		m.setError(err)
		return
	}
	t := m.sess.Table()
	m.clampCell(t)
	m.rowOffset = follow(m.row, m.rowOffset, m.bodyHeight()-1)
	m.setStatus(fmt.Sprintf("deleted %d rows", n))
}

func columnWidths(t session.Table) []int {
	widths := make([]int, len(t.Columns))
	for j, c := range t.Columns {
		w := runewidth.StringWidth(c.String()) + 2
		for _, row := range t.Rows {
			w = max(w, runewidth.StringWidth(row[j]))
		}
		widths[j] = min(max(w, minColumnWidth), maxColumnWidth)
	}
	return widths
}

// followColumn returns the first visible column so the focused one fits in
// width.
func (m *Model) followColumn(t session.Table, width int) int {
	widths := columnWidths(t)
	offset := min(m.colOffset, m.col)
	for offset < m.col {
		used := markerWidth
		for j := offset; j <= m.col; j++ {
			used += widths[j] + 1
		}
		if used <= width {
			break
		}
		offset++
	}
	return max(offset, 0)
}

func (m Model) tableView() string {
	t := m.sess.Table()
	h := m.bodyHeight()
	if len(t.Columns) == 0 {
		return m.st.empty.Render("no columns: every object is empty")
	}

	widths := columnWidths(t)
	row := min(max(m.row, 0), len(t.Rows)-1)
	col := min(max(m.col, 0), len(t.Columns)-1)
	sortIdx := t.SortIndex()

	// Columns that fit, starting at the horizontal offset.
	var visible []int
	used := markerWidth
	for j := min(m.colOffset, col); j < len(t.Columns); j++ {
		if used+widths[j] > m.width && len(visible) > 0 {
			break
		}
		visible = append(visible, j)
		used += widths[j] + 1
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", markerWidth))
	for _, j := range visible {
		name := t.Columns[j].String()
		if j == sortIdx {
			if t.SortDir == jform.Descending {
				name += " ▼"
			} else {
				name += " ▲"
			}
		}
		sb.WriteString(m.st.colHeader.Render(pad(name, widths[j])))
		sb.WriteString(" ")
	}

	offset := follow(row, min(m.rowOffset, row), h-1)
	for i := offset; i < len(t.Rows) && i-offset < h-1; i++ {
		sb.WriteString("\n")
		marker := "[ ] "
		if t.Selected[i] {
			marker = m.st.selected.Render("[x]") + " "
		}
		sb.WriteString(marker)
		for _, j := range visible {
			cell := pad(t.Rows[i][j], widths[j])
			switch {
			case i == row && j == col && m.editing:
				cell = m.editor.View()
			case i == row && j == col:
				cell = m.st.focused.Render(cell)
			default:
				cell = m.st.cell.Render(cell)
			}
			sb.WriteString(cell)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
