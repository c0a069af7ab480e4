package session

import (
	"context"
	"slices"

	"github.com/calumari/jform"
)

// Table is the flattened projection of every object.
type Table struct {
	Columns  []jform.Path
	Rows     [][]string
	Selected []bool
	// SortColumn is nil when the rows are in file order.
	SortColumn jform.Path
	SortDir    jform.SortDirection
}

// SortIndex returns the position of the sort column, or -1.
func (t Table) SortIndex() int {
	if t.SortColumn == nil {
		return -1
	}
	return slices.IndexFunc(t.Columns, t.SortColumn.Equal)
}

// Table builds the table view.
func (s *Session) Table() Table {
	objs := s.doc.Objects()
	cols := jform.Columns(objs)
	t := Table{
		Columns:    cols,
		Rows:       make([][]string, len(objs)),
		Selected:   make([]bool, len(objs)),
		SortColumn: s.sortCol,
		SortDir:    s.sortDir,
	}
	for i, obj := range objs {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = jform.FormatCell(c.Get(obj))
		}
		t.Rows[i] = row
		t.Selected[i] = s.selected[i]
	}
	return t
}

// EditCell writes raw into row at column and returns the stored value.
func (s *Session) EditCell(ctx context.Context, row int, column jform.Path, raw string) (any, error) {
	v, err := s.doc.SetCell(row, column, raw)
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return v, nil
}

// ToggleSort sorts by column: ascending on a new column, flipping direction
// when it is already the sort column. The current object becomes the first
// row and the selection is cleared.
func (s *Session) ToggleSort(ctx context.Context, column jform.Path) {
	if s.sortCol != nil && s.sortCol.Equal(column) {
		s.sortDir = s.sortDir.Flip()
	} else {
		s.sortCol = slices.Clone(column)
		s.sortDir = jform.Ascending
	}
	s.doc.Sort(s.sortCol, s.sortDir)
	s.index = 0
	s.selected = make(map[int]bool)
	s.changed(ctx)
}

// SortState returns the active sort column (nil when unsorted) and direction.
func (s *Session) SortState() (jform.Path, jform.SortDirection) {
	return s.sortCol, s.sortDir
}

// ToggleRow flips the selection of row.
func (s *Session) ToggleRow(row int) {
	if row < 0 || row >= s.doc.Len() {
		return
	}
	if s.selected[row] {
		delete(s.selected, row)
		return
	}
	s.selected[row] = true
}

// SelectAll selects every row, or clears the selection when all rows are
// already selected.
func (s *Session) SelectAll() {
	if len(s.selected) == s.doc.Len() {
		s.selected = make(map[int]bool)
		return
	}
	for i := range s.doc.Len() {
		s.selected[i] = true
	}
}

// SelectedRows returns the selected row indices in ascending order.
func (s *Session) SelectedRows() []int {
	rows := make([]int, 0, len(s.selected))
	for i := range s.selected {
		rows = append(rows, i)
	}
	slices.Sort(rows)
	return rows
}

// DeleteSelected removes the selected rows. At least one row must remain.
func (s *Session) DeleteSelected(ctx context.Context) (int, error) {
	rows := s.SelectedRows()
	if err := s.doc.DeleteRows(rows); err != nil {
		return 0, err
	}
	s.selected = make(map[int]bool)
	s.sortCol = nil
	s.sortDir = jform.Ascending
	if s.index >= s.doc.Len() {
		s.index = 0
	}
	s.changed(ctx)
	return len(rows), nil
}

// NewRow appends a row shaped like the first object. The rows are no longer
// in sorted order afterwards.
func (s *Session) NewRow(ctx context.Context) int {
	i := s.doc.NewRow()
	s.sortCol = nil
	s.sortDir = jform.Ascending
	s.changed(ctx)
	return i
}
