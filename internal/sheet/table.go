// Package sheet holds the in-memory tabular model shared by the readers,
// the join and the writer. Cells are kept as text exactly as read.
package sheet

import (
	"errors"
	"fmt"
)

var ErrMissingColumn = errors.New("missing column")

// Table rows always hold exactly len(Columns) cells; use Append to add rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(row []string) {
	cells := make([]string, len(t.Columns))
	copy(cells, row)
	t.Rows = append(t.Rows, cells)
}

func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: %w", name, ErrMissingColumn)
}

func (t *Table) HasColumn(name string) bool {
	_, err := t.ColumnIndex(name)
	return err == nil
}

func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// SetColumn replaces an existing column's values or appends a new column.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}

	if idx, err := t.ColumnIndex(name); err == nil {
		for i := range t.Rows {
			t.Rows[i][idx] = values[i]
		}
		return nil
	}

	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// RenameColumn renames from to to. A missing column is ignored.
func (t *Table) RenameColumn(from, to string) {
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
		}
	}
}

// Concat stacks tables vertically. The result has the union of all columns
// in first-seen order; cells for columns a table lacks are empty.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	index := make(map[string]int)

	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}

	for _, t := range tables {
		for _, row := range t.Rows {
			cells := make([]string, len(out.Columns))
			for i, c := range t.Columns {
				if i < len(row) {
					cells[index[c]] = row[i]
				}
			}
			out.Rows = append(out.Rows, cells)
		}
	}

	return out
}
