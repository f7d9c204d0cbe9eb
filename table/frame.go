// Package table holds the in-memory frames the expression engine reads.
//
// A Frame is an ordered list of named, typed columns of equal length.
// Frames are treated as read-only once built.
package table

import (
	"fmt"
	"strings"
)

// Frame is the core data structure: named columns of equal length.
type Frame struct {
	Names   []string
	Columns []*Column
}

// NewFrame creates a frame, checking that names and columns agree and that
// every column has the same number of rows.
func NewFrame(names []string, cols []*Column) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("frame: %d names for %d columns", len(names), len(cols))
	}
	for i, c := range cols {
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("frame: column %q has %d rows, expected %d",
				names[i], c.Len(), cols[0].Len())
		}
	}
	return &Frame{Names: names, Columns: cols}, nil
}

// MustFrame is NewFrame for statically known inputs; it panics on error.
func MustFrame(names []string, cols ...*Column) *Frame {
	f, err := NewFrame(names, cols)
	if err != nil {
		panic(err)
	}
	return f
}

// FromRows builds a frame from row-major cells and per-column types.
func FromRows(names []string, types []SType, rows [][]Value) (*Frame, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("frame: %d names for %d types", len(names), len(types))
	}
	cols := make([]*Column, len(names))
	for j := range names {
		data := make([]Value, len(rows))
		for i, r := range rows {
			if j < len(r) {
				data[i] = r[j]
			}
		}
		cols[j] = NewColumn(types[j], data)
	}
	return NewFrame(names, cols)
}

// NCols returns the number of columns.
func (f *Frame) NCols() int { return len(f.Columns) }

// NRows returns the number of rows.
func (f *Frame) NRows() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return f.Columns[0].Len()
}

// Column returns the column at index i.
func (f *Frame) Column(i int) *Column { return f.Columns[i] }

// Types returns the storage type of every column.
func (f *Frame) Types() []SType {
	out := make([]SType, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = c.Type
	}
	return out
}

// ColIndex returns the index of a column by name, or -1.
func (f *Frame) ColIndex(name string) int {
	for i, c := range f.Names {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the value at a given row and column name.
func (f *Frame) Get(row int, col string) Value {
	idx := f.ColIndex(col)
	if idx < 0 || row < 0 || row >= f.NRows() {
		return Null()
	}
	return f.Columns[idx].Data[row]
}

// Row returns the cells of row i.
func (f *Frame) Row(i int) []Value {
	vals := make([]Value, len(f.Columns))
	for j, c := range f.Columns {
		vals[j] = c.Data[i]
	}
	return vals
}

// String returns a compact representation of the frame.
func (f *Frame) String() string {
	n := f.NRows()
	if n == 0 {
		return "[" + strings.Join(f.Names, ", ") + "] (0 rows)"
	}

	var sb strings.Builder
	sb.WriteString("[ ")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("{")
		for j, c := range f.Columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Names[j])
			sb.WriteString(":")
			sb.WriteString(c.Data[i].AsString())
		}
		sb.WriteString("}")
	}
	sb.WriteString(" ]")
	return sb.String()
}
