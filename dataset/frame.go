package dataset

import (
	"fmt"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

// Frame is a header plus rows of raw string cells. Cells are never parsed until a
// transformer asks for them.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// NewFrame builds a frame, checking that every row matches the header width.
func NewFrame(columns []string, rows [][]string) (*Frame, error) {
	for _, r := range rows {
		if len(r) != len(columns) {
			return nil, hpErrors.NewDimensionError("NewFrame", len(columns), len(r), 1)
		}
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Index returns the position of column name, or -1.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Col returns the cells of column name.
func (f *Frame) Col(name string) ([]string, error) {
	idx := f.Index(name)
	if idx < 0 {
		return nil, hpErrors.NewSchemaMismatchError("Frame.Col", []string{name}, nil)
	}
	out := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Select returns a frame restricted to names, in that order.
func (f *Frame) Select(names []string) (*Frame, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx[i] = f.Index(n)
		if idx[i] < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, hpErrors.NewSchemaMismatchError("Frame.Select", missing, nil)
	}
	rows := make([][]string, len(f.Rows))
	for r, src := range f.Rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = src[j]
		}
		rows[r] = row
	}
	return &Frame{Columns: append([]string(nil), names...), Rows: rows}, nil
}

// Take returns the rows at the given positions. Rows are shared, not copied.
func (f *Frame) Take(rows []int) *Frame {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = f.Rows[r]
	}
	return &Frame{Columns: f.Columns, Rows: out}
}

// CheckColumns compares the frame header with the schema's feature names and returns
// a schema mismatch listing missing and unknown columns.
func (f *Frame) CheckColumns(op string, s Schema) error {
	have := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		have[c] = true
	}
	want := make(map[string]bool, len(s.Columns))
	var missing, unknown []string
	for _, c := range s.Columns {
		want[c.Name] = true
		if !have[c.Name] {
			missing = append(missing, c.Name)
		}
	}
	for _, c := range f.Columns {
		if !want[c] {
			unknown = append(unknown, c)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		return hpErrors.NewSchemaMismatchError(op, missing, unknown)
	}
	return nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(%d rows x %d columns)", len(f.Rows), len(f.Columns))
}
