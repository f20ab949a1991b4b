// Package dataset provides CSV time-series loading and preprocessing for the
// model trainer. A Frame is an ordered collection of named columns, one row per
// observation, loaded from a CSV file and normalized in place before training.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Frame is a tabular dataset with ordered, named columns. Cells are kept as raw
// strings until preprocessing converts them to numeric columns; missing or
// unparseable numeric cells become NaN.
type Frame struct {
	Name    string
	columns []string
	cells   map[string][]string
	numeric map[string][]float64
}

func NewFrame(name string, columns []string) *Frame {
	f := &Frame{
		Name:    name,
		columns: append([]string(nil), columns...),
		cells:   make(map[string][]string, len(columns)),
		numeric: make(map[string][]float64, len(columns)),
	}
	for _, c := range columns {
		f.cells[c] = nil
	}
	return f
}

// AppendRow adds one observation. Short rows are rejected; extra cells are ignored.
func (f *Frame) AppendRow(record []string) error {
	if len(record) < len(f.columns) {
		return fmt.Errorf("row has %d cells, expected %d", len(record), len(f.columns))
	}
	for i, c := range f.columns {
		f.cells[c] = append(f.cells[c], strings.TrimSpace(record[i]))
	}
	return nil
}

func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

func (f *Frame) Rows() int {
	if len(f.columns) == 0 {
		return 0
	}
	return len(f.cells[f.columns[0]])
}

func (f *Frame) Has(column string) bool {
	_, ok := f.cells[column]
	return ok
}

// Raw returns the raw string cells of a column, or nil if absent.
func (f *Frame) Raw(column string) []string {
	return f.cells[column]
}

// Column returns the numeric values of a column, parsing raw cells on first
// access. Blank or non-numeric cells are NaN. Returns nil if the column is absent.
func (f *Frame) Column(column string) []float64 {
	if v, ok := f.numeric[column]; ok {
		return v
	}
	raw, ok := f.cells[column]
	if !ok {
		return nil
	}
	vals := make([]float64, len(raw))
	for i, cell := range raw {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			v = math.NaN()
		}
		vals[i] = v
	}
	f.numeric[column] = vals
	return vals
}

// SetColumn replaces a column's numeric values. The column must already exist
// and the length must match the frame's row count.
func (f *Frame) SetColumn(column string, values []float64) error {
	if !f.Has(column) {
		return fmt.Errorf("column %s not found", column)
	}
	if len(values) != f.Rows() {
		return fmt.Errorf("column %s: %d values for %d rows", column, len(values), f.Rows())
	}
	f.numeric[column] = values
	return nil
}

// keepRows retains only the rows where keep[i] is true, across every column.
func (f *Frame) keepRows(keep []bool) {
	for _, c := range f.columns {
		raw := f.cells[c]
		kept := raw[:0]
		for i, cell := range raw {
			if keep[i] {
				kept = append(kept, cell)
			}
		}
		f.cells[c] = kept
		if num, ok := f.numeric[c]; ok {
			keptNum := num[:0]
			for i, v := range num {
				if keep[i] {
					keptNum = append(keptNum, v)
				}
			}
			f.numeric[c] = keptNum
		}
	}
}

// Matrix builds a feature matrix from every column except the excluded ones,
// preserving column order. Returns the matrix and the names of the included
// columns.
func (f *Frame) Matrix(exclude ...string) (*mat.Dense, []string, error) {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}

	var features []string
	for _, c := range f.columns {
		if !skip[c] {
			features = append(features, c)
		}
	}
	if len(features) == 0 {
		return nil, nil, fmt.Errorf("no feature columns left after excluding %v", exclude)
	}

	rows := f.Rows()
	if rows == 0 {
		return nil, nil, fmt.Errorf("frame %s has no rows", f.Name)
	}
	m := mat.NewDense(rows, len(features), nil)
	for j, c := range features {
		col := f.Column(c)
		for i := 0; i < rows; i++ {
			m.Set(i, j, col[i])
		}
	}
	return m, features, nil
}
