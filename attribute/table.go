package attribute

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// FeaturePrefix marks feature-channel columns in a cell table.
	FeaturePrefix = "FT_"
	// PhenotypePrefix marks phenotype indicator columns in a cell table.
	PhenotypePrefix = "PH_"
)

// StripPrefix removes a source-specific column prefix from name.
func StripPrefix(name string) string {
	for _, p := range []string{FeaturePrefix, PhenotypePrefix} {
		if s, ok := strings.CutPrefix(name, p); ok {
			return s
		}
	}
	return name
}

// Table is tabular per-cell data keyed by cell identifier.
type Table struct {
	columns  []string
	colIndex map[string]int
	index    map[int64]int
	rows     [][]float64
}

// NewTable creates an empty table with the given column names.
func NewTable(columns []string) (*Table, error) {
	t := &Table{
		columns:  slices.Clone(columns),
		colIndex: make(map[string]int, len(columns)),
		index:    make(map[int64]int),
	}
	for i, c := range columns {
		if _, dup := t.colIndex[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		t.colIndex[c] = i
	}
	return t, nil
}

// Append adds the row of cell id.
func (t *Table) Append(id int64, values []float64) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("cell %d: %d values for %d columns", id, len(values), len(t.columns))
	}
	if _, dup := t.index[id]; dup {
		return fmt.Errorf("cell %d: duplicate row", id)
	}
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, slices.Clone(values))
	return nil
}

// Columns returns the column names.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// ColumnsWithPrefix returns the columns starting with prefix, in table order.
func (t *Table) ColumnsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range t.columns {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the row of cell id. The returned slice must not be modified.
func (t *Table) Row(id int64) ([]float64, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.rows[i], true
}
