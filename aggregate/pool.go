package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrNoClasses is returned when no class has any pooled rows.
var ErrNoClasses = errors.New("no class has pooled rows")

// Pooled holds the per-class row-stacked attribute distributions.
type Pooled struct {
	// Names lists the attribute of every column.
	Names []string
	// Classes lists the surviving original class indices in ascending order.
	Classes []int
	// Rows holds one matrix per entry of Classes.
	Rows []*mat.Dense
}

// Pool row-stacks the selected rows of every unit by class label, in unit order.
// names labels the attribute columns of the units' rows.
func Pool(units []Unit, names []string, sel Selection) (*Pooled, error) {
	if len(names) == 0 {
		return nil, errors.New("pool: no attributes")
	}
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}

	byClass := make(map[int][]float64)
	for _, u := range units {
		rows, err := sel.apply(u)
		if err != nil {
			return nil, fmt.Errorf("pool: %w", err)
		}
		for i, row := range rows {
			if len(row) != len(names) {
				return nil, fmt.Errorf("pool: unit %q row %d has %d values for %d attributes", u.Name, i, len(row), len(names))
			}
			byClass[u.Label] = append(byClass[u.Label], row...)
		}
	}

	p := &Pooled{Names: append([]string(nil), names...)}
	for c, data := range byClass {
		if len(data) > 0 {
			p.Classes = append(p.Classes, c)
		}
	}
	if len(p.Classes) == 0 {
		return nil, ErrNoClasses
	}
	sort.Ints(p.Classes)

	p.Rows = make([]*mat.Dense, len(p.Classes))
	for i, c := range p.Classes {
		data := byClass[c]
		p.Rows[i] = mat.NewDense(len(data)/len(names), len(names), data)
	}
	return p, nil
}

// Len returns the number of pooled rows of the i-th surviving class.
func (p *Pooled) Len(i int) int {
	r, _ := p.Rows[i].Dims()
	return r
}

// Index returns the columns of the named attributes.
func (p *Pooled) Index(names []string) ([]int, error) {
	pos := make(map[string]int, len(p.Names))
	for i, n := range p.Names {
		pos[n] = i
	}
	cols := make([]int, len(names))
	for i, n := range names {
		c, ok := pos[n]
		if !ok {
			return nil, fmt.Errorf("unknown attribute %q", n)
		}
		cols[i] = c
	}
	return cols, nil
}

// Select returns a view restricted to the named attributes, in the given order.
func (p *Pooled) Select(names []string) (*Pooled, error) {
	cols, err := p.Index(names)
	if err != nil {
		return nil, err
	}
	return p.Columns(cols), nil
}

// Columns returns a copy restricted to the given column indices. Classes are kept.
func (p *Pooled) Columns(cols []int) *Pooled {
	out := &Pooled{
		Names:   make([]string, len(cols)),
		Classes: p.Classes,
		Rows:    make([]*mat.Dense, len(p.Rows)),
	}
	for j, c := range cols {
		out.Names[j] = p.Names[c]
	}
	for i, m := range p.Rows {
		r, _ := m.Dims()
		d := mat.NewDense(r, len(cols), nil)
		for j, c := range cols {
			d.SetCol(j, mat.Col(nil, c, m))
		}
		out.Rows[i] = d
	}
	return out
}
