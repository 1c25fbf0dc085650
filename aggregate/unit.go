package aggregate

import (
	"fmt"

	"github.com/hupe1980/cgsep/attribute"
	"github.com/hupe1980/cgsep/graph"
)

// Unit is one pooling unit: a single graph or all ROIs of a specimen.
type Unit struct {
	// Name is the graph name, or the specimen key for merged units.
	Name  string
	Label int
	// Graphs lists the member graphs in encounter order.
	Graphs []*graph.Graph
	// Rows holds one attribute row per node, concatenated over Graphs.
	Rows [][]float64
	// Importance is aligned with Rows; nil unless every member is annotated.
	Importance []float64
}

// Units builds pooling units from graphs using the attribute source src.
// When merge is set, graphs sharing a specimen are combined into one unit; their
// labels must agree.
func Units(graphs []*graph.Graph, src attribute.Source, merge bool) ([]Unit, error) {
	attrs, err := attribute.Extract(src, graphs)
	if err != nil {
		return nil, err
	}

	var (
		units []Unit
		index = make(map[string]int)
	)
	for i, g := range graphs {
		key := g.Name
		if merge {
			key = g.Specimen
		}
		pos, ok := index[key]
		if !ok {
			pos = len(units)
			index[key] = pos
			units = append(units, Unit{Name: key, Label: g.Label})
		}
		u := &units[pos]
		if u.Label != g.Label {
			return nil, fmt.Errorf("specimen %q: graph %q has label %d, expected %d", key, g.Name, g.Label, u.Label)
		}
		u.Graphs = append(u.Graphs, g)
		u.Rows = append(u.Rows, attrs[i]...)
	}

	for i := range units {
		u := &units[i]
		annotated := true
		for _, g := range u.Graphs {
			annotated = annotated && g.Annotated()
		}
		if !annotated {
			continue
		}
		u.Importance = make([]float64, 0, len(u.Rows))
		for _, g := range u.Graphs {
			u.Importance = append(u.Importance, g.Importance...)
		}
	}
	return units, nil
}
