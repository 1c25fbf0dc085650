package attribute

import (
	"fmt"
	"slices"

	"github.com/hupe1980/cgsep/graph"
)

// Source yields per-node attribute vectors for a graph.
type Source interface {
	// Names returns the attribute names, one per column of every returned row.
	Names() []string
	// Attributes returns one row per node of g, in node order.
	Attributes(g *graph.Graph) ([][]float64, error)
}

// Extractor selects columns of a Table for the cells of a graph.
type Extractor struct {
	table *Table
	cols  []int
	names []string
}

// NewExtractor selects the given columns of t. Names are reported without their
// source prefix.
func NewExtractor(t *Table, columns ...string) (*Extractor, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no attribute columns selected")
	}
	e := &Extractor{table: t}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		i, ok := t.colIndex[c]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		name := StripPrefix(c)
		if seen[name] {
			return nil, fmt.Errorf("column %q duplicates attribute %q", c, name)
		}
		seen[name] = true
		e.cols = append(e.cols, i)
		e.names = append(e.names, name)
	}
	return e, nil
}

// NewDefaultExtractor selects every feature-channel column followed by every
// phenotype column of t.
func NewDefaultExtractor(t *Table) (*Extractor, error) {
	cols := append(t.ColumnsWithPrefix(FeaturePrefix), t.ColumnsWithPrefix(PhenotypePrefix)...)
	return NewExtractor(t, cols...)
}

// Names implements Source.
func (e *Extractor) Names() []string {
	return slices.Clone(e.names)
}

// Attributes implements Source. The graph must carry NodeIDs.
func (e *Extractor) Attributes(g *graph.Graph) ([][]float64, error) {
	if len(g.NodeIDs) == 0 && g.NumNodes() > 0 {
		return nil, fmt.Errorf("graph %q: no node ids to look up", g.Name)
	}
	out := make([][]float64, len(g.NodeIDs))
	for i, id := range g.NodeIDs {
		row, ok := e.table.Row(id)
		if !ok {
			return nil, fmt.Errorf("graph %q: cell %d not in table", g.Name, id)
		}
		v := make([]float64, len(e.cols))
		for j, c := range e.cols {
			v[j] = row[c]
		}
		out[i] = v
	}
	return out, nil
}

// FeatureSource uses each graph's own node feature matrix as its attributes.
type FeatureSource struct {
	names []string
}

// NewFeatureSource names the columns of the node feature matrix. Names are
// reported without their source prefix and must stay unique once stripped.
func NewFeatureSource(names []string) (*FeatureSource, error) {
	stripped, err := stripAll(names)
	if err != nil {
		return nil, err
	}
	return &FeatureSource{names: stripped}, nil
}

// MustFeatureSource is like NewFeatureSource but panics on error.
func MustFeatureSource(names []string) *FeatureSource {
	s, err := NewFeatureSource(names)
	if err != nil {
		panic(err)
	}
	return s
}

// Names implements Source.
func (s *FeatureSource) Names() []string {
	return slices.Clone(s.names)
}

// Attributes implements Source.
func (s *FeatureSource) Attributes(g *graph.Graph) ([][]float64, error) {
	if w := g.NumFeatures(); w != len(s.names) && g.NumNodes() > 0 {
		return nil, fmt.Errorf("graph %q: %d feature columns for %d names", g.Name, w, len(s.names))
	}
	return g.Features, nil
}

// Static serves attribute arrays computed by a collaborator, keyed by graph name.
type Static struct {
	names   []string
	byGraph map[string][][]float64
}

// NewStatic pairs values[i] with graphs[i].
func NewStatic(names []string, graphs []*graph.Graph, values [][][]float64) (*Static, error) {
	if len(graphs) != len(values) {
		return nil, fmt.Errorf("%d attribute arrays for %d graphs", len(values), len(graphs))
	}
	stripped, err := stripAll(names)
	if err != nil {
		return nil, err
	}
	s := &Static{names: stripped, byGraph: make(map[string][][]float64, len(graphs))}
	for i, g := range graphs {
		if _, dup := s.byGraph[g.Name]; dup {
			return nil, fmt.Errorf("duplicate graph name %q", g.Name)
		}
		s.byGraph[g.Name] = values[i]
	}
	return s, nil
}

// Names implements Source.
func (s *Static) Names() []string {
	return slices.Clone(s.names)
}

// Attributes implements Source.
func (s *Static) Attributes(g *graph.Graph) ([][]float64, error) {
	v, ok := s.byGraph[g.Name]
	if !ok {
		return nil, fmt.Errorf("graph %q: no attributes", g.Name)
	}
	return v, nil
}

// Extract pulls the attributes of every graph from src and checks that each graph
// gets one row per node and one column per attribute name.
func Extract(src Source, graphs []*graph.Graph) ([][][]float64, error) {
	width := len(src.Names())
	out := make([][][]float64, len(graphs))
	for i, g := range graphs {
		rows, err := src.Attributes(g)
		if err != nil {
			return nil, err
		}
		if len(rows) != g.NumNodes() {
			return nil, fmt.Errorf("graph %q: %d attribute rows for %d nodes", g.Name, len(rows), g.NumNodes())
		}
		for j, r := range rows {
			if len(r) != width {
				return nil, fmt.Errorf("graph %q: node %d has %d attributes, expected %d", g.Name, j, len(r), width)
			}
		}
		out[i] = rows
	}
	return out, nil
}

// stripAll removes source prefixes and rejects names that collide afterwards.
func stripAll(names []string) ([]string, error) {
	out := make([]string, len(names))
	seen := make(map[string]string, len(names))
	for i, n := range names {
		name := StripPrefix(n)
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("columns %q and %q both name attribute %q", prev, n, name)
		}
		seen[name] = n
		out[i] = name
	}
	return out, nil
}
