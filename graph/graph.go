package graph

import (
	"fmt"
	"slices"
)

// Split identifies the data partition a graph belongs to.
type Split int

const (
	SplitTrain Split = iota
	SplitValidation
	SplitTest
)

func (s Split) String() string {
	switch s {
	case SplitTrain:
		return "train"
	case SplitValidation:
		return "validation"
	case SplitTest:
		return "test"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseSplit parses the textual form produced by Split.String.
func ParseSplit(s string) (Split, error) {
	switch s {
	case "train":
		return SplitTrain, nil
	case "validation":
		return SplitValidation, nil
	case "test":
		return SplitTest, nil
	default:
		return 0, fmt.Errorf("unknown split %q", s)
	}
}

// Graph is an attributed cell graph.
type Graph struct {
	// Name uniquely identifies the graph.
	Name string
	// Specimen groups ROIs taken from the same tissue specimen.
	Specimen string
	// Label is the ground-truth class index.
	Label int
	// Split is the data partition.
	Split Split

	// NodeIDs holds one external cell identifier per node (optional).
	// When set it must have one entry per row of Features.
	NodeIDs []int64
	// Features is the node attribute matrix, one row per node.
	Features [][]float64
	// Edges lists undirected node index pairs.
	Edges [][2]int

	// Importance holds one score per node once the graph has been explained.
	Importance []float64
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	if len(g.Features) > 0 {
		return len(g.Features)
	}
	return len(g.NodeIDs)
}

// NumFeatures returns the width of the feature matrix.
func (g *Graph) NumFeatures() int {
	if len(g.Features) == 0 {
		return 0
	}
	return len(g.Features[0])
}

// Annotated reports whether every node carries an importance score.
func (g *Graph) Annotated() bool {
	return g.NumNodes() > 0 && len(g.Importance) == g.NumNodes()
}

// Validate checks the structural invariants of the graph.
func (g *Graph) Validate() error {
	n := g.NumNodes()
	width := g.NumFeatures()
	for i, row := range g.Features {
		if len(row) != width {
			return fmt.Errorf("graph %q: node %d has %d features, expected %d", g.Name, i, len(row), width)
		}
	}
	if len(g.NodeIDs) > 0 && len(g.NodeIDs) != n {
		return fmt.Errorf("graph %q: %d node ids for %d nodes", g.Name, len(g.NodeIDs), n)
	}
	for _, e := range g.Edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return fmt.Errorf("graph %q: edge %v out of range", g.Name, e)
		}
	}
	if g.Importance != nil && len(g.Importance) != n {
		return fmt.Errorf("graph %q: %d importance values for %d nodes", g.Name, len(g.Importance), n)
	}
	return nil
}

// WithImportance returns a shallow copy of g annotated with scores.
// The feature matrix and edges are shared read-only; the scores slice is copied.
func (g *Graph) WithImportance(scores []float64) *Graph {
	c := *g
	c.Importance = slices.Clone(scores)
	return &c
}

// WithFeatures returns a shallow copy of g whose feature matrix is replaced.
// Explainers use it to present perturbed inputs to a model.
func (g *Graph) WithFeatures(features [][]float64) *Graph {
	c := *g
	c.Features = features
	c.Importance = nil
	return &c
}

// BySpecimen groups graphs by specimen, preserving first-encounter order of the
// specimens and input order within each group.
func BySpecimen(graphs []*Graph) (keys []string, groups map[string][]*Graph) {
	groups = make(map[string][]*Graph)
	for _, g := range graphs {
		if _, ok := groups[g.Specimen]; !ok {
			keys = append(keys, g.Specimen)
		}
		groups[g.Specimen] = append(groups[g.Specimen], g)
	}
	return keys, groups
}

// EvaluationSet returns the graphs of the last non-empty split in
// train/validation/test order, so the test split is preferred when present.
func EvaluationSet(graphs []*Graph) (Split, []*Graph, error) {
	for s := SplitTest; s >= SplitTrain; s-- {
		var set []*Graph
		for _, g := range graphs {
			if g.Split == s {
				set = append(set, g)
			}
		}
		if len(set) > 0 {
			return s, set, nil
		}
	}
	return 0, nil, fmt.Errorf("all splits are empty")
}
