package cgsep

import (
	"context"

	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/filter"
	"github.com/hupe1980/cgsep/graph"
	"github.com/hupe1980/cgsep/separability"
)

// Report is the outcome of one explanation and scoring run.
type Report struct {
	Explainer explain.Kind `json:"explainer"`
	// Classes lists the original class indices that survived pooling.
	Classes    []int    `json:"classes"`
	ClassNames []string `json:"class_names,omitempty"`
	// Attributes is the attribute universe, stripped of column prefixes.
	Attributes []string `json:"attributes"`

	Concept   *separability.Table       `json:"concept"`
	Attribute *separability.Table       `json:"attribute"`
	KBest     []separability.KBestTable `json:"k_best"`

	// Graphs holds every evaluated graph annotated with importance, including
	// pruned ones.
	Graphs []*graph.Graph `json:"-"`
	// Importances maps cell ids to their importance, averaged over the ROIs a cell
	// appears in. Nil when graphs carry no cell ids.
	Importances map[int64]float64 `json:"importances,omitempty"`

	// Pruned names the misclassified graphs excluded from scoring.
	Pruned []string `json:"pruned,omitempty"`
	// Scored names the graphs whose nodes were pooled.
	Scored         []string       `json:"scored"`
	Classification *filter.Report `json:"classification,omitempty"`

	Pooled        *aggregate.Pooled `json:"-"`
	Visualization *Visualization    `json:"-"`
}

// KBestFor returns the k-best table of a class pair.
func (r *Report) KBestFor(p separability.Pair) (*separability.KBestTable, bool) {
	for i := range r.KBest {
		if r.KBest[i].Pair == p {
			return &r.KBest[i], true
		}
	}
	return nil, false
}

// SpecimenGraphs groups the annotated graphs of one specimen.
type SpecimenGraphs struct {
	Specimen string
	Graphs   []*graph.Graph
}

// Visualization is handed to the visualization collaborator.
type Visualization struct {
	// FeatureNames are the node feature names, stripped of column prefixes.
	FeatureNames []string
	OutputDir    string
	// Groups holds one entry per specimen when ROIs are merged, otherwise one entry
	// per graph.
	Groups []SpecimenGraphs
}

// Visualizer renders importance-annotated graphs.
type Visualizer interface {
	Visualize(ctx context.Context, v *Visualization) error
}

// VisualizerFunc adapts a function to Visualizer.
type VisualizerFunc func(ctx context.Context, v *Visualization) error

// Visualize implements Visualizer.
func (f VisualizerFunc) Visualize(ctx context.Context, v *Visualization) error {
	return f(ctx, v)
}

// Exporter persists a report and returns the number of bytes written.
type Exporter interface {
	Export(ctx context.Context, r *Report) (int64, error)
}
