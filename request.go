package cgsep

import (
	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/attribute"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/graph"
	"github.com/hupe1980/cgsep/risk"
)

// Request describes one explanation and scoring run.
type Request struct {
	// Graphs are the labelled graphs to explain and score.
	Graphs []*graph.Graph
	Model  graph.Model
	// Explainer selects the importance algorithm. Empty means explain.DefaultKind.
	Explainer explain.Kind
	// Attributes supplies the per-node attribute vectors that are pooled.
	Attributes attribute.Source

	// PruneMisclassified excludes misclassified graphs from scoring.
	PruneMisclassified bool
	// Grouping optionally scores concept groups instead of all attributes jointly.
	Grouping aggregate.Grouping
	// Risk overrides the risk matrix. It must cover classes 0..NumClasses-1.
	Risk *risk.Matrix
	// PathoPrior optionally weights every class pair on top of the risk.
	PathoPrior *risk.Matrix

	// NumClasses is inferred from the labels when zero.
	NumClasses int
	ClassNames []string

	// Visualization parameters must be supplied together or not at all.
	FeatureNames []string
	GraphNames   []string
	OutputDir    string
}

func (r *Request) visualize() (bool, error) {
	set := 0
	if len(r.FeatureNames) > 0 {
		set++
	}
	if len(r.GraphNames) > 0 {
		set++
	}
	if r.OutputDir != "" {
		set++
	}
	switch set {
	case 0:
		return false, nil
	case 3:
		return true, nil
	default:
		return false, configError("Visualization", "feature names, graph names and output directory must all be provided", nil)
	}
}

// validate checks the request and returns the number of classes.
func (r *Request) validate() (int, error) {
	if r.Model == nil {
		return 0, configError("Model", "is required", nil)
	}
	if r.Attributes == nil {
		return 0, configError("Attributes", "is required", nil)
	}
	if _, err := r.visualize(); err != nil {
		return 0, err
	}

	numClasses := r.NumClasses
	if numClasses == 0 {
		for _, g := range r.Graphs {
			if g != nil {
				numClasses = max(numClasses, g.Label+1)
			}
		}
	}
	for _, g := range r.Graphs {
		if g != nil && (g.Label < 0 || g.Label >= numClasses) {
			return 0, configError("Graphs", "label out of range in graph "+g.Name, nil)
		}
	}
	if r.ClassNames != nil && len(r.ClassNames) != numClasses {
		return 0, configError("ClassNames", "must name every class", nil)
	}

	all := make([]int, numClasses)
	for i := range all {
		all[i] = i
	}
	if r.Risk != nil {
		if _, err := r.Risk.Restrict(all); err != nil {
			return 0, configError("Risk", "does not cover every class", err)
		}
	}
	if r.PathoPrior != nil {
		if _, err := r.PathoPrior.Restrict(all); err != nil {
			return 0, configError("PathoPrior", "does not cover every class", err)
		}
	}
	if len(r.Grouping) > 0 {
		if err := r.Grouping.Validate(r.Attributes.Names()); err != nil {
			return 0, configError("Grouping", "invalid", err)
		}
	}
	return numClasses, nil
}
