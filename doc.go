// Package cgsep explains cell-graph classifiers and scores how well attribute
// distributions separate the classes they predict.
//
// A run takes labelled cell graphs, a trained model and a per-node attribute
// source. It computes node importance with a pluggable explainer, optionally
// prunes misclassified graphs, pools attribute rows per class and reports three
// risk-weighted separability views.
//
// # Quick Start
//
//	e, _ := cgsep.New(
//	    cgsep.WithMergeROIs(true),
//	    cgsep.WithK(2),
//	)
//	report, err := e.ExplainAndScore(ctx, &cgsep.Request{
//	    Graphs:             graphs,
//	    Model:              model,
//	    Explainer:          explain.KindPruning,
//	    Attributes:         attribute.MustFeatureSource(featureNames),
//	    PruneMisclassified: true,
//	})
//
// # Result Tables
//
//   - Concept: one row per concept group, or a single "all" row.
//   - Attribute: one row per attribute scored alone.
//   - KBest: per class pair, the best attribute subsets of size 1..k.
//
// Every row carries the aggregate score and its class-pair breakdown, rounded to
// four decimal digits. Classes without pooled values are excluded and all
// matrices are indexed by the surviving original class indices.
//
// # Scoring
//
//	score = Σ_{i<j} distance(i, j) · risk(i, j) · prior(i, j)
//
// The risk is |i-j| by default (WithOrdinalRisk(false) for uniform weights) and
// can be overridden per request. Distances compare class means or, with
// WithRepresentation(separability.RepresentationHistogram), jointly normalised
// density histograms over shared bin edges.
//
// # Errors
//
// Failures abort the run. Returned errors match one of the package sentinels
// (ErrUnsupportedExplainer, ErrEmptyGraph, ErrEmptySubsetUniverse,
// ErrDegenerateDistribution, ErrConfiguration, ErrNoClasses) with errors.Is, and
// keep the underlying typed error reachable with errors.As.
package cgsep
