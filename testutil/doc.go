// Package testutil provides testing utilities for cgsep.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random number generator, synthetic cell graphs and
// deterministic stand-in models.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.GaussianRows(10, 2, 0.5, 0.1)
//
// # Synthetic Graphs
//
//	graphs := rng.ClassGraphs(3, 4, 6, 2, 1.0) // 3 classes, 4 graphs each
//
// # Models
//
//	m := testutil.NewLinearModel(weights, bias) // Model, GradientModel, AttentionModel
//	f := testutil.NewFixedModel(3, map[string]int{"G7": 1})
package testutil
