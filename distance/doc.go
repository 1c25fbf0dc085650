// Package distance provides vector distances and class-indexed distance matrices.
//
// # Supported Metrics
//
//   - MetricEuclidean: L2 distance (default)
//   - MetricManhattan: L1 distance
//   - MetricChebyshev: L-infinity distance
//   - MetricCosine: 1 - cosine similarity
//
// # Usage
//
//	fn, _ := distance.Provider(distance.MetricEuclidean)
//	m, _ := distance.NewMatrix([]int{0, 1, 2}, reps, fn)
//	d01, _ := m.Between(0, 1)
package distance
