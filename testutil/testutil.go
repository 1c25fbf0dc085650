package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/cgsep/graph"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformRows generates num rows of the given width with values in [0, 1).
func (r *RNG) UniformRows(num, width int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]float64, num)
	for i := range rows {
		rows[i] = make([]float64, width)
		for j := range rows[i] {
			rows[i][j] = r.rand.Float64()
		}
	}
	return rows
}

// GaussianRows generates num rows of the given width drawn from N(mean, std²).
func (r *RNG) GaussianRows(num, width int, mean, std float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]float64, num)
	for i := range rows {
		rows[i] = make([]float64, width)
		for j := range rows[i] {
			rows[i][j] = mean + std*r.rand.NormFloat64()
		}
	}
	return rows
}

// ClassGraphs generates perClass graphs for each of numClasses classes.
// Node features of class c are drawn around c*separation so that classes are
// separable for a large separation. Graphs are named "G<i>", every graph is its
// own specimen "S<i>", node ids are globally unique and all graphs are in the
// test split.
func (r *RNG) ClassGraphs(numClasses, perClass, nodes, width int, separation float64) []*graph.Graph {
	var (
		graphs []*graph.Graph
		nextID int64
	)
	for c := 0; c < numClasses; c++ {
		for k := 0; k < perClass; k++ {
			i := len(graphs)
			g := NewGraph(fmt.Sprintf("G%d", i), fmt.Sprintf("S%d", i), c, r.GaussianRows(nodes, width, float64(c)*separation, 0.1))
			g.NodeIDs = make([]int64, nodes)
			for n := range g.NodeIDs {
				g.NodeIDs[n] = nextID
				nextID++
			}
			graphs = append(graphs, g)
		}
	}
	return graphs
}

// NewGraph builds a test-split graph whose nodes are connected in a chain.
func NewGraph(name, specimen string, label int, features [][]float64) *graph.Graph {
	var edges [][2]int
	for i := 1; i < len(features); i++ {
		edges = append(edges, [2]int{i - 1, i})
	}
	return &graph.Graph{
		Name:     name,
		Specimen: specimen,
		Label:    label,
		Split:    graph.SplitTest,
		Features: features,
		Edges:    edges,
	}
}

// ConstantRows returns num rows that all equal values.
func ConstantRows(num int, values ...float64) [][]float64 {
	rows := make([][]float64, num)
	for i := range rows {
		rows[i] = append([]float64(nil), values...)
	}
	return rows
}
