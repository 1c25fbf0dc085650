// Package density builds multi-dimensional density histograms over pooled class
// distributions using bin edges shared by every class.
package density

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cgsep/distance"
	"github.com/hupe1980/cgsep/internal/numeric"
)

// DefaultMaxCells bounds the number of cells of a single histogram.
const DefaultMaxCells = 1 << 24

var (
	// ErrInvalidBinWidth is returned for non-positive or non-finite bin widths.
	ErrInvalidBinWidth = errors.New("bin width must be positive and finite")

	// ErrTooManyCells is returned when the shared bin grid exceeds the cell ceiling.
	ErrTooManyCells = errors.New("histogram exceeds cell ceiling")
)

// Edges holds the bin edges of every dimension.
type Edges struct {
	Min   []float64
	Width float64
	Bins  []int
}

// Dims returns the number of dimensions.
func (e *Edges) Dims() int {
	return len(e.Bins)
}

// Cells returns the total number of histogram cells.
func (e *Edges) Cells() int {
	n := 1
	for _, b := range e.Bins {
		n *= b
	}
	return n
}

// Volume returns the volume of one bin.
func (e *Edges) Volume() float64 {
	return math.Pow(e.Width, float64(len(e.Bins)))
}

// Edge returns the j-th edge of dimension d.
func (e *Edges) Edge(d, j int) float64 {
	return e.Min[d] + float64(j)*e.Width
}

// bin returns the bin index of x along dimension d.
// Values on or past the last edge land in the last bin.
func (e *Edges) bin(d int, x float64) int {
	i := int(math.Floor((x - e.Min[d]) / e.Width))
	if i < 0 {
		return 0
	}
	if i >= e.Bins[d] {
		return e.Bins[d] - 1
	}
	return i
}

// SharedEdges computes bin edges from the global minimum and maximum of every
// column across all classes. Along each dimension the edges span
// [min, min + ceil((max-min)/width)*width]; a constant column gets one bin.
// A dimension whose bin count does not fit an int fails with ErrTooManyCells.
func SharedEdges(classes []int, rows []*mat.Dense, width float64) (*Edges, error) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return nil, ErrInvalidBinWidth
	}
	dims := -1
	for i, r := range rows {
		if r == nil || r.IsEmpty() {
			return nil, &distance.DegenerateDistributionError{Class: classes[i]}
		}
		_, c := r.Dims()
		if dims >= 0 && c != dims {
			return nil, fmt.Errorf("class %d has %d columns, expected %d", classes[i], c, dims)
		}
		dims = c
	}
	if dims <= 0 {
		return nil, fmt.Errorf("no pooled rows")
	}

	e := &Edges{
		Min:   make([]float64, dims),
		Width: width,
		Bins:  make([]int, dims),
	}
	for d := 0; d < dims; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, r := range rows {
			col := mat.Col(nil, d, r)
			cl, ch, _ := numeric.MinMax(col)
			lo = math.Min(lo, cl)
			hi = math.Max(hi, ch)
		}
		e.Min[d] = lo
		bins := math.Ceil((hi - lo) / width)
		if !(bins < math.MaxInt) {
			return nil, fmt.Errorf("%w: %g bins in dimension %d", ErrTooManyCells, bins, d)
		}
		e.Bins[d] = max(1, int(bins))
	}
	return e, nil
}

// Histogram is the density of one class over a shared bin grid, flattened in
// row-major order (last dimension varies fastest).
type Histogram struct {
	Class  int
	Values []float64
}

// Build computes one density histogram per class over shared edges.
// Densities follow count / (total * bin volume), so each histogram integrates to one
// before normalisation.
func Build(classes []int, rows []*mat.Dense, edges *Edges, maxCells int) ([]Histogram, error) {
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	cells := 1
	for _, b := range edges.Bins {
		if cells > maxCells/b {
			return nil, fmt.Errorf("%w: %v bins (limit %d)", ErrTooManyCells, edges.Bins, maxCells)
		}
		cells *= b
	}

	volume := edges.Volume()
	out := make([]Histogram, len(rows))
	for i, r := range rows {
		if r == nil || r.IsEmpty() {
			return nil, &distance.DegenerateDistributionError{Class: classes[i]}
		}
		n, dims := r.Dims()
		if dims != edges.Dims() {
			return nil, fmt.Errorf("class %d has %d columns, edges have %d", classes[i], dims, edges.Dims())
		}
		values := make([]float64, cells)
		for k := 0; k < n; k++ {
			idx := 0
			for d := 0; d < dims; d++ {
				idx = idx*edges.Bins[d] + edges.bin(d, r.At(k, d))
			}
			values[idx]++
		}
		scale := 1 / (float64(n) * volume)
		for k := range values {
			values[k] *= scale
		}
		out[i] = Histogram{Class: classes[i], Values: values}
	}
	return out, nil
}

// Normalize min-max scales all histograms jointly into [0,1] using the global
// minimum and maximum density across every class. When all densities are equal the
// histograms are left untouched.
func Normalize(hists []Histogram) {
	// Pass 1: global reduction.
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, h := range hists {
		if l, u, ok := numeric.MinMax(h.Values); ok {
			lo = math.Min(lo, l)
			hi = math.Max(hi, u)
		}
	}
	if !(hi > lo) {
		return
	}

	// Pass 2: apply.
	span := hi - lo
	for _, h := range hists {
		for k, v := range h.Values {
			h.Values[k] = (v - lo) / span
		}
	}
}

// Compute is SharedEdges, Build and Normalize in sequence.
func Compute(classes []int, rows []*mat.Dense, width float64, maxCells int) ([]Histogram, *Edges, error) {
	edges, err := SharedEdges(classes, rows, width)
	if err != nil {
		return nil, nil, err
	}
	hists, err := Build(classes, rows, edges, maxCells)
	if err != nil {
		return nil, nil, err
	}
	Normalize(hists)
	return hists, edges, nil
}
