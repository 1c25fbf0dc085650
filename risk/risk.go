// Package risk builds class-pair weighting matrices that express the cost of
// confusing two classes.
//
// Matrices are indexed by explicit class indices rather than by position, so a
// matrix built for the full class universe can be restricted to the classes that
// survive pruning without any index mismatch.
package risk

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvalidMatrix is returned for malformed custom matrices.
var ErrInvalidMatrix = errors.New("invalid risk matrix")

// Matrix is a symmetric, non-negative class-pair weighting matrix.
// It is never mutated after construction.
type Matrix struct {
	classes []int
	data    []float64
}

// New returns the risk matrix over classes 0..numClasses-1.
// If ordinal is true the weight of a pair is |i-j|, otherwise it is 1.
// The diagonal is zero in both modes.
func New(numClasses int, ordinal bool) *Matrix {
	classes := make([]int, max(numClasses, 0))
	for i := range classes {
		classes[i] = i
	}
	if ordinal {
		return Ordinal(classes)
	}
	return Uniform(classes)
}

// Ordinal returns a matrix weighting each pair by the distance between the
// original class indices, assuming adjacent indices are adjacent in severity.
func Ordinal(classes []int) *Matrix {
	return build(classes, func(a, b int) float64 {
		return math.Abs(float64(a - b))
	})
}

// Uniform returns a matrix weighting every off-diagonal pair by one.
func Uniform(classes []int) *Matrix {
	return build(classes, func(a, b int) float64 {
		if a == b {
			return 0
		}
		return 1
	})
}

func build(classes []int, w func(a, b int) float64) *Matrix {
	classes = slices.Clone(classes)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	n := len(classes)
	m := &Matrix{classes: classes, data: make([]float64, n*n)}
	for i, a := range classes {
		for j, b := range classes {
			m.data[i*n+j] = w(a, b)
		}
	}
	return m
}

// FromRows builds a matrix over classes 0..len(rows)-1 from a caller-supplied
// square table. The table must be symmetric with non-negative finite entries.
// The diagonal is not required to be zero; it never contributes to a score.
func FromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidMatrix)
	}
	m := &Matrix{classes: make([]int, n), data: make([]float64, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, expected %d", ErrInvalidMatrix, i, len(row), n)
		}
		m.classes[i] = i
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entry (%d,%d) = %v", ErrInvalidMatrix, i, j, v)
			}
			m.data[i*n+j] = v
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if m.data[i*n+j] != m.data[j*n+i] {
				return nil, fmt.Errorf("%w: not symmetric at (%d,%d)", ErrInvalidMatrix, i, j)
			}
		}
	}
	return m, nil
}

// Classes returns the class indices covered by the matrix.
func (m *Matrix) Classes() []int {
	return slices.Clone(m.classes)
}

// Len returns the number of classes.
func (m *Matrix) Len() int {
	return len(m.classes)
}

// Weight returns the weight of the pair of original class indices (a, b).
func (m *Matrix) Weight(a, b int) (float64, bool) {
	i, ok := slices.BinarySearch(m.classes, a)
	if !ok {
		return 0, false
	}
	j, ok := slices.BinarySearch(m.classes, b)
	if !ok {
		return 0, false
	}
	return m.data[i*len(m.classes)+j], true
}

// Restrict returns the sub-matrix over the given classes, which must all be
// covered by m.
func (m *Matrix) Restrict(classes []int) (*Matrix, error) {
	classes = slices.Clone(classes)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	n := len(classes)
	out := &Matrix{classes: classes, data: make([]float64, n*n)}
	for i, a := range classes {
		for j, b := range classes {
			w, ok := m.Weight(a, b)
			if !ok {
				return nil, fmt.Errorf("risk matrix does not cover class pair (%d, %d)", a, b)
			}
			out.data[i*n+j] = w
		}
	}
	return out, nil
}

// Rows returns a copy of the matrix as a square table.
func (m *Matrix) Rows() [][]float64 {
	n := len(m.classes)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = slices.Clone(m.data[i*n : (i+1)*n])
	}
	return rows
}
