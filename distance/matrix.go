package distance

import (
	"fmt"
	"slices"

	"github.com/hupe1980/cgsep/internal/numeric"
)

// DegenerateDistributionError is returned when a class reaches distance computation
// without any pooled values. Such classes must be excluded upstream.
type DegenerateDistributionError struct {
	Class int
}

func (e *DegenerateDistributionError) Error() string {
	return fmt.Sprintf("degenerate distribution: class %d has no pooled values", e.Class)
}

// Matrix is a symmetric class-by-class distance matrix with a zero diagonal.
//
// Rows and columns are positions into Classes, which holds the original class
// indices in ascending order. Classes absent from the evaluation set have no
// position at all.
type Matrix struct {
	classes []int
	data    []float64
}

// NewMatrix computes fn between every unordered pair of class representations.
// reps[i] is the representation of classes[i]; classes must be strictly ascending.
func NewMatrix(classes []int, reps [][]float64, fn Func) (*Matrix, error) {
	if len(classes) != len(reps) {
		return nil, fmt.Errorf("distance matrix: %d classes for %d representations", len(classes), len(reps))
	}
	for i := 1; i < len(classes); i++ {
		if classes[i] <= classes[i-1] {
			return nil, fmt.Errorf("distance matrix: classes not strictly ascending: %v", classes)
		}
	}
	for i, r := range reps {
		if len(r) == 0 {
			return nil, &DegenerateDistributionError{Class: classes[i]}
		}
		if len(r) != len(reps[0]) {
			return nil, fmt.Errorf("distance matrix: class %d has dimension %d, expected %d", classes[i], len(r), len(reps[0]))
		}
	}

	n := len(classes)
	m := &Matrix{
		classes: slices.Clone(classes),
		data:    make([]float64, n*n),
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := fn(reps[i], reps[j])
			if d < 0 {
				d = 0
			}
			m.data[i*n+j] = d
			m.data[j*n+i] = d
		}
	}
	return m, nil
}

// Classes returns the original class indices, one per row.
func (m *Matrix) Classes() []int {
	return slices.Clone(m.classes)
}

// Len returns the number of classes in the matrix.
func (m *Matrix) Len() int {
	return len(m.classes)
}

// At returns the distance between the classes at positions i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*len(m.classes)+j]
}

// Index returns the position of an original class index.
func (m *Matrix) Index(class int) (int, bool) {
	return slices.BinarySearch(m.classes, class)
}

// Between returns the distance between two original class indices.
func (m *Matrix) Between(a, b int) (float64, bool) {
	i, ok := m.Index(a)
	if !ok {
		return 0, false
	}
	j, ok := m.Index(b)
	if !ok {
		return 0, false
	}
	return m.At(i, j), true
}

// Rounded returns the matrix as rows rounded to four decimal digits, for reporting.
func (m *Matrix) Rounded() [][]float64 {
	n := len(m.classes)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = numeric.RoundAll(slices.Clone(m.data[i*n : (i+1)*n]))
	}
	return rows
}
