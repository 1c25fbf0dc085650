package separability

import (
	"fmt"

	"github.com/hupe1980/cgsep/distance"
	"github.com/hupe1980/cgsep/internal/numeric"
	"github.com/hupe1980/cgsep/risk"
)

// Pair is an unordered pair of original class indices with A < B.
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewPair orders a and b.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// String returns "<a>_<b>".
func (p Pair) String() string {
	return fmt.Sprintf("%d_%d", p.A, p.B)
}

// Pairs returns every unordered pair of classes in upper-triangle order.
func Pairs(classes []int) []Pair {
	var out []Pair
	for i := 0; i < len(classes); i++ {
		for j := i + 1; j < len(classes); j++ {
			out = append(out, NewPair(classes[i], classes[j]))
		}
	}
	return out
}

// Score returns the risk-weighted separability of d, rounded to four digits.
// prior may be nil. Both matrices must cover every class of d.
func Score(d *distance.Matrix, r, prior *risk.Matrix) (float64, error) {
	s, err := score(d, r, prior)
	if err != nil {
		return 0, err
	}
	return numeric.Round(s), nil
}

// PairScore returns the weighted distance of a single pair, rounded to four digits.
func PairScore(d *distance.Matrix, r, prior *risk.Matrix, p Pair) (float64, error) {
	s, err := pairScore(d, r, prior, p)
	if err != nil {
		return 0, err
	}
	return numeric.Round(s), nil
}

func score(d *distance.Matrix, r, prior *risk.Matrix) (float64, error) {
	var total float64
	for _, p := range Pairs(d.Classes()) {
		s, err := pairScore(d, r, prior, p)
		if err != nil {
			return 0, err
		}
		total += s
	}
	return total, nil
}

func pairScore(d *distance.Matrix, r, prior *risk.Matrix, p Pair) (float64, error) {
	dist, ok := d.Between(p.A, p.B)
	if !ok {
		return 0, fmt.Errorf("pair %s: class missing from distance matrix", p)
	}
	w, ok := r.Weight(p.A, p.B)
	if !ok {
		return 0, fmt.Errorf("pair %s: class missing from risk matrix", p)
	}
	s := dist * w
	if prior != nil {
		pw, ok := prior.Weight(p.A, p.B)
		if !ok {
			return 0, fmt.Errorf("pair %s: class missing from prior matrix", p)
		}
		s *= pw
	}
	return s, nil
}
