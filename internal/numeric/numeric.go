// Package numeric holds small floating point helpers shared by the scoring packages.
package numeric

import "math"

// Digits is the number of decimal digits every reported value is rounded to.
const Digits = 4

// Round rounds v to Digits decimal places, half away from zero.
func Round(v float64) float64 {
	const scale = 1e4
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // normalise -0
	}
	return r
}

// RoundAll rounds every element of vs in place and returns vs.
func RoundAll(vs []float64) []float64 {
	for i, v := range vs {
		vs[i] = Round(v)
	}
	return vs
}

// MinMax returns the minimum and maximum of vs.
// ok is false if vs is empty.
func MinMax(vs []float64) (lo, hi float64, ok bool) {
	if len(vs) == 0 {
		return 0, 0, false
	}
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}
