package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// ImportanceMode selects how node importance affects pooling.
type ImportanceMode int

const (
	// ImportanceNone pools every node unchanged.
	ImportanceNone ImportanceMode = iota
	// ImportanceWeight scales every row by its node's importance.
	ImportanceWeight
	// ImportanceThreshold keeps nodes whose importance is at least Threshold.
	ImportanceThreshold
	// ImportanceTop keeps the Fraction most important nodes of each unit.
	ImportanceTop
)

// String returns the string representation of the mode.
func (m ImportanceMode) String() string {
	switch m {
	case ImportanceNone:
		return "none"
	case ImportanceWeight:
		return "weight"
	case ImportanceThreshold:
		return "threshold"
	case ImportanceTop:
		return "top"
	default:
		return "unknown"
	}
}

// ParseImportanceMode parses a mode name.
func ParseImportanceMode(s string) (ImportanceMode, error) {
	switch s {
	case "", "none":
		return ImportanceNone, nil
	case "weight":
		return ImportanceWeight, nil
	case "threshold":
		return ImportanceThreshold, nil
	case "top":
		return ImportanceTop, nil
	default:
		return ImportanceNone, fmt.Errorf("unknown importance mode %q", s)
	}
}

// Selection configures importance-based node selection.
type Selection struct {
	Mode      ImportanceMode
	Threshold float64
	Fraction  float64
}

// Validate checks the parameters required by the mode.
func (s Selection) Validate() error {
	switch s.Mode {
	case ImportanceNone, ImportanceWeight:
		return nil
	case ImportanceThreshold:
		if s.Threshold < 0 || s.Threshold > 1 {
			return fmt.Errorf("importance threshold %v outside [0,1]", s.Threshold)
		}
		return nil
	case ImportanceTop:
		if s.Fraction <= 0 || s.Fraction > 1 {
			return fmt.Errorf("importance fraction %v outside (0,1]", s.Fraction)
		}
		return nil
	default:
		return fmt.Errorf("unknown importance mode %d", s.Mode)
	}
}

// apply returns the rows of u that survive the selection, in node order.
func (s Selection) apply(u Unit) ([][]float64, error) {
	if s.Mode == ImportanceNone {
		return u.Rows, nil
	}
	if u.Importance == nil {
		return nil, fmt.Errorf("unit %q: importance mode %s needs annotated graphs", u.Name, s.Mode)
	}

	if s.Mode == ImportanceWeight {
		out := make([][]float64, len(u.Rows))
		for i, row := range u.Rows {
			out[i] = make([]float64, len(row))
			for j, v := range row {
				out[i][j] = v * u.Importance[i]
			}
		}
		return out, nil
	}

	kept := s.keep(u.Importance)
	out := make([][]float64, 0, kept.GetCardinality())
	it := kept.Iterator()
	for it.HasNext() {
		out = append(out, u.Rows[it.Next()])
	}
	return out, nil
}

func (s Selection) keep(importance []float64) *roaring.Bitmap {
	kept := roaring.New()
	switch s.Mode {
	case ImportanceThreshold:
		for i, v := range importance {
			if v >= s.Threshold {
				kept.Add(uint32(i))
			}
		}
	case ImportanceTop:
		n := int(math.Ceil(s.Fraction * float64(len(importance))))
		order := make([]int, len(importance))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return importance[order[a]] > importance[order[b]]
		})
		for _, i := range order[:n] {
			kept.Add(uint32(i))
		}
	}
	return kept
}
