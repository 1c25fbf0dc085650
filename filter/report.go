package filter

import (
	"fmt"

	"github.com/hupe1980/cgsep/internal/numeric"
)

// ClassMetrics holds per-class classification quality.
type ClassMetrics struct {
	Class     int     `json:"class"`
	Name      string  `json:"name"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report summarises predictions against labels.
// Undefined ratios (no predictions or no support) are reported as zero.
type Report struct {
	Classes    []ClassMetrics `json:"classes"`
	Accuracy   float64        `json:"accuracy"`
	MacroF1    float64        `json:"macro_f1"`
	WeightedF1 float64        `json:"weighted_f1"`
}

// NewReport computes a classification report. names may be nil; otherwise it must
// name every class. Labels must lie in [0, numClasses). A prediction outside that
// range is a miss: it lowers the recall of the labelled class and is not counted
// as a prediction of any reported class.
func NewReport(labels, predictions []int, numClasses int, names []string) (*Report, error) {
	if len(labels) != len(predictions) {
		return nil, fmt.Errorf("%d labels for %d predictions", len(labels), len(predictions))
	}
	if names != nil && len(names) != numClasses {
		return nil, fmt.Errorf("%d class names for %d classes", len(names), numClasses)
	}

	tp := make([]int, numClasses)
	predicted := make([]int, numClasses)
	support := make([]int, numClasses)
	var correct int
	for i, y := range labels {
		p := predictions[i]
		if y < 0 || y >= numClasses {
			return nil, fmt.Errorf("sample %d: label %d out of range", i, y)
		}
		support[y]++
		if p < 0 || p >= numClasses {
			continue
		}
		predicted[p]++
		if y == p {
			tp[y]++
			correct++
		}
	}

	r := &Report{Classes: make([]ClassMetrics, numClasses)}
	var macro, weighted float64
	for c := range numClasses {
		precision := ratio(tp[c], predicted[c])
		recall := ratio(tp[c], support[c])
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		name := fmt.Sprint(c)
		if names != nil {
			name = names[c]
		}
		r.Classes[c] = ClassMetrics{
			Class:     c,
			Name:      name,
			Precision: numeric.Round(precision),
			Recall:    numeric.Round(recall),
			F1:        numeric.Round(f1),
			Support:   support[c],
		}
		macro += f1
		weighted += f1 * float64(support[c])
	}

	if numClasses > 0 {
		r.MacroF1 = numeric.Round(macro / float64(numClasses))
	}
	if n := len(labels); n > 0 {
		r.Accuracy = numeric.Round(float64(correct) / float64(n))
		r.WeightedF1 = numeric.Round(weighted / float64(n))
	}
	return r, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
