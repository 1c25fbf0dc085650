package explain

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/cgsep/graph"
)

// Kind selects an explainer algorithm.
type Kind string

const (
	KindPruning   Kind = "pp"
	KindOcclusion Kind = "occlusion"
	KindGradient  Kind = "gradcam"
	KindAttention Kind = "attention"
)

// DefaultKind is the explainer used when none is configured.
const DefaultKind = KindPruning

// ParseKind validates an explainer identifier.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPruning, KindOcclusion, KindGradient, KindAttention:
		return k, nil
	case "":
		return DefaultKind, nil
	default:
		return "", &UnsupportedExplainerError{Kind: s}
	}
}

// Explainer computes raw per-node importance for one graph.
// Implementations must not retain or mutate g.
type Explainer interface {
	Kind() Kind
	NodeImportance(ctx context.Context, g *graph.Graph, m graph.Model) ([]float64, error)
}

// New returns the explainer for kind.
func New(kind Kind, opts ...Option) (Explainer, error) {
	o := applyOptions(opts)
	switch kind {
	case KindPruning:
		return &pruning{seed: o.seed, samples: o.samples, keep: o.keepProbability}, nil
	case KindOcclusion:
		return occlusion{}, nil
	case KindGradient:
		return gradient{}, nil
	case KindAttention:
		return attention{}, nil
	default:
		return nil, &UnsupportedExplainerError{Kind: string(kind)}
	}
}

// Normalize min-max scales scores into [0,1] in place. If every score is equal the
// result is all ones for a positive value and all zeros otherwise.
func Normalize(scores []float64) error {
	if len(scores) == 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("node %d: non-finite importance %v", i, v)
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		fill := 0.0
		if hi > 0 {
			fill = 1
		}
		for i := range scores {
			scores[i] = fill
		}
		return nil
	}
	span := hi - lo
	for i, v := range scores {
		scores[i] = (v - lo) / span
	}
	return nil
}

// maskNodes returns a copy of the feature matrix with the rows of masked nodes zeroed.
func maskNodes(g *graph.Graph, masked func(i int) bool) [][]float64 {
	features := make([][]float64, len(g.Features))
	for i, row := range g.Features {
		if masked(i) {
			features[i] = make([]float64, len(row))
			continue
		}
		features[i] = row
	}
	return features
}

func targetProbability(ctx context.Context, m graph.Model, g *graph.Graph, class int) (float64, error) {
	probs, err := m.Predict(ctx, g)
	if err != nil {
		return 0, err
	}
	if class < 0 || class >= len(probs) {
		return 0, fmt.Errorf("prediction has %d classes, need class %d", len(probs), class)
	}
	return probs[class], nil
}
