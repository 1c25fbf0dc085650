package explain

import (
	"context"

	"github.com/hupe1980/cgsep/graph"
)

// occlusion scores node i by the drop in target probability when only i is masked.
type occlusion struct{}

func (occlusion) Kind() Kind { return KindOcclusion }

func (occlusion) NodeImportance(ctx context.Context, g *graph.Graph, m graph.Model) ([]float64, error) {
	target, probs, err := graph.PredictClass(ctx, m, g)
	if err != nil {
		return nil, err
	}
	base := probs[target]

	scores := make([]float64, g.NumNodes())
	for i := range scores {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := targetProbability(ctx, m, g.WithFeatures(maskNodes(g, func(j int) bool { return j == i })), target)
		if err != nil {
			return nil, err
		}
		scores[i] = base - p
	}
	return scores, nil
}
