package explain

import (
	"context"
	"fmt"

	"github.com/hupe1980/cgsep/graph"
)

// gradient scores node i by the rectified sum of gradient times input over its
// features, for the predicted class.
type gradient struct{}

func (gradient) Kind() Kind { return KindGradient }

func (gradient) NodeImportance(ctx context.Context, g *graph.Graph, m graph.Model) ([]float64, error) {
	gm, ok := m.(graph.GradientModel)
	if !ok {
		return nil, fmt.Errorf("explainer %q: model does not expose node gradients", KindGradient)
	}
	target, _, err := graph.PredictClass(ctx, m, g)
	if err != nil {
		return nil, err
	}
	grads, err := gm.NodeGradients(ctx, g, target)
	if err != nil {
		return nil, err
	}
	if len(grads) != g.NumNodes() {
		return nil, fmt.Errorf("%d gradient rows for %d nodes", len(grads), g.NumNodes())
	}

	scores := make([]float64, len(grads))
	for i, row := range grads {
		if len(row) != len(g.Features[i]) {
			return nil, fmt.Errorf("node %d: %d gradients for %d features", i, len(row), len(g.Features[i]))
		}
		var s float64
		for f, d := range row {
			s += d * g.Features[i][f]
		}
		scores[i] = max(s, 0)
	}
	return scores, nil
}

// attention uses the model's own node attention weights.
type attention struct{}

func (attention) Kind() Kind { return KindAttention }

func (attention) NodeImportance(ctx context.Context, g *graph.Graph, m graph.Model) ([]float64, error) {
	am, ok := m.(graph.AttentionModel)
	if !ok {
		return nil, fmt.Errorf("explainer %q: model does not expose node attention", KindAttention)
	}
	weights, err := am.NodeAttention(ctx, g)
	if err != nil {
		return nil, err
	}
	if len(weights) != g.NumNodes() {
		return nil, fmt.Errorf("%d attention weights for %d nodes", len(weights), g.NumNodes())
	}
	return weights, nil
}
