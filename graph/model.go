package graph

import (
	"context"
	"fmt"
)

// Model is a trained graph classifier.
type Model interface {
	// Predict returns the class-probability vector for g.
	Predict(ctx context.Context, g *Graph) ([]float64, error)
}

// GradientModel exposes the gradient of a class logit with respect to the node features.
type GradientModel interface {
	Model
	// NodeGradients returns one gradient row per node, aligned with g.Features.
	NodeGradients(ctx context.Context, g *Graph, class int) ([][]float64, error)
}

// AttentionModel exposes per-node attention weights of a trained model.
type AttentionModel interface {
	Model
	// NodeAttention returns one non-negative attention weight per node.
	NodeAttention(ctx context.Context, g *Graph) ([]float64, error)
}

// Argmax returns the index of the largest probability.
// Ties resolve to the lowest index.
func Argmax(probs []float64) (int, error) {
	if len(probs) == 0 {
		return -1, fmt.Errorf("empty prediction")
	}
	best := 0
	for i, p := range probs[1:] {
		if p > probs[best] {
			best = i + 1
		}
	}
	return best, nil
}

// PredictClass runs m on g and returns the argmax class.
func PredictClass(ctx context.Context, m Model, g *Graph) (int, []float64, error) {
	probs, err := m.Predict(ctx, g)
	if err != nil {
		return -1, nil, fmt.Errorf("predict %q: %w", g.Name, err)
	}
	class, err := Argmax(probs)
	if err != nil {
		return -1, nil, fmt.Errorf("predict %q: %w", g.Name, err)
	}
	return class, probs, nil
}
