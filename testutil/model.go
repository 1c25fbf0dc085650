package testutil

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/cgsep/graph"
)

// LinearModel is a deterministic softmax classifier over the mean node feature
// vector. It implements graph.Model, graph.GradientModel and graph.AttentionModel.
type LinearModel struct {
	Weights [][]float64 // one row per class
	Bias    []float64
}

var (
	_ graph.GradientModel  = (*LinearModel)(nil)
	_ graph.AttentionModel = (*LinearModel)(nil)
)

// NewLinearModel creates a linear model. A nil bias is treated as zero.
func NewLinearModel(weights [][]float64, bias []float64) *LinearModel {
	if bias == nil {
		bias = make([]float64, len(weights))
	}
	return &LinearModel{Weights: weights, Bias: bias}
}

func (m *LinearModel) check(g *graph.Graph) error {
	if len(g.Features) == 0 {
		return errors.New("graph has no node features")
	}
	for c, w := range m.Weights {
		if len(w) != g.NumFeatures() {
			return fmt.Errorf("class %d weights have width %d, graph has %d features", c, len(w), g.NumFeatures())
		}
	}
	return nil
}

// Predict returns softmax(W·mean(x)+b).
func (m *LinearModel) Predict(_ context.Context, g *graph.Graph) ([]float64, error) {
	if err := m.check(g); err != nil {
		return nil, err
	}
	mean := make([]float64, g.NumFeatures())
	for _, row := range g.Features {
		for f, v := range row {
			mean[f] += v
		}
	}
	n := float64(g.NumNodes())
	for f := range mean {
		mean[f] /= n
	}

	logits := make([]float64, len(m.Weights))
	for c, w := range m.Weights {
		logits[c] = m.Bias[c] + dot(w, mean)
	}
	return softmax(logits), nil
}

// NodeGradients returns d logit_class / d x for every node, which is w_class / n.
func (m *LinearModel) NodeGradients(_ context.Context, g *graph.Graph, class int) ([][]float64, error) {
	if err := m.check(g); err != nil {
		return nil, err
	}
	if class < 0 || class >= len(m.Weights) {
		return nil, fmt.Errorf("class %d out of range", class)
	}
	n := float64(g.NumNodes())
	grads := make([][]float64, g.NumNodes())
	for i := range grads {
		grads[i] = make([]float64, g.NumFeatures())
		for f, w := range m.Weights[class] {
			grads[i][f] = w / n
		}
	}
	return grads, nil
}

// NodeAttention returns |w_pred·x_i| normalised to sum to one.
func (m *LinearModel) NodeAttention(ctx context.Context, g *graph.Graph) ([]float64, error) {
	class, _, err := graph.PredictClass(ctx, m, g)
	if err != nil {
		return nil, err
	}
	att := make([]float64, g.NumNodes())
	var sum float64
	for i, row := range g.Features {
		att[i] = math.Abs(dot(m.Weights[class], row))
		sum += att[i]
	}
	if sum > 0 {
		for i := range att {
			att[i] /= sum
		}
	}
	return att, nil
}

// FixedModel predicts every graph's label unless an override names another class.
// It counts its Predict calls.
type FixedModel struct {
	NumClasses int
	Overrides  map[string]int
	Failures   map[string]error

	calls atomic.Int64
}

// NewFixedModel creates a model that predicts the ground truth except for overrides.
func NewFixedModel(numClasses int, overrides map[string]int) *FixedModel {
	return &FixedModel{NumClasses: numClasses, Overrides: overrides}
}

// Predict returns a one-hot-like probability vector.
func (m *FixedModel) Predict(_ context.Context, g *graph.Graph) ([]float64, error) {
	m.calls.Add(1)
	if err, ok := m.Failures[g.Name]; ok {
		return nil, err
	}
	class := g.Label
	if c, ok := m.Overrides[g.Name]; ok {
		class = c
	}
	if class < 0 || class >= m.NumClasses {
		return nil, fmt.Errorf("class %d out of range", class)
	}
	probs := make([]float64, m.NumClasses)
	rest := 0.1 / float64(max(m.NumClasses-1, 1))
	for i := range probs {
		probs[i] = rest
	}
	probs[class] = 0.9
	return probs, nil
}

// Calls returns the number of Predict calls so far.
func (m *FixedModel) Calls() int {
	return int(m.calls.Load())
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func softmax(logits []float64) []float64 {
	hi := math.Inf(-1)
	for _, v := range logits {
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
