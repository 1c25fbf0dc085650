package explain

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/hupe1980/cgsep/graph"
)

// pruning estimates node importance from randomly pruned copies of a graph.
// For node i the score is the mean target probability over samples that kept i
// minus the mean over samples that masked it.
type pruning struct {
	seed    int64
	samples int
	keep    float64
}

func (p *pruning) Kind() Kind { return KindPruning }

func (p *pruning) NodeImportance(ctx context.Context, g *graph.Graph, m graph.Model) ([]float64, error) {
	target, _, err := graph.PredictClass(ctx, m, g)
	if err != nil {
		return nil, err
	}

	// Each graph draws from its own stream so results do not depend on scheduling.
	rng := rand.New(rand.NewSource(p.seed ^ nameHash(g.Name))) //nolint:gosec

	n := g.NumNodes()
	keptSum := make([]float64, n)
	keptCount := make([]int, n)
	var total float64

	kept := make([]bool, n)
	for s := 0; s < p.samples; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range kept {
			kept[i] = rng.Float64() < p.keep
		}
		prob, err := targetProbability(ctx, m, g.WithFeatures(maskNodes(g, func(i int) bool { return !kept[i] })), target)
		if err != nil {
			return nil, err
		}
		total += prob
		for i, k := range kept {
			if k {
				keptSum[i] += prob
				keptCount[i]++
			}
		}
	}

	mean := total / float64(p.samples)
	scores := make([]float64, n)
	for i := range scores {
		in, out := mean, mean
		if keptCount[i] > 0 {
			in = keptSum[i] / float64(keptCount[i])
		}
		if dropped := p.samples - keptCount[i]; dropped > 0 {
			out = (total - keptSum[i]) / float64(dropped)
		}
		scores[i] = in - out
	}
	return scores, nil
}

func nameHash(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
