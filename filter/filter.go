// Package filter separates correctly from incorrectly classified graphs and
// summarises classification quality.
package filter

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cgsep/graph"
	"github.com/hupe1980/cgsep/resource"
)

// Partition is the outcome of comparing predictions with ground truth.
type Partition struct {
	// Correct and Incorrect preserve input order.
	Correct   []*graph.Graph
	Incorrect []*graph.Graph
	// Predictions holds the argmax class of every input graph.
	Predictions []int
}

// IncorrectNames returns the names of the misclassified graphs.
func (p *Partition) IncorrectNames() []string {
	names := make([]string, len(p.Incorrect))
	for i, g := range p.Incorrect {
		names[i] = g.Name
	}
	return names
}

// Labels returns the ground-truth labels of graphs in input order.
func Labels(graphs []*graph.Graph) []int {
	labels := make([]int, len(graphs))
	for i, g := range graphs {
		labels[i] = g.Label
	}
	return labels
}

// Run predicts every graph once and partitions the graphs by whether the argmax
// class equals the label. A nil controller runs predictions one at a time.
// Any prediction failure fails the whole call.
func Run(ctx context.Context, graphs []*graph.Graph, m graph.Model, rc *resource.Controller) (*Partition, error) {
	preds := make([]int, len(graphs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(rc.Workers())

	for i, g := range graphs {
		eg.Go(func() error {
			if err := rc.AcquireWorker(egCtx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			class, _, err := graph.PredictClass(egCtx, m, g)
			if err != nil {
				return err
			}
			preds[i] = class
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}

	p := &Partition{Predictions: preds}
	for i, g := range graphs {
		if preds[i] == g.Label {
			p.Correct = append(p.Correct, g)
			continue
		}
		p.Incorrect = append(p.Incorrect, g)
	}
	return p, nil
}

// Without returns graphs whose names are not in the incorrect set of p,
// preserving order. It lets callers drop misclassified graphs from a different
// view of the same graphs (for example annotated copies).
func (p *Partition) Without(graphs []*graph.Graph) []*graph.Graph {
	drop := make(map[string]struct{}, len(p.Incorrect))
	for _, g := range p.Incorrect {
		drop[g.Name] = struct{}{}
	}
	out := make([]*graph.Graph, 0, len(graphs))
	for _, g := range graphs {
		if _, ok := drop[g.Name]; !ok {
			out = append(out, g)
		}
	}
	return out
}
