package explain

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cgsep/graph"
	"github.com/hupe1980/cgsep/resource"
)

const (
	// DefaultSamples is the number of masks drawn per graph by the pruning explainer.
	DefaultSamples = 64
	// DefaultKeepProbability is the probability that a node survives a random mask.
	DefaultKeepProbability = 0.5
)

type options struct {
	seed            int64
	samples         int
	keepProbability float64
	controller      *resource.Controller
}

// Option configures explanation.
type Option func(*options)

// WithSeed sets the seed of stochastic explainers.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithSamples sets the number of random masks per graph.
func WithSamples(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.samples = n
		}
	}
}

// WithKeepProbability sets the node survival probability of random masks.
// Values outside (0,1) are ignored.
func WithKeepProbability(p float64) Option {
	return func(o *options) {
		if p > 0 && p < 1 {
			o.keepProbability = p
		}
	}
}

// WithController bounds the number of graphs explained concurrently.
func WithController(rc *resource.Controller) Option {
	return func(o *options) { o.controller = rc }
}

func applyOptions(opts []Option) options {
	o := options{
		samples:         DefaultSamples,
		keepProbability: DefaultKeepProbability,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Compute explains every graph with the explainer of the given kind and returns
// annotated copies in input order. Each copy carries importance scores normalised
// into [0,1]. Inputs are left untouched.
//
// All graphs are checked before any work starts; an empty graph fails the whole
// batch with *EmptyGraphError.
func Compute(ctx context.Context, graphs []*graph.Graph, m graph.Model, kind Kind, opts ...Option) ([]*graph.Graph, error) {
	if len(graphs) == 0 {
		return nil, ErrNoGraphs
	}
	for i, g := range graphs {
		if g == nil || g.NumNodes() == 0 {
			name := ""
			if g != nil {
				name = g.Name
			}
			return nil, &EmptyGraphError{Graph: name, Index: i}
		}
	}

	ex, err := New(kind, opts...)
	if err != nil {
		return nil, err
	}
	rc := applyOptions(opts).controller

	out := make([]*graph.Graph, len(graphs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(rc.Workers())

	for i, g := range graphs {
		eg.Go(func() error {
			if err := rc.AcquireWorker(egCtx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			scores, err := ex.NodeImportance(egCtx, g, m)
			if err != nil {
				return fmt.Errorf("explain %q: %w", g.Name, err)
			}
			if len(scores) != g.NumNodes() {
				return fmt.Errorf("explain %q: %d scores for %d nodes", g.Name, len(scores), g.NumNodes())
			}
			if err := Normalize(scores); err != nil {
				return fmt.Errorf("explain %q: %w", g.Name, err)
			}
			out[i] = g.WithImportance(scores)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Unify merges importance of cells that occur in several annotated graphs,
// typically overlapping ROIs of one specimen. The result maps each cell id to its
// mean importance across all graphs containing it.
func Unify(graphs []*graph.Graph) (map[int64]float64, error) {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, g := range graphs {
		if !g.Annotated() {
			return nil, fmt.Errorf("graph %q is not annotated", g.Name)
		}
		if len(g.NodeIDs) != g.NumNodes() {
			return nil, fmt.Errorf("graph %q has no cell ids", g.Name)
		}
		for i, id := range g.NodeIDs {
			sums[id] += g.Importance[i]
			counts[id]++
		}
	}
	out := make(map[int64]float64, len(sums))
	for id, s := range sums {
		out[id] = s / float64(counts[id])
	}
	return out, nil
}
