package separability

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/hupe1980/cgsep/resource"
)

const (
	// DefaultMaxSubsets bounds the number of subsets a search evaluates.
	DefaultMaxSubsets = 10000

	// searchChunk is the number of subsets evaluated between ordered checkpoints.
	// It is fixed so results do not depend on the worker count.
	searchChunk = 256
)

// EmptySubsetUniverseError is returned when no subset of size K exists.
type EmptySubsetUniverseError struct {
	Size int
	K    int
}

func (e *EmptySubsetUniverseError) Error() string {
	return fmt.Sprintf("no subsets of size %d in a universe of %d attributes", e.K, e.Size)
}

// Objective selects whether higher or lower scores are better.
type Objective int

const (
	// Maximize prefers the most separable subset.
	Maximize Objective = iota
	// Minimize prefers the least separable subset.
	Minimize
)

// String returns the string representation of the objective.
func (o Objective) String() string {
	switch o {
	case Maximize:
		return "max"
	case Minimize:
		return "min"
	default:
		return "unknown"
	}
}

// ParseObjective parses "max" or "min".
func ParseObjective(s string) (Objective, error) {
	switch s {
	case "", "max", "maximize":
		return Maximize, nil
	case "min", "minimize":
		return Minimize, nil
	default:
		return Maximize, fmt.Errorf("unknown objective %q", s)
	}
}

// better reports whether a strictly beats b.
func (o Objective) better(a, b float64) bool {
	if o == Minimize {
		return a < b
	}
	return a > b
}

// reached reports whether s satisfies the threshold t.
func (o Objective) reached(s, t float64) bool {
	if o == Minimize {
		return s <= t
	}
	return s >= t
}

// SearchOptions bounds and directs a subset search.
type SearchOptions struct {
	Objective Objective
	// MaxSubsets caps the number of evaluated subsets. 0 means DefaultMaxSubsets,
	// a negative value means no cap.
	MaxSubsets int
	// Threshold, when set, stops the search at the first subset in enumeration
	// order whose score reaches it.
	Threshold *float64
	// TopN is the number of ranked candidates to keep. Defaults to 1.
	TopN int
	// Controller bounds parallel evaluation. nil evaluates one subset at a time.
	Controller *resource.Controller
}

// Candidate is a scored attribute subset.
type Candidate struct {
	Subset []string `json:"subset"`
	Score  float64  `json:"score"`
}

// SearchResult holds the ranked candidates of one search.
type SearchResult struct {
	K      int         `json:"k"`
	Ranked []Candidate `json:"ranked"`
	// Evaluated counts the subsets that took part in the ranking.
	Evaluated int `json:"evaluated"`
	// Truncated is set when MaxSubsets ended the search.
	Truncated bool `json:"truncated"`
	// Stopped is set when the threshold ended the search.
	Stopped bool `json:"stopped"`
}

// SubsetFunc scores one attribute subset.
type SubsetFunc func(ctx context.Context, subset []string) (float64, error)

// Search enumerates every size-k subset of universe in lexicographic order of the
// sorted attribute names and ranks them by fn. Ties keep the subset encountered
// first. Subsets are scored in parallel within fixed-size chunks and merged in
// enumeration order, so results match a sequential run.
func Search(ctx context.Context, universe []string, k int, fn SubsetFunc, opts SearchOptions) (*SearchResult, error) {
	names := slices.Clone(universe)
	slices.Sort(names)
	if len(slices.Compact(slices.Clone(names))) != len(names) {
		return nil, fmt.Errorf("subset universe has duplicate attributes")
	}
	if len(names) == 0 || k <= 0 || k > len(names) {
		return nil, &EmptySubsetUniverseError{Size: len(names), K: k}
	}

	limit := opts.MaxSubsets
	if limit == 0 {
		limit = DefaultMaxSubsets
	}
	topN := max(opts.TopN, 1)
	rc := opts.Controller

	res := &SearchResult{K: k}
	gen := combin.NewCombinationGenerator(len(names), k)
	idx := make([]int, k)

	chunk := make([][]string, 0, searchChunk)
	scores := make([]float64, searchChunk)
	exhausted := false

	for !exhausted && !res.Stopped {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk = chunk[:0]
		for len(chunk) < searchChunk {
			if limit > 0 && res.Evaluated+len(chunk) >= limit {
				exhausted = true
				res.Truncated = gen.Next()
				break
			}
			if !gen.Next() {
				exhausted = true
				break
			}
			idx = gen.Combination(idx)
			subset := make([]string, k)
			for i, j := range idx {
				subset[i] = names[j]
			}
			chunk = append(chunk, subset)
		}

		if err := evaluate(ctx, chunk, scores, fn, rc); err != nil {
			return nil, err
		}

		for i, subset := range chunk {
			res.Evaluated++
			res.Ranked = insert(res.Ranked, Candidate{Subset: subset, Score: scores[i]}, topN, opts.Objective)
			if opts.Threshold != nil && opts.Objective.reached(scores[i], *opts.Threshold) {
				res.Stopped = true
				break
			}
		}
	}
	return res, nil
}

// evaluate scores chunk into the matching slots of scores.
func evaluate(ctx context.Context, chunk [][]string, scores []float64, fn SubsetFunc, rc *resource.Controller) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(rc.Workers())
	for i, subset := range chunk {
		eg.Go(func() error {
			if err := rc.AcquireWorker(egCtx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			s, err := fn(egCtx, subset)
			if err != nil {
				return fmt.Errorf("subset %v: %w", subset, err)
			}
			scores[i] = s
			return nil
		})
	}
	return eg.Wait()
}

// insert places c into the ranked list after every candidate it does not beat and
// keeps at most n entries.
func insert(ranked []Candidate, c Candidate, n int, o Objective) []Candidate {
	pos := len(ranked)
	for i, r := range ranked {
		if o.better(c.Score, r.Score) {
			pos = i
			break
		}
	}
	if pos >= n {
		return ranked
	}
	ranked = slices.Insert(ranked, pos, c)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
