package separability

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/cgsep/aggregate"
)

// AllConcepts names the concept row scoring every attribute jointly.
const AllConcepts = "all"

// Row is one scored concept or attribute.
type Row struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
	Score      float64  `json:"score"`
	// PairScores is aligned with Table.Pairs.
	PairScores []float64 `json:"pair_scores"`
}

// Table is a concept or attribute separability table.
type Table struct {
	Pairs      []Pair   `json:"pairs"`
	PairLabels []string `json:"pair_labels"`
	Rows       []Row    `json:"rows"`
}

// Best returns the row with the best score for the pair at position i, breaking
// ties by the lexicographically smallest row name.
func (t *Table) Best(i int, o Objective) (Row, bool) {
	var (
		best Row
		ok   bool
	)
	for _, r := range t.Rows {
		s := r.PairScores[i]
		if !ok || o.better(s, best.PairScores[i]) || (s == best.PairScores[i] && r.Name < best.Name) {
			best, ok = r, true
		}
	}
	return best, ok
}

func (s *Scorer) newTable() *Table {
	pairs := s.Pairs()
	labels := make([]string, len(pairs))
	for i, p := range pairs {
		labels[i] = s.Label(p)
	}
	return &Table{Pairs: pairs, PairLabels: labels}
}

// ConceptTable scores every group of the grouping, or all attributes jointly as a
// single "all" row when the grouping is empty.
func (s *Scorer) ConceptTable(ctx context.Context, grouping aggregate.Grouping) (*Table, error) {
	if len(grouping) == 0 {
		grouping = aggregate.Grouping{{Name: AllConcepts, Attributes: s.pooled.Names}}
	} else if err := grouping.Validate(s.pooled.Names); err != nil {
		return nil, err
	}

	t := s.newTable()
	for _, g := range grouping {
		r, err := s.row(ctx, g.Name, g.Attributes)
		if err != nil {
			return nil, fmt.Errorf("concept %w", err)
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// AttributeTable scores every attribute alone, in universe order.
func (s *Scorer) AttributeTable(ctx context.Context) (*Table, error) {
	t := s.newTable()
	for _, name := range s.pooled.Names {
		r, err := s.row(ctx, name, []string{name})
		if err != nil {
			return nil, fmt.Errorf("attribute %w", err)
		}
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// KBestRow is one ranked subset.
type KBestRow struct {
	K      int      `json:"k"`
	Rank   int      `json:"rank"`
	Subset []string `json:"subset"`
	Score  float64  `json:"score"`
}

// KBestTable holds the ranked subsets of one class pair for every searched k.
type KBestTable struct {
	Pair    Pair            `json:"pair"`
	Label   string          `json:"label"`
	Rows    []KBestRow      `json:"rows"`
	Results []*SearchResult `json:"-"`
}

// KBest searches the best subsets of each size in ks for every class pair.
func (s *Scorer) KBest(ctx context.Context, ks []int, opts SearchOptions) ([]KBestTable, error) {
	ks = slices.Clone(ks)
	slices.Sort(ks)
	ks = slices.Compact(ks)

	var out []KBestTable
	for _, p := range s.Pairs() {
		t := KBestTable{Pair: p, Label: s.Label(p)}
		fn := func(_ context.Context, subset []string) (float64, error) {
			return s.PairScore(subset, p)
		}
		for _, k := range ks {
			res, err := Search(ctx, s.pooled.Names, k, fn, opts)
			if err != nil {
				return nil, fmt.Errorf("k-best pair %s k=%d: %w", p, k, err)
			}
			t.Results = append(t.Results, res)
			for rank, c := range res.Ranked {
				t.Rows = append(t.Rows, KBestRow{K: k, Rank: rank + 1, Subset: c.Subset, Score: c.Score})
			}
		}
		out = append(out, t)
	}
	return out, nil
}
