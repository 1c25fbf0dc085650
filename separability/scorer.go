package separability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/density"
	"github.com/hupe1980/cgsep/distance"
	"github.com/hupe1980/cgsep/risk"
)

const (
	// DefaultBinWidth is the histogram bin width per dimension.
	DefaultBinWidth = 0.01
	// DefaultCacheSize is the number of memoised subset distance matrices.
	DefaultCacheSize = 4096
)

// Representation selects what a class contributes to the distance engine.
type Representation int

const (
	// RepresentationMean compares the column means of the pooled rows.
	RepresentationMean Representation = iota
	// RepresentationHistogram compares jointly normalised density histograms.
	RepresentationHistogram
)

// String returns the string representation of the representation.
func (r Representation) String() string {
	switch r {
	case RepresentationMean:
		return "mean"
	case RepresentationHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// ParseRepresentation parses "mean" or "histogram".
func ParseRepresentation(s string) (Representation, error) {
	switch s {
	case "", "mean", "raw":
		return RepresentationMean, nil
	case "histogram", "hist":
		return RepresentationHistogram, nil
	default:
		return RepresentationMean, fmt.Errorf("unknown representation %q", s)
	}
}

// Config configures a Scorer.
type Config struct {
	Representation Representation
	// BinWidth is used by RepresentationHistogram. 0 means DefaultBinWidth.
	BinWidth float64
	// MaxCells bounds histogram size. 0 means density.DefaultMaxCells.
	MaxCells int
	Metric   distance.Metric
	// Risk weights class pairs and must cover every pooled class.
	Risk *risk.Matrix
	// Prior is an optional elementwise weighting applied on top of Risk.
	Prior *risk.Matrix
	// ClassNames optionally names classes by original index.
	ClassNames []string
	// CacheSize bounds the subset memo. 0 means DefaultCacheSize.
	CacheSize int
}

// Scorer computes separability over a fixed pooled distribution.
// It is safe for concurrent use.
type Scorer struct {
	pooled *aggregate.Pooled
	cfg    Config
	dist   distance.Func
	risk   *risk.Matrix
	prior  *risk.Matrix
	memo   *lru.Cache[string, *distance.Matrix]
}

// NewScorer validates cfg against the pooled classes. Risk and prior matrices are
// restricted to the surviving classes.
func NewScorer(p *aggregate.Pooled, cfg Config) (*Scorer, error) {
	if p == nil || len(p.Classes) == 0 {
		return nil, aggregate.ErrNoClasses
	}
	if cfg.Risk == nil {
		return nil, errors.New("scorer: risk matrix is required")
	}
	if cfg.BinWidth == 0 {
		cfg.BinWidth = DefaultBinWidth
	}
	if cfg.MaxCells == 0 {
		cfg.MaxCells = density.DefaultMaxCells
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	fn, err := distance.Provider(cfg.Metric)
	if err != nil {
		return nil, err
	}
	r, err := cfg.Risk.Restrict(p.Classes)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}
	var prior *risk.Matrix
	if cfg.Prior != nil {
		if prior, err = cfg.Prior.Restrict(p.Classes); err != nil {
			return nil, fmt.Errorf("scorer: prior: %w", err)
		}
	}
	memo, err := lru.New[string, *distance.Matrix](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Scorer{pooled: p, cfg: cfg, dist: fn, risk: r, prior: prior, memo: memo}, nil
}

// Classes returns the surviving class indices.
func (s *Scorer) Classes() []int {
	return append([]int(nil), s.pooled.Classes...)
}

// Attributes returns the attribute universe.
func (s *Scorer) Attributes() []string {
	return append([]string(nil), s.pooled.Names...)
}

// Pairs returns every surviving class pair.
func (s *Scorer) Pairs() []Pair {
	return Pairs(s.pooled.Classes)
}

// Label returns the display label of a pair.
func (s *Scorer) Label(p Pair) string {
	n := s.cfg.ClassNames
	if p.A < len(n) && p.B < len(n) {
		return n[p.A] + " vs " + n[p.B]
	}
	return p.String()
}

// Distances returns the class distance matrix for the named attributes, memoised
// by attribute list.
func (s *Scorer) Distances(names []string) (*distance.Matrix, error) {
	key := strings.Join(names, "\x00")
	if d, ok := s.memo.Get(key); ok {
		return d, nil
	}

	sub, err := s.pooled.Select(names)
	if err != nil {
		return nil, err
	}
	reps, err := s.represent(sub)
	if err != nil {
		return nil, err
	}
	d, err := distance.NewMatrix(sub.Classes, reps, s.dist)
	if err != nil {
		return nil, err
	}
	s.memo.Add(key, d)
	return d, nil
}

func (s *Scorer) represent(p *aggregate.Pooled) ([][]float64, error) {
	switch s.cfg.Representation {
	case RepresentationMean:
		reps := make([][]float64, len(p.Rows))
		for i, m := range p.Rows {
			if m == nil || m.IsEmpty() {
				return nil, &distance.DegenerateDistributionError{Class: p.Classes[i]}
			}
			_, cols := m.Dims()
			reps[i] = make([]float64, cols)
			for j := range cols {
				reps[i][j] = stat.Mean(mat.Col(nil, j, m), nil)
			}
		}
		return reps, nil
	case RepresentationHistogram:
		hists, _, err := density.Compute(p.Classes, p.Rows, s.cfg.BinWidth, s.cfg.MaxCells)
		if err != nil {
			return nil, err
		}
		reps := make([][]float64, len(hists))
		for i, h := range hists {
			reps[i] = h.Values
		}
		return reps, nil
	default:
		return nil, fmt.Errorf("unknown representation %d", s.cfg.Representation)
	}
}

// Score returns the aggregate separability of the named attributes.
func (s *Scorer) Score(names []string) (float64, error) {
	d, err := s.Distances(names)
	if err != nil {
		return 0, err
	}
	return Score(d, s.risk, s.prior)
}

// PairScore returns the separability of one class pair under the named attributes.
func (s *Scorer) PairScore(names []string, p Pair) (float64, error) {
	d, err := s.Distances(names)
	if err != nil {
		return 0, err
	}
	return PairScore(d, s.risk, s.prior, p)
}

// row scores one table row.
func (s *Scorer) row(ctx context.Context, name string, names []string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}
	d, err := s.Distances(names)
	if err != nil {
		return Row{}, fmt.Errorf("%s: %w", name, err)
	}
	total, err := Score(d, s.risk, s.prior)
	if err != nil {
		return Row{}, fmt.Errorf("%s: %w", name, err)
	}
	pairs := s.Pairs()
	r := Row{Name: name, Attributes: append([]string(nil), names...), Score: total, PairScores: make([]float64, len(pairs))}
	for i, p := range pairs {
		if r.PairScores[i], err = PairScore(d, s.risk, s.prior, p); err != nil {
			return Row{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return r, nil
}
