package cgsep

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/density"
	"github.com/hupe1980/cgsep/distance"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/separability"
)

var (
	// ErrUnsupportedExplainer is returned for unknown explainer identifiers.
	ErrUnsupportedExplainer = errors.New("unsupported explainer")

	// ErrEmptyGraph is returned when there are no graphs or a graph has no nodes.
	ErrEmptyGraph = errors.New("empty graph")

	// ErrEmptySubsetUniverse is returned when a k-best search has no subsets of size k.
	ErrEmptySubsetUniverse = errors.New("empty subset universe")

	// ErrDegenerateDistribution is returned when a class reaches scoring without values.
	ErrDegenerateDistribution = errors.New("degenerate distribution")

	// ErrConfiguration is returned for invalid or inconsistent run parameters.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNoClasses is returned when pruning and filtering leave no class to score.
	ErrNoClasses = errors.New("no classes to score")
)

// ConfigurationError describes an invalid or inconsistent run parameter.
//
// It matches ErrConfiguration with errors.Is. The underlying error (if any) can be
// accessed via errors.Unwrap.
type ConfigurationError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ConfigurationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid configuration: %s: %s: %v", e.Field, e.Reason, e.cause)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configError(field, reason string, cause error) error {
	return &ConfigurationError{Field: field, Reason: reason, cause: cause}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ue *explain.UnsupportedExplainerError
	if errors.As(err, &ue) {
		return fmt.Errorf("%w: %w", ErrUnsupportedExplainer, err)
	}

	var eg *explain.EmptyGraphError
	if errors.As(err, &eg) || errors.Is(err, explain.ErrNoGraphs) {
		return fmt.Errorf("%w: %w", ErrEmptyGraph, err)
	}

	var es *separability.EmptySubsetUniverseError
	if errors.As(err, &es) {
		return fmt.Errorf("%w: %w", ErrEmptySubsetUniverse, err)
	}

	var dd *distance.DegenerateDistributionError
	if errors.As(err, &dd) {
		return fmt.Errorf("%w: %w", ErrDegenerateDistribution, err)
	}

	if errors.Is(err, aggregate.ErrNoClasses) {
		return fmt.Errorf("%w: %w", ErrNoClasses, err)
	}

	if errors.Is(err, density.ErrInvalidBinWidth) || errors.Is(err, density.ErrTooManyCells) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return err
}
