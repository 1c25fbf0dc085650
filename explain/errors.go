package explain

import (
	"errors"
	"fmt"
)

// ErrNoGraphs is returned when Compute is called without graphs.
var ErrNoGraphs = errors.New("no graphs to explain")

// UnsupportedExplainerError is returned for unknown explainer identifiers.
type UnsupportedExplainerError struct {
	Kind string
}

func (e *UnsupportedExplainerError) Error() string {
	return fmt.Sprintf("unsupported explainer: %q", e.Kind)
}

// EmptyGraphError is returned when a graph has no nodes.
type EmptyGraphError struct {
	Graph string
	Index int
}

func (e *EmptyGraphError) Error() string {
	return fmt.Sprintf("graph %q (position %d) has no nodes", e.Graph, e.Index)
}
