package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianRows(t *testing.T) {
	rng := NewRNG(4711)

	rows := rng.GaussianRows(8, 3, 5, 0.1)

	assert.Len(t, rows, 8)
	assert.Len(t, rows[0], 3)
	assert.InDelta(t, 5, rows[0][0], 1)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformRows(1, 10)

	rng.Reset()
	v2 := rng.UniformRows(1, 10)

	assert.Equal(t, v1, v2)
}

func TestClassGraphs(t *testing.T) {
	rng := NewRNG(42)

	graphs := rng.ClassGraphs(3, 2, 4, 2, 1)

	require.Len(t, graphs, 6)
	seen := make(map[int64]bool)
	for i, g := range graphs {
		require.NoError(t, g.Validate())
		assert.Equal(t, i/2, g.Label)
		assert.Len(t, g.Edges, 3)
		for _, id := range g.NodeIDs {
			assert.False(t, seen[id], "duplicate node id %d", id)
			seen[id] = true
		}
	}
}

func TestLinearModel(t *testing.T) {
	m := NewLinearModel([][]float64{{1, 0}, {0, 1}}, nil)
	g := NewGraph("g", "s", 0, [][]float64{{2, 0}, {4, 0}})

	probs, err := m.Predict(context.Background(), g)
	require.NoError(t, err)
	assert.Greater(t, probs[0], probs[1])
	assert.InDelta(t, 1, probs[0]+probs[1], 1e-12)

	grads, err := m.NodeGradients(context.Background(), g, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0.5}, {0, 0.5}}, grads)

	att, err := m.NodeAttention(context.Background(), g)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3}, att, 1e-12)

	_, err = m.Predict(context.Background(), NewGraph("bad", "s", 0, [][]float64{{1}}))
	assert.Error(t, err)
}

func TestFixedModel(t *testing.T) {
	m := NewFixedModel(2, map[string]int{"G7": 1})
	m.Failures = map[string]error{"broken": errors.New("boom")}

	probs, err := m.Predict(context.Background(), NewGraph("G7", "s", 0, [][]float64{{1}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.9}, probs)

	probs, err = m.Predict(context.Background(), NewGraph("G1", "s", 0, [][]float64{{1}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1}, probs)

	_, err = m.Predict(context.Background(), NewGraph("broken", "s", 0, [][]float64{{1}}))
	assert.Error(t, err)
	assert.Equal(t, 3, m.Calls())
}
