package explain

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cgsep/graph"
	"github.com/hupe1980/cgsep/resource"
	"github.com/hupe1980/cgsep/testutil"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindPruning, k)

	k, err = ParseKind("gradcam")
	require.NoError(t, err)
	assert.Equal(t, KindGradient, k)

	_, err = ParseKind("gnnexplainer")
	var unsupported *UnsupportedExplainerError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "gnnexplainer", unsupported.Kind)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"range", []float64{1, 3, 5}, []float64{0, 0.5, 1}},
		{"negative", []float64{-2, 0, 2}, []float64{0, 0.5, 1}},
		{"constant positive", []float64{2, 2}, []float64{1, 1}},
		{"constant zero", []float64{0, 0}, []float64{0, 0}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Normalize(tt.in))
			assert.InDeltaSlice(t, tt.want, tt.in, 1e-12)
		})
	}

	assert.Error(t, Normalize([]float64{1, math.NaN()}))
}

func TestCompute(t *testing.T) {
	rng := testutil.NewRNG(7)
	graphs := rng.ClassGraphs(2, 3, 5, 2, 1)
	m := testutil.NewLinearModel([][]float64{{-1, -1}, {1, 1}}, nil)

	for _, kind := range []Kind{KindPruning, KindOcclusion, KindGradient, KindAttention} {
		t.Run(string(kind), func(t *testing.T) {
			out, err := Compute(context.Background(), graphs, m, kind, WithSeed(1), WithSamples(16))
			require.NoError(t, err)
			require.Len(t, out, len(graphs))

			for i, g := range out {
				assert.Equal(t, graphs[i].Name, g.Name)
				assert.NotSame(t, graphs[i], g)
				assert.Nil(t, graphs[i].Importance)
				require.True(t, g.Annotated())
				for _, v := range g.Importance {
					assert.GreaterOrEqual(t, v, 0.0)
					assert.LessOrEqual(t, v, 1.0)
				}
			}
		})
	}
}

func TestComputeDeterministic(t *testing.T) {
	rng := testutil.NewRNG(11)
	graphs := rng.ClassGraphs(2, 4, 6, 2, 1)
	m := testutil.NewLinearModel([][]float64{{-1, 0.5}, {1, -0.5}}, nil)

	a, err := Compute(context.Background(), graphs, m, KindPruning, WithSeed(3), WithController(resource.Sequential()))
	require.NoError(t, err)
	b, err := Compute(context.Background(), graphs, m, KindPruning, WithSeed(3), WithController(resource.NewController(resource.Config{MaxWorkers: 4})))
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].Importance, b[i].Importance, a[i].Name)
	}
}

func TestOcclusion(t *testing.T) {
	m := testutil.NewLinearModel([][]float64{{1}, {-1}}, nil)
	g := testutil.NewGraph("g", "s", 0, [][]float64{{3}, {1}})

	out, err := Compute(context.Background(), []*graph.Graph{g}, m, KindOcclusion)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0}, out[0].Importance, 1e-12)
}

func TestGradient(t *testing.T) {
	m := testutil.NewLinearModel([][]float64{{1, 0}, {0, 1}}, nil)
	g := testutil.NewGraph("g", "s", 0, [][]float64{{2, 0}, {4, 0}, {3, 0}})

	out, err := Compute(context.Background(), []*graph.Graph{g}, m, KindGradient)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 0.5}, out[0].Importance, 1e-12)

	_, err = Compute(context.Background(), []*graph.Graph{g}, testutil.NewFixedModel(2, nil), KindGradient)
	assert.Error(t, err)
}

func TestComputeErrors(t *testing.T) {
	m := testutil.NewFixedModel(2, nil)
	ok := testutil.NewGraph("ok", "s", 0, [][]float64{{1}})

	t.Run("no graphs", func(t *testing.T) {
		_, err := Compute(context.Background(), nil, m, KindOcclusion)
		assert.ErrorIs(t, err, ErrNoGraphs)
	})

	t.Run("empty graph", func(t *testing.T) {
		empty := testutil.NewGraph("empty", "s", 0, nil)
		_, err := Compute(context.Background(), []*graph.Graph{ok, empty}, m, KindOcclusion)

		var eg *EmptyGraphError
		require.ErrorAs(t, err, &eg)
		assert.Equal(t, "empty", eg.Graph)
		assert.Equal(t, 1, eg.Index)
		assert.Zero(t, m.Calls(), "no work before validation")
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := Compute(context.Background(), []*graph.Graph{ok}, m, Kind("saliency"))
		var unsupported *UnsupportedExplainerError
		assert.ErrorAs(t, err, &unsupported)
	})

	t.Run("prediction failure", func(t *testing.T) {
		failing := testutil.NewFixedModel(2, nil)
		failing.Failures = map[string]error{"ok": errors.New("boom")}
		_, err := Compute(context.Background(), []*graph.Graph{ok}, failing, KindOcclusion)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"ok"`)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Compute(ctx, []*graph.Graph{ok}, m, KindPruning)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestUnify(t *testing.T) {
	roi1 := &graph.Graph{Name: "S1_roi1", NodeIDs: []int64{1, 2}, Features: [][]float64{{0}, {0}}, Importance: []float64{0.2, 1}}
	roi2 := &graph.Graph{Name: "S1_roi2", NodeIDs: []int64{2, 3}, Features: [][]float64{{0}, {0}}, Importance: []float64{0.6, 0}}

	got, err := Unify([]*graph.Graph{roi1, roi2})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.InDelta(t, 0.2, got[1], 1e-12)
	assert.InDelta(t, 0.8, got[2], 1e-12)
	assert.InDelta(t, 0.0, got[3], 1e-12)

	_, err = Unify([]*graph.Graph{{Name: "raw", Features: [][]float64{{0}}}})
	assert.Error(t, err)
}
