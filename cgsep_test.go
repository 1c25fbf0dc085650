package cgsep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/attribute"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/graph"
	"github.com/hupe1980/cgsep/internal/numeric"
	"github.com/hupe1980/cgsep/risk"
	"github.com/hupe1980/cgsep/separability"
	"github.com/hupe1980/cgsep/testutil"
)

var featureNames = []string{"FT_CD3", "PH_Tumor"}

// tenGraphs returns G0..G9 alternating between two classes. Nodes of G7 carry a
// marker value so they can be traced through pooling.
func tenGraphs(rng *testutil.RNG) []*graph.Graph {
	var gs []*graph.Graph
	var id int64
	for i := range 10 {
		label := i % 2
		rows := rng.GaussianRows(4, 2, float64(label), 0.2)
		if i == 7 {
			label = 0
			rows = testutil.ConstantRows(4, 999, 999)
		}
		g := testutil.NewGraph(fmt.Sprintf("G%d", i), fmt.Sprintf("S%d", i), label, rows)
		for range rows {
			g.NodeIDs = append(g.NodeIDs, id)
			id++
		}
		gs = append(gs, g)
	}
	return gs
}

func TestPruneMisclassified(t *testing.T) {
	gs := tenGraphs(testutil.NewRNG(1))
	model := testutil.NewFixedModel(2, map[string]int{"G7": 1})

	var seen *Visualization
	e, err := New(
		WithSeed(5),
		WithSamples(8),
		WithVisualizer(VisualizerFunc(func(_ context.Context, v *Visualization) error {
			seen = v
			return nil
		})),
	)
	require.NoError(t, err)

	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.Name
	}

	report, err := e.ExplainAndScore(context.Background(), &Request{
		Graphs:             gs,
		Model:              model,
		Explainer:          explain.KindOcclusion,
		Attributes:         attribute.MustFeatureSource(featureNames),
		PruneMisclassified: true,
		FeatureNames:       featureNames,
		GraphNames:         names,
		OutputDir:          t.TempDir(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"G7"}, report.Pruned)
	assert.NotContains(t, report.Scored, "G7")
	assert.Len(t, report.Scored, 9)

	for i, m := range report.Pooled.Rows {
		rows, cols := m.Dims()
		for r := range rows {
			for c := range cols {
				assert.NotEqual(t, 999.0, m.At(r, c), "class %d holds a G7 node", report.Pooled.Classes[i])
			}
		}
	}

	require.NotNil(t, seen)
	assert.Same(t, report.Visualization, seen)
	assert.Equal(t, []string{"CD3", "Tumor"}, seen.FeatureNames)
	var g7 *graph.Graph
	for _, grp := range seen.Groups {
		for _, g := range grp.Graphs {
			if g.Name == "G7" {
				g7 = g
			}
		}
	}
	require.NotNil(t, g7, "G7 stays in the visualization output")
	assert.True(t, g7.Annotated())
	assert.Len(t, g7.Importance, 4)

	require.NotNil(t, report.Classification)
	assert.Equal(t, 0.9, report.Classification.Accuracy)
	assert.Len(t, report.Importances, 40)
}

func TestPruneUnlabelledPrediction(t *testing.T) {
	gs := tenGraphs(testutil.NewRNG(3))
	// The model knows a third class that no label uses.
	model := testutil.NewFixedModel(3, map[string]int{"G3": 2})

	report, err := ExplainAndScore(context.Background(), &Request{
		Graphs:             gs,
		Model:              model,
		Explainer:          explain.KindOcclusion,
		Attributes:         attribute.MustFeatureSource(featureNames),
		PruneMisclassified: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"G3"}, report.Pruned)
	assert.NotContains(t, report.Scored, "G3")
	assert.Equal(t, []int{0, 1}, report.Classes)

	require.NotNil(t, report.Classification)
	require.Len(t, report.Classification.Classes, 2)
	assert.Equal(t, 0.9, report.Classification.Accuracy)
	assert.Equal(t, 4, report.Classification.Classes[1].Support)
	assert.Equal(t, 0.75, report.Classification.Classes[1].Recall)
}

func TestScopedLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := ExplainAndScore(context.Background(), &Request{
		Graphs:             tenGraphs(testutil.NewRNG(4)),
		Model:              testutil.NewFixedModel(2, map[string]int{"G7": 1}),
		Explainer:          explain.KindPruning,
		Attributes:         attribute.MustFeatureSource(featureNames),
		PruneMisclassified: true,
	}, WithLogger(logger), WithK(1), WithSamples(4), WithKeepProbability(0.8))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"misclassified","graph":"G7"`)
	assert.Contains(t, out, `"msg":"best subset","pair":"0_1"`)

	buf.Reset()
	_, err = ExplainAndScore(context.Background(), &Request{
		Graphs:     []*graph.Graph{testutil.NewGraph("hollow", "s", 0, nil)},
		Model:      testutil.NewFixedModel(2, nil),
		Attributes: attribute.MustFeatureSource(featureNames),
	}, WithLogger(logger))
	require.ErrorIs(t, err, ErrEmptyGraph)
	assert.Contains(t, buf.String(), `"graph":"hollow"`)
}

func TestThreeClassScenario(t *testing.T) {
	rng := testutil.NewRNG(42)
	pools := [][][]float64{
		rng.GaussianRows(10, 2, 0, 1),
		rng.GaussianRows(15, 2, 1, 1),
		rng.GaussianRows(8, 2, 3, 1),
	}
	var gs []*graph.Graph
	for c, rows := range pools {
		gs = append(gs, testutil.NewGraph(fmt.Sprintf("G%d", c), fmt.Sprintf("S%d", c), c, rows))
	}

	report, err := ExplainAndScore(context.Background(), &Request{
		Graphs:     gs,
		Model:      testutil.NewFixedModel(3, nil),
		Explainer:  explain.KindOcclusion,
		Attributes: attribute.MustFeatureSource(featureNames),
	}, WithK(2))
	require.NoError(t, err)

	means := make([][]float64, 3)
	for c, rows := range pools {
		means[c] = make([]float64, 2)
		for _, r := range rows {
			means[c][0] += r[0] / float64(len(rows))
			means[c][1] += r[1] / float64(len(rows))
		}
	}
	d := func(a, b int) float64 {
		return math.Hypot(means[a][0]-means[b][0], means[a][1]-means[b][1])
	}

	require.Len(t, report.Concept.Rows, 1)
	assert.Equal(t, separability.AllConcepts, report.Concept.Rows[0].Name)
	assert.Equal(t, numeric.Round(d(0, 1)+2*d(0, 2)+d(1, 2)), report.Concept.Rows[0].Score)
	assert.Equal(t, []int{0, 1, 2}, report.Classes)
	assert.Equal(t, []string{"CD3", "Tumor"}, report.Attributes)
	assert.Len(t, report.Attribute.Rows, 2)
	assert.Len(t, report.KBest, 3)
	assert.Nil(t, report.Importances, "graphs without cell ids")

	kt, ok := report.KBestFor(separability.NewPair(2, 0))
	require.True(t, ok)
	assert.Equal(t, 2, kt.Rows[len(kt.Rows)-1].K)
}

func TestMergeROIs(t *testing.T) {
	gs := []*graph.Graph{
		testutil.NewGraph("S1_roi1", "S1", 0, [][]float64{{0, 0}, {0.1, 0}}),
		testutil.NewGraph("S2_roi1", "S2", 1, [][]float64{{1, 1}}),
		testutil.NewGraph("S1_roi2", "S1", 0, [][]float64{{0.2, 0}, {0.3, 0}, {0.4, 0}}),
	}
	report, err := ExplainAndScore(context.Background(), &Request{
		Graphs:       gs,
		Model:        testutil.NewLinearModel([][]float64{{-1, -1}, {1, 1}}, nil),
		Explainer:    explain.KindGradient,
		Attributes:   attribute.MustFeatureSource(featureNames),
		FeatureNames: featureNames,
		GraphNames:   []string{"S1_roi1", "S2_roi1", "S1_roi2"},
		OutputDir:    t.TempDir(),
	}, WithMergeROIs(true))
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.1, 0.2, 0.3, 0.4}, mat.Col(nil, 0, report.Pooled.Rows[0]))

	v := report.Visualization
	require.Len(t, v.Groups, 2)
	assert.Equal(t, "S1", v.Groups[0].Specimen)
	assert.Equal(t, "S1_roi1", v.Groups[0].Graphs[0].Name)
	assert.Equal(t, "S1_roi2", v.Groups[0].Graphs[1].Name)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	gs := tenGraphs(testutil.NewRNG(2))
	base := func() *Request {
		return &Request{
			Graphs:     gs,
			Model:      testutil.NewFixedModel(2, nil),
			Explainer:  explain.KindOcclusion,
			Attributes: attribute.MustFeatureSource(featureNames),
		}
	}

	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"partial visualization", func(r *Request) { r.FeatureNames = featureNames }, ErrConfiguration},
		{"visualization without graphs", func(r *Request) { r.FeatureNames = featureNames; r.OutputDir = "out" }, ErrConfiguration},
		{"unknown graph name", func(r *Request) {
			r.FeatureNames, r.GraphNames, r.OutputDir = featureNames, []string{"G42"}, "out"
		}, ErrConfiguration},
		{"nil model", func(r *Request) { r.Model = nil }, ErrConfiguration},
		{"risk too small", func(r *Request) { r.Risk = risk.New(1, true) }, ErrConfiguration},
		{"class names", func(r *Request) { r.ClassNames = []string{"only"} }, ErrConfiguration},
		{"grouping", func(r *Request) {
			r.Grouping = aggregate.Grouping{{Name: "x", Attributes: []string{"CD20"}}}
		}, ErrConfiguration},
		{"grouping misses an attribute", func(r *Request) {
			r.Grouping = aggregate.Grouping{{Name: "T", Attributes: []string{"CD3"}}}
		}, ErrConfiguration},
		{"explainer", func(r *Request) { r.Explainer = "saliency" }, ErrUnsupportedExplainer},
		{"empty graph", func(r *Request) {
			r.Graphs = append([]*graph.Graph{testutil.NewGraph("empty", "s", 0, nil)}, gs...)
		}, ErrEmptyGraph},
		{"no graphs", func(r *Request) { r.Graphs = nil }, ErrEmptyGraph},
		{"all pruned", func(r *Request) {
			r.PruneMisclassified = true
			r.Model = testutil.NewFixedModel(3, map[string]int{
				"G0": 2, "G1": 2, "G2": 2, "G3": 2, "G4": 2, "G5": 2, "G6": 2, "G7": 2, "G8": 2, "G9": 2,
			})
			r.NumClasses = 3
		}, ErrNoClasses},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)
			_, err := ExplainAndScore(ctx, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("typed errors stay reachable", func(t *testing.T) {
		req := base()
		req.Explainer = "saliency"
		_, err := ExplainAndScore(ctx, req)
		var ue *explain.UnsupportedExplainerError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "saliency", ue.Kind)

		req = base()
		req.FeatureNames = featureNames
		_, err = ExplainAndScore(ctx, req)
		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "Visualization", ce.Field)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := New(WithBinWidth(0))
		assert.ErrorIs(t, err, ErrConfiguration)
		_, err = New(WithTopN(0))
		assert.ErrorIs(t, err, ErrConfiguration)
		_, err = New(WithKeepProbability(1))
		assert.ErrorIs(t, err, ErrConfiguration)
		_, err = New(WithImportanceSelection(aggregate.Selection{Mode: aggregate.ImportanceThreshold, Threshold: 2}))
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("visualizer failure aborts", func(t *testing.T) {
		req := base()
		req.FeatureNames, req.GraphNames, req.OutputDir = featureNames, []string{"G1"}, "out"
		_, err := ExplainAndScore(ctx, req, WithVisualizer(VisualizerFunc(func(context.Context, *Visualization) error {
			return errors.New("render failed")
		})))
		assert.ErrorContains(t, err, "render failed")
	})
}

type captureExporter struct {
	report *Report
}

func (c *captureExporter) Export(_ context.Context, r *Report) (int64, error) {
	c.report = r
	return 128, nil
}

func TestMetricsAndExport(t *testing.T) {
	rng := testutil.NewRNG(8)
	gs := rng.ClassGraphs(3, 3, 6, 2, 1)
	// Class 1 graphs are predicted as class 2 and pruned.
	model := testutil.NewLinearModel([][]float64{{-1, -1}, {0, 0}, {1, 1}}, []float64{1, 0, -1})

	metrics := &BasicMetricsCollector{}
	exp := &captureExporter{}
	report, err := ExplainAndScore(context.Background(), &Request{
		Graphs:             gs,
		Model:              model,
		Attributes:         attribute.MustFeatureSource(featureNames),
		PruneMisclassified: true,
		PathoPrior:         risk.New(3, false),
		ClassNames:         []string{"low", "mid", "high"},
	}, WithMetricsCollector(metrics), WithExporter(exp), WithWorkers(4), WithSamples(16), WithTopN(2))
	require.NoError(t, err)

	assert.Same(t, report, exp.report)
	assert.Equal(t, explain.KindPruning, report.Explainer)
	assert.Len(t, report.Importances, 3*3*6)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ImportanceCount)
	assert.Equal(t, int64(len(gs)), stats.CorrectGraphs+stats.IncorrectGraphs)
	assert.Equal(t, int64(1), stats.SearchCount)
	assert.Positive(t, stats.SubsetsEvaluated)
	assert.Equal(t, int64(128), stats.ExportBytes)

	assert.Equal(t, []int{0, 2}, report.Classes)
	require.Len(t, report.KBest, 1)
	assert.Equal(t, "low vs high", report.KBest[0].Label)
	assert.Len(t, report.Pruned, 3)
}
