package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cgsep"
	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/attribute"
	"github.com/hupe1980/cgsep/blobstore"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/export"
	"github.com/hupe1980/cgsep/testutil"
)

const fullConfig = `
explainer: occlusion
logging:
  level: debug
  format: json
workers: 2
seed: 7
samples: 16
keep_probability: 0.3
merge_rois: true
prune_misclassified: true
importance:
  mode: top
  fraction: 0.5
representation: histogram
bin_width: 0.1
metric: manhattan
ordinal_risk: false
search:
  objective: min
  k: 2
  max_subsets: 50
  threshold: 0.25
  top_n: 3
grouping:
  - name: immune
    attributes: [CD3, CD8]
export:
  enabled: true
  root: runs
  compression: zstd
  workbook: true
  store:
    kind: memory
`

func TestLoadEmptyUsesDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, explain.KindPruning, cfg.Kind())
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(strings.NewReader(fullConfig))
	require.NoError(t, err)

	threshold := 0.25
	ordinal := false
	want := Default()
	want.Explainer = "occlusion"
	want.Logging = Logging{Level: "debug", Format: "json"}
	want.Workers = 2
	want.Seed = 7
	want.Samples = 16
	want.KeepProbability = 0.3
	want.MergeROIs = true
	want.PruneMisclassified = true
	want.Importance = Importance{Mode: "top", Fraction: 0.5}
	want.Representation = "histogram"
	want.BinWidth = 0.1
	want.Metric = "manhattan"
	want.OrdinalRisk = &ordinal
	want.Search = Search{Objective: "min", K: 2, MaxSubsets: 50, Threshold: &threshold, TopN: 3}
	want.Grouping = aggregate.Grouping{{Name: "immune", Attributes: []string{"CD3", "CD8"}}}
	want.Export = Export{
		Enabled:     true,
		Root:        "runs",
		Codec:       "go-json",
		Compression: "zstd",
		Workbook:    true,
		Store:       Store{Kind: "memory", Path: "results"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	opts, err := cfg.Options(context.Background())
	require.NoError(t, err)
	// 17 base options, ordinal risk, threshold, exporter
	assert.Len(t, opts, 20)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"unknown key", "explainr: pp", "explainr"},
		{"explainer", "explainer: lime", "explainer"},
		{"level", "logging: {level: loud}", "logging.level"},
		{"keep probability", "keep_probability: 1", "keep_probability"},
		{"format", "logging: {format: xml}", "logging.format"},
		{"importance", "importance: {mode: all}", "importance.mode"},
		{"representation", "representation: kde", "representation"},
		{"metric", "metric: hamming", "metric"},
		{"objective", "search: {objective: best}", "search.objective"},
		{"codec", "export: {codec: msgpack}", "export.codec"},
		{"compression", "export: {compression: gzip}", "export.compression"},
		{"store kind", "export: {enabled: true, store: {kind: ftp}}", "export.store"},
		{"s3 bucket", "export: {enabled: true, store: {kind: s3}}", "bucket"},
		{"minio endpoint", "export: {enabled: true, store: {kind: minio, bucket: b}}", "endpoint"},
		{"local path", "export: {enabled: true, store: {kind: local, path: ''}}", "path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 11\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(11), cfg.Seed)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogger(t *testing.T) {
	cfg, err := Load(strings.NewReader("logging: {level: warn, format: json}"))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "pair", "0_1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"pair":"0_1"`)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Export.Store = Store{Kind: "local", Path: t.TempDir()}
	s, err := cfg.Store(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, s)

	cfg.Export.Store = Store{Kind: "memory"}
	s, err = cfg.Store(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, s)

	cfg.Export.Store = Store{Kind: "nfs"}
	_, err = cfg.Store(ctx)
	assert.Error(t, err)
}

func TestConfiguredRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg, err := Load(strings.NewReader(`
explainer: occlusion
search: {k: 1}
export:
  enabled: true
  compression: lz4
  store: {kind: local, path: "` + filepath.ToSlash(dir) + `"}
`))
	require.NoError(t, err)

	opts, err := cfg.Options(ctx)
	require.NoError(t, err)
	opts = append(opts, cgsep.WithLogger(nil))

	req := &cgsep.Request{
		Graphs:     testutil.NewRNG(9).ClassGraphs(2, 2, 4, 2, 3),
		Model:      testutil.NewFixedModel(2, nil),
		Attributes: attribute.MustFeatureSource([]string{"FT_a", "FT_b"}),
	}
	cfg.Apply(req)
	assert.Equal(t, explain.KindOcclusion, req.Explainer)

	report, err := cgsep.ExplainAndScore(ctx, req, opts...)
	require.NoError(t, err)

	store := blobstore.NewLocalStore(dir)
	runs, err := export.Runs(ctx, store, "")
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r, err := export.Open(ctx, store, runs[0])
	require.NoError(t, err)
	assert.Equal(t, "lz4", r.Manifest().Compression)

	concept, err := r.Table(ctx, export.ConceptTable)
	require.NoError(t, err)
	if diff := cmp.Diff(report.Concept, concept); diff != "" {
		t.Errorf("concept table mismatch (-want +got):\n%s", diff)
	}
}
