// Package config loads run configuration from YAML and turns it into engine
// options and an export store.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/cgsep"
	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/blobstore"
	"github.com/hupe1980/cgsep/blobstore/minio"
	"github.com/hupe1980/cgsep/blobstore/s3"
	"github.com/hupe1980/cgsep/codec"
	"github.com/hupe1980/cgsep/distance"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/export"
	"github.com/hupe1980/cgsep/resource"
	"github.com/hupe1980/cgsep/separability"
)

// Config is the file form of a run configuration.
type Config struct {
	Explainer string  `yaml:"explainer"`
	Logging   Logging `yaml:"logging"`

	Workers            int `yaml:"workers"`
	IOLimitBytesPerSec int `yaml:"io_limit_bytes_per_sec"`

	Seed            int64   `yaml:"seed"`
	Samples         int     `yaml:"samples"`
	KeepProbability float64 `yaml:"keep_probability"`

	MergeROIs            bool       `yaml:"merge_rois"`
	PruneMisclassified   bool       `yaml:"prune_misclassified"`
	EvaluationSplit      bool       `yaml:"evaluation_split"`
	ClassificationReport bool       `yaml:"classification_report"`
	Importance           Importance `yaml:"importance"`

	Representation    string  `yaml:"representation"`
	BinWidth          float64 `yaml:"bin_width"`
	MaxHistogramCells int     `yaml:"max_histogram_cells"`
	Metric            string  `yaml:"metric"`
	OrdinalRisk       *bool   `yaml:"ordinal_risk"`

	Search   Search             `yaml:"search"`
	Grouping aggregate.Grouping `yaml:"grouping"`
	Export   Export             `yaml:"export"`
}

// Logging selects the log level and handler.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Importance configures importance-based node selection.
type Importance struct {
	Mode      string  `yaml:"mode"`
	Threshold float64 `yaml:"threshold"`
	Fraction  float64 `yaml:"fraction"`
}

// Search configures the k-best subset search.
type Search struct {
	Objective  string   `yaml:"objective"`
	K          int      `yaml:"k"`
	MaxSubsets int      `yaml:"max_subsets"`
	Threshold  *float64 `yaml:"threshold"`
	TopN       int      `yaml:"top_n"`
}

// Export configures where reports are written.
type Export struct {
	Enabled     bool   `yaml:"enabled"`
	Root        string `yaml:"root"`
	Codec       string `yaml:"codec"`
	Compression string `yaml:"compression"`
	Workbook    bool   `yaml:"workbook"`
	Store       Store  `yaml:"store"`
}

// Store selects an export backend.
type Store struct {
	// Kind is one of memory, local, s3 or minio.
	Kind      string `yaml:"kind"`
	Path      string `yaml:"path"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Default returns the configuration used for empty input.
func Default() *Config {
	return &Config{
		Explainer:       string(explain.DefaultKind),
		Logging:         Logging{Level: "info", Format: "text"},
		Samples:         explain.DefaultSamples,
		KeepProbability: explain.DefaultKeepProbability,
		Importance:      Importance{Mode: aggregate.ImportanceNone.String()},
		Representation:  separability.RepresentationMean.String(),
		BinWidth:        separability.DefaultBinWidth,
		Metric:          "euclidean",
		Search: Search{
			Objective:  separability.Maximize.String(),
			K:          cgsep.DefaultK,
			MaxSubsets: separability.DefaultMaxSubsets,
			TopN:       1,
		},
		Export: Export{
			Codec:       codec.Default.Name(),
			Compression: export.CompressionNone.String(),
			Store:       Store{Kind: "local", Path: "results"},
		},
	}
}

// Load parses YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Validate checks every enumerated value and the store settings.
func (c *Config) Validate() error {
	if _, err := explain.ParseKind(c.Explainer); err != nil {
		return fmt.Errorf("config: explainer: %w", err)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: logging.format: unknown format %q", c.Logging.Format)
	}
	if !(c.KeepProbability > 0 && c.KeepProbability < 1) {
		return fmt.Errorf("config: keep_probability: %g not in (0,1)", c.KeepProbability)
	}
	if _, err := c.selection(); err != nil {
		return err
	}
	if _, err := separability.ParseRepresentation(c.Representation); err != nil {
		return fmt.Errorf("config: representation: %w", err)
	}
	if _, err := distance.ParseMetric(c.Metric); err != nil {
		return fmt.Errorf("config: metric: %w", err)
	}
	if _, err := separability.ParseObjective(c.Search.Objective); err != nil {
		return fmt.Errorf("config: search.objective: %w", err)
	}
	if _, ok := codec.ByName(c.Export.Codec); !ok {
		return fmt.Errorf("config: export.codec: unknown codec %q", c.Export.Codec)
	}
	if _, err := export.ParseCompression(c.Export.Compression); err != nil {
		return fmt.Errorf("config: export.compression: %w", err)
	}
	if c.Export.Enabled {
		if err := c.Export.Store.validate(); err != nil {
			return fmt.Errorf("config: export.store: %w", err)
		}
	}
	return nil
}

func (s Store) validate() error {
	switch s.Kind {
	case "memory":
	case "local":
		if s.Path == "" {
			return errors.New("local store requires a path")
		}
	case "s3", "minio":
		if s.Bucket == "" {
			return fmt.Errorf("%s store requires a bucket", s.Kind)
		}
		if s.Kind == "minio" && s.Endpoint == "" {
			return errors.New("minio store requires an endpoint")
		}
	default:
		return fmt.Errorf("unknown store kind %q", s.Kind)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if c.Logging.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("config: logging.level: %w", err)
	}
	return l, nil
}

func (c *Config) selection() (aggregate.Selection, error) {
	mode, err := aggregate.ParseImportanceMode(c.Importance.Mode)
	if err != nil {
		return aggregate.Selection{}, fmt.Errorf("config: importance.mode: %w", err)
	}
	return aggregate.Selection{Mode: mode, Threshold: c.Importance.Threshold, Fraction: c.Importance.Fraction}, nil
}

// Kind returns the configured explainer.
func (c *Config) Kind() explain.Kind {
	k, _ := explain.ParseKind(c.Explainer)
	return k
}

// Logger builds the configured logger writing to w.
func (c *Config) Logger(w io.Writer) (*cgsep.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return cgsep.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return cgsep.NewLogger(slog.NewTextHandler(w, opts)), nil
}

// Controller builds the resource controller for the configured worker and IO
// budgets.
func (c *Config) Controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MaxWorkers:         c.Workers,
		IOLimitBytesPerSec: c.IOLimitBytesPerSec,
	})
}

// Store builds the configured export store.
func (c *Config) Store(ctx context.Context) (blobstore.Store, error) {
	s := c.Export.Store
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("config: export.store: %w", err)
	}
	switch s.Kind {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "local":
		return blobstore.NewLocalStore(s.Path), nil
	case "s3":
		opts := []s3.Option{s3.WithPrefix(s.Prefix)}
		if s.Region != "" {
			opts = append(opts, s3.WithRegion(s.Region))
		}
		if s.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(s.Endpoint))
		}
		return s3.New(ctx, s.Bucket, opts...)
	default:
		return minio.Connect(s.Endpoint, s.AccessKey, s.SecretKey, s.Secure, s.Bucket, s.Prefix)
	}
}

// Exporter builds an exporter over store with the configured codec, compression
// and workbook settings.
func (c *Config) Exporter(store blobstore.Store, rc *resource.Controller) *export.Exporter {
	cd, _ := codec.ByName(c.Export.Codec)
	comp, _ := export.ParseCompression(c.Export.Compression)
	return export.New(store,
		export.WithCodec(cd),
		export.WithCompression(comp),
		export.WithWorkbook(c.Export.Workbook),
		export.WithRoot(c.Export.Root),
		export.WithController(rc),
	)
}

// Options translates the configuration into engine options. Logs go to stderr.
// When export is enabled the store is built and wired into an exporter.
func (c *Config) Options(ctx context.Context) ([]cgsep.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger, err := c.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	sel, _ := c.selection()
	rep, _ := separability.ParseRepresentation(c.Representation)
	metric, _ := distance.ParseMetric(c.Metric)
	obj, _ := separability.ParseObjective(c.Search.Objective)
	rc := c.Controller()

	opts := []cgsep.Option{
		cgsep.WithLogger(logger),
		cgsep.WithResourceController(rc),
		cgsep.WithSeed(c.Seed),
		cgsep.WithSamples(c.Samples),
		cgsep.WithKeepProbability(c.KeepProbability),
		cgsep.WithMergeROIs(c.MergeROIs),
		cgsep.WithEvaluationSplit(c.EvaluationSplit),
		cgsep.WithClassificationReport(c.ClassificationReport),
		cgsep.WithImportanceSelection(sel),
		cgsep.WithRepresentation(rep),
		cgsep.WithBinWidth(c.BinWidth),
		cgsep.WithMaxHistogramCells(c.MaxHistogramCells),
		cgsep.WithMetric(metric),
		cgsep.WithObjective(obj),
		cgsep.WithK(c.Search.K),
		cgsep.WithMaxSubsets(c.Search.MaxSubsets),
		cgsep.WithTopN(c.Search.TopN),
	}
	if c.OrdinalRisk != nil {
		opts = append(opts, cgsep.WithOrdinalRisk(*c.OrdinalRisk))
	}
	if c.Search.Threshold != nil {
		opts = append(opts, cgsep.WithScoreThreshold(*c.Search.Threshold))
	}
	if c.Export.Enabled {
		store, err := c.Store(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cgsep.WithExporter(c.Exporter(store, rc)))
	}
	return opts, nil
}

// Apply copies the request-level settings (explainer, pruning and grouping) into
// req when the request leaves them unset.
func (c *Config) Apply(req *cgsep.Request) {
	if req.Explainer == "" {
		req.Explainer = c.Kind()
	}
	if c.PruneMisclassified {
		req.PruneMisclassified = true
	}
	if len(req.Grouping) == 0 {
		req.Grouping = c.Grouping
	}
}
