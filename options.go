package cgsep

import (
	"log/slog"

	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/distance"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/resource"
	"github.com/hupe1980/cgsep/separability"
)

// DefaultK is the largest subset size searched by default.
const DefaultK = 3

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	controller       *resource.Controller

	seed            int64
	samples         int
	keepProbability float64

	mergeROIs            bool
	evaluationSplit      bool
	classificationReport bool
	selection            aggregate.Selection

	representation separability.Representation
	binWidth       float64
	maxCells       int
	metric         distance.Metric
	ordinalRisk    bool

	objective  separability.Objective
	k          int
	maxSubsets int
	threshold  *float64
	topN       int

	visualizer Visualizer
	exporter   Exporter
}

// Option configures an Engine.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &cgsep.BasicMetricsCollector{}
//	e, _ := cgsep.New(cgsep.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := cgsep.NewJSONLogger(slog.LevelInfo)
//	e, _ := cgsep.New(cgsep.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares a resource controller between engines.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithWorkers bounds the number of graphs or subsets processed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.controller = resource.NewController(resource.Config{MaxWorkers: n})
	}
}

// WithSeed seeds stochastic explainers.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithSamples sets the number of random masks drawn per graph by the pruning explainer.
func WithSamples(n int) Option {
	return func(o *options) {
		o.samples = n
	}
}

// WithKeepProbability sets the probability that a node survives a random mask of
// the pruning explainer. It must lie strictly between 0 and 1.
func WithKeepProbability(p float64) Option {
	return func(o *options) {
		o.keepProbability = p
	}
}

// WithMergeROIs pools all ROIs of a specimen as a single unit and groups the
// visualization output by specimen.
func WithMergeROIs(merge bool) Option {
	return func(o *options) {
		o.mergeROIs = merge
	}
}

// WithEvaluationSplit restricts a run to the last non-empty split of the request
// graphs, preferring test over validation over train.
func WithEvaluationSplit(enabled bool) Option {
	return func(o *options) {
		o.evaluationSplit = enabled
	}
}

// WithClassificationReport computes a classification report even when
// misclassified graphs are not pruned.
func WithClassificationReport(enabled bool) Option {
	return func(o *options) {
		o.classificationReport = enabled
	}
}

// WithImportanceSelection weights or filters nodes by importance before pooling.
func WithImportanceSelection(sel aggregate.Selection) Option {
	return func(o *options) {
		o.selection = sel
	}
}

// WithRepresentation selects class means or density histograms for distances.
func WithRepresentation(r separability.Representation) Option {
	return func(o *options) {
		o.representation = r
	}
}

// WithBinWidth sets the histogram bin width per dimension.
func WithBinWidth(w float64) Option {
	return func(o *options) {
		o.binWidth = w
	}
}

// WithMaxHistogramCells bounds the number of cells of a single histogram.
func WithMaxHistogramCells(n int) Option {
	return func(o *options) {
		o.maxCells = n
	}
}

// WithMetric selects the class distance metric.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithOrdinalRisk selects |i-j| risk weights (true, the default) or uniform weights.
// A request risk matrix takes precedence.
func WithOrdinalRisk(ordinal bool) Option {
	return func(o *options) {
		o.ordinalRisk = ordinal
	}
}

// WithObjective selects whether k-best searches maximise or minimise the score.
func WithObjective(obj separability.Objective) Option {
	return func(o *options) {
		o.objective = obj
	}
}

// WithK sets the largest subset size searched; sizes 1..k are searched.
// Zero disables k-best search.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithMaxSubsets caps the number of subsets evaluated per search.
// A negative value removes the cap.
func WithMaxSubsets(n int) Option {
	return func(o *options) {
		o.maxSubsets = n
	}
}

// WithScoreThreshold stops each search at the first subset whose score reaches t.
func WithScoreThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = &t
	}
}

// WithTopN keeps the n best subsets per class pair and subset size.
func WithTopN(n int) Option {
	return func(o *options) {
		o.topN = n
	}
}

// WithVisualizer sets the collaborator that renders importance-annotated graphs.
func WithVisualizer(v Visualizer) Option {
	return func(o *options) {
		o.visualizer = v
	}
}

// WithExporter sets the collaborator that persists the report.
func WithExporter(e Exporter) Option {
	return func(o *options) {
		o.exporter = e
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		samples:          explain.DefaultSamples,
		keepProbability:  explain.DefaultKeepProbability,
		binWidth:         separability.DefaultBinWidth,
		ordinalRisk:      true,
		k:                DefaultK,
		maxSubsets:       separability.DefaultMaxSubsets,
		topN:             1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) validate() error {
	if !(o.binWidth > 0) {
		return configError("BinWidth", "must be positive", nil)
	}
	if o.k < 0 {
		return configError("K", "must not be negative", nil)
	}
	if o.topN < 1 {
		return configError("TopN", "must be at least 1", nil)
	}
	if o.samples < 1 {
		return configError("Samples", "must be at least 1", nil)
	}
	if !(o.keepProbability > 0 && o.keepProbability < 1) {
		return configError("KeepProbability", "must lie in (0,1)", nil)
	}
	if o.maxCells < 0 {
		return configError("MaxHistogramCells", "must not be negative", nil)
	}
	if err := o.selection.Validate(); err != nil {
		return configError("ImportanceSelection", "invalid", err)
	}
	if _, err := distance.Provider(o.metric); err != nil {
		return configError("Metric", "unsupported", err)
	}
	return nil
}
