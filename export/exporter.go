package export

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/cgsep"
	"github.com/hupe1980/cgsep/blobstore"
	"github.com/hupe1980/cgsep/codec"
	"github.com/hupe1980/cgsep/internal/numeric"
	"github.com/hupe1980/cgsep/resource"
)

// Artifact names, without codec or compression suffix.
const (
	ConceptTable   = "separability_concept"
	AttributeTable = "separability_attribute"
	KBestPrefix    = "separability_k_best_"
	Importances    = "importances"
	Classification = "classification"
	WorkbookName   = "separability.xlsx"
	ManifestName   = "manifest.json"
)

// Artifact describes one written blob.
type Artifact struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// Manifest describes a completed run directory.
type Manifest struct {
	RunID       string     `json:"run_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Codec       string     `json:"codec"`
	Compression string     `json:"compression"`
	Explainer   string     `json:"explainer"`
	Classes     []int      `json:"classes"`
	ClassNames  []string   `json:"class_names,omitempty"`
	Attributes  []string   `json:"attributes"`
	Pruned      []string   `json:"pruned,omitempty"`
	Scored      []string   `json:"scored"`
	Artifacts   []Artifact `json:"artifacts"`
}

// ImportanceRow is one cell of the importances artifact.
type ImportanceRow struct {
	CellID     int64   `json:"cell_id"`
	Importance float64 `json:"importance"`
}

// Exporter writes reports to a Store. It implements cgsep.Exporter and is safe
// for concurrent use.
type Exporter struct {
	store       blobstore.Store
	codec       codec.Codec
	compression Compression
	workbook    bool
	root        string
	runID       func() string
	now         func() time.Time
	controller  *resource.Controller
}

var _ cgsep.Exporter = (*Exporter)(nil)

// Option configures an Exporter.
type Option func(*Exporter)

// WithCodec sets the table codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(e *Exporter) {
		if c != nil {
			e.codec = c
		}
	}
}

// WithCompression compresses every table artifact.
func WithCompression(c Compression) Option {
	return func(e *Exporter) {
		e.compression = c
	}
}

// WithWorkbook additionally writes the tables as an xlsx workbook.
func WithWorkbook(enabled bool) Option {
	return func(e *Exporter) {
		e.workbook = enabled
	}
}

// WithRoot places run directories under root.
func WithRoot(root string) Option {
	return func(e *Exporter) {
		e.root = root
	}
}

// WithRunID fixes the run directory name. By default every export gets a random
// UUID.
func WithRunID(id string) Option {
	return func(e *Exporter) {
		e.runID = func() string { return id }
	}
}

// WithController throttles writes through the controller's IO limit.
func WithController(rc *resource.Controller) Option {
	return func(e *Exporter) {
		e.controller = rc
	}
}

// New creates an Exporter writing to store.
func New(store blobstore.Store, optFns ...Option) *Exporter {
	e := &Exporter{
		store: store,
		codec: codec.Default,
		runID: uuid.NewString,
		now:   time.Now,
	}
	for _, fn := range optFns {
		fn(e)
	}
	return e
}

// Dir returns the run directory of a run id.
func (e *Exporter) Dir(runID string) string {
	return blobstore.Key(e.root, runID)
}

// Export implements cgsep.Exporter.
func (e *Exporter) Export(ctx context.Context, r *cgsep.Report) (int64, error) {
	id := e.runID()
	w := &runWriter{
		Exporter: e,
		dir:      e.Dir(id),
	}
	m := Manifest{
		RunID:       id,
		CreatedAt:   e.now().UTC(),
		Codec:       e.codec.Name(),
		Compression: e.compression.String(),
		Explainer:   string(r.Explainer),
		Classes:     r.Classes,
		ClassNames:  r.ClassNames,
		Attributes:  r.Attributes,
		Pruned:      r.Pruned,
		Scored:      r.Scored,
	}

	if r.Concept != nil {
		if err := w.table(ctx, ConceptTable, r.Concept); err != nil {
			return w.written, err
		}
	}
	if r.Attribute != nil {
		if err := w.table(ctx, AttributeTable, r.Attribute); err != nil {
			return w.written, err
		}
	}
	for i := range r.KBest {
		t := &r.KBest[i]
		if err := w.table(ctx, KBestPrefix+t.Pair.String(), t); err != nil {
			return w.written, err
		}
	}
	if r.Importances != nil {
		if err := w.table(ctx, Importances, ImportanceRows(r.Importances)); err != nil {
			return w.written, err
		}
	}
	if r.Classification != nil {
		if err := w.table(ctx, Classification, r.Classification); err != nil {
			return w.written, err
		}
	}
	if e.workbook {
		data, err := Workbook(r)
		if err != nil {
			return w.written, fmt.Errorf("workbook: %w", err)
		}
		if err := w.put(ctx, WorkbookName, data); err != nil {
			return w.written, err
		}
	}

	m.Artifacts = w.artifacts
	data, err := e.codec.Marshal(m)
	if err != nil {
		return w.written, fmt.Errorf("manifest: %w", err)
	}
	if err := w.put(ctx, ManifestName, data); err != nil {
		return w.written, err
	}
	return w.written, nil
}

// ImportanceRows flattens an importance map into rows sorted by cell id.
func ImportanceRows(m map[int64]float64) []ImportanceRow {
	rows := make([]ImportanceRow, 0, len(m))
	for id, v := range m {
		rows = append(rows, ImportanceRow{CellID: id, Importance: numeric.Round(v)})
	}
	slices.SortFunc(rows, func(a, b ImportanceRow) int {
		switch {
		case a.CellID < b.CellID:
			return -1
		case a.CellID > b.CellID:
			return 1
		default:
			return 0
		}
	})
	return rows
}

// FileName returns the blob name of a table artifact.
func (e *Exporter) FileName(table string) string {
	return table + ".json" + e.compression.Extension()
}

type runWriter struct {
	*Exporter
	dir       string
	written   int64
	artifacts []Artifact
}

func (w *runWriter) table(ctx context.Context, name string, v any) error {
	data, err := w.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	data, err = Compress(data, w.compression)
	if err != nil {
		return fmt.Errorf("compress %s: %w", name, err)
	}
	return w.put(ctx, w.FileName(name), data)
}

func (w *runWriter) put(ctx context.Context, name string, data []byte) error {
	if err := w.controller.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	if err := w.store.Put(ctx, blobstore.Key(w.dir, name), data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.written += int64(len(data))
	if name != ManifestName {
		w.artifacts = append(w.artifacts, Artifact{Name: name, Bytes: int64(len(data))})
	}
	return nil
}
