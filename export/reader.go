package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/cgsep/blobstore"
	"github.com/hupe1980/cgsep/codec"
	"github.com/hupe1980/cgsep/separability"
)

// Reader loads a completed run directory.
type Reader struct {
	store    blobstore.Store
	dir      string
	manifest Manifest
	codec    codec.Codec
	comp     Compression
}

// Open reads the manifest of the run stored under dir.
func Open(ctx context.Context, store blobstore.Store, dir string) (*Reader, error) {
	data, err := store.Get(ctx, blobstore.Key(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", dir, err)
	}
	// Manifests of both built-in codecs are plain JSON.
	var m Manifest
	if err := codec.Default.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("run %q: manifest: %w", dir, err)
	}
	c, ok := codec.ByName(m.Codec)
	if !ok {
		return nil, fmt.Errorf("run %q: unknown codec %q", dir, m.Codec)
	}
	comp, err := ParseCompression(m.Compression)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", dir, err)
	}
	return &Reader{store: store, dir: dir, manifest: m, codec: c, comp: comp}, nil
}

// Runs lists the run directories under root that carry a manifest.
func Runs(ctx context.Context, store blobstore.Store, root string) ([]string, error) {
	prefix := root
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, n := range names {
		if dir, ok := strings.CutSuffix(n, "/"+ManifestName); ok {
			runs = append(runs, dir)
		}
	}
	return runs, nil
}

// Manifest returns the run manifest.
func (r *Reader) Manifest() Manifest {
	return r.manifest
}

// Decode reads the named table artifact into v.
func (r *Reader) Decode(ctx context.Context, table string, v any) error {
	name := table + ".json" + r.comp.Extension()
	data, err := r.store.Get(ctx, blobstore.Key(r.dir, name))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	data, err = Decompress(data, r.comp)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := r.codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Table reads the concept or attribute table.
func (r *Reader) Table(ctx context.Context, table string) (*separability.Table, error) {
	var t separability.Table
	if err := r.Decode(ctx, table, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// KBest reads the k-best table of a class pair.
func (r *Reader) KBest(ctx context.Context, p separability.Pair) (*separability.KBestTable, error) {
	var t separability.KBestTable
	if err := r.Decode(ctx, KBestPrefix+p.String(), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Importances reads the per-cell importances.
func (r *Reader) Importances(ctx context.Context) ([]ImportanceRow, error) {
	var rows []ImportanceRow
	if err := r.Decode(ctx, Importances, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
