package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(filepath.Join(tmpDir, "run"))

	ctx := context.Background()

	// Listing a directory that does not exist yet is empty.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)

	blobName := "separability_concept.json"
	data := []byte(`{"rows":[]}`)
	require.NoError(t, store.Put(ctx, blobName, data))

	// Verify file exists on disk
	_, err = os.Stat(filepath.Join(tmpDir, "run", blobName))
	require.NoError(t, err)

	got, err := store.Get(ctx, blobName)
	require.NoError(t, err)
	require.Equal(t, data, got)

	// Overwrite replaces content.
	require.NoError(t, store.Put(ctx, blobName, []byte("{}")))
	got, err = store.Get(ctx, blobName)
	require.NoError(t, err)
	require.Equal(t, "{}", string(got))

	require.NoError(t, store.Put(ctx, "k_best/0_1.json", []byte("[]")))

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"k_best/0_1.json", blobName}, names)

	names, err = store.List(ctx, "k_best/")
	require.NoError(t, err)
	require.Equal(t, []string{"k_best/0_1.json"}, names)

	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName))

	_, err = store.Get(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_NoTempFilesLeft(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put(ctx, "manifest.json", []byte{byte(i)}))
	}

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest.json", entries[0].Name())
}

func TestLocalStore_Canceled(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Put(ctx, "a", nil), context.Canceled)
	_, err := store.Get(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
}
