package blobstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "b/2", data))
	require.NoError(t, store.Put(ctx, "a/1", []byte("x")))

	// The store keeps its own copy.
	data[0] = 'z'
	got, err := store.Get(ctx, "b/2")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'q'
	again, err := store.Get(ctx, "b/2")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "b/2"}, names)

	names, err = store.List(ctx, "b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/2"}, names)

	require.NoError(t, store.Delete(ctx, "a/1"))
	require.NoError(t, store.Delete(ctx, "missing"))
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "a/1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			assert.NoError(t, store.Put(ctx, name, []byte{byte(i)}))
			_, err := store.Get(ctx, name)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, store.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "name", Key("", "name"))
	assert.Equal(t, "runs/r1/name", Key("runs/r1/", "name"))
	assert.Equal(t, "name", Relative("runs/r1/", "runs/r1/name"))
	assert.Equal(t, "dir/name", Relative("runs", "runs/dir/name"))
	assert.Equal(t, "x", Relative("", "x"))
}
