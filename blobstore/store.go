package blobstore

import (
	"context"
	"os"
	"path"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store persists named blobs.
type Store interface {
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the full content of a blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns the sorted names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}

// Key joins a root prefix and a blob name into an object key.
func Key(root, name string) string {
	if root == "" {
		return name
	}
	return path.Join(root, name)
}

// Relative strips a root prefix from an object key.
func Relative(root, key string) string {
	if root == "" {
		return key
	}
	rel := strings.TrimPrefix(key, strings.TrimSuffix(root, "/"))
	return strings.TrimPrefix(rel, "/")
}
