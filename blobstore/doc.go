// Package blobstore provides the storage abstraction that run artifacts are
// exported to.
//
// Store is the interface for writing and reading named blobs (score tables,
// importance dumps, manifests). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and embedding
//   - LocalStore: local filesystem with atomic rename on write
//   - s3.Store: Amazon S3 with multipart uploads and paginated listing
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error
//	    Get(ctx, name) ([]byte, error)
//	    List(ctx, prefix) ([]string, error)
//	    Delete(ctx, name) error
//	}
package blobstore
