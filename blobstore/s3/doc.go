// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("cgsep/run-1/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// # Features
//
//   - Multipart uploads for large artifacts
//   - CRC32C integrity checksums on single-part writes
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
