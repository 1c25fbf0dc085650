// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage systems such as Ceph,
// SeaweedFS and Garage.
//
// # Basic Usage
//
//	store, err := minioblob.Connect("localhost:9000", "minioadmin", "minioadmin", false,
//	    "my-bucket", "cgsep/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.EnsureBucket(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// A preconfigured *minio.Client can be wrapped with NewStore instead.
package minio
