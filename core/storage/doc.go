// Package storage provides an abstraction layer for S3-compatible object storage.
//
// It wraps the MinIO Go client behind the Client interface so the objectstore
// engine can be tested against the mock in core/storage/mocks. Works with AWS S3
// and self-hosted MinIO.
//
// # Operations
//
//   - BucketExists / MakeBucket: used once at startup through EnsureBucket.
//   - PutObject: streams file content (multipart, PartSize per part).
//   - GetObject: reads file content as a stream.
//   - RemoveObject: deletes file content.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
