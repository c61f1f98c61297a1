// Package engine defines the chunked storage backend the file service sits on.
//
// A backend exposes named buckets. Each Bucket can stream a file in, stream a
// file out, find file records with a flat equality Filter, and delete a file.
// Identifiers are BSON ObjectIDs on every backend.
//
// # Backends
//
//   - mongofs: MongoDB GridFS (production default).
//   - objectstore: S3/MinIO for content plus a SQL catalog for file records.
//   - memory: in-process, for development and tests.
//
// Backends without native query support load candidate records and evaluate the
// filter with Match / Select, so every backend agrees on filter semantics.
package engine
