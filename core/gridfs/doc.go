// Package gridfs is the bucket façade in front of a storage engine.
//
// Open validates the bucket and index configuration and registers one engine
// bucket per configured name in a Registry. Service then runs the three
// operations callers use:
//
//   - Upload streams a batch of files in order. Before each file it checks the
//     bucket's unique index, if one is declared, and stops at the first conflict
//     or storage failure, returning what was already stored.
//   - FetchMany and FetchOne query a bucket with a flat equality filter.
//     Keys naming identifiers are coerced to ObjectIDs first. Content can be
//     attached to each result; a failed read leaves that result without it.
//   - Delete removes files in order and stops at the first failure.
//
// Errors wrap ErrNotFound, ErrInvalidArgument, ErrConflict, ErrConfiguration
// or ErrStorageIO and can be tested with errors.Is.
package gridfs
