package engine

import (
	"context"
	"errors"
	"io"
	"time"

	"gridfs-manager/core/metadata"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrFileNotFound is returned when no stored file has the requested identifier.
var ErrFileNotFound = errors.New("file not found")

// Engine opens bucket handles on a chunked storage backend.
type Engine interface {
	// Name identifies the backend in logs (e.g. "mongo", "objectstore").
	Name() string
	// OpenBucket returns a handle scoped to the named bucket.
	OpenBucket(ctx context.Context, name string) (Bucket, error)
}

// Bucket is a handle into one named collection of stored files.
type Bucket interface {
	// OpenUploadStream starts a new file. The file is recorded only once the stream is closed.
	OpenUploadStream(ctx context.Context, filename string, md metadata.Metadata) (UploadStream, error)
	// OpenDownloadStream opens the content of a stored file.
	OpenDownloadStream(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error)
	// Find returns the file records matching filter, ordered by upload date then id.
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]File, error)
	// Delete removes a file record and its content.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UploadStream receives the bytes of a single file.
//
// Close blocks until the backend has durably recorded the file. Abort discards
// everything written so far.
type UploadStream interface {
	io.WriteCloser
	ID() primitive.ObjectID
	Abort() error
}

// File is a raw file record as held by the backend.
type File struct {
	ID         primitive.ObjectID
	Filename   string
	Length     int64
	ChunkSize  int32
	UploadDate time.Time
	Metadata   metadata.Metadata
	// MD5 is whatever checksum the backend stored, if any.
	MD5 any
}

// FindOptions restricts a Find call.
type FindOptions struct {
	// Limit caps the number of records returned. Zero means no limit.
	Limit int
}
