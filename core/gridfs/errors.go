package gridfs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a bucket (or a file addressed by id) is not registered.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for empty batches and malformed identifiers.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is returned when an upload would violate a bucket's unique index.
	ErrConflict = errors.New("unique index violation")
	// ErrConfiguration is returned at startup for an invalid bucket or index configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrStorageIO is returned when the storage engine fails a read, write or delete.
	ErrStorageIO = errors.New("storage failure")
)

// ConflictError describes a unique index violation.
type ConflictError struct {
	// Bucket is the bucket whose index was violated.
	Bucket string
	// Properties lists the indexed fields: "filename" first when indexed, then metadata properties.
	Properties []string
	// Committed is how many files of the batch were stored before the conflict.
	Committed int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s in bucket %q on [%s]", ErrConflict, e.Bucket, strings.Join(e.Properties, ", "))
}

// Is makes errors.Is(err, ErrConflict) hold.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
