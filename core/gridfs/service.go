package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultFetchConcurrency = 4

// Service runs uploads, fetches and deletes against registered buckets.
type Service struct {
	registry         *Registry
	indexes          map[string]IndexSpec
	logger           *zap.Logger
	fetchConcurrency int
	reads            singleflight.Group
}

// NewService creates a service over an already populated registry.
func NewService(registry *Registry, indexes []IndexSpec, logger *zap.Logger, fetchConcurrency int) *Service {
	if fetchConcurrency <= 0 {
		fetchConcurrency = defaultFetchConcurrency
	}
	byBucket := make(map[string]IndexSpec, len(indexes))
	for _, idx := range indexes {
		byBucket[idx.BucketName] = idx
	}
	return &Service{
		registry:         registry,
		indexes:          byBucket,
		logger:           logger,
		fetchConcurrency: fetchConcurrency,
	}
}

// Open validates cfg, opens every configured bucket on eng and returns a ready service.
// Nothing is opened when validation fails.
func Open(ctx context.Context, cfg Config, eng engine.Engine, logger *zap.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, name := range cfg.BucketNames {
		bucket, err := eng.OpenBucket(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: open bucket %q on %s engine: %w", ErrStorageIO, name, eng.Name(), err)
		}
		registry.Set(name, bucket)
	}

	logger.Info("Buckets opened",
		zap.String("engine", eng.Name()),
		zap.Strings("buckets", registry.Keys()),
		zap.Int("indexes", len(cfg.Indexes)),
	)

	return NewService(registry, cfg.Indexes, logger, cfg.FetchConcurrency), nil
}

// Registry returns the bucket registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Buckets returns the registered bucket names in configuration order.
func (s *Service) Buckets() []string {
	return s.registry.Keys()
}

func (s *Service) bucket(name string) (engine.Bucket, error) {
	b, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: bucket %q does not exist", ErrNotFound, name)
	}
	return b, nil
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// UploadResult describes a stored file.
type UploadResult struct {
	ID       string            `json:"_id"`
	Filename string            `json:"filename"`
	Metadata metadata.Metadata `json:"metadata"`
}

// Upload stores files in order, each with its own copy of md.
// The mimetype is taken from the file's content type unless md already carries one.
// On failure the files stored so far are returned together with the error; they are not rolled back.
func (s *Service) Upload(ctx context.Context, bucketName string, files []UploadFile, md metadata.Metadata) ([]UploadResult, error) {
	bucket, err := s.bucket(bucketName)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", ErrInvalidArgument)
	}
	for i, f := range files {
		if f.Filename == "" || f.Content == nil {
			return nil, fmt.Errorf("%w: file %d needs a filename and content", ErrInvalidArgument, i)
		}
	}

	results := make([]UploadResult, 0, len(files))
	for i, f := range files {
		fileMD := md.Clone()

		if err := s.checkUnique(ctx, bucketName, bucket, fileMD, f.Filename); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				conflict.Committed = len(results)
				s.logger.Warn("Upload rejected by unique index",
					zap.String("bucket", bucketName),
					zap.String("filename", f.Filename),
					zap.Strings("properties", conflict.Properties),
					zap.Int("committed", conflict.Committed),
				)
			}
			return results, err
		}

		if _, ok := fileMD.MimeType(); !ok {
			contentType := f.ContentType
			if contentType == "" {
				contentType = metadata.DefaultMimeType
			}
			fileMD.SetMimeType(contentType)
		}

		id, err := s.write(ctx, bucket, f, fileMD)
		if err != nil {
			s.logger.Error("Upload failed",
				zap.String("bucket", bucketName),
				zap.String("filename", f.Filename),
				zap.Int("committed", len(results)),
				zap.Error(err),
			)
			return results, fmt.Errorf("%w: upload %q (%d of %d) to bucket %q: %w",
				ErrStorageIO, f.Filename, i+1, len(files), bucketName, err)
		}

		results = append(results, UploadResult{ID: id.Hex(), Filename: f.Filename, Metadata: fileMD})
		s.logger.Debug("File stored",
			zap.String("bucket", bucketName),
			zap.String("id", id.Hex()),
			zap.String("filename", f.Filename),
		)
	}

	s.logger.Info("Upload completed", zap.String("bucket", bucketName), zap.Int("files", len(results)))
	return results, nil
}

func (s *Service) write(ctx context.Context, bucket engine.Bucket, f UploadFile, md metadata.Metadata) (primitive.ObjectID, error) {
	stream, err := bucket.OpenUploadStream(ctx, f.Filename, md)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := io.Copy(stream, f.Content); err != nil {
		_ = stream.Abort()
		return primitive.NilObjectID, err
	}
	if err := stream.Close(); err != nil {
		return primitive.NilObjectID, err
	}
	return stream.ID(), nil
}

// FetchOptions controls a fetch.
type FetchOptions struct {
	// Filter is an equality query; identifier-like keys accept hex strings.
	Filter engine.Filter
	// IncludeBuffer attaches file content to every result.
	IncludeBuffer bool
}

// FetchMany returns every file matching the filter, ordered by upload date then id.
func (s *Service) FetchMany(ctx context.Context, bucketName string, opts FetchOptions) ([]FileDescriptor, error) {
	return s.fetch(ctx, bucketName, opts, 0)
}

// FetchOne returns the first matching file, or nil when nothing matches.
func (s *Service) FetchOne(ctx context.Context, bucketName string, opts FetchOptions) (*FileDescriptor, error) {
	found, err := s.fetch(ctx, bucketName, opts, 1)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (s *Service) fetch(ctx context.Context, bucketName string, opts FetchOptions, limit int) ([]FileDescriptor, error) {
	bucket, err := s.bucket(bucketName)
	if err != nil {
		return nil, err
	}
	filter, err := NormalizeFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	records, err := s.find(ctx, bucketName, bucket, filter, limit)
	if err != nil {
		return nil, err
	}

	descriptors := make([]FileDescriptor, len(records))
	for i := range records {
		descriptors[i] = ConvertFile(&records[i])
	}

	if opts.IncludeBuffer {
		s.attachBuffers(ctx, bucketName, bucket, descriptors)
	}
	return descriptors, nil
}

// attachBuffers reads content for every descriptor with bounded concurrency.
// A failed read leaves that descriptor without a buffer.
func (s *Service) attachBuffers(ctx context.Context, bucketName string, bucket engine.Bucket, descriptors []FileDescriptor) {
	var g errgroup.Group
	g.SetLimit(s.fetchConcurrency)

	for i := range descriptors {
		d := &descriptors[i]
		g.Go(func() error {
			data, err := s.readContent(ctx, bucketName, bucket, d.ID)
			if err != nil {
				s.logger.Warn("Failed to read file content",
					zap.String("bucket", bucketName),
					zap.String("id", d.ID),
					zap.Error(err),
				)
				return nil
			}
			d.Buffer = NewFileBuffer(*d, data)
			return nil
		})
	}
	_ = g.Wait()
}

// readContent shares one read between concurrent fetches of the same file.
// The shared read ignores cancellation of whichever caller started it; each caller
// stops waiting when its own context ends.
func (s *Service) readContent(ctx context.Context, bucketName string, bucket engine.Bucket, hexID string) ([]byte, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, err
	}

	shared := context.WithoutCancel(ctx)
	ch := s.reads.DoChan(bucketName+"/"+hexID, func() (any, error) {
		rc, err := bucket.OpenDownloadStream(shared, id)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Download opens the content of one file together with its descriptor.
// The caller closes the reader.
func (s *Service) Download(ctx context.Context, bucketName, id string) (FileDescriptor, io.ReadCloser, error) {
	bucket, err := s.bucket(bucketName)
	if err != nil {
		return FileDescriptor{}, nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return FileDescriptor{}, nil, fmt.Errorf("%w: malformed file id %q", ErrInvalidArgument, id)
	}

	records, err := s.find(ctx, bucketName, bucket, engine.Filter{engine.FieldID: oid}, 1)
	if err != nil {
		return FileDescriptor{}, nil, err
	}
	if len(records) == 0 {
		return FileDescriptor{}, nil, fmt.Errorf("%w: file %s in bucket %q", ErrNotFound, id, bucketName)
	}

	rc, err := bucket.OpenDownloadStream(ctx, oid)
	if err != nil {
		if errors.Is(err, engine.ErrFileNotFound) {
			return FileDescriptor{}, nil, fmt.Errorf("%w: file %s in bucket %q", ErrNotFound, id, bucketName)
		}
		return FileDescriptor{}, nil, fmt.Errorf("%w: open %s in bucket %q: %w", ErrStorageIO, id, bucketName, err)
	}
	return ConvertFile(&records[0]), rc, nil
}

// DeleteResult reports the outcome of a delete batch.
type DeleteResult struct {
	DeletedIDs []string `json:"deletedIds"`
	// FailedID is the identifier that stopped the batch, if any.
	FailedID string `json:"failedId,omitempty"`
}

// Delete removes files in order and stops at the first failure.
// Files deleted before the failure stay deleted.
func (s *Service) Delete(ctx context.Context, bucketName string, ids []string) (DeleteResult, error) {
	result := DeleteResult{DeletedIDs: []string{}}

	bucket, err := s.bucket(bucketName)
	if err != nil {
		return result, err
	}
	if len(ids) == 0 {
		return result, fmt.Errorf("%w: no file ids to delete", ErrInvalidArgument)
	}

	for _, raw := range ids {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			result.FailedID = raw
			return result, fmt.Errorf("%w: malformed file id %q", ErrInvalidArgument, raw)
		}
		if err := bucket.Delete(ctx, id); err != nil {
			result.FailedID = raw
			s.logger.Error("Delete failed",
				zap.String("bucket", bucketName),
				zap.String("id", raw),
				zap.Int("deleted", len(result.DeletedIDs)),
				zap.Error(err),
			)
			return result, fmt.Errorf("%w: delete %s from bucket %q: %w", ErrStorageIO, raw, bucketName, err)
		}
		result.DeletedIDs = append(result.DeletedIDs, raw)
	}

	s.logger.Info("Files deleted", zap.String("bucket", bucketName), zap.Int("files", len(result.DeletedIDs)))
	return result, nil
}
