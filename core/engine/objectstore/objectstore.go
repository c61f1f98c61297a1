package objectstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"path"
	"sync/atomic"
	"time"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"
	"gridfs-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// Engine stores file content in one S3 bucket and file records in a SQL catalog.
type Engine struct {
	client   storage.Client
	catalog  *catalog
	s3Bucket string
	partSize uint64
}

// New prepares the S3 bucket and the catalog table, then returns the engine.
func New(ctx context.Context, client storage.Client, db *gorm.DB, cfg storage.Config) (*Engine, error) {
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		return nil, err
	}

	cat := &catalog{db: db}
	if err := cat.migrate(ctx); err != nil {
		return nil, err
	}

	return &Engine{
		client:   client,
		catalog:  cat,
		s3Bucket: cfg.Bucket,
		partSize: cfg.PartSize(),
	}, nil
}

// Name implements engine.Engine.
func (e *Engine) Name() string {
	return "objectstore"
}

// OpenBucket implements engine.Engine. File buckets are key prefixes in the S3 bucket.
func (e *Engine) OpenBucket(_ context.Context, name string) (engine.Bucket, error) {
	if name == "" {
		return nil, errors.New("bucket name is required")
	}
	return &Bucket{engine: e, name: name}, nil
}

// Bucket is an engine.Bucket backed by S3 objects under "<name>/".
type Bucket struct {
	engine *Engine
	name   string
}

func (b *Bucket) key(id primitive.ObjectID) string {
	return path.Join(b.name, id.Hex())
}

// OpenUploadStream implements engine.Bucket.
// Content is piped into a multipart PutObject; the catalog row is written on Close.
func (b *Bucket) OpenUploadStream(ctx context.Context, filename string, md metadata.Metadata) (engine.UploadStream, error) {
	id := primitive.NewObjectID()
	pr, pw := io.Pipe()

	u := &uploadStream{
		ctx:      ctx,
		bucket:   b,
		id:       id,
		filename: filename,
		metadata: md.Clone(),
		pw:       pw,
		hash:     md5.New(),
		done:     make(chan error, 1),
	}

	contentType, ok := md.MimeType()
	if !ok {
		contentType = metadata.DefaultMimeType
	}
	opts := minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    b.engine.partSize,
	}

	// Start upload in background
	go func() {
		_, err := b.engine.client.PutObject(ctx, b.engine.s3Bucket, b.key(id), pr, -1, opts)
		_ = pr.CloseWithError(err)
		u.done <- err
	}()

	return u, nil
}

// OpenDownloadStream implements engine.Bucket.
func (b *Bucket) OpenDownloadStream(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error) {
	if _, err := b.engine.catalog.get(ctx, b.name, id); err != nil {
		if errors.Is(err, engine.ErrFileNotFound) {
			return nil, fmt.Errorf("bucket %q: file %s: %w", b.name, id.Hex(), err)
		}
		return nil, err
	}
	return b.engine.client.GetObject(ctx, b.engine.s3Bucket, b.key(id), minio.GetObjectOptions{})
}

// Find implements engine.Bucket.
func (b *Bucket) Find(ctx context.Context, filter engine.Filter, opts engine.FindOptions) ([]engine.File, error) {
	files, err := b.engine.catalog.find(ctx, b.name, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in bucket %q: %w", b.name, err)
	}
	return files, nil
}

// Delete implements engine.Bucket.
// Content goes first and the catalog row last, so a failure at either step leaves the
// file listed and a retry completes it. Removing an absent object succeeds.
func (b *Bucket) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := b.engine.catalog.get(ctx, b.name, id); err != nil {
		if errors.Is(err, engine.ErrFileNotFound) {
			return fmt.Errorf("bucket %q: file %s: %w", b.name, id.Hex(), err)
		}
		return err
	}
	if err := b.engine.client.RemoveObject(ctx, b.engine.s3Bucket, b.key(id), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove content of %s: %w", id.Hex(), err)
	}
	if err := b.engine.catalog.remove(ctx, b.name, id); err != nil {
		if errors.Is(err, engine.ErrFileNotFound) {
			return fmt.Errorf("bucket %q: file %s: %w", b.name, id.Hex(), err)
		}
		return err
	}
	return nil
}

type uploadStream struct {
	ctx      context.Context
	bucket   *Bucket
	id       primitive.ObjectID
	filename string
	metadata metadata.Metadata

	pw       *io.PipeWriter
	hash     hash.Hash
	length   int64
	done     chan error
	finished atomic.Bool
}

func (u *uploadStream) ID() primitive.ObjectID {
	return u.id
}

func (u *uploadStream) Write(p []byte) (int, error) {
	n, err := u.pw.Write(p)
	u.hash.Write(p[:n])
	u.length += int64(n)
	return n, err
}

func (u *uploadStream) Close() error {
	if !u.finished.CompareAndSwap(false, true) {
		return errors.New("already closed")
	}
	if err := u.pw.Close(); err != nil {
		return err
	}
	if err := <-u.done; err != nil {
		return fmt.Errorf("failed to store content of %q: %w", u.filename, err)
	}

	err := u.bucket.engine.catalog.insert(u.ctx, u.bucket.name, engine.File{
		ID:         u.id,
		Filename:   u.filename,
		Length:     u.length,
		ChunkSize:  int32(u.bucket.engine.partSize),
		UploadDate: time.Now().UTC(),
		Metadata:   u.metadata,
		MD5:        hex.EncodeToString(u.hash.Sum(nil)),
	})
	if err != nil {
		_ = u.bucket.engine.client.RemoveObject(u.ctx, u.bucket.engine.s3Bucket, u.bucket.key(u.id), minio.RemoveObjectOptions{})
		return fmt.Errorf("failed to record %q in catalog: %w", u.filename, err)
	}
	return nil
}

func (u *uploadStream) Abort() error {
	if !u.finished.CompareAndSwap(false, true) {
		return nil
	}
	_ = u.pw.CloseWithError(errors.New("upload aborted"))
	<-u.done
	return nil
}
