package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultChunkSize matches the GridFS default of 255 KiB.
const DefaultChunkSize int32 = 255 * 1024

// Engine is an in-memory engine.Engine.
// Thread-safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	buckets   map[string]*Bucket
	chunkSize int32
}

// New creates an empty in-memory engine. A non-positive chunkSize uses DefaultChunkSize.
func New(chunkSize int32) *Engine {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Engine{
		buckets:   make(map[string]*Bucket),
		chunkSize: chunkSize,
	}
}

// Name implements engine.Engine.
func (e *Engine) Name() string {
	return "memory"
}

// OpenBucket returns the bucket with the given name, creating it on first use.
// Opening the same name twice yields the same underlying storage.
func (e *Engine) OpenBucket(_ context.Context, name string) (engine.Bucket, error) {
	if name == "" {
		return nil, errors.New("bucket name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.buckets[name]
	if !ok {
		b = &Bucket{
			name:      name,
			chunkSize: e.chunkSize,
			files:     make(map[primitive.ObjectID]*storedFile),
		}
		e.buckets[name] = b
	}
	return b, nil
}

// Bucket is an in-memory engine.Bucket.
type Bucket struct {
	name      string
	chunkSize int32

	mu    sync.RWMutex
	files map[primitive.ObjectID]*storedFile
}

type storedFile struct {
	record engine.File
	chunks [][]byte
}

// OpenUploadStream implements engine.Bucket.
func (b *Bucket) OpenUploadStream(_ context.Context, filename string, md metadata.Metadata) (engine.UploadStream, error) {
	return &uploadStream{
		bucket:   b,
		id:       primitive.NewObjectID(),
		filename: filename,
		metadata: md.Clone(),
	}, nil
}

// OpenDownloadStream implements engine.Bucket.
func (b *Bucket) OpenDownloadStream(_ context.Context, id primitive.ObjectID) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	f, ok := b.files[id]
	if !ok {
		return nil, fmt.Errorf("bucket %q: file %s: %w", b.name, id.Hex(), engine.ErrFileNotFound)
	}

	// Return a copy to prevent external mutation
	var buf bytes.Buffer
	for _, c := range f.chunks {
		buf.Write(c)
	}
	return io.NopCloser(&buf), nil
}

// Find implements engine.Bucket.
func (b *Bucket) Find(_ context.Context, filter engine.Filter, opts engine.FindOptions) ([]engine.File, error) {
	b.mu.RLock()
	all := make([]engine.File, 0, len(b.files))
	for _, f := range b.files {
		rec := f.record
		rec.Metadata = rec.Metadata.Clone()
		all = append(all, rec)
	}
	b.mu.RUnlock()

	return engine.Select(all, filter, opts), nil
}

// Delete implements engine.Bucket.
func (b *Bucket) Delete(_ context.Context, id primitive.ObjectID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.files[id]; !ok {
		return fmt.Errorf("bucket %q: file %s: %w", b.name, id.Hex(), engine.ErrFileNotFound)
	}
	delete(b.files, id)
	return nil
}

// Len returns the number of stored files.
func (b *Bucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.files)
}

func (b *Bucket) commit(f *storedFile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[f.record.ID] = f
}

type uploadStream struct {
	bucket   *Bucket
	id       primitive.ObjectID
	filename string
	metadata metadata.Metadata
	buf      bytes.Buffer
	done     bool
}

func (u *uploadStream) ID() primitive.ObjectID {
	return u.id
}

func (u *uploadStream) Write(p []byte) (int, error) {
	if u.done {
		return 0, errors.New("upload stream already closed")
	}
	return u.buf.Write(p)
}

func (u *uploadStream) Close() error {
	if u.done {
		return errors.New("upload stream already closed")
	}
	u.done = true

	data := u.buf.Bytes()
	sum := md5.Sum(data)

	size := int(u.bucket.chunkSize)
	var chunks [][]byte
	for off := 0; off < len(data); off += size {
		end := min(off+size, len(data))
		chunk := make([]byte, end-off)
		copy(chunk, data[off:end])
		chunks = append(chunks, chunk)
	}

	u.bucket.commit(&storedFile{
		record: engine.File{
			ID:         u.id,
			Filename:   u.filename,
			Length:     int64(len(data)),
			ChunkSize:  u.bucket.chunkSize,
			UploadDate: time.Now().UTC(),
			Metadata:   u.metadata,
			MD5:        hex.EncodeToString(sum[:]),
		},
		chunks: chunks,
	})
	u.buf.Reset()
	return nil
}

func (u *uploadStream) Abort() error {
	if u.done {
		return nil
	}
	u.done = true
	u.buf.Reset()
	return nil
}
