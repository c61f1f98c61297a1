package mongofs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"
	"gridfs-manager/core/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect establishes a connection to MongoDB and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeoutDuration).
		SetServerSelectionTimeout(timeoutDuration)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// Engine opens GridFS buckets in a single database.
type Engine struct {
	db        *mongo.Database
	chunkSize int32
}

// New creates a GridFS engine. A non-positive chunkSize keeps the driver default (255 KiB).
func New(db *mongo.Database, chunkSize int32) *Engine {
	return &Engine{db: db, chunkSize: chunkSize}
}

// Name implements engine.Engine.
func (e *Engine) Name() string {
	return "mongo"
}

// OpenBucket implements engine.Engine.
func (e *Engine) OpenBucket(_ context.Context, name string) (engine.Bucket, error) {
	opts := options.GridFSBucket().SetName(name)
	if e.chunkSize > 0 {
		opts.SetChunkSizeBytes(e.chunkSize)
	}

	b, err := gridfs.NewBucket(e.db, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket %q: %w", name, err)
	}
	return &Bucket{name: name, bucket: b}, nil
}

// Bucket wraps a driver GridFS bucket.
type Bucket struct {
	name   string
	bucket *gridfs.Bucket
}

// OpenUploadStream implements engine.Bucket.
// The driver has no context-aware upload, so a context deadline becomes the write deadline.
func (b *Bucket) OpenUploadStream(ctx context.Context, filename string, md metadata.Metadata) (engine.UploadStream, error) {
	id := primitive.NewObjectID()
	stream, err := b.bucket.OpenUploadStreamWithID(id, filename, options.GridFSUpload().SetMetadata(toDocument(md)))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := stream.SetWriteDeadline(deadline); err != nil {
			_ = stream.Abort()
			return nil, err
		}
	}
	return &uploadStream{UploadStream: stream, id: id}, nil
}

// OpenDownloadStream implements engine.Bucket.
func (b *Bucket) OpenDownloadStream(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, error) {
	stream, err := b.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("bucket %q: file %s: %w", b.name, id.Hex(), engine.ErrFileNotFound)
		}
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := stream.SetReadDeadline(deadline); err != nil {
			_ = stream.Close()
			return nil, err
		}
	}
	return stream, nil
}

// Find implements engine.Bucket.
func (b *Bucket) Find(ctx context.Context, filter engine.Filter, opts engine.FindOptions) ([]engine.File, error) {
	findOpts := options.GridFSFind().SetSort(bson.D{
		{Key: engine.FieldUploadDate, Value: 1},
		{Key: engine.FieldID, Value: 1},
	})
	if opts.Limit > 0 {
		findOpts.SetLimit(int32(opts.Limit))
	}

	cursor, err := b.bucket.FindContext(ctx, toBSONFilter(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find in bucket %q: %w", b.name, err)
	}

	var docs []fileDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode files of bucket %q: %w", b.name, err)
	}

	files := make([]engine.File, 0, len(docs))
	for _, doc := range docs {
		files = append(files, fromDocument(doc))
	}
	return files, nil
}

// Delete implements engine.Bucket.
func (b *Bucket) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := b.bucket.DeleteContext(ctx, id); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("bucket %q: file %s: %w", b.name, id.Hex(), engine.ErrFileNotFound)
		}
		return err
	}
	return nil
}

type uploadStream struct {
	*gridfs.UploadStream
	id primitive.ObjectID
}

func (u *uploadStream) ID() primitive.ObjectID {
	return u.id
}

// fileDocument mirrors a document of the <bucket>.files collection.
type fileDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	ChunkSize  int32              `bson:"chunkSize"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   bson.D             `bson:"metadata,omitempty"`
	MD5        interface{}        `bson:"md5,omitempty"`
}

func fromDocument(doc fileDocument) engine.File {
	var md metadata.Metadata
	for _, elem := range doc.Metadata {
		md.Set(elem.Key, fromBSONValue(elem.Value))
	}
	return engine.File{
		ID:         doc.ID,
		Filename:   doc.Filename,
		Length:     doc.Length,
		ChunkSize:  doc.ChunkSize,
		UploadDate: doc.UploadDate,
		Metadata:   md,
		MD5:        doc.MD5,
	}
}

// fromBSONValue maps driver values onto metadata kinds. Anything outside the
// supported kinds (documents written by other clients) is kept as its string form.
func fromBSONValue(v interface{}) metadata.Value {
	switch x := v.(type) {
	case primitive.DateTime:
		return metadata.Time(x.Time().UTC())
	case primitive.ObjectID:
		return metadata.String(x.Hex())
	case primitive.Decimal128:
		return metadata.String(x.String())
	}
	if mv, err := metadata.ValueOf(v); err == nil {
		return mv
	}
	return metadata.String(utils.ToString(v))
}

func toDocument(md metadata.Metadata) bson.D {
	doc := make(bson.D, 0, md.Len())
	md.Range(func(key string, v metadata.Value) bool {
		doc = append(doc, bson.E{Key: key, Value: v.Interface()})
		return true
	})
	return doc
}

// toBSONFilter turns slice clauses into $in so both filter forms mean the same
// thing on every engine.
func toBSONFilter(filter engine.Filter) bson.M {
	out := bson.M{}
	for key, value := range filter {
		switch v := value.(type) {
		case metadata.Value:
			out[key] = v.Interface()
		case []primitive.ObjectID:
			out[key] = bson.M{"$in": v}
		case []string:
			out[key] = bson.M{"$in": v}
		case []interface{}:
			out[key] = bson.M{"$in": v}
		default:
			out[key] = v
		}
	}
	return out
}
