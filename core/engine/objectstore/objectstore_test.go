package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"gridfs-manager/core/database"
	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"
	"gridfs-manager/core/storage"
	"gridfs-manager/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// objectSink captures content written through the PutObject mock.
type objectSink struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *objectSink) put(args mock.Arguments) {
	data, _ := io.ReadAll(args.Get(3).(io.Reader))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[args.String(2)] = data
}

func (s *objectSink) get(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key]
}

func setupEngine(t *testing.T) (*Engine, *mocks.Client, *objectSink) {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "gridfs").Return(true, nil)

	sink := &objectSink{objects: make(map[string][]byte)}
	client.On("PutObject", mock.Anything, "gridfs", mock.Anything, mock.Anything, int64(-1), mock.Anything).
		Run(sink.put).
		Return(minio.UploadInfo{}, nil)

	eng, err := New(context.Background(), client, db, storage.Config{Bucket: "gridfs", PartSizeMB: 5})
	require.NoError(t, err)
	return eng, client, sink
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func uploadString(t *testing.T, b engine.Bucket, name, content string, md metadata.Metadata) primitive.ObjectID {
	t.Helper()
	stream, err := b.OpenUploadStream(context.Background(), name, md)
	require.NoError(t, err)
	_, err = io.Copy(stream, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	return stream.ID()
}

func TestBucket_UploadFindDownload(t *testing.T) {
	ctx := context.Background()
	eng, client, sink := setupEngine(t)

	b, err := eng.OpenBucket(ctx, "client-files")
	require.NoError(t, err)

	var md metadata.Metadata
	md.Set("position", metadata.Number(4))
	md.Set("signedAt", metadata.Time(time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)))
	md.SetMimeType("text/plain")

	id := uploadString(t, b, "notes.txt", "hello world", md)
	key := "client-files/" + id.Hex()
	assert.Equal(t, "hello world", string(sink.get(key)))

	files, err := b.Find(ctx, engine.Filter{engine.FieldFilename: "notes.txt", "metadata.position": 4}, engine.FindOptions{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, id, files[0].ID)
	assert.Equal(t, int64(11), files[0].Length)
	assert.Equal(t, int32(5*1024*1024), files[0].ChunkSize)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", files[0].MD5)

	signed, ok := files[0].Metadata.Get("signedAt")
	require.True(t, ok)
	assert.Equal(t, metadata.KindTime, signed.Kind())
	assert.Equal(t, []string{"position", "signedAt", "mimetype"}, files[0].Metadata.Keys())

	client.On("GetObject", mock.Anything, "gridfs", key, mock.Anything).
		Return(io.NopCloser(bytes.NewReader(sink.get(key))), nil)

	rc, err := b.OpenDownloadStream(ctx, id)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestBucket_FindIsScopedToBucket(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := setupEngine(t)

	a, _ := eng.OpenBucket(ctx, "a")
	b, _ := eng.OpenBucket(ctx, "b")
	uploadString(t, a, "x", "1", metadata.Metadata{})
	idB := uploadString(t, b, "x", "2", metadata.Metadata{})

	files, err := b.Find(ctx, nil, engine.FindOptions{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, idB, files[0].ID)

	files, err = a.Find(ctx, engine.Filter{engine.FieldID: []primitive.ObjectID{idB}}, engine.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestBucket_Delete(t *testing.T) {
	ctx := context.Background()
	eng, client, _ := setupEngine(t)
	b, _ := eng.OpenBucket(ctx, "docs")
	id := uploadString(t, b, "x", "1", metadata.Metadata{})

	client.On("RemoveObject", mock.Anything, "gridfs", "docs/"+id.Hex(), mock.Anything).Return(nil).Once()

	require.NoError(t, b.Delete(ctx, id))
	files, _ := b.Find(ctx, nil, engine.FindOptions{})
	assert.Empty(t, files)

	err := b.Delete(ctx, id)
	assert.True(t, errors.Is(err, engine.ErrFileNotFound))

	_, err = b.OpenDownloadStream(ctx, id)
	assert.True(t, errors.Is(err, engine.ErrFileNotFound))
}

func TestBucket_RecordsBucketName(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := setupEngine(t)
	b, _ := eng.OpenBucket(ctx, "direct")
	id := uploadString(t, b, "x", "1", metadata.Metadata{})

	var rec fileRecord
	require.NoError(t, eng.catalog.db.First(&rec, "id = ?", id.Hex()).Error)
	assert.Equal(t, "direct", rec.Bucket)

	files, err := b.Find(ctx, nil, engine.FindOptions{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, id, files[0].ID)
}

func TestBucket_DeleteContentFailure(t *testing.T) {
	ctx := context.Background()
	eng, client, _ := setupEngine(t)
	b, _ := eng.OpenBucket(ctx, "docs")
	id := uploadString(t, b, "x", "1", metadata.Metadata{})
	key := "docs/" + id.Hex()

	client.On("RemoveObject", mock.Anything, "gridfs", key, mock.Anything).Return(errors.New("access denied")).Once()

	err := b.Delete(ctx, id)
	assert.ErrorContains(t, err, "access denied")

	files, err := b.Find(ctx, nil, engine.FindOptions{})
	require.NoError(t, err)
	require.Len(t, files, 1, "the file stays listed when its content could not be removed")

	client.On("RemoveObject", mock.Anything, "gridfs", key, mock.Anything).Return(nil).Once()
	require.NoError(t, b.Delete(ctx, id))

	files, err = b.Find(ctx, nil, engine.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestBucket_FindMetadata(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := setupEngine(t)
	b, _ := eng.OpenBucket(ctx, "client-files")

	mdFor := func(client string, position float64, signed bool) metadata.Metadata {
		var md metadata.Metadata
		md.Set("clientId", metadata.String(client))
		md.Set("position", metadata.Number(position))
		md.Set("signed", metadata.Bool(signed))
		return md
	}
	first := uploadString(t, b, "a.pdf", "1", mdFor("c-1", 1, true))
	second := uploadString(t, b, "b.pdf", "2", mdFor("c-1", 2, false))
	third := uploadString(t, b, "c.pdf", "3", mdFor("c-2", 1, true))

	tests := []struct {
		name   string
		filter engine.Filter
		opts   engine.FindOptions
		want   []primitive.ObjectID
	}{
		{"String", engine.Filter{"metadata.clientId": "c-1"}, engine.FindOptions{}, []primitive.ObjectID{first, second}},
		{"IntegerMatchesNumber", engine.Filter{"metadata.position": 1}, engine.FindOptions{}, []primitive.ObjectID{first, third}},
		{"Bool", engine.Filter{"metadata.signed": false}, engine.FindOptions{}, []primitive.ObjectID{second}},
		{"AnyOf", engine.Filter{"metadata.clientId": []any{"c-2", "c-9"}}, engine.FindOptions{}, []primitive.ObjectID{third}},
		{"Combined", engine.Filter{"metadata.clientId": "c-1", "metadata.position": 2}, engine.FindOptions{}, []primitive.ObjectID{second}},
		{"KindsDiffer", engine.Filter{"metadata.position": "1"}, engine.FindOptions{}, []primitive.ObjectID{}},
		{"Limit", engine.Filter{"metadata.signed": true}, engine.FindOptions{Limit: 1}, []primitive.ObjectID{first}},
		{"MissingProperty", engine.Filter{"metadata.position": 1, "metadata.label": nil}, engine.FindOptions{}, []primitive.ObjectID{first, third}},
		{"NotPushedDown", engine.Filter{"length": 1, "metadata.clientId": "c-2"}, engine.FindOptions{Limit: 1}, []primitive.ObjectID{third}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := b.Find(ctx, tt.filter, tt.opts)
			require.NoError(t, err)
			ids := make([]primitive.ObjectID, len(files))
			for i, f := range files {
				ids[i] = f.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBucket_UploadFailure(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "gridfs").Return(true, nil)
	client.On("PutObject", mock.Anything, "gridfs", mock.Anything, mock.Anything, int64(-1), mock.Anything).
		Run(func(args mock.Arguments) { _, _ = io.ReadAll(args.Get(3).(io.Reader)) }).
		Return(minio.UploadInfo{}, errors.New("quota exceeded"))

	eng, err := New(ctx, client, db, storage.Config{Bucket: "gridfs"})
	require.NoError(t, err)
	b, _ := eng.OpenBucket(ctx, "docs")

	stream, err := b.OpenUploadStream(ctx, "x", metadata.Metadata{})
	require.NoError(t, err)
	_, _ = stream.Write([]byte("data"))
	err = stream.Close()
	assert.ErrorContains(t, err, "quota exceeded")

	files, _ := b.Find(ctx, nil, engine.FindOptions{})
	assert.Empty(t, files, "failed uploads are not recorded")
}

func TestBucket_Abort(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := setupEngine(t)
	b, _ := eng.OpenBucket(ctx, "docs")

	stream, err := b.OpenUploadStream(ctx, "x", metadata.Metadata{})
	require.NoError(t, err)
	require.NoError(t, stream.Abort())
	assert.Error(t, stream.Close())

	files, _ := b.Find(ctx, nil, engine.FindOptions{})
	assert.Empty(t, files)
}

func TestNew_EnsuresBucket(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "gridfs").Return(false, errors.New("unreachable"))

	eng, err := New(context.Background(), client, db, storage.Config{Bucket: "gridfs"})
	assert.Error(t, err)
	assert.Nil(t, eng)
}

func TestCatalog_Errors(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()

	t.Run("RemoveFails", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectExec("DELETE FROM `gridfs_files`").WillReturnError(errors.New("lock wait timeout"))
		sqlMock.ExpectRollback()

		err := (&catalog{db: db}).remove(ctx, "docs", id)
		assert.ErrorContains(t, err, "lock wait timeout")
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectExec("DELETE FROM `gridfs_files`").WillReturnResult(sqlmock.NewResult(0, 0))
		sqlMock.ExpectRollback()

		err := (&catalog{db: db}).remove(ctx, "docs", id)
		assert.True(t, errors.Is(err, engine.ErrFileNotFound))
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("RemoveClearsProperties", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectExec("DELETE FROM `gridfs_files`").WillReturnResult(sqlmock.NewResult(0, 1))
		sqlMock.ExpectExec("DELETE FROM `gridfs_properties`").WillReturnResult(sqlmock.NewResult(0, 2))
		sqlMock.ExpectCommit()

		require.NoError(t, (&catalog{db: db}).remove(ctx, "docs", id))
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("InsertFails", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectExec("INSERT INTO `gridfs_files`").WillReturnError(errors.New("disk full"))
		sqlMock.ExpectRollback()

		err := (&catalog{db: db}).insert(ctx, "docs", engine.File{ID: id, Filename: "x"})
		assert.ErrorContains(t, err, "disk full")
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("FindFails", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectQuery("SELECT \\* FROM `gridfs_files`").WillReturnError(errors.New("connection reset"))

		_, err := (&catalog{db: db}).find(ctx, "docs", nil, engine.FindOptions{})
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("CorruptRow", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		rows := sqlmock.NewRows([]string{"id", "bucket", "filename", "length", "chunk_size", "upload_date", "md5", "metadata"}).
			AddRow("not-hex", "docs", "x", 1, 1, time.Now(), "", "[]")
		sqlMock.ExpectQuery("SELECT \\* FROM `gridfs_files`").WillReturnRows(rows)

		_, err := (&catalog{db: db}).find(ctx, "docs", nil, engine.FindOptions{})
		assert.Error(t, err)
	})
}
