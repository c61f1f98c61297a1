package memory_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/engine/memory"
	"gridfs-manager/core/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func upload(t *testing.T, b engine.Bucket, name, content string, md metadata.Metadata) primitive.ObjectID {
	t.Helper()
	stream, err := b.OpenUploadStream(context.Background(), name, md)
	require.NoError(t, err)
	_, err = io.Copy(stream, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	return stream.ID()
}

func TestBucket_RoundTrip(t *testing.T) {
	ctx := context.Background()
	eng := memory.New(4)
	b, err := eng.OpenBucket(ctx, "docs")
	require.NoError(t, err)

	var md metadata.Metadata
	md.SetMimeType("text/plain")
	id := upload(t, b, "hello.txt", "hello world", md)

	files, err := b.Find(ctx, engine.Filter{engine.FieldID: id}, engine.FindOptions{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hello.txt", files[0].Filename)
	assert.Equal(t, int64(11), files[0].Length)
	assert.Equal(t, int32(4), files[0].ChunkSize)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", files[0].MD5)

	rc, err := b.OpenDownloadStream(ctx, id)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestBucket_AbortDiscards(t *testing.T) {
	ctx := context.Background()
	b, _ := memory.New(0).OpenBucket(ctx, "docs")

	stream, err := b.OpenUploadStream(ctx, "x", metadata.Metadata{})
	require.NoError(t, err)
	_, _ = stream.Write([]byte("partial"))
	require.NoError(t, stream.Abort())

	files, err := b.Find(ctx, nil, engine.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Error(t, stream.Close())
}

func TestBucket_Delete(t *testing.T) {
	ctx := context.Background()
	b, _ := memory.New(0).OpenBucket(ctx, "docs")
	id := upload(t, b, "a", "a", metadata.Metadata{})

	require.NoError(t, b.Delete(ctx, id))
	err := b.Delete(ctx, id)
	assert.True(t, errors.Is(err, engine.ErrFileNotFound))

	_, err = b.OpenDownloadStream(ctx, id)
	assert.True(t, errors.Is(err, engine.ErrFileNotFound))
}

func TestEngine_OpenBucketSharesStorage(t *testing.T) {
	ctx := context.Background()
	eng := memory.New(0)

	first, err := eng.OpenBucket(ctx, "docs")
	require.NoError(t, err)
	upload(t, first, "a", "a", metadata.Metadata{})

	second, err := eng.OpenBucket(ctx, "docs")
	require.NoError(t, err)
	files, err := second.Find(ctx, nil, engine.FindOptions{})
	require.NoError(t, err)
	assert.Len(t, files, 1)

	other, _ := eng.OpenBucket(ctx, "Docs")
	files, _ = other.Find(ctx, nil, engine.FindOptions{})
	assert.Empty(t, files, "bucket names are case-sensitive")

	_, err = eng.OpenBucket(ctx, "")
	assert.Error(t, err)
}
