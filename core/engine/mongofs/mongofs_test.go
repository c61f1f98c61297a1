package mongofs

import (
	"context"
	"testing"
	"time"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConnect(t *testing.T) {
	t.Run("InvalidURI", func(t *testing.T) {
		client, err := Connect(context.Background(), Config{URI: "invalid://localhost", TimeoutSeconds: 1})
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestToBSONFilter(t *testing.T) {
	id := primitive.NewObjectID()
	filter := engine.Filter{
		"_id":               []primitive.ObjectID{id},
		"filename":          "a.pdf",
		"metadata.position": metadata.Number(2),
		"metadata.tags":     []string{"x", "y"},
	}

	got := toBSONFilter(filter)

	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{id}}, got["_id"])
	assert.Equal(t, "a.pdf", got["filename"])
	assert.Equal(t, float64(2), got["metadata.position"])
	assert.Equal(t, bson.M{"$in": []string{"x", "y"}}, got["metadata.tags"])

	assert.Equal(t, bson.M{}, toBSONFilter(nil))
}

func TestToDocumentKeepsOrder(t *testing.T) {
	var md metadata.Metadata
	md.Set("position", metadata.Number(1))
	md.SetMimeType("image/png")

	doc := toDocument(md)
	require.Len(t, doc, 2)
	assert.Equal(t, "position", doc[0].Key)
	assert.Equal(t, float64(1), doc[0].Value)
	assert.Equal(t, "mimetype", doc[1].Key)
	assert.Equal(t, "image/png", doc[1].Value)
}

func TestFromDocument(t *testing.T) {
	uploaded := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := fileDocument{
		ID:         primitive.NewObjectID(),
		Length:     10,
		ChunkSize:  261120,
		UploadDate: uploaded,
		Filename:   "a.txt",
		Metadata: bson.D{
			{Key: "mimetype", Value: "text/plain"},
			{Key: "position", Value: int32(3)},
			{Key: "signedAt", Value: primitive.NewDateTimeFromTime(uploaded)},
			{Key: "owner", Value: bson.D{{Key: "name", Value: "x"}}},
		},
		MD5: "abc",
	}

	f := fromDocument(doc)

	assert.Equal(t, doc.ID, f.ID)
	assert.Equal(t, "a.txt", f.Filename)
	assert.Equal(t, []string{"mimetype", "position", "signedAt", "owner"}, f.Metadata.Keys())

	mt, ok := f.Metadata.MimeType()
	assert.True(t, ok)
	assert.Equal(t, "text/plain", mt)

	pos, _ := f.Metadata.Get("position")
	assert.Equal(t, metadata.KindNumber, pos.Kind())
	assert.Equal(t, float64(3), pos.Float())

	signed, _ := f.Metadata.Get("signedAt")
	assert.Equal(t, metadata.KindTime, signed.Kind())
	assert.True(t, uploaded.Equal(signed.Time()))

	owner, _ := f.Metadata.Get("owner")
	assert.Equal(t, metadata.KindString, owner.Kind())
}
