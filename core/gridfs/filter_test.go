package gridfs_test

import (
	"errors"
	"testing"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/gridfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeFilter(t *testing.T) {
	id := primitive.NewObjectID()
	other := primitive.NewObjectID()

	out, err := gridfs.NormalizeFilter(engine.Filter{
		"userId":            id.Hex(),
		"status":            "active",
		"_id":               []string{id.Hex(), other.Hex()},
		"metadata.ClientID": []any{other.Hex(), id},
		"metadata.ownerId":  other,
	})
	require.NoError(t, err)

	assert.Equal(t, id, out["userId"])
	assert.Equal(t, "active", out["status"])
	assert.Equal(t, []primitive.ObjectID{id, other}, out["_id"])
	assert.Equal(t, []primitive.ObjectID{other, id}, out["metadata.ClientID"])
	assert.Equal(t, other, out["metadata.ownerId"])
}

func TestNormalizeFilter_Empty(t *testing.T) {
	out, err := gridfs.NormalizeFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	empty := engine.Filter{}
	out, err = gridfs.NormalizeFilter(empty)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNormalizeFilter_Malformed(t *testing.T) {
	cases := []engine.Filter{
		{"userId": "abc123"},
		{"_id": []string{primitive.NewObjectID().Hex(), "nope"}},
		{"ID": 42},
		{"ids": []any{[]any{"nested"}}},
	}
	for _, filter := range cases {
		_, err := gridfs.NormalizeFilter(filter)
		assert.True(t, errors.Is(err, gridfs.ErrInvalidArgument), "filter %v", filter)
	}
}

func TestNormalizeFilter_DoesNotMutateInput(t *testing.T) {
	id := primitive.NewObjectID()
	in := engine.Filter{"userId": id.Hex()}

	_, err := gridfs.NormalizeFilter(in)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), in["userId"])
}
