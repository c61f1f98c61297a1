package gridfs_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gridfs-manager/core/engine/memory"
	"gridfs-manager/core/gridfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	eng := memory.New(0)
	a, _ := eng.OpenBucket(context.Background(), "a")
	b, _ := eng.OpenBucket(context.Background(), "b")

	r := gridfs.NewRegistry()
	assert.Equal(t, 0, r.Total())
	assert.Equal(t, []string{}, r.Keys())

	assert.True(t, r.Set("b", b))
	assert.True(t, r.Set("a", a))
	assert.Equal(t, 2, r.Total())
	assert.Equal(t, []string{"b", "a"}, r.Keys())
	assert.True(t, r.Exists("a"))
	assert.False(t, r.Exists("A"), "names are case-sensitive")

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	// Overwrite keeps position
	assert.True(t, r.Set("b", a))
	assert.Equal(t, []string{"b", "a"}, r.Keys())

	assert.True(t, r.Delete("b"))
	assert.False(t, r.Delete("b"))
	assert.Equal(t, []string{"a"}, r.Keys())
}

func TestRegistry_Uninitialized(t *testing.T) {
	var nilRegistry *gridfs.Registry
	assert.Equal(t, 0, nilRegistry.Total())
	assert.Equal(t, []string{}, nilRegistry.Keys())
	assert.False(t, nilRegistry.Exists("a"))
	assert.False(t, nilRegistry.Set("a", nil))
	assert.False(t, nilRegistry.Delete("a"))

	var zero gridfs.Registry
	assert.False(t, zero.Set("a", nil))
	assert.Equal(t, []string{}, zero.Keys())
}

func TestRegistry_Concurrent(t *testing.T) {
	eng := memory.New(0)
	r := gridfs.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("bucket-%d", i)
			b, _ := eng.OpenBucket(context.Background(), name)
			r.Set(name, b)
			r.Exists(name)
			r.Keys()
			if i%2 == 0 {
				r.Delete(name)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, r.Total())
}
