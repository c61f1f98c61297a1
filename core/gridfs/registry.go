package gridfs

import (
	"sync"

	"gridfs-manager/core/engine"
)

// Registry maps bucket names to open bucket handles.
// It is safe for concurrent use. A nil or zero Registry is uninitialized:
// queries report nothing and Set fails.
type Registry struct {
	mu      sync.RWMutex
	names   []string
	buckets map[string]engine.Bucket
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[string]engine.Bucket)}
}

// Total returns the number of registered buckets.
func (r *Registry) Total() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Keys returns the registered names in registration order.
func (r *Registry) Keys() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Get returns the handle registered under name.
func (r *Registry) Get(name string) (engine.Bucket, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buckets[name]
	return b, ok
}

// Set registers or replaces the handle for name. Replacing keeps the original position.
func (r *Registry) Set(name string, b engine.Bucket) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.buckets == nil {
		return false
	}
	if _, ok := r.buckets[name]; !ok {
		r.names = append(r.names, name)
	}
	r.buckets[name] = b
	return true
}

// Delete removes name and reports whether it was registered.
func (r *Registry) Delete(name string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.buckets[name]; !ok {
		return false
	}
	delete(r.buckets, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i:i], r.names[i+1:]...)
			break
		}
	}
	return true
}
