// Package registry provides the write-once store that memoizes generated
// types during a schema build.
//
// Entries are set at most once: the first writer wins and later writes
// are ignored. Lookups are safe before a key is populated, which lets a
// build detect forward references. A Registry belongs to one build and is
// never shared across builds.
package registry

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key is implemented by registry keys. String must be unique per key.
type Key interface {
	comparable
	String() string
}

// Registry is a write-once map from keys to generated values.
type Registry[K Key, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	order []K
	group singleflight.Group
}

// New returns an empty registry.
func New[K Key, V any]() *Registry[K, V] {
	return &Registry[K, V]{items: make(map[K]V)}
}

// Register stores v under k if k is absent and reports whether it did.
func (r *Registry[K, V]) Register(k K, v V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[k]; ok {
		return false
	}
	r.items[k] = v
	r.order = append(r.order, k)
	return true
}

// Lookup returns the value stored under k.
func (r *Registry[K, V]) Lookup(k K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[k]
	return v, ok
}

// LoadOrStore returns the value stored under k, building and registering
// it first if k is absent. Concurrent callers of the same key wait for a
// single build. build must not call LoadOrStore with the same key.
func (r *Registry[K, V]) LoadOrStore(k K, build func() (V, error)) (V, error) {
	if v, ok := r.Lookup(k); ok {
		return v, nil
	}
	res, err, _ := r.group.Do(k.String(), func() (any, error) {
		if v, ok := r.Lookup(k); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		r.Register(k, v)
		// Another writer may have won between build and Register.
		v, _ = r.Lookup(k)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Keys returns the registered keys in registration order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]K(nil), r.order...)
}

// Len returns the number of registered entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
