package dataloader

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultWait is the time a Loader collects keys before it runs a batch.
const DefaultWait = 2 * time.Millisecond

// Loader batches the Load calls made within a short window into one call
// of its batch function and caches the results by key. A Loader serves one
// request; create a new one per request.
type Loader[K comparable, V any] struct {
	fetch BatchFunc[K, V]
	wait  time.Duration
	max   int

	mu    sync.Mutex
	cache map[K]*thunk[V]
	batch *batch[K, V]
}

type thunk[V any] struct {
	done  chan struct{}
	value V
	err   error
}

type batch[K comparable, V any] struct {
	keys   []K
	thunks []*thunk[V]
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	wait time.Duration
	max  int
}

// WithWait sets the batching window.
func WithWait(d time.Duration) LoaderOption {
	return func(c *loaderConfig) { c.wait = d }
}

// WithMaxBatch caps the number of keys of one batch. Zero means no cap.
func WithMaxBatch(n int) LoaderOption {
	return func(c *loaderConfig) { c.max = n }
}

// NewLoader returns a loader calling fetch for each batch. fetch returns
// one value per key, in key order, and either one error per key or a
// single error for the whole batch.
func NewLoader[K comparable, V any](fetch BatchFunc[K, V], opts ...LoaderOption) *Loader[K, V] {
	cfg := loaderConfig{wait: DefaultWait}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader[K, V]{
		fetch: fetch,
		wait:  cfg.wait,
		max:   cfg.max,
		cache: make(map[K]*thunk[V]),
	}
}

// Load returns the value of key, waiting for the batch it joins.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	l.mu.Lock()
	t, ok := l.cache[key]
	if !ok {
		t = &thunk[V]{done: make(chan struct{})}
		l.cache[key] = t
		if l.batch == nil {
			b := &batch[K, V]{}
			l.batch = b
			time.AfterFunc(l.wait, func() { l.dispatch(ctx, b) })
		}
		b := l.batch
		b.keys = append(b.keys, key)
		b.thunks = append(b.thunks, t)
		if l.max > 0 && len(b.keys) >= l.max {
			l.batch = nil
			go l.run(ctx, b)
		}
	}
	l.mu.Unlock()
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// LoadMany loads every key and returns the values in key order.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, []error) {
	values := make([]V, len(keys))
	errs := make([]error, len(keys))
	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			values[i], errs[i] = l.Load(ctx, k)
		}()
	}
	wg.Wait()
	return values, errs
}

// Prime stores value for key unless the key is already loaded or pending.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cache[key]; ok {
		return
	}
	t := &thunk[V]{done: make(chan struct{}), value: value}
	close(t.done)
	l.cache[key] = t
}

// Clear removes key from the cache.
func (l *Loader[K, V]) Clear(key K) {
	l.mu.Lock()
	delete(l.cache, key)
	l.mu.Unlock()
}

// dispatch runs b unless it was already run for reaching the size cap.
func (l *Loader[K, V]) dispatch(ctx context.Context, b *batch[K, V]) {
	l.mu.Lock()
	if l.batch != b {
		l.mu.Unlock()
		return
	}
	l.batch = nil
	l.mu.Unlock()
	l.run(ctx, b)
}

func (l *Loader[K, V]) run(ctx context.Context, b *batch[K, V]) {
	values, errs := l.fetch(ctx, b.keys)
	for i, t := range b.thunks {
		switch {
		case len(errs) == 1 && len(b.keys) > 1:
			t.err = errs[0]
		case i < len(errs) && errs[i] != nil:
			t.err = errs[i]
		case i >= len(values):
			t.err = fmt.Errorf("dataloader: batch returned %d values for %d keys", len(values), len(b.keys))
		default:
			t.value = values[i]
		}
		close(t.done)
	}
}
