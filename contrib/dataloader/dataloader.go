// Package dataloader batches the loading of related records.
//
// Relation resolvers of a list result run once per parent. A Loader collects
// the keys requested within a short window and loads them with one query:
//
//	l := dataloader.NewLoader(func(ctx context.Context, ids []string) ([]store.Record, []error) {
//		rs, err := s.Find(ctx, category, store.Query{Where: ql.FieldIn("pk", raw(ids)...)})
//		if err != nil {
//			return nil, []error{err}
//		}
//		return dataloader.Pick(ids, rs, keyOf)
//	})
//	c, err := l.Load(ctx, "1")
//
// Loaders are request scoped; see WithLoaders and For.
package dataloader

import (
	"context"
	"errors"
)

// ErrNotFound is reported for the keys missing from a batch result.
var ErrNotFound = errors.New("dataloader: record not found")

// KeyFunc extracts the key of a value.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc loads the values of a batch of keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error)

// Pick lines values up with keys, as BatchFunc results must be. A key
// matching no value gets the zero value and ErrNotFound.
func Pick[K comparable, V any](keys []K, values []V, key KeyFunc[K, V]) ([]V, []error) {
	byKey := make(map[K]V, len(values))
	for _, v := range values {
		byKey[key(v)] = v
	}
	out, errs := make([]V, len(keys)), make([]error, len(keys))
	for i, k := range keys {
		v, ok := byKey[k]
		if !ok {
			errs[i] = ErrNotFound
		}
		out[i] = v
	}
	return out, errs
}

// Group collects the values of each key, in their original order, and
// returns one group per key. It serves one-to-many relations, where key
// returns the foreign key of a child. A key matching no value gets nil.
func Group[K comparable, V any](keys []K, values []V, key KeyFunc[K, V]) [][]V {
	byKey := make(map[K][]V)
	for _, v := range values {
		k := key(v)
		byKey[k] = append(byKey[k], v)
	}
	out := make([][]V, len(keys))
	for i, k := range keys {
		out[i] = byKey[k]
	}
	return out
}

type ctxKey struct{}

// WithLoaders returns a new context carrying the loaders of one request.
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For returns the loaders stored in ctx, or the zero value.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}
