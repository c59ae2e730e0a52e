package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syssam/cruddals/contrib/dataloader"
	"github.com/syssam/cruddals/order"
	ql "github.com/syssam/cruddals/querylanguage"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/store"
)

// Loaders batches the relation reads of one request. Direct single-valued
// relations are loaded by key and one-to-many relations without arguments
// are loaded by parent.
type Loaders struct {
	app *App

	mu  sync.Mutex
	one map[string]*keyLoader[store.Record]
	all map[string]*keyLoader[[]store.Record]
}

// WithLoaders returns a new context whose relation resolvers batch their
// reads. Use one context per request.
func (a *App) WithLoaders(ctx context.Context) context.Context {
	return dataloader.WithLoaders(ctx, &Loaders{
		app: a,
		one: make(map[string]*keyLoader[store.Record]),
		all: make(map[string]*keyLoader[[]store.Record]),
	})
}

func loadersFromContext(ctx context.Context) *Loaders {
	return dataloader.For[*Loaders](ctx)
}

// keyLoader keys a loader by the string form of the raw keys.
type keyLoader[V any] struct {
	*dataloader.Loader[string, V]
	raw sync.Map
}

func (l *keyLoader[V]) load(ctx context.Context, key any) (V, error) {
	k := fmt.Sprint(key)
	l.raw.Store(k, key)
	return l.Load(ctx, k)
}

func (l *keyLoader[V]) keys(ks []string) []any {
	raw := make([]any, len(ks))
	for i, k := range ks {
		raw[i], _ = l.raw.Load(k)
	}
	return raw
}

func relKey(r *schema.Relation) string { return r.Model.Name + "." + r.Field.Name }

// target loads the record a direct single-valued relation points to.
func (ls *Loaders) target(ctx context.Context, r *schema.Relation, key any) (any, error) {
	ls.mu.Lock()
	l, ok := ls.one[relKey(r)]
	if !ok {
		l = &keyLoader[store.Record]{}
		pk := r.Target.PrimaryKey().Name
		l.Loader = dataloader.NewLoader(func(ctx context.Context, keys []string) ([]store.Record, []error) {
			rs, err := ls.app.store.Find(ctx, r.Target, store.Query{Where: ql.FieldIn("pk", l.keys(keys)...)})
			if err != nil {
				return nil, []error{err}
			}
			return dataloader.Pick(keys, rs, func(rec store.Record) string { return fmt.Sprint(rec[pk]) })
		})
		ls.one[relKey(r)] = l
	}
	ls.mu.Unlock()
	rec, err := l.load(ctx, key)
	switch {
	case errors.Is(err, dataloader.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return rec, nil
}

// children loads the records of a one-to-many relation of the parent pk.
func (ls *Loaders) children(ctx context.Context, r *schema.Relation, pk any) ([]store.Record, error) {
	ls.mu.Lock()
	l, ok := ls.all[relKey(r)]
	if !ok {
		l = &keyLoader[[]store.Record]{}
		fk := r.Inverse.Name
		l.Loader = dataloader.NewLoader(func(ctx context.Context, keys []string) ([][]store.Record, []error) {
			rs, err := ls.app.store.Find(ctx, r.Target, store.Query{
				Where: ql.FieldIn(fk, l.keys(keys)...),
				Order: order.Translate(nil, r.Target.PrimaryKey().Name),
			})
			if err != nil {
				return nil, []error{err}
			}
			return dataloader.Group(keys, rs, func(rec store.Record) string { return fmt.Sprint(rec[fk]) }), nil
		})
		ls.all[relKey(r)] = l
	}
	ls.mu.Unlock()
	return l.load(ctx, pk)
}
