package crud

import (
	"context"
	"fmt"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/convert"
	"github.com/syssam/cruddals/compiler/gen"
	"github.com/syssam/cruddals/filter"
	"github.com/syssam/cruddals/order"
	"github.com/syssam/cruddals/pagination"
	ql "github.com/syssam/cruddals/querylanguage"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
	"github.com/syssam/cruddals/store"
)

// Entity holds the operations of one model.
type Entity struct {
	Model *schema.Model

	app   *App
	ops   map[cruddals.Op]*Operation
	state *field.Descriptor
}

// Operation returns the composed operation op, if the model has it.
func (e *Entity) Operation(op cruddals.Op) (*Operation, bool) {
	o, ok := e.ops[op]
	return o, ok
}

// Ops returns the operations of the entity.
func (e *Entity) Ops() cruddals.Op {
	var ops cruddals.Op
	for op := range e.ops {
		ops |= op
	}
	return ops
}

// core returns the default core of op.
func (e *Entity) core(op cruddals.Op) Core {
	switch op {
	case cruddals.OpRead:
		return e.read
	case cruddals.OpList:
		return e.list
	case cruddals.OpSearch:
		return e.search
	case cruddals.OpCreate:
		return e.create
	case cruddals.OpUpdate:
		return e.update
	case cruddals.OpDelete:
		return e.delete
	case cruddals.OpActivate:
		return e.activate
	case cruddals.OpDeactivate:
		return e.deactivate
	}
	return nil
}

func (e *Entity) exec(ctx context.Context, op cruddals.Op, args Args) (any, error) {
	o, ok := e.ops[op]
	if !ok {
		return nil, fmt.Errorf("crud: %s has no %s operation", e.Model.Name, op)
	}
	return o.Execute(ctx, args)
}

// mutation runs a mutation operation that results in a MutationResult.
func (e *Entity) mutation(ctx context.Context, op cruddals.Op, args Args) (*MutationResult, error) {
	v, err := e.exec(ctx, op, args)
	if err != nil {
		return nil, err
	}
	res, ok := v.(*MutationResult)
	if !ok {
		return nil, fmt.Errorf("crud: %s %s returned %T, want *MutationResult", e.Model.Name, op, v)
	}
	return res, nil
}

// page runs a List or Search operation.
func (e *Entity) page(ctx context.Context, op cruddals.Op, args Args) (*pagination.Result[store.Record], error) {
	v, err := e.exec(ctx, op, args)
	if err != nil {
		return nil, err
	}
	res, ok := v.(*pagination.Result[store.Record])
	if !ok {
		return nil, fmt.Errorf("crud: %s %s returned %T, want a page of records", e.Model.Name, op, v)
	}
	return res, nil
}

// Read returns the single record matching where.
func (e *Entity) Read(ctx context.Context, where map[string]any) (store.Record, error) {
	v, err := e.exec(ctx, cruddals.OpRead, Args{gen.ArgWhere: where})
	if err != nil {
		return nil, err
	}
	switch r := v.(type) {
	case store.Record:
		return r, nil
	case map[string]any:
		return r, nil
	}
	return nil, fmt.Errorf("crud: %s %s returned %T, want store.Record", e.Model.Name, cruddals.OpRead, v)
}

// List returns one page of all records in primary-key order.
func (e *Entity) List(ctx context.Context, paginated map[string]any) (*pagination.Result[store.Record], error) {
	return e.page(ctx, cruddals.OpList, Args{gen.ArgPaginated: paginated})
}

// Search returns one page of the records matching where, sorted by
// orderBy.
func (e *Entity) Search(ctx context.Context, where map[string]any, orderBy any, paginated map[string]any) (*pagination.Result[store.Record], error) {
	return e.page(ctx, cruddals.OpSearch, Args{gen.ArgWhere: where, gen.ArgOrderBy: orderBy, gen.ArgPaginated: paginated})
}

// Create creates one record per input object.
func (e *Entity) Create(ctx context.Context, input ...map[string]any) (*MutationResult, error) {
	return e.mutation(ctx, cruddals.OpCreate, Args{gen.ArgInput: input})
}

// Update updates one record per input object. Every object carries the
// primary key of its record.
func (e *Entity) Update(ctx context.Context, input ...map[string]any) (*MutationResult, error) {
	return e.mutation(ctx, cruddals.OpUpdate, Args{gen.ArgInput: input})
}

// Delete deletes the records matching where.
func (e *Entity) Delete(ctx context.Context, where map[string]any) (*MutationResult, error) {
	return e.mutation(ctx, cruddals.OpDelete, Args{gen.ArgWhere: where})
}

// Activate sets the state field of the records matching where.
func (e *Entity) Activate(ctx context.Context, where map[string]any) (*MutationResult, error) {
	return e.mutation(ctx, cruddals.OpActivate, Args{gen.ArgWhere: where})
}

// Deactivate clears the state field of the records matching where.
func (e *Entity) Deactivate(ctx context.Context, where map[string]any) (*MutationResult, error) {
	return e.mutation(ctx, cruddals.OpDeactivate, Args{gen.ArgWhere: where})
}

// where translates the where argument. A missing argument matches every
// record unless required.
func (e *Entity) where(args Args, op cruddals.Op, required bool) (ql.P, error) {
	v := args[gen.ArgWhere]
	m, ok := v.(map[string]any)
	switch {
	case v != nil && !ok:
		return nil, cruddals.NewQueryError(e.Model.Name, gen.ArgWhere, fmt.Errorf("expect an object, got %T", v))
	case m == nil && required:
		return nil, cruddals.NewRequiredArgumentError(e.app.opName(e.Model, op), gen.ArgWhere)
	case m == nil:
		return nil, nil
	}
	p, err := filter.Where(m)
	if err != nil {
		return nil, cruddals.NewQueryError(e.Model.Name, gen.ArgWhere, err)
	}
	return p, nil
}

func (e *Entity) read(ctx context.Context, args Args) (any, error) {
	where, err := e.where(args, cruddals.OpRead, false)
	if err != nil {
		return nil, err
	}
	rs, err := e.app.store.Find(ctx, e.Model, store.Query{Where: where, Limit: 2})
	if err != nil {
		return nil, err
	}
	switch len(rs) {
	case 0:
		return nil, cruddals.NewNotFoundError(e.Model.Name)
	case 1:
		return rs[0], nil
	}
	n, err := e.app.store.Count(ctx, e.Model, where)
	if err != nil {
		return nil, err
	}
	return nil, cruddals.NewNotSingularError(e.Model.Name, n)
}

func (e *Entity) list(ctx context.Context, args Args) (any, error) {
	return e.paginate(ctx, args, nil, nil)
}

func (e *Entity) search(ctx context.Context, args Args) (any, error) {
	where, err := e.where(args, cruddals.OpSearch, false)
	if err != nil {
		return nil, err
	}
	terms, err := order.By(args[gen.ArgOrderBy], e.Model.PrimaryKey().Name)
	if err != nil {
		return nil, cruddals.NewQueryError(e.Model.Name, gen.ArgOrderBy, err)
	}
	return e.paginate(ctx, args, where, terms)
}

func (e *Entity) paginate(ctx context.Context, args Args, where ql.P, terms []order.Term) (*pagination.Result[store.Record], error) {
	var page, size any
	if p, ok := args[gen.ArgPaginated].(map[string]any); ok {
		page, size = p["page"], p["page_size"]
	}
	total, err := e.app.store.Count(ctx, e.Model, where)
	if err != nil {
		return nil, err
	}
	w := pagination.Paginate(total, pagination.NewRequest(page, size))
	if total == 0 {
		return pagination.NewResult[store.Record](w, nil), nil
	}
	if len(terms) == 0 {
		terms = order.Translate(nil, e.Model.PrimaryKey().Name)
	}
	rs, err := e.app.store.Find(ctx, e.Model, store.Query{
		Where:  where,
		Order:  terms,
		Offset: w.Offset(),
		Limit:  w.Limit(),
	})
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(w, rs), nil
}

// Relation implements gen.Resolvers. The resolver loads the records linked
// to a parent record; many-valued relations accept where and orderBy.
func (a *App) Relation(m *schema.Model, f *field.Descriptor) gen.Resolver {
	r, err := a.graph.Relation(m, f)
	if err != nil {
		return nil
	}
	return func(ctx context.Context, parent any, args map[string]any) (any, error) {
		p, ok := parent.(store.Record)
		if !ok {
			return nil, fmt.Errorf("crud: %s.%s: unexpected parent %T", m.Name, f.Name, parent)
		}
		if f.HasColumn() {
			key := p[f.Name]
			if key == nil {
				return nil, nil
			}
			if ls := loadersFromContext(ctx); ls != nil {
				return ls.target(ctx, r, key)
			}
			rs, err := a.store.Find(ctx, r.Target, store.Query{Where: ql.FieldEQ("pk", key)})
			if err != nil || len(rs) == 0 {
				return nil, err
			}
			return rs[0], nil
		}
		if ls := loadersFromContext(ctx); ls != nil && f.Type == field.TypeOneToMany && args[gen.ArgWhere] == nil && args[gen.ArgOrderBy] == nil {
			rs, err := ls.children(ctx, r, p[m.PrimaryKey().Name])
			if err != nil || rs == nil {
				return []store.Record{}, err
			}
			return rs, nil
		}
		var (
			q   store.Query
			err error
		)
		if w, ok := args[gen.ArgWhere].(map[string]any); ok {
			if q.Where, err = filter.Where(w); err != nil {
				return nil, cruddals.NewQueryError(r.Target.Name, gen.ArgWhere, err)
			}
		}
		if q.Order, err = order.By(args[gen.ArgOrderBy], r.Target.PrimaryKey().Name); err != nil {
			return nil, cruddals.NewQueryError(r.Target.Name, gen.ArgOrderBy, err)
		}
		rs, err := a.store.Related(ctx, m, p[m.PrimaryKey().Name], f.Name, q)
		if err != nil {
			return nil, err
		}
		if f.Type.Many() {
			return rs, nil
		}
		if len(rs) == 0 {
			return nil, nil
		}
		return rs[0], nil
	}
}

// opName returns the root field name of op for m.
func (a *App) opName(m *schema.Model, op cruddals.Op) string {
	var n convert.Namer
	return n.Operation(m, op)
}
