package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/gen"
	"github.com/syssam/cruddals/dialect/sql/sqlgraph"
	"github.com/syssam/cruddals/filter"
	"github.com/syssam/cruddals/order"
	ql "github.com/syssam/cruddals/querylanguage"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
	"github.com/syssam/cruddals/store"
)

// Input keys of the connect/disconnect shape of many-valued relations.
const (
	keyConnect    = "connect"
	keyDisconnect = "disconnect"
)

func (e *Entity) create(ctx context.Context, args Args) (any, error) {
	return e.save(ctx, cruddals.OpCreate, args)
}

func (e *Entity) update(ctx context.Context, args Args) (any, error) {
	return e.save(ctx, cruddals.OpUpdate, args)
}

// save writes every input object in its own transaction, or in its own
// savepoint when ctx carries a transaction. Objects that fail are rolled
// back and reported by position; the others are kept.
func (e *Entity) save(ctx context.Context, op cruddals.Op, args Args) (any, error) {
	objs, err := inputs(args[gen.ArgInput])
	if err != nil {
		return nil, cruddals.NewQueryError(e.Model.Name, gen.ArgInput, err)
	}
	if objs == nil {
		return nil, cruddals.NewRequiredArgumentError(e.app.opName(e.Model, op), gen.ArgInput)
	}
	res := &MutationResult{}
	for i, obj := range objs {
		var (
			rec  store.Record
			errs []FieldError
		)
		err := e.app.inTx(ctx, func(ctx context.Context) (bool, error) {
			var err error
			rec, errs, err = e.write(ctx, op, obj)
			return len(errs) > 0, err
		})
		if err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			e.app.logger.WarnContext(ctx, "crud: rollback",
				"op", op.String(),
				"model", e.Model.Name,
				"position", i,
				"errors", len(errs),
			)
			res.fail(i, merge(errs)...)
			continue
		}
		res.Objects = append(res.Objects, rec)
	}
	return res, nil
}

// write saves one object with its nested relations and returns the stored
// record. Field errors leave the record nil; the caller rolls back.
func (e *Entity) write(ctx context.Context, op cruddals.Op, obj map[string]any) (store.Record, []FieldError, error) {
	m, pk := e.Model, e.Model.PrimaryKey()
	var (
		errs  []FieldError
		later []*field.Descriptor
	)
	for _, name := range sortedKeys(obj) {
		f, ok := m.Field(name)
		switch {
		case !ok:
			errs = append(errs, unknownField(m, name))
		case f == pk:
			if op == cruddals.OpCreate && !f.Editable() && obj[name] != nil {
				errs = append(errs, FieldError{Path: name, Messages: []string{"This field cannot be set."}})
			}
		case f.ReadOnly, op == cruddals.OpUpdate && f.Immutable:
			errs = append(errs, FieldError{Path: name, Messages: []string{"This field cannot be set."}})
		case !f.HasColumn():
			later = append(later, f)
		}
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}

	var (
		key    any
		stored store.Record
	)
	if op == cruddals.OpUpdate {
		if key = obj[pk.Name]; key == nil {
			return nil, []FieldError{{Path: pk.Name, Messages: []string{"This field is required."}}}, nil
		}
		rs, err := e.app.store.Find(ctx, m, store.Query{Where: ql.FieldEQ("pk", key)})
		if err != nil {
			return nil, nil, err
		}
		if len(rs) == 0 {
			return nil, []FieldError{{Path: pk.Name, Messages: []string{fmt.Sprintf("%s with %s %v does not exist.", m.Name, pk.Name, key)}}}, nil
		}
		stored = rs[0]
	}

	values := store.Record{}
	for _, name := range sortedKeys(obj) {
		f, _ := m.Field(name)
		switch {
		case f == pk:
			if op == cruddals.OpCreate && obj[name] != nil {
				values[name] = obj[name]
			}
		case !f.HasColumn():
		case f.Type.IsRelation():
			k, ferrs, err := e.direct(ctx, f, obj[name])
			if err != nil {
				return nil, nil, err
			}
			if len(ferrs) > 0 {
				errs = append(errs, ferrs...)
				continue
			}
			values[name] = k
		default:
			values[name] = obj[name]
		}
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}
	for _, f := range m.Columns() {
		if _, ok := values[f.Name]; ok || f == pk {
			continue
		}
		switch {
		case op == cruddals.OpCreate && f.Default != nil:
			values[f.Name] = f.DefaultValue()
		case op == cruddals.OpUpdate && f.UpdateDefault != nil:
			values[f.Name] = f.UpdateDefault()
		}
	}

	full := store.Record{}
	for k, v := range stored {
		full[k] = v
	}
	for k, v := range values {
		full[k] = v
	}
	errs = append(errs, FieldValidator{}.Validate(ctx, m, op, full)...)
	for _, v := range e.app.cfg.Validators {
		errs = append(errs, v.Validate(ctx, m, op, full)...)
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}
	for k := range values {
		values[k] = full[k]
	}

	var (
		rec store.Record
		err error
	)
	if op == cruddals.OpCreate {
		rec, err = e.app.store.Insert(ctx, m, values)
	} else {
		rec, err = e.app.store.Update(ctx, m, key, values)
	}
	if err != nil {
		if ferrs, ok := e.constraint(err); ok {
			return nil, ferrs, nil
		}
		return nil, nil, err
	}

	key = rec[pk.Name]
	for _, f := range later {
		ferrs, err := e.related(ctx, op, f, key, obj[f.Name])
		if err != nil {
			return nil, nil, err
		}
		errs = append(errs, ferrs...)
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}
	return rec, nil, nil
}

// direct resolves the value of a single-valued direct relation to the key
// stored in its column. Nested objects are written first through the
// operations of the related model.
func (e *Entity) direct(ctx context.Context, f *field.Descriptor, v any) (any, []FieldError, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil, nil
	}
	target, err := e.target(f)
	if err != nil {
		return nil, nil, err
	}
	rec, errs, err := e.app.nested(ctx, f.Name, target, obj)
	if err != nil || len(errs) > 0 {
		return nil, errs, err
	}
	return rec[target.Model.PrimaryKey().Name], nil, nil
}

// related applies the value of a relation stored outside the model's own
// table: many-to-many relations and every reverse relation. pk is the key of
// the saved parent.
func (e *Entity) related(ctx context.Context, op cruddals.Op, f *field.Descriptor, pk, v any) ([]FieldError, error) {
	m := e.Model
	r, err := e.app.graph.Relation(m, f)
	if err != nil {
		return nil, err
	}
	target, err := e.target(f)
	if err != nil {
		return nil, err
	}
	many := f.Type.Many()
	var (
		items      []any
		disconnect []any
		replace    bool
	)
	switch v := v.(type) {
	case nil:
		if op == cruddals.OpCreate {
			return nil, nil
		}
		return e.storeErr(f.Name, e.app.store.SetRelated(ctx, m, pk, f.Name))
	case map[string]any:
		_, c := v[keyConnect]
		_, d := v[keyDisconnect]
		switch {
		case many && (c || d):
			items, _ = list(v[keyConnect])
			disconnect, _ = list(v[keyDisconnect])
		case many:
			return []FieldError{{Path: f.Name, Messages: []string{"Expected a list of objects."}}}, nil
		default:
			items = []any{v}
		}
	default:
		l, ok := list(v)
		switch {
		case ok && many:
			items, replace = l, true
		case ok:
			return []FieldError{{Path: f.Name, Messages: []string{"Expected a single object."}}}, nil
		case many:
			return []FieldError{{Path: f.Name, Messages: []string{"Expected a list."}}}, nil
		default:
			items = []any{v}
		}
	}

	// Children created through a reverse foreign key carry the parent key.
	inject := f.Type == field.TypeOneToMany || f.Type == field.TypeOneToOneRel
	tpk := target.Model.PrimaryKey().Name
	var (
		errs   []FieldError
		keys   []any
		nested bool
	)
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			keys = append(keys, it)
			continue
		}
		nested = true
		if inject && obj[tpk] == nil {
			obj = clone(obj)
			obj[r.Inverse.Name] = pk
		}
		rec, ferrs, err := e.app.nested(ctx, f.Name, target, obj)
		if err != nil {
			return nil, err
		}
		if len(ferrs) > 0 {
			errs = append(errs, ferrs...)
			continue
		}
		keys = append(keys, rec[tpk])
	}
	if len(errs) > 0 {
		return errs, nil
	}

	for _, w := range disconnect {
		ferrs, err := e.disconnect(ctx, f, target.Model, pk, w)
		if err != nil || len(ferrs) > 0 {
			return ferrs, err
		}
	}
	switch {
	case replace && !nested:
		return e.storeErr(f.Name, e.app.store.SetRelated(ctx, m, pk, f.Name, keys...))
	case len(keys) > 0:
		return e.storeErr(f.Name, e.app.store.AddRelated(ctx, m, pk, f.Name, keys...))
	}
	return nil, nil
}

// disconnect unlinks the related records matching where without deleting
// them.
func (e *Entity) disconnect(ctx context.Context, f *field.Descriptor, target *schema.Model, pk, where any) ([]FieldError, error) {
	w, ok := where.(map[string]any)
	if !ok {
		return []FieldError{{Path: f.Name + "." + keyDisconnect, Messages: []string{"Expected a filter object."}}}, nil
	}
	p, err := filter.Where(w)
	if err != nil {
		return []FieldError{{Path: f.Name + "." + keyDisconnect, Messages: []string{err.Error()}}}, nil
	}
	rs, err := e.app.store.Related(ctx, e.Model, pk, f.Name, store.Query{Where: p, Order: order.Translate(nil, target.PrimaryKey().Name)})
	if err != nil {
		return e.storeErr(f.Name+"."+keyDisconnect, err)
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return e.storeErr(f.Name, e.app.store.RemoveRelated(ctx, e.Model, pk, f.Name, store.Keys(target, rs)...))
}

// nested writes a child object through the operations of target. An object
// with only a primary key references an existing record; an object with a
// primary key and other fields updates it; any other object is created.
// Field errors are returned under path.
func (a *App) nested(ctx context.Context, path string, target *Entity, obj map[string]any) (store.Record, []FieldError, error) {
	pk := target.Model.PrimaryKey().Name
	if key := obj[pk]; key != nil && len(obj) == 1 {
		rs, err := a.store.Find(ctx, target.Model, store.Query{Where: ql.FieldEQ("pk", key)})
		if err != nil {
			return nil, nil, cruddals.NewRelationResolutionError(path, err)
		}
		if len(rs) == 0 {
			msg := fmt.Sprintf("%s with %s %v does not exist.", target.Model.Name, pk, key)
			return nil, []FieldError{{Path: path + "." + pk, Messages: []string{msg}}}, nil
		}
		return rs[0], nil, nil
	}
	op := cruddals.OpCreate
	if obj[pk] != nil {
		op = cruddals.OpUpdate
	}
	res, err := target.mutation(ctx, op, Args{gen.ArgInput: []any{obj}})
	switch {
	case err != nil && recoverable(err):
		return nil, []FieldError{{Path: path, Messages: []string{err.Error()}}}, nil
	case err != nil:
		return nil, nil, cruddals.NewRelationResolutionError(path, err)
	case res.HasErrors():
		return nil, prefixed(path, flatten(res.Errors)), nil
	case len(res.Objects) != 1:
		return nil, nil, cruddals.NewRelationResolutionError(path, fmt.Errorf("expected one object, got %d", len(res.Objects)))
	}
	return res.Objects[0], nil, nil
}

func (e *Entity) target(f *field.Descriptor) (*Entity, error) {
	t, ok := e.app.entities[f.Related]
	if !ok {
		return nil, cruddals.NewRelationResolutionError(f.Name, fmt.Errorf("model %q has no operations", f.Related))
	}
	return t, nil
}

// constraint converts a constraint violation of a write to field errors.
func (e *Entity) constraint(err error) ([]FieldError, bool) {
	if !cruddals.IsConstraintError(err) {
		return nil, false
	}
	if sqlgraph.IsUniqueConstraintError(err) {
		if col := sqlgraph.UniqueColumn(err); col != "" {
			for _, f := range e.Model.Columns() {
				if f.Column == col || f.Name == col {
					return []FieldError{{Path: f.Name, Messages: []string{fmt.Sprintf("%s with this %s already exists.", e.Model.Name, f.Name)}}}, true
				}
			}
		}
	}
	return []FieldError{{Path: AllFields, Messages: []string{err.Error()}}}, true
}

// storeErr reports recoverable store errors as field errors under path.
func (e *Entity) storeErr(path string, err error) ([]FieldError, error) {
	switch {
	case err == nil:
		return nil, nil
	case recoverable(err):
		errs := fieldErrors(err)
		for i := range errs {
			errs[i].Path = path
		}
		return errs, nil
	}
	return nil, cruddals.NewRelationResolutionError(path, err)
}

// recoverable reports whether err is caused by the input rather than by the
// store.
func recoverable(err error) bool {
	return cruddals.IsNotFound(err) ||
		cruddals.IsNotSingular(err) ||
		cruddals.IsConstraintError(err) ||
		cruddals.IsValidationError(err) ||
		cruddals.IsQueryError(err) ||
		errors.Is(err, cruddals.ErrArgumentRequired)
}

func (e *Entity) delete(ctx context.Context, args Args) (any, error) {
	where, err := e.where(args, cruddals.OpDelete, true)
	if err != nil {
		return nil, err
	}
	var objs []store.Record
	err = e.app.inTx(ctx, func(ctx context.Context) (bool, error) {
		rs, err := e.app.store.Find(ctx, e.Model, store.Query{Where: where, Order: order.Translate(nil, e.Model.PrimaryKey().Name)})
		if err != nil || len(rs) == 0 {
			return false, err
		}
		if _, err := e.app.store.Delete(ctx, e.Model, ql.FieldIn("pk", store.Keys(e.Model, rs)...)); err != nil {
			return false, err
		}
		objs = rs
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Success: true, Objects: objs}, nil
}

func (e *Entity) activate(ctx context.Context, args Args) (any, error) {
	return e.toggle(ctx, cruddals.OpActivate, args, true)
}

func (e *Entity) deactivate(ctx context.Context, args Args) (any, error) {
	return e.toggle(ctx, cruddals.OpDeactivate, args, false)
}

// toggle sets the state field of the matching records to state and
// returns them.
func (e *Entity) toggle(ctx context.Context, op cruddals.Op, args Args, state bool) (any, error) {
	where, err := e.where(args, op, true)
	if err != nil {
		return nil, err
	}
	byKey := order.Translate(nil, e.Model.PrimaryKey().Name)
	var objs []store.Record
	err = e.app.inTx(ctx, func(ctx context.Context) (bool, error) {
		rs, err := e.app.store.Find(ctx, e.Model, store.Query{Where: where})
		if err != nil || len(rs) == 0 {
			return false, err
		}
		keys := ql.FieldIn("pk", store.Keys(e.Model, rs)...)
		values := store.Record{e.state.Name: state}
		for _, f := range e.Model.Columns() {
			if f.UpdateDefault != nil {
				values[f.Name] = f.UpdateDefault()
			}
		}
		if _, err := e.app.store.UpdateWhere(ctx, e.Model, keys, values); err != nil {
			return false, err
		}
		objs, err = e.app.store.Find(ctx, e.Model, store.Query{Where: keys, Order: byKey})
		return false, err
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Objects: objs}, nil
}

// inputs returns the objects of an input argument. A single object is
// accepted as a batch of one.
func inputs(v any) ([]map[string]any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []map[string]any{v}, nil
	case []map[string]any:
		if v == nil {
			return []map[string]any{}, nil
		}
		return v, nil
	case []any:
		objs := make([]map[string]any, len(v))
		for i, o := range v {
			m, ok := o.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("input %d: expect an object, got %T", i, o)
			}
			objs[i] = m
		}
		return objs, nil
	}
	return nil, fmt.Errorf("expect a list of objects, got %T", v)
}

// list returns the elements of a list value.
func list(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case []map[string]any:
		l := make([]any, len(v))
		for i, o := range v {
			l[i] = o
		}
		return l, true
	}
	return nil, false
}

func clone(m map[string]any) map[string]any {
	c := make(map[string]any, len(m)+1)
	for k, v := range m {
		c[k] = v
	}
	return c
}
