package sqlstore

import (
	"context"
	"fmt"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/dialect/sql"
	"github.com/syssam/cruddals/dialect/sql/sqlgraph"
	ql "github.com/syssam/cruddals/querylanguage"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
	"github.com/syssam/cruddals/store"
)

// Count returns the number of records matching where.
func (s *Store) Count(ctx context.Context, m *schema.Model, where ql.P) (int, error) {
	if _, err := s.node(m); err != nil {
		return 0, err
	}
	sel := sql.Dialect(s.drv.Dialect()).Select().Count().From(sql.Table(m.Table))
	if where != nil {
		if err := s.sg.EvalP(m.Name, where, sel); err != nil {
			return 0, cruddals.NewQueryError(m.Name, "count", err)
		}
	}
	query, args := sel.Query()
	rows, err := s.rows(ctx, m.Table, "count", query, args)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: count %s: %w", m.Name, err)
	}
	if len(rows) != 1 {
		return 0, fmt.Errorf("sqlstore: count %s: unexpected %d rows", m.Name, len(rows))
	}
	for _, v := range rows[0] {
		n, err := field.TypeInt64.Parse(v)
		if err != nil {
			return 0, fmt.Errorf("sqlstore: count %s: %w", m.Name, err)
		}
		return int(n.(int64)), nil
	}
	return 0, fmt.Errorf("sqlstore: count %s: no column", m.Name)
}

// Find returns the records selected by q.
func (s *Store) Find(ctx context.Context, m *schema.Model, q store.Query) ([]store.Record, error) {
	if _, err := s.node(m); err != nil {
		return nil, err
	}
	sel, err := s.selector(m, q)
	if err != nil {
		return nil, err
	}
	query, args := sel.Query()
	rows, err := s.rows(ctx, m.Table, "find", query, args)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find %s: %w", m.Name, err)
	}
	records := make([]store.Record, len(rows))
	for i, row := range rows {
		if records[i], err = s.record(m, row); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *Store) selector(m *schema.Model, q store.Query) (*sql.Selector, error) {
	sel := sql.Dialect(s.drv.Dialect()).Select().From(sql.Table(m.Table))
	cols := s.columns[m.Name]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = sel.C(c.spec.Column)
	}
	sel.Select(names...)
	if q.Where != nil {
		if err := s.sg.EvalP(m.Name, q.Where, sel); err != nil {
			return nil, cruddals.NewQueryError(m.Name, "where", err)
		}
	}
	if err := s.sg.OrderBy(m.Name, q.Order, sel); err != nil {
		return nil, cruddals.NewQueryError(m.Name, "order", err)
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	if q.Offset > 0 {
		sel.Offset(q.Offset)
	}
	return sel, nil
}

// record converts a raw row to a record of m.
func (s *Store) record(m *schema.Model, row map[string]any) (store.Record, error) {
	cols := s.columns[m.Name]
	r := make(store.Record, len(cols))
	for _, c := range cols {
		v, err := sqlgraph.FromDB(c.spec, row[c.spec.Column])
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scan %s.%s: %w", m.Name, c.field.Name, err)
		}
		r[c.field.Name] = v
	}
	return r, nil
}

// get returns the record with the primary key pk, or a NotFoundError.
func (s *Store) get(ctx context.Context, m *schema.Model, pk any) (store.Record, error) {
	records, err := s.Find(ctx, m, store.Query{Where: ql.FieldEQ("pk", pk)})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, cruddals.NewNotFoundErrorWithID(m.Name, pk)
	}
	return records[0], nil
}

// Related returns the records linked to pk through the relation field.
func (s *Store) Related(ctx context.Context, m *schema.Model, pk any, name string, q store.Query) ([]store.Record, error) {
	r, err := s.relation(m, name)
	if err != nil {
		return nil, err
	}
	if r.Inverse == nil {
		return nil, fmt.Errorf("sqlstore: relation %s.%s has no inverse", m.Name, name)
	}
	where := ql.FieldEQ(r.Inverse.Name, pk)
	if q.Where != nil {
		where = ql.And(where, q.Where)
	}
	q.Where = where
	return s.Find(ctx, r.Target, q)
}

func (s *Store) relation(m *schema.Model, name string) (*schema.Relation, error) {
	f, ok := m.Field(name)
	if !ok || !f.Type.IsRelation() {
		return nil, fmt.Errorf("sqlstore: %s has no relation %q", m.Name, name)
	}
	return s.graph.Relation(m, f)
}
