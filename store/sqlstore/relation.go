package sqlstore

import (
	"context"
	"fmt"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/dialect/sql"
	"github.com/syssam/cruddals/dialect/sql/sqlgraph"
	"github.com/syssam/cruddals/schema"
)

// link is a relation of one stored record, resolved for writing.
type link struct {
	rel  *schema.Relation
	edge *sqlgraph.Edge
	from *sqlgraph.Node
	pk   any   // Raw key of the record.
	keys []any // Raw keys of the related records, deduplicated.
}

func (s *Store) link(ctx context.Context, m *schema.Model, pk any, name string, keys []any) (*link, error) {
	r, err := s.relation(m, name)
	if err != nil {
		return nil, err
	}
	n, err := s.node(m)
	if err != nil {
		return nil, err
	}
	ed, ok := n.Edges[name]
	if !ok {
		return nil, fmt.Errorf("sqlstore: relation %s.%s is not stored", m.Name, name)
	}
	l := &link{rel: r, edge: ed, from: n}
	if l.pk, err = sqlgraph.ToDB(n.ID, pk); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		dk, err := sqlgraph.ToDB(ed.To.ID, k)
		if err != nil {
			return nil, cruddals.NewRelationResolutionError(m.Name+"."+name, err)
		}
		if k := fmt.Sprint(dk); !seen[k] {
			seen[k] = true
			l.keys = append(l.keys, dk)
		}
	}
	if ed.Unique() && len(l.keys) > 1 {
		return nil, fmt.Errorf("sqlstore: relation %s.%s links at most one record, got %d", m.Name, name, len(l.keys))
	}
	if _, err := s.get(ctx, m, pk); err != nil {
		return nil, err
	}
	return l, nil
}

// exist fails with a NotFoundError unless every key of l names a stored
// record of the relation target.
func (s *Store) exist(ctx context.Context, l *link) error {
	if len(l.keys) == 0 {
		return nil
	}
	to := l.edge.To
	sel := sql.Dialect(s.drv.Dialect()).Select(to.ID.Column).From(sql.Table(to.Table)).Where(sql.In(to.ID.Column, l.keys...))
	query, args := sel.Query()
	conn, _ := s.conn(ctx)
	rows, err := scan(ctx, conn, query, args)
	if err != nil {
		return fmt.Errorf("sqlstore: select %s keys: %w", l.rel.Target.Name, err)
	}
	found := make(map[string]bool, len(rows))
	for _, r := range rows {
		found[fmt.Sprint(r[to.ID.Column])] = true
	}
	for _, k := range l.keys {
		if !found[fmt.Sprint(k)] {
			return cruddals.NewNotFoundErrorWithID(l.rel.Target.Name, k)
		}
	}
	return nil
}

// AddRelated links the records with the given keys. Links that already
// exist are kept.
func (s *Store) AddRelated(ctx context.Context, m *schema.Model, pk any, name string, keys ...any) error {
	l, err := s.link(ctx, m, pk, name, keys)
	if err != nil {
		return err
	}
	if err := s.exist(ctx, l); err != nil {
		return err
	}
	if err := s.add(ctx, l); err != nil {
		return fmt.Errorf("sqlstore: add %s.%s: %w", m.Name, name, err)
	}
	s.touched(ctx, m)
	return nil
}

func (s *Store) add(ctx context.Context, l *link) error {
	if len(l.keys) == 0 {
		return nil
	}
	b := sql.Dialect(s.drv.Dialect())
	ed := l.edge
	switch {
	case ed.Spec.Rel == sqlgraph.M2M:
		own, other := ed.JoinColumns()
		sel := b.Select(other).From(sql.Table(ed.Spec.Table)).Where(sql.And(sql.EQ(own, l.pk), sql.In(other, l.keys...)))
		query, args := sel.Query()
		conn, _ := s.conn(ctx)
		rows, err := scan(ctx, conn, query, args)
		if err != nil {
			return err
		}
		linked := make(map[string]bool, len(rows))
		for _, r := range rows {
			linked[fmt.Sprint(r[other])] = true
		}
		ins := b.Insert(ed.Spec.Table).Columns(own, other)
		var n int
		for _, k := range l.keys {
			if !linked[fmt.Sprint(k)] {
				ins.Values(l.pk, k)
				n++
			}
		}
		if n == 0 {
			return nil
		}
		return s.exec(ctx, ins)
	case ed.OwnFK():
		return s.exec(ctx, b.Update(l.from.Table).Set(ed.Spec.Columns[0], l.keys[0]).Where(sql.EQ(l.from.ID.Column, l.pk)))
	default:
		to := ed.To
		if ed.Unique() {
			// The previous record of a one-to-one link is released first.
			if err := s.release(ctx, l, sql.NEQ(to.ID.Column, l.keys[0])); err != nil {
				return err
			}
		}
		return s.exec(ctx, b.Update(to.Table).Set(ed.Spec.Columns[0], l.pk).Where(sql.In(to.ID.Column, l.keys...)))
	}
}

// RemoveRelated unlinks the records with the given keys. Unlinking a
// record that holds a non-nullable reference fails.
func (s *Store) RemoveRelated(ctx context.Context, m *schema.Model, pk any, name string, keys ...any) error {
	l, err := s.link(ctx, m, pk, name, keys)
	if err != nil {
		return err
	}
	if len(l.keys) == 0 {
		return nil
	}
	b := sql.Dialect(s.drv.Dialect())
	ed := l.edge
	switch {
	case ed.Spec.Rel == sqlgraph.M2M:
		own, other := ed.JoinColumns()
		err = s.exec(ctx, b.Delete(ed.Spec.Table).Where(sql.And(sql.EQ(own, l.pk), sql.In(other, l.keys...))))
	case ed.OwnFK():
		if !l.rel.Field.Nullable {
			return fmt.Errorf("sqlstore: relation %s.%s is not nullable", m.Name, name)
		}
		fk := ed.Spec.Columns[0]
		err = s.exec(ctx, b.Update(l.from.Table).SetNull(fk).Where(sql.And(sql.EQ(l.from.ID.Column, l.pk), sql.In(fk, l.keys...))))
	default:
		err = s.release(ctx, l, sql.In(ed.To.ID.Column, l.keys...))
	}
	if err != nil {
		return fmt.Errorf("sqlstore: remove %s.%s: %w", m.Name, name, err)
	}
	s.touched(ctx, m)
	return nil
}

// release clears the reference to l.pk held by the related records
// matching p, or by all of them when p is nil.
func (s *Store) release(ctx context.Context, l *link, p *sql.Predicate) error {
	to := l.edge.To
	fk := l.edge.Spec.Columns[0]
	where := sql.EQ(fk, l.pk)
	if p != nil {
		where = sql.And(where, p)
	}
	if l.rel.Inverse == nil || !l.rel.Inverse.Nullable {
		sel := sql.Dialect(s.drv.Dialect()).Select().Count().From(sql.Table(to.Table)).Where(where)
		query, args := sel.Query()
		conn, _ := s.conn(ctx)
		var rows sql.Rows
		if err := conn.Query(ctx, query, args, &rows); err != nil {
			return err
		}
		n, err := sql.ScanInt(rows)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("sqlstore: %s references are not nullable", l.rel.Target.Name)
		}
		return nil
	}
	return s.exec(ctx, sql.Dialect(s.drv.Dialect()).Update(to.Table).SetNull(fk).Where(where))
}

// SetRelated replaces the linked records by the records with the given
// keys.
func (s *Store) SetRelated(ctx context.Context, m *schema.Model, pk any, name string, keys ...any) error {
	l, err := s.link(ctx, m, pk, name, keys)
	if err != nil {
		return err
	}
	if err := s.exist(ctx, l); err != nil {
		return err
	}
	b := sql.Dialect(s.drv.Dialect())
	ed := l.edge
	switch {
	case ed.Spec.Rel == sqlgraph.M2M:
		own, other := ed.JoinColumns()
		del := b.Delete(ed.Spec.Table).Where(sql.EQ(own, l.pk))
		if len(l.keys) > 0 {
			del.Where(sql.NotIn(other, l.keys...))
		}
		err = s.exec(ctx, del)
	case ed.OwnFK():
		if len(l.keys) == 0 {
			if !l.rel.Field.Nullable {
				return fmt.Errorf("sqlstore: relation %s.%s is not nullable", m.Name, name)
			}
			err = s.exec(ctx, b.Update(l.from.Table).SetNull(ed.Spec.Columns[0]).Where(sql.EQ(l.from.ID.Column, l.pk)))
		}
	default:
		var keep *sql.Predicate
		if len(l.keys) > 0 {
			keep = sql.NotIn(ed.To.ID.Column, l.keys...)
		}
		err = s.release(ctx, l, keep)
	}
	if err == nil {
		err = s.add(ctx, l)
	}
	if err != nil {
		return fmt.Errorf("sqlstore: set %s.%s: %w", m.Name, name, err)
	}
	s.touched(ctx, m)
	return nil
}
