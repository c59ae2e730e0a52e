package sqlstore

import (
	"context"
	"fmt"

	"github.com/syssam/cruddals/dialect"
	"github.com/syssam/cruddals/dialect/sql"
	"github.com/syssam/cruddals/dialect/sql/sqlgraph"
	ql "github.com/syssam/cruddals/querylanguage"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/store"
)

// Insert stores a new record. An absent or nil primary key is generated by
// the database.
func (s *Store) Insert(ctx context.Context, m *schema.Model, r store.Record) (store.Record, error) {
	n, err := s.node(m)
	if err != nil {
		return nil, err
	}
	var (
		pk      = m.PrimaryKey()
		key     any
		columns []string
		values  []any
	)
	for _, c := range s.columns[m.Name] {
		v, ok := r[c.field.Name]
		if !ok || (c.field == pk && v == nil) {
			continue
		}
		dv, err := sqlgraph.ToDB(c.spec, v)
		if err != nil {
			return nil, err
		}
		if c.field == pk {
			key = dv
		}
		columns = append(columns, c.spec.Column)
		values = append(values, dv)
	}
	d := s.drv.Dialect()
	ins := sql.Dialect(d).Insert(m.Table).Columns(columns...)
	if len(columns) > 0 {
		ins.Values(values...)
	}
	conn, _ := s.conn(ctx)
	switch {
	case key != nil:
		query, args := ins.Query()
		if err := conn.Exec(ctx, query, args, nil); err != nil {
			return nil, fmt.Errorf("sqlstore: insert %s: %w", m.Name, sqlgraph.WrapConstraint(err))
		}
	case d == dialect.Postgres:
		query, args := ins.Returning(n.ID.Column).Query()
		rows, err := scan(ctx, conn, query, args)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: insert %s: %w", m.Name, sqlgraph.WrapConstraint(err))
		}
		if len(rows) != 1 {
			return nil, fmt.Errorf("sqlstore: insert %s: expected one returned row, got %d", m.Name, len(rows))
		}
		key = rows[0][n.ID.Column]
	default:
		var res sql.Result
		query, args := ins.Query()
		if err := conn.Exec(ctx, query, args, &res); err != nil {
			return nil, fmt.Errorf("sqlstore: insert %s: %w", m.Name, sqlgraph.WrapConstraint(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: insert %s: %w", m.Name, err)
		}
		key = id
	}
	s.touched(ctx, m)
	pkv, err := sqlgraph.FromDB(n.ID, key)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, m, pkv)
}

// Update sets values on the record with the primary key pk.
func (s *Store) Update(ctx context.Context, m *schema.Model, pk any, values store.Record) (store.Record, error) {
	n, err := s.node(m)
	if err != nil {
		return nil, err
	}
	key, err := sqlgraph.ToDB(n.ID, pk)
	if err != nil {
		return nil, err
	}
	upd, err := s.update(m, values)
	if err != nil {
		return nil, err
	}
	if !upd.Empty() {
		upd.Where(sql.EQ(n.ID.Column, key))
		if err := s.exec(ctx, upd); err != nil {
			return nil, fmt.Errorf("sqlstore: update %s: %w", m.Name, err)
		}
		s.touched(ctx, m)
	}
	return s.get(ctx, m, pk)
}

// UpdateWhere sets values on every record matching where.
func (s *Store) UpdateWhere(ctx context.Context, m *schema.Model, where ql.P, values store.Record) (int, error) {
	n, err := s.node(m)
	if err != nil {
		return 0, err
	}
	keys, err := s.keys(ctx, m, where)
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	upd, err := s.update(m, values)
	if err != nil {
		return 0, err
	}
	if upd.Empty() {
		return len(keys), nil
	}
	upd.Where(sql.In(n.ID.Column, keys...))
	if err := s.exec(ctx, upd); err != nil {
		return 0, fmt.Errorf("sqlstore: update %s: %w", m.Name, err)
	}
	s.touched(ctx, m)
	return len(keys), nil
}

// update returns an UPDATE statement setting the columns of values.
// Primary keys are never updated.
func (s *Store) update(m *schema.Model, values store.Record) (*sql.UpdateBuilder, error) {
	upd := sql.Dialect(s.drv.Dialect()).Update(m.Table)
	pk := m.PrimaryKey()
	for _, c := range s.columns[m.Name] {
		v, ok := values[c.field.Name]
		if !ok || c.field == pk {
			continue
		}
		dv, err := sqlgraph.ToDB(c.spec, v)
		if err != nil {
			return nil, err
		}
		upd.Set(c.spec.Column, dv)
	}
	return upd, nil
}

// Delete removes the records matching where. Join rows of the removed
// records are deleted and nullable references to them are cleared.
func (s *Store) Delete(ctx context.Context, m *schema.Model, where ql.P) (int, error) {
	n, err := s.node(m)
	if err != nil {
		return 0, err
	}
	keys, err := s.keys(ctx, m, where)
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	b := sql.Dialect(s.drv.Dialect())
	for _, f := range m.Relations() {
		ed, ok := n.Edges[f.Name]
		if !ok {
			continue
		}
		switch {
		case ed.Spec.Rel == sqlgraph.M2M:
			own, _ := ed.JoinColumns()
			if err := s.exec(ctx, b.Delete(ed.Spec.Table).Where(sql.In(own, keys...))); err != nil {
				return 0, fmt.Errorf("sqlstore: delete %s.%s links: %w", m.Name, f.Name, err)
			}
		case !ed.OwnFK():
			r, err := s.graph.Relation(m, f)
			if err != nil || r.Inverse == nil || !r.Inverse.Nullable {
				continue
			}
			fk := ed.Spec.Columns[0]
			if err := s.exec(ctx, b.Update(ed.Spec.Table).SetNull(fk).Where(sql.In(fk, keys...))); err != nil {
				return 0, fmt.Errorf("sqlstore: clear %s.%s references: %w", m.Name, f.Name, err)
			}
		}
	}
	if err := s.exec(ctx, b.Delete(m.Table).Where(sql.In(n.ID.Column, keys...))); err != nil {
		return 0, fmt.Errorf("sqlstore: delete %s: %w", m.Name, err)
	}
	s.touched(ctx, m)
	return len(keys), nil
}

// keys returns the raw primary keys of the records matching where.
func (s *Store) keys(ctx context.Context, m *schema.Model, where ql.P) ([]any, error) {
	n, err := s.node(m)
	if err != nil {
		return nil, err
	}
	sel := sql.Dialect(s.drv.Dialect()).Select().From(sql.Table(m.Table))
	sel.Select(sel.C(n.ID.Column))
	if where != nil {
		if err := s.sg.EvalP(m.Name, where, sel); err != nil {
			return nil, err
		}
	}
	query, args := sel.Query()
	conn, _ := s.conn(ctx)
	rows, err := scan(ctx, conn, query, args)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select %s keys: %w", m.Name, err)
	}
	keys := make([]any, len(rows))
	for i, r := range rows {
		keys[i] = r[n.ID.Column]
	}
	return keys, nil
}

func (s *Store) exec(ctx context.Context, q sql.Querier) error {
	conn, _ := s.conn(ctx)
	query, args := q.Query()
	return sqlgraph.WrapConstraint(conn.Exec(ctx, query, args, nil))
}
