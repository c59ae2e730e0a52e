// Package sqlstore implements store.Store on SQL databases.
//
//	drv, err := sql.Open(dialect.SQLite, "file:shop.db?_pragma=foreign_keys(1)")
//	if err != nil {
//		return err
//	}
//	s, err := sqlstore.New(drv, graph, sqlstore.WithCache(cache, time.Minute))
//
// Predicates and sort terms are evaluated by the sqlgraph package. Values
// are converted to their column representation with sqlgraph.ToDB and
// read back with sqlgraph.FromDB.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/dialect"
	"github.com/syssam/cruddals/dialect/sql/sqlgraph"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
	"github.com/syssam/cruddals/store"
)

// Option configures a Store.
type Option func(*Store)

// WithCache caches the rows read outside of transactions. Entries expire
// after ttl, zero meaning never, and are invalidated by writes to the
// table or to the tables of its relations.
func WithCache(c cruddals.Cache, ttl time.Duration) Option {
	return func(s *Store) {
		s.cache, s.ttl = c, ttl
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Store is a store.Store backed by a SQL driver.
type Store struct {
	drv    dialect.Driver
	graph  *schema.Graph
	sg     *sqlgraph.Schema
	cache  cruddals.Cache
	ttl    time.Duration
	logger *slog.Logger

	columns  map[string][]column
	affected map[string][]string
}

// column is a field stored on the model table.
type column struct {
	field *field.Descriptor
	spec  *sqlgraph.FieldSpec
}

var _ store.Store = (*Store)(nil)

// New returns a store of the models in g.
func New(drv dialect.Driver, g *schema.Graph, opts ...Option) (*Store, error) {
	sg, err := sqlgraph.New(g)
	if err != nil {
		return nil, err
	}
	s := &Store{
		drv:      drv,
		graph:    g,
		sg:       sg,
		logger:   slog.Default(),
		columns:  make(map[string][]column, len(g.Models)),
		affected: make(map[string][]string, len(g.Models)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, m := range g.Models {
		n, _ := sg.Node(m.Name)
		for _, f := range m.Columns() {
			c := column{field: f, spec: n.Fields[f.Name]}
			if f.Type.IsRelation() {
				c.spec = &sqlgraph.FieldSpec{Column: f.Column, Type: field.TypeInt64}
				if ed, ok := n.Edges[f.Name]; ok {
					c.spec = &sqlgraph.FieldSpec{Column: f.Column, Type: ed.To.ID.Type, Desc: ed.To.ID.Desc}
				}
			}
			s.columns[m.Name] = append(s.columns[m.Name], c)
		}
		seen := map[string]bool{m.Table: true}
		s.affected[m.Name] = []string{m.Table}
		for _, ed := range n.Edges {
			if !seen[ed.To.Table] {
				seen[ed.To.Table] = true
				s.affected[m.Name] = append(s.affected[m.Name], ed.To.Table)
			}
		}
	}
	return s, nil
}

// Dialect returns the dialect of the underlying driver.
func (s *Store) Dialect() string { return s.drv.Dialect() }

// Schema returns the SQL schema of the graph.
func (s *Store) Schema() *sqlgraph.Schema { return s.sg }

// Close closes the underlying driver.
func (s *Store) Close() error { return s.drv.Close() }

func (s *Store) node(m *schema.Model) (*sqlgraph.Node, error) {
	n, ok := s.sg.Node(m.Name)
	if !ok {
		return nil, fmt.Errorf("sqlstore: model %q is not part of the store", m.Name)
	}
	return n, nil
}

// Tx is a store transaction. Caches are invalidated on commit.
type Tx struct {
	store *Store
	tx    dialect.Tx

	mu     sync.Mutex
	tables map[string]bool
	done   bool
}

// Tx starts a transaction.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: starting a transaction: %w", err)
	}
	return &Tx{store: s, tx: tx, tables: make(map[string]bool)}, nil
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return fmt.Errorf("sqlstore: transaction has already been committed or rolled back")
	}
	tx.done = true
	if err := tx.tx.Commit(); err != nil {
		return err
	}
	tables := make([]string, 0, len(tx.tables))
	for t := range tx.tables {
		tables = append(tables, t)
	}
	tx.store.invalidate(context.Background(), tables...)
	return nil
}

// Rollback rolls the transaction back.
func (tx *Tx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return fmt.Errorf("sqlstore: transaction has already been committed or rolled back")
	}
	tx.done = true
	return tx.tx.Rollback()
}

func (tx *Tx) Savepoint(ctx context.Context, name string) error {
	return tx.exec(ctx, "SAVEPOINT ", name)
}

func (tx *Tx) RollbackTo(ctx context.Context, name string) error {
	return tx.exec(ctx, "ROLLBACK TO SAVEPOINT ", name)
}

func (tx *Tx) Release(ctx context.Context, name string) error {
	return tx.exec(ctx, "RELEASE SAVEPOINT ", name)
}

func (tx *Tx) exec(ctx context.Context, stmt, name string) error {
	if !validSavepoint(name) {
		return fmt.Errorf("sqlstore: invalid savepoint name %q", name)
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return fmt.Errorf("sqlstore: transaction has already been committed or rolled back")
	}
	if err := tx.tx.Exec(ctx, stmt+name, []any{}, nil); err != nil {
		return fmt.Errorf("sqlstore: %s%s: %w", stmt, name, err)
	}
	return nil
}

// validSavepoint reports whether name is a plain identifier that needs no
// quoting in any dialect.
func validSavepoint(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (tx *Tx) touch(tables []string) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for _, t := range tables {
		tx.tables[t] = true
	}
}

// conn returns the connection of ctx: the transaction it carries, if it
// was started by s, or the driver.
func (s *Store) conn(ctx context.Context) (dialect.ExecQuerier, *Tx) {
	if tx, ok := store.TxFromContext(ctx).(*Tx); ok && tx.store == s {
		return tx.tx, tx
	}
	return s.drv, nil
}

// touched records a write to the tables affected by a write to m.
func (s *Store) touched(ctx context.Context, m *schema.Model, extra ...string) {
	tables := append(append([]string(nil), s.affected[m.Name]...), extra...)
	if _, tx := s.conn(ctx); tx != nil {
		tx.touch(tables)
		return
	}
	s.invalidate(ctx, tables...)
}
