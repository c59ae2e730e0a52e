package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syssam/cruddals/dialect"
	"github.com/syssam/cruddals/dialect/sql"
	"github.com/syssam/cruddals/schema"
)

// MigrateOption configures a Migrate.
type MigrateOption func(*Migrate)

// WithLogger sets the logger of executed statements.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(m *Migrate) {
		m.logger = l
	}
}

// WithForeignKeys enables or disables foreign-key constraints. Enabled by default.
func WithForeignKeys(b bool) MigrateOption {
	return func(m *Migrate) {
		m.fks = b
	}
}

// Migrate creates missing tables. Existing tables are left untouched.
type Migrate struct {
	drv    dialect.Driver
	logger *slog.Logger
	fks    bool
}

// NewMigrate returns a Migrate running on drv.
func NewMigrate(drv dialect.Driver, opts ...MigrateOption) *Migrate {
	m := &Migrate{drv: drv, logger: slog.Default(), fks: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates the tables of every model in g and its join tables.
func Create(ctx context.Context, drv dialect.Driver, g *schema.Graph, opts ...MigrateOption) error {
	tables, err := NewTables(g)
	if err != nil {
		return err
	}
	return NewMigrate(drv, opts...).Create(ctx, tables...)
}

// Create creates the given tables in one transaction. SQLite declares
// foreign keys inline; other dialects add them once all new tables exist.
func (m *Migrate) Create(ctx context.Context, tables ...*Table) (err error) {
	problems := Check(tables)
	if err := problems.Err(); err != nil {
		return fmt.Errorf("schema: invalid tables: %w", err)
	}
	for _, w := range problems.Warnings() {
		m.logger.WarnContext(ctx, "schema: table definition", "table", w.Table, "problem", w.Message)
	}
	d := m.drv.Dialect()
	tx, err := m.drv.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}
	}()
	var created []*Table
	for _, t := range tables {
		exists, err := m.tableExists(ctx, tx, t.Name)
		if err != nil {
			return err
		}
		if exists {
			m.logger.DebugContext(ctx, "migrate: table exists", "table", t.Name)
			continue
		}
		query, err := t.createQuery(d, m.fks && d == dialect.SQLite)
		if err != nil {
			return err
		}
		if err := m.exec(ctx, tx, query); err != nil {
			return fmt.Errorf("schema: create table %q: %w", t.Name, err)
		}
		created = append(created, t)
	}
	if m.fks && d != dialect.SQLite {
		for _, t := range created {
			for _, fk := range t.ForeignKeys {
				if err := m.exec(ctx, tx, fk.addQuery(d, t)); err != nil {
					return fmt.Errorf("schema: add foreign key %q: %w", fk.Symbol, err)
				}
			}
		}
	}
	return tx.Commit()
}

func (m *Migrate) exec(ctx context.Context, conn dialect.ExecQuerier, query string) error {
	m.logger.InfoContext(ctx, "migrate", "query", query)
	return conn.Exec(ctx, query, []any{}, nil)
}

func (m *Migrate) tableExists(ctx context.Context, conn dialect.ExecQuerier, name string) (bool, error) {
	b := sql.Dialect(m.drv.Dialect())
	var s *sql.Selector
	switch m.drv.Dialect() {
	case dialect.SQLite:
		s = b.Select().Count().From(sql.Table("sqlite_master")).
			Where(sql.And(sql.EQ("type", "table"), sql.EQ("name", name)))
	case dialect.MySQL:
		s = b.Select().Count().From(sql.Table("information_schema.tables")).
			Where(sql.And(
				sql.P(func(b *sql.Builder) { b.Ident("table_schema").WriteString(" = (SELECT DATABASE())") }),
				sql.EQ("table_name", name),
			))
	default:
		s = b.Select().Count().From(sql.Table("information_schema.tables")).
			Where(sql.And(
				sql.P(func(b *sql.Builder) { b.Ident("table_schema").WriteString(" = CURRENT_SCHEMA()") }),
				sql.EQ("table_name", name),
			))
	}
	query, args := s.Query()
	var rows sql.Rows
	if err := conn.Query(ctx, query, args, &rows); err != nil {
		return false, err
	}
	n, err := sql.ScanInt(rows)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// createQuery returns the CREATE TABLE statement of t.
func (t *Table) createQuery(d string, inlineFKs bool) (string, error) {
	b := sql.NewBuilder(d)
	b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(t.Name).WriteString(" (")
	inlinePK := false
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		typ, err := ColumnType(d, c.Type)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", c.Name, err)
		}
		b.Ident(c.Name).Pad().WriteString(typ)
		switch {
		case c.Increment && d == dialect.SQLite:
			b.WriteString(" NOT NULL PRIMARY KEY AUTOINCREMENT")
			inlinePK = true
			continue
		case c.Increment && d == dialect.Postgres:
			b.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
		case c.Increment && d == dialect.MySQL:
			b.WriteString(" NOT NULL AUTO_INCREMENT")
			continue
		}
		if c.Nullable {
			b.WriteString(" NULL")
		} else {
			b.WriteString(" NOT NULL")
		}
		if c.Unique {
			b.WriteString(" UNIQUE")
		}
	}
	if len(t.PrimaryKey) > 0 && !inlinePK {
		b.WriteString(", PRIMARY KEY (")
		for i, c := range t.PrimaryKey {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c.Name)
		}
		b.WriteByte(')')
	}
	if inlineFKs {
		for _, fk := range t.ForeignKeys {
			b.WriteString(", ")
			fk.constraint(b)
		}
	}
	b.WriteByte(')')
	if d == dialect.MySQL {
		b.WriteString(" CHARSET utf8mb4 COLLATE utf8mb4_bin")
	}
	return b.String(), nil
}

func (fk *ForeignKey) addQuery(d string, t *Table) string {
	b := sql.NewBuilder(d)
	b.WriteString("ALTER TABLE ").Ident(t.Name).WriteString(" ADD ")
	fk.constraint(b)
	return b.String()
}

func (fk *ForeignKey) constraint(b *sql.Builder) {
	b.WriteString("CONSTRAINT ").Ident(fk.Symbol).WriteString(" FOREIGN KEY (")
	for i, c := range fk.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c.Name)
	}
	b.WriteString(") REFERENCES ").Ident(fk.RefTable.Name).WriteString(" (")
	for i, c := range fk.RefColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c.Name)
	}
	b.WriteByte(')')
	if fk.OnDelete != NoAction {
		b.WriteString(" ON DELETE ").WriteString(string(fk.OnDelete))
	}
}
