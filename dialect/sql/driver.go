package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/syssam/cruddals/dialect"
)

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the options of Driver.BeginTx.
	TxOptions = sql.TxOptions
	// Rows wraps the rows filled by Query.
	Rows struct{ ColumnScanner }
)

// ExecQuerier is implemented by *sql.DB and *sql.Tx.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ColumnScanner is the part of *sql.Rows used to read query results.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// Conn adapts an ExecQuerier to dialect.ExecQuerier. Arguments must be
// a []any.
type Conn struct {
	ExecQuerier
}

func argList(args any) ([]any, error) {
	argv, ok := args.([]any)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	return argv, nil
}

// Exec runs a statement. v is nil or a *sql.Result receiving its result.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, err := argList(args)
	if err != nil {
		return err
	}
	res, ok := v.(*sql.Result)
	if v != nil && !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
	}
	r, err := c.ExecContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if res != nil {
		*res = r
	}
	return nil
}

// Query runs a query whose rows are stored in v, a *Rows.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	rows, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	r, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	rows.ColumnScanner = r
	return nil
}

// Driver is the dialect.Driver of a *sql.DB.
type Driver struct {
	Conn
	name string
}

var _ dialect.Driver = (*Driver)(nil)

// Open opens a database with the database/sql driver registered under
// name.
func Open(name, source string) (*Driver, error) {
	db, err := sql.Open(name, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(name, db), nil
}

// OpenDB wraps an opened database. name is the database/sql driver name.
func OpenDB(name string, db *sql.DB) *Driver {
	return &Driver{Conn: Conn{db}, name: name}
}

// DB returns the wrapped database.
func (d *Driver) DB() *sql.DB { return d.ExecQuerier.(*sql.DB) }

// Dialect resolves the driver name to a dialect. Names carrying a
// dialect prefix, like "sqlite3" or "postgres-otel", resolve to it.
func (d *Driver) Dialect() string {
	if d.name == "pgx" {
		return dialect.Postgres
	}
	for _, name := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(d.name, name) {
			return name
		}
	}
	return d.name
}

func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Conn: Conn{tx}, Tx: tx}, nil
}

func (d *Driver) Close() error { return d.DB().Close() }

// Tx is the dialect.Tx of a *sql.Tx.
type Tx struct {
	Conn
	driver.Tx
}

// ScanMaps reads every row into a map keyed by column name, holding the
// values as the driver produced them, and closes rows.
func ScanMaps(rows ColumnScanner) ([]map[string]any, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(columns))
		for i, c := range columns {
			m[c] = values[i]
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ScanInt reads the single integer of a result, such as a COUNT(*), and
// closes rows. An empty result is sql.ErrNoRows.
func ScanInt(rows ColumnScanner) (int, error) {
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, sql.ErrNoRows
	}
	var n int
	if err := rows.Scan(&n); err != nil {
		return 0, err
	}
	return n, rows.Err()
}
