package dialect

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
)

// Dialect names. The names double as database/sql driver names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. v is nil or a
	// *sql.Result to fill.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows into v, a *sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the
// stores that run on a SQL database.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	driver.Tx
}

// Debug returns a driver that logs every operation at debug level with
// the given logger, or slog.Default when nil.
func Debug(d Driver, logger *slog.Logger) Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebugDriver{Driver: d, log: logger}
}

// DebugDriver is a driver that logs all driver operations.
type DebugDriver struct {
	Driver
	log *slog.Logger
}

// Exec logs its params and calls the underlying driver Exec method.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "driver.Exec", "query", query, "args", fmt.Sprint(args))
	return d.Driver.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying driver Query method.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "driver.Query", "query", query, "args", fmt.Sprint(args))
	return d.Driver.Query(ctx, query, args, v)
}

// Tx adds a log-id for the transaction and calls the underlying driver Tx command.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.log.DebugContext(ctx, "driver.Tx: started")
	return &DebugTx{Tx: tx, log: d.log, ctx: ctx}, nil
}

// DebugTx is a transaction implementation that logs all transaction operations.
type DebugTx struct {
	Tx
	log *slog.Logger
	ctx context.Context
}

// Exec logs its params and calls the underlying transaction Exec method.
func (d *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "Tx.Exec", "query", query, "args", fmt.Sprint(args))
	return d.Tx.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying transaction Query method.
func (d *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "Tx.Query", "query", query, "args", fmt.Sprint(args))
	return d.Tx.Query(ctx, query, args, v)
}

// Commit logs this step and calls the underlying transaction Commit method.
func (d *DebugTx) Commit() error {
	d.log.DebugContext(d.ctx, "Tx.Commit")
	return d.Tx.Commit()
}

// Rollback logs this step and calls the underlying transaction Rollback method.
func (d *DebugTx) Rollback() error {
	d.log.DebugContext(d.ctx, "Tx.Rollback")
	return d.Tx.Rollback()
}
