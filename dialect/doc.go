// Package dialect holds what the SQL store needs to know about a
// database: its dialect name and a Driver to run statements through.
//
// The dialect names are also the names the database/sql drivers register
// under, so a configuration only carries one of them:
//
//	drv, err := sql.Open(dialect.SQLite, "file:shop.db?_pragma=foreign_keys(1)")
//	st := sqlstore.New(g, dialect.Debug(drv, logger))
//
// Statements take their arguments as a []any. Exec fills an optional
// *sql.Result and Query fills a *sql.Rows. A Tx runs both inside a
// transaction that the store commits once every write of a mutation
// succeeded.
//
// dialect/sql builds the statements and wraps database/sql,
// dialect/sql/sqlgraph compiles filters over relation paths and
// dialect/sql/schema creates the tables of a model graph.
package dialect
