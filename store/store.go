// Package store defines the data-store collaborator of the CRUD layer.
//
// A Store reads and writes records of the models of one schema graph.
// Predicates and sort terms are store independent; see the querylanguage
// and order packages. Path errors in either are reported when the query
// runs.
package store

import (
	"context"

	"github.com/syssam/cruddals/order"
	ql "github.com/syssam/cruddals/querylanguage"
	"github.com/syssam/cruddals/schema"
)

// Record holds the stored values of one object keyed by field name.
// Single-valued relations hold the primary key of the related object;
// many-valued relations are loaded with Related.
type Record map[string]any

// Query selects records.
type Query struct {
	Where  ql.P         // Nil matches every record.
	Order  []order.Term // Nil keeps the store order.
	Offset int
	Limit  int // Zero means no limit.
}

// Store is the data-store collaborator.
type Store interface {
	// Count returns the number of records of m matching where.
	Count(ctx context.Context, m *schema.Model, where ql.P) (int, error)
	// Find returns the records of m selected by q.
	Find(ctx context.Context, m *schema.Model, q Query) ([]Record, error)
	// Insert stores a new record and returns it as stored.
	Insert(ctx context.Context, m *schema.Model, r Record) (Record, error)
	// Update sets the given values on the record with the primary key pk
	// and returns it as stored. A missing record is a NotFoundError.
	Update(ctx context.Context, m *schema.Model, pk any, values Record) (Record, error)
	// UpdateWhere sets the given values on every matching record and
	// returns the number of records matched.
	UpdateWhere(ctx context.Context, m *schema.Model, where ql.P, values Record) (int, error)
	// Delete removes every matching record and returns their number. Links
	// to the removed records are removed or cleared.
	Delete(ctx context.Context, m *schema.Model, where ql.P) (int, error)

	// Related returns the records linked to pk through the relation field.
	Related(ctx context.Context, m *schema.Model, pk any, field string, q Query) ([]Record, error)
	// AddRelated links the records with the given keys.
	AddRelated(ctx context.Context, m *schema.Model, pk any, field string, keys ...any) error
	// RemoveRelated unlinks the records with the given keys without
	// deleting them.
	RemoveRelated(ctx context.Context, m *schema.Model, pk any, field string, keys ...any) error
	// SetRelated replaces the linked records by the given keys.
	SetRelated(ctx context.Context, m *schema.Model, pk any, field string, keys ...any) error

	// Tx starts a transaction. Operations run in it when the context
	// carries it; see NewTxContext.
	Tx(ctx context.Context) (Tx, error)
}

// Tx is a store transaction.
type Tx interface {
	Commit() error
	Rollback() error
	// Savepoint marks the current state of the transaction under name.
	Savepoint(ctx context.Context, name string) error
	// RollbackTo undoes the writes made since the savepoint name. The
	// savepoint stays defined.
	RollbackTo(ctx context.Context, name string) error
	// Release forgets the savepoint name and keeps its writes.
	Release(ctx context.Context, name string) error
}

type txCtxKey struct{}

// NewTxContext returns a new context carrying tx.
func NewTxContext(parent context.Context, tx Tx) context.Context {
	return context.WithValue(parent, txCtxKey{}, tx)
}

// TxFromContext returns the transaction stored in ctx, or nil.
func TxFromContext(ctx context.Context) Tx {
	tx, _ := ctx.Value(txCtxKey{}).(Tx)
	return tx
}

// Keys returns the primary keys of records.
func Keys(m *schema.Model, records []Record) []any {
	pk := m.PrimaryKey().Name
	keys := make([]any, len(records))
	for i, r := range records {
		keys[i] = r[pk]
	}
	return keys
}
