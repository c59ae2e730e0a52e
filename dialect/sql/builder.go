package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/cruddals/dialect"
)

// Querier wraps the Query method implemented by the statement builders.
type Querier interface {
	// Query returns the statement text and its arguments.
	Query() (string, []any)
}

// Builder writes SQL text with dialect-specific quoting and placeholders.
// Nested statements are written into the same Builder, which keeps the
// placeholder numbering of Postgres consistent across subqueries.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
}

// NewBuilder returns a Builder for the given dialect.
func NewBuilder(d string) *Builder {
	return &Builder{dialect: d}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString appends s to the statement.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends c to the statement.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad adds a space to the statement.
func (b *Builder) Pad() *Builder { return b.WriteByte(' ') }

// Quote quotes a single identifier.
func (b *Builder) Quote(ident string) string {
	q := `"`
	if b.dialect == dialect.MySQL {
		q = "`"
	}
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// Ident writes an identifier. Dotted identifiers are quoted per part,
// "*" and raw expressions (containing a parenthesis or a space) are
// written as is.
func (b *Builder) Ident(s string) *Builder {
	switch {
	case s == "*" || strings.ContainsAny(s, "( "):
		return b.WriteString(s)
	case strings.Contains(s, "."):
		parts := strings.Split(s, ".")
		for i, p := range parts {
			if i > 0 {
				b.WriteByte('.')
			}
			if p == "*" {
				b.WriteString(p)
				continue
			}
			b.WriteString(b.Quote(p))
		}
		return b
	}
	return b.WriteString(b.Quote(s))
}

// IdentComma writes a comma-separated list of identifiers.
func (b *Builder) IdentComma(cols ...string) *Builder {
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
	return b
}

// Arg writes a placeholder for v and records the argument.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		return b.WriteString("$" + strconv.Itoa(len(b.args)))
	}
	return b.WriteByte('?')
}

// Args writes a comma-separated list of placeholders.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// Nested writes f wrapped in parentheses.
func (b *Builder) Nested(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	return b.WriteByte(')')
}

// Sub writes the selector as a parenthesized subquery.
func (b *Builder) Sub(s *Selector) *Builder {
	return b.Nested(s.build)
}

// Query returns the written statement and its arguments.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// String returns the written statement.
func (b *Builder) String() string { return b.sb.String() }

// DialectBuilder prefixes all statement builders with a dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Select returns a Selector for the given columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{dialect: d.dialect, columns: columns}
}

// Table returns a table reference for selectors.
func (d *DialectBuilder) Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// Insert returns an InsertBuilder for the table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{dialect: d.dialect, table: table}
}

// Update returns an UpdateBuilder for the table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d.dialect, table: table}
}

// Delete returns a DeleteBuilder for the table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{dialect: d.dialect, table: table}
}

// SelectTable is a table reference in a FROM clause.
type SelectTable struct {
	name string
	as   string
}

// Table returns a table reference.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As sets the alias of the table.
func (t *SelectTable) As(alias string) *SelectTable {
	t.as = alias
	return t
}

// C returns the column qualified with the table alias or name.
func (t *SelectTable) C(column string) string {
	return t.ref() + "." + column
}

// Name returns the table name.
func (t *SelectTable) Name() string { return t.name }

func (t *SelectTable) ref() string {
	if t.as != "" {
		return t.as
	}
	return t.name
}

type orderTerm struct {
	expr func(*Builder)
	desc bool
}

// Selector is a builder for SELECT statements.
type Selector struct {
	dialect  string
	columns  []string
	expr     func(*Builder)
	distinct bool
	from     *SelectTable
	where    *Predicate
	order    []orderTerm
	limit    *int
	offset   *int
}

// Select returns a Selector without a dialect. Prefer Dialect(d).Select.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// Dialect returns the dialect of the selector.
func (s *Selector) Dialect() string { return s.dialect }

// Select replaces the selected columns.
func (s *Selector) Select(columns ...string) *Selector {
	s.columns, s.expr = columns, nil
	return s
}

// SelectExpr replaces the selection with the expression written by f.
func (s *Selector) SelectExpr(f func(*Builder)) *Selector {
	s.columns, s.expr = nil, f
	return s
}

// Distinct adds the DISTINCT keyword.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// Count sets the selection to COUNT(*).
func (s *Selector) Count() *Selector {
	s.columns, s.expr = []string{"COUNT(*)"}, nil
	return s
}

// From sets the source table.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// Table returns the source table.
func (s *Selector) Table() *SelectTable { return s.from }

// C returns the column qualified with the source table.
func (s *Selector) C(column string) string {
	if s.from == nil {
		return column
	}
	return s.from.C(column)
}

// Where ANDs p with the current condition.
func (s *Selector) Where(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.where == nil {
		s.where = p
		return s
	}
	s.where = And(s.where, p)
	return s
}

// P returns the current condition.
func (s *Selector) P() *Predicate { return s.where }

// OrderBy appends a sort on a column.
func (s *Selector) OrderBy(column string, desc bool) *Selector {
	s.order = append(s.order, orderTerm{expr: func(b *Builder) { b.Ident(column) }, desc: desc})
	return s
}

// OrderExpr appends a sort on an expression written by f.
func (s *Selector) OrderExpr(f func(*Builder), desc bool) *Selector {
	s.order = append(s.order, orderTerm{expr: f, desc: desc})
	return s
}

// Limit sets the maximum number of rows.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the number of rows to skip.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Query returns the statement and its arguments.
func (s *Selector) Query() (string, []any) {
	b := NewBuilder(s.dialect)
	s.build(b)
	return b.Query()
}

func (s *Selector) build(b *Builder) {
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	switch {
	case s.expr != nil:
		s.expr(b)
	case len(s.columns) == 0:
		b.WriteByte('*')
	default:
		b.IdentComma(s.columns...)
	}
	if s.from != nil {
		b.WriteString(" FROM ").Ident(s.from.name)
		if s.from.as != "" {
			b.WriteString(" AS ").Ident(s.from.as)
		}
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.build(b)
	}
	for i, o := range s.order {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		o.expr(b)
		if o.desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	switch {
	case s.limit != nil:
		b.WriteString(" LIMIT " + strconv.Itoa(*s.limit))
	case s.offset != nil && b.dialect == dialect.MySQL:
		b.WriteString(" LIMIT 18446744073709551615")
	case s.offset != nil && b.dialect == dialect.SQLite:
		b.WriteString(" LIMIT -1")
	}
	if s.offset != nil {
		b.WriteString(" OFFSET " + strconv.Itoa(*s.offset))
	}
}

// InsertBuilder is a builder for INSERT statements.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	values    [][]any
	returning []string
}

// Columns sets the inserted columns.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = columns
	return i
}

// Values appends a row of values.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Returning sets the RETURNING clause. It is ignored by MySQL.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Query returns the statement and its arguments.
func (i *InsertBuilder) Query() (string, []any) {
	b := NewBuilder(i.dialect)
	b.WriteString("INSERT INTO ").Ident(i.table)
	switch {
	case len(i.columns) > 0:
		b.WriteString(" (").IdentComma(i.columns...).WriteString(") VALUES ")
		for j, row := range i.values {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('(').Args(row...).WriteByte(')')
		}
	case i.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}
	if len(i.returning) > 0 && i.dialect != dialect.MySQL {
		b.WriteString(" RETURNING ").IdentComma(i.returning...)
	}
	return b.Query()
}

// UpdateBuilder is a builder for UPDATE statements.
type UpdateBuilder struct {
	dialect string
	table   string
	columns []string
	values  []any
	where   *Predicate
}

// Set sets a column to a value. A nil value sets NULL.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// SetNull sets a column to NULL.
func (u *UpdateBuilder) SetNull(column string) *UpdateBuilder {
	return u.Set(column, nil)
}

// Empty reports whether the builder has no columns to set.
func (u *UpdateBuilder) Empty() bool { return len(u.columns) == 0 }

// Where ANDs p with the current condition.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if u.where == nil {
		u.where = p
	} else {
		u.where = And(u.where, p)
	}
	return u
}

// Query returns the statement and its arguments.
func (u *UpdateBuilder) Query() (string, []any) {
	b := NewBuilder(u.dialect)
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c).WriteString(" = ")
		if u.values[i] == nil {
			b.WriteString("NULL")
		} else {
			b.Arg(u.values[i])
		}
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where.build(b)
	}
	return b.Query()
}

// DeleteBuilder is a builder for DELETE statements.
type DeleteBuilder struct {
	dialect string
	table   string
	where   *Predicate
}

// Where ANDs p with the current condition.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if d.where == nil {
		d.where = p
	} else {
		d.where = And(d.where, p)
	}
	return d
}

// Query returns the statement and its arguments.
func (d *DeleteBuilder) Query() (string, []any) {
	b := NewBuilder(d.dialect)
	b.WriteString("DELETE FROM ").Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ")
		d.where.build(b)
	}
	return b.Query()
}

var (
	_ Querier = (*Selector)(nil)
	_ Querier = (*InsertBuilder)(nil)
	_ Querier = (*UpdateBuilder)(nil)
	_ Querier = (*DeleteBuilder)(nil)
)
