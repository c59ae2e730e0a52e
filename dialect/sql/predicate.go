package sql

import (
	"strings"

	"github.com/syssam/cruddals/dialect"
)

// Predicate is a boolean SQL expression. Predicates are dialect-free
// until written: quoting, placeholders and case-folding are resolved by
// the Builder they are written into.
type Predicate struct {
	fn func(*Builder)
}

// P returns a predicate written by fn.
func P(fn func(*Builder)) *Predicate {
	return &Predicate{fn: fn}
}

func (p *Predicate) build(b *Builder) { p.fn(b) }

// Query returns the predicate text for dialect d and its arguments.
func (p *Predicate) Query(d string) (string, []any) {
	b := NewBuilder(d)
	p.build(b)
	return b.Query()
}

// True returns a predicate that holds for every row.
func True() *Predicate {
	return P(func(b *Builder) { b.WriteString("1 = 1") })
}

// False returns a predicate that holds for no row.
func False() *Predicate {
	return P(func(b *Builder) { b.WriteString("1 = 0") })
}

// And joins the predicates with AND.
func And(ps ...*Predicate) *Predicate {
	switch len(ps) {
	case 0:
		return True()
	case 1:
		return ps[0]
	}
	return P(func(b *Builder) {
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p.build(b)
		}
	})
}

// Or joins the predicates with OR. The result is parenthesized.
func Or(ps ...*Predicate) *Predicate {
	switch len(ps) {
	case 0:
		return False()
	case 1:
		return ps[0]
	}
	return P(func(b *Builder) {
		b.Nested(func(b *Builder) {
			for i, p := range ps {
				if i > 0 {
					b.WriteString(" OR ")
				}
				p.build(b)
			}
		})
	})
}

// Not negates p.
func Not(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT ").Nested(p.build)
	})
}

func compare(col, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" " + op + " ").Arg(v)
	})
}

// EQ returns a "col = v" predicate.
func EQ(col string, v any) *Predicate { return compare(col, "=", v) }

// NEQ returns a "col <> v" predicate.
func NEQ(col string, v any) *Predicate { return compare(col, "<>", v) }

// GT returns a "col > v" predicate.
func GT(col string, v any) *Predicate { return compare(col, ">", v) }

// GTE returns a "col >= v" predicate.
func GTE(col string, v any) *Predicate { return compare(col, ">=", v) }

// LT returns a "col < v" predicate.
func LT(col string, v any) *Predicate { return compare(col, "<", v) }

// LTE returns a "col <= v" predicate.
func LTE(col string, v any) *Predicate { return compare(col, "<=", v) }

// ColumnsEQ returns a "c1 = c2" predicate.
func ColumnsEQ(c1, c2 string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(c1).WriteString(" = ").Ident(c2)
	})
}

// In returns a "col IN (...)" predicate. An empty list matches no row.
func In(col string, vs ...any) *Predicate {
	if len(vs) == 0 {
		return False()
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IN ").WriteByte('(').Args(vs...).WriteByte(')')
	})
}

// InValues is the typed form of In.
func InValues[T any](col string, vs ...T) *Predicate {
	args := make([]any, len(vs))
	for i := range vs {
		args[i] = vs[i]
	}
	return In(col, args...)
}

// NotIn returns a "col NOT IN (...)" predicate. An empty list matches every row.
func NotIn(col string, vs ...any) *Predicate {
	if len(vs) == 0 {
		return True()
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" NOT IN ").WriteByte('(').Args(vs...).WriteByte(')')
	})
}

// InSelect returns a "col IN (SELECT ...)" predicate.
func InSelect(col string, s *Selector) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IN ").Nested(s.build)
	})
}

// Exists returns an "EXISTS (SELECT ...)" predicate.
func Exists(s *Selector) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("EXISTS ").Nested(s.build)
	})
}

// IsNull returns a "col IS NULL" predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NULL") })
}

// NotNull returns a "col IS NOT NULL" predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NOT NULL") })
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func like(col, pattern string, fold bool) *Predicate {
	return P(func(b *Builder) {
		switch {
		case fold && b.dialect == dialect.Postgres:
			b.Ident(col).WriteString(" ILIKE ").Arg(pattern)
		case fold:
			b.WriteString("LOWER(").Ident(col).WriteString(") LIKE ").Arg(strings.ToLower(pattern))
		default:
			b.Ident(col).WriteString(" LIKE ").Arg(pattern)
		}
		if b.dialect == dialect.SQLite {
			b.WriteString(` ESCAPE '\'`)
		}
	})
}

// Contains returns a predicate matching values containing sub.
func Contains(col, sub string) *Predicate {
	return like(col, "%"+likeEscaper.Replace(sub)+"%", false)
}

// ContainsFold is the case-insensitive form of Contains.
func ContainsFold(col, sub string) *Predicate {
	return like(col, "%"+likeEscaper.Replace(sub)+"%", true)
}

// HasPrefix returns a predicate matching values starting with prefix.
func HasPrefix(col, prefix string) *Predicate {
	return like(col, likeEscaper.Replace(prefix)+"%", false)
}

// HasPrefixFold is the case-insensitive form of HasPrefix.
func HasPrefixFold(col, prefix string) *Predicate {
	return like(col, likeEscaper.Replace(prefix)+"%", true)
}

// HasSuffix returns a predicate matching values ending with suffix.
func HasSuffix(col, suffix string) *Predicate {
	return like(col, "%"+likeEscaper.Replace(suffix), false)
}

// HasSuffixFold is the case-insensitive form of HasSuffix.
func HasSuffixFold(col, suffix string) *Predicate {
	return like(col, "%"+likeEscaper.Replace(suffix), true)
}

// EqualFold returns a case-insensitive equality predicate.
func EqualFold(col, v string) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("LOWER(").Ident(col).WriteString(") = ").Arg(strings.ToLower(v))
	})
}

// Regex returns a predicate matching values against a regular expression.
// SQLite requires a regexp function registered on the connection.
func Regex(col, pattern string, fold bool) *Predicate {
	return P(func(b *Builder) {
		switch b.dialect {
		case dialect.Postgres:
			op := " ~ "
			if fold {
				op = " ~* "
			}
			b.Ident(col).WriteString(op).Arg(pattern)
		case dialect.MySQL:
			flag := "'c'"
			if fold {
				flag = "'i'"
			}
			b.WriteString("REGEXP_LIKE(").Ident(col).WriteString(", ").Arg(pattern).WriteString(", " + flag + ")")
		default:
			if fold {
				pattern = "(?i)" + pattern
			}
			b.Ident(col).WriteString(" REGEXP ").Arg(pattern)
		}
	})
}
