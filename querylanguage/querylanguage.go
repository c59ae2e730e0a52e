// Package querylanguage provides the store-independent predicate language
// that filter trees are translated into.
//
// Predicates are expression trees over field paths and literal values.
// Field paths traverse relations with one segment per hop and are only
// resolved when a store evaluates the predicate:
//
//	querylanguage.And(
//		querylanguage.FieldContainsFold("name", "en"),
//		querylanguage.FieldPathEQ([]string{"category", "name"}, "office"),
//	)
//	// contains_fold(name, "en") && category.name == "office"
package querylanguage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// An Op represents a predicate operator.
type Op int

// Predicate operators.
const (
	OpAnd   Op = iota // logical and.
	OpOr              // logical or.
	OpNot             // logical negation.
	OpEQ              // ==
	OpNEQ             // !=
	OpGT              // >
	OpGTE             // >=
	OpLT              // <
	OpLTE             // <=
	OpIn              // within
	OpNotIn           // without
)

var ops = [...]string{
	OpAnd:   "&&",
	OpOr:    "||",
	OpNot:   "!",
	OpEQ:    "==",
	OpNEQ:   "!=",
	OpGT:    ">",
	OpGTE:   ">=",
	OpLT:    "<",
	OpLTE:   "<=",
	OpIn:    "in",
	OpNotIn: "not in",
}

// String returns the text representation of an operator.
func (o Op) String() string {
	if o >= 0 && int(o) < len(ops) {
		return ops[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// A Func represents a function expression.
type Func string

// Predicate functions.
const (
	FuncEqualFold     Func = "equal_fold"
	FuncContains      Func = "contains"
	FuncContainsFold  Func = "contains_fold"
	FuncHasPrefix     Func = "has_prefix"
	FuncHasPrefixFold Func = "has_prefix_fold"
	FuncHasSuffix     Func = "has_suffix"
	FuncHasSuffixFold Func = "has_suffix_fold"
	FuncRegex         Func = "regex"
	FuncRegexFold     Func = "regex_fold"
	FuncHasEdge       Func = "has_edge"
)

type (
	// Expr represents a query expression.
	Expr interface {
		fmt.Stringer
		expr()
	}

	// P represents an expression that returns a boolean value.
	P interface {
		Expr
		Negate() P
	}

	// UnaryExpr represents a unary expression.
	UnaryExpr struct {
		Op Op
		X  Expr
	}

	// BinaryExpr represents a binary expression.
	BinaryExpr struct {
		Op   Op
		X, Y Expr
	}

	// NaryExpr represents an n-ary expression.
	NaryExpr struct {
		Op Op
		Xs []Expr
	}

	// CallExpr represents a function call.
	CallExpr struct {
		Func Func
		Args []Expr
	}

	// Field represents a field path. Every segment but the last names a relation.
	Field struct {
		Path []string
	}

	// Edge represents a relation name.
	Edge struct {
		Name string
	}

	// Value represents a literal value.
	Value struct {
		V any
	}

	// Const is a constant predicate.
	Const bool
)

// True returns the always-true predicate, the identity of And.
func True() P { return Const(true) }

// False returns the always-false predicate, the identity of Or.
func False() P { return Const(false) }

// Not returns the negation of p.
func Not(p P) P {
	return &UnaryExpr{Op: OpNot, X: p}
}

// And returns the conjunction of the given predicates. Constant true
// operands are dropped; And() is True().
func And(ps ...P) P {
	return nary(OpAnd, Const(true), ps)
}

// Or returns the disjunction of the given predicates. Constant false
// operands are dropped; Or() is False().
func Or(ps ...P) P {
	return nary(OpOr, Const(false), ps)
}

func nary(op Op, identity Const, ps []P) P {
	xs := make([]Expr, 0, len(ps))
	for _, p := range ps {
		if c, ok := p.(Const); ok {
			if c == identity {
				continue
			}
			// Absorbing element.
			return c
		}
		xs = append(xs, p)
	}
	switch len(xs) {
	case 0:
		return identity
	case 1:
		return xs[0].(P)
	case 2:
		return &BinaryExpr{Op: op, X: xs[0], Y: xs[1]}
	}
	return &NaryExpr{Op: op, Xs: xs}
}

// F returns a field expression for the given name.
func F(name string) *Field {
	return &Field{Path: []string{name}}
}

// Path returns a field expression for the given path.
func Path(path ...string) *Field {
	return &Field{Path: path}
}

// EQ returns a predicate to check if the expressions are equal.
func EQ(x, y Expr) P { return &BinaryExpr{Op: OpEQ, X: x, Y: y} }

// NEQ returns a predicate to check if the expressions are not equal.
func NEQ(x, y Expr) P { return &BinaryExpr{Op: OpNEQ, X: x, Y: y} }

// GT returns a predicate to check if x > y.
func GT(x, y Expr) P { return &BinaryExpr{Op: OpGT, X: x, Y: y} }

// GTE returns a predicate to check if x >= y.
func GTE(x, y Expr) P { return &BinaryExpr{Op: OpGTE, X: x, Y: y} }

// LT returns a predicate to check if x < y.
func LT(x, y Expr) P { return &BinaryExpr{Op: OpLT, X: x, Y: y} }

// LTE returns a predicate to check if x <= y.
func LTE(x, y Expr) P { return &BinaryExpr{Op: OpLTE, X: x, Y: y} }

// FieldEQ returns a predicate to check if a field is equal to a given value.
func FieldEQ(name string, v any) P { return EQ(F(name), &Value{V: v}) }

// FieldNEQ returns a predicate to check if a field is not equal to a given value.
func FieldNEQ(name string, v any) P { return NEQ(F(name), &Value{V: v}) }

// FieldGT returns a predicate to check if a field is > than the given value.
func FieldGT(name string, v any) P { return GT(F(name), &Value{V: v}) }

// FieldGTE returns a predicate to check if a field is >= than the given value.
func FieldGTE(name string, v any) P { return GTE(F(name), &Value{V: v}) }

// FieldLT returns a predicate to check if a field is < than the given value.
func FieldLT(name string, v any) P { return LT(F(name), &Value{V: v}) }

// FieldLTE returns a predicate to check if a field is <= than the given value.
func FieldLTE(name string, v any) P { return LTE(F(name), &Value{V: v}) }

// FieldIn returns a predicate to check if a field is within the given values.
func FieldIn(name string, vs ...any) P {
	return &BinaryExpr{Op: OpIn, X: F(name), Y: &Value{V: vs}}
}

// FieldNotIn returns a predicate to check if a field is not within the given values.
func FieldNotIn(name string, vs ...any) P {
	return &BinaryExpr{Op: OpNotIn, X: F(name), Y: &Value{V: vs}}
}

// FieldNil returns a predicate to check if a field is nil (null in databases).
func FieldNil(name string) P { return EQ(F(name), &Value{}) }

// FieldNotNil returns a predicate to check if a field is not nil.
func FieldNotNil(name string) P { return NEQ(F(name), &Value{}) }

// FieldEqualFold returns a predicate to check if a field is equal to the given string under case-folding.
func FieldEqualFold(name, v string) P { return call(FuncEqualFold, F(name), v) }

// FieldContains returns a predicate to check if a field contains the given substring.
func FieldContains(name, v string) P { return call(FuncContains, F(name), v) }

// FieldContainsFold returns a predicate to check if a field contains the given substring under case-folding.
func FieldContainsFold(name, v string) P { return call(FuncContainsFold, F(name), v) }

// FieldHasPrefix returns a predicate to check if a field starts with the given prefix.
func FieldHasPrefix(name, v string) P { return call(FuncHasPrefix, F(name), v) }

// FieldHasSuffix returns a predicate to check if a field ends with the given suffix.
func FieldHasSuffix(name, v string) P { return call(FuncHasSuffix, F(name), v) }

// Call returns a function predicate over a field expression.
func Call(fn Func, x *Field, v any) P { return call(fn, x, v) }

func call(fn Func, x Expr, v any) P {
	return &CallExpr{Func: fn, Args: []Expr{x, &Value{V: v}}}
}

// HasEdge returns a predicate to check if a relation has any neighbor.
func HasEdge(name string) P {
	return &CallExpr{Func: FuncHasEdge, Args: []Expr{&Edge{Name: name}}}
}

// HasEdgeWith returns a predicate to check if a relation has a neighbor
// matching all the given predicates.
func HasEdgeWith(name string, ps ...P) P {
	args := []Expr{&Edge{Name: name}}
	if len(ps) > 0 {
		args = append(args, And(ps...))
	}
	return &CallExpr{Func: FuncHasEdge, Args: args}
}

// Negate negates the predicate.
func (e *UnaryExpr) Negate() P { return Not(e) }

// Negate negates the predicate.
func (e *BinaryExpr) Negate() P { return Not(e) }

// Negate negates the predicate.
func (e *NaryExpr) Negate() P { return Not(e) }

// Negate negates the predicate.
func (e *CallExpr) Negate() P { return Not(e) }

// Negate negates the constant.
func (c Const) Negate() P { return !c }

// String returns the text representation of the expression.
func (e *UnaryExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Op, e.X)
}

// String returns the text representation of the expression.
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.X, e.Op, e.Y)
}

// String returns the text representation of the expression.
func (e *NaryExpr) String() string {
	var s strings.Builder
	s.WriteByte('(')
	for i, x := range e.Xs {
		if i > 0 {
			s.WriteString(" " + e.Op.String() + " ")
		}
		s.WriteString(x.String())
	}
	s.WriteByte(')')
	return s.String()
}

// String returns the text representation of the expression.
func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Func, strings.Join(args, ", "))
}

// String returns the dotted path.
func (f *Field) String() string { return strings.Join(f.Path, ".") }

// Name returns the last segment of the path.
func (f *Field) Name() string { return f.Path[len(f.Path)-1] }

// String returns the relation name.
func (e *Edge) String() string { return e.Name }

// String returns the JSON representation of the value, or nil.
func (v *Value) String() string {
	if v.V == nil {
		return "nil"
	}
	buf, err := json.Marshal(v.V)
	if err != nil {
		return fmt.Sprint(v.V)
	}
	return string(buf)
}

// String returns true or false.
func (c Const) String() string {
	if c {
		return "true"
	}
	return "false"
}

func (*UnaryExpr) expr()  {}
func (*BinaryExpr) expr() {}
func (*NaryExpr) expr()   {}
func (*CallExpr) expr()   {}
func (*Field) expr()      {}
func (*Edge) expr()       {}
func (*Value) expr()      {}
func (Const) expr()       {}
