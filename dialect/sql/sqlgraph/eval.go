package sqlgraph

import (
	"fmt"
	"strings"

	"github.com/syssam/cruddals/dialect/sql"
	"github.com/syssam/cruddals/order"
	ql "github.com/syssam/cruddals/querylanguage"
)

// EvalP evaluates p against the node of type typ and ANDs the result to
// the selector condition. The selector must select from the node table.
func (g *Schema) EvalP(typ string, p ql.P, s *sql.Selector) error {
	n, ok := g.Node(typ)
	if !ok {
		return fmt.Errorf("sqlgraph: node %q was not found", typ)
	}
	e := &evaluator{}
	pred, err := e.pred(scope{node: n, c: s.C}, p)
	if err != nil {
		return err
	}
	s.Where(pred)
	return nil
}

// OrderBy appends the sort terms to the selector. Paths may cross
// single-valued relations only.
func (g *Schema) OrderBy(typ string, terms []order.Term, s *sql.Selector) error {
	n, ok := g.Node(typ)
	if !ok {
		return fmt.Errorf("sqlgraph: node %q was not found", typ)
	}
	e := &evaluator{}
	for _, t := range terms {
		expr, err := e.orderExpr(scope{node: n, c: s.C}, t.Path)
		if err != nil {
			return err
		}
		if t.Fold {
			inner := expr
			expr = func(b *sql.Builder) {
				b.WriteString("LOWER(")
				inner(b)
				b.WriteByte(')')
			}
		}
		s.OrderExpr(expr, t.Desc)
	}
	return nil
}

func (e *evaluator) pred(sc scope, x ql.Expr) (*sql.Predicate, error) {
	switch x := x.(type) {
	case ql.Const:
		if x {
			return sql.True(), nil
		}
		return sql.False(), nil
	case *ql.UnaryExpr:
		if x.Op != ql.OpNot {
			return nil, fmt.Errorf("sqlgraph: unexpected unary operator %s", x.Op)
		}
		p, err := e.pred(sc, x.X)
		if err != nil {
			return nil, err
		}
		return sql.Not(p), nil
	case *ql.NaryExpr:
		return e.join(sc, x.Op, x.Xs)
	case *ql.BinaryExpr:
		if x.Op == ql.OpAnd || x.Op == ql.OpOr {
			return e.join(sc, x.Op, []ql.Expr{x.X, x.Y})
		}
		return e.compare(sc, x)
	case *ql.CallExpr:
		return e.call(sc, x)
	}
	return nil, fmt.Errorf("sqlgraph: unexpected expression %T", x)
}

func (e *evaluator) join(sc scope, op ql.Op, xs []ql.Expr) (*sql.Predicate, error) {
	ps := make([]*sql.Predicate, len(xs))
	for i, x := range xs {
		p, err := e.pred(sc, x)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	switch op {
	case ql.OpAnd:
		return sql.And(ps...), nil
	case ql.OpOr:
		return sql.Or(ps...), nil
	}
	return nil, fmt.Errorf("sqlgraph: unexpected n-ary operator %s", op)
}

// resolve walks path from sc. Relation segments become edge predicates;
// the last segment is handed to leaf when it names a column field, or to
// rel when it names a relation.
func (e *evaluator) resolve(sc scope, path []string, leaf func(scope, *FieldSpec) (*sql.Predicate, error), rel func(scope, *Edge) (*sql.Predicate, error)) (*sql.Predicate, error) {
	name := path[0]
	if len(path) == 1 {
		if fs, ok := sc.node.Fields[name]; ok {
			return leaf(sc, fs)
		}
		if ed, ok := sc.node.Edges[name]; ok {
			return rel(sc, ed)
		}
		return nil, fmt.Errorf("sqlgraph: %s has no field %q", sc.node.Type, name)
	}
	ed, ok := sc.node.Edges[name]
	if !ok {
		return nil, fmt.Errorf("sqlgraph: %s has no relation %q", sc.node.Type, name)
	}
	return e.hasEdge(sc, ed, func(inner scope) (*sql.Predicate, error) {
		return e.resolve(inner, path[1:], leaf, rel)
	})
}

func (e *evaluator) compare(sc scope, x *ql.BinaryExpr) (*sql.Predicate, error) {
	f, ok := x.X.(*ql.Field)
	if !ok {
		return nil, fmt.Errorf("sqlgraph: expect field on the left side of %s, got %T", x.Op, x.X)
	}
	switch y := x.Y.(type) {
	case *ql.Field:
		return e.compareFields(sc, x.Op, f, y)
	case *ql.Value:
		return e.resolve(sc, f.Path,
			func(sc scope, fs *FieldSpec) (*sql.Predicate, error) {
				return cmp(x.Op, sc.c(fs.Column), fs, y.V)
			},
			func(sc scope, ed *Edge) (*sql.Predicate, error) {
				if ed.OwnFK() {
					return cmp(x.Op, sc.c(ed.Spec.Columns[0]), ed.To.ID, y.V)
				}
				if y.V == nil {
					switch x.Op {
					case ql.OpEQ:
						p, err := e.hasEdge(sc, ed, nil)
						if err != nil {
							return nil, err
						}
						return sql.Not(p), nil
					case ql.OpNEQ:
						return e.hasEdge(sc, ed, nil)
					}
				}
				return e.hasEdge(sc, ed, func(inner scope) (*sql.Predicate, error) {
					return cmp(x.Op, inner.c(ed.To.ID.Column), ed.To.ID, y.V)
				})
			},
		)
	}
	return nil, fmt.Errorf("sqlgraph: unexpected right side %T", x.Y)
}

func (e *evaluator) compareFields(sc scope, op ql.Op, x, y *ql.Field) (*sql.Predicate, error) {
	if len(x.Path) != 1 || len(y.Path) != 1 {
		return nil, fmt.Errorf("sqlgraph: field comparison supports direct fields only")
	}
	fx, ok := sc.node.Fields[x.Name()]
	if !ok {
		return nil, fmt.Errorf("sqlgraph: %s has no field %q", sc.node.Type, x.Name())
	}
	fy, ok := sc.node.Fields[y.Name()]
	if !ok {
		return nil, fmt.Errorf("sqlgraph: %s has no field %q", sc.node.Type, y.Name())
	}
	switch op {
	case ql.OpEQ:
		return sql.ColumnsEQ(sc.c(fx.Column), sc.c(fy.Column)), nil
	case ql.OpNEQ:
		return sql.Not(sql.ColumnsEQ(sc.c(fx.Column), sc.c(fy.Column))), nil
	}
	return nil, fmt.Errorf("sqlgraph: unsupported field comparison %s", op)
}

// cmp returns the comparison of col with v converted to the storage value
// of fs.
func cmp(op ql.Op, col string, fs *FieldSpec, v any) (*sql.Predicate, error) {
	if op == ql.OpIn || op == ql.OpNotIn {
		vs, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("sqlgraph: %s expects a list, got %T", op, v)
		}
		args := make([]any, len(vs))
		for i := range vs {
			a, err := ToDB(fs, vs[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		if op == ql.OpIn {
			return sql.In(col, args...), nil
		}
		return sql.NotIn(col, args...), nil
	}
	arg, err := ToDB(fs, v)
	if err != nil {
		return nil, err
	}
	switch op {
	case ql.OpEQ:
		if arg == nil {
			return sql.IsNull(col), nil
		}
		return sql.EQ(col, arg), nil
	case ql.OpNEQ:
		if arg == nil {
			return sql.NotNull(col), nil
		}
		return sql.NEQ(col, arg), nil
	case ql.OpGT:
		return sql.GT(col, arg), nil
	case ql.OpGTE:
		return sql.GTE(col, arg), nil
	case ql.OpLT:
		return sql.LT(col, arg), nil
	case ql.OpLTE:
		return sql.LTE(col, arg), nil
	}
	return nil, fmt.Errorf("sqlgraph: unexpected binary operator %s", op)
}

var textFuncs = map[ql.Func]func(col, v string) *sql.Predicate{
	ql.FuncEqualFold:     sql.EqualFold,
	ql.FuncContains:      sql.Contains,
	ql.FuncContainsFold:  sql.ContainsFold,
	ql.FuncHasPrefix:     sql.HasPrefix,
	ql.FuncHasPrefixFold: sql.HasPrefixFold,
	ql.FuncHasSuffix:     sql.HasSuffix,
	ql.FuncHasSuffixFold: sql.HasSuffixFold,
	ql.FuncRegex:         func(col, v string) *sql.Predicate { return sql.Regex(col, v, false) },
	ql.FuncRegexFold:     func(col, v string) *sql.Predicate { return sql.Regex(col, v, true) },
}

func (e *evaluator) call(sc scope, x *ql.CallExpr) (*sql.Predicate, error) {
	if x.Func == ql.FuncHasEdge {
		return e.callHasEdge(sc, x)
	}
	fn, ok := textFuncs[x.Func]
	if !ok {
		return nil, fmt.Errorf("sqlgraph: unsupported function %s", x.Func)
	}
	if len(x.Args) != 2 {
		return nil, fmt.Errorf("sqlgraph: %s expects 2 arguments, got %d", x.Func, len(x.Args))
	}
	f, ok := x.Args[0].(*ql.Field)
	if !ok {
		return nil, fmt.Errorf("sqlgraph: %s expects a field, got %T", x.Func, x.Args[0])
	}
	v, ok := x.Args[1].(*ql.Value)
	if !ok || v.V == nil {
		return nil, fmt.Errorf("sqlgraph: %s(%s) expects a value", x.Func, f)
	}
	s := fmt.Sprint(v.V)
	return e.resolve(sc, f.Path,
		func(sc scope, fs *FieldSpec) (*sql.Predicate, error) {
			return fn(sc.c(fs.Column), s), nil
		},
		func(sc scope, ed *Edge) (*sql.Predicate, error) {
			return nil, fmt.Errorf("sqlgraph: %s cannot be applied to relation %s.%s", x.Func, sc.node.Type, ed.Name)
		},
	)
}

func (e *evaluator) callHasEdge(sc scope, x *ql.CallExpr) (*sql.Predicate, error) {
	if len(x.Args) == 0 {
		return nil, fmt.Errorf("sqlgraph: %s expects an edge", x.Func)
	}
	edge, ok := x.Args[0].(*ql.Edge)
	if !ok {
		return nil, fmt.Errorf("sqlgraph: %s expects an edge, got %T", x.Func, x.Args[0])
	}
	ed, ok := sc.node.Edges[edge.Name]
	if !ok {
		return nil, fmt.Errorf("sqlgraph: %s has no relation %q", sc.node.Type, edge.Name)
	}
	if len(x.Args) == 1 {
		return e.hasEdge(sc, ed, nil)
	}
	return e.hasEdge(sc, ed, func(inner scope) (*sql.Predicate, error) {
		return e.pred(inner, x.Args[1])
	})
}

// orderExpr returns the sort expression of path. Relation hops are written
// as scalar subqueries on the related table.
func (e *evaluator) orderExpr(sc scope, path []string) (func(*sql.Builder), error) {
	name := path[0]
	if len(path) == 1 {
		if fs, ok := sc.node.Fields[name]; ok {
			col := sc.c(fs.Column)
			return func(b *sql.Builder) { b.Ident(col) }, nil
		}
		if ed, ok := sc.node.Edges[name]; ok && ed.OwnFK() {
			col := sc.c(ed.Spec.Columns[0])
			return func(b *sql.Builder) { b.Ident(col) }, nil
		}
		return nil, fmt.Errorf("sqlgraph: cannot order %s by %q", sc.node.Type, name)
	}
	ed, ok := sc.node.Edges[name]
	if !ok || !ed.Unique() {
		return nil, fmt.Errorf("sqlgraph: cannot order %s by %q: not a single-valued relation", sc.node.Type, strings.Join(path, "."))
	}
	t := e.table(ed.To.Table)
	inner, err := e.orderExpr(scope{node: ed.To, c: t.C}, path[1:])
	if err != nil {
		return nil, err
	}
	sub := sql.Select().SelectExpr(inner).From(t)
	if ed.OwnFK() {
		sub.Where(sql.ColumnsEQ(t.C(ed.To.ID.Column), sc.c(ed.Spec.Columns[0])))
	} else {
		sub.Where(sql.ColumnsEQ(t.C(ed.Spec.Columns[0]), sc.c(sc.node.ID.Column)))
	}
	return func(b *sql.Builder) { b.Sub(sub) }, nil
}
