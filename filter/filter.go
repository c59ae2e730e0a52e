// Package filter parses "where" arguments into filter trees and translates
// them into querylanguage predicates.
//
// A where argument is a mapping. The reserved keys AND and OR hold lists of
// nested mappings, NOT holds a single mapping. Any other key is a path, in
// flattened form ("category__name__icontains") or nested form
// ({"category": {"name": {"icontains": ...}}}). The last path segment is the
// operator when it names one; otherwise the operator is exact.
package filter

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	ql "github.com/syssam/cruddals/querylanguage"
)

// Sep joins the segments of a flattened path.
const Sep = "__"

// Reserved combinator keys.
const (
	KeyAnd = "AND"
	KeyOr  = "OR"
	KeyNot = "NOT"
)

// Op is a leaf operator.
type Op string

// Leaf operators.
const (
	OpExact       Op = "exact"
	OpIExact      Op = "iexact"
	OpContains    Op = "contains"
	OpIContains   Op = "icontains"
	OpIn          Op = "in"
	OpGT          Op = "gt"
	OpGTE         Op = "gte"
	OpLT          Op = "lt"
	OpLTE         Op = "lte"
	OpStartsWith  Op = "startswith"
	OpIStartsWith Op = "istartswith"
	OpEndsWith    Op = "endswith"
	OpIEndsWith   Op = "iendswith"
	OpRange       Op = "range"
	OpIsNull      Op = "isnull"
	OpRegex       Op = "regex"
	OpIRegex      Op = "iregex"

	// OpEquals is accepted on input and normalized to OpExact.
	OpEquals Op = "equals"
)

var operators = map[Op]bool{
	OpExact: true, OpIExact: true, OpContains: true, OpIContains: true,
	OpIn: true, OpGT: true, OpGTE: true, OpLT: true, OpLTE: true,
	OpStartsWith: true, OpIStartsWith: true, OpEndsWith: true, OpIEndsWith: true,
	OpRange: true, OpIsNull: true, OpRegex: true, OpIRegex: true, OpEquals: true,
}

// IsOp reports whether s names a leaf operator.
func IsOp(s string) bool {
	return operators[Op(s)]
}

type (
	// Node is a filter tree node: *Leaf, And, Or or *Not.
	Node interface {
		node()
	}

	// Leaf compares the value at Path with Value.
	Leaf struct {
		Path  []string
		Op    Op
		Value any
	}

	// And holds nodes that must all match.
	And []Node

	// Or holds nodes of which one must match. An empty Or matches everything.
	Or []Node

	// Not negates its node.
	Not struct {
		Node Node
	}
)

func (*Leaf) node() {}
func (And) node()   {}
func (Or) node()    {}
func (*Not) node()  {}

// String returns the flattened key of the leaf.
func (l *Leaf) String() string {
	return strings.Join(l.Path, Sep) + Sep + string(l.Op)
}

// Parse parses a where mapping. The result is an And holding the leaves in
// key order, followed by the AND, OR and NOT subtrees, in that order, when
// present.
func Parse(where map[string]any) (Node, error) {
	return parse(nil, where)
}

func parse(prefix []string, m map[string]any) (And, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var leaves And
	for _, k := range keys {
		if k == KeyAnd || k == KeyOr || k == KeyNot {
			continue
		}
		n, err := parseKey(prefix, k, m[k])
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, n...)
	}
	var combine And
	for _, k := range []string{KeyAnd, KeyOr} {
		v, ok := m[k]
		if !ok {
			continue
		}
		items, err := list(k, v)
		if err != nil {
			return nil, err
		}
		children := make([]Node, 0, len(items))
		for i, item := range items {
			child, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("filter: %s[%d] must be an object, got %T", k, i, item)
			}
			n, err := parse(prefix, child)
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
		if k == KeyAnd {
			combine = append(combine, And(children))
		} else {
			combine = append(combine, Or(children))
		}
	}
	if v, ok := m[KeyNot]; ok && v != nil {
		child, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("filter: NOT must be an object, got %T", v)
		}
		n, err := parse(prefix, child)
		if err != nil {
			return nil, err
		}
		combine = append(combine, &Not{Node: n})
	}
	return append(leaves, combine...), nil
}

// parseKey expands one non-reserved key.
func parseKey(prefix []string, key string, v any) ([]Node, error) {
	segs := strings.Split(key, Sep)
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("filter: invalid key %q", key)
		}
	}
	path := append(append([]string(nil), prefix...), segs...)
	last := path[len(path)-1]
	if IsOp(last) && len(path) > 1 {
		leaf, err := newLeaf(path[:len(path)-1], Op(last), v)
		if err != nil {
			return nil, err
		}
		return []Node{leaf}, nil
	}
	if sub, ok := v.(map[string]any); ok {
		n, err := parse(path, sub)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	leaf, err := newLeaf(path, OpExact, v)
	if err != nil {
		return nil, err
	}
	return []Node{leaf}, nil
}

func newLeaf(path []string, op Op, v any) (*Leaf, error) {
	if op == OpEquals {
		op = OpExact
	}
	l := &Leaf{Path: path, Op: op, Value: v}
	switch op {
	case OpIn:
		vs, err := list(l.String(), v)
		if err != nil {
			return nil, err
		}
		l.Value = vs
	case OpRange:
		vs, err := list(l.String(), v)
		if err != nil {
			return nil, err
		}
		if len(vs) != 2 {
			return nil, fmt.Errorf("filter: %s expects 2 values, got %d", l, len(vs))
		}
		l.Value = vs
	case OpIsNull:
		if _, ok := v.(bool); !ok {
			return nil, fmt.Errorf("filter: %s expects a boolean, got %T", l, v)
		}
	case OpIExact, OpContains, OpIContains, OpStartsWith, OpIStartsWith,
		OpEndsWith, OpIEndsWith, OpRegex, OpIRegex:
		if _, ok := v.(string); !ok {
			return nil, fmt.Errorf("filter: %s expects a string, got %T", l, v)
		}
	}
	return l, nil
}

// list converts any slice into []any.
func list(key string, v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if vs, ok := v.([]any); ok {
		return vs, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("filter: %s expects a list, got %T", key, v)
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	return vs, nil
}

// Translate converts a filter tree into a predicate. Nil and empty trees
// translate to the always-true predicate; so do empty OR and NOT subtrees.
func Translate(n Node) ql.P {
	switch n := n.(type) {
	case nil:
		return ql.True()
	case *Leaf:
		return leafP(n)
	case And:
		ps := make([]ql.P, len(n))
		for i, c := range n {
			ps[i] = Translate(c)
		}
		return ql.And(ps...)
	case Or:
		if len(n) == 0 {
			return ql.True()
		}
		ps := make([]ql.P, len(n))
		for i, c := range n {
			ps[i] = Translate(c)
		}
		return ql.Or(ps...)
	case *Not:
		p := Translate(n.Node)
		if p == ql.True() {
			return p
		}
		return ql.Not(p)
	}
	panic(fmt.Sprintf("filter: unexpected node %T", n))
}

func leafP(l *Leaf) ql.P {
	f := ql.Path(l.Path...)
	switch l.Op {
	case OpExact:
		if l.Value == nil {
			return ql.EQ(f, &ql.Value{})
		}
		return ql.EQ(f, &ql.Value{V: l.Value})
	case OpIExact:
		return ql.Call(ql.FuncEqualFold, f, l.Value)
	case OpContains:
		return ql.Call(ql.FuncContains, f, l.Value)
	case OpIContains:
		return ql.Call(ql.FuncContainsFold, f, l.Value)
	case OpStartsWith:
		return ql.Call(ql.FuncHasPrefix, f, l.Value)
	case OpIStartsWith:
		return ql.Call(ql.FuncHasPrefixFold, f, l.Value)
	case OpEndsWith:
		return ql.Call(ql.FuncHasSuffix, f, l.Value)
	case OpIEndsWith:
		return ql.Call(ql.FuncHasSuffixFold, f, l.Value)
	case OpRegex:
		return ql.Call(ql.FuncRegex, f, l.Value)
	case OpIRegex:
		return ql.Call(ql.FuncRegexFold, f, l.Value)
	case OpIn:
		return &ql.BinaryExpr{Op: ql.OpIn, X: f, Y: &ql.Value{V: l.Value}}
	case OpGT:
		return ql.GT(f, &ql.Value{V: l.Value})
	case OpGTE:
		return ql.GTE(f, &ql.Value{V: l.Value})
	case OpLT:
		return ql.LT(f, &ql.Value{V: l.Value})
	case OpLTE:
		return ql.LTE(f, &ql.Value{V: l.Value})
	case OpRange:
		vs := l.Value.([]any)
		return ql.And(ql.GTE(f, &ql.Value{V: vs[0]}), ql.LTE(ql.Path(l.Path...), &ql.Value{V: vs[1]}))
	case OpIsNull:
		if l.Value.(bool) {
			return ql.EQ(f, &ql.Value{})
		}
		return ql.NEQ(f, &ql.Value{})
	}
	panic(fmt.Sprintf("filter: unexpected operator %q", l.Op))
}

// Where parses and translates a where mapping in one step.
func Where(where map[string]any) (ql.P, error) {
	n, err := Parse(where)
	if err != nil {
		return nil, err
	}
	return Translate(n), nil
}
