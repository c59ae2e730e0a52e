package cruddals

import (
	"fmt"
	"strings"
)

// Value represents the result of an operation.
type Value = any

// Op represents a generated operation, or a set of operations.
type Op uint

// Operations generated per model.
const (
	OpCreate Op = 1 << iota
	OpRead
	OpUpdate
	OpDelete
	OpActivate
	OpDeactivate
	OpList
	OpSearch
)

// Operation groups.
const (
	OpMutations = OpCreate | OpUpdate | OpDelete | OpActivate | OpDeactivate
	OpQueries   = OpRead | OpList | OpSearch
	OpAll       = OpMutations | OpQueries
)

var opNames = [...]string{
	"create",
	"read",
	"update",
	"delete",
	"activate",
	"deactivate",
	"list",
	"search",
}

// Is reports whether o is set in i.
func (i Op) Is(o Op) bool { return i&o != 0 }

// Ops returns the single operations set in i, in declaration order.
func (i Op) Ops() []Op {
	var ops []Op
	for n := range opNames {
		if op := Op(1 << n); i.Is(op) {
			ops = append(ops, op)
		}
	}
	return ops
}

// String returns the operation name, or the names joined with "|".
func (i Op) String() string {
	var names []string
	for n, name := range opNames {
		if i.Is(Op(1 << n)) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Op(%d)", uint(i))
	}
	return strings.Join(names, "|")
}

// IsMutation reports whether i contains only mutation operations.
func (i Op) IsMutation() bool {
	return i != 0 && i&^OpMutations == 0
}

// ParseOp parses an operation name, case-insensitive.
func ParseOp(s string) (Op, error) {
	for n, name := range opNames {
		if strings.EqualFold(s, name) {
			return Op(1 << n), nil
		}
	}
	return 0, fmt.Errorf("cruddals: unknown operation %q", s)
}

// ParseOps parses a list of operation names into a set.
func ParseOps(names []string) (Op, error) {
	var op Op
	for _, s := range names {
		o, err := ParseOp(s)
		if err != nil {
			return 0, err
		}
		op |= o
	}
	return op, nil
}
