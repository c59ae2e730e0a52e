// Package order parses "orderBy" arguments into sort directives and
// translates them into store sort terms.
package order

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/cruddals/filter"
)

// Direction is a sort direction.
type Direction string

// Sort directions. The _CI directions sort on the case-folded value.
const (
	Asc    Direction = "ASC"
	Desc   Direction = "DESC"
	AscCI  Direction = "ASC_CI"
	DescCI Direction = "DESC_CI"
)

// Directions lists the directions in enum order.
var Directions = []Direction{Asc, Desc, AscCI, DescCI}

// ParseDirection parses a direction name. IASC and IDESC are accepted as
// aliases of ASC_CI and DESC_CI.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(s)); d {
	case Asc, Desc, AscCI, DescCI:
		return d, nil
	case "IASC":
		return AscCI, nil
	case "IDESC":
		return DescCI, nil
	}
	return "", fmt.Errorf("order: invalid direction %q", s)
}

// Desc reports whether d sorts in descending order.
func (d Direction) Desc() bool { return d == Desc || d == DescCI }

// Fold reports whether d sorts case-insensitively.
func (d Direction) Fold() bool { return d == AscCI || d == DescCI }

// Directive sorts on the value at Path.
type Directive struct {
	Path      []string
	Direction Direction
}

// Term is a translated sort key.
type Term struct {
	Path []string
	Desc bool
	Fold bool
}

// String returns the SQL-like representation of the term.
func (t Term) String() string {
	s := strings.Join(t.Path, ".")
	if t.Fold {
		s = "lower(" + s + ")"
	}
	if t.Desc {
		return s + " DESC"
	}
	return s + " ASC"
}

// Parse parses an orderBy argument: a mapping or a list of mappings. The
// directives of one mapping are returned in key order; list order is kept.
// Nested mappings and flattened keys ("category__name") are both accepted.
func Parse(v any) ([]Directive, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return parseMap(nil, v)
	case []any:
		var dirs []Directive
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("order: orderBy[%d] must be an object, got %T", i, item)
			}
			ds, err := parseMap(nil, m)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, ds...)
		}
		return dirs, nil
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return Parse(items)
	}
	return nil, fmt.Errorf("order: orderBy must be an object or a list, got %T", v)
}

func parseMap(prefix []string, m map[string]any) ([]Directive, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var dirs []Directive
	for _, k := range keys {
		path := append(append([]string(nil), prefix...), strings.Split(k, filter.Sep)...)
		switch v := m[k].(type) {
		case nil:
		case map[string]any:
			ds, err := parseMap(path, v)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, ds...)
		case string:
			d, err := ParseDirection(v)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, Directive{Path: path, Direction: d})
		case Direction:
			d, err := ParseDirection(string(v))
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, Directive{Path: path, Direction: d})
		default:
			return nil, fmt.Errorf("order: %s: unexpected value %T", strings.Join(path, filter.Sep), v)
		}
	}
	return dirs, nil
}

// Translate converts directives into sort terms. The primary key is
// appended in ascending order unless a directive already sorts on it, so
// that rows with equal sort values keep a stable order across pages.
func Translate(dirs []Directive, pk string) []Term {
	terms := make([]Term, 0, len(dirs)+1)
	tied := true
	for _, d := range dirs {
		terms = append(terms, Term{Path: d.Path, Desc: d.Direction.Desc(), Fold: d.Direction.Fold()})
		if len(d.Path) == 1 && d.Path[0] == pk {
			tied = false
		}
	}
	if tied {
		terms = append(terms, Term{Path: []string{pk}})
	}
	return terms
}

// By parses and translates an orderBy argument in one step.
func By(v any, pk string) ([]Term, error) {
	dirs, err := Parse(v)
	if err != nil {
		return nil, err
	}
	return Translate(dirs, pk), nil
}
