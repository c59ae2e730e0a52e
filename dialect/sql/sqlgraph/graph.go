// Package sqlgraph evaluates store-independent predicates and sort terms
// against the tables of a model graph.
//
// Field paths cross relations one segment at a time. Every hop becomes a
// correlated subquery on the related table, so a predicate such as
//
//	category.name == "office"
//
// on items is written as
//
//	"items"."category_id" IN (SELECT "t1"."id" FROM "categories" AS "t1" WHERE "t1"."name" = ?)
package sqlgraph

import (
	"fmt"
	"strconv"

	"github.com/syssam/cruddals/dialect/sql"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
)

// Rel is an edge relation type.
type Rel int

// Relation types.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one.
	O2M            // One to many.
	M2O            // Many to one.
	M2M            // Many to many.
)

// String returns the relation name.
func (r Rel) String() string {
	switch r {
	case O2O:
		return "O2O"
	case O2M:
		return "O2M"
	case M2O:
		return "M2O"
	case M2M:
		return "M2M"
	}
	return "Unknown"
}

type (
	// FieldSpec holds the information for a field column.
	FieldSpec struct {
		Column string
		Type   field.Type
		// Desc is set for fields loaded from a model and used to coerce
		// values. Enum wire names are accepted through it.
		Desc *field.Descriptor
	}

	// NodeSpec defines the table and the identifier of a node.
	NodeSpec struct {
		Table string
		ID    *FieldSpec
	}

	// EdgeSpec holds the information for the storage of an edge.
	//
	// M2O edges, and O2O edges that are not inverse, keep the reference in
	// Columns[0] of the node's own table. O2M edges, and inverse O2O edges,
	// keep it in Columns[0] of the related table. M2M edges store pairs in
	// the join Table: Columns[0] references the owning side, Columns[1] the
	// inverse side.
	EdgeSpec struct {
		Rel     Rel
		Inverse bool
		Table   string
		Columns []string
	}

	// Node describes a model table.
	Node struct {
		NodeSpec
		Type   string
		Fields map[string]*FieldSpec
		Edges  map[string]*Edge
	}

	// Edge is a named edge between two nodes.
	Edge struct {
		Name string
		Spec *EdgeSpec
		To   *Node
	}

	// Schema holds the nodes of a model graph.
	Schema struct {
		Nodes []*Node
	}
)

// Unique reports whether the edge leads to at most one node.
func (e *Edge) Unique() bool {
	return e.Spec.Rel == M2O || e.Spec.Rel == O2O
}

// OwnFK reports whether the edge reference is stored on the owning node's
// table.
func (e *Edge) OwnFK() bool {
	return e.Spec.Rel == M2O || (e.Spec.Rel == O2O && !e.Spec.Inverse)
}

// JoinColumns returns the join-table columns referencing the edge owner and
// the related node.
func (e *Edge) JoinColumns() (own, other string) {
	if e.Spec.Inverse {
		return e.Spec.Columns[1], e.Spec.Columns[0]
	}
	return e.Spec.Columns[0], e.Spec.Columns[1]
}

// New builds the SQL schema of a model graph. Relations to models outside
// the graph are left out.
func New(g *schema.Graph) (*Schema, error) {
	s := &Schema{}
	for _, m := range g.Models {
		pk := m.PrimaryKey()
		n := &Node{
			NodeSpec: NodeSpec{
				Table: m.Table,
				ID:    &FieldSpec{Column: pk.Column, Type: pk.Type, Desc: pk},
			},
			Type:   m.Name,
			Fields: make(map[string]*FieldSpec),
			Edges:  make(map[string]*Edge),
		}
		n.Fields["pk"] = n.ID
		for _, f := range m.Fields {
			if !f.Type.IsRelation() {
				n.Fields[f.Name] = &FieldSpec{Column: f.Column, Type: f.Type, Desc: f}
			}
		}
		s.Nodes = append(s.Nodes, n)
	}
	for _, m := range g.Models {
		for _, f := range m.Relations() {
			r, err := g.Relation(m, f)
			if err != nil {
				continue
			}
			spec := &EdgeSpec{}
			switch f.Type {
			case field.TypeForeignKey:
				spec.Rel, spec.Table, spec.Columns = M2O, m.Table, []string{f.Column}
			case field.TypeOneToOne:
				spec.Rel, spec.Table, spec.Columns = O2O, m.Table, []string{f.Column}
			case field.TypeOneToMany:
				spec.Rel, spec.Table, spec.Columns = O2M, r.Target.Table, []string{r.Inverse.Column}
			case field.TypeOneToOneRel:
				spec.Rel, spec.Inverse, spec.Table, spec.Columns = O2O, true, r.Target.Table, []string{r.Inverse.Column}
			case field.TypeManyToMany:
				spec.Rel, spec.Table, spec.Columns = M2M, r.Join.Table, []string{r.Join.Own, r.Join.Other}
			case field.TypeManyToManyRel:
				spec.Rel, spec.Inverse, spec.Table, spec.Columns = M2M, true, r.Join.Table, []string{r.Join.Other, r.Join.Own}
			}
			if err := s.AddE(f.Name, spec, m.Name, r.Target.Name); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Node returns the node of the given type.
func (g *Schema) Node(typ string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.Type == typ {
			return n, true
		}
	}
	return nil, false
}

// AddE adds an edge to the graph. It fails if one of the nodes does not exist.
func (g *Schema) AddE(name string, spec *EdgeSpec, from, to string) error {
	fromN, ok := g.Node(from)
	if !ok {
		return fmt.Errorf("sqlgraph: node %q was not found", from)
	}
	toN, ok := g.Node(to)
	if !ok {
		return fmt.Errorf("sqlgraph: node %q was not found", to)
	}
	if fromN.Edges == nil {
		fromN.Edges = make(map[string]*Edge)
	}
	fromN.Edges[name] = &Edge{Name: name, Spec: spec, To: toN}
	return nil
}

// scope is a node bound to a table reference in the statement.
type scope struct {
	node *Node
	c    func(string) string
}

// evaluator numbers the table aliases of one statement.
type evaluator struct {
	n int
}

func (e *evaluator) table(name string) *sql.SelectTable {
	e.n++
	return sql.Table(name).As("t" + strconv.Itoa(e.n))
}

// hasEdge returns a predicate that holds if the edge has a neighbor
// matching inner. A nil inner matches any neighbor.
func (e *evaluator) hasEdge(sc scope, ed *Edge, inner func(scope) (*sql.Predicate, error)) (*sql.Predicate, error) {
	to := ed.To
	switch {
	case ed.OwnFK():
		fk := sc.c(ed.Spec.Columns[0])
		if inner == nil {
			return sql.NotNull(fk), nil
		}
		t := e.table(to.Table)
		p, err := inner(scope{node: to, c: t.C})
		if err != nil {
			return nil, err
		}
		return sql.InSelect(fk, sql.Select(t.C(to.ID.Column)).From(t).Where(p)), nil
	case ed.Spec.Rel == M2M:
		own, other := ed.JoinColumns()
		j := e.table(ed.Spec.Table)
		sub := sql.Select(j.C(own)).From(j)
		if inner != nil {
			t := e.table(to.Table)
			p, err := inner(scope{node: to, c: t.C})
			if err != nil {
				return nil, err
			}
			sub.Where(sql.InSelect(j.C(other), sql.Select(t.C(to.ID.Column)).From(t).Where(p)))
		}
		return sql.InSelect(sc.c(sc.node.ID.Column), sub), nil
	default:
		t := e.table(to.Table)
		fk := t.C(ed.Spec.Columns[0])
		sub := sql.Select(fk).From(t).Where(sql.ColumnsEQ(sc.c(sc.node.ID.Column), fk))
		if inner != nil {
			p, err := inner(scope{node: to, c: t.C})
			if err != nil {
				return nil, err
			}
			sub.Where(p)
		}
		return sql.Exists(sub), nil
	}
}
