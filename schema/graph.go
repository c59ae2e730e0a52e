package schema

import (
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/schema/field"
)

// Graph holds the models of one schema build and resolves the relations
// between them.
type Graph struct {
	Models []*Model
	byName map[string]*Model
}

// NewGraph links the given models. Reverse relations are derived for every
// direct relation whose target is part of the graph. Models that fail to
// link are left out of the returned graph and reported in the error; the
// remaining models stay usable.
func NewGraph(models ...*Model) (*Graph, error) {
	g := &Graph{byName: make(map[string]*Model, len(models))}
	var errs []error
	for _, m := range models {
		if _, ok := g.byName[m.Name]; ok {
			errs = append(errs, cruddals.NewSchemaBuildError(m.Name, "", "duplicate model", nil))
			continue
		}
		g.byName[m.Name] = m
		g.Models = append(g.Models, m)
	}
	failed := make(map[string]bool)
	for _, m := range g.Models {
		for _, f := range m.Relations() {
			if f.Type.IsReverse() {
				if err := g.checkReverse(m, f); err != nil {
					errs = append(errs, err)
					failed[m.Name] = true
				}
				continue
			}
			if err := g.deriveReverse(m, f); err != nil {
				errs = append(errs, err)
				failed[m.Name] = true
			}
		}
	}
	if len(failed) > 0 {
		models := g.Models[:0]
		for _, m := range g.Models {
			if failed[m.Name] {
				delete(g.byName, m.Name)
				continue
			}
			models = append(models, m)
		}
		g.Models = models
	}
	return g, cruddals.NewAggregateError(errs...)
}

// deriveReverse adds the reverse side of a direct relation to its target.
func (g *Graph) deriveReverse(m *Model, f *field.Descriptor) error {
	target, ok := g.byName[f.Related]
	if !ok {
		// Not part of this build; resolved as an absent field.
		return nil
	}
	name := f.Ref
	if name == "" {
		name = inflect.Underscore(m.Plural)
		if f.Type == field.TypeOneToOne {
			name = m.Label()
		}
		f.Ref = name
	}
	if rev, ok := target.fields[name]; ok {
		if rev.Type != f.Type.Inverse() || rev.Related != m.Name || (rev.Ref != "" && rev.Ref != f.Name) {
			return cruddals.NewSchemaBuildError(target.Name, "", fmt.Sprintf("field %q clashes with the reverse of %s.%s", name, m.Name, f.Name), nil)
		}
		rev.Ref = f.Name
		return nil
	}
	return target.add(&field.Descriptor{
		Name:     name,
		Type:     f.Type.Inverse(),
		Related:  m.Name,
		Ref:      f.Name,
		Nullable: true,
		ReadOnly: f.ReadOnly,
	})
}

// checkReverse verifies an explicitly declared reverse relation.
func (g *Graph) checkReverse(m *Model, f *field.Descriptor) error {
	target, ok := g.byName[f.Related]
	if !ok {
		return nil
	}
	if f.Ref == "" {
		return cruddals.NewSchemaBuildError(m.Name, "", fmt.Sprintf("reverse relation %q requires Ref", f.Name), nil)
	}
	direct, ok := target.fields[f.Ref]
	if !ok || direct.Type != f.Type.Inverse() || direct.Related != m.Name {
		return cruddals.NewSchemaBuildError(m.Name, "", fmt.Sprintf("reverse relation %q does not match %s.%s", f.Name, target.Name, f.Ref), nil)
	}
	return nil
}

// Model returns the model with the given name.
func (g *Graph) Model(name string) (*Model, bool) {
	m, ok := g.byName[name]
	return m, ok
}

// JoinTable describes the table linking the two sides of a many-to-many
// relation. Own references the model the relation was resolved from.
type JoinTable struct {
	Table string
	Own   string
	Other string
}

// Relation is a relation field resolved against the graph.
type Relation struct {
	Model  *Model
	Field  *field.Descriptor
	Target *Model
	// Inverse is the field on Target that points back to Model.
	Inverse *field.Descriptor
	// Join is set for many-to-many relations.
	Join *JoinTable
}

// Relation resolves the relation field f of model m.
func (g *Graph) Relation(m *Model, f *field.Descriptor) (*Relation, error) {
	if !f.Type.IsRelation() {
		return nil, fmt.Errorf("schema: %s.%s is not a relation", m.Name, f.Name)
	}
	target, ok := g.byName[f.Related]
	if !ok {
		return nil, fmt.Errorf("schema: %s.%s references unknown model %q", m.Name, f.Name, f.Related)
	}
	r := &Relation{Model: m, Field: f, Target: target}
	if f.Ref != "" {
		r.Inverse = target.fields[f.Ref]
	}
	if f.Type.IsReverse() && r.Inverse == nil {
		return nil, fmt.Errorf("schema: reverse relation %s.%s has no inverse field", m.Name, f.Name)
	}
	switch f.Type {
	case field.TypeManyToMany:
		r.Join = joinTable(m, f, target)
	case field.TypeManyToManyRel:
		j := joinTable(target, r.Inverse, m)
		r.Join = &JoinTable{Table: j.Table, Own: j.Other, Other: j.Own}
	}
	return r, nil
}

func joinTable(m *Model, f *field.Descriptor, target *Model) *JoinTable {
	j := &JoinTable{
		Table: f.Through,
		Own:   m.Label() + "_id",
		Other: target.Label() + "_id",
	}
	if j.Table == "" {
		j.Table = m.Table + "_" + f.Name
	}
	if j.Own == j.Other {
		j.Own, j.Other = "from_"+j.Own, "to_"+j.Other
	}
	return j
}

// JoinTables returns the join tables of all many-to-many relations in the graph.
func (g *Graph) JoinTables() []*Relation {
	var rels []*Relation
	for _, m := range g.Models {
		for _, f := range m.Relations() {
			if f.Type != field.TypeManyToMany {
				continue
			}
			if r, err := g.Relation(m, f); err == nil {
				rels = append(rels, r)
			}
		}
	}
	return rels
}
