// Package convert maps model fields to GraphQL type descriptors.
//
// Conversion is a table lookup on the field kind followed by a switch on
// the purpose. Relation fields are not resolved eagerly: they carry a
// thunk that looks the related model's type up in the registry when the
// assembler asks for it, so models may reference each other in cycles.
// A thunk whose target was never registered yields an absent field.
package convert

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/filter"
	"github.com/syssam/cruddals/order"
	"github.com/syssam/cruddals/registry"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
)

// Types holds the definitions generated by one schema build.
type Types = registry.Registry[Key, *ast.Definition]

// Shared definition names.
const (
	OrderDirection = "OrderDirection"
	PageSize       = "PageSize"
)

// Field is the product of converting one model field for one purpose.
type Field struct {
	Name        string
	Description string
	Purpose     Purpose
	Model       *schema.Model
	Desc        *field.Descriptor

	// Type is set for fields resolved at conversion time.
	Type *ast.Type
	// Thunk is set for relation fields.
	Thunk func() (*ast.Type, bool)
}

// Resolve returns the GraphQL type of the field. ok is false when the
// field is absent, i.e. its related type is not part of the build.
func (f *Field) Resolve() (t *ast.Type, ok bool) {
	if f.Thunk != nil {
		return f.Thunk()
	}
	return f.Type, f.Type != nil
}

// Definition returns the field definition, or false if the field is absent.
func (f *Field) Definition() (*ast.FieldDefinition, bool) {
	t, ok := f.Resolve()
	if !ok {
		return nil, false
	}
	return &ast.FieldDefinition{
		Name:        f.Name,
		Description: f.Description,
		Type:        t,
	}, true
}

// Converter converts fields. All generated definitions are registered in
// its Types registry; converted fields are memoized per key.
type Converter struct {
	namer  Namer
	types  *Types
	fields *registry.Registry[Key, *Field]

	mu      sync.Mutex
	scalars map[string]bool
}

// New returns a converter that registers definitions in types.
func New(types *Types, namer Namer) *Converter {
	return &Converter{
		namer:   namer,
		types:   types,
		fields:  registry.New[Key, *Field](),
		scalars: make(map[string]bool),
	}
}

// Namer returns the namer of the converter.
func (c *Converter) Namer() Namer { return c.namer }

// Types returns the definition registry.
func (c *Converter) Types() *Types { return c.types }

// Convert converts field f of model m for purpose p. The optional sub
// purpose selects the model-level type the field is converted into; for
// MutateUpdate it is MutateUpdate (primary key required, the default) or
// CreateUpdate (primary key optional).
//
// A nil field with a nil error means the field has no representation for
// p: read-only fields in mutation inputs, unorderable kinds in OrderBy and
// parent links in every input purpose.
func (c *Converter) Convert(m *schema.Model, f *field.Descriptor, p Purpose, sub ...Purpose) (*Field, error) {
	info, ok := kinds[f.Type]
	if !ok {
		return nil, &cruddals.UnsupportedFieldKindError{Model: m.Name, Field: f.Name, Kind: f.Type.String()}
	}
	if p > OrderBy {
		return nil, fmt.Errorf("convert: %s is not a field purpose", p)
	}
	s := p
	if len(sub) > 0 {
		s = sub[0]
	}
	key := Key{Model: m.Name, Field: f.Name, Kind: s.String(), Purpose: p}
	return c.fields.LoadOrStore(key, func() (*Field, error) {
		if info.relation {
			return c.relation(m, f, p), nil
		}
		return c.scalar(m, f, info, p, s)
	})
}

func (c *Converter) scalar(m *schema.Model, f *field.Descriptor, info kindInfo, p, sub Purpose) (*Field, error) {
	out := &Field{Name: f.Name, Description: f.Comment, Purpose: p, Model: m, Desc: f}
	pk := f == m.PrimaryKey()
	switch p {
	case Output:
		t, err := c.valueType(m, f, info)
		if err != nil {
			return nil, err
		}
		if !f.Nullable {
			t.NonNull = true
		}
		out.Type = t
	case MutateCreate:
		if pk || !f.Editable() {
			return nil, nil
		}
		t, err := c.valueType(m, f, info)
		if err != nil {
			return nil, err
		}
		t.NonNull = f.Required()
		out.Type = t
	case MutateUpdate:
		if pk {
			out.Type = c.named(info.scalar)
			out.Type.NonNull = sub != CreateUpdate
			break
		}
		if !f.Editable() || f.Immutable {
			return nil, nil
		}
		t, err := c.valueType(m, f, info)
		if err != nil {
			return nil, err
		}
		out.Type = t
	case Filter:
		def, err := c.filterDef(info)
		if err != nil {
			return nil, err
		}
		out.Type = ast.NamedType(def.Name, nil)
	case OrderBy:
		if !info.ordered {
			return nil, nil
		}
		def, err := c.OrderDirection()
		if err != nil {
			return nil, err
		}
		out.Type = ast.NamedType(def.Name, nil)
	}
	return out, nil
}

func (c *Converter) relation(m *schema.Model, f *field.Descriptor, p Purpose) *Field {
	if f.ParentLink && p != Output {
		return nil
	}
	out := &Field{Name: f.Name, Description: f.Comment, Purpose: p, Model: m, Desc: f}
	many := f.Type.Many()
	switch p {
	case Output:
		if many {
			out.Thunk = c.ref(f.Related, Output, func(name string) *ast.Type {
				return ast.NonNullListType(ast.NonNullNamedType(name, nil), nil)
			})
		} else {
			out.Thunk = c.ref(f.Related, Output, named)
		}
	case MutateCreate:
		if !f.Editable() {
			return nil
		}
		if many {
			out.Thunk = c.ref(f.Related, CreateUpdate, func(name string) *ast.Type {
				return ast.ListType(ast.NonNullNamedType(name, nil), nil)
			})
		} else {
			out.Thunk = c.ref(f.Related, CreateUpdate, named)
		}
	case MutateUpdate:
		if !f.Editable() || f.Immutable {
			return nil
		}
		if many {
			out.Thunk = c.ref(f.Related, ConnectDisconnect, named)
		} else {
			out.Thunk = c.ref(f.Related, CreateUpdate, named)
		}
	case Filter:
		out.Thunk = c.ref(f.Related, Filter, named)
	case OrderBy:
		// One level per traversal: only single-valued relations nest.
		if many {
			return nil
		}
		out.Thunk = c.ref(f.Related, OrderBy, named)
	}
	return out
}

func named(name string) *ast.Type { return ast.NamedType(name, nil) }

// ref returns a thunk that resolves the type of model for p.
func (c *Converter) ref(model string, p Purpose, wrap func(string) *ast.Type) func() (*ast.Type, bool) {
	return func() (*ast.Type, bool) {
		def, ok := c.types.Lookup(ModelKey(model, p))
		if !ok || def == nil {
			return nil, false
		}
		return wrap(def.Name), true
	}
}

// valueType returns the nullable named type of a scalar or enum value.
func (c *Converter) valueType(m *schema.Model, f *field.Descriptor, info kindInfo) (*ast.Type, error) {
	if f.Type == field.TypeEnum && len(f.Enums) > 0 {
		def, err := c.enumDef(m, f)
		if err != nil {
			return nil, err
		}
		return ast.NamedType(def.Name, nil), nil
	}
	return c.named(info.scalar), nil
}

func (c *Converter) named(scalar string) *ast.Type {
	c.Use(scalar)
	return ast.NamedType(scalar, nil)
}

// Use records a reference to a scalar. Built-in scalars are ignored.
func (c *Converter) Use(scalar string) {
	if Builtin(scalar) {
		return
	}
	c.mu.Lock()
	c.scalars[scalar] = true
	c.mu.Unlock()
}

// UsedScalars returns the custom scalars referenced so far, sorted.
func (c *Converter) UsedScalars() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.scalars))
	for name := range c.scalars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// filterDef returns the shared filter input of a kind, e.g. StringFilter.
func (c *Converter) filterDef(info kindInfo) (*ast.Definition, error) {
	key := Key{Kind: info.scalar, Purpose: Filter}
	return c.types.LoadOrStore(key, func() (*ast.Definition, error) {
		def := &ast.Definition{
			Kind: ast.InputObject,
			Name: info.scalar + "Filter",
		}
		for _, op := range info.ops {
			var t *ast.Type
			switch op {
			case filter.OpIn, filter.OpRange:
				t = ast.ListType(ast.NonNullNamedType(info.scalar, nil), nil)
				c.Use(info.scalar)
			case filter.OpIsNull:
				t = named("Boolean")
			case filter.OpRegex, filter.OpIRegex:
				t = named("String")
			default:
				t = c.named(info.scalar)
			}
			def.Fields = append(def.Fields, &ast.FieldDefinition{Name: string(op), Type: t})
		}
		return def, nil
	})
}

// enumDef returns the enum type of an enum field.
func (c *Converter) enumDef(m *schema.Model, f *field.Descriptor) (*ast.Definition, error) {
	key := Key{Model: m.Name, Field: f.Name, Kind: "enum", Purpose: Output}
	return c.types.LoadOrStore(key, func() (*ast.Definition, error) {
		def := &ast.Definition{
			Kind:        ast.Enum,
			Name:        c.namer.Enum(m, f.Name),
			Description: f.Comment,
		}
		for i, name := range f.EnumNames() {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
				Name:        name,
				Description: f.Enums[i],
			})
		}
		return def, nil
	})
}

// OrderDirection returns the shared sort direction enum.
func (c *Converter) OrderDirection() (*ast.Definition, error) {
	key := Key{Kind: OrderDirection, Purpose: OrderBy}
	return c.types.LoadOrStore(key, func() (*ast.Definition, error) {
		def := &ast.Definition{Kind: ast.Enum, Name: OrderDirection}
		for _, d := range order.Directions {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{Name: string(d)})
		}
		return def, nil
	})
}
