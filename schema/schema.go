package schema

import (
	"fmt"
	"reflect"

	"github.com/go-openapi/inflect"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/schema/field"
)

type (
	// Field is implemented by the field and edge builders.
	Field interface {
		Descriptor() *field.Descriptor
	}

	// Mixin is a reusable set of fields mixed into a schema.
	Mixin interface {
		Fields() []Field
	}

	// Interface is implemented by Go model declarations:
	//
	//	type Item struct{ schema.Base }
	//
	//	func (Item) Fields() []schema.Field {
	//		return []schema.Field{
	//			field.String("name"),
	//		}
	//	}
	Interface interface {
		Fields() []Field
		Edges() []Field
		Mixin() []Mixin
		Config() Config
	}

	// Config holds the model-level options.
	Config struct {
		Plural     string // Defaults to the English plural of the name.
		Table      string // Defaults to snake_case(Plural).
		PrimaryKey string // Defaults to the first ID field, or an added "id".
		Comment    string
	}
)

// Base is the default implementation of Interface. It is meant to be
// embedded in model declarations.
type Base struct{}

// Fields of the model.
func (Base) Fields() []Field { return nil }

// Edges of the model.
func (Base) Edges() []Field { return nil }

// Mixin of the model.
func (Base) Mixin() []Mixin { return nil }

// Config of the model.
func (Base) Config() Config { return Config{} }

var _ Interface = (*Base)(nil)

// Model describes one model: an ordered set of uniquely named fields and
// the primary-key field.
type Model struct {
	Name    string
	Plural  string
	Table   string
	Comment string
	Fields  []*field.Descriptor

	pk     *field.Descriptor
	fields map[string]*field.Descriptor
}

// NewModel validates the given fields and returns the model descriptor.
func NewModel(name string, cfg Config, fields ...Field) (*Model, error) {
	if name == "" {
		return nil, cruddals.NewSchemaBuildError("", "", "model name is required", nil)
	}
	m := &Model{
		Name:    name,
		Plural:  cfg.Plural,
		Table:   cfg.Table,
		Comment: cfg.Comment,
		fields:  make(map[string]*field.Descriptor, len(fields)),
	}
	if m.Plural == "" {
		m.Plural = inflect.Pluralize(name)
	}
	if m.Table == "" {
		m.Table = inflect.Underscore(m.Plural)
	}
	for _, f := range fields {
		d := f.Descriptor()
		if err := d.Err(); err != nil {
			return nil, cruddals.NewSchemaBuildError(name, "", "invalid field", err)
		}
		if err := m.add(d); err != nil {
			return nil, err
		}
	}
	switch {
	case cfg.PrimaryKey != "":
		pk, ok := m.fields[cfg.PrimaryKey]
		if !ok {
			return nil, cruddals.NewSchemaBuildError(name, "", fmt.Sprintf("primary key %q is not a field", cfg.PrimaryKey), nil)
		}
		if pk.Type.IsRelation() {
			return nil, cruddals.NewSchemaBuildError(name, "", fmt.Sprintf("primary key %q cannot be a relation", cfg.PrimaryKey), nil)
		}
		m.pk = pk
	default:
		for _, d := range m.Fields {
			if d.Type == field.TypeID {
				m.pk = d
				break
			}
		}
		if m.pk == nil {
			if _, ok := m.fields["id"]; ok {
				return nil, cruddals.NewSchemaBuildError(name, "", `field "id" is not a primary key and no primary key was declared`, nil)
			}
			m.pk = field.ID("id").Descriptor()
			m.pk.Column = "id"
			m.fields["id"] = m.pk
			m.Fields = append([]*field.Descriptor{m.pk}, m.Fields...)
		}
	}
	return m, nil
}

func (m *Model) add(d *field.Descriptor) error {
	switch {
	case d.Name == "":
		return cruddals.NewSchemaBuildError(m.Name, "", "field name is required", nil)
	case !d.Type.Valid():
		return cruddals.NewSchemaBuildError(m.Name, "", fmt.Sprintf("field %q has invalid kind %s", d.Name, d.Type), nil)
	case d.Type.IsRelation() && d.Related == "":
		return cruddals.NewSchemaBuildError(m.Name, "", fmt.Sprintf("relation %q has no related model", d.Name), nil)
	}
	if _, ok := m.fields[d.Name]; ok {
		return cruddals.NewSchemaBuildError(m.Name, "", fmt.Sprintf("duplicate field %q", d.Name), nil)
	}
	if d.Column == "" && d.HasColumn() {
		d.Column = d.Name
		if d.Type.IsRelation() {
			d.Column = d.Name + "_id"
		}
	}
	m.fields[d.Name] = d
	m.Fields = append(m.Fields, d)
	return nil
}

// FromSchema loads the model declared by a Go type implementing Interface.
// The model is named after the type.
func FromSchema(s Interface) (*Model, error) {
	typ := reflect.Indirect(reflect.ValueOf(s)).Type()
	var fields []Field
	for _, mx := range s.Mixin() {
		fields = append(fields, mx.Fields()...)
	}
	fields = append(fields, s.Fields()...)
	fields = append(fields, s.Edges()...)
	return NewModel(typ.Name(), s.Config(), fields...)
}

// Field returns the field with the given name. "pk" resolves to the primary key.
func (m *Model) Field(name string) (*field.Descriptor, bool) {
	if name == "pk" {
		return m.pk, true
	}
	f, ok := m.fields[name]
	return f, ok
}

// PrimaryKey returns the primary-key field.
func (m *Model) PrimaryKey() *field.Descriptor {
	return m.pk
}

// Columns returns the fields stored on the model table, primary key first.
func (m *Model) Columns() []*field.Descriptor {
	cols := []*field.Descriptor{m.pk}
	for _, f := range m.Fields {
		if f != m.pk && f.HasColumn() {
			cols = append(cols, f)
		}
	}
	return cols
}

// Relations returns the relation fields of the model.
func (m *Model) Relations() []*field.Descriptor {
	var rels []*field.Descriptor
	for _, f := range m.Fields {
		if f.Type.IsRelation() {
			rels = append(rels, f)
		}
	}
	return rels
}

// Label returns the snake_case singular name of the model.
func (m *Model) Label() string {
	return inflect.Underscore(m.Name)
}
