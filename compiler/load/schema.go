// Package load builds schema graphs from model files and Go declarations.
//
// A model file is YAML:
//
//	models:
//	  - name: Category
//	    plural: Categories
//	    fields:
//	      - {name: name, type: string, unique: true, max_len: 100}
//	  - name: Item
//	    mixins: [time, active]
//	    fields:
//	      - {name: price, type: decimal, nullable: true}
//	      - {name: status, type: enum, values: [draft, published], default: draft}
//	      - {name: category, type: foreign_key, related: Category, nullable: true}
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/edge"
	"github.com/syssam/cruddals/schema/field"
	"github.com/syssam/cruddals/schema/mixin"
)

// Schema is the content of a model file.
type Schema struct {
	Models []*Model `yaml:"models"`
}

// Model declares one model.
type Model struct {
	Name       string   `yaml:"name"`
	Plural     string   `yaml:"plural,omitempty"`
	Table      string   `yaml:"table,omitempty"`
	PrimaryKey string   `yaml:"primary_key,omitempty"`
	Comment    string   `yaml:"comment,omitempty"`
	Mixins     []string `yaml:"mixins,omitempty"`
	Fields     []*Field `yaml:"fields"`
}

// Field declares one field or relation of a model.
type Field struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Column     string   `yaml:"column,omitempty"`
	Nullable   bool     `yaml:"nullable,omitempty"`
	Optional   bool     `yaml:"optional,omitempty"`
	Default    any      `yaml:"default,omitempty"`
	ReadOnly   bool     `yaml:"read_only,omitempty"`
	Immutable  bool     `yaml:"immutable,omitempty"`
	Unique     bool     `yaml:"unique,omitempty"`
	Comment    string   `yaml:"comment,omitempty"`
	Values     []string `yaml:"values,omitempty"`
	MinLen     *int     `yaml:"min_len,omitempty"`
	MaxLen     *int     `yaml:"max_len,omitempty"`
	Min        *float64 `yaml:"min,omitempty"`
	Max        *float64 `yaml:"max,omitempty"`
	Match      string   `yaml:"match,omitempty"`
	Related    string   `yaml:"related,omitempty"`
	Ref        string   `yaml:"ref,omitempty"`
	Through    string   `yaml:"through,omitempty"`
	ParentLink bool     `yaml:"parent_link,omitempty"`
}

// DefaultNow is the default of time fields set to the current time.
const DefaultNow = "now"

var mixins = map[string]schema.Mixin{
	"time":        mixin.Time{},
	"create_time": mixin.CreateTime{},
	"active":      mixin.Active{},
}

// Load reads the model file at path.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load: %s: %w", path, err)
	}
	return s, nil
}

// Unmarshal decodes a model file.
func Unmarshal(buf []byte) (*Schema, error) {
	return Decode(bytes.NewReader(buf))
}

// Decode decodes a model file from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	s := &Schema{}
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return s, nil
}

// Marshal encodes s as a model file.
func (s *Schema) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Graph builds the schema graph of the declared models.
func (s *Schema) Graph() (*schema.Graph, error) {
	if len(s.Models) == 0 {
		return nil, errors.New("load: no models declared")
	}
	models := make([]*schema.Model, 0, len(s.Models))
	for _, m := range s.Models {
		sm, err := m.build()
		if err != nil {
			return nil, err
		}
		models = append(models, sm)
	}
	return schema.NewGraph(models...)
}

func (m *Model) build() (*schema.Model, error) {
	var fields []schema.Field
	for _, name := range m.Mixins {
		mx, ok := mixins[name]
		if !ok {
			return nil, fmt.Errorf("load: model %q: unknown mixin %q", m.Name, name)
		}
		fs, err := safeFields(mx)
		if err != nil {
			return nil, fmt.Errorf("load: model %q: %w", m.Name, err)
		}
		fields = append(fields, fs...)
	}
	for _, f := range m.Fields {
		sf, err := f.build()
		if err != nil {
			return nil, fmt.Errorf("load: model %q: field %q: %w", m.Name, f.Name, err)
		}
		fields = append(fields, sf)
	}
	return schema.NewModel(m.Name, schema.Config{
		Plural:     m.Plural,
		Table:      m.Table,
		PrimaryKey: m.PrimaryKey,
		Comment:    m.Comment,
	}, fields...)
}

func (f *Field) build() (schema.Field, error) {
	t, err := field.ParseType(f.Type)
	if err != nil {
		return nil, err
	}
	if t.IsRelation() {
		return f.relation(t)
	}
	b := field.New(f.Name, t)
	if len(f.Values) > 0 {
		b.Values(f.Values...)
	}
	if f.Nullable {
		b.Nullable()
	}
	if f.Optional {
		b.Optional()
	}
	if f.ReadOnly {
		b.ReadOnly()
	}
	if f.Immutable {
		b.Immutable()
	}
	if f.Unique {
		b.Unique()
	}
	if f.Column != "" {
		b.Column(f.Column)
	}
	if f.Comment != "" {
		b.Comment(f.Comment)
	}
	switch {
	case f.Default == nil:
	case f.Default == DefaultNow && (t == field.TypeTime || t == field.TypeDate):
		b.Default(func() any { return time.Now().UTC() })
	default:
		b.Default(f.Default)
	}
	if f.MinLen != nil {
		b.MinLen(*f.MinLen)
	}
	if f.MaxLen != nil {
		b.MaxLen(*f.MaxLen)
	}
	if f.Min != nil {
		b.Min(*f.Min)
	}
	if f.Max != nil {
		b.Max(*f.Max)
	}
	if f.Match != "" {
		re, err := regexp.Compile(f.Match)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		b.Match(re)
	}
	return b, nil
}

func (f *Field) relation(t field.Type) (schema.Field, error) {
	if f.Related == "" {
		return nil, errors.New("relation requires a related model")
	}
	var b *edge.Builder
	switch t {
	case field.TypeForeignKey:
		b = edge.ManyToOne(f.Name, f.Related)
	case field.TypeOneToOne:
		b = edge.OneToOne(f.Name, f.Related)
	case field.TypeManyToMany:
		b = edge.ManyToMany(f.Name, f.Related)
	case field.TypeOneToMany:
		b = edge.OneToMany(f.Name, f.Related)
	case field.TypeOneToOneRel:
		b = edge.OneToOneRel(f.Name, f.Related)
	case field.TypeManyToManyRel:
		b = edge.ManyToManyRel(f.Name, f.Related)
	}
	if f.Ref != "" {
		b.Ref(f.Ref)
	}
	if f.Nullable {
		b.Nullable()
	}
	if f.Optional {
		b.Optional()
	}
	if f.ReadOnly {
		b.ReadOnly()
	}
	if f.Column != "" {
		b.Column(f.Column)
	}
	if f.Through != "" {
		b.Through(f.Through)
	}
	if f.ParentLink {
		b.ParentLink()
	}
	if f.Comment != "" {
		b.Comment(f.Comment)
	}
	return b, nil
}

// Models builds the models of Go declarations. A declaration whose methods
// panic is reported as an error.
func Models(decls ...schema.Interface) ([]*schema.Model, error) {
	models := make([]*schema.Model, 0, len(decls))
	for _, d := range decls {
		m, err := safeModel(d)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

func safeModel(d schema.Interface) (m *schema.Model, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("load: %T panics: %v", d, v)
			m = nil
		}
	}()
	return schema.FromSchema(d)
}

// safeFields wraps the Fields method of a mixin with recover.
func safeFields(mx schema.Mixin) (fields []schema.Field, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Fields panics: %v", mx, v)
			fields = nil
		}
	}()
	return mx.Fields(), nil
}
