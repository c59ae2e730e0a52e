package gen

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/convert"
	"github.com/syssam/cruddals/registry"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
)

// Names of the shared definitions.
const (
	QueryType             = "Query"
	MutationType          = "Mutation"
	ErrorType             = "ErrorType"
	ErrorsType            = "ErrorsType"
	PaginationConfigInput = "PaginationConfigInput"
)

// Argument names of the root fields.
const (
	ArgWhere     = "where"
	ArgOrderBy   = "orderBy"
	ArgPaginated = "paginated"
	ArgInput     = "input"
)

// Assembler builds the API schema of a model graph.
type Assembler struct {
	graph *schema.Graph
	cfg   *Config
}

// NewAssembler returns an assembler of the models in g.
func NewAssembler(g *schema.Graph, opts ...Option) (*Assembler, error) {
	if g == nil {
		return nil, NewConfigError("Graph", nil, "graph cannot be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Assembler{graph: g, cfg: cfg}, nil
}

// Config returns the assembler configuration.
func (a *Assembler) Config() *Config { return a.cfg }

// Graph returns the assembled graph.
func (a *Assembler) Graph() *schema.Graph { return a.graph }

// models returns the selected models.
func (a *Assembler) models() ([]*schema.Model, []error) {
	var (
		models []*schema.Model
		errs   []error
	)
	if len(a.cfg.Models) > 0 {
		for _, name := range a.cfg.Models {
			m, ok := a.graph.Model(name)
			if !ok {
				errs = append(errs, cruddals.NewSchemaBuildError(name, "", "model is not part of the graph", nil))
				continue
			}
			models = append(models, m)
		}
		return models, errs
	}
	exclude := make(map[string]bool, len(a.cfg.ExcludeModels))
	for _, name := range a.cfg.ExcludeModels {
		exclude[name] = true
	}
	for _, m := range a.graph.Models {
		if !exclude[m.Name] {
			models = append(models, m)
		}
	}
	return models, errs
}

// operations returns the operations generated for m. Operations that were
// requested explicitly but cannot be generated fail the model.
func (a *Assembler) operations(m *schema.Model, creatable bool) (cruddals.Op, error) {
	ops, explicit := a.cfg.Operations[m.Name]
	if !explicit {
		ops = cruddals.OpAll &^ a.cfg.ExcludeOperations[m.Name]
	}
	state := cruddals.OpActivate | cruddals.OpDeactivate
	if f, ok := m.Field(a.cfg.StateField); !ok || f.Type != field.TypeBool {
		if explicit && ops.Is(state) {
			return 0, cruddals.NewSchemaBuildError(m.Name, (ops & state).String(), fmt.Sprintf("model has no boolean state field %q", a.cfg.StateField), nil)
		}
		ops &^= state
	}
	if !creatable {
		if explicit && ops.Is(cruddals.OpCreate) {
			return 0, cruddals.NewSchemaBuildError(m.Name, cruddals.OpCreate.String(), "model has no editable fields", nil)
		}
		ops &^= cruddals.OpCreate
	}
	return ops, nil
}

// fieldPurposes lists the conversions made for every field.
var fieldPurposes = [...]struct{ p, sub convert.Purpose }{
	{convert.Output, convert.Output},
	{convert.MutateCreate, convert.MutateCreate},
	{convert.MutateUpdate, convert.MutateUpdate},
	{convert.MutateUpdate, convert.CreateUpdate},
	{convert.Filter, convert.Filter},
	{convert.OrderBy, convert.OrderBy},
}

// Build assembles the schema. Models that fail to build are left out of the
// schema and reported in the returned error; the schema of the remaining
// models is returned along with it.
func (a *Assembler) Build() (*Schema, error) {
	b := &builder{
		cfg:       a.cfg,
		namer:     a.cfg.Namer,
		types:     registry.New[convert.Key, *ast.Definition](),
		query:     &ast.Definition{Kind: ast.Object, Name: QueryType},
		mutation:  &ast.Definition{Kind: ast.Object, Name: MutationType},
		resolvers: make(map[string]map[string]Resolver),
	}
	b.conv = convert.New(b.types, b.namer)
	models, errs := a.models()
	for _, m := range models {
		creatable, err := b.convert(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ops, err := a.operations(m, creatable)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.entities = append(b.entities, &Entity{
			Model:  m,
			Ops:    ops,
			Types:  make(map[convert.Purpose]*ast.Definition),
			Fields: make(map[cruddals.Op]string),
		})
	}
	for _, e := range b.entities {
		b.shells(e)
	}
	for _, e := range b.entities {
		b.fill(e)
	}
	for _, e := range b.entities {
		b.roots(e)
	}
	s := &Schema{
		Doc:       b.document(),
		Entities:  b.entities,
		resolvers: b.resolvers,
	}
	if _, err := s.Validate(); err != nil {
		errs = append(errs, err)
	}
	return s, errors.Join(errs...)
}

// builder holds the state of one Build.
type builder struct {
	cfg       *Config
	namer     convert.Namer
	types     *convert.Types
	conv      *convert.Converter
	entities  []*Entity
	query     *ast.Definition
	mutation  *ast.Definition
	resolvers map[string]map[string]Resolver
}

// convert converts every field of m for every purpose and reports whether
// the model has a scalar field to create it with.
func (b *builder) convert(m *schema.Model) (creatable bool, err error) {
	for _, f := range m.Fields {
		for _, fp := range fieldPurposes {
			cf, err := b.conv.Convert(m, f, fp.p, fp.sub)
			if err != nil {
				return false, cruddals.NewSchemaBuildError(m.Name, "", "cannot convert field "+f.Name, err)
			}
			if fp.p == convert.MutateCreate && cf != nil && !f.Type.IsRelation() {
				creatable = true
			}
		}
	}
	return creatable, nil
}

// shells registers the named, empty definitions of e.
func (b *builder) shells(e *Entity) {
	m := e.Model
	e.purposes = []convert.Purpose{convert.Output}
	if e.Ops.Is(cruddals.OpCreate) {
		e.purposes = append(e.purposes, convert.MutateCreate)
	}
	if e.Ops.Is(cruddals.OpUpdate) {
		e.purposes = append(e.purposes, convert.MutateUpdate)
	}
	e.purposes = append(e.purposes, convert.CreateUpdate, convert.ConnectDisconnect, convert.Filter, convert.OrderBy)
	if e.Ops.Is(cruddals.OpList | cruddals.OpSearch) {
		e.purposes = append(e.purposes, convert.Paginated)
	}
	for _, p := range e.purposes {
		def := &ast.Definition{Kind: ast.InputObject, Name: b.namer.Type(m, p)}
		if p == convert.Output || p == convert.Paginated {
			def.Kind = ast.Object
		}
		if p == convert.Output {
			def.Description = m.Comment
		}
		b.types.Register(convert.ModelKey(m.Name, p), def)
		e.Types[p] = def
	}
}

// fill adds the fields of every shell of e.
func (b *builder) fill(e *Entity) {
	m := e.Model
	for _, p := range e.purposes {
		def := e.Types[p]
		switch p {
		case convert.CreateUpdate:
			for _, f := range m.Fields {
				b.field(e, def, f, convert.MutateUpdate, convert.CreateUpdate)
			}
		case convert.ConnectDisconnect:
			def.Fields = ast.FieldList{
				{Name: "connect", Type: ast.ListType(ast.NonNullNamedType(e.Types[convert.CreateUpdate].Name, nil), nil)},
				{Name: "disconnect", Type: ast.ListType(ast.NonNullNamedType(e.Types[convert.Filter].Name, nil), nil)},
			}
		case convert.Paginated:
			def.Fields = b.paginated(e.Types[convert.Output].Name)
		default:
			for _, f := range m.Fields {
				b.field(e, def, f, p, p)
			}
		}
		if p == convert.Filter {
			def.Fields = append(def.Fields,
				&ast.FieldDefinition{Name: "AND", Type: ast.ListType(ast.NonNullNamedType(def.Name, nil), nil)},
				&ast.FieldDefinition{Name: "OR", Type: ast.ListType(ast.NonNullNamedType(def.Name, nil), nil)},
				&ast.FieldDefinition{Name: "NOT", Type: ast.NamedType(def.Name, nil)},
			)
		}
	}
}

// field adds the conversion of f for p to def, unless the field is absent.
func (b *builder) field(e *Entity, def *ast.Definition, f *field.Descriptor, p, sub convert.Purpose) {
	cf, err := b.conv.Convert(e.Model, f, p, sub)
	if err != nil || cf == nil {
		return
	}
	fd, ok := cf.Definition()
	if !ok {
		return
	}
	if p == convert.Output && f.Type.IsRelation() {
		if f.Type.Many() {
			fd.Arguments = b.relationArgs(f.Related)
		}
		if b.cfg.Resolvers != nil {
			b.resolve(def.Name, f.Name, b.cfg.Resolvers.Relation(e.Model, f))
		}
	}
	def.Fields = append(def.Fields, fd)
}

// relationArgs returns the where and orderBy arguments of a many-valued
// output relation.
func (b *builder) relationArgs(target string) ast.ArgumentDefinitionList {
	var args ast.ArgumentDefinitionList
	if def, ok := b.types.Lookup(convert.ModelKey(target, convert.Filter)); ok {
		args = append(args, &ast.ArgumentDefinition{Name: ArgWhere, Type: ast.NamedType(def.Name, nil)})
	}
	if def, ok := b.types.Lookup(convert.ModelKey(target, convert.OrderBy)); ok {
		args = append(args, &ast.ArgumentDefinition{Name: ArgOrderBy, Type: ast.ListType(ast.NonNullNamedType(def.Name, nil), nil)})
	}
	return args
}

func (b *builder) resolve(typ, name string, r Resolver) {
	if r == nil {
		return
	}
	if b.resolvers[typ] == nil {
		b.resolvers[typ] = make(map[string]Resolver)
	}
	b.resolvers[typ][name] = r
}

func (b *builder) paginated(object string) ast.FieldList {
	nonNull := func(name string) *ast.Type { return ast.NonNullNamedType(name, nil) }
	return ast.FieldList{
		{Name: "total", Type: nonNull("Int")},
		{Name: "page", Type: nonNull("Int")},
		{Name: "pages", Type: nonNull("Int")},
		{Name: "has_next", Type: nonNull("Boolean")},
		{Name: "has_prev", Type: nonNull("Boolean")},
		{Name: "index_start_obj", Type: nonNull("Int")},
		{Name: "index_end_obj", Type: nonNull("Int")},
		{Name: "objects", Type: ast.NonNullListType(nonNull(object), nil)},
	}
}

// shared returns the definition registered under the given kind, building
// it on first use.
func (b *builder) shared(kind string, p convert.Purpose, build func() *ast.Definition) *ast.Definition {
	def, _ := b.types.LoadOrStore(convert.Key{Kind: kind, Purpose: p}, func() (*ast.Definition, error) {
		return build(), nil
	})
	return def
}

func (b *builder) errorsType() *ast.Definition {
	b.shared(ErrorType, convert.Output, func() *ast.Definition {
		return &ast.Definition{
			Kind:        ast.Object,
			Name:        ErrorType,
			Description: "Messages of one invalid field.",
			Fields: ast.FieldList{
				{Name: "field", Type: ast.NonNullNamedType("String", nil)},
				{Name: "messages", Type: ast.NonNullListType(ast.NonNullNamedType("String", nil), nil)},
			},
		}
	})
	return b.shared(ErrorsType, convert.Output, func() *ast.Definition {
		return &ast.Definition{
			Kind:        ast.Object,
			Name:        ErrorsType,
			Description: "Errors of one input object.",
			Fields: ast.FieldList{
				{Name: "object_position", Type: ast.NamedType("String", nil)},
				{Name: "errors", Type: ast.ListType(ast.NonNullNamedType(ErrorType, nil), nil)},
			},
		}
	})
}

func (b *builder) paginationInput() *ast.Definition {
	return b.shared(PaginationConfigInput, convert.Paginated, func() *ast.Definition {
		b.conv.Use(convert.PageSize)
		return &ast.Definition{
			Kind: ast.InputObject,
			Name: PaginationConfigInput,
			Fields: ast.FieldList{
				{Name: "page", Type: ast.NamedType("Int", nil), DefaultValue: &ast.Value{Kind: ast.IntValue, Raw: "1"}},
				{Name: "page_size", Type: ast.NamedType(convert.PageSize, nil), DefaultValue: &ast.Value{Kind: ast.StringValue, Raw: "All"}},
			},
		}
	})
}

// payload returns the result type of a mutation of e.
func (b *builder) payload(e *Entity, op cruddals.Op) *ast.Definition {
	m := e.Model
	return b.shared(m.Name+"."+op.String(), convert.Output, func() *ast.Definition {
		def := &ast.Definition{Kind: ast.Object, Name: b.namer.Payload(m, op)}
		if op == cruddals.OpDelete {
			def.Fields = append(def.Fields, &ast.FieldDefinition{Name: "success", Type: ast.NonNullNamedType("Boolean", nil)})
		}
		def.Fields = append(def.Fields,
			&ast.FieldDefinition{Name: "objects", Type: ast.ListType(ast.NonNullNamedType(e.Types[convert.Output].Name, nil), nil)},
			&ast.FieldDefinition{Name: "errors", Type: ast.ListType(ast.NonNullNamedType(b.errorsType().Name, nil), nil)},
		)
		return def
	})
}

// roots adds the root operation fields of e.
func (b *builder) roots(e *Entity) {
	m := e.Model
	var (
		output = e.Types[convert.Output].Name
		where  = e.Types[convert.Filter].Name
	)
	for _, op := range e.Ops.Ops() {
		fd := &ast.FieldDefinition{Name: b.namer.Operation(m, op)}
		switch op {
		case cruddals.OpRead:
			fd.Arguments = ast.ArgumentDefinitionList{{Name: ArgWhere, Type: ast.NonNullNamedType(where, nil)}}
			fd.Type = ast.NamedType(output, nil)
		case cruddals.OpList:
			fd.Arguments = ast.ArgumentDefinitionList{{Name: ArgPaginated, Type: ast.NamedType(b.paginationInput().Name, nil)}}
			fd.Type = ast.NonNullNamedType(e.Types[convert.Paginated].Name, nil)
		case cruddals.OpSearch:
			fd.Arguments = ast.ArgumentDefinitionList{
				{Name: ArgWhere, Type: ast.NamedType(where, nil)},
				{Name: ArgOrderBy, Type: ast.ListType(ast.NonNullNamedType(e.Types[convert.OrderBy].Name, nil), nil)},
				{Name: ArgPaginated, Type: ast.NamedType(b.paginationInput().Name, nil)},
			}
			fd.Type = ast.NonNullNamedType(e.Types[convert.Paginated].Name, nil)
		case cruddals.OpCreate, cruddals.OpUpdate:
			input := e.Types[convert.MutateCreate].Name
			if op == cruddals.OpUpdate {
				input = e.Types[convert.MutateUpdate].Name
			}
			fd.Arguments = ast.ArgumentDefinitionList{{Name: ArgInput, Type: ast.NonNullListType(ast.NonNullNamedType(input, nil), nil)}}
			fd.Type = ast.NonNullNamedType(b.payload(e, op).Name, nil)
		default:
			fd.Arguments = ast.ArgumentDefinitionList{{Name: ArgWhere, Type: ast.NonNullNamedType(where, nil)}}
			fd.Type = ast.NonNullNamedType(b.payload(e, op).Name, nil)
		}
		fd.Arguments = append(fd.Arguments, b.cfg.ExtraArgs[m.Name][op]...)
		root := b.query
		if op.IsMutation() {
			root = b.mutation
		}
		root.Fields = append(root.Fields, fd)
		e.Fields[op] = fd.Name
		if b.cfg.Resolvers != nil {
			b.resolve(root.Name, fd.Name, b.cfg.Resolvers.Operation(m, op))
		}
	}
}

// document collects the registered definitions: custom scalars first,
// then every registered type in registration order, then the root types.
func (b *builder) document() *ast.SchemaDocument {
	doc := &ast.SchemaDocument{}
	for _, name := range b.conv.UsedScalars() {
		doc.Definitions = append(doc.Definitions, &ast.Definition{
			Kind:        ast.Scalar,
			Name:        name,
			Description: convert.Scalars[name],
		})
	}
	for _, k := range b.types.Keys() {
		if def, ok := b.types.Lookup(k); ok {
			doc.Definitions = append(doc.Definitions, def)
		}
	}
	doc.Definitions = append(doc.Definitions, b.query)
	if len(b.mutation.Fields) > 0 {
		doc.Definitions = append(doc.Definitions, b.mutation)
	}
	return doc
}
