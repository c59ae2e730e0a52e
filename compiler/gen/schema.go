package gen

import (
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/convert"
	"github.com/syssam/cruddals/schema"
)

// Entity is one built model.
type Entity struct {
	Model *schema.Model
	// Ops holds the generated operations.
	Ops cruddals.Op
	// Types holds the model-level definitions by purpose.
	Types map[convert.Purpose]*ast.Definition
	// Fields holds the root field names by operation.
	Fields map[cruddals.Op]string

	purposes []convert.Purpose
}

// TypeName returns the name of the definition generated for p, or "" if
// none was.
func (e *Entity) TypeName(p convert.Purpose) string {
	if def, ok := e.Types[p]; ok {
		return def.Name
	}
	return ""
}

// Schema is the product of a build.
type Schema struct {
	Doc      *ast.SchemaDocument
	Entities []*Entity

	resolvers map[string]map[string]Resolver
}

// Entity returns the entity of the named model.
func (s *Schema) Entity(model string) (*Entity, bool) {
	for _, e := range s.Entities {
		if e.Model.Name == model {
			return e, true
		}
	}
	return nil, false
}

// Resolver returns the resolver attached to field name of type typ.
func (s *Schema) Resolver(typ, name string) (Resolver, bool) {
	r, ok := s.resolvers[typ][name]
	return r, ok
}

// Definition returns the definition with the given name.
func (s *Schema) Definition(name string) (*ast.Definition, bool) {
	def := s.Doc.Definitions.ForName(name)
	return def, def != nil
}

// SDL renders the schema document.
func (s *Schema) SDL() string {
	var b strings.Builder
	formatter.NewFormatter(&b, formatter.WithIndent("  ")).FormatSchemaDocument(s.Doc)
	return b.String()
}

// Validate parses the rendered document and validates it as a schema.
func (s *Schema) Validate() (*ast.Schema, error) {
	sch, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: s.SDL()})
	if err != nil {
		return nil, NewGenerationError("validate", "invalid schema document", err)
	}
	return sch, nil
}
