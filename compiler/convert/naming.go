package convert

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/schema"
)

// title capitalizes s. Casers keep state, so one is made per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Namer names the generated types and operations. Prefix and Suffix
// decorate every model-derived name.
type Namer struct {
	Prefix string
	Suffix string
}

// Singular returns the decorated singular name: "Item" with prefix "shop"
// becomes "ShopItem".
func (n Namer) Singular(m *schema.Model) string {
	return title(n.Prefix) + m.Name + title(n.Suffix)
}

// Plural returns the decorated plural name. The prefix keeps its case so
// that operation names stay lower camel case.
func (n Namer) Plural(m *schema.Model) string {
	return strings.ToLower(n.Prefix) + inflect.Camelize(m.Plural) + title(n.Suffix)
}

// Type returns the name of the model-level type generated for p.
func (n Namer) Type(m *schema.Model, p Purpose) string {
	s := n.Singular(m)
	switch p {
	case Output:
		return s + "Type"
	case MutateCreate:
		return "Create" + s + "Input"
	case MutateUpdate:
		return "Update" + s + "Input"
	case CreateUpdate:
		return s + "Input"
	case ConnectDisconnect:
		return s + "ConnectDisconnectInput"
	case Filter:
		return s + "FilterInput"
	case OrderBy:
		return s + "OrderByInput"
	case Paginated:
		return s + "PaginatedType"
	}
	return s + title(p.String())
}

// Enum returns the name of the enum type of an enum field.
func (n Namer) Enum(m *schema.Model, field string) string {
	return n.Singular(m) + inflect.Camelize(field) + "Enum"
}

// Operation returns the root field name of op: readItem, listItems,
// createItems and so on.
func (n Namer) Operation(m *schema.Model, op cruddals.Op) string {
	if op == cruddals.OpRead {
		return "read" + n.Singular(m)
	}
	p := n.Plural(m)
	return strings.ToLower(op.String()) + strings.ToUpper(p[:1]) + p[1:]
}

// Payload returns the payload type name of a mutation.
func (n Namer) Payload(m *schema.Model, op cruddals.Op) string {
	name := n.Operation(m, op)
	return strings.ToUpper(name[:1]) + name[1:] + "Payload"
}
