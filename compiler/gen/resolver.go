package gen

import (
	"context"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
)

// Resolver computes the value of one field at request time. parent is the
// object holding the field, nil for root fields. args holds the decoded
// field arguments.
type Resolver func(ctx context.Context, parent any, args map[string]any) (any, error)

// Resolvers provides the resolvers attached to a schema. A nil Resolver
// leaves the field without one.
type Resolvers interface {
	// Relation returns the resolver of an output relation field.
	Relation(m *schema.Model, f *field.Descriptor) Resolver
	// Operation returns the resolver of a root operation field.
	Operation(m *schema.Model, op cruddals.Op) Resolver
}
