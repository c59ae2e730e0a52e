// Package schema describes the data model compiled into the API surface.
//
// A Model is an ordered set of uniquely named fields plus a primary key.
// Models are declared either in Go, by embedding Base:
//
//	type Item struct{ schema.Base }
//
//	func (Item) Fields() []schema.Field {
//		return []schema.Field{
//			field.String("name").MaxLen(100),
//			field.Decimal("price").Nullable(),
//		}
//	}
//
//	func (Item) Edges() []schema.Field {
//		return []schema.Field{
//			edge.ManyToOne("category", "Category"),
//		}
//	}
//
// or loaded from a model file with the compiler/load package. A Graph
// links the models of one build and derives the reverse side of every
// relation:
//
//	item, _ := schema.FromSchema(Item{})
//	category, _ := schema.FromSchema(Category{})
//	g, err := schema.NewGraph(item, category)
//	// Category now has an "items" one-to-many relation.
package schema
