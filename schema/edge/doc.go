// Package edge provides fluent builders for declaring relations between models.
//
// A relation is a field whose kind references another model. Direct
// relations store the reference on the declaring model:
//
//	edge.ManyToOne("category", "Category")   // items.category_id
//	edge.OneToOne("profile", "Profile")      // users.profile_id, unique
//	edge.ManyToMany("tags", "Tag")           // items_tags join table
//
// Reverse relations are owned by the related model. They are derived
// automatically by schema.NewGraph, named after Ref or the plural of the
// declaring model, and can also be declared explicitly:
//
//	edge.OneToMany("items", "Item").Ref("category")
//
// # Inheritance
//
// A one-to-one link to the model a schema inherits from is marked with
// ParentLink. Such links are kept in storage and output, but are left out
// of filter, order and mutation inputs to avoid a circular field back to
// the parent:
//
//	edge.OneToOne("place_ptr", "Place").ParentLink()
package edge
