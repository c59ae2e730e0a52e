// Package mixin provides reusable field sets for model declarations.
//
// Embed Schema and override Fields to create a custom mixin:
//
//	type Audit struct {
//		mixin.Schema
//	}
//
//	func (Audit) Fields() []schema.Field {
//		return []schema.Field{
//			field.String("created_by").Optional(),
//		}
//	}
//
// Mixins are attached to a model declaration with its Mixin method:
//
//	func (Item) Mixin() []schema.Mixin {
//		return []schema.Mixin{
//			mixin.Time{},   // created_at, updated_at
//			mixin.Active{}, // is_active, toggled by activate/deactivate
//		}
//	}
package mixin
