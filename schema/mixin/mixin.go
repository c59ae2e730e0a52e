package mixin

import (
	"time"

	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
)

// Schema is the default implementation of schema.Mixin.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []schema.Field { return nil }

var _ schema.Mixin = (*Schema)(nil)

// StateField is the name of the field added by Active.
const StateField = "is_active"

func now() any { return time.Now().UTC() }

// Time adds created_at and updated_at timestamp fields to a schema.
// Neither is accepted from mutation input. created_at is set on creation,
// updated_at on creation and on every update.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []schema.Field {
	return []schema.Field{
		field.Time("created_at").
			Default(now).
			ReadOnly().
			Comment("Timestamp when the object was created"),
		field.Time("updated_at").
			Default(now).
			UpdateDefault(now).
			ReadOnly().
			Comment("Timestamp when the object was last updated"),
	}
}

// CreateTime adds only the created_at timestamp field to a schema.
type CreateTime struct {
	Schema
}

// Fields returns the created_at field.
func (CreateTime) Fields() []schema.Field {
	return Time{}.Fields()[:1]
}

// Active adds the is_active state field toggled by the activate and
// deactivate operations. New objects are active.
type Active struct {
	Schema
}

// Fields returns the state field.
func (Active) Fields() []schema.Field {
	return []schema.Field{
		field.Bool(StateField).
			Default(true).
			Comment("Whether the object is active"),
	}
}
