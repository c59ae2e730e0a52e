package edge

import (
	"github.com/syssam/cruddals/schema/field"
)

// Builder is the fluent builder of a relation field.
type Builder struct {
	desc *field.Descriptor
}

func newBuilder(name, related string, t field.Type) *Builder {
	return &Builder{desc: &field.Descriptor{Name: name, Type: t, Related: related}}
}

// ManyToOne returns a builder of a foreign key to the related model.
func ManyToOne(name, related string) *Builder {
	return newBuilder(name, related, field.TypeForeignKey)
}

// OneToOne returns a builder of a unique foreign key to the related model.
func OneToOne(name, related string) *Builder {
	b := newBuilder(name, related, field.TypeOneToOne)
	b.desc.Unique = true
	return b
}

// ManyToMany returns a builder of a many-to-many relation stored in a join table.
func ManyToMany(name, related string) *Builder {
	return newBuilder(name, related, field.TypeManyToMany)
}

// OneToMany returns a builder of the reverse side of a ManyToOne relation.
func OneToMany(name, related string) *Builder {
	return newBuilder(name, related, field.TypeOneToMany)
}

// OneToOneRel returns a builder of the reverse side of a OneToOne relation.
func OneToOneRel(name, related string) *Builder {
	return newBuilder(name, related, field.TypeOneToOneRel)
}

// ManyToManyRel returns a builder of the reverse side of a ManyToMany relation.
func ManyToManyRel(name, related string) *Builder {
	return newBuilder(name, related, field.TypeManyToManyRel)
}

// Ref sets the name of the inverse field on the related model.
func (b *Builder) Ref(name string) *Builder {
	b.desc.Ref = name
	return b
}

// Nullable allows the reference to be NULL.
func (b *Builder) Nullable() *Builder {
	b.desc.Nullable = true
	return b
}

// Optional makes the relation not required on create.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// ReadOnly excludes the relation from mutation inputs.
func (b *Builder) ReadOnly() *Builder {
	b.desc.ReadOnly = true
	return b
}

// Column sets the foreign-key column of direct single relations.
func (b *Builder) Column(name string) *Builder {
	b.desc.Column = name
	return b
}

// Through sets the join table of many-to-many relations.
func (b *Builder) Through(table string) *Builder {
	b.desc.Through = table
	return b
}

// ParentLink marks a one-to-one link to the parent model of an inheritance chain.
func (b *Builder) ParentLink() *Builder {
	b.desc.ParentLink = true
	return b
}

// Comment sets the relation description.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema field interface.
func (b *Builder) Descriptor() *field.Descriptor {
	return b.desc
}
