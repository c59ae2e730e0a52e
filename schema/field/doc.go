// Package field provides fluent builders for declaring model fields.
//
// Field names are used verbatim as record keys and, unless Column is set,
// as storage columns:
//
//	field.ID("id")
//	field.String("name").MaxLen(100)
//	field.Decimal("price").Nullable()
//	field.Enum("status").Values("draft", "published")
//	field.Bool("is_active").Default(true)
//
// # Kinds
//
// Every field has a Type. Scalar kinds (TypeBool ... TypeBytes) carry a
// value that Type.Parse coerces from wire or storage representations into
// one canonical Go type per kind. Relation kinds (TypeForeignKey ...
// TypeManyToManyRel) reference another model and are declared with the
// edge package.
//
// # Requiredness
//
// A field is required on create when it is editable, not nullable, not
// optional and has no default:
//
//	field.String("name")                    // required
//	field.String("nick").Optional()         // may be omitted, NOT NULL in storage
//	field.String("bio").Nullable()          // may be omitted, NULL in storage
//	field.Int("stock").Default(0)           // may be omitted, 0 when missing
//	field.Time("created_at").ReadOnly()     // never accepted from input
package field
