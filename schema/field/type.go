package field

import (
	"fmt"
	"strings"
)

// Type is the kind of a field. Scalar kinds carry a value, relation kinds
// reference another model.
type Type uint8

// List of field kinds.
const (
	TypeInvalid Type = iota
	TypeID
	TypeBool
	TypeInt
	TypeInt64
	TypeUint
	TypeFloat
	TypeDecimal
	TypeString
	TypeText
	TypeEnum
	TypeDate
	TypeTimeOfDay
	TypeTime
	TypeDuration
	TypeUUID
	TypeJSON
	TypeBytes

	// Direct relations store the reference on the declaring model.
	TypeForeignKey
	TypeOneToOne
	TypeManyToMany

	// Reverse relations are derived from a direct relation of the related model.
	TypeOneToMany
	TypeOneToOneRel
	TypeManyToManyRel

	endTypes
)

var typeNames = [...]string{
	TypeInvalid:       "invalid",
	TypeID:            "id",
	TypeBool:          "bool",
	TypeInt:           "int",
	TypeInt64:         "int64",
	TypeUint:          "uint",
	TypeFloat:         "float",
	TypeDecimal:       "decimal",
	TypeString:        "string",
	TypeText:          "text",
	TypeEnum:          "enum",
	TypeDate:          "date",
	TypeTimeOfDay:     "time_of_day",
	TypeTime:          "time",
	TypeDuration:      "duration",
	TypeUUID:          "uuid",
	TypeJSON:          "json",
	TypeBytes:         "bytes",
	TypeForeignKey:    "foreign_key",
	TypeOneToOne:      "one_to_one",
	TypeManyToMany:    "many_to_many",
	TypeOneToMany:     "one_to_many",
	TypeOneToOneRel:   "one_to_one_rel",
	TypeManyToManyRel: "many_to_many_rel",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports if the given type is known.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// IsRelation reports if the type references another model.
func (t Type) IsRelation() bool {
	return t >= TypeForeignKey && t < endTypes
}

// IsReverse reports if the relation is owned by the related model.
func (t Type) IsReverse() bool {
	return t == TypeOneToMany || t == TypeOneToOneRel || t == TypeManyToManyRel
}

// Many reports if the relation is many-valued.
func (t Type) Many() bool {
	return t == TypeManyToMany || t == TypeOneToMany || t == TypeManyToManyRel
}

// Numeric reports if the type is a number.
func (t Type) Numeric() bool {
	switch t {
	case TypeID, TypeInt, TypeInt64, TypeUint, TypeFloat, TypeDecimal:
		return true
	}
	return false
}

// Textual reports if the type supports pattern matching.
func (t Type) Textual() bool {
	return t == TypeString || t == TypeText
}

// Ordered reports if values of the type can be compared with <, >.
func (t Type) Ordered() bool {
	switch {
	case t.Numeric(), t.Textual():
		return true
	case t == TypeDate, t == TypeTimeOfDay, t == TypeTime, t == TypeDuration:
		return true
	}
	return false
}

// Inverse returns the reverse kind of a direct relation kind.
func (t Type) Inverse() Type {
	switch t {
	case TypeForeignKey:
		return TypeOneToMany
	case TypeOneToOne:
		return TypeOneToOneRel
	case TypeManyToMany:
		return TypeManyToManyRel
	case TypeOneToMany:
		return TypeForeignKey
	case TypeOneToOneRel:
		return TypeOneToOne
	case TypeManyToManyRel:
		return TypeManyToMany
	}
	return TypeInvalid
}

// ParseType parses the type name used in model files.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s && Type(t).Valid() {
			return Type(t), nil
		}
	}
	switch s {
	case "many_to_one", "fk":
		return TypeForeignKey, nil
	case "datetime":
		return TypeTime, nil
	case "float64":
		return TypeFloat, nil
	}
	return TypeInvalid, fmt.Errorf("field: unknown type %q", s)
}
