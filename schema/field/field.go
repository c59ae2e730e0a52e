package field

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validator checks a parsed field value.
type Validator func(any) error

// Descriptor describes one field of a model.
type Descriptor struct {
	Name          string
	Type          Type
	Column        string     // Storage column, defaults to Name (Name+"_id" for direct single relations).
	Nullable      bool       // Stored value may be NULL.
	Optional      bool       // Not required on create even without a default.
	Default       any        // Value or func() any, applied on create.
	UpdateDefault func() any // Applied on every update.
	ReadOnly      bool       // Excluded from all mutation inputs.
	Immutable     bool       // Excluded from update inputs.
	Unique        bool
	Comment       string
	Enums         []string
	Validators    []Validator

	Related    string // Related model name of relation kinds.
	Ref        string // Inverse field name on the related model.
	Through    string // Join table of many-to-many relations.
	ParentLink bool   // One-to-one link to the model this one inherits from.

	err error
}

// Editable reports whether the field may be set through mutation inputs.
func (d *Descriptor) Editable() bool {
	return !d.ReadOnly && d.Type != TypeID
}

// Required reports whether a create payload must carry the field.
func (d *Descriptor) Required() bool {
	return d.Editable() && !d.Nullable && !d.Optional && d.Default == nil && !d.Type.Many() && !d.Type.IsReverse()
}

// HasColumn reports whether the field is stored on the model's own table.
func (d *Descriptor) HasColumn() bool {
	return !d.Type.IsRelation() || d.Type == TypeForeignKey || d.Type == TypeOneToOne
}

// DefaultValue evaluates the create default.
func (d *Descriptor) DefaultValue() any {
	if f, ok := d.Default.(func() any); ok {
		return f()
	}
	return d.Default
}

// Err returns the first error recorded by the builder.
func (d *Descriptor) Err() error {
	return d.err
}

// Validate parses v and runs the field validators on the result.
func (d *Descriptor) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	pv, err := d.Parse(v)
	if err != nil {
		return nil, err
	}
	for _, fn := range d.Validators {
		if err := fn(pv); err != nil {
			return nil, err
		}
	}
	return pv, nil
}

// Parse coerces v to the canonical Go value of the field kind.
func (d *Descriptor) Parse(v any) (any, error) {
	pv, err := d.Type.Parse(v)
	if err != nil {
		return nil, err
	}
	if d.Type == TypeEnum && len(d.Enums) > 0 && pv != nil {
		c, ok := d.choice(pv.(string))
		if !ok {
			return nil, fmt.Errorf("value %q is not a valid choice", pv)
		}
		return c, nil
	}
	return pv, nil
}

// Builder is the fluent builder of a field descriptor.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// ID returns a builder of an auto-increment integer primary key.
func ID(name string) *Builder { return newBuilder(name, TypeID) }

// Bool returns a new builder of a boolean field.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Int returns a new builder of an integer field.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Int64 returns a new builder of a big integer field.
func Int64(name string) *Builder { return newBuilder(name, TypeInt64) }

// Uint returns a new builder of a non-negative integer field.
func Uint(name string) *Builder {
	b := newBuilder(name, TypeUint)
	return b.Validate(func(v any) error {
		if n, ok := v.(int64); ok && n < 0 {
			return errors.New("value must be positive")
		}
		return nil
	})
}

// Float returns a new builder of a float field.
func Float(name string) *Builder { return newBuilder(name, TypeFloat) }

// Decimal returns a new builder of a fixed-point decimal field.
func Decimal(name string) *Builder { return newBuilder(name, TypeDecimal) }

// String returns a new builder of a short string field.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Text returns a new builder of a long text field.
func Text(name string) *Builder { return newBuilder(name, TypeText) }

// Enum returns a new builder of an enum field. Use Values to set the choices.
func Enum(name string) *Builder { return newBuilder(name, TypeEnum) }

// Date returns a new builder of a calendar date field.
func Date(name string) *Builder { return newBuilder(name, TypeDate) }

// TimeOfDay returns a new builder of a wall-clock time field.
func TimeOfDay(name string) *Builder { return newBuilder(name, TypeTimeOfDay) }

// Time returns a new builder of a timestamp field.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// Duration returns a new builder of a duration field.
func Duration(name string) *Builder { return newBuilder(name, TypeDuration) }

// UUID returns a new builder of a UUID field.
func UUID(name string) *Builder { return newBuilder(name, TypeUUID) }

// JSON returns a new builder of a JSON document field.
func JSON(name string) *Builder { return newBuilder(name, TypeJSON) }

// Bytes returns a new builder of a binary field.
func Bytes(name string) *Builder { return newBuilder(name, TypeBytes) }

// New returns a builder of the given kind. Relation kinds should be
// declared with the edge package.
func New(name string, t Type) *Builder { return newBuilder(name, t) }

// Nullable allows NULL values.
func (b *Builder) Nullable() *Builder {
	b.desc.Nullable = true
	return b
}

// Optional makes the field not required on create.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// Default sets the create default. v may be a value or a func() any.
func (b *Builder) Default(v any) *Builder {
	b.desc.Default = v
	return b
}

// UpdateDefault sets a function that produces the value on every update.
func (b *Builder) UpdateDefault(fn func() any) *Builder {
	b.desc.UpdateDefault = fn
	return b
}

// ReadOnly excludes the field from mutation inputs.
func (b *Builder) ReadOnly() *Builder {
	b.desc.ReadOnly = true
	return b
}

// Immutable excludes the field from update inputs.
func (b *Builder) Immutable() *Builder {
	b.desc.Immutable = true
	return b
}

// Unique adds a unique constraint.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Comment sets the field description.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Column sets the storage column name.
func (b *Builder) Column(name string) *Builder {
	b.desc.Column = name
	return b
}

// Values sets the enum choices.
func (b *Builder) Values(values ...string) *Builder {
	if b.desc.Type != TypeEnum {
		b.desc.err = fmt.Errorf("field %q: Values is only valid for enum fields", b.desc.Name)
		return b
	}
	b.desc.Enums = append(b.desc.Enums, values...)
	return b
}

// Validate adds a custom validator.
func (b *Builder) Validate(fn Validator) *Builder {
	b.desc.Validators = append(b.desc.Validators, fn)
	return b
}

// MaxLen adds a maximum length validator for textual fields.
func (b *Builder) MaxLen(n int) *Builder {
	return b.Validate(func(v any) error {
		if s, ok := v.(string); ok && utf8.RuneCountInString(s) > n {
			return fmt.Errorf("ensure this value has at most %d characters (it has %d)", n, utf8.RuneCountInString(s))
		}
		return nil
	})
}

// MinLen adds a minimum length validator for textual fields.
func (b *Builder) MinLen(n int) *Builder {
	return b.Validate(func(v any) error {
		if s, ok := v.(string); ok && utf8.RuneCountInString(s) < n {
			return fmt.Errorf("ensure this value has at least %d characters (it has %d)", n, utf8.RuneCountInString(s))
		}
		return nil
	})
}

// NotEmpty rejects empty strings.
func (b *Builder) NotEmpty() *Builder {
	return b.MinLen(1)
}

// Match adds a regular expression validator for textual fields.
func (b *Builder) Match(re *regexp.Regexp) *Builder {
	return b.Validate(func(v any) error {
		if s, ok := v.(string); ok && !re.MatchString(s) {
			return errors.New("enter a valid value")
		}
		return nil
	})
}

// Min adds a lower bound validator for numeric fields.
func (b *Builder) Min(n float64) *Builder {
	return b.Validate(func(v any) error {
		if f, ok := toFloat(v); ok && f < n {
			return fmt.Errorf("ensure this value is greater than or equal to %v", n)
		}
		return nil
	})
}

// Max adds an upper bound validator for numeric fields.
func (b *Builder) Max(n float64) *Builder {
	return b.Validate(func(v any) error {
		if f, ok := toFloat(v); ok && f > n {
			return fmt.Errorf("ensure this value is less than or equal to %v", n)
		}
		return nil
	})
}

// Range adds both bounds at once.
func (b *Builder) Range(lo, hi float64) *Builder {
	return b.Min(lo).Max(hi)
}

// Positive rejects values lower than or equal to zero.
func (b *Builder) Positive() *Builder {
	return b.Validate(func(v any) error {
		if f, ok := toFloat(v); ok && f <= 0 {
			return errors.New("ensure this value is positive")
		}
		return nil
	})
}

// Descriptor implements the schema field interface.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	}
	return 0, false
}
