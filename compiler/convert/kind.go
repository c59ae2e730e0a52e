package convert

import (
	"github.com/syssam/cruddals/filter"
	"github.com/syssam/cruddals/schema/field"
)

// kindInfo is one row of the dispatch table.
type kindInfo struct {
	scalar   string      // GraphQL named type of the value.
	ops      []filter.Op // Filter operators, in input field order.
	ordered  bool        // Orderable with the direction enum.
	relation bool
}

var (
	equalityOps = []filter.Op{filter.OpExact, filter.OpIn, filter.OpIsNull}
	orderedOps  = []filter.Op{
		filter.OpExact, filter.OpIn, filter.OpGT, filter.OpGTE,
		filter.OpLT, filter.OpLTE, filter.OpRange, filter.OpIsNull,
	}
	textOps = []filter.Op{
		filter.OpExact, filter.OpIExact, filter.OpContains, filter.OpIContains,
		filter.OpIn, filter.OpGT, filter.OpGTE, filter.OpLT, filter.OpLTE,
		filter.OpStartsWith, filter.OpIStartsWith, filter.OpEndsWith, filter.OpIEndsWith,
		filter.OpRange, filter.OpIsNull, filter.OpRegex, filter.OpIRegex,
	}
	opaqueOps = []filter.Op{filter.OpExact, filter.OpIsNull}
)

// kinds is the conversion dispatch table. A kind missing here cannot be
// converted for any purpose.
var kinds = map[field.Type]kindInfo{
	field.TypeID:        {scalar: "ID", ops: orderedOps, ordered: true},
	field.TypeBool:      {scalar: "Boolean", ops: equalityOps, ordered: true},
	field.TypeInt:       {scalar: "Int", ops: orderedOps, ordered: true},
	field.TypeInt64:     {scalar: "BigInt", ops: orderedOps, ordered: true},
	field.TypeUint:      {scalar: "PositiveInt", ops: orderedOps, ordered: true},
	field.TypeFloat:     {scalar: "Float", ops: orderedOps, ordered: true},
	field.TypeDecimal:   {scalar: "Decimal", ops: orderedOps, ordered: true},
	field.TypeString:    {scalar: "String", ops: textOps, ordered: true},
	field.TypeText:      {scalar: "String", ops: textOps, ordered: true},
	field.TypeEnum:      {scalar: "String", ops: textOps, ordered: true},
	field.TypeDate:      {scalar: "Date", ops: orderedOps, ordered: true},
	field.TypeTimeOfDay: {scalar: "Time", ops: orderedOps, ordered: true},
	field.TypeTime:      {scalar: "DateTime", ops: orderedOps, ordered: true},
	field.TypeDuration:  {scalar: "Duration", ops: orderedOps, ordered: true},
	field.TypeUUID:      {scalar: "UUID", ops: equalityOps, ordered: true},
	field.TypeJSON:      {scalar: "JSONString", ops: opaqueOps},
	field.TypeBytes:     {scalar: "Binary", ops: opaqueOps},

	field.TypeForeignKey:    {relation: true},
	field.TypeOneToOne:      {relation: true},
	field.TypeManyToMany:    {relation: true},
	field.TypeOneToMany:     {relation: true},
	field.TypeOneToOneRel:   {relation: true},
	field.TypeManyToManyRel: {relation: true},
}

// Builtin reports whether name is a scalar every GraphQL schema declares.
func Builtin(name string) bool {
	switch name {
	case "ID", "Boolean", "Int", "Float", "String":
		return true
	}
	return false
}

// Scalars describes the custom scalars used by the dispatch table.
var Scalars = map[string]string{
	"BigInt":      "64-bit signed integer.",
	"PositiveInt": "Integer greater than or equal to zero.",
	"Decimal":     "Fixed-point decimal number, serialized as a string.",
	"Date":        "Calendar date, formatted as YYYY-MM-DD.",
	"Time":        "Time of day, formatted as HH:MM:SS.",
	"DateTime":    "Timestamp in RFC 3339 format.",
	"Duration":    "Duration, in ISO 8601 or Go notation.",
	"UUID":        "RFC 4122 universally unique identifier.",
	"JSONString":  "JSON document.",
	"Binary":      "Binary data, base64 encoded.",
	"PageSize":    "Page size: a positive integer, or All for every object.",
}
