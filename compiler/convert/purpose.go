package convert

import "fmt"

// Purpose selects what a field or model is converted for.
type Purpose uint8

// Field-level purposes.
const (
	Output Purpose = iota
	MutateCreate
	MutateUpdate
	Filter
	OrderBy

	// Model-level purposes, produced by the assembler.
	CreateUpdate
	ConnectDisconnect
	Paginated

	endPurposes
)

var purposeNames = [...]string{
	Output:            "output",
	MutateCreate:      "create",
	MutateUpdate:      "update",
	Filter:            "filter",
	OrderBy:           "order_by",
	CreateUpdate:      "create_update",
	ConnectDisconnect: "connect_disconnect",
	Paginated:         "paginated",
}

// String returns the purpose name.
func (p Purpose) String() string {
	if p < endPurposes {
		return purposeNames[p]
	}
	return fmt.Sprintf("Purpose(%d)", uint8(p))
}

// Key identifies one generated type or field in a registry. Model-level
// types leave Field empty; shared per-kind types leave Model empty and set
// Kind.
type Key struct {
	Model   string
	Field   string
	Kind    string
	Purpose Purpose
}

// String returns the key as "Model.field[kind]:purpose".
func (k Key) String() string {
	s := k.Model
	if k.Field != "" {
		s += "." + k.Field
	}
	if k.Kind != "" {
		s += "[" + k.Kind + "]"
	}
	return s + ":" + k.Purpose.String()
}

// ModelKey returns the key of a model-level type.
func ModelKey(model string, p Purpose) Key {
	return Key{Model: model, Purpose: p}
}
