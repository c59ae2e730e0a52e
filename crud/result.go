package crud

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/store"
)

// AllFields is the path of errors that concern a whole object.
const AllFields = "__all__"

// FieldError holds the messages of one invalid field. Path is dotted for
// fields of nested relation objects.
type FieldError struct {
	Path     string   `json:"field"`
	Messages []string `json:"messages"`
}

// ErrorEntry holds the errors of one input object.
type ErrorEntry struct {
	ObjectPosition string       `json:"object_position"`
	FieldErrors    []FieldError `json:"errors"`
}

// MutationResult is the result of a batch mutation. Each list is nil when
// it has no entries.
type MutationResult struct {
	// Success is reported by delete.
	Success bool           `json:"success,omitempty"`
	Objects []store.Record `json:"objects"`
	Errors  []ErrorEntry   `json:"errors"`
}

// HasErrors reports whether any input object failed.
func (r *MutationResult) HasErrors() bool { return len(r.Errors) > 0 }

func (r *MutationResult) fail(pos int, errs ...FieldError) {
	r.Errors = append(r.Errors, ErrorEntry{ObjectPosition: strconv.Itoa(pos), FieldErrors: errs})
}

// Validator checks a record before it is saved. values holds the complete
// record for create and the merged record for update.
type Validator interface {
	Validate(ctx context.Context, m *schema.Model, op cruddals.Op, values store.Record) []FieldError
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, m *schema.Model, op cruddals.Op, values store.Record) []FieldError

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, m *schema.Model, op cruddals.Op, values store.Record) []FieldError {
	return f(ctx, m, op, values)
}

// FieldValidator checks the values of every column field: required fields
// are set, values parse to the field kind, enum values are known choices
// and the field validators pass. Parsed values replace the input values.
type FieldValidator struct{}

// Validate implements Validator.
func (FieldValidator) Validate(_ context.Context, m *schema.Model, _ cruddals.Op, values store.Record) []FieldError {
	var errs []FieldError
	for _, f := range m.Fields {
		if !f.HasColumn() || f == m.PrimaryKey() {
			continue
		}
		v, ok := values[f.Name]
		if !ok || v == nil {
			if f.Required() || (ok && !f.Nullable) {
				errs = append(errs, FieldError{Path: f.Name, Messages: []string{"This field is required."}})
			}
			continue
		}
		if f.Type.IsRelation() {
			continue
		}
		pv, err := f.Validate(v)
		if err != nil {
			errs = append(errs, FieldError{Path: f.Name, Messages: []string{err.Error()}})
			continue
		}
		values[f.Name] = pv
	}
	return errs
}

// prefixed returns errs with their paths under relation.
func prefixed(relation string, errs []FieldError) []FieldError {
	out := make([]FieldError, len(errs))
	for i, e := range errs {
		out[i] = FieldError{Path: relation + "." + e.Path, Messages: e.Messages}
	}
	return out
}

// flatten returns the field errors of entries.
func flatten(entries []ErrorEntry) []FieldError {
	var errs []FieldError
	for _, e := range entries {
		errs = append(errs, e.FieldErrors...)
	}
	return errs
}

// merge joins the messages of errors sharing a path, keeping the order of
// first appearance.
func merge(errs []FieldError) []FieldError {
	idx := make(map[string]int, len(errs))
	var out []FieldError
	for _, e := range errs {
		if i, ok := idx[e.Path]; ok {
			out[i].Messages = append(out[i].Messages, e.Messages...)
			continue
		}
		idx[e.Path] = len(out)
		out = append(out, FieldError{Path: e.Path, Messages: append([]string(nil), e.Messages...)})
	}
	return out
}

// fieldErrors converts a validation error to field errors.
func fieldErrors(err error) []FieldError {
	var ve *cruddals.ValidationError
	if errors.As(err, &ve) {
		return []FieldError{{Path: ve.Name, Messages: []string{ve.Err.Error()}}}
	}
	return []FieldError{{Path: AllFields, Messages: []string{err.Error()}}}
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unknownField(m *schema.Model, name string) FieldError {
	return FieldError{Path: name, Messages: []string{fmt.Sprintf("%s has no field %q.", m.Name, name)}}
}
