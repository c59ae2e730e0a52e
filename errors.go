package cruddals

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("cruddals: object not found")
	// ErrNotSingular is matched by every NotSingularError.
	ErrNotSingular = errors.New("cruddals: object not singular")
	// ErrInvalidSchema is matched by every SchemaBuildError.
	ErrInvalidSchema = errors.New("cruddals: invalid schema")
	// ErrUnsupportedFieldKind is matched by every UnsupportedFieldKindError.
	ErrUnsupportedFieldKind = errors.New("cruddals: unsupported field kind")
	// ErrArgumentRequired is matched by every RequiredArgumentError.
	ErrArgumentRequired = errors.New("cruddals: argument required")
)

// as reports whether err wraps an error of type E.
func as[E error](err error) bool {
	var e E
	return err != nil && errors.As(err, &e)
}

// Schema build errors.

// SchemaBuildError reports a model that cannot be compiled into its API
// surface, such as an operation customized with both hooks and an
// override. Only the model it names is dropped.
type SchemaBuildError struct {
	Model   string
	Op      string
	Message string
	Cause   error
}

// NewSchemaBuildError returns a SchemaBuildError. op and cause may be
// empty.
func NewSchemaBuildError(model, op, msg string, cause error) *SchemaBuildError {
	return &SchemaBuildError{Model: model, Op: op, Message: msg, Cause: cause}
}

func (e *SchemaBuildError) Error() string {
	where := e.Model
	if e.Op != "" {
		where += "." + e.Op
	}
	msg := "cruddals: schema "
	if where != "" {
		msg += where + ": "
	}
	msg += e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SchemaBuildError) Unwrap() error        { return e.Cause }
func (e *SchemaBuildError) Is(target error) bool { return target == ErrInvalidSchema }

// IsSchemaBuildError reports whether err wraps a SchemaBuildError.
func IsSchemaBuildError(err error) bool { return as[*SchemaBuildError](err) }

// UnsupportedFieldKindError is returned by the field converter for a
// kind it has no API type for.
type UnsupportedFieldKindError struct {
	Model string
	Field string
	Kind  string
}

func (e *UnsupportedFieldKindError) Error() string {
	return fmt.Sprintf("cruddals: don't know how to convert field %s.%s of kind %s", e.Model, e.Field, e.Kind)
}

func (e *UnsupportedFieldKindError) Is(target error) bool { return target == ErrUnsupportedFieldKind }

// IsUnsupportedFieldKind reports whether err wraps an UnsupportedFieldKindError.
func IsUnsupportedFieldKind(err error) bool { return as[*UnsupportedFieldKindError](err) }

// Lookup errors.

// NotFoundError is returned by reads of a missing object.
type NotFoundError struct {
	label string
	id    any
}

// NewNotFoundError returns a NotFoundError of the model label.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a NotFoundError naming the missing key.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

func (e *NotFoundError) Error() string {
	if e.id == nil {
		return "cruddals: " + e.label + " not found"
	}
	return fmt.Sprintf("cruddals: %s not found (id=%v)", e.label, e.id)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Label returns the model name.
func (e *NotFoundError) Label() string { return e.label }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// NotSingularError is returned by a read whose filter matches several
// objects.
type NotSingularError struct {
	label string
	count int
}

// NewNotSingularError returns a NotSingularError for count matches.
func NewNotSingularError(label string, count int) *NotSingularError {
	return &NotSingularError{label: label, count: count}
}

func (e *NotSingularError) Error() string {
	return fmt.Sprintf("cruddals: %s not singular (got %d results, expected 1)", e.label, e.count)
}

func (e *NotSingularError) Is(target error) bool { return target == ErrNotSingular }

// Count returns the number of matched objects.
func (e *NotSingularError) Count() int { return e.count }

// IsNotSingular reports whether err is or wraps ErrNotSingular.
func IsNotSingular(err error) bool { return errors.Is(err, ErrNotSingular) }

// Execution errors.

// RequiredArgumentError is returned before any store access when an
// operation lacks an argument it cannot run without.
type RequiredArgumentError struct {
	Op       string
	Argument string
}

// NewRequiredArgumentError returns a RequiredArgumentError.
func NewRequiredArgumentError(op, arg string) *RequiredArgumentError {
	return &RequiredArgumentError{Op: op, Argument: arg}
}

func (e *RequiredArgumentError) Error() string {
	return fmt.Sprintf("cruddals: %s: %s argument is required", e.Op, e.Argument)
}

func (e *RequiredArgumentError) Is(target error) bool { return target == ErrArgumentRequired }

// QueryError wraps a failed store query. Filter and order paths that do
// not resolve surface as a QueryError.
type QueryError struct {
	Entity string
	Op     string
	Err    error
}

// NewQueryError returns a QueryError. op may be empty.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

func (e *QueryError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("cruddals: querying %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("cruddals: querying %s (%s): %v", e.Entity, e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsQueryError reports whether err wraps a QueryError.
func IsQueryError(err error) bool { return as[*QueryError](err) }

// RelationResolutionError wraps the failure of a nested child mutation.
// Path is the dotted relation path from the top-level object.
type RelationResolutionError struct {
	Path string
	Err  error
}

// NewRelationResolutionError returns a RelationResolutionError.
func NewRelationResolutionError(path string, err error) *RelationResolutionError {
	return &RelationResolutionError{Path: path, Err: err}
}

func (e *RelationResolutionError) Error() string {
	return fmt.Sprintf("cruddals: relation %s: %v", e.Path, e.Err)
}

func (e *RelationResolutionError) Unwrap() error { return e.Err }

// IsRelationResolutionError reports whether err wraps a RelationResolutionError.
func IsRelationResolutionError(err error) bool { return as[*RelationResolutionError](err) }

// ConstraintError is a unique, foreign key or check constraint violation
// reported by the database.
type ConstraintError struct {
	msg  string
	wrap error
}

// NewConstraintError returns a ConstraintError wrapping the driver error.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

func (e ConstraintError) Error() string { return "cruddals: constraint failed: " + e.msg }
func (e ConstraintError) Unwrap() error { return e.wrap }

// IsConstraintError reports whether err wraps a ConstraintError.
func IsConstraintError(err error) bool { return as[ConstraintError](err) }

// ValidationError rejects the value of one field. Returned from a nested
// child mutation, it becomes a field error of the parent result.
type ValidationError struct {
	Name string // field name, or "__all__"
	Err  error
}

// NewValidationError returns a ValidationError of the field name.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cruddals: validator failed for field %q: %s", e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool { return as[*ValidationError](err) }

// RollbackError is joined to the error that aborted a transaction when
// the rollback fails too.
type RollbackError struct {
	Err error
}

func (e *RollbackError) Error() string { return fmt.Sprintf("cruddals: rollback failed: %v", e.Err) }
func (e *RollbackError) Unwrap() error { return e.Err }

// AggregateError collects the independent failures of one call, such as
// the per-model errors of a graph.
type AggregateError struct {
	Errors []error
}

// NewAggregateError drops the nil errors of errs. It returns nil when
// none is left and the error itself when one is.
func NewAggregateError(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &AggregateError{Errors: kept}
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	b.WriteString("cruddals: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  [%d] %v", i+1, err)
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error { return e.Errors }
