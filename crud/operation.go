package crud

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/schema"
)

// Args holds the decoded arguments of one operation call, keyed by
// argument name (see the gen.Arg constants).
type Args map[string]any

// Clone returns a shallow copy of the arguments.
func (a Args) Clone() Args {
	c := make(Args, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

type (
	// PreHook runs before the core. It receives the arguments and returns
	// the arguments handed to the next hook. Returning Halt(v) skips the
	// rest of the pipeline and makes v the result.
	PreHook func(ctx context.Context, args Args) (Args, error)

	// Core computes the result of an operation.
	Core func(ctx context.Context, args Args) (any, error)

	// PostHook runs after the core and returns the result handed to the
	// next hook.
	PostHook func(ctx context.Context, args Args, result any) (any, error)
)

// OperationSpec customizes one operation of a model. Override replaces the
// whole pipeline and cannot be combined with the other hooks.
type OperationSpec struct {
	PreHooks  []PreHook
	Core      Core
	PostHooks []PostHook
	Override  Core
	// ExtraArgs are declared on the root field of the operation.
	ExtraArgs ast.ArgumentDefinitionList
}

// customized reports whether the spec sets any pipeline stage.
func (s OperationSpec) customized() bool {
	return len(s.PreHooks) > 0 || s.Core != nil || len(s.PostHooks) > 0
}

// Operation is one composed operation of a model.
type Operation struct {
	Model *schema.Model
	Op    cruddals.Op

	pre      []PreHook
	core     Core
	post     []PostHook
	override Core
	extra    ast.ArgumentDefinitionList
	logger   *slog.Logger
}

// NewOperation composes the operation op of m. def is the core used when
// spec sets neither Core nor Override.
func NewOperation(m *schema.Model, op cruddals.Op, spec OperationSpec, def Core) (*Operation, error) {
	if len(op.Ops()) != 1 {
		return nil, cruddals.NewSchemaBuildError(m.Name, op.String(), "operation must name exactly one action", nil)
	}
	if spec.Override != nil && spec.customized() {
		return nil, cruddals.NewSchemaBuildError(m.Name, op.String(), "override cannot be combined with pre-hooks, core or post-hooks", nil)
	}
	o := &Operation{
		Model:    m,
		Op:       op,
		pre:      spec.PreHooks,
		core:     spec.Core,
		post:     spec.PostHooks,
		override: spec.Override,
		extra:    spec.ExtraArgs,
		logger:   slog.Default(),
	}
	if o.core == nil {
		o.core = def
	}
	if o.core == nil && o.override == nil {
		return nil, cruddals.NewSchemaBuildError(m.Name, op.String(), "operation has no core", nil)
	}
	return o, nil
}

// ExtraArgs returns the extra arguments declared for the operation.
func (o *Operation) ExtraArgs() ast.ArgumentDefinitionList { return o.extra }

type opCtxKey struct{}

// NewContext returns a new context carrying the running operation.
func NewContext(parent context.Context, o *Operation) context.Context {
	return context.WithValue(parent, opCtxKey{}, o)
}

// OperationFromContext returns the innermost operation running in ctx.
func OperationFromContext(ctx context.Context) (*Operation, bool) {
	o, ok := ctx.Value(opCtxKey{}).(*Operation)
	return o, ok
}

// haltError carries the result of a pre-hook that stops the pipeline.
type haltError struct {
	v any
}

func (e *haltError) Error() string { return "crud: operation halted" }

// Halt returns an error that, returned by a pre-hook, ends the operation
// with v as its result.
func Halt(v any) error {
	return &haltError{v: v}
}

// Execute runs the operation. Errors of hooks and core propagate unchanged.
func (o *Operation) Execute(ctx context.Context, args Args) (v any, err error) {
	ctx = NewContext(ctx, o)
	if args == nil {
		args = Args{}
	}
	start := time.Now()
	defer func() {
		o.logger.DebugContext(ctx, "crud: operation",
			"op", o.Op.String(),
			"model", o.Model.Name,
			"duration", time.Since(start),
			"error", err,
		)
	}()
	if o.override != nil {
		return o.override(ctx, args)
	}
	for _, h := range o.pre {
		next, err := h(ctx, args)
		if err != nil {
			var halt *haltError
			if errors.As(err, &halt) {
				return halt.v, nil
			}
			return nil, err
		}
		if next != nil {
			args = next
		}
	}
	if v, err = o.core(ctx, args); err != nil {
		return nil, err
	}
	for _, h := range o.post {
		if v, err = h(ctx, args, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Inputs returns the input objects of a create or update, whether given as
// one object or as a list.
func (a Args) Inputs() ([]map[string]any, error) {
	return inputs(a["input"])
}
