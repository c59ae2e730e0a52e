package crud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/gen"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
	"github.com/syssam/cruddals/store"
)

// Config holds the configuration of an App.
type Config struct {
	Logger     *slog.Logger
	StateField string
	// Validators run after the field validation of every saved record.
	Validators []Validator
	// Specs holds the operation customizations by model and operation.
	Specs map[string]map[cruddals.Op]OperationSpec
}

// Option configures an App.
type Option func(*Config) error

// WithLogger sets the logger of the operations.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return errors.New("crud: logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithStateField sets the boolean field toggled by activate and deactivate.
func WithStateField(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return errors.New("crud: state field cannot be empty")
		}
		c.StateField = name
		return nil
	}
}

// WithValidator adds a record validator.
func WithValidator(v Validator) Option {
	return func(c *Config) error {
		if v == nil {
			return errors.New("crud: validator cannot be nil")
		}
		c.Validators = append(c.Validators, v)
		return nil
	}
}

// WithOperation customizes one operation of a model.
func WithOperation(model string, op cruddals.Op, spec OperationSpec) Option {
	return func(c *Config) error {
		if len(op.Ops()) != 1 {
			return fmt.Errorf("crud: %s: customization applies to a single operation", op)
		}
		if c.Specs == nil {
			c.Specs = make(map[string]map[cruddals.Op]OperationSpec)
		}
		if c.Specs[model] == nil {
			c.Specs[model] = make(map[cruddals.Op]OperationSpec)
		}
		c.Specs[model][op] = spec
		return nil
	}
}

// App runs the operations of the models of one graph against a store.
// It provides the resolvers of the assembled schema.
type App struct {
	graph    *schema.Graph
	store    store.Store
	cfg      *Config
	logger   *slog.Logger
	entities map[string]*Entity
	order    []*Entity

	savepoints atomic.Int64
}

var _ gen.Resolvers = (*App)(nil)

// New returns the app of the models in g. Models whose operations fail to
// compose are left out and reported in the returned error; the app of the
// remaining models is returned along with it.
func New(g *schema.Graph, s store.Store, opts ...Option) (*App, error) {
	if g == nil || s == nil {
		return nil, errors.New("crud: graph and store are required")
	}
	cfg := &Config{StateField: gen.DefaultStateField, Logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	a := &App{
		graph:    g,
		store:    s,
		cfg:      cfg,
		logger:   cfg.Logger,
		entities: make(map[string]*Entity, len(g.Models)),
	}
	var errs []error
	for _, m := range g.Models {
		e, err := a.entity(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		a.entities[m.Name] = e
		a.order = append(a.order, e)
	}
	for name := range cfg.Specs {
		if _, ok := g.Model(name); !ok {
			errs = append(errs, cruddals.NewSchemaBuildError(name, "", "customized model is not part of the graph", nil))
		}
	}
	return a, errors.Join(errs...)
}

// entity composes the operations of m.
func (a *App) entity(m *schema.Model) (*Entity, error) {
	e := &Entity{app: a, Model: m, ops: make(map[cruddals.Op]*Operation)}
	specs := a.cfg.Specs[m.Name]
	if f, ok := m.Field(a.cfg.StateField); ok && f.Type == field.TypeBool {
		e.state = f
	}
	var errs []error
	for _, op := range cruddals.OpAll.Ops() {
		spec, custom := specs[op]
		if op.Is(cruddals.OpActivate|cruddals.OpDeactivate) && e.state == nil {
			if custom {
				errs = append(errs, cruddals.NewSchemaBuildError(m.Name, op.String(), fmt.Sprintf("model has no boolean state field %q", a.cfg.StateField), nil))
			}
			continue
		}
		o, err := NewOperation(m, op, spec, e.core(op))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		o.logger = a.logger
		e.ops[op] = o
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return e, nil
}

// Entity returns the entity of the named model.
func (a *App) Entity(model string) (*Entity, bool) {
	e, ok := a.entities[model]
	return e, ok
}

// Entities returns the entities in graph order.
func (a *App) Entities() []*Entity { return a.order }

// Store returns the store of the app.
func (a *App) Store() store.Store { return a.store }

// Execute runs the operation op of the named model.
func (a *App) Execute(ctx context.Context, model string, op cruddals.Op, args Args) (any, error) {
	e, ok := a.entities[model]
	if !ok {
		return nil, fmt.Errorf("crud: unknown model %q", model)
	}
	o, ok := e.ops[op]
	if !ok {
		return nil, fmt.Errorf("crud: %s has no %s operation", model, op)
	}
	return o.Execute(ctx, args)
}

// Operation implements gen.Resolvers.
func (a *App) Operation(m *schema.Model, op cruddals.Op) gen.Resolver {
	e, ok := a.entities[m.Name]
	if !ok {
		return nil
	}
	o, ok := e.ops[op]
	if !ok {
		return nil
	}
	return func(ctx context.Context, _ any, args map[string]any) (any, error) {
		return o.Execute(ctx, args)
	}
}

// Assemble builds the API schema of the app's models, with the app as the
// provider of resolvers and the extra arguments of customized operations.
func (a *App) Assemble(opts ...gen.Option) (*gen.Schema, error) {
	base := []gen.Option{
		gen.WithResolvers(a),
		gen.WithStateField(a.cfg.StateField),
	}
	for _, e := range a.order {
		for op, o := range e.ops {
			if len(o.extra) > 0 {
				base = append(base, gen.WithExtraArgs(e.Model.Name, op, o.extra...))
			}
		}
	}
	asm, err := gen.NewAssembler(a.graph, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return asm.Build()
}

// inTx runs fn in a new transaction committed when fn succeeds, and rolled
// back when fn fails or reports rollback. When ctx already carries a
// transaction, fn runs under a savepoint of it instead, and only the writes
// made since the savepoint are undone.
func (a *App) inTx(ctx context.Context, fn func(ctx context.Context) (rollback bool, err error)) error {
	if tx := store.TxFromContext(ctx); tx != nil {
		return a.inSavepoint(ctx, tx, fn)
	}
	tx, err := a.store.Tx(ctx)
	if err != nil {
		return err
	}
	rb, err := fn(store.NewTxContext(ctx, tx))
	if err != nil || rb {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, &cruddals.RollbackError{Err: rerr})
		}
		return err
	}
	return tx.Commit()
}

func (a *App) inSavepoint(ctx context.Context, tx store.Tx, fn func(ctx context.Context) (rollback bool, err error)) error {
	name := fmt.Sprintf("cruddals_sp_%d", a.savepoints.Add(1))
	if err := tx.Savepoint(ctx, name); err != nil {
		return err
	}
	rb, err := fn(ctx)
	if err != nil || rb {
		if rerr := tx.RollbackTo(ctx, name); rerr != nil {
			return errors.Join(err, &cruddals.RollbackError{Err: rerr})
		}
		a.logger.DebugContext(ctx, "crud: rolled back to savepoint", "savepoint", name)
	}
	if rerr := tx.Release(ctx, name); rerr != nil && err == nil {
		err = rerr
	}
	return err
}
