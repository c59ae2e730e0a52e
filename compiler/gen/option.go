package gen

import (
	"errors"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/convert"
)

// DefaultStateField is the boolean field toggled by activate and deactivate.
const DefaultStateField = "is_active"

// Config holds the assembler configuration.
type Config struct {
	Namer convert.Namer

	// Models and ExcludeModels select the models to build. At most one of
	// them may be set.
	Models        []string
	ExcludeModels []string

	// Operations and ExcludeOperations select the operations per model.
	// At most one of them may be set for a model.
	Operations        map[string]cruddals.Op
	ExcludeOperations map[string]cruddals.Op

	StateField string
	Resolvers  Resolvers
	ExtraArgs  map[string]map[cruddals.Op]ast.ArgumentDefinitionList
}

// Option configures the assembler.
type Option func(*Config) error

// WithPrefix sets the prefix of every generated type and operation name.
func WithPrefix(prefix string) Option {
	return func(c *Config) error {
		c.Namer.Prefix = prefix
		return nil
	}
}

// WithSuffix sets the suffix of every generated type and operation name.
func WithSuffix(suffix string) Option {
	return func(c *Config) error {
		c.Namer.Suffix = suffix
		return nil
	}
}

// WithModels restricts the build to the named models.
func WithModels(names ...string) Option {
	return func(c *Config) error {
		if len(c.ExcludeModels) > 0 {
			return NewConfigError("Models", names, "cannot be combined with ExcludeModels")
		}
		c.Models = append(c.Models, names...)
		return nil
	}
}

// WithExcludeModels leaves the named models out of the build.
func WithExcludeModels(names ...string) Option {
	return func(c *Config) error {
		if len(c.Models) > 0 {
			return NewConfigError("ExcludeModels", names, "cannot be combined with Models")
		}
		c.ExcludeModels = append(c.ExcludeModels, names...)
		return nil
	}
}

// WithOperations sets the operations generated for a model. By default a
// model gets every operation its fields support.
func WithOperations(model string, ops cruddals.Op) Option {
	return func(c *Config) error {
		if _, ok := c.ExcludeOperations[model]; ok {
			return NewConfigError("Operations", model, "cannot be combined with ExcludeOperations")
		}
		if ops&^cruddals.OpAll != 0 || ops == 0 {
			return NewConfigError("Operations", ops, "invalid operation set")
		}
		if c.Operations == nil {
			c.Operations = make(map[string]cruddals.Op)
		}
		c.Operations[model] |= ops
		return nil
	}
}

// WithExcludeOperations removes operations from a model.
func WithExcludeOperations(model string, ops cruddals.Op) Option {
	return func(c *Config) error {
		if _, ok := c.Operations[model]; ok {
			return NewConfigError("ExcludeOperations", model, "cannot be combined with Operations")
		}
		if c.ExcludeOperations == nil {
			c.ExcludeOperations = make(map[string]cruddals.Op)
		}
		c.ExcludeOperations[model] |= ops
		return nil
	}
}

// WithStateField sets the boolean field toggled by activate and deactivate.
func WithStateField(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("StateField", nil, "state field cannot be empty")
		}
		c.StateField = name
		return nil
	}
}

// WithResolvers sets the provider of output and root field resolvers.
func WithResolvers(r Resolvers) Option {
	return func(c *Config) error {
		if r == nil {
			return NewConfigError("Resolvers", nil, "resolvers cannot be nil")
		}
		c.Resolvers = r
		return nil
	}
}

// WithExtraArgs adds arguments to the root field of one operation.
func WithExtraArgs(model string, op cruddals.Op, args ...*ast.ArgumentDefinition) Option {
	return func(c *Config) error {
		if len(op.Ops()) != 1 {
			return NewConfigError("ExtraArgs", op, "extra arguments apply to a single operation")
		}
		if c.ExtraArgs == nil {
			c.ExtraArgs = make(map[string]map[cruddals.Op]ast.ArgumentDefinitionList)
		}
		if c.ExtraArgs[model] == nil {
			c.ExtraArgs[model] = make(map[cruddals.Op]ast.ArgumentDefinitionList)
		}
		c.ExtraArgs[model][op] = append(c.ExtraArgs[model][op], args...)
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{StateField: DefaultStateField}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
