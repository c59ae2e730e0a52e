// Package config loads the YAML configuration of a cruddals deployment.
//
//	dialect: sqlite
//	dsn: file:shop.db?_pragma=foreign_keys(1)
//	schema: models.yaml
//	slow_threshold: 200ms
//	prefix: Shop
//	exclude_models: [AuditLog]
//	settings:
//	  Item:
//	    functions: [read, list, search]
//	  Category:
//	    exclude_functions: delete
//
// List values accept a single string or a sequence of strings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/gen"
	"github.com/syssam/cruddals/crud"
	"github.com/syssam/cruddals/dialect"
	"github.com/syssam/cruddals/dialect/sql"
)

// Config is the content of a configuration file.
type Config struct {
	Dialect string `yaml:"dialect,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
	// Schema is the path of the model file. A relative path is resolved
	// against the directory of the configuration file.
	Schema string `yaml:"schema,omitempty"`
	// Debug logs every statement sent to the database.
	Debug bool `yaml:"debug,omitempty"`
	// SlowThreshold enables query statistics and logs the statements that
	// run longer.
	SlowThreshold time.Duration `yaml:"slow_threshold,omitempty"`

	StateField    string                    `yaml:"state_field,omitempty"`
	Prefix        string                    `yaml:"prefix,omitempty"`
	Suffix        string                    `yaml:"suffix,omitempty"`
	Models        StringList                `yaml:"models,omitempty"`
	ExcludeModels StringList                `yaml:"exclude_models,omitempty"`
	Settings      map[string]*ModelSettings `yaml:"settings,omitempty"`
}

// ModelSettings holds the settings of one model.
type ModelSettings struct {
	Functions        StringList `yaml:"functions,omitempty"`
	ExcludeFunctions StringList `yaml:"exclude_functions,omitempty"`
}

// StringList is a YAML value that is either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if c.Schema != "" && !filepath.IsAbs(c.Schema) {
		c.Schema = filepath.Join(filepath.Dir(path), c.Schema)
	}
	return c, nil
}

// Decode decodes and validates a configuration. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	c := &Config{}
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the mutually exclusive settings and the names of
// dialects and functions. All problems are reported.
func (c *Config) Validate() error {
	var errs []error
	switch c.Dialect {
	case "":
		if c.DSN != "" {
			errs = append(errs, errors.New("dsn requires a dialect"))
		}
	case dialect.SQLite, dialect.Postgres, dialect.MySQL:
	default:
		errs = append(errs, fmt.Errorf("unknown dialect %q", c.Dialect))
	}
	if c.SlowThreshold < 0 {
		errs = append(errs, errors.New("slow_threshold cannot be negative"))
	}
	if len(c.Models) > 0 && len(c.ExcludeModels) > 0 {
		errs = append(errs, errors.New("models and exclude_models cannot both be set"))
	}
	for _, name := range c.settingNames() {
		s := c.Settings[name]
		if s == nil {
			continue
		}
		if len(s.Functions) > 0 && len(s.ExcludeFunctions) > 0 {
			errs = append(errs, fmt.Errorf("settings.%s: functions and exclude_functions cannot both be set", name))
		}
		if _, err := cruddals.ParseOps(s.Functions); err != nil {
			errs = append(errs, fmt.Errorf("settings.%s.functions: %w", name, err))
		}
		if _, err := cruddals.ParseOps(s.ExcludeFunctions); err != nil {
			errs = append(errs, fmt.Errorf("settings.%s.exclude_functions: %w", name, err))
		}
		if slices.Contains(c.ExcludeModels, name) {
			errs = append(errs, fmt.Errorf("settings.%s: model is excluded", name))
		}
	}
	return errors.Join(errs...)
}

// GenOptions returns the assembler options of the configuration.
func (c *Config) GenOptions() ([]gen.Option, error) {
	opts := []gen.Option{gen.WithPrefix(c.Prefix), gen.WithSuffix(c.Suffix)}
	if c.StateField != "" {
		opts = append(opts, gen.WithStateField(c.StateField))
	}
	if len(c.Models) > 0 {
		opts = append(opts, gen.WithModels(c.Models...))
	}
	if len(c.ExcludeModels) > 0 {
		opts = append(opts, gen.WithExcludeModels(c.ExcludeModels...))
	}
	for _, name := range c.settingNames() {
		s := c.Settings[name]
		if s == nil {
			continue
		}
		if len(s.Functions) > 0 {
			ops, err := cruddals.ParseOps(s.Functions)
			if err != nil {
				return nil, err
			}
			opts = append(opts, gen.WithOperations(name, ops))
		}
		if len(s.ExcludeFunctions) > 0 {
			ops, err := cruddals.ParseOps(s.ExcludeFunctions)
			if err != nil {
				return nil, err
			}
			opts = append(opts, gen.WithExcludeOperations(name, ops))
		}
	}
	return opts, nil
}

// CrudOptions returns the app options of the configuration.
func (c *Config) CrudOptions(logger *slog.Logger) []crud.Option {
	var opts []crud.Option
	if logger != nil {
		opts = append(opts, crud.WithLogger(logger))
	}
	if c.StateField != "" {
		opts = append(opts, crud.WithStateField(c.StateField))
	}
	return opts
}

// Open opens the configured database. The database/sql driver of the
// dialect must be registered by the caller.
func (c *Config) Open(logger *slog.Logger) (dialect.Driver, error) {
	if c.Dialect == "" {
		return nil, errors.New("config: no dialect configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	base, err := sql.Open(c.Dialect, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", c.Dialect, err)
	}
	var drv dialect.Driver = base
	if c.SlowThreshold > 0 {
		drv = sql.NewStatsDriver(base,
			sql.WithSlowThreshold(c.SlowThreshold),
			sql.WithSlowQueryLog(logger),
		)
	}
	if c.Debug {
		drv = dialect.Debug(drv, logger)
	}
	return drv, nil
}

func (c *Config) settingNames() []string {
	names := make([]string, 0, len(c.Settings))
	for name := range c.Settings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
