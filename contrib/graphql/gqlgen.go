// Package graphql registers assembled schemas in gqlgen configurations.
//
// The custom scalars of an assembled schema are bound to the gqlgen
// marshalers that accept the same wire formats, so the schema can be
// served by a gqlgen executor:
//
//	cfg, err := graphql.LoadGQLGenConfig("gqlgen.yml")
//	cfg.Bind("graph/cruddals.graphql", s.Doc)
//	err = graphql.SaveGQLGenConfig("gqlgen.yml", cfg)
package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"

	"github.com/syssam/cruddals/config"
)

// GQLGenConfig is the part of a gqlgen.yml configuration that bindings
// update. Other keys are kept as they are.
type GQLGenConfig struct {
	SchemaFilename config.StringList       `yaml:"schema,omitempty"`
	Models         map[string]TypeMapEntry `yaml:"models,omitempty"`
	Rest           map[string]any          `yaml:",inline"`
}

// TypeMapEntry is the model configuration of one GraphQL type.
type TypeMapEntry struct {
	Model config.StringList `yaml:"model,omitempty"`
	Rest  map[string]any    `yaml:",inline"`
}

// ScalarBindings maps the custom scalars of assembled schemas to gqlgen
// model types.
var ScalarBindings = map[string]string{
	"BigInt":      "github.com/99designs/gqlgen/graphql.Int64",
	"PositiveInt": "github.com/99designs/gqlgen/graphql.Int",
	"Decimal":     "github.com/99designs/gqlgen/graphql.String",
	"Date":        "github.com/99designs/gqlgen/graphql.String",
	"Time":        "github.com/99designs/gqlgen/graphql.String",
	"DateTime":    "github.com/99designs/gqlgen/graphql.Time",
	"Duration":    "github.com/99designs/gqlgen/graphql.Duration",
	"UUID":        "github.com/99designs/gqlgen/graphql.UUID",
	"JSONString":  "github.com/99designs/gqlgen/graphql.Map",
	"Binary":      "github.com/99designs/gqlgen/graphql.String",
	"PageSize":    "github.com/99designs/gqlgen/graphql.Any",
}

// LoadGQLGenConfig loads a gqlgen.yml configuration file. A missing file
// yields an empty configuration.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &GQLGenConfig{Models: make(map[string]TypeMapEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	var cfg GQLGenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}
	return &cfg, nil
}

// SaveGQLGenConfig writes a gqlgen.yml configuration file.
func SaveGQLGenConfig(path string, cfg *GQLGenConfig) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// AddSchemaPath adds a schema path to the configuration if not already present.
func (c *GQLGenConfig) AddSchemaPath(path string) {
	if !slices.Contains(c.SchemaFilename, path) {
		c.SchemaFilename = append(c.SchemaFilename, path)
	}
}

// SetModel adds a model binding to a GraphQL type.
func (c *GQLGenConfig) SetModel(typeName, modelPath string) {
	if c.Models == nil {
		c.Models = make(map[string]TypeMapEntry)
	}
	entry := c.Models[typeName]
	if !slices.Contains(entry.Model, modelPath) {
		entry.Model = append(entry.Model, modelPath)
	}
	c.Models[typeName] = entry
}

// Bind adds the schema file and binds the custom scalars declared in doc.
// Scalars that already have a binding are left alone.
func (c *GQLGenConfig) Bind(schemaPath string, doc *ast.SchemaDocument) {
	if schemaPath != "" {
		c.AddSchemaPath(schemaPath)
	}
	for _, def := range doc.Definitions {
		if def.Kind != ast.Scalar {
			continue
		}
		model, ok := ScalarBindings[def.Name]
		if !ok {
			continue
		}
		if len(c.Models[def.Name].Model) > 0 {
			continue
		}
		c.SetModel(def.Name, model)
	}
}
