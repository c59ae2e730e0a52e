package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddals/config"
	"github.com/syssam/cruddals/contrib/graphql"
	"github.com/syssam/cruddals/dialect"
	"github.com/syssam/cruddals/dialect/sql"
)

var shopModels = filepath.Join("..", "..", "compiler", "load", "testdata", "shop.yaml")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSDL(t *testing.T) {
	out, err := run(t, "sdl", shopModels)
	require.NoError(t, err)
	for _, s := range []string{"type ItemType", "readItem", "searchItems", "createItems", "activateItems"} {
		assert.Contains(t, out, s)
	}

	dir := t.TempDir()
	cfg := filepath.Join(dir, "cruddals.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("prefix: Shop\nsettings:\n  Item:\n    functions: [read, list]\n"), 0o644))
	path := filepath.Join(dir, "schema.graphql")
	_, err = run(t, "sdl", "--silent", "-c", cfg, "-o", path, shopModels)
	require.NoError(t, err)
	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "readShopItem")
	assert.NotContains(t, string(buf), "searchShopItems")

	_, err = run(t, "sdl")
	assert.Error(t, err, "model file is required")
}

func TestSDL_GQLGen(t *testing.T) {
	dir := t.TempDir()
	gqlgen := filepath.Join(dir, "gqlgen.yml")
	output := filepath.Join(dir, "graph", "cruddals.graphql")
	require.NoError(t, os.MkdirAll(filepath.Dir(output), 0o755))

	_, err := run(t, "sdl", "--gqlgen", gqlgen, shopModels)
	assert.Error(t, err, "--gqlgen requires --output")

	_, err = run(t, "sdl", "--gqlgen", gqlgen, "-o", output, shopModels)
	require.NoError(t, err)
	cfg, err := graphql.LoadGQLGenConfig(gqlgen)
	require.NoError(t, err)
	assert.Equal(t, config.StringList{"graph/cruddals.graphql"}, cfg.SchemaFilename)
	assert.Equal(t, config.StringList{graphql.ScalarBindings["Decimal"]}, cfg.Models["Decimal"].Model)
	assert.Equal(t, config.StringList{graphql.ScalarBindings["DateTime"]}, cfg.Models["DateTime"].Model)
}

func TestMigrate(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "shop.db") + "?_pragma=foreign_keys(1)"
	_, err := run(t, "migrate", "--silent", "--dialect", dialect.SQLite, "--dsn", dsn, shopModels)
	require.NoError(t, err)
	_, err = run(t, "migrate", "--silent", "--dialect", dialect.SQLite, "--dsn", dsn, shopModels)
	require.NoError(t, err, "existing tables are left untouched")

	drv, err := sql.Open(dialect.SQLite, dsn)
	require.NoError(t, err)
	defer drv.Close()
	var n int
	require.NoError(t, drv.DB().QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('categories', 'items', 'tags')").Scan(&n))
	assert.Equal(t, 3, n)

	_, err = run(t, "migrate", "--dialect", "oracle", shopModels)
	assert.Error(t, err)
}
