package crud

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/field"
)

func noteModel(t *testing.T) *schema.Model {
	t.Helper()
	m, err := schema.NewModel("Note", schema.Config{}, field.String("text"))
	require.NoError(t, err)
	return m
}

func echo(_ context.Context, args Args) (any, error) { return args["v"], nil }

func TestNewOperation(t *testing.T) {
	m := noteModel(t)
	pre := func(_ context.Context, args Args) (Args, error) { return args, nil }

	tests := []struct {
		name string
		op   cruddals.Op
		spec OperationSpec
		def  Core
		err  string
	}{
		{name: "default core", op: cruddals.OpRead, def: echo},
		{name: "custom core", op: cruddals.OpRead, spec: OperationSpec{Core: echo}},
		{name: "override", op: cruddals.OpRead, spec: OperationSpec{Override: echo}, def: echo},
		{
			name: "override with pre-hook",
			op:   cruddals.OpCreate,
			spec: OperationSpec{Override: echo, PreHooks: []PreHook{pre}},
			def:  echo,
			err:  "override cannot be combined",
		},
		{
			name: "override with core",
			op:   cruddals.OpCreate,
			spec: OperationSpec{Override: echo, Core: echo},
			err:  "override cannot be combined",
		},
		{name: "many ops", op: cruddals.OpRead | cruddals.OpList, def: echo, err: "exactly one action"},
		{name: "no core", op: cruddals.OpList, err: "no core"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOperation(m, tt.op, tt.spec, tt.def)
			if tt.err != "" {
				require.Error(t, err)
				assert.True(t, cruddals.IsSchemaBuildError(err))
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.op, o.Op)
			assert.Same(t, m, o.Model)
		})
	}
}

func TestOperation_Execute(t *testing.T) {
	ctx := context.Background()
	m := noteModel(t)

	t.Run("order", func(t *testing.T) {
		var trace []string
		spec := OperationSpec{
			PreHooks: []PreHook{
				func(_ context.Context, args Args) (Args, error) {
					trace = append(trace, "pre1")
					next := args.Clone()
					next["v"] = args["v"].(int) + 1
					return next, nil
				},
				func(_ context.Context, args Args) (Args, error) {
					trace = append(trace, "pre2")
					return nil, nil
				},
			},
			Core: func(ctx context.Context, args Args) (any, error) {
				trace = append(trace, "core")
				o, ok := OperationFromContext(ctx)
				require.True(t, ok)
				assert.Equal(t, cruddals.OpCreate, o.Op)
				return args["v"].(int) * 10, nil
			},
			PostHooks: []PostHook{
				func(_ context.Context, _ Args, v any) (any, error) {
					trace = append(trace, "post")
					return v.(int) + 5, nil
				},
			},
		}
		o, err := NewOperation(m, cruddals.OpCreate, spec, nil)
		require.NoError(t, err)
		args := Args{"v": 1}
		v, err := o.Execute(ctx, args)
		require.NoError(t, err)
		assert.Equal(t, 25, v)
		assert.Equal(t, []string{"pre1", "pre2", "core", "post"}, trace)
		assert.Equal(t, 1, args["v"], "caller arguments are not modified")
	})

	t.Run("halt", func(t *testing.T) {
		o, err := NewOperation(m, cruddals.OpRead, OperationSpec{
			PreHooks: []PreHook{func(context.Context, Args) (Args, error) {
				return nil, Halt("cached")
			}},
			PostHooks: []PostHook{func(context.Context, Args, any) (any, error) {
				t.Error("post-hook ran after halt")
				return nil, nil
			}},
		}, func(context.Context, Args) (any, error) {
			t.Error("core ran after halt")
			return nil, nil
		})
		require.NoError(t, err)
		v, err := o.Execute(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "cached", v)
	})

	t.Run("override", func(t *testing.T) {
		o, err := NewOperation(m, cruddals.OpSearch, OperationSpec{Override: echo}, func(context.Context, Args) (any, error) {
			t.Error("default core ran")
			return nil, nil
		})
		require.NoError(t, err)
		v, err := o.Execute(ctx, Args{"v": "x"})
		require.NoError(t, err)
		assert.Equal(t, "x", v)
	})

	t.Run("errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		for name, spec := range map[string]OperationSpec{
			"pre":  {PreHooks: []PreHook{func(context.Context, Args) (Args, error) { return nil, boom }}},
			"core": {Core: func(context.Context, Args) (any, error) { return nil, boom }},
			"post": {PostHooks: []PostHook{func(context.Context, Args, any) (any, error) { return nil, boom }}},
		} {
			t.Run(name, func(t *testing.T) {
				o, err := NewOperation(m, cruddals.OpUpdate, spec, echo)
				require.NoError(t, err)
				_, err = o.Execute(ctx, Args{})
				assert.ErrorIs(t, err, boom)
			})
		}
	})

	t.Run("extra args", func(t *testing.T) {
		extra := ast.ArgumentDefinitionList{{Name: "dryRun", Type: ast.NamedType("Boolean", nil)}}
		o, err := NewOperation(m, cruddals.OpDelete, OperationSpec{ExtraArgs: extra}, echo)
		require.NoError(t, err)
		assert.Equal(t, extra, o.ExtraArgs())
	})

	t.Run("no operation", func(t *testing.T) {
		_, ok := OperationFromContext(ctx)
		assert.False(t, ok)
	})
}
