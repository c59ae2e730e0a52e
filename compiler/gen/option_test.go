package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/cruddals"
)

func TestWithModels(t *testing.T) {
	t.Run("appends names", func(t *testing.T) {
		c, err := NewConfig(WithModels("Item"), WithModels("Tag"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Item", "Tag"}, c.Models)
	})

	t.Run("exclusive with ExcludeModels", func(t *testing.T) {
		_, err := NewConfig(WithExcludeModels("Tag"), WithModels("Item"))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))

		_, err = NewConfig(WithModels("Item"), WithExcludeModels("Tag"))
		assert.True(t, IsConfigError(err))
	})
}

func TestWithOperations(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		want    cruddals.Op
		wantErr bool
	}{
		{"single", []Option{WithOperations("Item", cruddals.OpRead)}, cruddals.OpRead, false},
		{"merged", []Option{WithOperations("Item", cruddals.OpRead), WithOperations("Item", cruddals.OpList)}, cruddals.OpRead | cruddals.OpList, false},
		{"empty", []Option{WithOperations("Item", 0)}, 0, true},
		{"unknown bit", []Option{WithOperations("Item", 1<<12)}, 0, true},
		{"exclusive", []Option{WithExcludeOperations("Item", cruddals.OpDelete), WithOperations("Item", cruddals.OpRead)}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConfig(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Operations["Item"])
		})
	}
}

func TestWithExcludeOperations(t *testing.T) {
	c, err := NewConfig(WithExcludeOperations("Item", cruddals.OpDelete), WithExcludeOperations("Tag", cruddals.OpMutations))
	require.NoError(t, err)
	assert.Equal(t, cruddals.OpDelete, c.ExcludeOperations["Item"])

	_, err = NewConfig(WithOperations("Item", cruddals.OpRead), WithExcludeOperations("Item", cruddals.OpDelete))
	assert.True(t, IsConfigError(err))
}

func TestWithExtraArgs(t *testing.T) {
	arg := &ast.ArgumentDefinition{Name: "dryRun", Type: ast.NamedType("Boolean", nil)}
	c, err := NewConfig(WithExtraArgs("Item", cruddals.OpCreate, arg))
	require.NoError(t, err)
	assert.Len(t, c.ExtraArgs["Item"][cruddals.OpCreate], 1)

	_, err = NewConfig(WithExtraArgs("Item", cruddals.OpCreate|cruddals.OpUpdate, arg))
	assert.True(t, IsConfigError(err))
}

func TestWithResolvers(t *testing.T) {
	_, err := NewConfig(WithResolvers(nil))
	assert.True(t, IsConfigError(err))

	c, err := NewConfig(WithResolvers(stubResolvers{}))
	require.NoError(t, err)
	assert.NotNil(t, c.Resolvers)
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithStateField(""), WithPrefix("shop"), WithResolvers(nil))
	require.Error(t, err)
	assert.Equal(t, "shop", c.Namer.Prefix)
	assert.Contains(t, err.Error(), "StateField")
	assert.Contains(t, err.Error(), "Resolvers")
}

func TestErrors(t *testing.T) {
	t.Run("config error", func(t *testing.T) {
		err := NewConfigError("StateField", "x", "invalid")
		assert.Equal(t, "cruddals: option StateField (x): invalid", err.Error())
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Equal(t, "cruddals: option Graph: missing", NewConfigError("Graph", nil, "missing").Error())
	})

	t.Run("generation error", func(t *testing.T) {
		cause := errors.New("undefined type Foo")
		err := NewGenerationError("validate", "invalid schema document", cause)
		assert.Equal(t, "cruddals: validate: invalid schema document: undefined type Foo", err.Error())
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.ErrorIs(t, err, cause)
		assert.True(t, IsGenerationError(err))
		assert.False(t, IsGenerationError(cause))
	})
}

func TestValidateInvalidDocument(t *testing.T) {
	s := &Schema{Doc: &ast.SchemaDocument{Definitions: ast.DefinitionList{
		{Kind: ast.Object, Name: QueryType, Fields: ast.FieldList{
			{Name: "item", Type: ast.NamedType("Missing", nil)},
		}},
	}}}
	_, err := s.Validate()
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}
