package cruddals_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddals"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := cruddals.NewNotFoundError("Item")
		assert.Equal(t, "cruddals: Item not found", err.Error())
		err = cruddals.NewNotFoundErrorWithID("Item", 7)
		assert.Equal(t, "cruddals: Item not found (id=7)", err.Error())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := cruddals.NewNotFoundError("Category")
		assert.True(t, errors.Is(err, cruddals.ErrNotFound))
		assert.True(t, cruddals.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, cruddals.IsNotFound(cruddals.ErrNotFound))
		assert.False(t, cruddals.IsNotFound(errors.New("other error")))
		assert.False(t, cruddals.IsNotFound(nil))
	})
}

func TestNotSingularError(t *testing.T) {
	err := cruddals.NewNotSingularError("Item", 3)
	assert.Equal(t, "cruddals: Item not singular (got 3 results, expected 1)", err.Error())
	assert.Equal(t, 3, err.Count())
	assert.True(t, errors.Is(err, cruddals.ErrNotSingular))
	assert.True(t, cruddals.IsNotSingular(fmt.Errorf("read: %w", err)))
	assert.False(t, cruddals.IsNotSingular(nil))
}

func TestConstraintError(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: items.name")
	err := cruddals.NewConstraintError("unique name", cause)
	assert.Equal(t, "cruddals: constraint failed: unique name", err.Error())
	assert.True(t, cruddals.IsConstraintError(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, cruddals.IsConstraintError(cause))
}

func TestValidationError(t *testing.T) {
	err := cruddals.NewValidationError("name", errors.New("this field is required"))
	assert.Equal(t, `cruddals: validator failed for field "name": this field is required`, err.Error())
	assert.True(t, cruddals.IsValidationError(fmt.Errorf("create: %w", err)))
	assert.False(t, cruddals.IsValidationError(errors.New("plain")))
	assert.False(t, cruddals.IsValidationError(nil))
}

func TestSchemaBuildError(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		err := cruddals.NewSchemaBuildError("Item", "create", "override cannot be combined with hooks", nil)
		assert.Equal(t, "cruddals: schema Item.create: override cannot be combined with hooks", err.Error())
		assert.True(t, errors.Is(err, cruddals.ErrInvalidSchema))
		assert.True(t, cruddals.IsSchemaBuildError(err))
	})

	t.Run("Cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := cruddals.NewSchemaBuildError("Item", "", "bad field", cause)
		assert.Equal(t, "cruddals: schema Item: bad field: boom", err.Error())
		assert.ErrorIs(t, err, cause)
	})
}

func TestUnsupportedFieldKindError(t *testing.T) {
	err := &cruddals.UnsupportedFieldKindError{Model: "Item", Field: "blob", Kind: "invalid"}
	assert.Contains(t, err.Error(), "don't know how to convert field Item.blob")
	assert.True(t, errors.Is(err, cruddals.ErrUnsupportedFieldKind))
	assert.True(t, cruddals.IsUnsupportedFieldKind(fmt.Errorf("convert: %w", err)))
}

func TestRelationResolutionError(t *testing.T) {
	cause := cruddals.NewNotFoundError("Category")
	err := cruddals.NewRelationResolutionError("category", cause)
	assert.Equal(t, "cruddals: relation category: cruddals: Category not found", err.Error())
	assert.True(t, cruddals.IsRelationResolutionError(err))
	assert.True(t, cruddals.IsNotFound(err))
}

func TestRequiredArgumentError(t *testing.T) {
	err := cruddals.NewRequiredArgumentError("delete", "where")
	assert.Equal(t, "cruddals: delete: where argument is required", err.Error())
	assert.True(t, errors.Is(err, cruddals.ErrArgumentRequired))
}

func TestQueryError(t *testing.T) {
	err := cruddals.NewQueryError("Item", "search", errors.New(`unknown field "nme"`))
	assert.Equal(t, `cruddals: querying Item (search): unknown field "nme"`, err.Error())
	assert.True(t, cruddals.IsQueryError(err))
	err = cruddals.NewQueryError("Item", "", errors.New("x"))
	assert.Equal(t, "cruddals: querying Item: x", err.Error())
}

func TestAggregateError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, cruddals.NewAggregateError(nil, nil))
	})

	t.Run("Single", func(t *testing.T) {
		e := errors.New("only")
		assert.Equal(t, e, cruddals.NewAggregateError(nil, e))
	})

	t.Run("Multiple", func(t *testing.T) {
		e1, e2 := errors.New("first"), errors.New("second")
		err := cruddals.NewAggregateError(e1, nil, e2)
		var agg *cruddals.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 2)
		assert.Contains(t, err.Error(), "[1] first")
		assert.Contains(t, err.Error(), "[2] second")
		assert.ErrorIs(t, err, e2)
	})
}
