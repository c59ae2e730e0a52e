package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddals/order"
)

func TestParseDirection(t *testing.T) {
	tests := map[string]order.Direction{
		"ASC":     order.Asc,
		"desc":    order.Desc,
		"ASC_CI":  order.AscCI,
		"DESC_CI": order.DescCI,
		"IASC":    order.AscCI,
		"IDESC":   order.DescCI,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			d, err := order.ParseDirection(in)
			require.NoError(t, err)
			assert.Equal(t, want, d)
		})
	}
	_, err := order.ParseDirection("UP")
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	t.Run("Map", func(t *testing.T) {
		dirs, err := order.Parse(map[string]any{"price": "DESC", "name": "ASC"})
		require.NoError(t, err)
		assert.Equal(t, []order.Directive{
			{Path: []string{"name"}, Direction: order.Asc},
			{Path: []string{"price"}, Direction: order.Desc},
		}, dirs)
	})
	t.Run("ListKeepsOrder", func(t *testing.T) {
		dirs, err := order.Parse([]any{
			map[string]any{"price": "DESC"},
			map[string]any{"name": "IASC"},
		})
		require.NoError(t, err)
		assert.Equal(t, []order.Directive{
			{Path: []string{"price"}, Direction: order.Desc},
			{Path: []string{"name"}, Direction: order.AscCI},
		}, dirs)
	})
	t.Run("Nested", func(t *testing.T) {
		dirs, err := order.Parse(map[string]any{"category": map[string]any{"name": "DESC_CI"}})
		require.NoError(t, err)
		assert.Equal(t, []order.Directive{{Path: []string{"category", "name"}, Direction: order.DescCI}}, dirs)
	})
	t.Run("Flattened", func(t *testing.T) {
		dirs, err := order.Parse(map[string]any{"category__name": "ASC"})
		require.NoError(t, err)
		assert.Equal(t, []order.Directive{{Path: []string{"category", "name"}, Direction: order.Asc}}, dirs)
	})
	t.Run("Errors", func(t *testing.T) {
		for _, v := range []any{1, []any{1}, map[string]any{"name": 1}, map[string]any{"name": "UP"}} {
			_, err := order.Parse(v)
			require.Error(t, err, "%v", v)
		}
	})
}

func TestTranslate(t *testing.T) {
	t.Run("DefaultPK", func(t *testing.T) {
		terms := order.Translate(nil, "id")
		assert.Equal(t, []order.Term{{Path: []string{"id"}}}, terms)
		assert.Equal(t, "id ASC", terms[0].String())
	})
	t.Run("Directions", func(t *testing.T) {
		terms, err := order.By([]any{
			map[string]any{"name": "DESC_CI"},
			map[string]any{"price": "ASC_CI"},
			map[string]any{"id": "DESC"},
		}, "id")
		require.NoError(t, err)
		var s []string
		for _, tt := range terms {
			s = append(s, tt.String())
		}
		assert.Equal(t, []string{"lower(name) DESC", "lower(price) ASC", "id DESC"}, s)
	})
	t.Run("PKTiebreak", func(t *testing.T) {
		tests := []struct {
			name string
			dirs []order.Directive
			want []order.Term
		}{
			{
				name: "Appended",
				dirs: []order.Directive{{Path: []string{"name"}, Direction: order.Asc}},
				want: []order.Term{{Path: []string{"name"}}, {Path: []string{"id"}}},
			},
			{
				name: "AppendedAfterRelationPath",
				dirs: []order.Directive{{Path: []string{"category", "id"}, Direction: order.Desc}},
				want: []order.Term{{Path: []string{"category", "id"}, Desc: true}, {Path: []string{"id"}}},
			},
			{
				name: "KeptWhenSorted",
				dirs: []order.Directive{
					{Path: []string{"id"}, Direction: order.Desc},
					{Path: []string{"name"}, Direction: order.Asc},
				},
				want: []order.Term{{Path: []string{"id"}, Desc: true}, {Path: []string{"name"}}},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, order.Translate(tt.dirs, "id"))
			})
		}
	})
}
