package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddals/filter"
	ql "github.com/syssam/cruddals/querylanguage"
)

func TestParse(t *testing.T) {
	t.Run("Flattened", func(t *testing.T) {
		n, err := filter.Parse(map[string]any{"category__name__icontains": "off"})
		require.NoError(t, err)
		assert.Equal(t, filter.And{
			&filter.Leaf{Path: []string{"category", "name"}, Op: filter.OpIContains, Value: "off"},
		}, n)
	})
	t.Run("Nested", func(t *testing.T) {
		n, err := filter.Parse(map[string]any{
			"category": map[string]any{"name": map[string]any{"icontains": "off"}},
		})
		require.NoError(t, err)
		assert.Equal(t, filter.And{
			&filter.Leaf{Path: []string{"category", "name"}, Op: filter.OpIContains, Value: "off"},
		}, n)
	})
	t.Run("DefaultExact", func(t *testing.T) {
		n, err := filter.Parse(map[string]any{"name": "desk"})
		require.NoError(t, err)
		assert.Equal(t, filter.And{
			&filter.Leaf{Path: []string{"name"}, Op: filter.OpExact, Value: "desk"},
		}, n)
	})
	t.Run("Equals", func(t *testing.T) {
		n, err := filter.Parse(map[string]any{"name": map[string]any{"equals": "desk"}})
		require.NoError(t, err)
		assert.Equal(t, filter.OpExact, n.(filter.And)[0].(*filter.Leaf).Op)
	})
	t.Run("Combinators", func(t *testing.T) {
		n, err := filter.Parse(map[string]any{
			"price__gt": 10,
			"OR": []any{
				map[string]any{"name": "a"},
				map[string]any{"name": "b"},
			},
			"NOT": map[string]any{"is_active": false},
		})
		require.NoError(t, err)
		and := n.(filter.And)
		require.Len(t, and, 3)
		assert.Equal(t, &filter.Leaf{Path: []string{"price"}, Op: filter.OpGT, Value: 10}, and[0])
		assert.IsType(t, filter.Or{}, and[1])
		assert.IsType(t, &filter.Not{}, and[2])
	})
	t.Run("InList", func(t *testing.T) {
		n, err := filter.Parse(map[string]any{"id__in": []int{1, 2}})
		require.NoError(t, err)
		assert.Equal(t, []any{1, 2}, n.(filter.And)[0].(*filter.Leaf).Value)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		where map[string]any
	}{
		{"InNotList", map[string]any{"id__in": 1}},
		{"RangeLen", map[string]any{"price__range": []any{1}}},
		{"IsNullNotBool", map[string]any{"name__isnull": "yes"}},
		{"ContainsNotString", map[string]any{"name__contains": 1}},
		{"OrNotList", map[string]any{"OR": map[string]any{}}},
		{"OrItemNotObject", map[string]any{"OR": []any{1}}},
		{"NotNotObject", map[string]any{"NOT": []any{}}},
		{"EmptySegment", map[string]any{"category____name": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := filter.Parse(tt.where)
			require.Error(t, err)
		})
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		where map[string]any
		want  string
	}{
		{"Empty", map[string]any{}, "true"},
		{"Nil", nil, "true"},
		{"EmptyOr", map[string]any{"OR": []any{}}, "true"},
		{"EmptyNot", map[string]any{"NOT": map[string]any{}}, "true"},
		{"EmptyOrWithLeaf", map[string]any{"name": "a", "OR": []any{}}, `name == "a"`},
		{"Exact", map[string]any{"name": "a"}, `name == "a"`},
		{"ExactNil", map[string]any{"name": nil}, `name == nil`},
		{"IExact", map[string]any{"name__iexact": "A"}, `equal_fold(name, "A")`},
		{"Contains", map[string]any{"name__contains": "a"}, `contains(name, "a")`},
		{"IContains", map[string]any{"name__icontains": "a"}, `contains_fold(name, "a")`},
		{"StartsWith", map[string]any{"name__startswith": "a"}, `has_prefix(name, "a")`},
		{"IStartsWith", map[string]any{"name__istartswith": "a"}, `has_prefix_fold(name, "a")`},
		{"EndsWith", map[string]any{"name__endswith": "a"}, `has_suffix(name, "a")`},
		{"IEndsWith", map[string]any{"name__iendswith": "a"}, `has_suffix_fold(name, "a")`},
		{"Regex", map[string]any{"name__regex": "^a"}, `regex(name, "^a")`},
		{"IRegex", map[string]any{"name__iregex": "^a"}, `regex_fold(name, "^a")`},
		{"In", map[string]any{"id__in": []any{1, 2}}, `id in [1,2]`},
		{"Range", map[string]any{"price__range": []any{1, 5}}, `price >= 1 && price <= 5`},
		{"IsNull", map[string]any{"category__isnull": true}, `category == nil`},
		{"IsNotNull", map[string]any{"category__isnull": false}, `category != nil`},
		{"Comparisons", map[string]any{"price__gt": 1, "price__lte": 9}, `price > 1 && price <= 9`},
		{"Path", map[string]any{"category__name": "office"}, `category.name == "office"`},
		{
			"Or",
			map[string]any{"OR": []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}}},
			`name == "a" || name == "b"`,
		},
		{
			"Not",
			map[string]any{"NOT": map[string]any{"name": "a"}},
			`!(name == "a")`,
		},
		{
			"And",
			map[string]any{"AND": []any{map[string]any{"price__gt": 1}, map[string]any{"price__lt": 5}}},
			`price > 1 && price < 5`,
		},
		{
			"All",
			map[string]any{
				"is_active": true,
				"OR":        []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}},
				"NOT":       map[string]any{"price__gt": 5},
			},
			`(is_active == true && name == "a" || name == "b" && !(price > 5))`,
		},
		{
			"NestedCombinator",
			map[string]any{"category": map[string]any{"OR": []any{
				map[string]any{"name": "a"},
				map[string]any{"name": "b"},
			}}},
			`category.name == "a" || category.name == "b"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := filter.Where(tt.where)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestTranslateEmptyOrIsNeutral(t *testing.T) {
	n, err := filter.Parse(map[string]any{"OR": []any{}})
	require.NoError(t, err)
	assert.Equal(t, ql.True(), filter.Translate(n))
	assert.Equal(t, ql.True(), filter.Translate(filter.Or{}))
	assert.Equal(t, ql.True(), filter.Translate(nil))
}
