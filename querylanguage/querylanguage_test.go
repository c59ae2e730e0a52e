package querylanguage_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ql "github.com/syssam/cruddals/querylanguage"
)

func TestPString(t *testing.T) {
	tests := []struct {
		P ql.P
		S string
	}{
		{
			P: ql.And(ql.FieldEQ("name", "desk"), ql.FieldIn("color", "red", "blue")),
			S: `name == "desk" && color in ["red","blue"]`,
		},
		{
			P: ql.Or(ql.Not(ql.FieldEQ("name", "desk")), ql.FieldNotIn("id", 1, 2, 3)),
			S: `!(name == "desk") || id not in [1,2,3]`,
		},
		{
			P: ql.HasEdgeWith("tags", ql.HasEdgeWith("items", ql.FieldHasSuffix("name", "chair"))),
			S: `has_edge(tags, has_edge(items, has_suffix(name, "chair")))`,
		},
		{
			P: ql.And(ql.FieldGTE("price", 10), ql.FieldLT("price", 99.5)),
			S: `price >= 10 && price < 99.5`,
		},
		{
			P: ql.And(ql.FieldNil("category"), ql.FieldNotNil("name")),
			S: `category == nil && name != nil`,
		},
		{
			P: ql.EQ(ql.Path("category", "name"), &ql.Value{V: "office"}),
			S: `category.name == "office"`,
		},
		{
			P: ql.Call(ql.FuncRegexFold, ql.Path("category", "name"), "^off"),
			S: `regex_fold(category.name, "^off")`,
		},
		{
			P: ql.FieldEQ("created", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
			S: `created == "2024-01-02T00:00:00Z"`,
		},
		{
			P: ql.FieldEQ("blob", []byte("hi")),
			S: `blob == "aGk="`,
		},
	}
	for i := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			assert.Equal(t, tests[i].S, tests[i].P.String())
		})
	}
}

func TestFuncs(t *testing.T) {
	tests := []struct {
		name string
		P    ql.P
		S    string
	}{
		{"EqualFold", ql.FieldEqualFold("email", "A@B.IO"), `equal_fold(email, "A@B.IO")`},
		{"Contains", ql.FieldContains("name", "es"), `contains(name, "es")`},
		{"ContainsFold", ql.FieldContainsFold("name", "ES"), `contains_fold(name, "ES")`},
		{"HasPrefix", ql.FieldHasPrefix("sku", "A-"), `has_prefix(sku, "A-")`},
		{"HasPrefixFold", ql.Call(ql.FuncHasPrefixFold, ql.F("sku"), "a-"), `has_prefix_fold(sku, "a-")`},
		{"HasEdge", ql.HasEdge("category"), `has_edge(category)`},
		{"HasEdgeWithout", ql.HasEdgeWith("category"), `has_edge(category)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.S, tt.P.String())
		})
	}
}

func TestNary(t *testing.T) {
	p := ql.And(ql.FieldEQ("a", 1), ql.FieldEQ("b", 2), ql.FieldEQ("c", 3))
	assert.Equal(t, `(a == 1 && b == 2 && c == 3)`, p.String())
	assert.Equal(t, `!((a == 1 && b == 2 && c == 3))`, p.Negate().String())

	p = ql.Or(ql.FieldEQ("x", 1), ql.FieldEQ("y", 2), ql.FieldEQ("z", 3))
	assert.Equal(t, `(x == 1 || y == 2 || z == 3)`, p.String())
}

func TestConst(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		assert.Equal(t, ql.True(), ql.And())
		assert.Equal(t, ql.False(), ql.Or())
		assert.Equal(t, ql.True(), ql.And(ql.True(), ql.True()))
	})
	t.Run("DropIdentity", func(t *testing.T) {
		p := ql.And(ql.True(), ql.FieldEQ("a", 1), ql.True())
		assert.Equal(t, `a == 1`, p.String())
		p = ql.Or(ql.False(), ql.FieldEQ("a", 1), ql.FieldEQ("b", 2))
		assert.Equal(t, `a == 1 || b == 2`, p.String())
	})
	t.Run("Absorb", func(t *testing.T) {
		assert.Equal(t, ql.False(), ql.And(ql.FieldEQ("a", 1), ql.False()))
		assert.Equal(t, ql.True(), ql.Or(ql.FieldEQ("a", 1), ql.True()))
	})
	t.Run("Negate", func(t *testing.T) {
		assert.Equal(t, ql.False(), ql.True().Negate())
		assert.Equal(t, "true", ql.True().String())
		assert.Equal(t, "false", ql.False().String())
	})
}

func TestNegate(t *testing.T) {
	p := ql.FieldEQ("name", "x")
	assert.Equal(t, `!(name == "x")`, p.Negate().String())
	assert.Equal(t, `!(!(name == "x"))`, ql.Not(p).Negate().String())
	assert.Equal(t, `!(has_edge(tags))`, ql.HasEdge("tags").Negate().String())
	assert.Equal(t, `!(current == total)`, ql.EQ(ql.F("current"), ql.F("total")).Negate().String())
}

func TestField(t *testing.T) {
	f := ql.Path("category", "parent", "name")
	assert.Equal(t, "name", f.Name())
	assert.Equal(t, "category.parent.name", f.String())
	require.Len(t, f.Path, 3)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "not in", ql.OpNotIn.String())
	assert.Equal(t, "Op(99)", ql.Op(99).String())
}
