package gen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/compiler/convert"
	"github.com/syssam/cruddals/schema"
	"github.com/syssam/cruddals/schema/edge"
	"github.com/syssam/cruddals/schema/field"
)

func shopGraph(t *testing.T) *schema.Graph {
	t.Helper()
	category, err := schema.NewModel("Category", schema.Config{Plural: "Categories"},
		field.String("name").Unique(),
		field.Bool("is_active").Default(true),
	)
	require.NoError(t, err)
	item, err := schema.NewModel("Item", schema.Config{Comment: "Item for sale."},
		field.String("name"),
		field.Decimal("price").Nullable(),
		field.Enum("status").Values("draft", "published").Default("draft"),
		edge.ManyToOne("category", "Category").Nullable(),
		edge.ManyToMany("tags", "Tag"),
	)
	require.NoError(t, err)
	tag, err := schema.NewModel("Tag", schema.Config{}, field.String("label"))
	require.NoError(t, err)
	g, err := schema.NewGraph(category, item, tag)
	require.NoError(t, err)
	return g
}

type stubResolvers struct{}

func stub(context.Context, any, map[string]any) (any, error) { return nil, nil }

func (stubResolvers) Relation(*schema.Model, *field.Descriptor) Resolver { return stub }
func (stubResolvers) Operation(*schema.Model, cruddals.Op) Resolver      { return stub }

func build(t *testing.T, g *schema.Graph, opts ...Option) (*Schema, *ast.Schema) {
	t.Helper()
	a, err := NewAssembler(g, opts...)
	require.NoError(t, err)
	s, err := a.Build()
	require.NoError(t, err)
	sch, err := s.Validate()
	require.NoError(t, err)
	return s, sch
}

func fieldType(t *testing.T, sch *ast.Schema, typ, name string) string {
	t.Helper()
	def := sch.Types[typ]
	require.NotNil(t, def, typ)
	fd := def.Fields.ForName(name)
	require.NotNil(t, fd, "%s.%s", typ, name)
	return fd.Type.String()
}

func argType(t *testing.T, fd *ast.FieldDefinition, name string) string {
	t.Helper()
	require.NotNil(t, fd)
	arg := fd.Arguments.ForName(name)
	require.NotNil(t, arg, "%s(%s)", fd.Name, name)
	return arg.Type.String()
}

func TestBuildRootFields(t *testing.T) {
	_, sch := build(t, shopGraph(t))
	require.NotNil(t, sch.Query)
	require.NotNil(t, sch.Mutation)

	read := sch.Query.Fields.ForName("readItem")
	assert.Equal(t, "ItemFilterInput!", argType(t, read, "where"))
	assert.Equal(t, "ItemType", read.Type.String())

	list := sch.Query.Fields.ForName("listItems")
	assert.Equal(t, "PaginationConfigInput", argType(t, list, "paginated"))
	assert.Equal(t, "ItemPaginatedType!", list.Type.String())

	search := sch.Query.Fields.ForName("searchItems")
	assert.Equal(t, "ItemFilterInput", argType(t, search, "where"))
	assert.Equal(t, "[ItemOrderByInput!]", argType(t, search, "orderBy"))

	create := sch.Mutation.Fields.ForName("createItems")
	assert.Equal(t, "[CreateItemInput!]!", argType(t, create, "input"))
	assert.Equal(t, "CreateItemsPayload!", create.Type.String())
	update := sch.Mutation.Fields.ForName("updateItems")
	assert.Equal(t, "[UpdateItemInput!]!", argType(t, update, "input"))
	del := sch.Mutation.Fields.ForName("deleteItems")
	assert.Equal(t, "ItemFilterInput!", argType(t, del, "where"))

	assert.NotNil(t, sch.Mutation.Fields.ForName("activateCategories"))
	assert.NotNil(t, sch.Mutation.Fields.ForName("deactivateCategories"))
	assert.Nil(t, sch.Mutation.Fields.ForName("activateItems"), "no state field")
	assert.NotNil(t, sch.Query.Fields.ForName("readCategory"))
}

func TestBuildModelTypes(t *testing.T) {
	_, sch := build(t, shopGraph(t))
	tests := []struct {
		typ, field, want string
	}{
		{"ItemType", "id", "ID!"},
		{"ItemType", "price", "Decimal"},
		{"ItemType", "status", "ItemStatusEnum!"},
		{"ItemType", "category", "CategoryType"},
		{"ItemType", "tags", "[TagType!]!"},
		{"CategoryType", "items", "[ItemType!]!"},
		{"TagType", "items", "[ItemType!]!"},
		{"CreateItemInput", "name", "String!"},
		{"CreateItemInput", "category", "CategoryInput"},
		{"CreateItemInput", "tags", "[TagInput!]"},
		{"UpdateItemInput", "id", "ID!"},
		{"UpdateItemInput", "name", "String"},
		{"UpdateItemInput", "tags", "TagConnectDisconnectInput"},
		{"ItemInput", "id", "ID"},
		{"ItemInput", "category", "CategoryInput"},
		{"TagConnectDisconnectInput", "connect", "[TagInput!]"},
		{"TagConnectDisconnectInput", "disconnect", "[TagFilterInput!]"},
		{"ItemFilterInput", "name", "StringFilter"},
		{"ItemFilterInput", "category", "CategoryFilterInput"},
		{"ItemFilterInput", "AND", "[ItemFilterInput!]"},
		{"ItemFilterInput", "OR", "[ItemFilterInput!]"},
		{"ItemFilterInput", "NOT", "ItemFilterInput"},
		{"ItemOrderByInput", "name", "OrderDirection"},
		{"ItemOrderByInput", "category", "CategoryOrderByInput"},
		{"ItemPaginatedType", "objects", "[ItemType!]!"},
		{"ItemPaginatedType", "has_next", "Boolean!"},
		{"DeleteItemsPayload", "success", "Boolean!"},
		{"DeleteItemsPayload", "objects", "[ItemType!]"},
		{"CreateItemsPayload", "errors", "[ErrorsType!]"},
		{"ErrorsType", "object_position", "String"},
		{"ErrorType", "messages", "[String!]!"},
		{"PaginationConfigInput", "page_size", "PageSize"},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"."+tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldType(t, sch, tt.typ, tt.field))
		})
	}

	assert.Nil(t, sch.Types["CreateItemInput"].Fields.ForName("id"))
	assert.Nil(t, sch.Types["ItemOrderByInput"].Fields.ForName("tags"))
	assert.Nil(t, sch.Types["CreateItemsPayload"].Fields.ForName("success"))

	tags := sch.Types["ItemType"].Fields.ForName("tags")
	assert.Equal(t, "TagFilterInput", argType(t, tags, "where"))
	assert.Equal(t, "[TagOrderByInput!]", argType(t, tags, "orderBy"))

	for _, name := range []string{"Decimal", "PageSize"} {
		require.NotNil(t, sch.Types[name], name)
		assert.Equal(t, ast.Scalar, sch.Types[name].Kind)
	}
	assert.Equal(t, ast.Enum, sch.Types["OrderDirection"].Kind)
	assert.Equal(t, "Item for sale.", sch.Types["ItemType"].Description)
}

func TestBuildResolvers(t *testing.T) {
	s, _ := build(t, shopGraph(t), WithResolvers(stubResolvers{}))
	for _, tf := range [][2]string{
		{QueryType, "readItem"},
		{QueryType, "searchCategories"},
		{MutationType, "createItems"},
		{"ItemType", "category"},
		{"CategoryType", "items"},
	} {
		_, ok := s.Resolver(tf[0], tf[1])
		assert.True(t, ok, "%s.%s", tf[0], tf[1])
	}
	_, ok := s.Resolver("ItemType", "name")
	assert.False(t, ok)

	e, ok := s.Entity("Item")
	require.True(t, ok)
	assert.Equal(t, "createItems", e.Fields[cruddals.OpCreate])
	assert.Equal(t, "ItemFilterInput", e.TypeName(convert.Filter))
	assert.Equal(t, "", (&Entity{}).TypeName(convert.Filter))
}

func TestBuildPrefixSuffix(t *testing.T) {
	s, sch := build(t, shopGraph(t), WithPrefix("shop"), WithSuffix("v1"))
	assert.NotNil(t, sch.Types["ShopItemV1Type"])
	assert.NotNil(t, sch.Query.Fields.ForName("readShopItemV1"))
	assert.NotNil(t, sch.Mutation.Fields.ForName("createShopItemsV1"))
	_, ok := s.Definition("ShopCategoryV1FilterInput")
	assert.True(t, ok)
}

func TestBuildSelection(t *testing.T) {
	t.Run("exclude models", func(t *testing.T) {
		_, sch := build(t, shopGraph(t), WithExcludeModels("Tag"))
		assert.Nil(t, sch.Types["TagType"])
		assert.Nil(t, sch.Types["ItemType"].Fields.ForName("tags"), "relation to an unbuilt model is absent")
		assert.Nil(t, sch.Types["ItemFilterInput"].Fields.ForName("tags"))
		assert.NotNil(t, sch.Types["ItemType"].Fields.ForName("category"))
	})
	t.Run("models", func(t *testing.T) {
		_, sch := build(t, shopGraph(t), WithModels("Item"))
		assert.Nil(t, sch.Types["CategoryType"])
		assert.Nil(t, sch.Types["ItemType"].Fields.ForName("category"))
	})
	t.Run("operations", func(t *testing.T) {
		_, sch := build(t, shopGraph(t), WithOperations("Item", cruddals.OpRead|cruddals.OpSearch))
		assert.NotNil(t, sch.Query.Fields.ForName("readItem"))
		assert.Nil(t, sch.Query.Fields.ForName("listItems"))
		assert.Nil(t, sch.Mutation.Fields.ForName("createItems"))
		assert.Nil(t, sch.Types["CreateItemInput"])
	})
	t.Run("exclude operations", func(t *testing.T) {
		_, sch := build(t, shopGraph(t), WithExcludeOperations("Category", cruddals.OpMutations))
		assert.Nil(t, sch.Mutation.Fields.ForName("createCategories"))
		assert.Nil(t, sch.Mutation.Fields.ForName("activateCategories"))
		assert.NotNil(t, sch.Query.Fields.ForName("listCategories"))
	})
}

func TestBuildExtraArgs(t *testing.T) {
	dryRun := &ast.ArgumentDefinition{Name: "dryRun", Type: ast.NamedType("Boolean", nil)}
	_, sch := build(t, shopGraph(t), WithExtraArgs("Item", cruddals.OpCreate, dryRun))
	create := sch.Mutation.Fields.ForName("createItems")
	assert.Equal(t, "Boolean", argType(t, create, "dryRun"))
	assert.Equal(t, "[CreateItemInput!]!", argType(t, create, "input"))
}

func TestBuildModelFailure(t *testing.T) {
	a, err := NewAssembler(shopGraph(t),
		WithOperations("Item", cruddals.OpActivate),
		WithModels("Item", "Tag", "Missing"),
	)
	require.NoError(t, err)
	s, err := a.Build()
	require.Error(t, err)
	assert.True(t, cruddals.IsSchemaBuildError(err))
	assert.ErrorIs(t, err, cruddals.ErrInvalidSchema)
	assert.Contains(t, err.Error(), "Item.activate")
	assert.Contains(t, err.Error(), "Missing")

	_, ok := s.Entity("Item")
	assert.False(t, ok)
	_, ok = s.Entity("Tag")
	assert.True(t, ok, "other models still build")
	sch, err := s.Validate()
	require.NoError(t, err)
	assert.Nil(t, sch.Types["TagType"].Fields.ForName("items"))
}

func TestBuildParentLink(t *testing.T) {
	product, err := schema.NewModel("Product", schema.Config{}, field.String("name"))
	require.NoError(t, err)
	book, err := schema.NewModel("Book", schema.Config{},
		field.String("isbn"),
		edge.OneToOne("product", "Product").ParentLink(),
	)
	require.NoError(t, err)
	g, err := schema.NewGraph(product, book)
	require.NoError(t, err)
	_, sch := build(t, g)
	assert.Equal(t, "ProductType", fieldType(t, sch, "BookType", "product"))
	for _, typ := range []string{"BookFilterInput", "BookOrderByInput", "CreateBookInput", "UpdateBookInput", "BookInput"} {
		assert.Nil(t, sch.Types[typ].Fields.ForName("product"), typ)
	}
}

func TestSDL(t *testing.T) {
	s, _ := build(t, shopGraph(t))
	sdl := s.SDL()
	for _, want := range []string{
		"scalar Decimal",
		"type ItemType",
		"input ItemFilterInput",
		"enum OrderDirection",
		"enum ItemStatusEnum",
		"DRAFT",
		"type Query",
		"type Mutation",
		"readItem(",
	} {
		assert.Contains(t, sdl, want)
	}
}

func TestBuildQueryOnly(t *testing.T) {
	g := shopGraph(t)
	var opts []Option
	for _, m := range g.Models {
		opts = append(opts, WithOperations(m.Name, cruddals.OpQueries))
	}
	_, sch := build(t, g, opts...)
	assert.Nil(t, sch.Mutation)
}

func TestNewAssembler(t *testing.T) {
	_, err := NewAssembler(nil)
	assert.True(t, IsConfigError(err))

	_, err = NewAssembler(shopGraph(t), WithStateField(""))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	a, err := NewAssembler(shopGraph(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultStateField, a.Config().StateField)
	assert.Len(t, a.Graph().Models, 3)
}
