// Package cruddals compiles a declarative data model into a CRUD, list and
// search API.
//
// # Models
//
// Models are declared with the schema, schema/field and schema/edge
// packages, or loaded from a YAML model file by compiler/load. A
// schema.Graph holds the models and derives the reverse side of every
// relation:
//
//	category, _ := schema.NewModel("Category", schema.Config{Plural: "Categories"},
//	    field.String("name").Unique(),
//	)
//	item, _ := schema.NewModel("Item", schema.Config{},
//	    field.String("name"),
//	    field.Decimal("price").Nullable(),
//	    edge.ManyToOne("category", "Category").Nullable(),
//	)
//	g, _ := schema.NewGraph(category, item)
//
// # Operations
//
// Every model gets the operations of Op: read, list and search, create,
// update and delete, and activate and deactivate for models with a boolean
// state field. The crud package runs them against a store.Store:
//
//	drv, _ := sql.Open(dialect.SQLite, dsn)
//	st, _ := sqlstore.New(drv, g)
//	app, _ := crud.New(g, st)
//	res, _ := app.Execute(ctx, "Item", cruddals.OpSearch, crud.Args{
//	    "where":   map[string]any{"name__icontains": "pen"},
//	    "orderBy": map[string]any{"price": "DESC"},
//	})
//
// # API schema
//
// compiler/gen assembles the GraphQL types of the operations: output, input,
// filter and order types per model, paginated list types, and the Query
// and Mutation root fields. App.Assemble builds it with the app as the
// resolver provider.
//
// # Errors
//
// The error types of this package classify every failure. Build problems
// are SchemaBuildError. Execution failures are QueryError,
// RequiredArgumentError, NotFoundError, NotSingularError or
// RelationResolutionError. Per-field problems of mutations are reported as
// field errors in the mutation result instead of as errors.
package cruddals
