// Package crud runs the operations of the generated API against a store.
//
// Every model of a graph gets create, read, update, delete, list and search
// operations, plus activate and deactivate when it has a boolean state
// field. Each operation is a pipeline of pre-hooks, a core and post-hooks,
// or a single override:
//
//	app, err := crud.New(g, s,
//		crud.WithOperation("Item", cruddals.OpCreate, crud.OperationSpec{
//			PreHooks: []crud.PreHook{stamp},
//		}),
//	)
//	res, err := app.Execute(ctx, "Item", cruddals.OpCreate, crud.Args{
//		"input": []any{map[string]any{"name": "Pen", "category": map[string]any{"id": 1}}},
//	})
//
// Create and update take a batch of objects. Each object is written in its
// own transaction together with its nested relation objects, which are
// handed to the operations of the related models. An object that fails is
// rolled back and reported in MutationResult.Errors by position.
//
// App implements gen.Resolvers; Assemble builds the API schema with the app
// as its resolver provider.
package crud
