// Package gen assembles the API schema of a model graph.
//
// An Assembler turns every selected model into a family of GraphQL type
// descriptors and root operation fields:
//
//	ItemType                   output object
//	CreateItemInput            create payload, primary key excluded
//	UpdateItemInput            update payload, primary key required
//	ItemInput                  nested create-or-update, primary key optional
//	ItemConnectDisconnectInput nested connect and disconnect of many relations
//	ItemFilterInput            where argument, with AND, OR and NOT
//	ItemOrderByInput           orderBy argument
//	ItemPaginatedType          one page of ItemType objects
//
// # Build phases
//
// Build runs in three phases over a fresh registry:
//
//  1. Every field of every model is converted for every purpose. A model
//     whose fields cannot be converted is dropped and reported.
//  2. A shell definition (name and kind) is registered per model and purpose.
//  3. Shells are filled breadth-first. Relation fields resolve against the
//     registered shells, so models may reference each other in cycles.
//
// Build returns the joined per-model errors next to a schema of the models
// that built.
//
// # Error Handling
//
//   - ConfigError: invalid assembler options
//   - GenerationError: the assembled document does not render or validate
//   - cruddals.SchemaBuildError: a model could not be built
//
// Example:
//
//	s, err := gen.NewAssembler(graph, gen.WithPrefix("shop")).Build()
//	if err != nil {
//		log.Print(err) // Other models are still in s.
//	}
//	fmt.Println(s.SDL())
package gen
