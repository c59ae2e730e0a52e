// Package sql provides the SQL statement builders and the database/sql
// driver used by the SQL store.
//
// # Builder Types
//
//   - Builder: low-level statement writer with identifier quoting and
//     dialect-specific placeholders
//   - Selector: SELECT builder with predicates, ordering and pagination
//   - InsertBuilder: INSERT builder with RETURNING support
//   - UpdateBuilder: UPDATE builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE builder with WHERE predicates
//
// # Dialect Support
//
// Quoting and placeholders follow the dialect of the builder:
//
//	sql.Dialect(dialect.Postgres).
//		Select("id", "name").
//		From(sql.Table("items")).
//		Where(sql.EQ("status", "published"))
//	// SELECT "id", "name" FROM "items" WHERE "status" = $1
//
//	sql.Dialect(dialect.MySQL).Select().From(sql.Table("items")).Limit(10)
//	// SELECT * FROM `items` LIMIT 10
//
// # Predicates
//
//	sql.EQ("name", "pen")              // name = ?
//	sql.GT("price", 10)                // price > ?
//	sql.ContainsFold("name", "pen")    // ILIKE on Postgres, LOWER(name) LIKE elsewhere
//	sql.In("status", "a", "b")         // status IN (?, ?)
//	sql.IsNull("category_id")          // category_id IS NULL
//	sql.Or(sql.EQ("a", 1), sql.EQ("b", 2))
//
// Subqueries are built with InSelect and Exists. The sqlgraph package
// uses them to evaluate predicates across relations.
package sql
