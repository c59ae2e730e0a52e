package sql

import (
	"testing"

	"github.com/syssam/cruddals/dialect"
)

func BenchmarkInsertBuilder(b *testing.B) {
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(d).Insert("items").
					Columns("name", "price", "status", "category_id", "created_at").
					Values("pen", "1.50", "draft", 2, "2024-05-01 10:30:00").
					Returning("id").
					Query()
			}
		})
	}
}

func BenchmarkSelectBuilder(b *testing.B) {
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				t0 := Table("items").As("t0")
				t1 := Table("categories").As("t1")
				Dialect(d).Select(t0.C("id"), t0.C("name")).
					From(t0).
					Where(And(
						ContainsFold(t0.C("name"), "pen"),
						InSelect(t0.C("category_id"), Select(t1.C("id")).From(t1).Where(EQ(t1.C("name"), "office"))),
					)).
					OrderBy(t0.C("id"), false).
					Limit(10).
					Offset(20).
					Query()
			}
		})
	}
}

func BenchmarkUpdateBuilder(b *testing.B) {
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(d).Update("items").
					Set("name", "pen").
					SetNull("price").
					Where(In("id", 1, 2, 3)).
					Query()
			}
		})
	}
}

func BenchmarkPredicates(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Or(
			And(EQ("status", "draft"), Not(IsNull("price"))),
			HasPrefixFold("name", "p"),
		).Query(dialect.Postgres)
	}
}
