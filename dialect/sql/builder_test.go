package sql

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddals/dialect"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		input     Querier
		wantQuery string
		wantArgs  []any
	}{
		{
			input: Dialect(dialect.Postgres).Select("id", "name").
				From(Table("items")).
				Where(And(EQ("name", "pen"), Or(GT("price", 1), IsNull("price")))).
				OrderBy("id", false).
				Limit(10).
				Offset(20),
			wantQuery: `SELECT "id", "name" FROM "items" WHERE "name" = $1 AND ("price" > $2 OR "price" IS NULL) ORDER BY "id" ASC LIMIT 10 OFFSET 20`,
			wantArgs:  []any{"pen", 1},
		},
		{
			input: Dialect(dialect.MySQL).Select("id", "name").
				From(Table("items")).
				Where(And(EQ("name", "pen"), Or(GT("price", 1), IsNull("price")))),
			wantQuery: "SELECT `id`, `name` FROM `items` WHERE `name` = ? AND (`price` > ? OR `price` IS NULL)",
			wantArgs:  []any{"pen", 1},
		},
		{
			input: func() Querier {
				t := Table("items").As("t0")
				return Dialect(dialect.SQLite).Select(t.C("id")).From(t).Where(NotNull(t.C("name")))
			}(),
			wantQuery: `SELECT "t0"."id" FROM "items" AS "t0" WHERE "t0"."name" IS NOT NULL`,
		},
		{
			input: Dialect(dialect.Postgres).Select("*").
				From(Table("items")).
				Where(And(
					EQ("a", 1),
					InSelect("category_id", Select("id").From(Table("categories")).Where(EQ("name", "x"))),
					EQ("b", 2),
				)),
			wantQuery: `SELECT * FROM "items" WHERE "a" = $1 AND "category_id" IN (SELECT "id" FROM "categories" WHERE "name" = $2) AND "b" = $3`,
			wantArgs:  []any{1, "x", 2},
		},
		{
			input:     Dialect(dialect.SQLite).Select().From(Table("items")).Where(Not(EQ("a", 1))),
			wantQuery: `SELECT * FROM "items" WHERE NOT ("a" = ?)`,
			wantArgs:  []any{1},
		},
		{
			input:     Dialect(dialect.SQLite).Select().From(Table("items")).Offset(5),
			wantQuery: `SELECT * FROM "items" LIMIT -1 OFFSET 5`,
		},
		{
			input:     Dialect(dialect.MySQL).Select().From(Table("items")).Offset(5),
			wantQuery: "SELECT * FROM `items` LIMIT 18446744073709551615 OFFSET 5",
		},
		{
			input: Dialect(dialect.Postgres).Select().From(Table("items")).
				OrderExpr(func(b *Builder) { b.WriteString("LOWER(").Ident("name").WriteByte(')') }, true),
			wantQuery: `SELECT * FROM "items" ORDER BY LOWER("name") DESC`,
		},
		{
			input:     Dialect(dialect.SQLite).Select().From(Table("items")).Count(),
			wantQuery: `SELECT COUNT(*) FROM "items"`,
		},
		{
			input:     Dialect(dialect.SQLite).Select("id").Distinct().From(Table("items")).Where(Exists(Select("*").From(Table("tags")))),
			wantQuery: `SELECT DISTINCT "id" FROM "items" WHERE EXISTS (SELECT * FROM "tags")`,
		},
		{
			input:     Dialect(dialect.SQLite).Insert("items").Columns("name", "price").Values("pen", 1).Returning("id"),
			wantQuery: `INSERT INTO "items" ("name", "price") VALUES (?, ?) RETURNING "id"`,
			wantArgs:  []any{"pen", 1},
		},
		{
			input:     Dialect(dialect.MySQL).Insert("items").Returning("id"),
			wantQuery: "INSERT INTO `items` () VALUES ()",
		},
		{
			input:     Dialect(dialect.Postgres).Insert("items").Returning("id"),
			wantQuery: `INSERT INTO "items" DEFAULT VALUES RETURNING "id"`,
		},
		{
			input:     Dialect(dialect.Postgres).Insert("items_tags").Columns("item_id", "tag_id").Values(1, 2).Values(1, 3),
			wantQuery: `INSERT INTO "items_tags" ("item_id", "tag_id") VALUES ($1, $2), ($3, $4)`,
			wantArgs:  []any{1, 2, 1, 3},
		},
		{
			input:     Dialect(dialect.Postgres).Update("items").Set("name", "pen").SetNull("price").Where(In("id", 1, 2)),
			wantQuery: `UPDATE "items" SET "name" = $1, "price" = NULL WHERE "id" IN ($2, $3)`,
			wantArgs:  []any{"pen", 1, 2},
		},
		{
			input:     Dialect(dialect.MySQL).Delete("items").Where(EQ("id", 1)),
			wantQuery: "DELETE FROM `items` WHERE `id` = ?",
			wantArgs:  []any{1},
		},
		{
			input:     Dialect(dialect.SQLite).Delete("items"),
			wantQuery: `DELETE FROM "items"`,
		},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			query, args := tt.input.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		dialect   string
		p         *Predicate
		wantQuery string
		wantArgs  []any
	}{
		{"empty in", dialect.SQLite, In("id"), "1 = 0", nil},
		{"empty not in", dialect.SQLite, NotIn("id"), "1 = 1", nil},
		{"in", dialect.SQLite, InValues("id", 1, 2), `"id" IN (?, ?)`, []any{1, 2}},
		{"not in", dialect.Postgres, NotIn("id", 3), `"id" NOT IN ($1)`, []any{3}},
		{"empty and", dialect.SQLite, And(), "1 = 1", nil},
		{"empty or", dialect.SQLite, Or(), "1 = 0", nil},
		{"single or", dialect.SQLite, Or(EQ("a", 1)), `"a" = ?`, []any{1}},
		{"columns", dialect.SQLite, ColumnsEQ("t1.id", "t0.category_id"), `"t1"."id" = "t0"."category_id"`, nil},
		{"neq", dialect.Postgres, NEQ("a", 1), `"a" <> $1`, []any{1}},
		{"range", dialect.Postgres, And(GTE("a", 1), LTE("a", 5)), `"a" >= $1 AND "a" <= $2`, []any{1, 5}},
		{"lt", dialect.MySQL, LT("a", 1), "`a` < ?", []any{1}},
		{"contains sqlite", dialect.SQLite, Contains("name", "50%_x"), `"name" LIKE ? ESCAPE '\'`, []any{`%50\%\_x%`}},
		{"contains fold sqlite", dialect.SQLite, ContainsFold("name", "Pen"), `LOWER("name") LIKE ? ESCAPE '\'`, []any{"%pen%"}},
		{"contains fold postgres", dialect.Postgres, ContainsFold("name", "Pen"), `"name" ILIKE $1`, []any{"%Pen%"}},
		{"contains fold mysql", dialect.MySQL, ContainsFold("name", "Pen"), "LOWER(`name`) LIKE ?", []any{"%pen%"}},
		{"prefix", dialect.Postgres, HasPrefix("name", "a"), `"name" LIKE $1`, []any{"a%"}},
		{"prefix fold", dialect.Postgres, HasPrefixFold("name", "a"), `"name" ILIKE $1`, []any{"a%"}},
		{"suffix", dialect.MySQL, HasSuffix("name", "z"), "`name` LIKE ?", []any{"%z"}},
		{"suffix fold", dialect.MySQL, HasSuffixFold("name", "Z"), "LOWER(`name`) LIKE ?", []any{"%z"}},
		{"equal fold", dialect.Postgres, EqualFold("name", "PEN"), `LOWER("name") = $1`, []any{"pen"}},
		{"regex postgres", dialect.Postgres, Regex("name", "^p", false), `"name" ~ $1`, []any{"^p"}},
		{"iregex postgres", dialect.Postgres, Regex("name", "^p", true), `"name" ~* $1`, []any{"^p"}},
		{"iregex mysql", dialect.MySQL, Regex("name", "^p", true), "REGEXP_LIKE(`name`, ?, 'i')", []any{"^p"}},
		{"regex mysql", dialect.MySQL, Regex("name", "^p", false), "REGEXP_LIKE(`name`, ?, 'c')", []any{"^p"}},
		{"iregex sqlite", dialect.SQLite, Regex("name", "^p", true), `"name" REGEXP ?`, []any{"(?i)^p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.p.Query(tt.dialect)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestQuote(t *testing.T) {
	b := NewBuilder(dialect.Postgres)
	assert.Equal(t, `"we""ird"`, b.Quote(`we"ird`))
	b = NewBuilder(dialect.MySQL)
	assert.Equal(t, "`a`", b.Quote("a"))
	b.Ident("t.*")
	require.Equal(t, "`t`.*", b.String())
}

func TestSelectorC(t *testing.T) {
	s := Dialect(dialect.SQLite).Select()
	assert.Equal(t, "name", s.C("name"))
	s.From(Table("items"))
	assert.Equal(t, "items.name", s.C("name"))
	assert.Equal(t, "items", s.Table().Name())
	assert.Nil(t, s.P())
	s.Where(EQ("a", 1)).Where(nil)
	assert.NotNil(t, s.P())
}
