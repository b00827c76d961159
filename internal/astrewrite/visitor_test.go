package astrewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/textrewrite"
)

type visitCase struct {
	name     string
	input    string
	expected string // empty means the visitor reports no change
}

func runVisitCases(t *testing.T, v Visitor, tests []visitCase) {
	t.Helper()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stmt, err := sqlast.Parse(tc.input)
			require.NoError(t, err)

			before := sqlast.Format(stmt)
			changed := v.Visit(stmt)
			if tc.expected == "" {
				assert.False(t, changed)
				assert.Equal(t, before, sqlast.Format(stmt))
				return
			}
			require.True(t, changed)
			assert.Equal(t, tc.expected, sqlast.Format(stmt))

			// A second pass finds nothing left to do.
			assert.False(t, v.Visit(stmt))
		})
	}
}

func TestArrayOperators(t *testing.T) {
	runVisitCases(t, NewArrayOperators(textrewrite.DuckDBOperators), []visitCase{
		{
			name:     "contains",
			input:    `select * from t where tags @> $1`,
			expected: `SELECT * FROM t WHERE array_has_all(tags, $1)`,
		},
		{
			name:     "contained swaps arguments",
			input:    `select a <@ b from t`,
			expected: `SELECT array_has_all(b, a) FROM t`,
		},
		{
			name:     "overlap",
			input:    `select * from t where x && ARRAY['a', 'b']`,
			expected: `SELECT * FROM t WHERE array_has_any(x, ARRAY['a', 'b'])`,
		},
		{
			name:     "inside subquery",
			input:    `select * from t where id in (select id from u where tags && $1)`,
			expected: `SELECT * FROM t WHERE id IN (SELECT id FROM u WHERE array_has_any(tags, $1))`,
		},
		{
			name:     "keeps surrounding precedence",
			input:    `select * from t where a @> b and c = 1`,
			expected: `SELECT * FROM t WHERE array_has_all(a, b) AND c = 1`,
		},
		{
			name:  "operator inside literal",
			input: `select '@>' from t`,
		},
	})
}

func TestArrayOperators_Applies(t *testing.T) {
	v := NewArrayOperators(textrewrite.DuckDBOperators)
	assert.True(t, v.Applies("a && b"))
	assert.False(t, v.Applies("select 1"))
}

func TestJoinQualifier(t *testing.T) {
	runVisitCases(t, JoinQualifier{}, []visitCase{
		{
			name:     "ambiguous equality",
			input:    `select * from "a" left join "b" on "col" = "col"`,
			expected: `SELECT * FROM "a" LEFT JOIN "b" ON "a"."col" = "b"."col"`,
		},
		{
			name:     "propagates to projection, filter and ordering",
			input:    `select "id", "name" from "users" join "orders" on "id" = "id" where "id" = $1 order by "id"`,
			expected: `SELECT "users"."id", "name" FROM "users" JOIN "orders" ON "users"."id" = "orders"."id" WHERE "users"."id" = $1 ORDER BY "users"."id"`,
		},
		{
			name:     "propagates to distinct on",
			input:    `select distinct on ("id") "id" from "a" join "b" on "id" = "id"`,
			expected: `SELECT DISTINCT ON ("a"."id") "a"."id" FROM "a" JOIN "b" ON "a"."id" = "b"."id"`,
		},
		{
			name:     "aliases",
			input:    `select * from users u join orders o on id = id`,
			expected: `SELECT * FROM users AS u JOIN orders AS o ON u.id = o.id`,
		},
		{
			name:     "left source is the previous join",
			input:    `select * from a join b on "x" = "x" join c on "y" = "y"`,
			expected: `SELECT * FROM a JOIN b ON a."x" = b."x" JOIN c ON b."y" = c."y"`,
		},
		{
			name:     "cte scopes are independent",
			input:    `with c as (select * from a join b on "k" = "k") select "k" from c join d on "z" = "z"`,
			expected: `WITH c AS (SELECT * FROM a JOIN b ON a."k" = b."k") SELECT "k" FROM c JOIN d ON c."z" = d."z"`,
		},
		{
			name:     "subqueries are separate scopes",
			input:    `select "id" from a join b on "id" = "id" where exists (select "id" from c)`,
			expected: `SELECT a."id" FROM a JOIN b ON a."id" = b."id" WHERE EXISTS (SELECT "id" FROM c)`,
		},
		{
			name:     "update from",
			input:    `update "t" set "v" = 1 from "u" where "id" = "id"`,
			expected: `UPDATE "t" SET "v" = 1 FROM "u" WHERE "t"."id" = "u"."id"`,
		},
		{
			name:     "delete using",
			input:    `delete from t using u where id = id`,
			expected: `DELETE FROM t USING u WHERE t.id = u.id`,
		},
		{
			name:  "different names",
			input: `select * from a join b on "x" = "y"`,
		},
		{
			name:  "already qualified",
			input: `select * from "a" join "b" on "a"."id" = "b"."id"`,
		},
		{
			name:  "parameter operand",
			input: `select * from a join b on "id" = $1`,
		},
		{
			name:  "using join",
			input: `select * from a join b using ("id")`,
		},
	})
}

func TestSetOperationHoister(t *testing.T) {
	runVisitCases(t, SetOperationHoister{}, []visitCase{
		{
			name:     "hoists arm ctes",
			input:    `(with a as (select 1 as x) select x from a) union all (with b as (select 2 as x) select x from b)`,
			expected: `WITH a AS (SELECT 1 AS x), b AS (SELECT 2 AS x) (SELECT x FROM a) UNION ALL (SELECT x FROM b)`,
		},
		{
			name:     "merges identical definitions",
			input:    `(with a as (select 1) select * from a) union (with a as (select 1) select * from a)`,
			expected: `WITH a AS (SELECT 1) (SELECT * FROM a) UNION (SELECT * FROM a)`,
		},
		{
			name:     "appends after statement ctes",
			input:    `with s as (select 0) (with a as (select * from s) select * from a) except select * from s`,
			expected: `WITH s AS (SELECT 0), a AS (SELECT * FROM s) (SELECT * FROM a) EXCEPT SELECT * FROM s`,
		},
		{
			name:     "carries recursive",
			input:    `select 1 union (with recursive r(n) as (select 1 union all select n + 1 from r where n < 3) select n from r)`,
			expected: `WITH RECURSIVE r(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM r WHERE n < 3) SELECT 1 UNION (SELECT n FROM r)`,
		},
		{
			name:  "conflicting definitions",
			input: `(with a as (select 1) select * from a) union (with a as (select 2) select * from a)`,
		},
		{
			name:  "no arm ctes",
			input: `with a as (select 1) select * from a union select 2`,
		},
	})
}

func TestSeriesAlias(t *testing.T) {
	runVisitCases(t, SeriesAlias{}, []visitCase{
		{
			name:     "aliased series",
			input:    `select g from generate_series(1, 3) as g`,
			expected: `SELECT g FROM generate_series(1, 3) AS g(g)`,
		},
		{
			name:     "joined series with bare alias",
			input:    `select * from t cross join generate_series(1, t.n) g`,
			expected: `SELECT * FROM t CROSS JOIN generate_series(1, t.n) AS g(g)`,
		},
		{
			name:     "inside cte",
			input:    `with d as (select "day" from generate_series(1, 7) "day") select * from d`,
			expected: `WITH d AS (SELECT "day" FROM generate_series(1, 7) AS "day"("day")) SELECT * FROM d`,
		},
		{
			name:  "column alias present",
			input: `select x from generate_series(1, 3) as g(x)`,
		},
		{
			name:  "no alias",
			input: `select * from generate_series(1, 3)`,
		},
		{
			name:  "other table function",
			input: `select * from range(3) as r`,
		},
	})
}

func TestDefaultVisitors(t *testing.T) {
	names := func(vs []Visitor) []string {
		var out []string
		for _, v := range vs {
			out = append(out, v.Name())
		}
		return out
	}
	assert.Equal(t, []string{"array-operators", "join-qualifier", "set-operation-hoister", "series-alias"}, names(DefaultVisitors(true)))
	assert.Equal(t, []string{"join-qualifier", "set-operation-hoister", "series-alias"}, names(DefaultVisitors(false)))
}
