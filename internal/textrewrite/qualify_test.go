package textrewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifyJoinColumns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "ambiguous equality",
			input:    `select * from "a" left join "b" on "col" = "col"`,
			expected: `select * from "a" left join "b" on "a"."col" = "b"."col"`,
		},
		{
			name:     "upper case keywords",
			input:    `SELECT * FROM "a" LEFT JOIN "b" ON "col" = "col"`,
			expected: `SELECT * FROM "a" LEFT JOIN "b" ON "a"."col" = "b"."col"`,
		},
		{
			name:     "different names",
			input:    `select * from "a" left join "b" on "x" = "y"`,
			expected: `select * from "a" left join "b" on "x" = "y"`,
		},
		{
			name:     "already qualified",
			input:    `select * from "a" left join "b" on "a"."id" = "b"."id"`,
			expected: `select * from "a" left join "b" on "a"."id" = "b"."id"`,
		},
		{
			name:     "parameter operand",
			input:    `select * from "a" join "b" on "id" = $1`,
			expected: `select * from "a" join "b" on "id" = $1`,
		},
		{
			name:     "not an equality",
			input:    `select * from "a" join "b" on "id" >= "id"`,
			expected: `select * from "a" join "b" on "id" >= "id"`,
		},
		{
			name:     "using join",
			input:    `select * from "a" join "b" using ("id")`,
			expected: `select * from "a" join "b" using ("id")`,
		},
		{
			name:     "no join",
			input:    `select "id" from "a" where "id" = "id"`,
			expected: `select "id" from "a" where "id" = "id"`,
		},
		{
			name:     "propagates to projection where and order by",
			input:    `select "id", "name" from "users" "u" inner join "orders" "o" on "id" = "id" where "id" > 1 order by "id"`,
			expected: `select "u"."id", "name" from "users" "u" inner join "orders" "o" on "u"."id" = "o"."id" where "u"."id" > 1 order by "u"."id"`,
		},
		{
			name:     "alias targets are left alone",
			input:    `select "a"."x" as "id" from "a" join "b" on "id" = "id"`,
			expected: `select "a"."x" as "id" from "a" join "b" on "a"."id" = "b"."id"`,
		},
		{
			name:     "alias targets without AS are left alone",
			input:    `select "x" "id", count(*) "n" from "a" join "b" on "id" = "id"`,
			expected: `select "x" "id", count(*) "n" from "a" join "b" on "a"."id" = "b"."id"`,
		},
		{
			name:     "distinct on list is qualified",
			input:    `select distinct on ("id") "id" from "a" join "b" on "id" = "id"`,
			expected: `select distinct on ("a"."id") "a"."id" from "a" join "b" on "a"."id" = "b"."id"`,
		},
		{
			name:     "distinct projection is qualified",
			input:    `select distinct "id" from "a" join "b" on "id" = "id"`,
			expected: `select distinct "a"."id" from "a" join "b" on "a"."id" = "b"."id"`,
		},
		{
			name:     "nested subquery is a separate scope",
			input:    `select * from "a" join "b" on "id" = "id" where "id" in (select "id" from "c")`,
			expected: `select * from "a" join "b" on "a"."id" = "b"."id" where "a"."id" in (select "id" from "c")`,
		},
		{
			name:     "left source follows join order",
			input:    `select * from "a" join "b" on "k" = "k" join "c" on "k" = "k"`,
			expected: `select * from "a" join "b" on "a"."k" = "b"."k" join "c" on "b"."k" = "c"."k"`,
		},
		{
			name:     "subquery source",
			input:    `select * from (select 1 as "id") "s" join "t" on "id" = "id"`,
			expected: `select * from (select 1 as "id") "s" join "t" on "s"."id" = "t"."id"`,
		},
		{
			name:     "escaped quote in table name",
			input:    `select * from "a""b" join "c" on "x" = "x"`,
			expected: `select * from "a""b" join "c" on "a""b"."x" = "c"."x"`,
		},
		{
			name:     "main query after CTE",
			input:    `with "x" as (select * from "a") select * from "x" join "b" on "id" = "id"`,
			expected: `with "x" as (select * from "a") select * from "x" join "b" on "x"."id" = "b"."id"`,
		},
		{
			name:     "CTE body qualified on its own",
			input:    `with "x" as (select * from "a" join "b" on "id" = "id") select * from "x" join "c" on "v" = "v"`,
			expected: `with "x" as (select * from "a" join "b" on "a"."id" = "b"."id") select * from "x" join "c" on "x"."v" = "c"."v"`,
		},
		{
			name:     "literal that looks like a join",
			input:    `select 'from "a" join "b" on "id" = "id"'`,
			expected: `select 'from "a" join "b" on "id" = "id"'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualifyJoinColumns(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, QualifyJoinColumns(got), "second pass must be a no-op")
		})
	}
}

func TestApplyEdits_RightToLeft(t *testing.T) {
	got := applyEdits("abc", []edit{{at: 0, text: "<"}, {at: 3, text: ">"}, {at: 1, text: "|"}})
	assert.Equal(t, "<a|bc>", got)
}
