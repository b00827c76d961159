package astrewrite

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
)

func newTestTransformer(t *testing.T, buf *bytes.Buffer, visitors ...Visitor) *Transformer {
	t.Helper()
	cache, err := NewCache(16)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if len(visitors) == 0 {
		visitors = DefaultVisitors(true)
	}
	return NewTransformer(cache, logger, visitors...)
}

func TestTransformer_Rewrite(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		transformed bool
	}{
		{
			name:        "operator and join together",
			input:       `select * from "a" join "b" on "id" = "id" where "tags" @> $1`,
			expected:    `SELECT * FROM "a" JOIN "b" ON "a"."id" = "b"."id" WHERE array_has_all("tags", $1)`,
			transformed: true,
		},
		{
			name:        "series alias",
			input:       `select g from generate_series(1, 3) as g`,
			expected:    `SELECT g FROM generate_series(1, 3) AS g(g)`,
			transformed: true,
		},
		{
			name:     "nothing applies",
			input:    `select 1`,
			expected: `select 1`,
		},
		{
			name:     "applies but nothing changes keeps original text",
			input:    `select * from a join b on "x" = "y"`,
			expected: `select * from a join b on "x" = "y"`,
		},
		{
			name:     "operator inside literal",
			input:    `select '@>' from t`,
			expected: `select '@>' from t`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tr := newTestTransformer(t, &buf)
			res := tr.Rewrite(tc.input)
			assert.Equal(t, tc.expected, res.SQL)
			assert.Equal(t, tc.transformed, res.Transformed)
		})
	}
}

func TestTransformer_FallbackSafety(t *testing.T) {
	inputs := []string{
		`select a @> from t`,
		`select * from a join b on "id" = "id"; select 1`,
		`select * from (a join b on a.x = b.x) join c on "y" = "y"`,
		`select 'unterminated @>`,
		`frobnicate join`,
	}
	for _, sql := range inputs {
		t.Run(sql, func(t *testing.T) {
			var buf bytes.Buffer
			tr := newTestTransformer(t, &buf)

			res := tr.Rewrite(sql)
			assert.Equal(t, sql, res.SQL)
			assert.False(t, res.Transformed)
			assert.Contains(t, buf.String(), "ast rewrite fallback")

			// Failures are cached as unchanged results.
			assert.True(t, tr.Cache().Contains(sql))
		})
	}
}

type panicVisitor struct{}

func (panicVisitor) Name() string                { return "panic" }
func (panicVisitor) Applies(string) bool         { return true }
func (panicVisitor) Visit(stmt sqlast.Stmt) bool { panic("boom") }

func TestTransformer_RecoversVisitorPanic(t *testing.T) {
	var buf bytes.Buffer
	tr := newTestTransformer(t, &buf, panicVisitor{})

	res := tr.Rewrite("select 1")
	assert.Equal(t, "select 1", res.SQL)
	assert.False(t, res.Transformed)
	assert.Contains(t, buf.String(), "visitor=panic")
}

func TestTransformer_CacheUse(t *testing.T) {
	var buf bytes.Buffer
	tr := newTestTransformer(t, &buf)

	// No applicable visitor: the cache is not consulted.
	tr.Rewrite("select 1")
	assert.Equal(t, 0, tr.Cache().Len())

	sql := `select * from t where a && b`
	first := tr.Rewrite(sql)
	second := tr.Rewrite(sql)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, tr.Cache().Len())
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, tr.Cache().Stats())
}

func TestTransformer_WithoutCache(t *testing.T) {
	tr := NewTransformer(nil, nil, DefaultVisitors(true)...)
	res := tr.Rewrite(`select a <@ b`)
	assert.True(t, res.Transformed)
	assert.Equal(t, `SELECT array_has_all(b, a)`, res.SQL)
	assert.Nil(t, tr.Cache())
	assert.Equal(t, "ast", tr.Name())
}
