package sqlrewrite

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
)

func newEngine(t *testing.T, strategy Strategy, operators bool) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Strategy = strategy
	opts.OperatorRewrite = operators
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{input: "text", want: StrategyText},
		{input: "AST", want: StrategyAST},
		{input: "Hybrid", want: StrategyHybrid},
		{input: "", wantErr: true},
		{input: "regex", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseStrategy(tc.input)
			if tc.wantErr {
				var ve *domain.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Contains(t, ve.Message, "unknown rewrite strategy")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Strategy: "nope"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))

	_, err = New(Options{CacheSize: -1})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "cache size")

	e, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, StrategyHybrid, e.Strategy())
}

func TestEngine_Rewrite(t *testing.T) {
	tests := []struct {
		name        string
		strategy    Strategy
		operators   bool
		input       string
		expected    string
		transformed bool
	}{
		{
			name:        "text keeps original spelling",
			strategy:    StrategyText,
			operators:   true,
			input:       `select * from t where tags @> $1`,
			expected:    `select * from t where array_has_all(tags, $1)`,
			transformed: true,
		},
		{
			name:        "ast formats the tree",
			strategy:    StrategyAST,
			operators:   true,
			input:       `select * from t where tags @> $1`,
			expected:    `SELECT * FROM t WHERE array_has_all(tags, $1)`,
			transformed: true,
		},
		{
			name:        "hybrid combines both pipelines",
			strategy:    StrategyHybrid,
			operators:   true,
			input:       `select g from generate_series(1, 3) as g where tags @> $1`,
			expected:    `SELECT g FROM generate_series(1, 3) AS g(g) WHERE array_has_all(tags, $1)`,
			transformed: true,
		},
		{
			name:        "hybrid keeps text output when the tree adds nothing",
			strategy:    StrategyHybrid,
			operators:   true,
			input:       `select * from "a" join "b" on "id" = "id"`,
			expected:    `select * from "a" join "b" on "a"."id" = "b"."id"`,
			transformed: true,
		},
		{
			name:      "operators disabled",
			strategy:  StrategyHybrid,
			operators: false,
			input:     `select * from t where tags && $1`,
			expected:  `select * from t where tags && $1`,
		},
		{
			name:      "nothing to do",
			strategy:  StrategyAST,
			operators: true,
			input:     `select 1`,
			expected:  `select 1`,
		},
		{
			name:      "unparseable input is returned as is",
			strategy:  StrategyHybrid,
			operators: true,
			input:     `select a @> from t`,
			expected:  `select a @> from t`,
		},
		{
			name:      "keyword operands are not rewritten by the text pass",
			strategy:  StrategyText,
			operators: true,
			input:     `select * from t where a @> and b`,
			expected:  `select * from t where a @> and b`,
		},
		{
			name:        "distinct on list is qualified",
			strategy:    StrategyAST,
			operators:   true,
			input:       `select distinct on ("id") "id" from "a" join "b" on "id" = "id"`,
			expected:    `SELECT DISTINCT ON ("a"."id") "a"."id" FROM "a" JOIN "b" ON "a"."id" = "b"."id"`,
			transformed: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.strategy, tc.operators)
			res := e.Rewrite(tc.input)
			assert.Equal(t, tc.expected, res.SQL)
			assert.Equal(t, tc.transformed, res.Transformed)
		})
	}
}

func TestEngine_Idempotent(t *testing.T) {
	inputs := []string{
		`select * from "a" left join "b" on "id" = "id" where "tags" <@ $1`,
		`select g from generate_series(1, 5) g`,
		`(with a as (select 1 as x) select x from a) union all (with b as (select 2 as x) select x from b)`,
	}
	for _, st := range Strategies {
		e := newEngine(t, st, true)
		for _, sql := range inputs {
			t.Run(string(st)+"/"+sql, func(t *testing.T) {
				once := e.Rewrite(sql)
				twice := e.Rewrite(once.SQL)
				assert.Equal(t, once.SQL, twice.SQL)
				assert.False(t, twice.Transformed)
			})
		}
	}
}

func TestEngine_CacheStats(t *testing.T) {
	e := newEngine(t, StrategyAST, true)

	sql := `select * from t where a && b`
	e.Rewrite(sql)
	e.Rewrite(sql)
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1}, e.CacheStats())

	e.ClearCache()
	assert.Equal(t, CacheStats{}, e.CacheStats())
}

func TestEngine_Explain(t *testing.T) {
	e := newEngine(t, StrategyHybrid, true)

	ex := e.Explain(`select * from t where tags @> $1`)
	assert.Equal(t, []string{"array-operators"}, ex.Visitors)
	require.Len(t, ex.Results, 3)
	assert.Equal(t, `select * from t where array_has_all(tags, $1)`, ex.Results["text"].SQL)
	assert.Equal(t, `SELECT * FROM t WHERE array_has_all(tags, $1)`, ex.Results["ast"].SQL)
	assert.Equal(t, `select * from t where array_has_all(tags, $1)`, ex.Results["hybrid"].SQL)
}

func TestEngine_LogsRewrites(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e, err := New(opts)
	require.NoError(t, err)

	e.Rewrite(`select 1`)
	assert.NotContains(t, buf.String(), "statement rewritten")

	e.Rewrite(`select * from t where a && b`)
	assert.Contains(t, buf.String(), "statement rewritten")
	assert.Contains(t, buf.String(), "strategy=hybrid")
}

func TestEngine_Concurrent(t *testing.T) {
	e := newEngine(t, StrategyHybrid, true)
	inputs := []string{
		`select * from t where a @> b`,
		`select * from a join b on "k" = "k"`,
		`select g from generate_series(1, 2) as g`,
	}
	want := make([]string, len(inputs))
	for i, sql := range inputs {
		want[i] = e.Rewrite(sql).SQL
	}
	e.ClearCache()

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := i % len(inputs)
			if got := e.Rewrite(inputs[k]).SQL; got != want[k] {
				errs <- got
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("unexpected concurrent result %q", got)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	assert.Equal(t, `select array_has_any(a, b)`, RewriteOperators(`select a && b`))
	assert.Equal(t, `select 1`, RewriteOperators(`select 1`))
	assert.Equal(t,
		`select * from "a" join "b" on "a"."id" = "b"."id"`,
		QualifyJoins(`select * from "a" join "b" on "id" = "id"`))
}
