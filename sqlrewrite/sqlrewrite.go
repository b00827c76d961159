// Package sqlrewrite rewrites Postgres-flavoured statements produced by a
// query builder into SQL that DuckDB accepts.
//
// Two pipelines share one contract. The text pipeline scans a masked copy
// of the statement and splices in replacements, leaving every other byte
// alone. The AST pipeline parses the statement, runs visitor passes over
// the tree and formats it back. An Engine picks one of them, or runs the
// text pass first and the AST pass over its output (the default).
//
// Rewrites never fail. Input that cannot be handled comes back unchanged
// with Transformed set to false.
package sqlrewrite

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/astrewrite"
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/textrewrite"
)

// Result is the outcome of one rewrite. When Transformed is false, SQL is
// byte-identical to the input.
type Result = domain.TransformResult

// CacheStats are the AST pipeline's cache counters.
type CacheStats = astrewrite.Stats

// Strategy selects which pipeline an Engine runs.
type Strategy string

// StrategyText and friends are the available strategies.
const (
	StrategyText   Strategy = "text"
	StrategyAST    Strategy = "ast"
	StrategyHybrid Strategy = "hybrid"
)

// Strategies lists the valid strategies.
var Strategies = []Strategy{StrategyText, StrategyAST, StrategyHybrid}

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", domain.ErrValidation("unknown rewrite strategy %q (want text, ast or hybrid)", s)
}

// Options configures an Engine.
type Options struct {
	// OperatorRewrite enables the @>, <@ and && rewrite in both pipelines.
	OperatorRewrite bool
	// CacheSize bounds the AST result cache; 0 uses the default and a
	// negative size is rejected by New.
	CacheSize int
	// Strategy defaults to StrategyHybrid.
	Strategy Strategy
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		OperatorRewrite: true,
		CacheSize:       astrewrite.DefaultCacheSize,
		Strategy:        StrategyHybrid,
	}
}

// Engine rewrites statements. It is safe for concurrent use.
type Engine struct {
	strategy Strategy
	text     *textrewrite.Rewriter
	ast      *astrewrite.Transformer
	logger   *slog.Logger
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Strategy == "" {
		opts.Strategy = StrategyHybrid
	}
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	if opts.CacheSize < 0 {
		return nil, domain.ErrValidation("cache size must not be negative, got %d", opts.CacheSize)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := astrewrite.NewCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	return &Engine{
		strategy: strategy,
		text:     textrewrite.NewRewriter(opts.OperatorRewrite),
		ast:      astrewrite.NewTransformer(cache, logger, astrewrite.DefaultVisitors(opts.OperatorRewrite)...),
		logger:   logger,
	}, nil
}

// Strategy returns the engine's strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// Rewrite rewrites one statement with the engine's strategy.
func (e *Engine) Rewrite(sql string) Result {
	return e.rewriteWith(e.strategy, sql)
}

func (e *Engine) rewriteWith(strategy Strategy, sql string) Result {
	var res Result
	switch strategy {
	case StrategyText:
		res = e.text.Rewrite(sql)
	case StrategyAST:
		res = e.ast.Rewrite(sql)
	default:
		// The AST cache is keyed by the text pass's output, so inputs that
		// differ only in what the text pass rewrites share one entry.
		out := e.ast.Rewrite(e.text.Rewrite(sql).SQL).SQL
		res = domain.Changed(sql, out)
	}
	if res.Transformed {
		e.logger.Debug("statement rewritten", "strategy", string(strategy), "sql", res.SQL)
	}
	return res
}

// Explanation shows what each strategy makes of one statement.
type Explanation struct {
	Input    string            `json:"input" yaml:"input"`
	Visitors []string          `json:"visitors" yaml:"visitors"`
	Results  map[string]Result `json:"results" yaml:"results"`
}

// Explain runs every strategy over sql. Visitors lists the AST visitors
// whose pre-check matched the input.
func (e *Engine) Explain(sql string) Explanation {
	ex := Explanation{Input: sql, Results: make(map[string]Result, len(Strategies))}
	for _, v := range e.ast.Applicable(sql) {
		ex.Visitors = append(ex.Visitors, v.Name())
	}
	for _, st := range Strategies {
		ex.Results[string(st)] = e.rewriteWith(st, sql)
	}
	return ex
}

// ClearCache empties the AST result cache and resets its counters.
func (e *Engine) ClearCache() {
	e.ast.Cache().Clear()
}

// CacheStats returns the AST result cache counters.
func (e *Engine) CacheStats() CacheStats {
	return e.ast.Cache().Stats()
}

// RewriteOperators rewrites @>, <@ and && into DuckDB list functions with
// the text pipeline.
func RewriteOperators(sql string) string {
	if !textrewrite.DuckDBOperators.MayApply(sql) {
		return sql
	}
	return textrewrite.RewriteOperators(sql, textrewrite.DuckDBOperators)
}

// QualifyJoins qualifies same-named columns compared across a join with the
// text pipeline.
func QualifyJoins(sql string) string {
	return textrewrite.QualifyJoinColumns(sql)
}
