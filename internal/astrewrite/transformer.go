package astrewrite

import (
	"fmt"
	"log/slog"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
)

var _ domain.Rewriter = (*Transformer)(nil)

// Transformer runs the AST pipeline. It never fails: parse errors and
// panics inside visitors fall back to the input unchanged.
type Transformer struct {
	visitors []Visitor
	cache    *Cache
	logger   *slog.Logger
}

// NewTransformer creates a Transformer over visitors. cache may be nil to
// disable memoization; logger defaults to slog.Default().
func NewTransformer(cache *Cache, logger *slog.Logger, visitors ...Visitor) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{visitors: visitors, cache: cache, logger: logger}
}

// Name implements domain.Rewriter.
func (t *Transformer) Name() string { return "ast" }

// Cache returns the transformer's cache, or nil.
func (t *Transformer) Cache() *Cache { return t.cache }

// Applicable returns the visitors whose pre-check matches sql.
func (t *Transformer) Applicable(sql string) []Visitor {
	var out []Visitor
	for _, v := range t.visitors {
		if v.Applies(sql) {
			out = append(out, v)
		}
	}
	return out
}

// Rewrite implements domain.Rewriter. When no visitor applies, the input is
// returned without consulting the cache or the parser.
func (t *Transformer) Rewrite(sql string) domain.TransformResult {
	visitors := t.Applicable(sql)
	if len(visitors) == 0 {
		return domain.Unchanged(sql)
	}
	if t.cache == nil {
		return t.transform(sql, visitors)
	}
	return t.cache.GetOrCompute(sql, func() domain.TransformResult {
		return t.transform(sql, visitors)
	})
}

func (t *Transformer) transform(sql string, visitors []Visitor) (res domain.TransformResult) {
	current := "parse"
	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Debug("ast rewrite fallback", "error", fmt.Sprint(rec), "visitor", current)
			res = domain.Unchanged(sql)
		}
	}()

	stmt, err := sqlast.Parse(sql)
	if err != nil {
		t.logger.Debug("ast rewrite fallback", "error", err, "visitor", current)
		return domain.Unchanged(sql)
	}

	changed := false
	for _, v := range visitors {
		current = v.Name()
		if v.Visit(stmt) {
			t.logger.Debug("ast visitor changed statement", "visitor", current)
			changed = true
		}
	}
	if !changed {
		return domain.Unchanged(sql)
	}

	current = "format"
	return domain.Changed(sql, sqlast.Format(stmt))
}
