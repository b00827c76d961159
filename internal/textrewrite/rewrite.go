package textrewrite

import (
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
)

var _ domain.Rewriter = (*Rewriter)(nil)

// Rewriter runs the text pipeline: operator rewriting followed by join
// column qualification.
type Rewriter struct {
	// Operators is the operator table to apply; empty disables the pass.
	Operators OperatorTable
}

// NewRewriter returns a text Rewriter. operators selects whether the DuckDB
// operator table is applied.
func NewRewriter(operators bool) *Rewriter {
	r := &Rewriter{}
	if operators {
		r.Operators = DuckDBOperators
	}
	return r
}

// Name implements domain.Rewriter.
func (r *Rewriter) Name() string { return "text" }

// Rewrite implements domain.Rewriter. A panic in either pass yields the
// input unchanged.
func (r *Rewriter) Rewrite(sql string) (res domain.TransformResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = domain.Unchanged(sql)
		}
	}()

	out := sql
	if len(r.Operators) > 0 && r.Operators.MayApply(out) {
		out = RewriteOperators(out, r.Operators)
	}
	out = QualifyJoinColumns(out)
	return domain.Changed(sql, out)
}
