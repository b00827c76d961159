// Package astrewrite implements the tree-based rewrite pipeline: cheap
// textual pre-checks pick the relevant visitors, the statement is parsed
// with internal/sqlast, each visitor mutates the tree in place, and the
// tree is formatted back only when a visitor changed something. Results are
// memoized in a bounded LRU cache keyed by the original text.
package astrewrite

import (
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/textrewrite"
)

// Visitor is one rewrite pass over a parsed statement.
type Visitor interface {
	// Name identifies the visitor in logs.
	Name() string

	// Applies is a cheap textual pre-check. It may report true for a
	// statement the visitor ends up not changing, but never false for one
	// it would change.
	Applies(sql string) bool

	// Visit mutates stmt in place and reports whether anything changed.
	Visit(stmt sqlast.Stmt) bool
}

// DefaultVisitors returns the standard visitor chain. operators selects
// whether the array operator visitor is included.
func DefaultVisitors(operators bool) []Visitor {
	var out []Visitor
	if operators {
		out = append(out, NewArrayOperators(textrewrite.DuckDBOperators))
	}
	return append(out, JoinQualifier{}, SetOperationHoister{}, SeriesAlias{})
}

// containsFold reports whether sql contains any of the lower-case words,
// ignoring case.
func containsFold(sql string, words ...string) bool {
	lower := strings.ToLower(sql)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// fromClauses returns every FROM clause of stmt: those of all SELECT cores
// at any depth plus UPDATE ... FROM and DELETE ... USING.
func fromClauses(stmt sqlast.Stmt) []*sqlast.FromClause {
	var out []*sqlast.FromClause
	sqlast.WalkSelects(stmt, func(s *sqlast.SelectStmt) {
		for _, core := range sqlast.Cores(s.Body) {
			if core.From != nil {
				out = append(out, core.From)
			}
		}
	})
	switch s := stmt.(type) {
	case *sqlast.UpdateStmt:
		if s.From != nil {
			out = append(out, s.From)
		}
	case *sqlast.DeleteStmt:
		if s.Using != nil {
			out = append(out, s.Using)
		}
	}
	return out
}
