package astrewrite

import (
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
)

// JoinQualifier qualifies same-named unqualified columns compared in a
// join's ON clause with the join's left and right sources, then qualifies
// further bare references to those names in the projection, WHERE and
// ORDER BY with the first source. UPDATE ... FROM and DELETE ... USING
// equalities are qualified with the target and the first FROM/USING source.
type JoinQualifier struct{}

func (JoinQualifier) Name() string { return "join-qualifier" }

func (JoinQualifier) Applies(sql string) bool {
	return containsFold(sql, "join", "update", "delete")
}

func (JoinQualifier) Visit(stmt sqlast.Stmt) bool {
	changed := false
	sqlast.WalkSelects(stmt, func(s *sqlast.SelectStmt) {
		if qualifySelect(s) {
			changed = true
		}
	})

	switch s := stmt.(type) {
	case *sqlast.UpdateStmt:
		if qualifyDML(s.Table, s.From, s.Where) {
			changed = true
		}
	case *sqlast.DeleteStmt:
		if qualifyDML(s.Table, s.Using, s.Where) {
			changed = true
		}
	}
	return changed
}

// columnKey folds bare names the way the database does; quoted names are
// compared exactly.
func columnKey(id sqlast.Ident) string {
	if id.Quoted {
		return id.Name
	}
	return strings.ToLower(id.Name)
}

func bareColumn(e sqlast.Expr) (*sqlast.ColumnRef, bool) {
	col, ok := e.(*sqlast.ColumnRef)
	if !ok || !col.Table.IsZero() || !col.Schema.IsZero() {
		return nil, false
	}
	return col, true
}

func qualifySelect(s *sqlast.SelectStmt) bool {
	cores := sqlast.Cores(s.Body)
	changed := false
	for _, core := range cores {
		if core.Nested != nil || core.From == nil {
			continue
		}
		sources, ambiguous := qualifyJoins(core.From)
		if len(ambiguous) == 0 {
			continue
		}
		changed = true

		first := sources[0]
		for _, e := range core.DistinctOn {
			qualifyBare(e, first, ambiguous)
		}
		for i := range core.Columns {
			qualifyBare(core.Columns[i].Expr, first, ambiguous)
		}
		qualifyBare(core.Where, first, ambiguous)
		// ORDER BY of a set operation applies to the combined result.
		if len(cores) == 1 {
			for i := range s.OrderBy {
				qualifyBare(s.OrderBy[i].Expr, first, ambiguous)
			}
		}
	}
	return changed
}

// qualifyJoins qualifies the ON equalities of every join in from. It
// returns the qualifier of each source in order and the set of names found
// ambiguous.
func qualifyJoins(from *sqlast.FromClause) ([]sqlast.Ident, map[string]bool) {
	sources := []sqlast.Ident{sqlast.Qualifier(from.Source)}
	for _, j := range from.Joins {
		sources = append(sources, sqlast.Qualifier(j.Right))
	}

	ambiguous := make(map[string]bool)
	for i, j := range from.Joins {
		if j.Condition == nil {
			continue
		}
		qualifyPairs(j.Condition, sources[i], sources[i+1], ambiguous)
	}
	return sources, ambiguous
}

// qualifyPairs qualifies both sides of every "col = col" equality in e
// whose sides are bare references to the same name. Subqueries are not
// entered.
func qualifyPairs(e sqlast.Expr, left, right sqlast.Ident, ambiguous map[string]bool) {
	if e == nil || left.IsZero() || right.IsZero() {
		return
	}
	sqlast.RewriteExpr(e, func(e sqlast.Expr) sqlast.Expr {
		bin, ok := e.(*sqlast.BinaryExpr)
		if !ok || bin.Op != sqlast.TOKEN_EQ {
			return e
		}
		l, lok := bareColumn(bin.Left)
		r, rok := bareColumn(bin.Right)
		if !lok || !rok || columnKey(l.Column) != columnKey(r.Column) {
			return e
		}
		l.Table = left
		r.Table = right
		ambiguous[columnKey(l.Column)] = true
		return e
	})
}

// qualifyBare qualifies bare references to ambiguous names in e.
func qualifyBare(e sqlast.Expr, qualifier sqlast.Ident, ambiguous map[string]bool) {
	if e == nil || qualifier.IsZero() {
		return
	}
	sqlast.RewriteExpr(e, func(e sqlast.Expr) sqlast.Expr {
		if col, ok := bareColumn(e); ok && ambiguous[columnKey(col.Column)] {
			col.Table = qualifier
		}
		return e
	})
}

func qualifyDML(target *sqlast.TableName, from *sqlast.FromClause, where sqlast.Expr) bool {
	if target == nil || from == nil {
		return false
	}
	sources, ambiguous := qualifyJoins(from)
	qualifyPairs(where, sqlast.Qualifier(target), sources[0], ambiguous)
	return len(ambiguous) > 0
}
