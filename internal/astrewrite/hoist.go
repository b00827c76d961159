package astrewrite

import (
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
)

// SetOperationHoister moves the WITH clause of a parenthesized
// set-operation arm up to the statement owning the set operation. DuckDB
// rejects WITH inside set-operation operands in several positions. CTEs
// with the same name and definition are merged; any other name clash
// leaves the statement untouched.
type SetOperationHoister struct{}

func (SetOperationHoister) Name() string { return "set-operation-hoister" }

func (SetOperationHoister) Applies(sql string) bool {
	return containsFold(sql, "with") && containsFold(sql, "union", "intersect", "except")
}

func (SetOperationHoister) Visit(stmt sqlast.Stmt) bool {
	var selects []*sqlast.SelectStmt
	sqlast.WalkSelects(stmt, func(s *sqlast.SelectStmt) {
		selects = append(selects, s)
	})

	// Innermost first, so CTEs of deeper arms bubble all the way up.
	changed := false
	for i := len(selects) - 1; i >= 0; i-- {
		if hoistArms(selects[i]) {
			changed = true
		}
	}
	return changed
}

func hoistArms(s *sqlast.SelectStmt) bool {
	if s.Body == nil || s.Body.Op == sqlast.SetOpNone {
		return false
	}

	var arms []*sqlast.SelectStmt
	for _, core := range sqlast.Cores(s.Body) {
		if core.Nested != nil && core.Nested.With != nil && len(core.Nested.With.CTEs) > 0 {
			arms = append(arms, core.Nested)
		}
	}
	if len(arms) == 0 {
		return false
	}

	// Plan first: nothing is mutated unless every CTE can be placed.
	known := make(map[string]string)
	if s.With != nil {
		for _, cte := range s.With.CTEs {
			known[columnKey(cte.Name)] = formatCTE(cte)
		}
	}
	var hoisted []*sqlast.CTE
	recursive := false
	for _, arm := range arms {
		recursive = recursive || arm.With.Recursive
		for _, cte := range arm.With.CTEs {
			key, text := columnKey(cte.Name), formatCTE(cte)
			if prev, ok := known[key]; ok {
				if prev != text {
					return false
				}
				continue
			}
			known[key] = text
			hoisted = append(hoisted, cte)
		}
	}

	if s.With == nil {
		s.With = &sqlast.WithClause{}
	}
	s.With.Recursive = s.With.Recursive || recursive
	s.With.CTEs = append(s.With.CTEs, hoisted...)
	for _, arm := range arms {
		arm.With = nil
	}
	return true
}

func formatCTE(cte *sqlast.CTE) string {
	return sqlast.Format(&sqlast.SelectStmt{
		With: &sqlast.WithClause{CTEs: []*sqlast.CTE{cte}},
		Body: &sqlast.SelectBody{Left: &sqlast.SelectCore{
			Columns: []sqlast.SelectItem{{Expr: &sqlast.Literal{Type: sqlast.LiteralNumber, Value: "1"}}},
		}},
	})
}
