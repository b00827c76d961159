package astrewrite

import (
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
)

// SeriesAlias gives "generate_series(...) AS g" a column alias list "g(g)"
// so that Postgres-style references to the alias as a column resolve in
// DuckDB, where the series column is otherwise named generate_series.
type SeriesAlias struct{}

func (SeriesAlias) Name() string { return "series-alias" }

func (SeriesAlias) Applies(sql string) bool { return containsFold(sql, "generate_series") }

func (SeriesAlias) Visit(stmt sqlast.Stmt) bool {
	changed := false
	for _, from := range fromClauses(stmt) {
		refs := []sqlast.TableRef{from.Source}
		for _, j := range from.Joins {
			refs = append(refs, j.Right)
		}
		for _, ref := range refs {
			ft, ok := ref.(*sqlast.FuncTable)
			if !ok || !isSeries(ft.Func) || ft.Alias.IsZero() || len(ft.ColumnAliases) > 0 {
				continue
			}
			ft.ColumnAliases = []sqlast.Ident{ft.Alias}
			changed = true
		}
	}
	return changed
}

func isSeries(fn *sqlast.FuncCall) bool {
	if fn == nil || !fn.Schema.IsZero() {
		return false
	}
	if fn.Name.Quoted {
		return fn.Name.Name == "generate_series"
	}
	return strings.EqualFold(fn.Name.Name, "generate_series")
}
