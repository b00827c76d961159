package sqlast

import (
	"strings"
)

// Format formats a statement AST back to a SQL string. The output is flat
// (no pretty-printing), keywords are upper case, and identifiers keep the
// quoting they were parsed with.
func Format(stmt Stmt) string {
	f := &formatter{}
	f.formatStmt(stmt)
	return strings.TrimSpace(f.buf.String())
}

// FormatExpr formats an expression AST back to a SQL string.
func FormatExpr(expr Expr) string {
	f := &formatter{}
	f.formatExpr(expr)
	return strings.TrimSpace(f.buf.String())
}

type formatter struct {
	buf strings.Builder
}

func (f *formatter) write(s string) {
	f.buf.WriteString(s)
}

// quoteIdent unconditionally double-quotes an identifier.
// Internal double quotes are escaped by doubling.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (f *formatter) ident(id Ident) {
	f.write(id.String())
}

// qualified writes the non-empty parts joined by dots.
func (f *formatter) qualified(parts ...Ident) {
	first := true
	for _, id := range parts {
		if id.IsZero() {
			continue
		}
		if !first {
			f.write(".")
		}
		f.ident(id)
		first = false
	}
}

func (f *formatter) identList(ids []Ident) {
	f.write("(")
	f.commaSep(len(ids), func(i int) { f.ident(ids[i]) })
	f.write(")")
}

// commaSep writes items separated by ", ".
func (f *formatter) commaSep(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		if i > 0 {
			f.write(", ")
		}
		fn(i)
	}
}

func (f *formatter) exprList(exprs []Expr) {
	f.commaSep(len(exprs), func(i int) { f.formatExpr(exprs[i]) })
}

// === Statements ===

func (f *formatter) formatStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *SelectStmt:
		f.formatSelect(s)
	case *InsertStmt:
		f.formatInsert(s)
	case *UpdateStmt:
		f.formatUpdate(s)
	case *DeleteStmt:
		f.formatDelete(s)
	case *RawStmt:
		f.write(s.SQL)
	}
}

func (f *formatter) formatWith(w *WithClause) {
	if w == nil || len(w.CTEs) == 0 {
		return
	}
	f.write("WITH ")
	if w.Recursive {
		f.write("RECURSIVE ")
	}
	f.commaSep(len(w.CTEs), func(i int) {
		cte := w.CTEs[i]
		f.ident(cte.Name)
		if len(cte.Columns) > 0 {
			f.identList(cte.Columns)
		}
		f.write(" AS ")
		if cte.Materialized != "" {
			f.write(cte.Materialized + " ")
		}
		f.write("(")
		f.formatSelect(cte.Select)
		f.write(")")
	})
	f.write(" ")
}

func (f *formatter) formatSelect(s *SelectStmt) {
	if s == nil {
		return
	}
	f.formatWith(s.With)
	f.formatBody(s.Body)
	if len(s.OrderBy) > 0 {
		f.write(" ORDER BY ")
		f.orderBy(s.OrderBy)
	}
	if s.Limit != nil {
		f.write(" LIMIT ")
		f.formatExpr(s.Limit)
	}
	if s.Offset != nil {
		f.write(" OFFSET ")
		f.formatExpr(s.Offset)
	}
}

func (f *formatter) formatBody(b *SelectBody) {
	for b != nil {
		f.formatCore(b.Left)
		if b.Op == SetOpNone {
			return
		}
		f.write(" " + string(b.Op) + " ")
		if b.All {
			f.write("ALL ")
		}
		b = b.Right
	}
}

func (f *formatter) formatCore(c *SelectCore) {
	if c == nil {
		return
	}
	if c.Nested != nil {
		f.write("(")
		f.formatSelect(c.Nested)
		f.write(")")
		return
	}

	f.write("SELECT ")
	if c.Distinct {
		f.write("DISTINCT ")
		if len(c.DistinctOn) > 0 {
			f.write("ON (")
			f.exprList(c.DistinctOn)
			f.write(") ")
		}
	}
	f.selectItems(c.Columns)
	if c.From != nil {
		f.write(" FROM ")
		f.formatFrom(c.From)
	}
	if c.Where != nil {
		f.write(" WHERE ")
		f.formatExpr(c.Where)
	}
	if len(c.GroupBy) > 0 {
		f.write(" GROUP BY ")
		f.exprList(c.GroupBy)
	}
	if c.Having != nil {
		f.write(" HAVING ")
		f.formatExpr(c.Having)
	}
	if len(c.Windows) > 0 {
		f.write(" WINDOW ")
		f.commaSep(len(c.Windows), func(i int) {
			f.ident(c.Windows[i].Name)
			f.write(" AS ")
			f.formatWindowSpec(c.Windows[i].Spec)
		})
	}
	if c.Qualify != nil {
		f.write(" QUALIFY ")
		f.formatExpr(c.Qualify)
	}
}

func (f *formatter) selectItems(items []SelectItem) {
	f.commaSep(len(items), func(i int) {
		f.formatExpr(items[i].Expr)
		if !items[i].Alias.IsZero() {
			f.write(" AS ")
			f.ident(items[i].Alias)
		}
	})
}

func (f *formatter) orderBy(items []OrderByItem) {
	f.commaSep(len(items), func(i int) {
		f.formatExpr(items[i].Expr)
		if items[i].Desc {
			f.write(" DESC")
		}
		if items[i].Nulls != "" {
			f.write(" NULLS " + items[i].Nulls)
		}
	})
}

func (f *formatter) formatFrom(from *FromClause) {
	f.formatTableRef(from.Source)
	for _, j := range from.Joins {
		if j.Type == JoinComma {
			f.write(", ")
			f.formatTableRef(j.Right)
			continue
		}
		f.write(" ")
		if j.Natural {
			f.write("NATURAL ")
		}
		if j.Type != JoinPlain {
			f.write(string(j.Type) + " ")
		}
		f.write("JOIN ")
		f.formatTableRef(j.Right)
		switch {
		case j.Condition != nil:
			f.write(" ON ")
			f.formatExpr(j.Condition)
		case len(j.Using) > 0:
			f.write(" USING ")
			f.identList(j.Using)
		}
	}
}

func (f *formatter) formatTableRef(ref TableRef) {
	switch t := ref.(type) {
	case *TableName:
		f.qualified(t.Catalog, t.Schema, t.Name)
		f.alias(t.Alias, nil)
	case *DerivedTable:
		if t.Lateral {
			f.write("LATERAL ")
		}
		f.write("(")
		f.formatSelect(t.Select)
		f.write(")")
		f.alias(t.Alias, t.ColumnAliases)
	case *FuncTable:
		if t.Lateral {
			f.write("LATERAL ")
		}
		f.formatFuncCall(t.Func)
		f.alias(t.Alias, t.ColumnAliases)
	}
}

func (f *formatter) alias(alias Ident, columns []Ident) {
	if alias.IsZero() {
		return
	}
	f.write(" AS ")
	f.ident(alias)
	if len(columns) > 0 {
		f.identList(columns)
	}
}

func (f *formatter) returning(items []SelectItem) {
	if len(items) == 0 {
		return
	}
	f.write(" RETURNING ")
	f.selectItems(items)
}

func (f *formatter) setClauses(set []SetClause) {
	f.commaSep(len(set), func(i int) {
		f.ident(set[i].Column)
		f.write(" = ")
		f.formatExpr(set[i].Value)
	})
}

func (f *formatter) target(t *TableName) {
	f.qualified(t.Catalog, t.Schema, t.Name)
	f.alias(t.Alias, nil)
}

func (f *formatter) formatInsert(s *InsertStmt) {
	f.formatWith(s.With)
	f.write("INSERT INTO ")
	f.target(s.Table)
	if len(s.Columns) > 0 {
		f.write(" ")
		f.identList(s.Columns)
	}
	switch {
	case s.DefaultValues:
		f.write(" DEFAULT VALUES")
	case s.Query != nil:
		f.write(" ")
		f.formatSelect(s.Query)
	default:
		f.write(" VALUES ")
		f.commaSep(len(s.Values), func(i int) {
			f.write("(")
			f.exprList(s.Values[i])
			f.write(")")
		})
	}
	if oc := s.OnConflict; oc != nil {
		f.write(" ON CONFLICT")
		switch {
		case len(oc.Columns) > 0:
			f.write(" ")
			f.identList(oc.Columns)
			if oc.TargetWhere != nil {
				f.write(" WHERE ")
				f.formatExpr(oc.TargetWhere)
			}
		case !oc.Constraint.IsZero():
			f.write(" ON CONSTRAINT ")
			f.ident(oc.Constraint)
		}
		if oc.DoNothing {
			f.write(" DO NOTHING")
		} else {
			f.write(" DO UPDATE SET ")
			f.setClauses(oc.Set)
			if oc.Where != nil {
				f.write(" WHERE ")
				f.formatExpr(oc.Where)
			}
		}
	}
	f.returning(s.Returning)
}

func (f *formatter) formatUpdate(s *UpdateStmt) {
	f.formatWith(s.With)
	f.write("UPDATE ")
	f.target(s.Table)
	f.write(" SET ")
	f.setClauses(s.Set)
	if s.From != nil {
		f.write(" FROM ")
		f.formatFrom(s.From)
	}
	if s.Where != nil {
		f.write(" WHERE ")
		f.formatExpr(s.Where)
	}
	f.returning(s.Returning)
}

func (f *formatter) formatDelete(s *DeleteStmt) {
	f.formatWith(s.With)
	f.write("DELETE FROM ")
	f.target(s.Table)
	if s.Using != nil {
		f.write(" USING ")
		f.formatFrom(s.Using)
	}
	if s.Where != nil {
		f.write(" WHERE ")
		f.formatExpr(s.Where)
	}
	f.returning(s.Returning)
}
