// Package textrewrite implements the string-scanning rewrite pipeline:
// containment/overlap operators become DuckDB list functions, and
// same-named columns compared across a join are qualified with their
// source. All scanning happens on the masked copy of the statement, so
// nothing inside a literal, quoted identifier or comment is ever touched.
package textrewrite

import (
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlscan"
)

// Operator maps an infix operator to a two-argument function.
type Operator struct {
	Token string
	Func  string
	// Swap emits func(right, left) instead of func(left, right).
	Swap bool
}

// OperatorTable is the set of operators a target dialect needs rewritten.
type OperatorTable []Operator

// DuckDBOperators rewrites the Postgres array containment and overlap
// operators into DuckDB list functions.
var DuckDBOperators = OperatorTable{
	{Token: "@>", Func: "array_has_all"},
	{Token: "<@", Func: "array_has_all", Swap: true},
	{Token: "&&", Func: "array_has_any"},
}

// Tokens returns the operator tokens in table order.
func (t OperatorTable) Tokens() []string {
	out := make([]string, len(t))
	for i, op := range t {
		out[i] = op.Token
	}
	return out
}

// MayApply is a cheap substring pre-check. It can report true for tokens
// that only appear inside literals; it never reports false when a rewrite
// is possible.
func (t OperatorTable) MayApply(sql string) bool {
	for _, op := range t {
		if strings.Contains(sql, op.Token) {
			return true
		}
	}
	return false
}

func isOperatorChar(c byte) bool {
	return strings.IndexByte("<>@&=!~#|^*+-/%?", c) >= 0
}

// next finds the earliest operator occurrence at or after from in masked,
// skipping tokens that are part of a longer operator run.
func (t OperatorTable) next(masked string, from int) (Operator, int) {
	best, bestAt := Operator{}, -1
	for _, op := range t {
		at := from
		for {
			i := strings.Index(masked[at:], op.Token)
			if i < 0 {
				break
			}
			i += at
			end := i + len(op.Token)
			standalone := (i == 0 || !isOperatorChar(masked[i-1])) &&
				(end >= len(masked) || !isOperatorChar(masked[end]))
			if standalone {
				if bestAt < 0 || i < bestAt {
					best, bestAt = op, i
				}
				break
			}
			at = i + 1
		}
	}
	return best, bestAt
}

// RewriteOperators replaces every "left OP right" in sql with the table's
// function form. Operands are found with the boundary walker on the masked
// copy and copied verbatim from the original. Occurrences with a missing
// operand, or one that runs into a reserved keyword, are left alone. Running it on its own output is a no-op.
func RewriteOperators(sql string, table OperatorTable) string {
	if len(table) == 0 || !table.MayApply(sql) {
		return sql
	}

	pos := 0
	for {
		masked := sqlscan.Mask(sql)
		op, at := table.next(masked, pos)
		if at < 0 {
			return sql
		}

		left := sqlscan.WalkLeft(sql, masked, at)
		right := sqlscan.WalkRight(sql, masked, at+len(op.Token))
		if left.Empty() || right.Empty() ||
			left.TouchesKeyword(masked) || right.TouchesKeyword(masked) {
			pos = at + len(op.Token)
			continue
		}

		a, b := left.Text, right.Text
		if op.Swap {
			a, b = b, a
		}
		call := op.Func + "(" + a + ", " + b + ")"
		sql = sql[:left.Start] + call + sql[right.End:]
		// Operands are copied into the call, so nested occurrences are
		// found again from the call's start.
		pos = left.Start
	}
}
