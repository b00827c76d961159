package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suffixColumns(e Expr) Expr {
	if col, ok := e.(*ColumnRef); ok {
		col.Column = Quoted(col.Column.Name + "_x")
	}
	return e
}

func TestRewriteExprs_ReachesNestedQueries(t *testing.T) {
	stmt, err := Parse(`WITH c AS (SELECT a FROM t) SELECT b FROM (SELECT d FROM u) AS s WHERE e IN (SELECT f FROM v)`)
	require.NoError(t, err)

	RewriteExprs(stmt, suffixColumns)
	assert.Equal(t,
		`WITH c AS (SELECT "a_x" FROM t) SELECT "b_x" FROM (SELECT "d_x" FROM u) AS s WHERE "e_x" IN (SELECT "f_x" FROM v)`,
		Format(stmt))
}

func TestRewriteExprs_DML(t *testing.T) {
	stmt, err := Parse(`UPDATE t SET a = b FROM u WHERE c = 1 RETURNING d`)
	require.NoError(t, err)

	RewriteExprs(stmt, suffixColumns)
	assert.Equal(t, `UPDATE t SET a = "b_x" FROM u WHERE "c_x" = 1 RETURNING "d_x"`, Format(stmt))
}

func TestRewriteExpr_StopsAtSubqueries(t *testing.T) {
	expr, err := ParseExpr(`a = 1 AND EXISTS (SELECT b FROM t)`)
	require.NoError(t, err)

	out := RewriteExpr(expr, suffixColumns)
	assert.Equal(t, `"a_x" = 1 AND EXISTS (SELECT b FROM t)`, FormatExpr(out))
}

func TestRewriteExpr_ReplacesNodes(t *testing.T) {
	expr, err := ParseExpr(`x @> y OR z`)
	require.NoError(t, err)

	out := RewriteExpr(expr, func(e Expr) Expr {
		if bin, ok := e.(*BinaryExpr); ok && bin.Op == TOKEN_CONTAINS {
			return &FuncCall{Name: Ident{Name: "array_has_all"}, Args: []Expr{bin.Left, bin.Right}}
		}
		return e
	})
	assert.Equal(t, `array_has_all(x, y) OR z`, FormatExpr(out))
}

func TestWalkSelects(t *testing.T) {
	stmt, err := Parse(`WITH c AS (SELECT 1) SELECT * FROM (SELECT 2) AS d WHERE x IN (SELECT 3) AND EXISTS (SELECT 4 UNION SELECT 5)`)
	require.NoError(t, err)

	var count int
	WalkSelects(stmt, func(*SelectStmt) { count++ })
	assert.Equal(t, 5, count)
}

func TestWalkSelects_Insert(t *testing.T) {
	stmt, err := Parse(`INSERT INTO t SELECT a FROM (SELECT a FROM u) AS s`)
	require.NoError(t, err)

	var count int
	WalkSelects(stmt, func(*SelectStmt) { count++ })
	assert.Equal(t, 2, count)
}

func TestCores(t *testing.T) {
	stmt, err := Parse(`SELECT 1 UNION SELECT 2 INTERSECT SELECT 3`)
	require.NoError(t, err)
	assert.Len(t, Cores(stmt.(*SelectStmt).Body), 3)
	assert.Empty(t, Cores(nil))
}
