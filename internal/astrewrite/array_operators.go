package astrewrite

import (
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlast"
	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/textrewrite"
)

// ArrayOperators turns containment and overlap operators into list
// function calls, using the same operator table as the text pipeline.
type ArrayOperators struct {
	table textrewrite.OperatorTable
	ops   map[sqlast.TokenType]textrewrite.Operator
}

// NewArrayOperators builds the visitor for table. Entries whose token the
// lexer does not know as a single operator are ignored.
func NewArrayOperators(table textrewrite.OperatorTable) *ArrayOperators {
	a := &ArrayOperators{table: table, ops: make(map[sqlast.TokenType]textrewrite.Operator)}
	for _, op := range table {
		l := sqlast.NewLexer(op.Token)
		tok := l.NextToken()
		if tok.Type == sqlast.TOKEN_ILLEGAL || l.NextToken().Type != sqlast.TOKEN_EOF {
			continue
		}
		a.ops[tok.Type] = op
	}
	return a
}

func (a *ArrayOperators) Name() string { return "array-operators" }

func (a *ArrayOperators) Applies(sql string) bool { return a.table.MayApply(sql) }

func (a *ArrayOperators) Visit(stmt sqlast.Stmt) bool {
	changed := false
	sqlast.RewriteExprs(stmt, func(e sqlast.Expr) sqlast.Expr {
		bin, ok := e.(*sqlast.BinaryExpr)
		if !ok {
			return e
		}
		op, ok := a.ops[bin.Op]
		if !ok {
			return e
		}
		changed = true
		args := []sqlast.Expr{bin.Left, bin.Right}
		if op.Swap {
			args[0], args[1] = args[1], args[0]
		}
		return &sqlast.FuncCall{Name: sqlast.Ident{Name: op.Func}, Args: args}
	})
	return changed
}
