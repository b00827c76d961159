package sqlast

import "strings"

// formatExpr dispatches expression formatting by type.
func (f *formatter) formatExpr(e Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *Literal:
		f.formatLiteral(expr)
	case *ColumnRef:
		f.qualified(expr.Schema, expr.Table, expr.Column)
	case *ParamExpr:
		f.write(expr.Name)
	case *DefaultExpr:
		f.write("DEFAULT")
	case *BinaryExpr:
		f.formatBinaryExpr(expr)
	case *UnaryExpr:
		f.formatUnaryExpr(expr)
	case *ParenExpr:
		f.write("(")
		f.formatExpr(expr.Expr)
		f.write(")")
	case *RowExpr:
		f.write("(")
		f.exprList(expr.Exprs)
		f.write(")")
	case *FuncCall:
		f.formatFuncCall(expr)
	case *CaseExpr:
		f.formatCaseExpr(expr)
	case *CastExpr:
		f.write("CAST(")
		f.formatExpr(expr.Expr)
		f.write(" AS " + expr.TypeName + ")")
	case *TypeCastExpr:
		f.operand(expr.Expr, PrecedencePostfix)
		f.write("::" + expr.TypeName)
	case *InExpr:
		f.formatInExpr(expr)
	case *BetweenExpr:
		f.operand(expr.Expr, PrecedenceComparison)
		f.write(not(expr.Not) + " BETWEEN ")
		f.operand(expr.Low, PrecedenceComparison)
		f.write(" AND ")
		f.operand(expr.High, PrecedenceComparison)
	case *IsExpr:
		f.operand(expr.Expr, PrecedenceComparison)
		f.write(" IS")
		f.write(not(expr.Not))
		f.write(" " + string(expr.Kind))
		if expr.Kind == IsDistinctFrom {
			f.write(" ")
			f.operand(expr.Right, PrecedenceComparison)
		}
	case *LikeExpr:
		f.operand(expr.Expr, PrecedenceComparison)
		f.write(not(expr.Not))
		if expr.ILike {
			f.write(" ILIKE ")
		} else {
			f.write(" LIKE ")
		}
		f.operand(expr.Pattern, PrecedenceComparison)
	case *ExistsExpr:
		f.write("EXISTS (")
		f.formatSelect(expr.Select)
		f.write(")")
	case *SubqueryExpr:
		f.write("(")
		f.formatSelect(expr.Select)
		f.write(")")
	case *StarExpr:
		if !expr.Table.IsZero() {
			f.ident(expr.Table)
			f.write(".")
		}
		f.write("*")
	case *IntervalExpr:
		f.write("INTERVAL '" + strings.ReplaceAll(expr.Value, "'", "''") + "'")
		if expr.Unit != "" {
			f.write(" " + expr.Unit)
		}
	case *ExtractExpr:
		f.write("EXTRACT(" + expr.Field + " FROM ")
		f.formatExpr(expr.Expr)
		f.write(")")
	case *ArrayExpr:
		if expr.Query != nil {
			f.write("ARRAY(")
			f.formatSelect(expr.Query)
			f.write(")")
		} else {
			f.write("ARRAY[")
			f.exprList(expr.Elements)
			f.write("]")
		}
	case *ListLiteral:
		f.write("[")
		f.exprList(expr.Elements)
		f.write("]")
	case *IndexExpr:
		f.operand(expr.Expr, PrecedencePostfix)
		f.write("[")
		f.formatExpr(expr.Index)
		f.write("]")
	}
}

func not(b bool) string {
	if b {
		return " NOT"
	}
	return ""
}

func (f *formatter) formatLiteral(lit *Literal) {
	switch lit.Type {
	case LiteralString:
		f.write("'" + strings.ReplaceAll(lit.Value, "'", "''") + "'")
	case LiteralBool:
		f.write(strings.ToUpper(lit.Value))
	case LiteralNull:
		f.write("NULL")
	default:
		f.write(lit.Value)
	}
}

// exprPrecedence is the binding strength of e when it appears as an
// operand. Parsed trees keep explicit ParenExpr nodes; this only matters
// for trees a rewrite has built.
func exprPrecedence(e Expr) int {
	switch x := e.(type) {
	case *BinaryExpr:
		return binaryPrecedence(x.Op)
	case *UnaryExpr:
		if x.Op == TOKEN_NOT {
			return PrecedenceNot
		}
		return PrecedenceUnary
	case *IsExpr, *LikeExpr, *InExpr, *BetweenExpr:
		return PrecedenceComparison
	}
	return PrecedencePostfix + 1
}

// operand writes e, parenthesized when it binds looser than min.
func (f *formatter) operand(e Expr, min int) {
	if exprPrecedence(e) < min {
		f.write("(")
		f.formatExpr(e)
		f.write(")")
		return
	}
	f.formatExpr(e)
}

func (f *formatter) formatBinaryExpr(expr *BinaryExpr) {
	prec := binaryPrecedence(expr.Op)
	f.operand(expr.Left, prec)
	f.write(" " + expr.Op.String() + " ")
	// Operators are left-associative: an equal-precedence right operand
	// needs parentheses.
	f.operand(expr.Right, prec+1)
}

func (f *formatter) formatUnaryExpr(expr *UnaryExpr) {
	switch expr.Op {
	case TOKEN_NOT:
		f.write("NOT ")
		f.operand(expr.Expr, PrecedenceNot)
	default:
		f.write(expr.Op.String())
		// "- -1" must not collapse into a line comment.
		if _, nested := expr.Expr.(*UnaryExpr); nested {
			f.write("(")
			f.formatExpr(expr.Expr)
			f.write(")")
			return
		}
		f.operand(expr.Expr, PrecedenceUnary)
	}
}

func (f *formatter) formatFuncCall(fn *FuncCall) {
	f.qualified(fn.Schema, fn.Name)
	f.write("(")
	if fn.Distinct {
		f.write("DISTINCT ")
	}
	if fn.Star {
		f.write("*")
	} else {
		f.exprList(fn.Args)
	}
	if len(fn.OrderBy) > 0 {
		f.write(" ORDER BY ")
		f.orderBy(fn.OrderBy)
	}
	f.write(")")

	if fn.Filter != nil {
		f.write(" FILTER (WHERE ")
		f.formatExpr(fn.Filter)
		f.write(")")
	}
	if fn.Window != nil {
		f.write(" OVER ")
		f.formatWindowSpec(fn.Window)
	}
}

func (f *formatter) formatWindowSpec(w *WindowSpec) {
	if w == nil {
		return
	}
	// Named window reference without details: emit without parens
	if !w.Name.IsZero() && len(w.PartitionBy) == 0 && len(w.OrderBy) == 0 && w.Frame == nil {
		f.ident(w.Name)
		return
	}

	var parts []string
	if !w.Name.IsZero() {
		parts = append(parts, w.Name.String())
	}
	if len(w.PartitionBy) > 0 {
		sub := &formatter{}
		sub.exprList(w.PartitionBy)
		parts = append(parts, "PARTITION BY "+sub.buf.String())
	}
	if len(w.OrderBy) > 0 {
		sub := &formatter{}
		sub.orderBy(w.OrderBy)
		parts = append(parts, "ORDER BY "+sub.buf.String())
	}
	if w.Frame != nil {
		sub := &formatter{}
		sub.write(w.Frame.Type + " ")
		if w.Frame.End != nil {
			sub.write("BETWEEN ")
			sub.frameBound(w.Frame.Start)
			sub.write(" AND ")
			sub.frameBound(w.Frame.End)
		} else {
			sub.frameBound(w.Frame.Start)
		}
		parts = append(parts, sub.buf.String())
	}
	f.write("(" + strings.Join(parts, " ") + ")")
}

func (f *formatter) frameBound(b *FrameBound) {
	if b == nil {
		return
	}
	if b.Offset != nil {
		f.formatExpr(b.Offset)
		f.write(" ")
	}
	f.write(string(b.Type))
}

func (f *formatter) formatCaseExpr(c *CaseExpr) {
	f.write("CASE")
	if c.Operand != nil {
		f.write(" ")
		f.formatExpr(c.Operand)
	}
	for _, w := range c.Whens {
		f.write(" WHEN ")
		f.formatExpr(w.Condition)
		f.write(" THEN ")
		f.formatExpr(w.Result)
	}
	if c.Else != nil {
		f.write(" ELSE ")
		f.formatExpr(c.Else)
	}
	f.write(" END")
}

func (f *formatter) formatInExpr(in *InExpr) {
	f.operand(in.Expr, PrecedenceComparison)
	f.write(not(in.Not) + " IN (")
	if in.Query != nil {
		f.formatSelect(in.Query)
	} else {
		f.exprList(in.Values)
	}
	f.write(")")
}
