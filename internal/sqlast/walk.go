package sqlast

// ExprFunc is called on every expression after its children have been
// visited. It returns the replacement, or its argument to keep it.
type ExprFunc func(Expr) Expr

// RewriteExpr rewrites e bottom-up with fn. It does not descend into
// subqueries.
func RewriteExpr(e Expr, fn ExprFunc) Expr {
	w := &walker{fn: fn}
	return w.expr(e)
}

// RewriteExprs rewrites every expression of stmt bottom-up with fn,
// including expressions inside subqueries, CTEs and derived tables.
func RewriteExprs(stmt Stmt, fn ExprFunc) {
	w := &walker{fn: fn, deep: true}
	w.stmt(stmt)
}

// WalkSelects calls fn on every SELECT statement in stmt, outermost first.
func WalkSelects(stmt Stmt, fn func(*SelectStmt)) {
	w := &walker{deep: true, onSelect: fn}
	w.stmt(stmt)
}

// Cores returns the SELECT cores of a set-operation chain, left to right.
func Cores(b *SelectBody) []*SelectCore {
	var out []*SelectCore
	for ; b != nil; b = b.Right {
		if b.Left != nil {
			out = append(out, b.Left)
		}
	}
	return out
}

type walker struct {
	fn       ExprFunc
	deep     bool
	onSelect func(*SelectStmt)
}

func (w *walker) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *SelectStmt:
		w.selectStmt(s)
	case *InsertStmt:
		w.with(s.With)
		w.selectStmt(s.Query)
		for _, row := range s.Values {
			w.exprs(row)
		}
		if oc := s.OnConflict; oc != nil {
			oc.TargetWhere = w.expr(oc.TargetWhere)
			w.set(oc.Set)
			oc.Where = w.expr(oc.Where)
		}
		w.items(s.Returning)
	case *UpdateStmt:
		w.with(s.With)
		w.set(s.Set)
		w.from(s.From)
		s.Where = w.expr(s.Where)
		w.items(s.Returning)
	case *DeleteStmt:
		w.with(s.With)
		w.from(s.Using)
		s.Where = w.expr(s.Where)
		w.items(s.Returning)
	}
}

func (w *walker) with(with *WithClause) {
	if with == nil {
		return
	}
	for _, cte := range with.CTEs {
		w.selectStmt(cte.Select)
	}
}

func (w *walker) selectStmt(s *SelectStmt) {
	if s == nil {
		return
	}
	if w.onSelect != nil {
		w.onSelect(s)
	}
	w.with(s.With)
	for _, core := range Cores(s.Body) {
		w.core(core)
	}
	w.orderBy(s.OrderBy)
	s.Limit = w.expr(s.Limit)
	s.Offset = w.expr(s.Offset)
}

func (w *walker) core(c *SelectCore) {
	if c.Nested != nil {
		w.selectStmt(c.Nested)
		return
	}
	w.exprs(c.DistinctOn)
	w.items(c.Columns)
	w.from(c.From)
	c.Where = w.expr(c.Where)
	w.exprs(c.GroupBy)
	c.Having = w.expr(c.Having)
	for i := range c.Windows {
		w.window(c.Windows[i].Spec)
	}
	c.Qualify = w.expr(c.Qualify)
}

func (w *walker) from(from *FromClause) {
	if from == nil {
		return
	}
	w.tableRef(from.Source)
	for _, j := range from.Joins {
		w.tableRef(j.Right)
		j.Condition = w.expr(j.Condition)
	}
}

func (w *walker) tableRef(ref TableRef) {
	switch t := ref.(type) {
	case *DerivedTable:
		w.selectStmt(t.Select)
	case *FuncTable:
		w.funcCall(t.Func)
	}
}

func (w *walker) items(items []SelectItem) {
	for i := range items {
		items[i].Expr = w.expr(items[i].Expr)
	}
}

func (w *walker) set(set []SetClause) {
	for i := range set {
		set[i].Value = w.expr(set[i].Value)
	}
}

func (w *walker) orderBy(items []OrderByItem) {
	for i := range items {
		items[i].Expr = w.expr(items[i].Expr)
	}
}

func (w *walker) exprs(exprs []Expr) {
	for i := range exprs {
		exprs[i] = w.expr(exprs[i])
	}
}

func (w *walker) window(spec *WindowSpec) {
	if spec == nil {
		return
	}
	w.exprs(spec.PartitionBy)
	w.orderBy(spec.OrderBy)
	if spec.Frame != nil {
		for _, b := range []*FrameBound{spec.Frame.Start, spec.Frame.End} {
			if b != nil {
				b.Offset = w.expr(b.Offset)
			}
		}
	}
}

func (w *walker) funcCall(fn *FuncCall) {
	if fn == nil {
		return
	}
	w.exprs(fn.Args)
	w.orderBy(fn.OrderBy)
	fn.Filter = w.expr(fn.Filter)
	w.window(fn.Window)
}

func (w *walker) query(s *SelectStmt) {
	if w.deep {
		w.selectStmt(s)
	}
}

func (w *walker) expr(e Expr) Expr {
	if e == nil {
		return nil
	}

	switch x := e.(type) {
	case *BinaryExpr:
		x.Left = w.expr(x.Left)
		x.Right = w.expr(x.Right)
	case *UnaryExpr:
		x.Expr = w.expr(x.Expr)
	case *ParenExpr:
		x.Expr = w.expr(x.Expr)
	case *RowExpr:
		w.exprs(x.Exprs)
	case *FuncCall:
		w.funcCall(x)
	case *CaseExpr:
		x.Operand = w.expr(x.Operand)
		for i := range x.Whens {
			x.Whens[i].Condition = w.expr(x.Whens[i].Condition)
			x.Whens[i].Result = w.expr(x.Whens[i].Result)
		}
		x.Else = w.expr(x.Else)
	case *CastExpr:
		x.Expr = w.expr(x.Expr)
	case *TypeCastExpr:
		x.Expr = w.expr(x.Expr)
	case *InExpr:
		x.Expr = w.expr(x.Expr)
		w.exprs(x.Values)
		w.query(x.Query)
	case *BetweenExpr:
		x.Expr = w.expr(x.Expr)
		x.Low = w.expr(x.Low)
		x.High = w.expr(x.High)
	case *IsExpr:
		x.Expr = w.expr(x.Expr)
		x.Right = w.expr(x.Right)
	case *LikeExpr:
		x.Expr = w.expr(x.Expr)
		x.Pattern = w.expr(x.Pattern)
	case *ExistsExpr:
		w.query(x.Select)
	case *SubqueryExpr:
		w.query(x.Select)
	case *ExtractExpr:
		x.Expr = w.expr(x.Expr)
	case *ArrayExpr:
		w.exprs(x.Elements)
		w.query(x.Query)
	case *ListLiteral:
		w.exprs(x.Elements)
	case *IndexExpr:
		x.Expr = w.expr(x.Expr)
		x.Index = w.expr(x.Index)
	}

	if w.fn == nil {
		return e
	}
	return w.fn(e)
}
