package sqlast

// === Expression Nodes ===

// ColumnRef represents a column reference, optionally qualified.
type ColumnRef struct {
	Schema Ident
	Table  Ident // table, alias or CTE qualifier
	Column Ident
}

func (*ColumnRef) node()     {}
func (*ColumnRef) exprNode() {}

// Literal represents a literal value (number, string, bool, null).
type Literal struct {
	Type  LiteralType
	Value string
}

func (*Literal) node()     {}
func (*Literal) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralNumber and friends classify literal values.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// ParamExpr is a bind parameter: $1 or ?.
type ParamExpr struct {
	Name string
}

func (*ParamExpr) node()     {}
func (*ParamExpr) exprNode() {}

// DefaultExpr is DEFAULT in an INSERT value list or SET clause.
type DefaultExpr struct{}

func (*DefaultExpr) node()     {}
func (*DefaultExpr) exprNode() {}

// BinaryExpr represents a binary expression (left op right).
type BinaryExpr struct {
	Left  Expr
	Op    TokenType
	Right Expr
}

func (*BinaryExpr) node()     {}
func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression (NOT x, -x, +x).
type UnaryExpr struct {
	Op   TokenType
	Expr Expr
}

func (*UnaryExpr) node()     {}
func (*UnaryExpr) exprNode() {}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) node()     {}
func (*ParenExpr) exprNode() {}

// RowExpr is a parenthesized expression list: (a, b).
type RowExpr struct {
	Exprs []Expr
}

func (*RowExpr) node()     {}
func (*RowExpr) exprNode() {}

// FuncCall represents a function call.
type FuncCall struct {
	Schema   Ident
	Name     Ident
	Distinct bool
	Args     []Expr
	Star     bool          // count(*)
	OrderBy  []OrderByItem // array_agg(x ORDER BY y)
	Filter   Expr          // FILTER (WHERE ...)
	Window   *WindowSpec   // OVER ...
}

func (*FuncCall) node()     {}
func (*FuncCall) exprNode() {}

// WindowSpec represents a window specification (OVER clause).
type WindowSpec struct {
	Name        Ident // named window reference
	PartitionBy []Expr
	OrderBy     []OrderByItem
	Frame       *FrameSpec
}

// FrameSpec represents a window frame specification.
type FrameSpec struct {
	Type  string // ROWS, RANGE or GROUPS
	Start *FrameBound
	End   *FrameBound // nil without BETWEEN
}

// FrameBound represents a window frame bound.
type FrameBound struct {
	Type   FrameBoundType
	Offset Expr // for N PRECEDING/FOLLOWING
}

// FrameBoundType represents the type of frame bound.
type FrameBoundType string

// FrameUnboundedPreceding and friends are the frame bound kinds.
const (
	FrameUnboundedPreceding FrameBoundType = "UNBOUNDED PRECEDING"
	FrameUnboundedFollowing FrameBoundType = "UNBOUNDED FOLLOWING"
	FrameCurrentRow         FrameBoundType = "CURRENT ROW"
	FrameExprPreceding      FrameBoundType = "PRECEDING"
	FrameExprFollowing      FrameBoundType = "FOLLOWING"
)

// CaseExpr represents a CASE expression.
type CaseExpr struct {
	Operand Expr // nil for a searched CASE
	Whens   []WhenClause
	Else    Expr
}

func (*CaseExpr) node()     {}
func (*CaseExpr) exprNode() {}

// WhenClause represents a WHEN clause in a CASE expression.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// CastExpr represents CAST(expr AS type).
type CastExpr struct {
	Expr     Expr
	TypeName string
}

func (*CastExpr) node()     {}
func (*CastExpr) exprNode() {}

// TypeCastExpr represents expr::type.
type TypeCastExpr struct {
	Expr     Expr
	TypeName string
}

func (*TypeCastExpr) node()     {}
func (*TypeCastExpr) exprNode() {}

// InExpr represents an IN expression.
type InExpr struct {
	Expr   Expr
	Not    bool
	Values []Expr      // IN (1, 2, 3)
	Query  *SelectStmt // IN (SELECT ...)
}

func (*InExpr) node()     {}
func (*InExpr) exprNode() {}

// BetweenExpr represents a BETWEEN expression.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) node()     {}
func (*BetweenExpr) exprNode() {}

// IsExpr represents IS [NOT] NULL, IS [NOT] TRUE/FALSE and
// IS [NOT] DISTINCT FROM.
type IsExpr struct {
	Expr  Expr
	Not   bool
	Kind  IsKind
	Right Expr // only for IsDistinctFrom
}

func (*IsExpr) node()     {}
func (*IsExpr) exprNode() {}

// IsKind selects the predicate of an IsExpr.
type IsKind string

// IsNull and friends are the IS predicates.
const (
	IsNull         IsKind = "NULL"
	IsTrue         IsKind = "TRUE"
	IsFalse        IsKind = "FALSE"
	IsDistinctFrom IsKind = "DISTINCT FROM"
)

// LikeExpr represents a LIKE or ILIKE expression.
type LikeExpr struct {
	Expr    Expr
	Not     bool
	Pattern Expr
	ILike   bool
}

func (*LikeExpr) node()     {}
func (*LikeExpr) exprNode() {}

// ExistsExpr represents EXISTS (subquery). NOT EXISTS is a UnaryExpr.
type ExistsExpr struct {
	Select *SelectStmt
}

func (*ExistsExpr) node()     {}
func (*ExistsExpr) exprNode() {}

// SubqueryExpr represents a scalar subquery used as an expression.
type SubqueryExpr struct {
	Select *SelectStmt
}

func (*SubqueryExpr) node()     {}
func (*SubqueryExpr) exprNode() {}

// StarExpr represents * or table.*.
type StarExpr struct {
	Table Ident
}

func (*StarExpr) node()     {}
func (*StarExpr) exprNode() {}

// IntervalExpr represents INTERVAL 'value' [unit].
type IntervalExpr struct {
	Value string
	Unit  string
}

func (*IntervalExpr) node()     {}
func (*IntervalExpr) exprNode() {}

// ExtractExpr represents EXTRACT(field FROM expr).
type ExtractExpr struct {
	Field string
	Expr  Expr
}

func (*ExtractExpr) node()     {}
func (*ExtractExpr) exprNode() {}

// ArrayExpr represents ARRAY[a, b] or ARRAY(SELECT ...).
type ArrayExpr struct {
	Elements []Expr
	Query    *SelectStmt
}

func (*ArrayExpr) node()     {}
func (*ArrayExpr) exprNode() {}

// ListLiteral represents a DuckDB list literal: [a, b].
type ListLiteral struct {
	Elements []Expr
}

func (*ListLiteral) node()     {}
func (*ListLiteral) exprNode() {}

// IndexExpr represents arr[i].
type IndexExpr struct {
	Expr  Expr
	Index Expr
}

func (*IndexExpr) node()     {}
func (*IndexExpr) exprNode() {}
