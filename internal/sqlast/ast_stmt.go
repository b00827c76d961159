package sqlast

// === Statement Nodes ===

// SelectStmt is a query: an optional WITH clause, a body of one or more
// set-operation arms, and the ORDER BY / LIMIT / OFFSET that apply to the
// whole body.
type SelectStmt struct {
	With    *WithClause
	Body    *SelectBody
	OrderBy []OrderByItem
	Limit   Expr
	Offset  Expr
}

func (*SelectStmt) node()     {}
func (*SelectStmt) stmtNode() {}

// WithClause represents a WITH clause with CTEs.
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

// CTE represents a Common Table Expression.
type CTE struct {
	Name         Ident
	Columns      []Ident
	Materialized string // "", "MATERIALIZED" or "NOT MATERIALIZED"
	Select       *SelectStmt
}

// SelectBody is a chain of set-operation arms: Left [Op Right].
type SelectBody struct {
	Left  *SelectCore
	Op    SetOpType
	All   bool
	Right *SelectBody
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpNone and friends classify set operations.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectCore is one SELECT ... FROM ... arm. When Nested is set the arm is
// a parenthesised query and every other field is empty.
type SelectCore struct {
	Nested *SelectStmt

	Distinct   bool
	DistinctOn []Expr
	Columns    []SelectItem
	From       *FromClause
	Where      Expr
	GroupBy    []Expr
	Having     Expr
	Windows    []WindowDef
	Qualify    Expr
}

// WindowDef represents a named window definition.
type WindowDef struct {
	Name Ident
	Spec *WindowSpec
}

// SelectItem represents an item in the SELECT or RETURNING list.
type SelectItem struct {
	Expr  Expr
	Alias Ident
}

// OrderByItem represents an ORDER BY item.
type OrderByItem struct {
	Expr  Expr
	Desc  bool
	Nulls string // "", "FIRST" or "LAST"
}

// FromClause represents the FROM clause.
type FromClause struct {
	Source TableRef
	Joins  []*Join
}

// Join represents a JOIN clause.
type Join struct {
	Type      JoinType
	Natural   bool
	Right     TableRef
	Condition Expr    // ON
	Using     []Ident // USING (a, b)
}

// JoinType represents the type of join.
type JoinType string

// JoinPlain and friends classify joins. JoinComma is a comma in the FROM
// list.
const (
	JoinPlain JoinType = ""
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	JoinComma JoinType = ","
)

// InsertStmt represents INSERT INTO ... VALUES / SELECT.
type InsertStmt struct {
	With          *WithClause
	Table         *TableName
	Columns       []Ident
	Values        [][]Expr
	Query         *SelectStmt
	DefaultValues bool
	OnConflict    *OnConflict
	Returning     []SelectItem
}

func (*InsertStmt) node()     {}
func (*InsertStmt) stmtNode() {}

// OnConflict represents ON CONFLICT [target] DO NOTHING | DO UPDATE.
type OnConflict struct {
	Columns     []Ident
	TargetWhere Expr
	Constraint  Ident // ON CONFLICT ON CONSTRAINT name
	DoNothing   bool
	Set         []SetClause
	Where       Expr
}

// SetClause is one "column = value" assignment.
type SetClause struct {
	Column Ident
	Value  Expr
}

// UpdateStmt represents UPDATE ... SET ... [FROM ...] [WHERE ...].
type UpdateStmt struct {
	With      *WithClause
	Table     *TableName
	Set       []SetClause
	From      *FromClause
	Where     Expr
	Returning []SelectItem
}

func (*UpdateStmt) node()     {}
func (*UpdateStmt) stmtNode() {}

// DeleteStmt represents DELETE FROM ... [USING ...] [WHERE ...].
type DeleteStmt struct {
	With      *WithClause
	Table     *TableName
	Using     *FromClause
	Where     Expr
	Returning []SelectItem
}

func (*DeleteStmt) node()     {}
func (*DeleteStmt) stmtNode() {}

// RawStmt is a statement kept verbatim: DDL, transaction control and other
// utility statements no rewrite applies to.
type RawStmt struct {
	SQL string
}

func (*RawStmt) node()     {}
func (*RawStmt) stmtNode() {}

// === Table Reference Nodes ===

// TableName represents a table name reference (up to 3-part).
type TableName struct {
	Catalog Ident
	Schema  Ident
	Name    Ident
	Alias   Ident
}

func (*TableName) node()         {}
func (*TableName) tableRefNode() {}

// DerivedTable represents a subquery in FROM.
type DerivedTable struct {
	Lateral       bool
	Select        *SelectStmt
	Alias         Ident
	ColumnAliases []Ident
}

func (*DerivedTable) node()         {}
func (*DerivedTable) tableRefNode() {}

// FuncTable represents a table-valued function in FROM, e.g.
// generate_series(1, 10) AS g(n).
type FuncTable struct {
	Lateral       bool
	Func          *FuncCall
	Alias         Ident
	ColumnAliases []Ident
}

func (*FuncTable) node()         {}
func (*FuncTable) tableRefNode() {}

// Qualifier returns the name other clauses use to reference a FROM source:
// its alias, or the table or function name. Subqueries without an alias
// have none.
func Qualifier(ref TableRef) Ident {
	switch t := ref.(type) {
	case *TableName:
		if !t.Alias.IsZero() {
			return t.Alias
		}
		return t.Name
	case *DerivedTable:
		return t.Alias
	case *FuncTable:
		if !t.Alias.IsZero() {
			return t.Alias
		}
		return t.Func.Name
	}
	return Ident{}
}
