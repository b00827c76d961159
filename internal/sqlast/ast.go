package sqlast

// Node is the base interface for all AST nodes.
type Node interface {
	node()
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef is a marker interface for table reference nodes.
type TableRef interface {
	Node
	tableRefNode()
}

// Ident is an identifier as written. Quoted identifiers are formatted with
// double quotes, bare ones as-is. The zero Ident means "absent".
type Ident struct {
	Name   string
	Quoted bool
}

// Quoted returns a quoted identifier for name.
func Quoted(name string) Ident { return Ident{Name: name, Quoted: true} }

// IsZero reports whether the identifier is absent.
func (i Ident) IsZero() bool { return i.Name == "" }

// String returns the identifier in SQL form.
func (i Ident) String() string {
	if i.Quoted {
		return quoteIdent(i.Name)
	}
	return i.Name
}
