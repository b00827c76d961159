package sqlast

import (
	"fmt"
	"strings"
)

// parseExpression parses a full expression.
func (p *Parser) parseExpression() Expr {
	return p.parseExpr(PrecedenceNone)
}

// parseExpr is the Pratt loop: a prefix expression followed by every infix
// operator that binds tighter than prec.
func (p *Parser) parseExpr(prec int) Expr {
	left := p.parsePrefix()
	for left != nil && !p.failed() {
		next := p.infixPrecedence()
		if next <= prec {
			break
		}
		left = p.parseInfix(left, next)
	}
	return left
}

// infixPrecedence returns the precedence of the current token as an infix
// operator. NOT only continues an expression as NOT LIKE/ILIKE/IN/BETWEEN.
func (p *Parser) infixPrecedence() int {
	if p.check(TOKEN_NOT) {
		switch p.peek.Type {
		case TOKEN_LIKE, TOKEN_ILIKE, TOKEN_IN, TOKEN_BETWEEN:
			return PrecedenceComparison
		}
		return PrecedenceNone
	}
	return binaryPrecedence(p.token.Type)
}

func (p *Parser) parseInfix(left Expr, prec int) Expr {
	op := p.token.Type
	switch op {
	case TOKEN_DCOLON:
		p.nextToken()
		return &TypeCastExpr{Expr: left, TypeName: p.parseTypeName()}
	case TOKEN_LBRACKET:
		p.nextToken()
		idx := p.parseExpression()
		p.expect(TOKEN_RBRACKET)
		return &IndexExpr{Expr: left, Index: idx}
	case TOKEN_IS:
		return p.parseIs(left)
	case TOKEN_NOT, TOKEN_LIKE, TOKEN_ILIKE, TOKEN_IN, TOKEN_BETWEEN:
		not := p.match(TOKEN_NOT)
		return p.parsePredicate(left, not)
	}

	p.nextToken()
	right := p.parseExpr(prec)
	if right == nil {
		p.addError(fmt.Sprintf("missing right operand for %s", op))
		return nil
	}
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

func (p *Parser) parseIs(left Expr) Expr {
	p.nextToken() // IS
	is := &IsExpr{Expr: left, Not: p.match(TOKEN_NOT)}
	switch {
	case p.match(TOKEN_NULL):
		is.Kind = IsNull
	case p.match(TOKEN_TRUE):
		is.Kind = IsTrue
	case p.match(TOKEN_FALSE):
		is.Kind = IsFalse
	case p.match(TOKEN_DISTINCT):
		p.expect(TOKEN_FROM)
		is.Kind = IsDistinctFrom
		is.Right = p.parseExpr(PrecedenceComparison)
	default:
		p.addError(fmt.Sprintf("unexpected %s after IS", p.token.Type))
		return nil
	}
	return is
}

// parsePredicate parses LIKE/ILIKE/IN/BETWEEN after the optional NOT.
func (p *Parser) parsePredicate(left Expr, not bool) Expr {
	switch {
	case p.check(TOKEN_LIKE), p.check(TOKEN_ILIKE):
		ilike := p.check(TOKEN_ILIKE)
		p.nextToken()
		return &LikeExpr{Expr: left, Not: not, ILike: ilike, Pattern: p.parseExpr(PrecedenceComparison)}

	case p.match(TOKEN_IN):
		in := &InExpr{Expr: left, Not: not}
		if !p.expect(TOKEN_LPAREN) {
			return nil
		}
		if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
			in.Query = p.parseSelectStatement()
		} else {
			in.Values = p.parseExprList()
		}
		p.expect(TOKEN_RPAREN)
		return in

	case p.match(TOKEN_BETWEEN):
		b := &BetweenExpr{Expr: left, Not: not}
		b.Low = p.parseExpr(PrecedenceComparison)
		p.expect(TOKEN_AND)
		b.High = p.parseExpr(PrecedenceComparison)
		return b
	}
	p.addError(fmt.Sprintf("unexpected %s after NOT", p.token.Type))
	return nil
}

// parseExprList parses "a, b, c" (no parentheses).
func (p *Parser) parseExprList() []Expr {
	var out []Expr
	for !p.failed() {
		e := p.parseExpression()
		if e == nil {
			break
		}
		out = append(out, e)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parsePrefix() Expr {
	tok := p.token
	switch tok.Type {
	case TOKEN_NUMBER:
		p.nextToken()
		return &Literal{Type: LiteralNumber, Value: tok.Literal}
	case TOKEN_STRING:
		p.nextToken()
		return &Literal{Type: LiteralString, Value: tok.Literal}
	case TOKEN_TRUE, TOKEN_FALSE:
		p.nextToken()
		return &Literal{Type: LiteralBool, Value: strings.ToUpper(tok.Literal)}
	case TOKEN_NULL:
		p.nextToken()
		return &Literal{Type: LiteralNull, Value: "NULL"}
	case TOKEN_PARAM:
		p.nextToken()
		return &ParamExpr{Name: tok.Literal}
	case TOKEN_DEFAULT:
		p.nextToken()
		return &DefaultExpr{}
	case TOKEN_STAR:
		p.nextToken()
		return &StarExpr{}

	case TOKEN_MINUS, TOKEN_PLUS:
		p.nextToken()
		return &UnaryExpr{Op: tok.Type, Expr: p.parseExpr(PrecedenceUnary)}
	case TOKEN_NOT:
		p.nextToken()
		return &UnaryExpr{Op: TOKEN_NOT, Expr: p.parseExpr(PrecedenceNot)}

	case TOKEN_LPAREN:
		return p.parseParenExpr()
	case TOKEN_CASE:
		return p.parseCase()
	case TOKEN_CAST:
		return p.parseCast()
	case TOKEN_EXISTS:
		p.nextToken()
		p.expect(TOKEN_LPAREN)
		sel := p.parseSelectStatement()
		p.expect(TOKEN_RPAREN)
		return &ExistsExpr{Select: sel}
	case TOKEN_ARRAY:
		return p.parseArray()
	case TOKEN_LBRACKET:
		p.nextToken()
		list := &ListLiteral{}
		if !p.check(TOKEN_RBRACKET) {
			list.Elements = p.parseExprList()
		}
		p.expect(TOKEN_RBRACKET)
		return list
	case TOKEN_INTERVAL:
		p.nextToken()
		if !p.check(TOKEN_STRING) {
			p.addError("INTERVAL expects a string literal")
			return nil
		}
		iv := &IntervalExpr{Value: p.token.Literal}
		p.nextToken()
		if p.check(TOKEN_IDENT) && !p.token.Quoted && intervalUnits[strings.ToLower(p.token.Literal)] {
			iv.Unit = strings.ToUpper(p.token.Literal)
			p.nextToken()
		}
		return iv

	case TOKEN_IDENT, TOKEN_LEFT, TOKEN_RIGHT:
		return p.parseIdentExpr()
	}

	p.addError(fmt.Sprintf("unexpected token %s (%q) at offset %d", tok.Type, tok.Literal, tok.Pos))
	return nil
}

var intervalUnits = map[string]bool{
	"year": true, "years": true, "month": true, "months": true,
	"day": true, "days": true, "hour": true, "hours": true,
	"minute": true, "minutes": true, "second": true, "seconds": true,
	"week": true, "weeks": true,
}

// parseParenExpr parses a subquery, a row constructor or a parenthesized
// expression.
func (p *Parser) parseParenExpr() Expr {
	p.nextToken() // (
	if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
		sel := p.parseSelectStatement()
		p.expect(TOKEN_RPAREN)
		return &SubqueryExpr{Select: sel}
	}
	exprs := p.parseExprList()
	p.expect(TOKEN_RPAREN)
	if len(exprs) == 1 {
		return &ParenExpr{Expr: exprs[0]}
	}
	return &RowExpr{Exprs: exprs}
}

func (p *Parser) parseCase() Expr {
	p.nextToken() // CASE
	c := &CaseExpr{}
	if !p.check(TOKEN_WHEN) {
		c.Operand = p.parseExpression()
	}
	for p.match(TOKEN_WHEN) {
		w := WhenClause{Condition: p.parseExpression()}
		p.expect(TOKEN_THEN)
		w.Result = p.parseExpression()
		c.Whens = append(c.Whens, w)
		if p.failed() {
			return nil
		}
	}
	if len(c.Whens) == 0 {
		p.addError("CASE without WHEN")
		return nil
	}
	if p.match(TOKEN_ELSE) {
		c.Else = p.parseExpression()
	}
	p.expect(TOKEN_END)
	return c
}

func (p *Parser) parseCast() Expr {
	p.nextToken() // CAST
	p.expect(TOKEN_LPAREN)
	e := p.parseExpression()
	p.expect(TOKEN_AS)
	typ := p.parseTypeName()
	p.expect(TOKEN_RPAREN)
	return &CastExpr{Expr: e, TypeName: typ}
}

func (p *Parser) parseArray() Expr {
	p.nextToken() // ARRAY
	switch {
	case p.match(TOKEN_LBRACKET):
		arr := &ArrayExpr{}
		if !p.check(TOKEN_RBRACKET) {
			arr.Elements = p.parseExprList()
		}
		p.expect(TOKEN_RBRACKET)
		return arr
	case p.match(TOKEN_LPAREN):
		arr := &ArrayExpr{Query: p.parseSelectStatement()}
		p.expect(TOKEN_RPAREN)
		return arr
	}
	p.addError("ARRAY expects [ or (")
	return nil
}

// typeWords can continue a multi-word type name.
var typeWords = map[string]bool{
	"precision": true, "varying": true, "time": true, "zone": true,
	"without": true,
}

// parseTypeName parses a type such as integer, varchar(255), numeric(10, 2),
// text[], double precision or timestamp with time zone, and returns it
// as SQL text.
func (p *Parser) parseTypeName() string {
	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("expected type name at offset %d", p.token.Pos))
		return ""
	}
	var b strings.Builder
	b.WriteString(Ident{Name: p.token.Literal, Quoted: p.token.Quoted}.String())
	p.nextToken()
	for {
		switch {
		case p.check(TOKEN_IDENT) && !p.token.Quoted && typeWords[strings.ToLower(p.token.Literal)]:
			b.WriteString(" " + p.token.Literal)
			p.nextToken()
			continue
		case p.check(TOKEN_WITH) && isSoftKeyword(p.peek, "time"):
			b.WriteString(" " + p.token.Literal)
			p.nextToken()
			continue
		}
		break
	}
	if p.match(TOKEN_LPAREN) {
		b.WriteString("(")
		for i := 0; !p.failed(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			if !p.check(TOKEN_NUMBER) {
				p.addError("expected type modifier")
				return ""
			}
			b.WriteString(p.token.Literal)
			p.nextToken()
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
		b.WriteString(")")
	}
	for p.check(TOKEN_LBRACKET) && p.checkPeek(TOKEN_RBRACKET) {
		p.nextToken()
		p.nextToken()
		b.WriteString("[]")
	}
	return b.String()
}

// parseIdentExpr parses a column reference, t.*, or a function call.
func (p *Parser) parseIdentExpr() Expr {
	first := Ident{Name: p.token.Literal, Quoted: p.token.Quoted}
	isKeyword := !p.check(TOKEN_IDENT)
	p.nextToken()

	if isKeyword && !p.check(TOKEN_LPAREN) {
		p.addError(fmt.Sprintf("unexpected keyword %s", first.Name))
		return nil
	}

	parts := []Ident{first}
	for p.check(TOKEN_DOT) {
		p.nextToken()
		if p.match(TOKEN_STAR) {
			if len(parts) > 1 {
				p.addError("qualified star with more than one qualifier")
				return nil
			}
			return &StarExpr{Table: parts[0]}
		}
		parts = append(parts, p.parseIdent())
		if p.failed() {
			return nil
		}
	}

	if p.check(TOKEN_LPAREN) {
		if len(parts) > 2 {
			p.addError("function name with more than one qualifier")
			return nil
		}
		fn := &FuncCall{Name: parts[len(parts)-1]}
		if len(parts) == 2 {
			fn.Schema = parts[0]
		}
		if fn.Schema.IsZero() && !fn.Name.Quoted && strings.EqualFold(fn.Name.Name, "extract") {
			return p.parseExtract()
		}
		return p.parseFuncCall(fn)
	}

	switch len(parts) {
	case 1:
		return &ColumnRef{Column: parts[0]}
	case 2:
		return &ColumnRef{Table: parts[0], Column: parts[1]}
	case 3:
		return &ColumnRef{Schema: parts[0], Table: parts[1], Column: parts[2]}
	}
	p.addError("column reference with too many qualifiers")
	return nil
}

func (p *Parser) parseExtract() Expr {
	p.nextToken() // (
	if !p.check(TOKEN_IDENT) && !p.check(TOKEN_STRING) {
		p.addError("EXTRACT expects a field name")
		return nil
	}
	ext := &ExtractExpr{Field: strings.ToUpper(p.token.Literal)}
	p.nextToken()
	p.expect(TOKEN_FROM)
	ext.Expr = p.parseExpression()
	p.expect(TOKEN_RPAREN)
	return ext
}

// parseFuncCall parses the argument list and the FILTER / OVER suffixes.
func (p *Parser) parseFuncCall(fn *FuncCall) Expr {
	p.nextToken() // (
	switch {
	case p.check(TOKEN_STAR) && p.checkPeek(TOKEN_RPAREN):
		p.nextToken()
		fn.Star = true
	case p.check(TOKEN_RPAREN):
	default:
		fn.Distinct = p.match(TOKEN_DISTINCT)
		p.match(TOKEN_ALL)
		fn.Args = p.parseExprList()
		if p.match(TOKEN_ORDER) {
			p.expect(TOKEN_BY)
			fn.OrderBy = p.parseOrderByList()
		}
	}
	p.expect(TOKEN_RPAREN)

	if isSoftKeyword(p.token, "filter") && p.checkPeek(TOKEN_LPAREN) {
		p.nextToken()
		p.nextToken()
		p.expect(TOKEN_WHERE)
		fn.Filter = p.parseExpression()
		p.expect(TOKEN_RPAREN)
	}
	if p.match(TOKEN_OVER) {
		if p.check(TOKEN_IDENT) {
			fn.Window = &WindowSpec{Name: p.parseIdent()}
		} else {
			fn.Window = p.parseWindowSpec()
		}
	}
	return fn
}

// parseWindowSpec parses "( [name] [PARTITION BY ...] [ORDER BY ...] [frame] )".
func (p *Parser) parseWindowSpec() *WindowSpec {
	if !p.expect(TOKEN_LPAREN) {
		return nil
	}
	w := &WindowSpec{}
	if p.check(TOKEN_IDENT) && !isSoftKeyword(p.token, "partition") && !isFrameKeyword(p.token) {
		w.Name = p.parseIdent()
	}
	if p.matchSoftKeyword("partition") {
		p.expect(TOKEN_BY)
		w.PartitionBy = p.parseExprList()
	}
	if p.match(TOKEN_ORDER) {
		p.expect(TOKEN_BY)
		w.OrderBy = p.parseOrderByList()
	}
	if isFrameKeyword(p.token) {
		w.Frame = p.parseFrame()
	}
	p.expect(TOKEN_RPAREN)
	return w
}

func isFrameKeyword(tok Token) bool {
	return isSoftKeyword(tok, "rows") || isSoftKeyword(tok, "range") || isSoftKeyword(tok, "groups")
}

func (p *Parser) parseFrame() *FrameSpec {
	fs := &FrameSpec{Type: strings.ToUpper(p.token.Literal)}
	p.nextToken()
	if p.match(TOKEN_BETWEEN) {
		fs.Start = p.parseFrameBound()
		p.expect(TOKEN_AND)
		fs.End = p.parseFrameBound()
	} else {
		fs.Start = p.parseFrameBound()
	}
	return fs
}

func (p *Parser) parseFrameBound() *FrameBound {
	switch {
	case p.matchSoftKeyword("unbounded"):
		if p.matchSoftKeyword("preceding") {
			return &FrameBound{Type: FrameUnboundedPreceding}
		}
		p.expectSoftKeyword("following")
		return &FrameBound{Type: FrameUnboundedFollowing}
	case p.matchSoftKeyword("current"):
		p.expectSoftKeyword("row")
		return &FrameBound{Type: FrameCurrentRow}
	}
	offset := p.parseExpr(PrecedenceAnd)
	if p.matchSoftKeyword("preceding") {
		return &FrameBound{Type: FrameExprPreceding, Offset: offset}
	}
	p.expectSoftKeyword("following")
	return &FrameBound{Type: FrameExprFollowing, Offset: offset}
}

// parseOrderByList parses "expr [ASC|DESC] [NULLS FIRST|LAST], ...".
func (p *Parser) parseOrderByList() []OrderByItem {
	var items []OrderByItem
	for !p.failed() {
		item := OrderByItem{Expr: p.parseExpression()}
		if item.Expr == nil {
			break
		}
		if p.match(TOKEN_DESC) {
			item.Desc = true
		} else {
			p.match(TOKEN_ASC)
		}
		if p.matchSoftKeyword("nulls") {
			switch {
			case p.matchSoftKeyword("first"):
				item.Nulls = "FIRST"
			case p.matchSoftKeyword("last"):
				item.Nulls = "LAST"
			default:
				p.addError("NULLS expects FIRST or LAST")
			}
		}
		items = append(items, item)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return items
}
