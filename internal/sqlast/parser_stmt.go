package sqlast

import (
	"fmt"
)

// === SELECT ===

// parseSelectStatement parses [WITH ...] body [ORDER BY] [LIMIT] [OFFSET].
func (p *Parser) parseSelectStatement() *SelectStmt {
	stmt := &SelectStmt{}
	if p.check(TOKEN_WITH) {
		stmt.With = p.parseWithClause()
	}
	stmt.Body = p.parseSelectBody()
	if p.failed() {
		return stmt
	}

	if p.match(TOKEN_ORDER) {
		p.expect(TOKEN_BY)
		stmt.OrderBy = p.parseOrderByList()
	}
	// LIMIT and OFFSET may come in either order. LIMIT ALL is no limit.
	for i := 0; i < 2; i++ {
		switch {
		case stmt.Limit == nil && p.match(TOKEN_LIMIT):
			if !p.match(TOKEN_ALL) {
				stmt.Limit = p.parseExpression()
			}
		case stmt.Offset == nil && p.match(TOKEN_OFFSET):
			stmt.Offset = p.parseExpression()
			if !p.matchSoftKeyword("rows") {
				p.matchSoftKeyword("row")
			}
		}
	}
	return stmt
}

func (p *Parser) parseWithClause() *WithClause {
	p.nextToken() // WITH
	w := &WithClause{Recursive: p.matchSoftKeyword("recursive")}
	for !p.failed() {
		cte := &CTE{Name: p.parseIdent()}
		if p.check(TOKEN_LPAREN) {
			cte.Columns = p.parseIdentList()
		}
		p.expect(TOKEN_AS)
		switch {
		case p.matchSoftKeyword("materialized"):
			cte.Materialized = "MATERIALIZED"
		case p.check(TOKEN_NOT) && isSoftKeyword(p.peek, "materialized"):
			p.nextToken()
			p.nextToken()
			cte.Materialized = "NOT MATERIALIZED"
		}
		p.expect(TOKEN_LPAREN)
		cte.Select = p.parseSelectStatement()
		p.expect(TOKEN_RPAREN)
		w.CTEs = append(w.CTEs, cte)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return w
}

func (p *Parser) parseSelectBody() *SelectBody {
	body := &SelectBody{Left: p.parseSelectCore()}
	if p.failed() {
		return body
	}
	switch {
	case p.match(TOKEN_UNION):
		body.Op = SetOpUnion
	case p.match(TOKEN_INTERSECT):
		body.Op = SetOpIntersect
	case p.match(TOKEN_EXCEPT):
		body.Op = SetOpExcept
	default:
		return body
	}
	if p.match(TOKEN_ALL) {
		body.All = true
	} else {
		p.match(TOKEN_DISTINCT)
	}
	body.Right = p.parseSelectBody()
	return body
}

func (p *Parser) parseSelectCore() *SelectCore {
	if p.match(TOKEN_LPAREN) {
		nested := p.parseSelectStatement()
		p.expect(TOKEN_RPAREN)
		return &SelectCore{Nested: nested}
	}
	if p.check(TOKEN_VALUES) {
		p.addError("VALUES lists are only supported in INSERT")
		return &SelectCore{}
	}
	if !p.expect(TOKEN_SELECT) {
		return &SelectCore{}
	}

	sc := &SelectCore{}
	if p.match(TOKEN_DISTINCT) {
		sc.Distinct = true
		if p.match(TOKEN_ON) {
			p.expect(TOKEN_LPAREN)
			sc.DistinctOn = p.parseExprList()
			p.expect(TOKEN_RPAREN)
		}
	} else {
		p.match(TOKEN_ALL)
	}

	sc.Columns = p.parseSelectItems()

	if p.match(TOKEN_FROM) {
		sc.From = p.parseFromClause()
	}
	if p.match(TOKEN_WHERE) {
		sc.Where = p.parseExpression()
	}
	if p.match(TOKEN_GROUP) {
		p.expect(TOKEN_BY)
		sc.GroupBy = p.parseExprList()
	}
	if p.match(TOKEN_HAVING) {
		sc.Having = p.parseExpression()
	}
	if p.match(TOKEN_WINDOW) {
		for !p.failed() {
			def := WindowDef{Name: p.parseIdent()}
			p.expect(TOKEN_AS)
			def.Spec = p.parseWindowSpec()
			sc.Windows = append(sc.Windows, def)
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
	}
	if p.match(TOKEN_QUALIFY) {
		sc.Qualify = p.parseExpression()
	}
	return sc
}

// parseSelectItems parses the projection or RETURNING list.
func (p *Parser) parseSelectItems() []SelectItem {
	var items []SelectItem
	for !p.failed() {
		e := p.parseExpression()
		if e == nil {
			break
		}
		item := SelectItem{Expr: e}
		if _, star := e.(*StarExpr); !star {
			item.Alias = p.parseAlias()
		}
		items = append(items, item)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return items
}

// === FROM ===

func (p *Parser) parseFromClause() *FromClause {
	from := &FromClause{Source: p.parseTableRef()}
	for !p.failed() {
		if p.match(TOKEN_COMMA) {
			from.Joins = append(from.Joins, &Join{Type: JoinComma, Right: p.parseTableRef()})
			continue
		}
		j, ok := p.parseJoin()
		if !ok {
			break
		}
		from.Joins = append(from.Joins, j)
	}
	return from
}

// parseJoin parses "[NATURAL] [INNER | LEFT|RIGHT|FULL [OUTER] | CROSS] JOIN
// ref [ON expr | USING (cols)]". It reports false when no join starts here.
func (p *Parser) parseJoin() (*Join, bool) {
	j := &Join{}
	start := p.token
	j.Natural = p.match(TOKEN_NATURAL)
	switch {
	case p.match(TOKEN_INNER):
		j.Type = JoinInner
	case p.match(TOKEN_LEFT):
		j.Type = JoinLeft
		p.match(TOKEN_OUTER)
	case p.match(TOKEN_RIGHT):
		j.Type = JoinRight
		p.match(TOKEN_OUTER)
	case p.match(TOKEN_FULL):
		j.Type = JoinFull
		p.match(TOKEN_OUTER)
	case p.match(TOKEN_CROSS):
		j.Type = JoinCross
	}
	if !p.match(TOKEN_JOIN) {
		if start != p.token {
			p.addError(fmt.Sprintf("expected JOIN at offset %d", p.token.Pos))
		}
		return nil, false
	}

	j.Right = p.parseTableRef()
	switch {
	case p.match(TOKEN_ON):
		j.Condition = p.parseExpression()
	case p.match(TOKEN_USING):
		j.Using = p.parseIdentList()
	}
	return j, true
}

func (p *Parser) parseTableRef() TableRef {
	lateral := p.match(TOKEN_LATERAL)

	if p.match(TOKEN_LPAREN) {
		if !p.check(TOKEN_SELECT) && !p.check(TOKEN_WITH) && !p.check(TOKEN_LPAREN) {
			p.addError("parenthesized join trees are not supported")
			return nil
		}
		dt := &DerivedTable{Lateral: lateral, Select: p.parseSelectStatement()}
		p.expect(TOKEN_RPAREN)
		dt.Alias = p.parseAlias()
		if !dt.Alias.IsZero() && p.check(TOKEN_LPAREN) {
			dt.ColumnAliases = p.parseIdentList()
		}
		return dt
	}

	parts := []Ident{p.parseIdent()}
	for !p.failed() && p.match(TOKEN_DOT) {
		parts = append(parts, p.parseIdent())
	}
	if p.failed() {
		return nil
	}

	if p.check(TOKEN_LPAREN) {
		if len(parts) > 2 {
			p.addError("table function name with more than one qualifier")
			return nil
		}
		fn := &FuncCall{Name: parts[len(parts)-1]}
		if len(parts) == 2 {
			fn.Schema = parts[0]
		}
		call, _ := p.parseFuncCall(fn).(*FuncCall)
		ft := &FuncTable{Lateral: lateral, Func: call}
		ft.Alias = p.parseAlias()
		if !ft.Alias.IsZero() && p.check(TOKEN_LPAREN) {
			ft.ColumnAliases = p.parseIdentList()
		}
		return ft
	}

	if lateral {
		p.addError("LATERAL requires a subquery or function")
		return nil
	}
	tn := tableName(parts)
	if tn == nil {
		p.addError("table name with too many qualifiers")
		return nil
	}
	tn.Alias = p.parseAlias()
	return tn
}

func tableName(parts []Ident) *TableName {
	switch len(parts) {
	case 1:
		return &TableName{Name: parts[0]}
	case 2:
		return &TableName{Schema: parts[0], Name: parts[1]}
	case 3:
		return &TableName{Catalog: parts[0], Schema: parts[1], Name: parts[2]}
	}
	return nil
}

// parseTarget parses the table of an INSERT, UPDATE or DELETE. allowBare
// permits an alias without AS.
func (p *Parser) parseTarget(allowBare bool) *TableName {
	parts := []Ident{p.parseIdent()}
	for !p.failed() && p.match(TOKEN_DOT) {
		parts = append(parts, p.parseIdent())
	}
	if p.failed() {
		return nil
	}
	tn := tableName(parts)
	if tn == nil {
		p.addError("table name with too many qualifiers")
		return nil
	}
	if p.match(TOKEN_AS) {
		tn.Alias = p.parseIdent()
	} else if allowBare && p.check(TOKEN_IDENT) {
		tn.Alias = p.parseIdent()
	}
	return tn
}

// === INSERT / UPDATE / DELETE ===

func (p *Parser) parseInsertStatement() *InsertStmt {
	p.nextToken() // INSERT
	p.expect(TOKEN_INTO)
	s := &InsertStmt{Table: p.parseTarget(false)}
	if p.check(TOKEN_LPAREN) && !p.checkPeek(TOKEN_SELECT) && !p.checkPeek(TOKEN_WITH) {
		s.Columns = p.parseIdentList()
	}

	switch {
	case p.match(TOKEN_DEFAULT):
		p.expect(TOKEN_VALUES)
		s.DefaultValues = true
	case p.match(TOKEN_VALUES):
		for !p.failed() {
			p.expect(TOKEN_LPAREN)
			s.Values = append(s.Values, p.parseExprList())
			p.expect(TOKEN_RPAREN)
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
	default:
		s.Query = p.parseSelectStatement()
	}

	if p.check(TOKEN_ON) && isSoftKeyword(p.peek, "conflict") {
		p.nextToken()
		p.nextToken()
		s.OnConflict = p.parseOnConflict()
	}
	if p.match(TOKEN_RETURNING) {
		s.Returning = p.parseSelectItems()
	}
	return s
}

func (p *Parser) parseOnConflict() *OnConflict {
	oc := &OnConflict{}
	switch {
	case p.check(TOKEN_LPAREN):
		oc.Columns = p.parseIdentList()
		if p.match(TOKEN_WHERE) {
			oc.TargetWhere = p.parseExpression()
		}
	case p.match(TOKEN_ON):
		p.expectSoftKeyword("constraint")
		oc.Constraint = p.parseIdent()
	}

	p.expectSoftKeyword("do")
	if p.matchSoftKeyword("nothing") {
		oc.DoNothing = true
		return oc
	}
	p.expect(TOKEN_UPDATE)
	p.expect(TOKEN_SET)
	oc.Set = p.parseSetClauses()
	if p.match(TOKEN_WHERE) {
		oc.Where = p.parseExpression()
	}
	return oc
}

func (p *Parser) parseSetClauses() []SetClause {
	var out []SetClause
	for !p.failed() {
		sc := SetClause{Column: p.parseIdent()}
		p.expect(TOKEN_EQ)
		sc.Value = p.parseExpression()
		out = append(out, sc)
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parseUpdateStatement() *UpdateStmt {
	p.nextToken() // UPDATE
	s := &UpdateStmt{Table: p.parseTarget(true)}
	p.expect(TOKEN_SET)
	s.Set = p.parseSetClauses()
	if p.match(TOKEN_FROM) {
		s.From = p.parseFromClause()
	}
	if p.match(TOKEN_WHERE) {
		s.Where = p.parseExpression()
	}
	if p.match(TOKEN_RETURNING) {
		s.Returning = p.parseSelectItems()
	}
	return s
}

func (p *Parser) parseDeleteStatement() *DeleteStmt {
	p.nextToken() // DELETE
	p.expect(TOKEN_FROM)
	s := &DeleteStmt{Table: p.parseTarget(true)}
	if p.match(TOKEN_USING) {
		s.Using = p.parseFromClause()
	}
	if p.match(TOKEN_WHERE) {
		s.Where = p.parseExpression()
	}
	if p.match(TOKEN_RETURNING) {
		s.Returning = p.parseSelectItems()
	}
	return s
}
