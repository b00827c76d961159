package sqlast

import (
	"fmt"
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
)

// Parser parses SQL into an AST.
type Parser struct {
	lexer  *Lexer
	input  string
	token  Token // current token
	peek   Token // lookahead token
	peek2  Token // second lookahead token
	errors []error
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	p := &Parser{
		lexer: NewLexer(sql),
		input: sql,
	}
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses exactly one statement; a trailing semicolon is allowed.
// Errors are *domain.ParseError.
func Parse(sql string) (Stmt, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, domain.ErrParse("empty SQL")
	}

	p := NewParser(sql)
	stmt := p.parseTopLevel()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if p.match(TOKEN_SEMICOLON) && !p.check(TOKEN_EOF) {
		return nil, domain.ErrUnsupported("multi-statement input at offset %d", p.token.Pos)
	}
	if !p.check(TOKEN_EOF) {
		return nil, domain.ErrParse("unexpected %q at offset %d: trailing tokens", p.token.Literal, p.token.Pos)
	}
	return stmt, nil
}

// ParseExpr parses a standalone expression.
func ParseExpr(sql string) (Expr, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, domain.ErrParse("empty expression")
	}

	p := NewParser(sql)
	expr := p.parseExpression()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if !p.check(TOKEN_EOF) {
		return nil, domain.ErrParse("unexpected token after expression: %s", p.token.Literal)
	}
	return expr, nil
}

func (p *Parser) parseTopLevel() Stmt {
	switch p.token.Type {
	case TOKEN_SELECT, TOKEN_LPAREN, TOKEN_VALUES:
		return p.parseSelectStatement()
	case TOKEN_WITH:
		with := p.parseWithClause()
		switch p.token.Type {
		case TOKEN_INSERT:
			s := p.parseInsertStatement()
			s.With = with
			return s
		case TOKEN_UPDATE:
			s := p.parseUpdateStatement()
			s.With = with
			return s
		case TOKEN_DELETE:
			s := p.parseDeleteStatement()
			s.With = with
			return s
		default:
			s := p.parseSelectStatement()
			s.With = with
			return s
		}
	case TOKEN_INSERT:
		return p.parseInsertStatement()
	case TOKEN_UPDATE:
		return p.parseUpdateStatement()
	case TOKEN_DELETE:
		return p.parseDeleteStatement()
	case TOKEN_IDENT, TOKEN_SET:
		if !p.token.Quoted {
			return p.parseRawStatement()
		}
	}
	p.addError(fmt.Sprintf("unexpected token at start of statement: %s", p.token.Type))
	return nil
}

// rawStatements are the leading words of statements kept verbatim.
var rawStatements = map[string]bool{
	"create": true, "drop": true, "alter": true, "truncate": true,
	"begin": true, "commit": true, "rollback": true, "start": true,
	"savepoint": true, "release": true, "set": true, "reset": true,
	"show": true, "describe": true, "explain": true, "pragma": true,
	"copy": true, "attach": true, "detach": true, "use": true,
	"install": true, "load": true, "checkpoint": true, "vacuum": true,
	"analyze": true, "call": true, "prepare": true, "execute": true,
	"deallocate": true,
}

// parseRawStatement keeps a utility statement verbatim. It still tokenizes
// to the end so that a second statement is reported as multi-statement
// input.
func (p *Parser) parseRawStatement() Stmt {
	if !rawStatements[strings.ToLower(p.token.Literal)] {
		p.addError(fmt.Sprintf("unsupported statement %q", p.token.Literal))
		return nil
	}
	start := p.token.Pos
	for !p.check(TOKEN_EOF) && !p.check(TOKEN_SEMICOLON) {
		if p.check(TOKEN_ILLEGAL) {
			p.addError(fmt.Sprintf("unexpected %q", p.token.Literal))
			return nil
		}
		p.nextToken()
	}
	end := len(p.input)
	if p.check(TOKEN_SEMICOLON) {
		end = p.token.Pos
	}
	return &RawStmt{SQL: strings.TrimSpace(p.input[start:end])}
}

// === Token Helpers ===

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// isSoftKeyword reports whether tok is the bare identifier keyword.
func isSoftKeyword(tok Token, keyword string) bool {
	return tok.Type == TOKEN_IDENT && !tok.Quoted && strings.EqualFold(tok.Literal, keyword)
}

// matchSoftKeyword consumes the current token if it's a bare identifier
// matching the given soft keyword (case-insensitive).
func (p *Parser) matchSoftKeyword(keyword string) bool {
	if isSoftKeyword(p.token, keyword) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("unexpected token %s at offset %d, expected %s", p.token.Type, p.token.Pos, t))
	return false
}

func (p *Parser) expectSoftKeyword(keyword string) bool {
	if p.matchSoftKeyword(keyword) {
		return true
	}
	p.addError(fmt.Sprintf("unexpected %q at offset %d, expected %s", p.token.Literal, p.token.Pos, strings.ToUpper(keyword)))
	return false
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, domain.ErrParse("%s", msg))
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// parseIdent consumes one identifier.
func (p *Parser) parseIdent() Ident {
	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("expected identifier at offset %d, got %s", p.token.Pos, p.token.Type))
		return Ident{}
	}
	id := Ident{Name: p.token.Literal, Quoted: p.token.Quoted}
	p.nextToken()
	return id
}

// parseIdentList parses "(a, b, ...)".
func (p *Parser) parseIdentList() []Ident {
	if !p.expect(TOKEN_LPAREN) {
		return nil
	}
	var out []Ident
	for !p.failed() {
		out = append(out, p.parseIdent())
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	p.expect(TOKEN_RPAREN)
	return out
}

// parseAlias parses "[AS] alias". Without AS only an identifier token is
// accepted, so reserved keywords never become aliases.
func (p *Parser) parseAlias() Ident {
	if p.match(TOKEN_AS) {
		return p.parseIdent()
	}
	if p.check(TOKEN_IDENT) {
		return p.parseIdent()
	}
	return Ident{}
}
