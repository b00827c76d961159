// Package sqlast parses the Postgres-flavoured SQL emitted by query builders
// into a statement tree and formats the tree back into SQL that DuckDB
// accepts.
//
// The grammar covers what query builders generate: SELECT with CTEs, joins,
// set operations and window functions, INSERT ... ON CONFLICT ... RETURNING,
// UPDATE ... FROM and DELETE ... USING. DDL and utility statements are kept
// verbatim as RawStmt. Anything else is a parse error, which callers treat
// as "leave the query alone".
package sqlast

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
type TokenType int

// TOKEN_EOF and friends enumerate all token types produced by the lexer.
const (
	TOKEN_EOF     TokenType = iota // end of input
	TOKEN_ILLEGAL                  // unexpected character

	TOKEN_IDENT  // identifier, bare or "quoted"
	TOKEN_NUMBER // 123, 45.67, 1e10
	TOKEN_STRING // 'hello'
	TOKEN_PARAM  // $1 or ?

	TOKEN_PLUS      // +
	TOKEN_MINUS     // -
	TOKEN_STAR      // *
	TOKEN_SLASH     // /
	TOKEN_MOD       // %
	TOKEN_CARET     // ^
	TOKEN_DPIPE     // ||
	TOKEN_EQ        // =
	TOKEN_NE        // != or <>
	TOKEN_LT        // <
	TOKEN_GT        // >
	TOKEN_LE        // <=
	TOKEN_GE        // >=
	TOKEN_DOT       // .
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_DCOLON    // ::
	TOKEN_ARROW     // ->
	TOKEN_DARROW    // ->>
	TOKEN_CONTAINS  // @>
	TOKEN_CONTAINED // <@
	TOKEN_OVERLAP   // &&

	// TOKEN_ALL and below are reserved keywords (alphabetical). Words that
	// only have meaning in one position (MATERIALIZED, NULLS, ROWS, ...) are
	// soft keywords, lexed as identifiers and matched with matchSoftKeyword.
	TOKEN_ALL
	TOKEN_AND
	TOKEN_ARRAY
	TOKEN_AS
	TOKEN_ASC
	TOKEN_BETWEEN
	TOKEN_BY
	TOKEN_CASE
	TOKEN_CAST
	TOKEN_CROSS
	TOKEN_DEFAULT
	TOKEN_DELETE
	TOKEN_DESC
	TOKEN_DISTINCT
	TOKEN_ELSE
	TOKEN_END
	TOKEN_EXCEPT
	TOKEN_EXISTS
	TOKEN_FALSE
	TOKEN_FROM
	TOKEN_FULL
	TOKEN_GROUP
	TOKEN_HAVING
	TOKEN_ILIKE
	TOKEN_IN
	TOKEN_INNER
	TOKEN_INSERT
	TOKEN_INTERSECT
	TOKEN_INTERVAL
	TOKEN_INTO
	TOKEN_IS
	TOKEN_JOIN
	TOKEN_LATERAL
	TOKEN_LEFT
	TOKEN_LIKE
	TOKEN_LIMIT
	TOKEN_NATURAL
	TOKEN_NOT
	TOKEN_NULL
	TOKEN_OFFSET
	TOKEN_ON
	TOKEN_OR
	TOKEN_ORDER
	TOKEN_OUTER
	TOKEN_OVER
	TOKEN_QUALIFY
	TOKEN_RETURNING
	TOKEN_RIGHT
	TOKEN_SELECT
	TOKEN_SET
	TOKEN_THEN
	TOKEN_TRUE
	TOKEN_UNION
	TOKEN_UPDATE
	TOKEN_USING
	TOKEN_VALUES
	TOKEN_WHEN
	TOKEN_WHERE
	TOKEN_WINDOW
	TOKEN_WITH
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "EOF",
	TOKEN_ILLEGAL: "ILLEGAL",
	TOKEN_IDENT:   "IDENT",
	TOKEN_NUMBER:  "NUMBER",
	TOKEN_STRING:  "STRING",
	TOKEN_PARAM:   "PARAM",

	TOKEN_PLUS:      "+",
	TOKEN_MINUS:     "-",
	TOKEN_STAR:      "*",
	TOKEN_SLASH:     "/",
	TOKEN_MOD:       "%",
	TOKEN_CARET:     "^",
	TOKEN_DPIPE:     "||",
	TOKEN_EQ:        "=",
	TOKEN_NE:        "<>",
	TOKEN_LT:        "<",
	TOKEN_GT:        ">",
	TOKEN_LE:        "<=",
	TOKEN_GE:        ">=",
	TOKEN_DOT:       ".",
	TOKEN_COMMA:     ",",
	TOKEN_SEMICOLON: ";",
	TOKEN_LPAREN:    "(",
	TOKEN_RPAREN:    ")",
	TOKEN_LBRACKET:  "[",
	TOKEN_RBRACKET:  "]",
	TOKEN_DCOLON:    "::",
	TOKEN_ARROW:     "->",
	TOKEN_DARROW:    "->>",
	TOKEN_CONTAINS:  "@>",
	TOKEN_CONTAINED: "<@",
	TOKEN_OVERLAP:   "&&",

	TOKEN_ALL:       "ALL",
	TOKEN_AND:       "AND",
	TOKEN_ARRAY:     "ARRAY",
	TOKEN_AS:        "AS",
	TOKEN_ASC:       "ASC",
	TOKEN_BETWEEN:   "BETWEEN",
	TOKEN_BY:        "BY",
	TOKEN_CASE:      "CASE",
	TOKEN_CAST:      "CAST",
	TOKEN_CROSS:     "CROSS",
	TOKEN_DEFAULT:   "DEFAULT",
	TOKEN_DELETE:    "DELETE",
	TOKEN_DESC:      "DESC",
	TOKEN_DISTINCT:  "DISTINCT",
	TOKEN_ELSE:      "ELSE",
	TOKEN_END:       "END",
	TOKEN_EXCEPT:    "EXCEPT",
	TOKEN_EXISTS:    "EXISTS",
	TOKEN_FALSE:     "FALSE",
	TOKEN_FROM:      "FROM",
	TOKEN_FULL:      "FULL",
	TOKEN_GROUP:     "GROUP",
	TOKEN_HAVING:    "HAVING",
	TOKEN_ILIKE:     "ILIKE",
	TOKEN_IN:        "IN",
	TOKEN_INNER:     "INNER",
	TOKEN_INSERT:    "INSERT",
	TOKEN_INTERSECT: "INTERSECT",
	TOKEN_INTERVAL:  "INTERVAL",
	TOKEN_INTO:      "INTO",
	TOKEN_IS:        "IS",
	TOKEN_JOIN:      "JOIN",
	TOKEN_LATERAL:   "LATERAL",
	TOKEN_LEFT:      "LEFT",
	TOKEN_LIKE:      "LIKE",
	TOKEN_LIMIT:     "LIMIT",
	TOKEN_NATURAL:   "NATURAL",
	TOKEN_NOT:       "NOT",
	TOKEN_NULL:      "NULL",
	TOKEN_OFFSET:    "OFFSET",
	TOKEN_ON:        "ON",
	TOKEN_OR:        "OR",
	TOKEN_ORDER:     "ORDER",
	TOKEN_OUTER:     "OUTER",
	TOKEN_OVER:      "OVER",
	TOKEN_QUALIFY:   "QUALIFY",
	TOKEN_RETURNING: "RETURNING",
	TOKEN_RIGHT:     "RIGHT",
	TOKEN_SELECT:    "SELECT",
	TOKEN_SET:       "SET",
	TOKEN_THEN:      "THEN",
	TOKEN_TRUE:      "TRUE",
	TOKEN_UNION:     "UNION",
	TOKEN_UPDATE:    "UPDATE",
	TOKEN_USING:     "USING",
	TOKEN_VALUES:    "VALUES",
	TOKEN_WHEN:      "WHEN",
	TOKEN_WHERE:     "WHERE",
	TOKEN_WINDOW:    "WINDOW",
	TOKEN_WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = func() map[string]TokenType {
	m := make(map[string]TokenType)
	for t := TOKEN_ALL; t <= TOKEN_WITH; t++ {
		m[strings.ToLower(tokenNames[t])] = t
	}
	return m
}()

// lookupKeyword returns the token type for the given lowercase identifier.
// Returns TOKEN_IDENT if it's not a keyword.
func lookupKeyword(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENT
}

// Token represents a lexical token with its literal value. For quoted
// identifiers Literal holds the unescaped name and Quoted is set.
type Token struct {
	Type    TokenType
	Literal string
	Quoted  bool
	Pos     int // byte offset in the input
}

// Precedence constants for operator precedence parsing (Pratt parser),
// following Postgres: user-defined style operators (@>, &&, ||, ->) bind
// tighter than comparisons and looser than arithmetic.
const (
	PrecedenceNone       = 0
	PrecedenceOr         = 1
	PrecedenceAnd        = 2
	PrecedenceNot        = 3
	PrecedenceComparison = 4 // =, <>, <, >, <=, >=, LIKE, ILIKE, IN, BETWEEN, IS
	PrecedenceOther      = 5 // @>, <@, &&, ||, ->, ->>
	PrecedenceAddition   = 6 // +, -
	PrecedenceMultiply   = 7 // *, /, %
	PrecedenceExponent   = 8 // ^
	PrecedenceUnary      = 9 // -, + (prefix)
	PrecedencePostfix    = 10
)

// binaryPrecedence returns the precedence of t used as a binary operator,
// or PrecedenceNone.
func binaryPrecedence(t TokenType) int {
	switch t {
	case TOKEN_OR:
		return PrecedenceOr
	case TOKEN_AND:
		return PrecedenceAnd
	case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE,
		TOKEN_LIKE, TOKEN_ILIKE, TOKEN_IN, TOKEN_BETWEEN, TOKEN_IS:
		return PrecedenceComparison
	case TOKEN_CONTAINS, TOKEN_CONTAINED, TOKEN_OVERLAP, TOKEN_DPIPE, TOKEN_ARROW, TOKEN_DARROW:
		return PrecedenceOther
	case TOKEN_PLUS, TOKEN_MINUS:
		return PrecedenceAddition
	case TOKEN_STAR, TOKEN_SLASH, TOKEN_MOD:
		return PrecedenceMultiply
	case TOKEN_CARET:
		return PrecedenceExponent
	case TOKEN_DCOLON, TOKEN_LBRACKET:
		return PrecedencePostfix
	}
	return PrecedenceNone
}
