package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(input string) []Token {
	l := NewLexer(input)
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == TOKEN_EOF {
			return out
		}
	}
}

func tokenTypes(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLexer_Operators(t *testing.T) {
	toks := lexAll(`a @> $1::text[] <> 'x' && b <@ c -> 'k' ->> 'v' || d != e`)
	assert.Equal(t, []TokenType{
		TOKEN_IDENT, TOKEN_CONTAINS, TOKEN_PARAM, TOKEN_DCOLON, TOKEN_IDENT,
		TOKEN_LBRACKET, TOKEN_RBRACKET, TOKEN_NE, TOKEN_STRING, TOKEN_OVERLAP,
		TOKEN_IDENT, TOKEN_CONTAINED, TOKEN_IDENT, TOKEN_ARROW, TOKEN_STRING,
		TOKEN_DARROW, TOKEN_STRING, TOKEN_DPIPE, TOKEN_IDENT, TOKEN_NE,
		TOKEN_IDENT, TOKEN_EOF,
	}, tokenTypes(toks))
	assert.Equal(t, "$1", toks[2].Literal)
}

func TestLexer_Keywords(t *testing.T) {
	toks := lexAll("Select DISTINCT x From t")
	assert.Equal(t, []TokenType{TOKEN_SELECT, TOKEN_DISTINCT, TOKEN_IDENT, TOKEN_FROM, TOKEN_IDENT, TOKEN_EOF}, tokenTypes(toks))
	assert.Equal(t, "Select", toks[0].Literal)
}

func TestLexer_QuotedIdentifier(t *testing.T) {
	toks := lexAll(`"a""b" "select"`)
	require.Len(t, toks, 3)
	assert.Equal(t, TOKEN_IDENT, toks[0].Type)
	assert.Equal(t, `a"b`, toks[0].Literal)
	assert.True(t, toks[0].Quoted)
	assert.Equal(t, TOKEN_IDENT, toks[1].Type, "quoted keywords are identifiers")
	assert.Equal(t, "select", toks[1].Literal)
}

func TestLexer_StringEscapes(t *testing.T) {
	toks := lexAll(`'it''s'`)
	require.Len(t, toks, 2)
	assert.Equal(t, TOKEN_STRING, toks[0].Type)
	assert.Equal(t, "it's", toks[0].Literal)
}

func TestLexer_Illegal(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `'abc`},
		{"unterminated identifier", `"abc`},
		{"empty identifier", `""`},
		{"lone bang", `!`},
		{"dollar without digits", `$x`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks := lexAll(tc.input)
			assert.Equal(t, TOKEN_ILLEGAL, toks[0].Type)
		})
	}
}

func TestLexer_CommentsAndPositions(t *testing.T) {
	toks := lexAll("-- lead\nselect /* x */ 1.5e3, .5")
	assert.Equal(t, []TokenType{TOKEN_SELECT, TOKEN_NUMBER, TOKEN_COMMA, TOKEN_NUMBER, TOKEN_EOF}, tokenTypes(toks))
	assert.Equal(t, 8, toks[0].Pos)
	assert.Equal(t, "1.5e3", toks[1].Literal)
	assert.Equal(t, ".5", toks[3].Literal)
}
