// Package sqlscan provides literal- and comment-aware scanning primitives for
// SQL text: a position-aligned masked copy of a statement, quoted-identifier
// spans, bracket-aware operand walking, and depth-aware keyword search.
//
// Everything here works on byte offsets. The masked copy always has the same
// length as its input, so an offset found in the masked text addresses the
// same character in the original.
package sqlscan

import "strings"

// Placeholder replaces every masked byte. It must not be whitespace, a quote,
// a bracket, or a character that can start a comment.
const Placeholder = 'x'

// Kind classifies a non-code region of a statement.
type Kind int

// KindString and friends are the region kinds reported by Spans.
const (
	KindString       Kind = iota // '...'
	KindIdent                    // "..."
	KindLineComment              // -- ... up to (not including) the newline
	KindBlockComment             // /* ... */
)

// Span is a half-open byte range [Start, End) of one region, delimiters
// included. Unterminated regions end at the end of the input.
type Span struct {
	Kind  Kind
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

type state int

const (
	stateCode state = iota
	stateString
	stateIdent
	stateLineComment
	stateBlockComment
)

// Spans returns every string literal, quoted identifier and comment in sql,
// in order. A doubled quote inside a literal or identifier is an escape and
// never terminates it.
func Spans(sql string) []Span {
	var spans []Span
	st := stateCode
	start := 0
	n := len(sql)

	for i := 0; i < n; i++ {
		c := sql[i]
		switch st {
		case stateCode:
			switch {
			case c == '\'':
				st, start = stateString, i
			case c == '"':
				st, start = stateIdent, i
			case c == '-' && i+1 < n && sql[i+1] == '-':
				st, start = stateLineComment, i
				i++
			case c == '/' && i+1 < n && sql[i+1] == '*':
				st, start = stateBlockComment, i
				i++
			}
		case stateString, stateIdent:
			q := byte('\'')
			kind := KindString
			if st == stateIdent {
				q, kind = '"', KindIdent
			}
			if c != q {
				continue
			}
			if i+1 < n && sql[i+1] == q {
				i++
				continue
			}
			spans = append(spans, Span{Kind: kind, Start: start, End: i + 1})
			st = stateCode
		case stateLineComment:
			if c == '\n' {
				spans = append(spans, Span{Kind: KindLineComment, Start: start, End: i})
				st = stateCode
			}
		case stateBlockComment:
			if c == '*' && i+1 < n && sql[i+1] == '/' {
				i++
				spans = append(spans, Span{Kind: KindBlockComment, Start: start, End: i + 1})
				st = stateCode
			}
		}
	}

	switch st {
	case stateString:
		spans = append(spans, Span{Kind: KindString, Start: start, End: n})
	case stateIdent:
		spans = append(spans, Span{Kind: KindIdent, Start: start, End: n})
	case stateLineComment:
		spans = append(spans, Span{Kind: KindLineComment, Start: start, End: n})
	case stateBlockComment:
		spans = append(spans, Span{Kind: KindBlockComment, Start: start, End: n})
	}
	return spans
}

// Mask returns a copy of sql with the contents of string literals, quoted
// identifiers and comments replaced by Placeholder. Quote characters
// (including doubled escapes), comment markers and newlines inside comments
// are kept, so len(Mask(sql)) == len(sql) and Spans(Mask(sql)) equals
// Spans(sql).
func Mask(sql string) string {
	spans := Spans(sql)
	if len(spans) == 0 {
		return sql
	}
	b := []byte(sql)
	for _, sp := range spans {
		maskSpan(b, sp)
	}
	return string(b)
}

func maskSpan(b []byte, sp Span) {
	switch sp.Kind {
	case KindString, KindIdent:
		q := byte('\'')
		if sp.Kind == KindIdent {
			q = '"'
		}
		for i := sp.Start + 1; i < sp.End; i++ {
			if b[i] != q {
				b[i] = Placeholder
			}
		}
	case KindLineComment:
		for i := sp.Start + 2; i < sp.End; i++ {
			b[i] = Placeholder
		}
	case KindBlockComment:
		end := sp.End
		if end-sp.Start >= 4 && b[end-2] == '*' && b[end-1] == '/' {
			end -= 2
		}
		for i := sp.Start + 2; i < end; i++ {
			if b[i] != '\n' {
				b[i] = Placeholder
			}
		}
	}
}

// QuotedIdents returns the spans of all double-quoted identifiers in sql.
// It may be called with either the original or the masked text.
func QuotedIdents(sql string) []Span {
	var out []Span
	for _, sp := range Spans(sql) {
		if sp.Kind == KindIdent {
			out = append(out, sp)
		}
	}
	return out
}

// IdentName returns the name inside a quoted identifier span of the original
// text, with doubled quotes collapsed.
func IdentName(sql string, sp Span) string {
	body := sql[sp.Start+1 : sp.End]
	// An odd run of trailing quotes means the last one closes the identifier.
	if countTrailingQuotes(body)%2 == 1 {
		body = body[:len(body)-1]
	}
	return strings.ReplaceAll(body, `""`, `"`)
}

func countTrailingQuotes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '"'; i-- {
		n++
	}
	return n
}

// QuoteIdent double-quotes name, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
