package sqlscan

import "strings"

// Scanner pairs a statement with its masked copy and a per-byte parenthesis
// depth table. It is rebuilt after every textual mutation; offsets from an
// older Scanner are meaningless once the text changes.
type Scanner struct {
	SQL    string
	Masked string
	depth  []int
}

// NewScanner masks sql and computes the depth table. A parenthesis counts as
// part of the enclosing level, so "(" and its matching ")" share one depth.
func NewScanner(sql string) *Scanner {
	masked := Mask(sql)
	depth := make([]int, len(masked))
	d := 0
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '(':
			depth[i] = d
			d++
		case ')':
			if d > 0 {
				d--
			}
			depth[i] = d
		default:
			depth[i] = d
		}
	}
	return &Scanner{SQL: sql, Masked: masked, depth: depth}
}

// Len returns the statement length in bytes.
func (s *Scanner) Len() int { return len(s.Masked) }

// Depth returns the parenthesis depth at byte i.
func (s *Scanner) Depth(i int) int {
	if i < 0 || i >= len(s.depth) {
		return 0
	}
	return s.depth[i]
}

// IsWordChar reports whether c can be part of a bare identifier or keyword.
func IsWordChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c >= 0x80
}

// IsWordAt reports whether the keyword word (matched case-insensitively)
// starts at byte i as a whole word outside literals and comments.
func (s *Scanner) IsWordAt(i int, word string) bool {
	end := i + len(word)
	if i < 0 || end > len(s.Masked) {
		return false
	}
	if !strings.EqualFold(s.Masked[i:end], word) {
		return false
	}
	if i > 0 && (IsWordChar(s.Masked[i-1]) || s.Masked[i-1] == '.') {
		return false
	}
	if end < len(s.Masked) && (IsWordChar(s.Masked[end]) || s.Masked[end] == '.') {
		return false
	}
	return true
}

// MatchWords matches a sequence of keywords starting at i, separated by
// whitespace or comments, and returns the offset just past the last one.
func (s *Scanner) MatchWords(i int, words ...string) (int, bool) {
	for n, w := range words {
		if n > 0 {
			i = s.SkipSpace(i)
		}
		if !s.IsWordAt(i, w) {
			return i, false
		}
		i += len(w)
	}
	return i, true
}

// FindWord returns the first offset in [from, to) where word starts at the
// given depth, or -1.
func (s *Scanner) FindWord(word string, from, to, depth int) int {
	if to > len(s.Masked) {
		to = len(s.Masked)
	}
	for i := max(from, 0); i < to; i++ {
		if s.depth[i] == depth && s.IsWordAt(i, word) {
			return i
		}
	}
	return -1
}

// SkipSpace returns the first offset at or after i that is neither
// whitespace nor inside a comment.
func (s *Scanner) SkipSpace(i int) int {
	m := s.Masked
	for i < len(m) {
		switch {
		case isSpace(m[i]):
			i++
		case m[i] == '-' && i+1 < len(m) && m[i+1] == '-':
			for i < len(m) && m[i] != '\n' {
				i++
			}
		case m[i] == '/' && i+1 < len(m) && m[i+1] == '*':
			j := strings.Index(m[i+2:], "*/")
			if j < 0 {
				return len(m)
			}
			i += j + 4
		default:
			return i
		}
	}
	return i
}

// PrevNonSpace returns the offset of the last non-whitespace byte before i,
// or -1.
func (s *Scanner) PrevNonSpace(i int) int {
	i--
	for i >= 0 && isSpace(s.Masked[i]) {
		i--
	}
	return i
}

// MatchParen returns the offset of the ")" closing the "(" at i, or -1.
func (s *Scanner) MatchParen(i int) int {
	if i < 0 || i >= len(s.Masked) || s.Masked[i] != '(' {
		return -1
	}
	d := s.depth[i]
	for j := i + 1; j < len(s.Masked); j++ {
		if s.Masked[j] == ')' && s.depth[j] == d {
			return j
		}
	}
	return -1
}

// QuotedIdentAt returns the quoted identifier span starting at i.
func (s *Scanner) QuotedIdentAt(i int) (Span, bool) {
	if i < 0 || i >= len(s.Masked) || s.Masked[i] != '"' {
		return Span{}, false
	}
	j := i + 1
	for j < len(s.Masked) {
		if s.Masked[j] == '"' {
			if j+1 < len(s.Masked) && s.Masked[j+1] == '"' {
				j += 2
				continue
			}
			return Span{Kind: KindIdent, Start: i, End: j + 1}, true
		}
		j++
	}
	return Span{}, false
}

// IdentAt reads one identifier, quoted or bare, starting at i. It returns the
// offset just past it and its name (quotes removed, doubled quotes
// collapsed). Bare identifiers keep their spelling.
func (s *Scanner) IdentAt(i int) (end int, name string, ok bool) {
	if sp, found := s.QuotedIdentAt(i); found {
		return sp.End, IdentName(s.SQL, sp), true
	}
	j := i
	for j < len(s.Masked) && IsWordChar(s.Masked[j]) {
		j++
	}
	if j == i || (s.Masked[i] >= '0' && s.Masked[i] <= '9') || s.Masked[i] == '$' {
		return i, "", false
	}
	return j, s.SQL[i:j], true
}
