package textrewrite

import (
	"cmp"
	"slices"
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlscan"
)

// edit inserts text before byte at.
type edit struct {
	at   int
	text string
}

// applyEdits inserts every edit into sql, rightmost first so earlier offsets
// stay valid.
func applyEdits(sql string, edits []edit) string {
	if len(edits) == 0 {
		return sql
	}
	slices.SortStableFunc(edits, func(a, b edit) int { return cmp.Compare(b.at, a.at) })
	for _, e := range edits {
		sql = sql[:e.at] + e.text + sql[e.at:]
	}
	return sql
}

// QualifyJoinColumns qualifies bare quoted identifiers that are compared with
// an identically named identifier across a JOIN ... ON equality, then
// qualifies further bare references to those names in the projection,
// WHERE and ORDER BY clauses with the first FROM source. Each CTE body is
// handled as its own query before the main query. Anything it cannot
// resolve is returned unchanged.
func QualifyJoinColumns(sql string) string {
	if !strings.Contains(strings.ToLower(sql), "join") {
		return sql
	}

	s := sqlscan.NewScanner(sql)
	if start := s.SkipSpace(0); s.IsWordAt(start, "with") {
		if bodies, _, ok := cteBodies(s, start); ok {
			for i := len(bodies) - 1; i >= 0; i-- {
				b := bodies[i]
				body := sql[b.Start:b.End]
				if q := QualifyJoinColumns(body); q != body {
					sql = sql[:b.Start] + q + sql[b.End:]
				}
			}
		}
	}
	return qualifyMain(sql)
}

func qualifyMain(sql string) string {
	m, ok := ResolveSources(sql)
	if !ok || len(m.Sources) < 2 || len(m.Joins) == 0 {
		return sql
	}

	s := sqlscan.NewScanner(sql)
	ambiguous := make(map[string]bool)
	var edits []edit
	for _, jc := range m.Joins {
		if !jc.HasOn || jc.LeftSource == "" || jc.RightSource == "" {
			continue
		}
		edits = append(edits, qualifyOn(s, jc, ambiguous)...)
	}
	if len(edits) == 0 {
		return sql
	}
	sql = applyEdits(sql, edits)

	m, ok = ResolveSources(sql)
	if !ok {
		return sql
	}
	return applyEdits(sql, propagate(sqlscan.NewScanner(sql), m, ambiguous))
}

// isEquality reports whether the "=" at i is a plain equality rather than
// part of <=, >=, !=, ==, =>, := or <>.
func isEquality(masked string, i int) bool {
	if masked[i] != '=' {
		return false
	}
	if i > 0 && strings.IndexByte("<>!=:", masked[i-1]) >= 0 {
		return false
	}
	if i+1 < len(masked) && strings.IndexByte("=>", masked[i+1]) >= 0 {
		return false
	}
	return true
}

// bareQuotedIdent reports whether op is exactly one quoted identifier with no
// qualifier in front of it, and returns its name.
func bareQuotedIdent(s *sqlscan.Scanner, op sqlscan.Operand) (string, bool) {
	if op.Empty() {
		return "", false
	}
	sp, ok := s.QuotedIdentAt(op.Start)
	if !ok || sp.End != op.End {
		return "", false
	}
	if p := s.PrevNonSpace(op.Start); p >= 0 && s.Masked[p] == '.' {
		return "", false
	}
	return sqlscan.IdentName(s.SQL, sp), true
}

// qualifyOn returns the edits qualifying both sides of every same-name
// equality in the join's ON span and records those names as ambiguous.
func qualifyOn(s *sqlscan.Scanner, jc JoinClause, ambiguous map[string]bool) []edit {
	var edits []edit
	left := sqlscan.QuoteIdent(jc.LeftSource) + "."
	right := sqlscan.QuoteIdent(jc.RightSource) + "."
	for i := jc.OnStart; i < jc.OnEnd; i++ {
		if !isEquality(s.Masked, i) {
			continue
		}
		l := sqlscan.WalkLeft(s.SQL, s.Masked, i)
		r := sqlscan.WalkRight(s.SQL, s.Masked, i+1)
		ln, ok := bareQuotedIdent(s, l)
		if !ok {
			continue
		}
		rn, ok := bareQuotedIdent(s, r)
		if !ok || rn != ln {
			continue
		}
		ambiguous[ln] = true
		edits = append(edits, edit{at: l.Start, text: left}, edit{at: r.Start, text: right})
	}
	return edits
}

// propagate qualifies bare references to ambiguous names in the projection,
// WHERE and ORDER BY spans with the first source. Nested subqueries are
// separate scopes and are skipped.
func propagate(s *sqlscan.Scanner, m *SourceMap, ambiguous map[string]bool) []edit {
	def := m.Sources[0].Qualifier()
	if def == "" || len(ambiguous) == 0 {
		return nil
	}
	prefix := sqlscan.QuoteIdent(def) + "."
	idents := sqlscan.QuotedIdents(s.SQL)

	head := distinctOnEnd(s, m.Projection)
	var edits []edit
	for n, span := range []Span{m.Projection, m.Where, m.OrderBy} {
		if span.Empty() {
			continue
		}
		nested := nestedQueries(s, span)
		for _, id := range idents {
			if id.Start < span.Start || id.End > span.End || within(nested, id.Start) {
				continue
			}
			if !ambiguous[sqlscan.IdentName(s.SQL, id)] || !isBareReference(s, id) {
				continue
			}
			if n == 0 && isImplicitAlias(s, id, head) {
				continue
			}
			edits = append(edits, edit{at: id.Start, text: prefix})
		}
	}
	return edits
}

// isBareReference reports whether the identifier at id is an unqualified
// column reference: not part of a dotted name, not a function name and not
// the target of AS. Implicit projection aliases are checked separately.
func isBareReference(s *sqlscan.Scanner, id sqlscan.Span) bool {
	if next := s.SkipSpace(id.End); next < s.Len() && (s.Masked[next] == '.' || s.Masked[next] == '(') {
		return false
	}
	p := s.PrevNonSpace(id.Start)
	if p < 0 {
		return true
	}
	if s.Masked[p] == '.' {
		return false
	}
	return !(p >= 1 && s.IsWordAt(p-1, "as"))
}

// exprPrefixes are words that may directly precede a projected expression.
var exprPrefixes = map[string]bool{"distinct": true, "all": true, "case": true, "not": true}

// isImplicitAlias reports whether the projected identifier at id directly
// follows a complete expression, as in select "x" "id". head is the closing
// parenthesis of a leading DISTINCT ON list, or -1.
func isImplicitAlias(s *sqlscan.Scanner, id sqlscan.Span, head int) bool {
	p := s.PrevNonSpace(id.Start)
	if p < 0 || p == head {
		return false
	}
	switch c := s.Masked[p]; {
	case c == '"' || c == '\'' || c == ')':
		return true
	case sqlscan.IsWordChar(c):
		j := p
		for j > 0 && sqlscan.IsWordChar(s.Masked[j-1]) {
			j--
		}
		word := strings.ToLower(s.Masked[j : p+1])
		return !sqlscan.IsReserved(word) && !exprPrefixes[word]
	}
	return false
}

// distinctOnEnd returns the offset of the ")" closing a DISTINCT ON list at
// the start of the projection, or -1.
func distinctOnEnd(s *sqlscan.Scanner, projection Span) int {
	i, ok := s.MatchWords(s.SkipSpace(projection.Start), "distinct", "on")
	if !ok {
		return -1
	}
	return s.MatchParen(s.SkipSpace(i))
}

// nestedQueries returns the parenthesised SELECT or WITH subqueries inside
// span.
func nestedQueries(s *sqlscan.Scanner, span Span) []Span {
	var out []Span
	for i := span.Start; i < span.End; i++ {
		if s.Masked[i] != '(' {
			continue
		}
		j := s.SkipSpace(i + 1)
		if !s.IsWordAt(j, "select") && !s.IsWordAt(j, "with") {
			continue
		}
		end := s.MatchParen(i)
		if end < 0 {
			end = s.Len()
		}
		out = append(out, Span{Start: i, End: end})
		i = end
	}
	return out
}

func within(spans []Span, i int) bool {
	for _, sp := range spans {
		if i >= sp.Start && i < sp.End {
			return true
		}
	}
	return false
}
