package textrewrite

import (
	"strings"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/sqlscan"
)

// TableSource is one FROM or JOIN participant.
type TableSource struct {
	Name     string // unqualified table, CTE or function name; empty for an unaliased subquery
	Alias    string
	Position int // offset of the source in the statement
	Subquery bool
}

// Qualifier returns the name other clauses use to reference the source.
func (t TableSource) Qualifier() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// JoinClause is one JOIN occurrence and its ON span.
type JoinClause struct {
	JoinType   string // "JOIN", "LEFT JOIN", "NATURAL INNER JOIN", ...
	TableName  string
	TableAlias string
	HasOn      bool
	OnStart    int // first byte after ON
	OnEnd      int // exclusive
	// LeftSource is the qualifier of the source introduced just before the
	// join; RightSource is the joined table's own qualifier.
	LeftSource  string
	RightSource string
}

// Span is a half-open byte range of the statement.
type Span struct {
	Start int
	End   int
}

// Empty reports whether the span covers nothing.
func (s Span) Empty() bool { return s.End <= s.Start }

// SourceMap is the resolved FROM/JOIN structure of a statement's main
// query, plus the clause spans the column qualifier rewrites.
type SourceMap struct {
	Sources    []TableSource
	Joins      []JoinClause
	Projection Span // between SELECT and FROM
	Where      Span // empty when absent
	OrderBy    Span // empty when absent or when it orders a set operation
}

// joinPrefixes are the words that may open a join clause, besides JOIN.
var joinPrefixes = []string{"natural", "left", "right", "full", "inner", "cross"}

// clauseEnds terminate a FROM list, an ON condition or a WHERE clause.
var clauseEnds = [][]string{
	{"where"}, {"group", "by"}, {"having"}, {"window"}, {"qualify"},
	{"order", "by"}, {"limit"}, {"offset"}, {"fetch"},
	{"union"}, {"intersect"}, {"except"}, {"returning"},
	{"on", "conflict"},
}

// aliasStopWords can follow a table reference without being its alias.
var aliasStopWords = map[string]bool{
	"on": true, "using": true, "join": true, "natural": true, "left": true,
	"right": true, "full": true, "inner": true, "cross": true, "outer": true,
	"lateral": true, "where": true, "group": true, "having": true, "window": true,
	"qualify": true, "order": true, "limit": true, "offset": true, "fetch": true,
	"union": true, "intersect": true, "except": true, "returning": true,
	"set": true, "for": true, "tablesample": true, "semi": true, "anti": true,
	"asof": true, "positional": true, "with": true, "as": true,
}

var setOps = []string{"union", "intersect", "except"}

// resolver walks one Scanner. All positions it reports refer to s.SQL.
type resolver struct {
	s *sqlscan.Scanner
}

// ResolveSources locates the main query's FROM clause, its ordered sources
// and its joins. It reports false when the statement has no resolvable
// main SELECT ... FROM.
func ResolveSources(sql string) (*SourceMap, bool) {
	r := &resolver{s: sqlscan.NewScanner(sql)}
	return r.resolve()
}

func (r *resolver) resolve() (*SourceMap, bool) {
	s := r.s
	start := s.SkipSpace(0)
	if s.IsWordAt(start, "with") {
		_, end, ok := cteBodies(s, start)
		if !ok {
			return nil, false
		}
		start = end
	}

	sel := s.FindWord("select", start, s.Len(), 0)
	if sel < 0 {
		return nil, false
	}
	// The statement may end in a set operation; everything this resolver
	// reports belongs to the first arm.
	armEnd := s.Len()
	for _, op := range setOps {
		if i := s.FindWord(op, sel, s.Len(), 0); i >= 0 && i < armEnd {
			armEnd = i
		}
	}

	from := s.FindWord("from", sel+len("select"), armEnd, 0)
	if from < 0 {
		return nil, false
	}

	m := &SourceMap{Projection: Span{Start: sel + len("select"), End: from}}
	pos := from + len("from")
	first, next, ok := r.parseSource(pos)
	if !ok {
		return nil, false
	}
	m.Sources = append(m.Sources, first)
	pos = next

	for pos < armEnd {
		pos = s.SkipSpace(pos)
		if pos >= armEnd {
			break
		}
		if s.Masked[pos] == ',' {
			src, next, ok := r.parseSource(pos + 1)
			if !ok {
				return nil, false
			}
			m.Sources = append(m.Sources, src)
			pos = next
			continue
		}
		joinType, afterJoin, isJoin := r.joinAt(pos)
		if !isJoin {
			break
		}
		src, next, ok := r.parseSource(afterJoin)
		if !ok {
			return nil, false
		}
		jc := JoinClause{
			JoinType:    joinType,
			TableName:   src.Name,
			TableAlias:  src.Alias,
			LeftSource:  m.Sources[len(m.Sources)-1].Qualifier(),
			RightSource: src.Qualifier(),
		}
		m.Sources = append(m.Sources, src)
		pos = s.SkipSpace(next)

		switch {
		case s.IsWordAt(pos, "on"):
			jc.HasOn = true
			jc.OnStart = pos + len("on")
			jc.OnEnd = r.clauseEnd(jc.OnStart, armEnd, true)
			pos = jc.OnEnd
		case s.IsWordAt(pos, "using"):
			p := s.SkipSpace(pos + len("using"))
			if closeAt := s.MatchParen(p); closeAt >= 0 {
				pos = closeAt + 1
			} else {
				pos = p
			}
		}
		m.Joins = append(m.Joins, jc)
	}

	if w := s.FindWord("where", pos, armEnd, 0); w >= 0 && r.clauseEnd(pos, armEnd, false) == w {
		m.Where = Span{Start: w + len("where"), End: r.clauseEnd(w+len("where"), armEnd, false)}
	}
	if armEnd == s.Len() {
		if o := s.FindWord("order", pos, armEnd, 0); o >= 0 {
			if end, ok := s.MatchWords(o, "order", "by"); ok {
				m.OrderBy = Span{Start: end, End: r.clauseEnd(end, armEnd, false)}
			}
		}
	}
	return m, true
}

// cteBodies parses "WITH [RECURSIVE] name [(cols)] AS [NOT] [MATERIALIZED]
// (body), ..." starting at at. It returns the spans of the bodies (inside
// their parentheses) and the offset after the list.
func cteBodies(s *sqlscan.Scanner, at int) ([]Span, int, bool) {
	pos := s.SkipSpace(at + len("with"))
	if s.IsWordAt(pos, "recursive") {
		pos = s.SkipSpace(pos + len("recursive"))
	}
	var bodies []Span
	for {
		end, _, ok := s.IdentAt(pos)
		if !ok {
			return nil, 0, false
		}
		pos = s.SkipSpace(end)
		if pos < s.Len() && s.Masked[pos] == '(' {
			closeAt := s.MatchParen(pos)
			if closeAt < 0 {
				return nil, 0, false
			}
			pos = s.SkipSpace(closeAt + 1)
		}
		if !s.IsWordAt(pos, "as") {
			return nil, 0, false
		}
		pos = s.SkipSpace(pos + len("as"))
		if s.IsWordAt(pos, "not") {
			pos = s.SkipSpace(pos + len("not"))
		}
		if s.IsWordAt(pos, "materialized") {
			pos = s.SkipSpace(pos + len("materialized"))
		}
		if pos >= s.Len() || s.Masked[pos] != '(' {
			return nil, 0, false
		}
		closeAt := s.MatchParen(pos)
		if closeAt < 0 {
			return nil, 0, false
		}
		bodies = append(bodies, Span{Start: pos + 1, End: closeAt})
		pos = s.SkipSpace(closeAt + 1)
		if pos < s.Len() && s.Masked[pos] == ',' {
			pos = s.SkipSpace(pos + 1)
			continue
		}
		return bodies, pos, true
	}
}

// joinAt matches "[NATURAL] [LEFT|RIGHT|FULL [OUTER] | INNER | CROSS] JOIN"
// at pos and returns the normalised join type and the offset after JOIN.
func (r *resolver) joinAt(pos int) (string, int, bool) {
	s := r.s
	var words []string
	for {
		matched := false
		for _, w := range joinPrefixes {
			if s.IsWordAt(pos, w) {
				words = append(words, strings.ToUpper(w))
				pos = s.SkipSpace(pos + len(w))
				matched = true
				break
			}
		}
		if !matched {
			break
		}
		if s.IsWordAt(pos, "outer") {
			words = append(words, "OUTER")
			pos = s.SkipSpace(pos + len("outer"))
		}
	}
	if !s.IsWordAt(pos, "join") {
		return "", pos, false
	}
	words = append(words, "JOIN")
	return strings.Join(words, " "), pos + len("join"), true
}

// parseSource reads one table reference starting at or after pos: a
// subquery, a possibly schema-qualified name or a table function, followed
// by an optional alias and column alias list.
func (r *resolver) parseSource(pos int) (TableSource, int, bool) {
	s := r.s
	pos = s.SkipSpace(pos)
	if s.IsWordAt(pos, "lateral") {
		pos = s.SkipSpace(pos + len("lateral"))
	}
	if s.IsWordAt(pos, "only") {
		pos = s.SkipSpace(pos + len("only"))
	}
	src := TableSource{Position: pos}
	if pos >= s.Len() {
		return src, pos, false
	}

	if s.Masked[pos] == '(' {
		closeAt := s.MatchParen(pos)
		if closeAt < 0 {
			return src, pos, false
		}
		src.Subquery = true
		pos = closeAt + 1
	} else {
		end, name, ok := s.IdentAt(pos)
		if !ok {
			return src, pos, false
		}
		src.Name = name
		pos = end
		for pos < s.Len() && s.Masked[pos] == '.' {
			end, name, ok = s.IdentAt(pos + 1)
			if !ok {
				return src, pos, false
			}
			src.Name = name
			pos = end
		}
		if pos < s.Len() && s.Masked[pos] == '(' {
			closeAt := s.MatchParen(pos)
			if closeAt < 0 {
				return src, pos, false
			}
			pos = closeAt + 1
		}
	}

	alias, next := r.parseAlias(pos)
	src.Alias = alias
	if src.Subquery {
		src.Name = alias
	}
	return src, next, true
}

// parseAlias reads "[AS] alias [(col, ...)]" at pos, if present.
func (r *resolver) parseAlias(pos int) (string, int) {
	s := r.s
	p := s.SkipSpace(pos)
	explicit := false
	if s.IsWordAt(p, "as") {
		explicit = true
		p = s.SkipSpace(p + len("as"))
	}
	end, name, ok := s.IdentAt(p)
	if !ok {
		return "", pos
	}
	if !explicit && s.Masked[p] != '"' && aliasStopWords[strings.ToLower(name)] {
		return "", pos
	}
	pos = end
	p = s.SkipSpace(end)
	if p < s.Len() && s.Masked[p] == '(' {
		if closeAt := s.MatchParen(p); closeAt >= 0 {
			pos = closeAt + 1
		}
	}
	return name, pos
}

// clauseEnd returns the offset of the first depth-zero clause boundary at or
// after from, or limit. Join openers end an ON condition but not a WHERE.
func (r *resolver) clauseEnd(from, limit int, stopAtJoin bool) int {
	s := r.s
	base := s.Depth(from)
	for i := from; i < limit; i++ {
		if s.Depth(i) != base {
			continue
		}
		c := s.Masked[i]
		if c == ';' {
			return i
		}
		if stopAtJoin && c == ',' {
			return i
		}
		if !sqlscan.IsWordChar(c) || (i > 0 && sqlscan.IsWordChar(s.Masked[i-1])) {
			continue
		}
		for _, words := range clauseEnds {
			if _, ok := s.MatchWords(i, words...); ok {
				return i
			}
		}
		if stopAtJoin {
			if _, _, ok := r.joinAt(i); ok {
				return i
			}
		}
	}
	return limit
}
