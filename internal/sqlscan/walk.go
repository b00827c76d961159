package sqlscan

import "strings"

// Operand is an expression found next to an operator. Start and End are byte
// offsets into the statement; Text is cut from the original, unmasked query.
type Operand struct {
	Start int
	End   int
	Text  string
}

// Empty reports whether the walk found nothing.
func (o Operand) Empty() bool { return o.Start >= o.End }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// isStop reports whether c ends an operand when seen at depth zero.
func isStop(c byte) bool {
	return isSpace(c) || c == ',' || c == ';'
}

// WalkLeft finds the operand that ends just before index from. It skips
// whitespace, then moves left over balanced () and [] groups until it meets
// an unmatched opening bracket or a depth-zero space, comma or semicolon.
func WalkLeft(sql, masked string, from int) Operand {
	i := from - 1
	for i >= 0 && isSpace(masked[i]) {
		i--
	}
	end := i + 1
	depth := 0
	for ; i >= 0; i-- {
		c := masked[i]
		switch {
		case c == ')' || c == ']':
			depth++
		case c == '(' || c == '[':
			if depth == 0 {
				return Operand{Start: i + 1, End: end, Text: sql[i+1 : end]}
			}
			depth--
		case depth == 0 && isStop(c):
			return Operand{Start: i + 1, End: end, Text: sql[i+1 : end]}
		}
	}
	return Operand{Start: 0, End: end, Text: sql[:end]}
}

// WalkRight finds the operand that starts at or after index from. It mirrors
// WalkLeft: an unmatched closing bracket or a depth-zero space, comma or
// semicolon ends it.
func WalkRight(sql, masked string, from int) Operand {
	i := from
	for i < len(masked) && isSpace(masked[i]) {
		i++
	}
	start := i
	depth := 0
	for ; i < len(masked); i++ {
		c := masked[i]
		switch {
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth == 0 {
				return Operand{Start: start, End: i, Text: sql[start:i]}
			}
			depth--
		case depth == 0 && isStop(c):
			return Operand{Start: start, End: i, Text: sql[start:i]}
		}
	}
	return Operand{Start: start, End: len(masked), Text: sql[start:]}
}

// reservedWords can never stand alone as an operand.
var reservedWords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "on": true, "join": true, "inner": true, "left": true,
	"right": true, "full": true, "cross": true, "outer": true, "using": true,
	"group": true, "order": true, "by": true, "having": true, "limit": true,
	"offset": true, "union": true, "intersect": true, "except": true,
	"as": true, "in": true, "is": true, "like": true, "ilike": true,
	"between": true, "when": true, "then": true, "else": true, "set": true,
	"values": true, "returning": true, "into": true, "with": true,
}

// IsReserved reports whether word is a reserved keyword.
func IsReserved(word string) bool {
	return reservedWords[strings.ToLower(word)]
}

// TouchesKeyword reports whether the operand starts or ends with a bare
// reserved keyword. Qualified names such as t.order do not count.
func (o Operand) TouchesKeyword(masked string) bool {
	if o.Empty() {
		return false
	}
	i := o.Start
	for i < o.End && IsWordChar(masked[i]) {
		i++
	}
	if i > o.Start && (i == o.End || masked[i] != '.') && IsReserved(masked[o.Start:i]) {
		return true
	}
	j := o.End
	for j > o.Start && IsWordChar(masked[j-1]) {
		j--
	}
	if j < o.End && (j == o.Start || masked[j-1] != '.') && IsReserved(masked[j:o.End]) {
		return true
	}
	return false
}
