package domain

// TransformResult is the outcome of one rewrite. When Transformed is false,
// SQL is byte-identical to the input.
type TransformResult struct {
	SQL         string `json:"sql" yaml:"sql"`
	Transformed bool   `json:"transformed" yaml:"transformed"`
}

// Unchanged returns a result carrying the input untouched.
func Unchanged(sql string) TransformResult {
	return TransformResult{SQL: sql}
}

// Changed returns a transformed result for out, collapsing to Unchanged when
// the rewrite produced the original text.
func Changed(original, out string) TransformResult {
	if out == original {
		return Unchanged(original)
	}
	return TransformResult{SQL: out, Transformed: true}
}

// Rewriter turns a statement written for the source dialect into text the
// target database accepts. Implementations never fail: anything they cannot
// handle comes back unchanged.
type Rewriter interface {
	Name() string
	Rewrite(sql string) TransformResult
}
