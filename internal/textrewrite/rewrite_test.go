package textrewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriter(t *testing.T) {
	t.Run("operators and joins", func(t *testing.T) {
		res := NewRewriter(true).Rewrite(`select * from "a" join "b" on "id" = "id" where "tags" @> $1`)
		assert.True(t, res.Transformed)
		assert.Equal(t, `select * from "a" join "b" on "a"."id" = "b"."id" where array_has_all("tags", $1)`, res.SQL)
	})

	t.Run("operator pass disabled", func(t *testing.T) {
		res := NewRewriter(false).Rewrite(`select * from t where tags @> $1`)
		assert.False(t, res.Transformed)
		assert.Equal(t, `select * from t where tags @> $1`, res.SQL)
	})

	t.Run("unchanged", func(t *testing.T) {
		res := NewRewriter(true).Rewrite("select 1")
		assert.False(t, res.Transformed)
		assert.Equal(t, "select 1", res.SQL)
	})

	assert.Equal(t, "text", NewRewriter(true).Name())
}
