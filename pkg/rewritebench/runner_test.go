package rewritebench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckdbfan/drizzle-duckdb-sub000/sqlrewrite"
)

func TestRun(t *testing.T) {
	opts := DefaultOptions()
	opts.Workers = 4
	opts.Warmup = 1
	opts.Iters = 20

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, sqlrewrite.StrategyHybrid, res.Strategy)
	require.Len(t, res.Queries, len(defaultQuerySet()))

	transformed := map[string]bool{}
	for _, q := range res.Queries {
		transformed[q.Name] = q.Transformed
	}
	assert.False(t, transformed["plain_select"])
	assert.True(t, transformed["array_contains"])
	assert.True(t, transformed["join_ambiguous"])
	assert.True(t, transformed["series_alias"])
	assert.True(t, transformed["union_ctes"])

	assert.Greater(t, res.Cache.Hits, uint64(0))
}

func TestRun_TextStrategySkipsCache(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = sqlrewrite.StrategyText
	opts.Workers = 0
	opts.Iters = 0

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Workers)
	assert.Equal(t, 1, res.Iters)
	assert.Equal(t, sqlrewrite.CacheStats{}, res.Cache)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_InvalidStrategy(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = "regex"
	_, err := Run(context.Background(), opts)
	require.Error(t, err)
}
