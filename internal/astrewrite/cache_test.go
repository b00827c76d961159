package astrewrite

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
)

func fill(c *Cache, keys ...string) {
	for _, k := range keys {
		key := k
		c.GetOrCompute(key, func() domain.TransformResult { return domain.Unchanged(key) })
	}
}

func TestCache_Bound(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	fill(c, "a", "b", "c")
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains("a"), "oldest entry is evicted")
	assert.True(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCache_HitPromotes(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	fill(c, "a", "b", "a", "c")
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.Equal(t, Stats{Hits: 1, Misses: 3, Evictions: 1}, c.Stats())
}

func TestCache_DefaultSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			c, err := NewCache(size)
			require.NoError(t, err)
			for i := 0; i < DefaultCacheSize+10; i++ {
				fill(c, fmt.Sprintf("q%d", i))
			}
			assert.Equal(t, DefaultCacheSize, c.Len())
		})
	}
}

func TestCache_Clear(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	fill(c, "a", "b")
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestCache_ReturnsComputedValue(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	want := domain.TransformResult{SQL: "out", Transformed: true}
	got := c.GetOrCompute("in", func() domain.TransformResult { return want })
	assert.Equal(t, want, got)

	got = c.GetOrCompute("in", func() domain.TransformResult {
		t.Fatal("computed twice")
		return domain.TransformResult{}
	})
	assert.Equal(t, want, got)
}

func TestCache_ConcurrentMissesComputeOnce(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	var calls atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute("k", func() domain.TransformResult {
				calls.Add(1)
				<-release
				return domain.Unchanged("k")
			})
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}
