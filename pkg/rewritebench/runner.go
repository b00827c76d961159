// Package rewritebench measures rewrite throughput over a fixed set of
// query-builder shaped statements.
package rewritebench

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/duckdbfan/drizzle-duckdb-sub000/sqlrewrite"
)

type Options struct {
	Strategy        sqlrewrite.Strategy
	OperatorRewrite bool
	CacheSize       int
	Workers         int
	Warmup          int
	Iters           int
}

func DefaultOptions() Options {
	return Options{
		Strategy:        sqlrewrite.StrategyHybrid,
		OperatorRewrite: true,
		CacheSize:       500,
		Workers:         runtime.NumCPU(),
		Warmup:          3,
		Iters:           1000,
	}
}

type Result struct {
	Strategy sqlrewrite.Strategy
	Workers  int
	Iters    int
	Queries  []QueryResult
	Cache    sqlrewrite.CacheStats
}

type QueryResult struct {
	Name        string
	Transformed bool
	Elapsed     time.Duration
}

type querySpec struct {
	Name string
	SQL  string
}

func defaultQuerySet() []querySpec {
	return []querySpec{
		{Name: "plain_select", SQL: `select "id", "name" from "users" where "id" = $1 limit $2`},
		{Name: "array_contains", SQL: `select "id" from "posts" where "tags" @> $1 and "published" = $2`},
		{Name: "array_overlap", SQL: `select count(*) from "posts" where "tags" && $1`},
		{Name: "join_ambiguous", SQL: `select "id", "title" from "posts" left join "users" on "id" = "id" where "id" > $1 order by "id"`},
		{Name: "series_alias", SQL: `select g, count("id") from generate_series(1, 7) as g left join "events" on "day" = g group by g`},
		{Name: "union_ctes", SQL: `(with a as (select "id" from "users") select * from a) union all (with b as (select "id" from "admins") select * from b)`},
	}
}

// Run warms the engine up, then rewrites every statement Iters times spread
// over Workers goroutines.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Warmup < 0 {
		opts.Warmup = 0
	}
	if opts.Iters <= 0 {
		opts.Iters = 1
	}

	eng, err := sqlrewrite.New(sqlrewrite.Options{
		OperatorRewrite: opts.OperatorRewrite,
		CacheSize:       opts.CacheSize,
		Strategy:        opts.Strategy,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create engine: %w", err)
	}

	queries := defaultQuerySet()
	result := Result{Strategy: eng.Strategy(), Workers: opts.Workers, Iters: opts.Iters}
	for _, q := range queries {
		var transformed bool
		for i := 0; i < opts.Warmup; i++ {
			transformed = eng.Rewrite(q.SQL).Transformed
		}

		start := time.Now()
		for res := range startWorkers(ctx, eng, q.SQL, opts.Iters, opts.Workers) {
			transformed = res.Transformed
		}
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run %s: %w", q.Name, err)
		}
		result.Queries = append(result.Queries, QueryResult{Name: q.Name, Transformed: transformed, Elapsed: time.Since(start)})
	}
	result.Cache = eng.CacheStats()
	return result, nil
}

func startWorkers(ctx context.Context, eng *sqlrewrite.Engine, sql string, iters, workers int) <-chan sqlrewrite.Result {
	out := make(chan sqlrewrite.Result, workers)
	jobs := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				out <- eng.Rewrite(sql)
			}
		}()
	}

	go func() {
	feed:
		for i := 0; i < iters; i++ {
			select {
			case jobs <- struct{}{}:
			case <-ctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	return out
}
