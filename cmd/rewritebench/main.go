package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/duckdbfan/drizzle-duckdb-sub000/pkg/rewritebench"
	"github.com/duckdbfan/drizzle-duckdb-sub000/sqlrewrite"
)

func main() {
	defaults := rewritebench.DefaultOptions()

	opts := rewritebench.Options{}
	var strategy string
	pflag.StringVar(&strategy, "strategy", string(defaults.Strategy), "rewrite strategy: text, ast or hybrid")
	pflag.BoolVar(&opts.OperatorRewrite, "operators", defaults.OperatorRewrite, "rewrite @>, <@ and &&")
	pflag.IntVar(&opts.CacheSize, "cache-size", defaults.CacheSize, "AST cache size")
	pflag.IntVar(&opts.Workers, "workers", defaults.Workers, "number of rewrite workers")
	pflag.IntVar(&opts.Warmup, "warmup", defaults.Warmup, "warmup rewrites per statement")
	pflag.IntVar(&opts.Iters, "iters", defaults.Iters, "measured rewrites per statement")
	pflag.Parse()

	st, err := sqlrewrite.ParseStrategy(strategy)
	if err != nil {
		log.Fatal(err)
	}
	opts.Strategy = st

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := rewritebench.Run(ctx, opts)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("strategy=%s workers=%d iters=%d\n", result.Strategy, result.Workers, result.Iters)
	for i, q := range result.Queries {
		avgUS := float64(q.Elapsed.Microseconds()) / float64(result.Iters)
		fmt.Printf("query[%d] %s: transformed=%t total_ms=%d avg_us=%.3f\n", i+1, q.Name, q.Transformed, q.Elapsed.Milliseconds(), avgUS)
	}
	fmt.Printf("cache: hits=%d misses=%d evictions=%d\n", result.Cache.Hits, result.Cache.Misses, result.Cache.Evictions)
}
