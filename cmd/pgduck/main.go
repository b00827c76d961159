// Package main is the entry point for the pgduck CLI binary.
package main

import (
	"os"

	"github.com/duckdbfan/drizzle-duckdb-sub000/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
