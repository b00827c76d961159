package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/engine"
)

func newExecCmd(a *app) *cobra.Command {
	var (
		file     string
		showSQL  bool
		setupSQL []string
	)
	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Rewrite a statement and run it against DuckDB",
		Long:  "Rewrites a statement and runs it against the configured DuckDB database (in-memory unless --database or duckdb.path is set).",
		Example: `  pgduck exec --setup "create table t (tags varchar[])" \
    --setup "insert into t values (['a', 'b'])" \
    "select count(*) from t where tags @> ['a']"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			eng, err := engine.Open(ctx, a.cfg.DuckDB.Path, a.rewrite, a.logger)
			if err != nil {
				return err
			}
			defer eng.Close() //nolint:errcheck

			for _, stmt := range setupSQL {
				if _, err := eng.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("setup: %w", err)
				}
			}

			res, err := eng.Query(ctx, sql)
			if err != nil {
				return err
			}
			if done, err := printStructured(cmd, res); done {
				return err
			}
			return renderResult(cmd, res, showSQL)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the statement from a file (- for stdin)")
	cmd.Flags().BoolVar(&showSQL, "show-sql", false, "Print the rewritten statement before the results")
	cmd.Flags().StringArrayVar(&setupSQL, "setup", nil, "Statement to run first (repeatable)")
	return cmd
}

func renderResult(cmd *cobra.Command, res *engine.QueryResult, showSQL bool) error {
	w := cmd.OutOrStdout()
	if showSQL {
		_, _ = fmt.Fprintln(w, res.SQL)
	}
	if res.RowCount == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w)
	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, r := range res.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", res.RowCount)
	return nil
}
