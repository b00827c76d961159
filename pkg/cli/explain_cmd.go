package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/duckdbfan/drizzle-duckdb-sub000/sqlrewrite"
)

func newExplainCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "explain [SQL]",
		Short: "Show what every rewrite strategy makes of a statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, file)
			if err != nil {
				return err
			}
			ex := a.rewrite.Explain(sql)
			if done, err := printStructured(cmd, ex); done {
				return err
			}

			w := cmd.OutOrStdout()
			visitors := "none"
			if len(ex.Visitors) > 0 {
				visitors = strings.Join(ex.Visitors, ", ")
			}
			_, _ = fmt.Fprintf(w, "AST visitors: %s\n", visitors)

			t := newTable(w)
			t.AppendHeader(table.Row{"Strategy", "Transformed", "SQL"})
			for _, st := range sqlrewrite.Strategies {
				res := ex.Results[string(st)]
				name := string(st)
				if st == a.rewrite.Strategy() {
					name += " *"
				}
				t.AppendRow(table.Row{name, res.Transformed, res.SQL})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the statement from a file (- for stdin)")
	return cmd
}
