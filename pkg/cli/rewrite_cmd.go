package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRewriteCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "rewrite [SQL]",
		Short: "Print the DuckDB rewrite of a statement",
		Example: `  pgduck rewrite 'select * from t where tags @> $1'
  echo 'select g from generate_series(1, 3) as g' | pgduck rewrite --strategy ast`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(cmd, args, file)
			if err != nil {
				return err
			}
			res := a.rewrite.Rewrite(sql)
			if done, err := printStructured(cmd, res); done {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.SQL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the statement from a file (- for stdin)")
	return cmd
}
