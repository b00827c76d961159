// Package cli implements the pgduck command line: rewrite, explain and
// execute Postgres-flavoured SQL against DuckDB.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/config"
	"github.com/duckdbfan/drizzle-duckdb-sub000/sqlrewrite"
)

var (
	version = "dev"
	commit  = "none"
)

// app is the state resolved once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	rewrite *sqlrewrite.Engine
}

// Execute runs the CLI.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stderr)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(stdout, map[string]string{"error": err.Error()})
		} else {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	var (
		cfgFile string
		envFile string
		output  string
	)
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "pgduck",
		Short:         "Rewrite Postgres-flavoured SQL for DuckDB",
		Long:          "Rewrites statements produced by Postgres query builders into SQL that DuckDB accepts, and optionally runs them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			for _, w := range cfg.Warnings {
				logger.Warn(w)
			}
			if cfg.File != "" {
				logger.Debug("config loaded", "file", cfg.File)
			}

			rw, err := sqlrewrite.New(cfg.RewriteOptions(logger))
			if err != nil {
				return fmt.Errorf("create rewriter: %w", err)
			}
			a.cfg, a.logger, a.rewrite = cfg, logger, rw
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default pgduck.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file read before the environment")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newRewriteCmd(a),
		newExplainCmd(a),
		newExecCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}
