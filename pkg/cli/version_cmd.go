package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if done, err := printStructured(cmd, versionInfo{Version: version, Commit: commit}); done {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pgduck version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
