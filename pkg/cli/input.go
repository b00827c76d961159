package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoSQL = errors.New("no SQL given: pass it as an argument, with --file, or on stdin")

// readSQL returns the statement from the arguments, the file named by file
// ("-" for stdin), or stdin when it is not an interactive terminal.
func readSQL(cmd *cobra.Command, args []string, file string) (string, error) {
	var sql string
	switch {
	case len(args) > 0:
		sql = strings.Join(args, " ")
	case file != "" && file != "-":
		b, err := os.ReadFile(file) //nolint:gosec // path is caller-controlled
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		sql = string(b)
	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && file != "-" && term.IsTerminal(int(f.Fd())) {
			return "", errNoSQL
		}
		b, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		sql = string(b)
	}

	sql = strings.TrimSpace(sql)
	if sql == "" {
		return "", errNoSQL
	}
	return sql, nil
}
