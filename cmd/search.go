package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helmcode/laze/pkg/failure"
	"github.com/helmcode/laze/pkg/query"
)

func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search FAILURE",
		Short: "Search for a solution to a failure message",
		Long: `Strip the occurrence-specific parts out of a failure message (quoted names,
object addresses, line/column positions, URLs), search Stack Exchange for it
and browse the results.

Examples:
  # Search for a Python exception line
  laze search 'json.decoder.JSONDecodeError: Expecting value: line 1 column 1 (char 0)'

  # Read a whole traceback from stdin and use its last line
  python app.py 2>&1 | laze search -

  # Search Server Fault, bash questions only
  laze search --site serverfault --tag bash 'Permission denied'`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")
	if raw == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = failure.Extract(string(data))
	}
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("no failure message to search for")
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return env.handle(ctx, query.ParseSignature(raw), ExitFailure)
}
