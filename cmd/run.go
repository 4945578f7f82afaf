package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/helmcode/laze/pkg/failure"
	"github.com/helmcode/laze/pkg/query"
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -- COMMAND [ARGS...]",
		Short: "Run a command and search for a solution if it fails",
		Long: `Run a command with its output passed through. If it exits with a failure,
the failure line is taken from its error output, searched for on Stack
Exchange and the results are shown for browsing.

laze exits with the command's own status when the failure is too simple to
search for (KeyError, AttributeError, KeyboardInterrupt...) and with 255
after results have been shown.

Examples:
  laze run -- python manage.py migrate
  laze run --tag go -- go run ./cmd/server`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	tail := failure.NewTail(0)
	child := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = io.MultiWriter(os.Stderr, tail)

	// The child shares our terminal and handles Ctrl-C itself.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	runErr := child.Run()
	signal.Stop(sigs)

	if runErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		return fmt.Errorf("failed to run %s: %w", args[0], runErr)
	}
	code := exitErr.ExitCode()
	if code < 0 {
		code = ExitFailure
	}

	raw := failure.Extract(tail.String())
	if raw == "" {
		printWarning("no failure message found in the command's output")
		return &ExitError{Code: code}
	}
	fmt.Fprintln(os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return env.handle(ctx, query.ParseSignature(raw), code)
}
