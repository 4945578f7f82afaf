package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/helmcode/laze/cmd"
	"github.com/spf13/cobra"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitFailure)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "laze",
		Short: "Search Stack Exchange for the failure you just hit",
		Long: `laze turns a failure message into a generic search query, looks it up on
Stack Exchange and lets you page through the answers and open them in your
browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cmd.BindGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewSearchCmd(),
		cmd.NewRunCmd(),
		cmd.NewConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("laze version %s\n", version)
		},
	}
}
