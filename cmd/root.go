// Package cmd holds the command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Running the root command runs a scan.
func NewRootCmd() *cobra.Command {
	opts := &scanOptions{}
	rootCmd := &cobra.Command{
		Use:   "extension-audit",
		Short: "Static heuristic audit of installed browser extensions",
		Long: `extension-audit finds installed Chromium-family and Firefox extensions,
flags watch-listed permissions and risky script patterns, and writes
report.json and findings.md to the output directory.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	addScanFlags(rootCmd, opts)

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newRulesCmd())
	return rootCmd
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
