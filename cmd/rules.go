package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-extension-audit/internal/heuristics"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the permission watch-list and content pattern rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Suspicious permissions:")
			for _, p := range heuristics.SuspiciousPermissions() {
				fmt.Fprintf(out, "  %s\n", p)
			}

			fmt.Fprintln(out, "\nContent patterns (.js, .html):")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, rule := range heuristics.Rules() {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", rule.Label, rule.Expr.String())
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", heuristics.LongBase64Label, heuristics.LongBase64Expr())
			return w.Flush()
		},
	}
}
