package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go-extension-audit/db"
	"go-extension-audit/internal/config"
)

func newHistoryCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
		limit      int
		runID      string
	)
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scans, or the findings of one scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := config.Load(configPath, configPath != "")
				if err != nil {
					return err
				}
				dbPath = cfg.HistoryDB
			}
			if dbPath == "" {
				return errors.New("no history database: pass --db or set history_db in the config")
			}

			store, err := db.NewDB(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			if runID != "" {
				findings, err := store.FindingsForRun(runID)
				if err != nil {
					return err
				}
				if len(findings) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No findings recorded for run %s.\n", runID)
					return nil
				}
				_, _ = fmt.Fprintf(w, "BROWSER\tPROFILE\tID\tVERSION\tNAME\tFLAGGED\tHITS\n")
				for _, f := range findings {
					flagged := "-"
					if len(f.FlaggedPermissions) > 0 {
						flagged = strings.Join(f.FlaggedPermissions, ",")
					}
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
						f.Browser, f.Profile, f.ExtensionID, f.Version, f.Name, flagged, f.Hits)
				}
				return nil
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded.")
				return nil
			}
			_, _ = fmt.Fprintf(w, "ID\tSTARTED\tOUTPUT\tEXTENSIONS\tFLAGGED\tHITS\n")
			for _, r := range runs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
					r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.OutputDir, r.Findings, r.Flagged, r.Hits)
			}
			return nil
		},
	}
	historyCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	historyCmd.Flags().StringVar(&dbPath, "db", "", "SQLite history file")
	historyCmd.Flags().IntVar(&limit, "limit", 20, "runs to list (0 = all)")
	historyCmd.Flags().StringVar(&runID, "run", "", "show the findings of this run")
	return historyCmd
}
