package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-extension-audit/db"
	"go-extension-audit/internal/browsers"
	"go-extension-audit/internal/config"
	"go-extension-audit/internal/logging"
	"go-extension-audit/internal/report"
	"go-extension-audit/internal/scanner"
)

type scanOptions struct {
	configPath string
	outDir     string
	browsers   []string
	workers    int
	sarif      bool
	historyDB  string
	extraRoots []string
	debug      bool
	quiet      bool
	home       string
}

func addScanFlags(cmd *cobra.Command, opts *scanOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.outDir, "out", config.DefaultOutputDir, "output folder")
	flags.StringSliceVar(&opts.browsers, "browser", nil, "browsers to scan (chrome, chromium, edge, brave, firefox, custom); empty for all")
	flags.IntVar(&opts.workers, "workers", 0, "extensions evaluated in parallel (0 = one per CPU)")
	flags.BoolVar(&opts.sarif, "sarif", false, "also write findings.sarif")
	flags.StringVar(&opts.historyDB, "db", "", "SQLite file to record this run in")
	flags.StringSliceVar(&opts.extraRoots, "root", nil, "extra Chromium user-data directory to scan")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug output")
	flags.BoolVar(&opts.quiet, "quiet", false, "do not print the summary")
	flags.StringVar(&opts.home, "home", "", "home directory browser paths are resolved against")
	_ = flags.MarkHidden("home")
}

func newScanCmd() *cobra.Command {
	opts := &scanOptions{}
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan installed extensions and write reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}
	addScanFlags(scanCmd, opts)
	return scanCmd
}

// resolveConfig layers flags the user set over the config file
func resolveConfig(cmd *cobra.Command, opts *scanOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, opts.configPath != "")
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutputDir = opts.outDir
	}
	if flags.Changed("browser") {
		cfg.Browsers = opts.browsers
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("sarif") {
		cfg.SARIF = opts.sarif
	}
	if flags.Changed("db") {
		cfg.HistoryDB = opts.historyDB
	}
	if flags.Changed("root") {
		cfg.ExtraRoots = append(cfg.ExtraRoots, opts.extraRoots...)
	}
	if flags.Changed("debug") {
		cfg.Debug = opts.debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, opts *scanOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := logging.NewWithOutput("extension-audit", cfg.Debug, cmd.ErrOrStderr())

	inventory := browsers.NewBrowserInventory(logger.Named("browsers")).WithExtraRoots(cfg.ExtraRoots...)
	if opts.home != "" {
		inventory.WithHome(opts.home)
	}
	if err := inventory.ValidateBrowsers(cfg.Browsers); err != nil {
		return err
	}

	started := time.Now()
	result, err := scanner.New(inventory, cfg.Browsers, cfg.WorkerCount(), logger.Named("scanner")).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	written, err := report.WriteArtifacts(cfg.OutputDir, result.Findings, report.Options{SARIF: cfg.SARIF})
	if err != nil {
		return err
	}
	logger.Debug("wrote reports", "files", written)

	if cfg.HistoryDB != "" {
		store, err := db.NewDB(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		run, err := store.RecordRun(started, cfg.OutputDir, result.Findings)
		if err != nil {
			return err
		}
		logger.Info("recorded run", "id", run.ID, "db", cfg.HistoryDB)
	}

	out := cmd.OutOrStdout()
	if !opts.quiet {
		report.Summary(out, report.Tally(result.Findings, result.Skipped()))
	}
	fmt.Fprintln(out, report.CompletionMessage(cfg.OutputDir))
	return nil
}
