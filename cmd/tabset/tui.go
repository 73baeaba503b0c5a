package main

import (
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chris-regnier/tabset/internal/metrics"
	"github.com/chris-regnier/tabset/internal/output"
	"github.com/chris-regnier/tabset/internal/tui"
)

var (
	flagTUILog   string
	flagTUIStats string
)

func init() {
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the layout in an interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}

	tuiCmd.Flags().StringVar(&flagTUILog, "log-file", "tabset.log", "Log file used while the TUI owns the terminal (only with --verbose or --debug)")
	tuiCmd.Flags().StringVar(&flagTUIStats, "stats", "", "Write activation stats on exit: - for a report on stderr, *.csv, or a JSON path")

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if flagVerbose || flagDebug {
		f, err := tea.LogToFile(flagTUILog, "")
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := output.SetupLogger(flagQuiet, flagVerbose, flagDebug, cfg.Log.Level, logOut)
	slog.SetDefault(logger)

	shutdown, err := startTelemetry(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	collector := metrics.NewCollector()
	sw, err := newSwitcher(cfg, logger, metrics.NewRecorder(collector, "tui", logger))
	if err != nil {
		return err
	}

	if err := tui.Run(sw, tui.WithTitle(cfg.Layout.Title), tui.WithStrict(cfg.Layout.IsStrict())); err != nil {
		return err
	}
	return writeStats(collector, flagTUIStats, os.Stderr)
}
