package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chris-regnier/tabset/internal/config"
	"github.com/chris-regnier/tabset/internal/metrics"
	"github.com/chris-regnier/tabset/internal/output"
	"github.com/chris-regnier/tabset/internal/tabs"
	"github.com/chris-regnier/tabset/internal/telemetry"
)

// configPaths returns the machine and project tiers, honoring --config.
func configPaths() (machine, project string, err error) {
	machine, project = config.DefaultPaths()
	if flagConfig == "" {
		return machine, project, nil
	}
	if _, err := os.Stat(flagConfig); err != nil {
		return "", "", fmt.Errorf("config file: %w", err)
	}
	return machine, flagConfig, nil
}

// loadConfig loads and validates the tiered configuration.
func loadConfig() (*config.Config, error) {
	machine, project, err := configPaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadTiered(machine, project)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger installs the process logger for the persistent flags.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := output.SetupLogger(flagQuiet, flagVerbose, flagDebug, cfg.Log.Level, w)
	slog.SetDefault(logger)
	return logger
}

// newSwitcher builds the registry and a switcher with the initial group
// already activated.
func newSwitcher(cfg *config.Config, logger *slog.Logger, obs ...tabs.Observer) (*tabs.Switcher, error) {
	reg, err := cfg.BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("building layout: %w", err)
	}
	opts := []tabs.Option{tabs.WithLogger(logger)}
	for _, o := range obs {
		opts = append(opts, tabs.WithObserver(o))
	}
	sw := tabs.NewSwitcher(reg, opts...)

	if initial := cfg.InitialGroup(); initial != "" {
		c, _ := reg.PrimaryControl(initial)
		sw.Activate(tabs.Event{CurrentTarget: c}, initial)
	}
	return sw, nil
}

// startTelemetry initializes OTel and returns a shutdown func that logs
// rather than fails.
func startTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(), error) {
	tcfg := cfg.Telemetry
	if tcfg.ServiceVersion == "" {
		tcfg.ServiceVersion = version
	}
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown error", "err", err)
		}
	}, nil
}

// writeStats dumps collected activation stats. "-" writes a report to w,
// a .csv path writes CSV, anything else writes JSON.
func writeStats(collector *metrics.Collector, path string, w io.Writer) error {
	exporter := metrics.NewExporter(collector)
	switch {
	case path == "":
		return nil
	case path == "-":
		return exporter.WriteReport(w)
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating stats file: %w", err)
		}
		defer f.Close()
		return exporter.WriteCSV(f)
	default:
		return exporter.ExportJSON(path)
	}
}
