package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/tabset/internal/config"
	"github.com/chris-regnier/tabset/internal/metrics"
	"github.com/chris-regnier/tabset/internal/watch"
	"github.com/chris-regnier/tabset/internal/web"
)

var (
	flagServeAddr  string
	flagServeWatch bool
	flagServeStats string
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout as a web page",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "Reload the layout when config or panel files change")
	serveCmd.Flags().StringVar(&flagServeStats, "stats", "", "Write activation stats on exit: - for a report on stderr, *.csv, or a JSON path")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, os.Stderr)

	shutdown, err := startTelemetry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	collector := metrics.NewCollector()
	sw, err := newSwitcher(cfg, logger, metrics.NewRecorder(collector, "web", logger))
	if err != nil {
		return err
	}

	srv := web.New(sw,
		web.WithTitle(cfg.Layout.Title),
		web.WithStrict(cfg.Layout.IsStrict()),
		web.WithLogger(logger),
	)

	if flagServeWatch || cfg.Server.WatchEnabled() {
		fw, err := startWatcher(srv, cfg, logger)
		if err != nil {
			return err
		}
		defer fw.Close()
	}

	addr := flagServeAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if err := srv.ListenAndServe(ctx, addr, durationOr(cfg.Server.ReadTimeout, 10*time.Second)); err != nil {
		return err
	}
	return writeStats(collector, flagServeStats, os.Stderr)
}

// startWatcher reloads srv whenever a config tier or panel file changes.
// The watched set is rebuilt after every successful reload.
func startWatcher(srv *web.Server, cfg *config.Config, logger *slog.Logger) (*watch.FileWatcher, error) {
	machine, project, err := configPaths()
	if err != nil {
		return nil, err
	}

	var fw *watch.FileWatcher
	ready := make(chan struct{})
	fw, err = watch.NewFileWatcher(watchedFiles(cfg, machine, project), durationOr(cfg.Server.Debounce, watch.DefaultDebounce), logger,
		func(changed []string) {
			<-ready
			next, ok := reload(srv, logger, changed)
			if !ok {
				return
			}
			if err := fw.SetFiles(watchedFiles(next, machine, project)); err != nil {
				logger.Warn("updating watched files", "err", err)
			}
		})
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	close(ready)
	return fw, nil
}

// reload rebuilds the layout after a file change. A broken config keeps the
// current layout and reports false.
func reload(srv *web.Server, logger *slog.Logger, changed []string) (*config.Config, bool) {
	cfg, err := loadConfig()
	if err != nil {
		logger.Warn("reload skipped", "changed", changed, "err", err)
		return nil, false
	}
	reg, err := cfg.BuildRegistry()
	if err != nil {
		logger.Warn("reload skipped", "changed", changed, "err", err)
		return nil, false
	}
	srv.Reload(reg, cfg.InitialGroup())
	logger.Info("layout reloaded", "changed", changed)
	return cfg, true
}

// watchedFiles lists the config tiers plus every panel body file.
func watchedFiles(cfg *config.Config, machine, project string) []string {
	files := []string{machine, project}
	for _, g := range cfg.Layout.Groups {
		for _, p := range g.Panels {
			if p.File == "" {
				continue
			}
			path := p.File
			if !filepath.IsAbs(path) && cfg.BaseDir != "" {
				path = filepath.Join(cfg.BaseDir, path)
			}
			files = append(files, path)
		}
	}
	return files
}

func durationOr(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
