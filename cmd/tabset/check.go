package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the layout configuration",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	})
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, os.Stderr)

	reg, err := cfg.BuildRegistry()
	if err != nil {
		return fmt.Errorf("building layout: %w", err)
	}
	logger.Info("configuration loaded", "base_dir", cfg.BaseDir)

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d groups, %d panels, %d controls (initial: %s)\n",
		len(reg.GroupIDs()), len(reg.Panels()), len(reg.Controls()), cfg.InitialGroup())
	return nil
}
