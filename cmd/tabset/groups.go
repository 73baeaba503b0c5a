package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/chris-regnier/tabset/internal/tabs"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	initialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "groups",
		Short: "List configured groups",
		Args:  cobra.NoArgs,
		RunE:  runGroups,
	})
}

func runGroups(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg, os.Stderr)

	reg, err := cfg.BuildRegistry()
	if err != nil {
		return fmt.Errorf("building layout: %w", err)
	}
	writeGroups(cmd.OutOrStdout(), reg, cfg.InitialGroup())
	return nil
}

// writeGroups prints one row per group. The initial group is marked with *.
func writeGroups(w io.Writer, reg *tabs.Registry, initial string) {
	rows := [][]string{{"GROUP", "LABEL", "PANELS", "CONTROLS", "KEYS"}}
	for _, g := range reg.Groups() {
		id := g.ID
		if id == initial {
			id += " *"
		}
		keys := ""
		for _, c := range g.Controls {
			if c.Key != 0 {
				keys += string(c.Key)
			}
		}
		rows = append(rows, []string{id, g.Label, strconv.Itoa(len(g.Panels)), strconv.Itoa(len(g.Controls)), keys})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	for r, row := range rows {
		var line string
		for i, cell := range row {
			padded := cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			switch {
			case r == 0:
				padded = headerStyle.Render(padded)
			case i == 0 && reg.Groups()[r-1].ID == initial:
				padded = initialStyle.Render(padded)
			}
			if i > 0 {
				line += "  "
			}
			line += padded
		}
		fmt.Fprintln(w, line)
	}
}
