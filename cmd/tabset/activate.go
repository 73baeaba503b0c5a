package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chris-regnier/tabset/internal/output"
	"github.com/chris-regnier/tabset/internal/tabs"
)

var (
	flagActivateControl string
	flagActivateFormat  string
)

func init() {
	activateCmd := &cobra.Command{
		Use:   "activate <group>",
		Short: "Activate a group once and print the resulting state",
		Long: `Builds the layout, activates the initial group, then activates <group>
and prints which panels are shown and which tabs are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: runActivate,
	}

	activateCmd.Flags().StringVar(&flagActivateControl, "control", "", "Control id that triggered the activation (defaults to the group's first tab)")
	activateCmd.Flags().StringVar(&flagActivateFormat, "format", "", "Output format: json, pretty, markdown (default: auto-detect)")

	rootCmd.AddCommand(activateCmd)
}

func runActivate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, os.Stderr)

	sw, err := newSwitcher(cfg, logger)
	if err != nil {
		return err
	}

	st, err := activateGroup(sw, args[0], flagActivateControl, cfg.Layout.IsStrict())
	if err != nil {
		return err
	}

	format := output.ResolveFormat(flagActivateFormat, term.IsTerminal(int(os.Stdout.Fd())))
	return printState(cmd.OutOrStdout(), format, cfg.Layout.Title, st)
}

// activateGroup activates group with the named control as event target.
// Unknown groups fail only in strict mode; unknown controls always fail.
func activateGroup(sw *tabs.Switcher, group, controlID string, strict bool) (tabs.State, error) {
	reg := sw.Registry()
	if strict {
		if err := reg.Resolve(group); err != nil {
			return tabs.State{}, err
		}
	}

	var target *tabs.Control
	if controlID != "" {
		c, ok := reg.ControlByID(controlID)
		if !ok {
			return tabs.State{}, fmt.Errorf("unknown control %q", controlID)
		}
		target = c
	} else if c, ok := reg.PrimaryControl(group); ok {
		target = c
	}

	sw.Activate(tabs.Event{CurrentTarget: target}, group)
	return sw.Snapshot(), nil
}

func printState(w io.Writer, format, title string, st tabs.State) error {
	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}
	data, err := formatter.Format(&output.StateOutput{Title: title, State: st})
	if err != nil {
		return fmt.Errorf("formatting state: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(w)
	}
	return nil
}
