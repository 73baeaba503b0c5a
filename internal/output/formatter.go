// Package output provides logging setup and formatters for rendering a tab
// switcher's state in different output formats (JSON, Markdown, pretty
// terminal).
package output

import (
	"fmt"

	"github.com/chris-regnier/tabset/internal/tabs"
)

// Formatter renders a StateOutput into a byte slice in a specific format.
type Formatter interface {
	Format(result *StateOutput) ([]byte, error)
}

// StateOutput is the state of a layout after an activation.
type StateOutput struct {
	Title string
	State tabs.State
}

// ResolveFormat determines the output format to use. If flagValue is non-empty,
// it is returned directly. Otherwise, "pretty" is returned for TTY output and
// "json" for non-TTY (piped) output.
func ResolveFormat(flagValue string, stdoutIsTTY bool) string {
	if flagValue != "" {
		return flagValue
	}
	if stdoutIsTTY {
		return "pretty"
	}
	return "json"
}

// NewFormatter returns a Formatter for the given format name.
// Supported formats: "json", "markdown", "pretty".
// Returns an error for unknown format names.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	case "pretty":
		return &PrettyFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (supported: json, markdown, pretty)", format)
	}
}
