package output

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	prettyActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2)

	prettyInactiveTab = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 2)

	prettyPanelTitle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	prettyMuted = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// PrettyFormatter renders the state as a colored tab bar followed by the
// titles of the visible panels.
type PrettyFormatter struct{}

// Format produces pretty terminal output.
func (f *PrettyFormatter) Format(result *StateOutput) ([]byte, error) {
	if result == nil {
		return nil, errors.New("pretty formatter: state is required")
	}
	st := result.State

	tabs := make([]string, 0, len(st.Controls))
	for _, c := range st.Controls {
		label := c.Label
		if label == "" {
			label = c.ID
		}
		style := prettyInactiveTab
		if c.Active {
			style = prettyActiveTab
		}
		if c.Focused {
			style = style.Underline(true)
		}
		tabs = append(tabs, style.Render(label))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	shown := 0
	for _, p := range st.Panels {
		if !p.Shown() {
			continue
		}
		shown++
		name := p.Title
		if name == "" {
			name = p.ID
		}
		b.WriteString(prettyPanelTitle.Render(name))
		b.WriteString(" ")
		b.WriteString(prettyMuted.Render("(" + p.ID + ")"))
		b.WriteString("\n")
	}
	if shown == 0 {
		b.WriteString(prettyMuted.Render("no panels visible"))
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}
