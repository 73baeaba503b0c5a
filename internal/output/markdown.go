package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders the state as a Markdown table of controls
// followed by the visible panels.
type MarkdownFormatter struct{}

// Format produces Markdown output.
func (f *MarkdownFormatter) Format(result *StateOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("markdown formatter: state is required")
	}
	st := result.State

	var b strings.Builder
	title := result.Title
	if title == "" {
		title = "Tabs"
	}
	fmt.Fprintf(&b, "## %s\n\n", title)
	if st.Active == "" {
		b.WriteString("_No group is active._\n\n")
	} else {
		fmt.Fprintf(&b, "Active group: **%s**\n\n", st.Active)
	}

	b.WriteString("| Control | Group | Active |\n")
	b.WriteString("|---------|-------|--------|\n")
	for _, c := range st.Controls {
		mark := ""
		if c.Active {
			mark = ":white_check_mark:"
		}
		label := c.Label
		if c.Focused {
			label = "**" + label + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", label, c.Group, mark)
	}

	shown := 0
	for _, p := range st.Panels {
		if !p.Shown() {
			continue
		}
		if shown == 0 {
			b.WriteString("\n### Visible panels\n\n")
		}
		shown++
		name := p.Title
		if name == "" {
			name = p.ID
		}
		fmt.Fprintf(&b, "- %s (`%s`)\n", name, p.ID)
	}

	return []byte(b.String()), nil
}
