package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chris-regnier/tabset/internal/tabs"
)

var (
	highlightColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(highlightColor)

	inactiveTabStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(lipgloss.Color("241"))

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(highlightColor)

	focusedTabStyle = lipgloss.NewStyle().Underline(true)

	tabBarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(highlightColor)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
)

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteString("\n")
	}
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("  ")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTabBar() string {
	reg := m.switcher.Registry()
	focused := m.switcher.Focused()
	var cells []string
	for _, c := range reg.Controls() {
		style := inactiveTabStyle
		if c.Active() {
			style = activeTabStyle
		}
		label := controlLabel(reg, c)
		if c.Key != 0 {
			label = string(c.Key) + " " + label
		}
		if c == focused {
			style = style.Inherit(focusedTabStyle)
		}
		cells = append(cells, style.Render(label))
	}
	return tabBarStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

// controlLabel falls back to the group label for unlabeled controls.
func controlLabel(reg *tabs.Registry, c *tabs.Control) string {
	if c.Label != "" {
		return c.Label
	}
	if g, ok := reg.Group(c.Group); ok {
		return g.Label
	}
	return c.ID
}
