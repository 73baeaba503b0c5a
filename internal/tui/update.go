package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chris-regnier/tabset/internal/tabs"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = m.bodyHeight()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.moveFocus(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.moveFocus(-1)
			return m, nil
		case key.Matches(msg, m.keys.Activate):
			if c := m.switcher.Focused(); c != nil {
				m.activate(c, c.Group)
			}
			return m, nil
		case key.Matches(msg, m.keys.NextGroup):
			m.cycle(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevGroup):
			m.cycle(-1)
			return m, nil
		}

		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			if c, ok := m.switcher.Registry().ControlForKey(msg.Runes[0]); ok {
				m.activate(c, c.Group)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// moveFocus shifts keyboard focus along the tab bar without activating.
func (m *Model) moveFocus(delta int) {
	controls := m.switcher.Registry().Controls()
	if len(controls) == 0 {
		return
	}
	idx := -1
	if f := m.switcher.Focused(); f != nil {
		for i, c := range controls {
			if c == f {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		if delta > 0 {
			idx = -1
		} else {
			idx = 0
		}
	}
	next := ((idx+delta)%len(controls) + len(controls)) % len(controls)
	m.switcher.Focus(controls[next])
	m.status = ""
}

func (m *Model) cycle(delta int) {
	reg := m.switcher.Registry()
	group := reg.Neighbor(m.switcher.Active(), delta)
	if group == "" {
		return
	}
	c, _ := reg.PrimaryControl(group)
	m.activate(c, group)
}

func (m *Model) activate(c *tabs.Control, group string) {
	if m.strict {
		if err := m.switcher.Registry().Resolve(group); err != nil {
			m.status = err.Error()
			return
		}
	}
	m.switcher.Activate(tabs.Event{CurrentTarget: c}, group)
	if c != nil {
		m.status = fmt.Sprintf("Opened %s", controlLabel(m.switcher.Registry(), c))
	}
	m.viewport.GotoTop()
	m.refresh()
}
