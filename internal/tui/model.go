// Package tui renders a tab switcher in the terminal with bubbletea.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/chris-regnier/tabset/internal/cache"
	"github.com/chris-regnier/tabset/internal/tabs"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// tab bar (label row plus border) and footer rows
	chromeHeight = 4
)

// Model is the bubbletea model for the tabset TUI.
type Model struct {
	switcher *tabs.Switcher
	title    string
	strict   bool

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	status   string

	width  int
	height int

	md      *glamour.TermRenderer
	mdWidth int
	bodies  *cache.Cache[string]
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the heading shown above the tab bar.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithStrict reports activations of unknown groups in the status line
// instead of silently clearing the view.
func WithStrict(strict bool) Option {
	return func(m *Model) { m.strict = strict }
}

// New creates a Model driving s.
func New(s *tabs.Switcher, opts ...Option) Model {
	m := Model{
		switcher: s,
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    defaultWidth,
		height:   defaultHeight,
		bodies:   cache.New[string](),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.viewport = viewport.New(m.width, m.bodyHeight())
	m.refresh()
	return m
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(s *tabs.Switcher, opts ...Option) error {
	p := tea.NewProgram(New(s, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) bodyHeight() int {
	h := m.height - chromeHeight
	if m.title != "" {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// refresh re-renders the visible panels into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderPanels())
}
