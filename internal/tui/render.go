package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/chris-regnier/tabset/internal/cache"
	"github.com/chris-regnier/tabset/internal/tabs"
)

var (
	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			MarginBottom(1)

	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// renderPanels renders every shown panel in registry order.
func (m *Model) renderPanels() string {
	var parts []string
	for _, p := range m.switcher.Registry().Panels() {
		if p.Visibility() != tabs.Shown {
			continue
		}
		parts = append(parts, m.renderPanel(p))
	}
	if len(parts) == 0 {
		return emptyStyle.Render("No group selected. Press a tab key or enter to open one.")
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderPanel(p *tabs.Panel) string {
	key := cache.RenderKey(string(p.Kind), p.Language, m.width, p.Body)
	body, _ := m.bodies.GetOrCompute(key, func() (string, error) {
		return m.renderBody(p), nil
	})
	if p.Title == "" {
		return body
	}
	return panelTitleStyle.Render(p.Title) + "\n" + body
}

func (m *Model) renderBody(p *tabs.Panel) string {
	switch p.Kind {
	case tabs.KindCode:
		return highlightCode(p.Body, p.Language)
	case tabs.KindText:
		return lipgloss.NewStyle().Width(m.width).Render(p.Body)
	default:
		rendered, err := m.renderMarkdown(p.Body)
		if err != nil {
			return p.Body
		}
		return rendered
	}
}

// renderMarkdown renders markdown with glamour, reusing the renderer while
// the wrap width is unchanged.
func (m *Model) renderMarkdown(text string) (string, error) {
	if m.md == nil || m.mdWidth != m.width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(m.width),
		)
		if err != nil {
			return "", err
		}
		m.md = r
		m.mdWidth = m.width
	}
	out, err := m.md.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// highlightCode applies terminal syntax highlighting. Unknown languages fall
// back to content analysis, then to plain text.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	var b strings.Builder
	if err := formatters.TTY16m.Format(&b, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(b.String(), "\n")
}
