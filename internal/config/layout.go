package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/chris-regnier/tabset/internal/tabs"
)

// BuildRegistry turns the layout into a tabs.Registry. Panel file bodies are
// read relative to BaseDir.
func (c *Config) BuildRegistry() (*tabs.Registry, error) {
	reg := tabs.NewRegistry()

	for _, g := range c.Layout.Groups {
		label := g.Label
		if label == "" {
			label = g.ID
		}
		if _, err := reg.AddGroup(g.ID, label); err != nil {
			return nil, err
		}

		for _, p := range g.Panels {
			body, err := c.panelBody(p)
			if err != nil {
				return nil, err
			}
			panel := &tabs.Panel{
				ID:       p.ID,
				Group:    g.ID,
				Title:    p.Title,
				Body:     body,
				Kind:     tabs.PanelKind(p.Kind),
				Language: p.Language,
			}
			if err := reg.AddPanel(panel); err != nil {
				return nil, err
			}
		}

		controls := g.Controls
		if len(controls) == 0 {
			controls = []ControlConfig{{ID: g.ID, Label: label, Key: g.Key}}
		}
		for _, ctl := range controls {
			ctlLabel := ctl.Label
			if ctlLabel == "" {
				ctlLabel = label
			}
			control := &tabs.Control{
				ID:    ctl.ID,
				Group: g.ID,
				Label: ctlLabel,
				Key:   firstRune(ctl.Key),
			}
			if err := reg.AddControl(control); err != nil {
				return nil, err
			}
		}
	}

	return reg, nil
}

func (c *Config) panelBody(p PanelConfig) (string, error) {
	if p.File == "" {
		return p.Body, nil
	}
	path := p.File
	if !filepath.IsAbs(path) && c.BaseDir != "" {
		path = filepath.Join(c.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading body of panel %q: %w", p.ID, err)
	}
	return string(data), nil
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
