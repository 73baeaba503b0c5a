package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Activate  key.Binding
	NextGroup key.Binding
	PrevGroup key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next tab"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab/←", "prev tab"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "open"),
		),
		NextGroup: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next group"),
		),
		PrevGroup: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev group"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Activate, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Activate},
		{k.NextGroup, k.PrevGroup},
		{k.Help, k.Quit},
	}
}
