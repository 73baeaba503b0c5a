package tabs

// State is a point-in-time copy of the switcher's presentation state.
type State struct {
	Active   string         `json:"active"`
	Focused  string         `json:"focused,omitempty"`
	Panels   []PanelState   `json:"panels"`
	Controls []ControlState `json:"controls"`
}

// PanelState is the rendered state of one panel.
type PanelState struct {
	ID      string `json:"id"`
	Group   string `json:"group"`
	Title   string `json:"title,omitempty"`
	Display string `json:"display"`
}

// Shown reports whether the panel is visible.
func (p PanelState) Shown() bool { return p.Display == Shown.Display() }

// ControlState is the rendered state of one control.
type ControlState struct {
	ID      string `json:"id"`
	Group   string `json:"group"`
	Label   string `json:"label,omitempty"`
	Active  bool   `json:"active"`
	Focused bool   `json:"focused,omitempty"`
}

// Snapshot copies the current state.
func (s *Switcher) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Active:   s.active,
		Panels:   make([]PanelState, 0, len(s.reg.panels)),
		Controls: make([]ControlState, 0, len(s.reg.controls)),
	}
	if s.focused != nil {
		st.Focused = s.focused.ID
	}
	for _, p := range s.reg.panels {
		st.Panels = append(st.Panels, PanelState{
			ID:      p.ID,
			Group:   p.Group,
			Title:   p.Title,
			Display: p.visibility.Display(),
		})
	}
	for _, c := range s.reg.controls {
		st.Controls = append(st.Controls, ControlState{
			ID:      c.ID,
			Group:   c.Group,
			Label:   c.Label,
			Active:  c.active,
			Focused: s.focused == c,
		})
	}
	return st
}

// ShownPanels returns the ids of visible panels.
func (st State) ShownPanels() []string {
	var ids []string
	for _, p := range st.Panels {
		if p.Shown() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// ActiveControls returns the ids of controls carrying the active marker.
func (st State) ActiveControls() []string {
	var ids []string
	for _, c := range st.Controls {
		if c.Active {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
