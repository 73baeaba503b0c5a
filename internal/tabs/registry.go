// Package tabs holds groups of mutually exclusive content panels and the
// selector controls that activate them.
//
// A Registry is built once from the layout and handed to a Switcher. The
// switcher owns all visibility and highlight state; presentation layers read
// it back through Snapshot or subscribe to transitions.
package tabs

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID is returned when a panel, control or group id is blank.
	ErrEmptyID = errors.New("empty id")
	// ErrDuplicateID is returned when a panel or control id is registered twice.
	ErrDuplicateID = errors.New("duplicate id")
)

// Visibility is the display state of a content panel.
type Visibility int

const (
	Hidden Visibility = iota
	Shown
)

// Display returns the layout value a presentation layer applies for v.
func (v Visibility) Display() string {
	if v == Shown {
		return "block"
	}
	return "none"
}

func (v Visibility) String() string {
	if v == Shown {
		return "shown"
	}
	return "hidden"
}

// PanelKind selects how a panel body is rendered.
type PanelKind string

const (
	KindMarkdown PanelKind = "markdown"
	KindCode     PanelKind = "code"
	KindText     PanelKind = "text"
)

// Valid reports whether k is a known kind. The empty kind is treated as markdown.
func (k PanelKind) Valid() bool {
	switch k {
	case "", KindMarkdown, KindCode, KindText:
		return true
	}
	return false
}

// Panel is a content panel belonging to exactly one group.
type Panel struct {
	ID       string
	Group    string
	Title    string
	Body     string
	Kind     PanelKind
	Language string

	visibility Visibility
}

// Visibility returns the current display state.
func (p *Panel) Visibility() Visibility { return p.visibility }

// Control is a selector control belonging to exactly one group.
type Control struct {
	ID    string
	Group string
	Label string
	Key   rune

	active bool
}

// Active reports whether the control carries the active marker.
func (c *Control) Active() bool { return c.active }

// Group collects the panels and controls that activate together.
type Group struct {
	ID       string
	Label    string
	Panels   []*Panel
	Controls []*Control
}

// Registry maps group ids to their panels and controls. Insertion order of
// groups, panels and controls is preserved.
type Registry struct {
	order    []string
	groups   map[string]*Group
	panels   []*Panel
	controls []*Control

	panelIDs   map[string]*Panel
	controlIDs map[string]*Control
	keys       map[rune]*Control
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groups:     make(map[string]*Group),
		panelIDs:   make(map[string]*Panel),
		controlIDs: make(map[string]*Control),
		keys:       make(map[rune]*Control),
	}
}

// AddGroup declares a group and its display label. Groups are also created
// implicitly by AddPanel and AddControl; declaring one explicitly fixes its
// position in the ordering and sets the label.
func (r *Registry) AddGroup(id, label string) (*Group, error) {
	if id == "" {
		return nil, fmt.Errorf("group: %w", ErrEmptyID)
	}
	g := r.group(id)
	if label != "" {
		g.Label = label
	}
	return g, nil
}

// AddPanel registers p. The panel starts hidden.
func (r *Registry) AddPanel(p *Panel) error {
	if p.ID == "" {
		return fmt.Errorf("panel: %w", ErrEmptyID)
	}
	if p.Group == "" {
		return fmt.Errorf("panel %q group: %w", p.ID, ErrEmptyID)
	}
	if _, exists := r.panelIDs[p.ID]; exists {
		return fmt.Errorf("panel %q: %w", p.ID, ErrDuplicateID)
	}
	if p.Kind == "" {
		p.Kind = KindMarkdown
	}
	p.visibility = Hidden
	g := r.group(p.Group)
	g.Panels = append(g.Panels, p)
	r.panels = append(r.panels, p)
	r.panelIDs[p.ID] = p
	return nil
}

// AddControl registers c. The control starts inactive.
func (r *Registry) AddControl(c *Control) error {
	if c.ID == "" {
		return fmt.Errorf("control: %w", ErrEmptyID)
	}
	if c.Group == "" {
		return fmt.Errorf("control %q group: %w", c.ID, ErrEmptyID)
	}
	if _, exists := r.controlIDs[c.ID]; exists {
		return fmt.Errorf("control %q: %w", c.ID, ErrDuplicateID)
	}
	if c.Key != 0 {
		if other, taken := r.keys[c.Key]; taken {
			return fmt.Errorf("control %q key %q already bound to %q: %w", c.ID, string(c.Key), other.ID, ErrDuplicateID)
		}
		r.keys[c.Key] = c
	}
	c.active = false
	g := r.group(c.Group)
	if g.Label == "" {
		g.Label = c.Label
	}
	g.Controls = append(g.Controls, c)
	r.controls = append(r.controls, c)
	r.controlIDs[c.ID] = c
	return nil
}

func (r *Registry) group(id string) *Group {
	g, ok := r.groups[id]
	if !ok {
		g = &Group{ID: id, Label: id}
		r.groups[id] = g
		r.order = append(r.order, id)
	}
	return g
}

// Group returns the group with the given id.
func (r *Registry) Group(id string) (*Group, bool) {
	g, ok := r.groups[id]
	return g, ok
}

// Groups returns all groups in registration order.
func (r *Registry) Groups() []*Group {
	out := make([]*Group, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.groups[id])
	}
	return out
}

// GroupIDs returns group ids in registration order.
func (r *Registry) GroupIDs() []string {
	return append([]string(nil), r.order...)
}

// Panels returns every panel regardless of group.
func (r *Registry) Panels() []*Panel { return r.panels }

// Controls returns every control regardless of group.
func (r *Registry) Controls() []*Control { return r.controls }

// ControlByID looks up a control.
func (r *Registry) ControlByID(id string) (*Control, bool) {
	c, ok := r.controlIDs[id]
	return c, ok
}

// ControlForKey returns the control bound to the shortcut key.
func (r *Registry) ControlForKey(key rune) (*Control, bool) {
	c, ok := r.keys[key]
	return c, ok
}

// PrimaryControl returns the first control of a group.
func (r *Registry) PrimaryControl(group string) (*Control, bool) {
	g, ok := r.groups[group]
	if !ok || len(g.Controls) == 0 {
		return nil, false
	}
	return g.Controls[0], true
}

// Neighbor returns the group id delta steps away from group in registration
// order, wrapping around. An unknown group starts from the first group.
func (r *Registry) Neighbor(group string, delta int) string {
	n := len(r.order)
	if n == 0 {
		return ""
	}
	idx := -1
	for i, id := range r.order {
		if id == group {
			idx = i
			break
		}
	}
	if idx < 0 {
		return r.order[0]
	}
	return r.order[((idx+delta)%n+n)%n]
}
