package tabs

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Event is the activation event delivered by a presentation layer.
// CurrentTarget is the control that triggered it.
type Event struct {
	CurrentTarget *Control
}

// Transition describes the outcome of a single activation.
type Transition struct {
	From           string
	To             string
	Matched        bool
	PanelsShown    int
	ControlsActive int
	Focus          string
	Duration       time.Duration
}

// Observer is notified after every activation. Observers run outside the
// switcher lock and may call back into the switcher.
type Observer interface {
	OnTransition(Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Transition)

func (f ObserverFunc) OnTransition(t Transition) { f(t) }

// Option configures a Switcher.
type Option func(*Switcher)

// WithLogger sets the logger used for activation traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Switcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver subscribes o at construction time.
func WithObserver(o Observer) Option {
	return func(s *Switcher) {
		s.subscribe(o)
	}
}

// Switcher owns the visibility and highlight state of a Registry.
// It is safe for concurrent use; activations are serialised.
type Switcher struct {
	mu      sync.Mutex
	reg     *Registry
	active  string
	focused *Control
	logger  *slog.Logger

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// NewSwitcher creates a switcher over reg. Nothing is shown until the first
// activation.
func NewSwitcher(reg *Registry, opts ...Option) *Switcher {
	s := &Switcher{
		reg:       reg,
		logger:    slog.Default(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate makes group the only visible group and moves focus to the
// event's control. An unknown group leaves every panel hidden and every
// control inactive. A nil CurrentTarget leaves focus where it was.
func (s *Switcher) Activate(ev Event, group string) {
	start := time.Now()

	s.mu.Lock()
	t := s.apply(ev, group)
	s.mu.Unlock()

	t.Duration = time.Since(start)
	s.notify(t)
}

// apply runs the ordered switching steps. Caller holds s.mu.
func (s *Switcher) apply(ev Event, group string) Transition {
	t := Transition{From: s.active, To: group}

	// Global reset first; the group-scoped steps below must run last.
	for _, p := range s.reg.panels {
		p.visibility = Hidden
	}
	for _, c := range s.reg.controls {
		c.active = false
	}

	s.active = ""
	if g, ok := s.reg.groups[group]; ok {
		for _, c := range g.Controls {
			c.active = true
		}
		for _, p := range g.Panels {
			p.visibility = Shown
		}
		t.Matched = len(g.Panels) > 0 || len(g.Controls) > 0
		t.PanelsShown = len(g.Panels)
		t.ControlsActive = len(g.Controls)
		// A declared group with no elements shows nothing, so none is active.
		if t.Matched {
			s.active = group
		}
	}

	if ev.CurrentTarget != nil {
		s.focused = ev.CurrentTarget
	}
	if s.focused != nil {
		t.Focus = s.focused.ID
	}

	if !t.Matched {
		s.logger.Debug("activation matched no elements", "group", group)
	} else {
		s.logger.Debug("group activated",
			"from", t.From,
			"to", group,
			"panels", t.PanelsShown,
			"controls", t.ControlsActive,
			"focus", t.Focus,
		)
	}
	return t
}

// Active returns the id of the visible group, or "" when none is.
func (s *Switcher) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Focused returns the control holding input focus.
func (s *Switcher) Focused() *Control {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Focus moves input focus without changing the active group.
func (s *Switcher) Focus(c *Control) {
	s.mu.Lock()
	s.focused = c
	s.mu.Unlock()
}

// Registry returns the registry currently driven by the switcher.
func (s *Switcher) Registry() *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg
}

// Replace swaps in a new registry. The active group is re-applied when the
// new registry still has it; otherwise fallback is activated. Focus follows
// the previously focused control id when it survives.
func (s *Switcher) Replace(reg *Registry, fallback string) {
	start := time.Now()

	s.mu.Lock()
	prevFocus := ""
	if s.focused != nil {
		prevFocus = s.focused.ID
	}
	group := s.active
	s.reg = reg
	s.focused = nil
	if _, ok := reg.groups[group]; !ok || group == "" {
		group = fallback
	}
	var target *Control
	if c, ok := reg.controlIDs[prevFocus]; ok {
		target = c
	} else if c, ok := reg.PrimaryControl(group); ok {
		target = c
	}
	t := s.apply(Event{CurrentTarget: target}, group)
	s.mu.Unlock()

	s.logger.Info("registry replaced", "groups", len(reg.order), "active", t.To)
	t.Duration = time.Since(start)
	s.notify(t)
}

// Subscribe registers o and returns a function that removes it.
func (s *Switcher) Subscribe(o Observer) (unsubscribe func()) {
	id := s.subscribe(o)
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Switcher) subscribe(o Observer) int {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return id
}

func (s *Switcher) notify(t Transition) {
	s.obsMu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	list := make([]Observer, 0, len(ids))
	for _, id := range ids {
		list = append(list, s.observers[id])
	}
	s.obsMu.Unlock()

	for _, o := range list {
		o.OnTransition(t)
	}
}
