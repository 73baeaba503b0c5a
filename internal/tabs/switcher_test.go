package tabs

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newABC builds three groups with one panel and one control each.
func newABC(t *testing.T) (*Registry, map[string]*Control) {
	t.Helper()
	reg := NewRegistry()
	controls := make(map[string]*Control)
	for _, g := range []string{"A", "B", "C"} {
		require.NoError(t, reg.AddPanel(&Panel{ID: "panel-" + g, Group: g, Title: g}))
		c := &Control{ID: "control-" + g, Group: g, Label: g}
		require.NoError(t, reg.AddControl(c))
		controls[g] = c
	}
	return reg, controls
}

func TestActivate_ScenarioABC(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)
	s.Activate(Event{CurrentTarget: controls["A"]}, "A")

	s.Activate(Event{CurrentTarget: controls["B"]}, "B")

	st := s.Snapshot()
	assert.Equal(t, "B", st.Active)
	assert.Equal(t, []string{"panel-B"}, st.ShownPanels())
	assert.Equal(t, []string{"control-B"}, st.ActiveControls())
	assert.Equal(t, "control-B", st.Focused)
	assert.Same(t, controls["B"], s.Focused())
}

func TestActivate_MutualExclusivityAndHighlight(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddPanel(&Panel{ID: "p1", Group: "intro"}))
	require.NoError(t, reg.AddPanel(&Panel{ID: "p2", Group: "intro"}))
	require.NoError(t, reg.AddPanel(&Panel{ID: "p3", Group: "usage"}))
	require.NoError(t, reg.AddControl(&Control{ID: "c1", Group: "intro"}))
	require.NoError(t, reg.AddControl(&Control{ID: "c2", Group: "usage"}))
	require.NoError(t, reg.AddControl(&Control{ID: "c3", Group: "usage"}))

	s := NewSwitcher(reg)
	for _, g := range []string{"intro", "usage", "intro"} {
		s.Activate(Event{}, g)
		for _, p := range reg.Panels() {
			assert.Equal(t, p.Group == g, p.Visibility() == Shown, "panel %s after %s", p.ID, g)
		}
		for _, c := range reg.Controls() {
			assert.Equal(t, c.Group == g, c.Active(), "control %s after %s", c.ID, g)
		}
	}
}

func TestActivate_Idempotent(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)

	s.Activate(Event{CurrentTarget: controls["C"]}, "C")
	once := s.Snapshot()
	s.Activate(Event{CurrentTarget: controls["C"]}, "C")
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
}

func TestActivate_UnknownGroupHidesEverything(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)
	s.Activate(Event{CurrentTarget: controls["A"]}, "A")

	s.Activate(Event{CurrentTarget: controls["A"]}, "missing")

	st := s.Snapshot()
	assert.Empty(t, st.Active)
	assert.Empty(t, st.ShownPanels())
	assert.Empty(t, st.ActiveControls())
}

func TestActivate_EmptyDeclaredGroupIsNotActive(t *testing.T) {
	reg, controls := newABC(t)
	_, err := reg.AddGroup("empty", "Empty")
	require.NoError(t, err)
	s := NewSwitcher(reg)
	s.Activate(Event{CurrentTarget: controls["A"]}, "A")

	var got Transition
	s.Subscribe(ObserverFunc(func(tr Transition) { got = tr }))
	s.Activate(Event{}, "empty")

	assert.Empty(t, s.Active())
	st := s.Snapshot()
	assert.Empty(t, st.Active)
	assert.Empty(t, st.ShownPanels())
	assert.False(t, got.Matched)
}

func TestActivate_NilTargetKeepsFocus(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)
	s.Activate(Event{CurrentTarget: controls["A"]}, "A")

	s.Activate(Event{}, "C")

	assert.Equal(t, "C", s.Active())
	assert.Same(t, controls["A"], s.Focused())
}

func TestActivate_NotifiesObservers(t *testing.T) {
	reg, controls := newABC(t)
	var got []Transition
	s := NewSwitcher(reg, WithObserver(ObserverFunc(func(tr Transition) {
		got = append(got, tr)
	})))

	s.Activate(Event{CurrentTarget: controls["A"]}, "A")
	s.Activate(Event{CurrentTarget: controls["B"]}, "B")
	s.Activate(Event{}, "nope")

	require.Len(t, got, 3)
	assert.Equal(t, "", got[0].From)
	assert.Equal(t, "A", got[1].From)
	assert.Equal(t, "B", got[1].To)
	assert.True(t, got[1].Matched)
	assert.Equal(t, 1, got[1].PanelsShown)
	assert.Equal(t, 1, got[1].ControlsActive)
	assert.Equal(t, "control-B", got[1].Focus)
	assert.False(t, got[2].Matched)
}

func TestActivate_ReentrantObserver(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)
	calls := 0
	s.Subscribe(ObserverFunc(func(tr Transition) {
		calls++
		if tr.To == "A" {
			s.Activate(Event{CurrentTarget: controls["C"]}, "C")
		}
	}))

	s.Activate(Event{CurrentTarget: controls["A"]}, "A")

	assert.Equal(t, 2, calls)
	assert.Equal(t, "C", s.Active())
	assert.Equal(t, []string{"panel-C"}, s.Snapshot().ShownPanels())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	reg, _ := newABC(t)
	s := NewSwitcher(reg)
	calls := 0
	unsubscribe := s.Subscribe(ObserverFunc(func(Transition) { calls++ }))

	s.Activate(Event{}, "A")
	unsubscribe()
	s.Activate(Event{}, "B")

	assert.Equal(t, 1, calls)
}

func TestActivate_Concurrent(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		g := []string{"A", "B", "C"}[i%3]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Activate(Event{CurrentTarget: controls[g]}, g)
		}()
	}
	wg.Wait()

	st := s.Snapshot()
	require.Len(t, st.ShownPanels(), 1)
	require.Len(t, st.ActiveControls(), 1)
	assert.Equal(t, "panel-"+st.Active, st.ShownPanels()[0])
	assert.Equal(t, "control-"+st.Active, st.ActiveControls()[0])
}

func TestReplace_KeepsActiveGroup(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)
	s.Activate(Event{CurrentTarget: controls["B"]}, "B")

	next, _ := newABC(t)
	s.Replace(next, "A")

	assert.Equal(t, "B", s.Active())
	assert.Equal(t, "control-B", s.Focused().ID)
	assert.Same(t, next, s.Registry())
}

func TestReplace_FallsBackWhenGroupRemoved(t *testing.T) {
	reg, controls := newABC(t)
	s := NewSwitcher(reg)
	s.Activate(Event{CurrentTarget: controls["C"]}, "C")

	next := NewRegistry()
	require.NoError(t, next.AddPanel(&Panel{ID: "panel-A", Group: "A"}))
	require.NoError(t, next.AddControl(&Control{ID: "control-A", Group: "A"}))
	s.Replace(next, "A")

	assert.Equal(t, "A", s.Active())
	assert.Equal(t, "control-A", s.Focused().ID)
	assert.Equal(t, []string{"panel-A"}, s.Snapshot().ShownPanels())
}

func TestResolve_SuggestsClosestGroup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddControl(&Control{ID: "c1", Group: "overview"}))
	require.NoError(t, reg.AddControl(&Control{ID: "c2", Group: "usage"}))

	assert.NoError(t, reg.Resolve("usage"))

	err := reg.Resolve("overveiw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownGroup))
	var uge *UnknownGroupError
	require.True(t, errors.As(err, &uge))
	assert.Equal(t, "overview", uge.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "overview"`)

	err = reg.Resolve("something-else-entirely")
	require.ErrorAs(t, err, &uge)
	assert.Empty(t, uge.Suggestion)
}

func TestResolve_EmptyGroupIsUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.AddGroup("empty", "Empty")
	require.NoError(t, err)

	assert.ErrorIs(t, reg.Resolve("empty"), ErrUnknownGroup)
}
