package tabs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/cucumber/godog"
)

var errNoControl = errors.New("no such control")

type switchingContext struct {
	reg      *Registry
	switcher *Switcher
}

func (sc *switchingContext) groupsWithOnePanelAndControl(a, b, c string) error {
	sc.reg = NewRegistry()
	for _, g := range []string{a, b, c} {
		if err := sc.reg.AddPanel(&Panel{ID: g, Group: g}); err != nil {
			return err
		}
		if err := sc.reg.AddControl(&Control{ID: g, Group: g, Label: g}); err != nil {
			return err
		}
	}
	sc.switcher = NewSwitcher(sc.reg)
	return nil
}

func (sc *switchingContext) groupIsActive(group string) error {
	return sc.activateFrom(group, group)
}

func (sc *switchingContext) activateFrom(group, control string) error {
	c, ok := sc.reg.ControlByID(control)
	if !ok {
		return fmt.Errorf("%w: %s", errNoControl, control)
	}
	sc.switcher.Activate(Event{CurrentTarget: c}, group)
	return nil
}

func (sc *switchingContext) onlyPanelShown(id string) error {
	return expectIDs("shown panels", sc.switcher.Snapshot().ShownPanels(), []string{id})
}

func (sc *switchingContext) onlyControlHighlighted(id string) error {
	return expectIDs("highlighted controls", sc.switcher.Snapshot().ActiveControls(), []string{id})
}

func (sc *switchingContext) noPanelShown() error {
	return expectIDs("shown panels", sc.switcher.Snapshot().ShownPanels(), nil)
}

func (sc *switchingContext) noControlHighlighted() error {
	return expectIDs("highlighted controls", sc.switcher.Snapshot().ActiveControls(), nil)
}

func (sc *switchingContext) focusIsOn(id string) error {
	if f := sc.switcher.Focused(); f == nil || f.ID != id {
		return fmt.Errorf("expected focus on %q, got %v", id, f)
	}
	return nil
}

func expectIDs(what string, got, want []string) error {
	if !slices.Equal(got, want) {
		return fmt.Errorf("%s: expected %v, got %v", what, want, got)
	}
	return nil
}

func InitializeSwitchingScenario(ctx *godog.ScenarioContext) {
	sc := &switchingContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*sc = switchingContext{}
		return ctx, nil
	})

	ctx.Step(`^groups "([^"]*)", "([^"]*)" and "([^"]*)" each with one panel and one control$`, sc.groupsWithOnePanelAndControl)
	ctx.Step(`^group "([^"]*)" is active$`, sc.groupIsActive)
	ctx.Step(`^I activate group "([^"]*)" from control "([^"]*)"$`, sc.activateFrom)
	ctx.Step(`^only panel "([^"]*)" is shown$`, sc.onlyPanelShown)
	ctx.Step(`^only control "([^"]*)" is highlighted$`, sc.onlyControlHighlighted)
	ctx.Step(`^no panel is shown$`, sc.noPanelShown)
	ctx.Step(`^no control is highlighted$`, sc.noControlHighlighted)
	ctx.Step(`^focus is on control "([^"]*)"$`, sc.focusIsOn)
}

func TestTabSwitchingFeature(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeSwitchingScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/tab_switching.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
