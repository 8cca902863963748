package planner_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/planner"
	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"pgregory.net/rapid"
)

// stubAction is a pure planning-surface action; Execute is never reached
// by the planner.
type stubAction struct {
	name string
	cost int
	pre  state.State
	eff  state.State
}

func (a *stubAction) Name() string               { return a.name }
func (a *stubAction) Cost() int                  { return a.cost }
func (a *stubAction) Preconditions() state.State { return a.pre.Clone() }
func (a *stubAction) Effects() state.State       { return a.eff.Clone() }
func (a *stubAction) CanExecute(s state.State) bool {
	return s.Satisfies(a.pre)
}
func (a *stubAction) Execute(context.Context, string, state.State) (*action.Result, error) {
	return action.Succeed(a.name, a.eff.Clone(), 0), nil
}

func planNames(p *planner.Plan) []string {
	names := make([]string, 0, p.Len())
	for _, a := range p.Actions {
		names = append(names, a.Name())
	}
	return names
}

func TestPlan_AlreadySatisfied(t *testing.T) {
	p := planner.New(0)
	current := state.State{state.KeyXPGained: state.Bool(true)}
	goal := state.State{state.KeyXPGained: state.Bool(true)}

	plan, err := p.Plan(current, goal, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.Empty() || plan.TotalCost != 0 {
		t.Fatalf("expected empty zero-cost plan, got %v cost %d", planNames(plan), plan.TotalCost)
	}
	if plan.String() != "(already satisfied)" {
		t.Fatalf("String() = %q", plan.String())
	}
	if plan.ID == "" {
		t.Fatal("empty plan still needs an ID")
	}
}

func TestPlan_ChainsMoveThenFight(t *testing.T) {
	move := &stubAction{
		name: "move_1_0",
		cost: 1,
		pre:  state.State{state.KeyCanMove: state.Bool(true)},
		eff:  state.State{state.KeyAtMonsterLocation: state.Bool(true)},
	}
	fight := &stubAction{
		name: "fight_chicken_1_0",
		cost: 11,
		pre:  state.State{state.KeyAtMonsterLocation: state.Bool(true)},
		eff:  state.State{state.KeyXPGained: state.Bool(true)},
	}
	current := state.State{
		state.KeyCanMove:           state.Bool(true),
		state.KeyAtMonsterLocation: state.Bool(false),
	}
	goal := state.State{state.KeyXPGained: state.Bool(true)}

	plan, err := planner.New(0).Plan(current, goal, []action.Action{fight, move})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	got := planNames(plan)
	if len(got) != 2 || got[0] != "move_1_0" || got[1] != "fight_chicken_1_0" {
		t.Fatalf("plan = %v", got)
	}
	if plan.TotalCost != 12 {
		t.Fatalf("TotalCost = %d, want 12", plan.TotalCost)
	}
	if plan.String() != "move_1_0 -> fight_chicken_1_0" {
		t.Fatalf("String() = %q", plan.String())
	}
}

func TestPlan_PrefersCheaperPath(t *testing.T) {
	goal := state.State{state.KeyXPGained: state.Bool(true)}
	cheap := &stubAction{name: "cheap", cost: 2, eff: goal.Clone()}
	dear := &stubAction{name: "dear", cost: 9, eff: goal.Clone()}

	plan, err := planner.New(0).Plan(state.State{}, goal, []action.Action{dear, cheap})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := planNames(plan); len(got) != 1 || got[0] != "cheap" {
		t.Fatalf("plan = %v, want [cheap]", got)
	}
}

func TestPlan_UnreachableGoal(t *testing.T) {
	// No action produces item_crafted, so the frontier drains.
	a := &stubAction{name: "noop", cost: 1, eff: state.State{state.KeyXPGained: state.Bool(true)}}
	goal := state.State{state.KeyItemCrafted: state.Bool(true)}

	_, err := planner.New(0).Plan(state.State{}, goal, []action.Action{a})
	if !errors.Is(err, planner.ErrNoPlan) {
		t.Fatalf("expected ErrNoPlan, got %v", err)
	}
	if !strings.Contains(err.Error(), "search space exhausted") {
		t.Fatalf("error should name the exhausted frontier: %v", err)
	}
}

func TestPlan_NodeBudgetExhausted(t *testing.T) {
	// A two-step goal with a budget of one expansion: the root is popped
	// and the budget is gone before the goal state is ever reached.
	step1 := &stubAction{name: "step1", cost: 1, eff: state.State{state.KeyAtBank: state.Bool(true)}}
	step2 := &stubAction{
		name: "step2",
		cost: 1,
		pre:  state.State{state.KeyAtBank: state.Bool(true)},
		eff:  state.State{state.KeyInventoryDeposited: state.Bool(true)},
	}
	goal := state.State{state.KeyInventoryDeposited: state.Bool(true)}

	_, err := planner.New(1).Plan(state.State{}, goal, []action.Action{step1, step2})
	if !errors.Is(err, planner.ErrNoPlan) {
		t.Fatalf("expected ErrNoPlan, got %v", err)
	}
	if !strings.Contains(err.Error(), "node budget") {
		t.Fatalf("error should name the budget: %v", err)
	}
}

func TestPlan_NeverEmptyForUnsatisfiedGoal(t *testing.T) {
	goal := state.State{state.KeyXPGained: state.Bool(true)}
	a := &stubAction{name: "earn", cost: 1, eff: goal.Clone()}
	plan, err := planner.New(0).Plan(state.State{}, goal, []action.Action{a})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Empty() {
		t.Fatal("unsatisfied goal must never yield the empty plan")
	}
}

// Property: identical inputs always produce the identical action sequence.
func TestProperty_PlanningIsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "actions")
		gates := []state.Key{
			state.KeyAtBank, state.KeyAtWorkshop, state.KeyAtMonsterLocation,
			state.KeyHPFull, state.KeyWeaponEquipped,
		}
		var available []action.Action
		for i := 0; i < n; i++ {
			gate := gates[rapid.IntRange(0, len(gates)-1).Draw(rt, "gate")]
			a := &stubAction{
				name: "a" + string(rune('0'+i)),
				cost: rapid.IntRange(1, 5).Draw(rt, "cost"),
				eff:  state.State{gate: state.Bool(true)},
			}
			if rapid.Bool().Draw(rt, "chained") {
				a.eff[state.KeyXPGained] = state.Bool(true)
			}
			available = append(available, a)
		}
		goal := state.State{state.KeyXPGained: state.Bool(true)}

		p := planner.New(0)
		first, err1 := p.Plan(state.State{}, goal, available)
		second, err2 := p.Plan(state.State{}, goal, available)
		if (err1 == nil) != (err2 == nil) {
			rt.Fatalf("outcome diverged: %v vs %v", err1, err2)
		}
		if err1 != nil {
			if !errors.Is(err1, planner.ErrNoPlan) {
				rt.Fatalf("unexpected error: %v", err1)
			}
			return
		}
		if first.String() != second.String() {
			rt.Fatalf("plans diverged: %q vs %q", first, second)
		}
		if first.TotalCost != second.TotalCost {
			rt.Fatalf("costs diverged: %d vs %d", first.TotalCost, second.TotalCost)
		}
	})
}
