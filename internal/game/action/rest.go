package action

import (
	"context"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

const restCost = 2

// RestAction recovers HP in place. It is the standard remedy planned for
// the rest_to_full sub-goal.
type RestAction struct {
	descriptor
	client gameapi.Client
}

// NewRestAction builds the rest action. There is exactly one per universe;
// its name is the constant "rest".
func NewRestAction(client gameapi.Client) (*RestAction, error) {
	desc, err := newDescriptor(
		"rest",
		restCost,
		state.State{state.KeyCanRest: state.Bool(true)},
		state.State{
			state.KeyHPFull:   state.Bool(true),
			state.KeyHPLow:    state.Bool(false),
			state.KeyCanFight: state.Bool(true),
		},
	)
	if err != nil {
		return nil, err
	}
	return &RestAction{descriptor: desc, client: client}, nil
}

// Execute issues remote rests until HP is full. The server recovers a
// fraction per call, so one symbolic rest may span several API calls.
func (a *RestAction) Execute(ctx context.Context, character string, s state.State) (*Result, error) {
	const maxRounds = 20

	var last *gameapi.ActionOutcome
	for i := 0; i < maxRounds; i++ {
		out, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
			return a.client.Rest(ctx, character)
		})
		if err != nil {
			if isGameError(err) {
				return Fail(fmt.Sprintf("%s: %v", a.Name(), err)), nil
			}
			return nil, fmt.Errorf("action.RestAction.Execute: %w", err)
		}
		last = out
		if out.Character == nil || out.Character.HP >= out.Character.MaxHP {
			break
		}
	}

	changes := state.State{
		state.KeyHPFull:   state.Bool(true),
		state.KeyHPLow:    state.Bool(false),
		state.KeyCanFight: state.Bool(true),
	}
	cooldown := last.Cooldown
	if last.Character != nil {
		changes.Merge(vitalsChanges(last.Character))
	}
	return Succeed("rested to full HP", changes, cooldown), nil
}

// RestFactory emits the single rest action.
type RestFactory struct {
	client gameapi.Client
}

// NewRestFactory builds a RestFactory.
func NewRestFactory(client gameapi.Client) *RestFactory {
	return &RestFactory{client: client}
}

// ActionType identifies this factory.
func (f *RestFactory) ActionType() string { return "rest" }

// CreateInstances returns the one rest action.
func (f *RestFactory) CreateInstances(_ *world.Snapshot, _ state.State) ([]Action, error) {
	a, err := NewRestAction(f.client)
	if err != nil {
		return nil, err
	}
	return []Action{a}, nil
}
