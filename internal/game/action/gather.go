package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

const gatherBaseCost = 5

// GatherAction gathers the resource occupying a specific tile.
type GatherAction struct {
	descriptor
	client   gameapi.Client
	resource *world.Resource
	tile     *world.Tile
}

// NewGatherAction builds a gather of resource on tile.
//
// Precondition: resource and tile must not be nil.
func NewGatherAction(client gameapi.Client, resource *world.Resource, tile *world.Tile) (*GatherAction, error) {
	if resource == nil || tile == nil {
		return nil, fmt.Errorf("action.NewGatherAction: resource and tile must not be nil")
	}
	desc, err := newDescriptor(
		fmt.Sprintf("gather_%s_%s", resource.Code, coordName(tile.Coord)),
		gatherBaseCost,
		state.State{
			state.KeyCanGather:               state.Bool(true),
			state.KeyAtResourceLocation:      state.Bool(true),
			state.KeyLocationResource:        state.Str(resource.Code),
			state.KeyInventorySpaceAvailable: state.Bool(true),
		},
		state.State{
			state.KeyResourceGathered: state.Bool(true),
			state.KeySkillXPGained:    state.Bool(true),
		},
	)
	if err != nil {
		return nil, err
	}
	return &GatherAction{descriptor: desc, client: client, resource: resource, tile: tile}, nil
}

// Execute issues the remote gather. A full inventory emits a deposit
// sub-goal; standing on the wrong tile emits a move sub-goal.
func (a *GatherAction) Execute(ctx context.Context, character string, s state.State) (*Result, error) {
	out, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
		return a.client.Gather(ctx, character)
	})
	if err != nil {
		return a.translateError(err)
	}

	changes := state.State{
		state.KeyResourceGathered: state.Bool(true),
		state.KeySkillXPGained:    state.Bool(true),
	}
	if out.Character != nil {
		changes.Merge(vitalsChanges(out.Character))
		invCount := out.Character.InventoryCount()
		invFull := out.Character.InventoryMax > 0 && invCount >= out.Character.InventoryMax
		changes[state.KeyInventoryCount] = state.Int(invCount)
		changes[state.KeyInventoryFull] = state.Bool(invFull)
		changes[state.KeyInventorySpaceAvailable] = state.Bool(!invFull)
	}
	return Succeed(fmt.Sprintf("gathered %s", a.resource.Code), changes, out.Cooldown), nil
}

func (a *GatherAction) translateError(err error) (*Result, error) {
	switch {
	case errors.Is(err, gameapi.ErrNotFound):
		return FailWithRequests(
			fmt.Sprintf("%s: resource not at current location", a.Name()),
			moveRequest(a.Name(), a.tile.Coord, 7, fmt.Sprintf("%s is at (%d,%d)", a.resource.Code, a.tile.Coord.X, a.tile.Coord.Y)),
		), nil
	case errors.Is(err, gameapi.ErrInventoryFull):
		return FailWithRequests(
			fmt.Sprintf("%s: inventory full", a.Name()),
			SubGoalRequest{
				GoalType:  SubGoalDepositInventory,
				Priority:  8,
				Requester: a.Name(),
				Reason:    "free inventory space before gathering",
			},
		), nil
	case isGameError(err):
		return Fail(fmt.Sprintf("%s: %v", a.Name(), err)), nil
	default:
		return nil, fmt.Errorf("action.GatherAction.Execute: %w", err)
	}
}

// GatherFactory emits one gather action per resource tile whose skill
// requirement the character already meets. The symbolic model cannot
// express "level >= n" preconditions, so the level gate lives here.
type GatherFactory struct {
	client gameapi.Client
}

// NewGatherFactory builds a GatherFactory.
func NewGatherFactory(client gameapi.Client) *GatherFactory {
	return &GatherFactory{client: client}
}

// ActionType identifies this factory.
func (f *GatherFactory) ActionType() string { return "gather" }

// CreateInstances enumerates gathers in sorted resource-code order.
func (f *GatherFactory) CreateInstances(ws *world.Snapshot, s state.State) ([]Action, error) {
	if ws == nil {
		return nil, nil
	}

	var out []Action
	for _, code := range ws.ResourceCodes() {
		resource, ok := ws.Resource(code)
		if !ok {
			continue
		}
		levelKey, known := state.SkillLevelKey(resource.Skill)
		if !known || stateInt(s, levelKey, 0) < resource.Level {
			continue
		}
		for _, tile := range ws.ResourceTiles(code) {
			a, err := NewGatherAction(f.client, resource, tile)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	return out, nil
}
