package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

// MoveAction moves the character to a fixed target tile. Its effects carry
// the destination's location-context facts so downstream actions (fight at
// a monster tile, craft at a workshop) chain off a move in search.
type MoveAction struct {
	descriptor
	client gameapi.Client
	target world.Coord
}

// NewMoveAction builds a move to target. tile may be nil for plain terrain.
//
// Postcondition: the derived name is a pure function of target.
func NewMoveAction(client gameapi.Client, from, target world.Coord, tile *world.Tile, costs MoveCostProvider) (*MoveAction, error) {
	eff := tileFacts(target, tile)
	desc, err := newDescriptor(
		"move_"+coordName(target),
		costs.MoveCost(from, target),
		state.State{state.KeyCanMove: state.Bool(true)},
		eff,
	)
	if err != nil {
		return nil, err
	}
	return &MoveAction{descriptor: desc, client: client, target: target}, nil
}

// Execute issues the remote move. Arriving at a tile the character already
// occupies is a success, not an error.
func (a *MoveAction) Execute(ctx context.Context, character string, s state.State) (*Result, error) {
	if currentCoord(s) == a.target {
		return Succeed(fmt.Sprintf("already at (%d,%d)", a.target.X, a.target.Y), a.Effects(), 0), nil
	}

	out, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
		return a.client.Move(ctx, character, a.target.X, a.target.Y)
	})
	if err != nil {
		return a.translateError(err)
	}

	changes := a.Effects()
	if out.Character != nil {
		changes.Merge(vitalsChanges(out.Character))
		// Authoritative position wins over the declared destination.
		changes[state.KeyCurrentX] = state.Int(out.Character.X)
		changes[state.KeyCurrentY] = state.Int(out.Character.Y)
	}
	return Succeed(fmt.Sprintf("moved to (%d,%d)", a.target.X, a.target.Y), changes, out.Cooldown), nil
}

func (a *MoveAction) translateError(err error) (*Result, error) {
	switch {
	case errors.Is(err, gameapi.ErrCharacterDead):
		return FailWithRequests(
			fmt.Sprintf("%s: character is dead", a.Name()),
			SubGoalRequest{
				GoalType:  SubGoalRestToFull,
				Priority:  9,
				Requester: a.Name(),
				Reason:    "cannot move while dead",
			},
		), nil
	case errors.Is(err, gameapi.ErrMaintenance):
		return Fail(fmt.Sprintf("%s: server in maintenance", a.Name())), nil
	case isGameError(err):
		return Fail(fmt.Sprintf("%s: %v", a.Name(), err)), nil
	default:
		return nil, fmt.Errorf("action.MoveAction.Execute: %w", err)
	}
}

// isGameError reports whether err is an ordinary game-level rejection, as
// opposed to a transport fault that must propagate.
func isGameError(err error) bool {
	var cd *gameapi.CooldownError
	var loss *gameapi.CombatLossError
	return errors.Is(err, gameapi.ErrInventoryFull) ||
		errors.Is(err, gameapi.ErrNotFound) ||
		errors.Is(err, gameapi.ErrInsufficientSkill) ||
		errors.Is(err, gameapi.ErrMissingItem) ||
		errors.Is(err, gameapi.ErrCharacterDead) ||
		errors.Is(err, gameapi.ErrMaintenance) ||
		errors.As(err, &cd) ||
		errors.As(err, &loss)
}

// MoveFactory emits one move action per content-bearing tile in the world
// snapshot, excluding the tile the character stands on.
type MoveFactory struct {
	client gameapi.Client
	costs  MoveCostProvider
}

// NewMoveFactory builds a MoveFactory; a nil costs falls back to Manhattan
// distance.
func NewMoveFactory(client gameapi.Client, costs MoveCostProvider) *MoveFactory {
	if costs == nil {
		costs = ManhattanCost{}
	}
	return &MoveFactory{client: client, costs: costs}
}

// ActionType identifies this factory.
func (f *MoveFactory) ActionType() string { return "move" }

// CreateInstances enumerates moves to every monster, resource, workshop,
// bank, grand-exchange, and task-master tile. Targets are deduplicated by
// coordinate; tiles duplicating the current position are skipped.
func (f *MoveFactory) CreateInstances(ws *world.Snapshot, s state.State) ([]Action, error) {
	if ws == nil {
		return nil, nil
	}
	from := currentCoord(s)

	var out []Action
	seen := map[world.Coord]struct{}{from: {}}
	add := func(tiles []*world.Tile) error {
		for _, t := range tiles {
			if _, dup := seen[t.Coord]; dup {
				continue
			}
			seen[t.Coord] = struct{}{}
			a, err := NewMoveAction(f.client, from, t.Coord, t, f.costs)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return nil
	}

	for _, code := range ws.MonsterCodes() {
		if err := add(ws.MonsterTiles(code)); err != nil {
			return nil, err
		}
	}
	for _, code := range ws.ResourceCodes() {
		if err := add(ws.ResourceTiles(code)); err != nil {
			return nil, err
		}
	}
	for _, skill := range ws.WorkshopSkills() {
		if err := add(ws.WorkshopTiles(skill)); err != nil {
			return nil, err
		}
	}
	if err := add(ws.BankTiles()); err != nil {
		return nil, err
	}
	return out, nil
}
