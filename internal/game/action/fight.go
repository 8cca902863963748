package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

// fightBaseCost keeps fights more expensive than short moves so the planner
// prefers the nearest viable monster when several satisfy a goal.
const fightBaseCost = 10

// FightAction fights the monster occupying a specific tile.
type FightAction struct {
	descriptor
	client  gameapi.Client
	monster *world.Monster
	tile    *world.Tile
}

// NewFightAction builds a fight against monster on tile.
//
// Precondition: monster and tile must not be nil; tile must hold monster.
func NewFightAction(client gameapi.Client, monster *world.Monster, tile *world.Tile) (*FightAction, error) {
	if monster == nil || tile == nil {
		return nil, fmt.Errorf("action.NewFightAction: monster and tile must not be nil")
	}
	desc, err := newDescriptor(
		fmt.Sprintf("fight_%s_%s", monster.Code, coordName(tile.Coord)),
		fightBaseCost+monster.Level,
		state.State{
			state.KeyCanFight:          state.Bool(true),
			state.KeyAtMonsterLocation: state.Bool(true),
			state.KeyLocationMonster:   state.Str(monster.Code),
		},
		state.State{
			state.KeyXPGained: state.Bool(true),
		},
	)
	if err != nil {
		return nil, err
	}
	return &FightAction{descriptor: desc, client: client, monster: monster, tile: tile}, nil
}

// Execute issues the remote fight and translates game-level rejections into
// remediable failures: not standing on the monster emits a move sub-goal,
// a lost fight emits rest (and equip, when the weapon slot is empty).
func (a *FightAction) Execute(ctx context.Context, character string, s state.State) (*Result, error) {
	out, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
		return a.client.Fight(ctx, character)
	})
	if err != nil {
		return a.translateError(err, s)
	}

	changes := state.State{state.KeyXPGained: state.Bool(true)}
	if out.Character != nil {
		changes.Merge(vitalsChanges(out.Character))
	}
	msg := fmt.Sprintf("defeated %s (+%d xp, +%d gold)", a.monster.Code, out.XPGained, out.GoldGained)
	return Succeed(msg, changes, out.Cooldown), nil
}

func (a *FightAction) translateError(err error, s state.State) (*Result, error) {
	var loss *gameapi.CombatLossError
	switch {
	case errors.Is(err, gameapi.ErrNotFound):
		return FailWithRequests(
			fmt.Sprintf("%s: monster not at current location", a.Name()),
			moveRequest(a.Name(), a.tile.Coord, 7, fmt.Sprintf("%s is at (%d,%d)", a.monster.Code, a.tile.Coord.X, a.tile.Coord.Y)),
		), nil
	case errors.As(err, &loss):
		requests := []SubGoalRequest{}
		if stateStr(s, state.KeyWeaponSlot, "") == "" {
			requests = append(requests, SubGoalRequest{
				GoalType:  SubGoalEquipWeapon,
				Priority:  8,
				Requester: a.Name(),
				Reason:    "lost fight with empty weapon slot",
			})
		}
		requests = append(requests, SubGoalRequest{
			GoalType:  SubGoalRestToFull,
			Priority:  6,
			Requester: a.Name(),
			Reason:    "recover HP before re-engaging",
		})
		return FailWithRequests(fmt.Sprintf("%s: lost fight", a.Name()), requests...), nil
	case errors.Is(err, gameapi.ErrCharacterDead):
		return FailWithRequests(
			fmt.Sprintf("%s: character is dead", a.Name()),
			SubGoalRequest{
				GoalType:  SubGoalRestToFull,
				Priority:  9,
				Requester: a.Name(),
				Reason:    "cannot fight while dead",
			},
		), nil
	case isGameError(err):
		return Fail(fmt.Sprintf("%s: %v", a.Name(), err)), nil
	default:
		return nil, fmt.Errorf("action.FightAction.Execute: %w", err)
	}
}

// maxMonsterLevelMargin bounds how far above the character's level a
// monster may be before the factory stops proposing the fight.
const maxMonsterLevelMargin = 2

// FightFactory emits one fight action per monster tile whose monster is
// within reach of the character's level.
type FightFactory struct {
	client gameapi.Client
}

// NewFightFactory builds a FightFactory.
func NewFightFactory(client gameapi.Client) *FightFactory {
	return &FightFactory{client: client}
}

// ActionType identifies this factory.
func (f *FightFactory) ActionType() string { return "fight" }

// CreateInstances enumerates fights for every tile of every monster at or
// below character level + maxMonsterLevelMargin, in sorted code order.
func (f *FightFactory) CreateInstances(ws *world.Snapshot, s state.State) ([]Action, error) {
	if ws == nil {
		return nil, nil
	}
	level := stateInt(s, state.KeyCharacterLevel, 1)

	var out []Action
	for _, code := range ws.MonsterCodes() {
		monster, ok := ws.Monster(code)
		if !ok || monster.Level > level+maxMonsterLevelMargin {
			continue
		}
		for _, tile := range ws.MonsterTiles(code) {
			a, err := NewFightAction(f.client, monster, tile)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	return out, nil
}
