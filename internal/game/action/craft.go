package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

const craftBaseCost = 3

// CraftAction crafts one batch of an item at the workshop for its skill.
type CraftAction struct {
	descriptor
	client gameapi.Client
	item   *world.Item
	tile   *world.Tile
}

// NewCraftAction builds a craft of item at the workshop tile.
//
// Precondition: item, item.Craft, and tile must not be nil.
func NewCraftAction(client gameapi.Client, item *world.Item, tile *world.Tile) (*CraftAction, error) {
	if item == nil || item.Craft == nil || tile == nil {
		return nil, fmt.Errorf("action.NewCraftAction: item with recipe and tile must not be nil")
	}
	desc, err := newDescriptor(
		fmt.Sprintf("craft_%s_%s", item.Code, coordName(tile.Coord)),
		craftBaseCost+item.Craft.Level,
		state.State{
			state.KeyCanCraft:         state.Bool(true),
			state.KeyAtWorkshop:       state.Bool(true),
			state.KeyLocationWorkshop: state.Str(item.Craft.Skill),
		},
		state.State{
			state.KeyItemCrafted:   state.Bool(true),
			state.KeySkillXPGained: state.Bool(true),
		},
	)
	if err != nil {
		return nil, err
	}
	return &CraftAction{descriptor: desc, client: client, item: item, tile: tile}, nil
}

// Execute issues the remote craft for one batch.
func (a *CraftAction) Execute(ctx context.Context, character string, s state.State) (*Result, error) {
	out, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
		return a.client.Craft(ctx, character, a.item.Code, 1)
	})
	if err != nil {
		return a.translateError(err)
	}

	changes := state.State{
		state.KeyItemCrafted:   state.Bool(true),
		state.KeySkillXPGained: state.Bool(true),
	}
	if out.Character != nil {
		changes.Merge(vitalsChanges(out.Character))
	}
	return Succeed(fmt.Sprintf("crafted %s", a.item.Code), changes, out.Cooldown), nil
}

func (a *CraftAction) translateError(err error) (*Result, error) {
	switch {
	case errors.Is(err, gameapi.ErrNotFound):
		return FailWithRequests(
			fmt.Sprintf("%s: not at a %s workshop", a.Name(), a.item.Craft.Skill),
			moveRequest(a.Name(), a.tile.Coord, 7, fmt.Sprintf("%s workshop is at (%d,%d)", a.item.Craft.Skill, a.tile.Coord.X, a.tile.Coord.Y)),
		), nil
	case errors.Is(err, gameapi.ErrMissingItem):
		// No generic remedy: acquiring ingredients is a caller-level goal,
		// not a one-step sub-goal.
		return Fail(fmt.Sprintf("%s: missing ingredients", a.Name())), nil
	case isGameError(err):
		return Fail(fmt.Sprintf("%s: %v", a.Name(), err)), nil
	default:
		return nil, fmt.Errorf("action.CraftAction.Execute: %w", err)
	}
}

// CraftFactory emits one craft action per craftable item whose skill level
// the character meets, at the nearest workshop for that skill.
type CraftFactory struct {
	client gameapi.Client
	// itemCodes restricts the universe when non-empty; an unrestricted
	// catalog of hundreds of recipes would bloat every planning call.
	itemCodes []string
}

// NewCraftFactory builds a CraftFactory. itemCodes may be nil to enumerate
// every craftable item the character can make.
func NewCraftFactory(client gameapi.Client, itemCodes []string) *CraftFactory {
	return &CraftFactory{client: client, itemCodes: itemCodes}
}

// ActionType identifies this factory.
func (f *CraftFactory) ActionType() string { return "craft" }

// CreateInstances enumerates crafts in sorted item-code order.
func (f *CraftFactory) CreateInstances(ws *world.Snapshot, s state.State) ([]Action, error) {
	if ws == nil {
		return nil, nil
	}

	codes := f.itemCodes
	if len(codes) == 0 {
		codes = craftableCodes(ws)
	}

	from := currentCoord(s)
	var out []Action
	for _, code := range codes {
		item, ok := ws.Item(code)
		if !ok || item.Craft == nil {
			continue
		}
		levelKey, known := state.SkillLevelKey(item.Craft.Skill)
		if !known || stateInt(s, levelKey, 0) < item.Craft.Level {
			continue
		}
		tile := world.NearestTile(from, ws.WorkshopTiles(item.Craft.Skill))
		if tile == nil {
			continue
		}
		a, err := NewCraftAction(f.client, item, tile)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func craftableCodes(ws *world.Snapshot) []string {
	var out []string
	for _, code := range ws.ItemCodes() {
		if it, ok := ws.Item(code); ok && it.Craft != nil {
			out = append(out, code)
		}
	}
	return out
}
