package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

const depositCost = 4

// DepositAllAction deposits every carried item stack at the bank. It is the
// remedy planned for the deposit_inventory sub-goal.
type DepositAllAction struct {
	descriptor
	client  gameapi.Client
	fetcher gameapi.CharacterFetcher
	tile    *world.Tile
}

// NewDepositAllAction builds a deposit-all at the bank tile.
//
// Precondition: tile must not be nil and must be a bank tile.
func NewDepositAllAction(client gameapi.Client, fetcher gameapi.CharacterFetcher, tile *world.Tile) (*DepositAllAction, error) {
	if tile == nil || tile.ContentType != world.ContentBank {
		return nil, fmt.Errorf("action.NewDepositAllAction: tile must be a bank tile")
	}
	desc, err := newDescriptor(
		"deposit_all",
		depositCost,
		state.State{
			state.KeyAlive:  state.Bool(true),
			state.KeyAtBank: state.Bool(true),
		},
		state.State{
			state.KeyInventoryDeposited:      state.Bool(true),
			state.KeyInventoryFull:           state.Bool(false),
			state.KeyInventorySpaceAvailable: state.Bool(true),
			state.KeyInventoryCount:          state.Int(0),
		},
	)
	if err != nil {
		return nil, err
	}
	return &DepositAllAction{descriptor: desc, client: client, fetcher: fetcher, tile: tile}, nil
}

// Execute fetches the live inventory and deposits each stack in turn. The
// per-stack cooldowns are absorbed between calls; the returned cooldown is
// the final stack's.
func (a *DepositAllAction) Execute(ctx context.Context, character string, s state.State) (*Result, error) {
	snap, err := a.fetcher.FetchCharacter(ctx, character)
	if err != nil {
		return nil, fmt.Errorf("action.DepositAllAction.Execute: fetching inventory: %w", err)
	}

	var last *gameapi.ActionOutcome
	deposited := 0
	for _, item := range snap.Inventory {
		out, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
			return a.client.DepositItem(ctx, character, item.Code, item.Quantity)
		})
		if err != nil {
			if errors.Is(err, gameapi.ErrNotFound) {
				return FailWithRequests(
					fmt.Sprintf("%s: not at a bank", a.Name()),
					moveRequest(a.Name(), a.tile.Coord, 8, fmt.Sprintf("bank is at (%d,%d)", a.tile.Coord.X, a.tile.Coord.Y)),
				), nil
			}
			if isGameError(err) {
				return Fail(fmt.Sprintf("%s: %v", a.Name(), err)), nil
			}
			return nil, fmt.Errorf("action.DepositAllAction.Execute: %w", err)
		}
		last = out
		deposited++
	}

	changes := a.Effects()
	if last != nil && last.Character != nil {
		changes.Merge(vitalsChanges(last.Character))
	}
	result := Succeed(fmt.Sprintf("deposited %d stacks", deposited), changes, 0)
	if last != nil {
		result.Cooldown = last.Cooldown
	}
	return result, nil
}

// BankFactory emits the deposit-all action targeting the nearest bank.
type BankFactory struct {
	client  gameapi.Client
	fetcher gameapi.CharacterFetcher
}

// NewBankFactory builds a BankFactory.
func NewBankFactory(client gameapi.Client, fetcher gameapi.CharacterFetcher) *BankFactory {
	return &BankFactory{client: client, fetcher: fetcher}
}

// ActionType identifies this factory.
func (f *BankFactory) ActionType() string { return "bank" }

// CreateInstances returns one deposit-all at the nearest bank tile, or
// nothing when the map has no bank.
func (f *BankFactory) CreateInstances(ws *world.Snapshot, s state.State) ([]Action, error) {
	if ws == nil {
		return nil, nil
	}
	tile := world.NearestTile(currentCoord(s), ws.BankTiles())
	if tile == nil {
		return nil, nil
	}
	a, err := NewDepositAllAction(f.client, f.fetcher, tile)
	if err != nil {
		return nil, err
	}
	return []Action{a}, nil
}
