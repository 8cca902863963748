package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

const equipCost = 1

// slotKey maps an equipment slot name to its item-code state key.
var slotKey = map[string]state.Key{
	"weapon":     state.KeyWeaponSlot,
	"shield":     state.KeyShieldSlot,
	"helmet":     state.KeyHelmetSlot,
	"body_armor": state.KeyBodyArmorSlot,
	"leg_armor":  state.KeyLegArmorSlot,
	"boots":      state.KeyBootsSlot,
	"amulet":     state.KeyAmuletSlot,
	"ring1":      state.KeyRing1Slot,
	"ring2":      state.KeyRing2Slot,
}

// slotOccupancyKey maps slots that carry a boolean occupancy fact.
var slotOccupancyKey = map[string]state.Key{
	"weapon":     state.KeyWeaponEquipped,
	"shield":     state.KeyShieldEquipped,
	"body_armor": state.KeyArmorEquipped,
}

// EquipAction equips a specific item into a specific slot.
type EquipAction struct {
	descriptor
	client   gameapi.Client
	itemCode string
	slot     string
}

// NewEquipAction builds an equip of itemCode into slot.
//
// Precondition: slot must name a known equipment slot.
func NewEquipAction(client gameapi.Client, itemCode, slot string) (*EquipAction, error) {
	codeKey, ok := slotKey[slot]
	if !ok {
		return nil, fmt.Errorf("action.NewEquipAction: unknown slot %q", slot)
	}
	eff := state.State{codeKey: state.Str(itemCode)}
	if occKey, hasOcc := slotOccupancyKey[slot]; hasOcc {
		eff[occKey] = state.Bool(true)
	}
	desc, err := newDescriptor(
		fmt.Sprintf("equip_%s_%s", slot, itemCode),
		equipCost,
		state.State{state.KeyAlive: state.Bool(true)},
		eff,
	)
	if err != nil {
		return nil, err
	}
	return &EquipAction{descriptor: desc, client: client, itemCode: itemCode, slot: slot}, nil
}

// Execute issues the remote equip, unequipping the slot first when the
// server reports it occupied. A missing item is terminal: whether to craft
// or withdraw it is a caller-level decision.
func (a *EquipAction) Execute(ctx context.Context, character string, s state.State) (*Result, error) {
	if stateStr(s, slotKey[a.slot], "") != "" {
		if _, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
			return a.client.Unequip(ctx, character, a.slot)
		}); err != nil && !isGameError(err) {
			return nil, fmt.Errorf("action.EquipAction.Execute: unequip: %w", err)
		}
	}

	out, err := apiCall(ctx, func(ctx context.Context) (*gameapi.ActionOutcome, error) {
		return a.client.Equip(ctx, character, a.itemCode, a.slot)
	})
	if err != nil {
		switch {
		case errors.Is(err, gameapi.ErrMissingItem):
			return Fail(fmt.Sprintf("%s: item not in inventory", a.Name())), nil
		case isGameError(err):
			return Fail(fmt.Sprintf("%s: %v", a.Name(), err)), nil
		default:
			return nil, fmt.Errorf("action.EquipAction.Execute: %w", err)
		}
	}

	changes := a.Effects()
	if out.Character != nil {
		changes.Merge(vitalsChanges(out.Character))
	}
	return Succeed(fmt.Sprintf("equipped %s in %s", a.itemCode, a.slot), changes, out.Cooldown), nil
}

// EquipFactory emits weapon equip actions for weapons at or below the
// character's level. The inventory check happens at execution time: the
// symbolic state cannot enumerate carried items, so a candidate the
// character lacks fails loudly rather than being filtered silently here.
type EquipFactory struct {
	client gameapi.Client
}

// NewEquipFactory builds an EquipFactory.
func NewEquipFactory(client gameapi.Client) *EquipFactory {
	return &EquipFactory{client: client}
}

// ActionType identifies this factory.
func (f *EquipFactory) ActionType() string { return "equip" }

// CreateInstances enumerates weapon equips in sorted item-code order,
// skipping the currently equipped weapon.
func (f *EquipFactory) CreateInstances(ws *world.Snapshot, s state.State) ([]Action, error) {
	if ws == nil {
		return nil, nil
	}
	level := stateInt(s, state.KeyCharacterLevel, 1)
	equipped := stateStr(s, state.KeyWeaponSlot, "")

	var out []Action
	for _, code := range ws.ItemCodes() {
		item, ok := ws.Item(code)
		if !ok || item.Type != "weapon" || item.Level > level || code == equipped {
			continue
		}
		a, err := NewEquipAction(f.client, code, "weapon")
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
