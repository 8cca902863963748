// Package character maps the live character snapshot into the symbolic
// world state the planner reasons over.
package character

import (
	"time"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

// LowHPThreshold is the fraction of max HP below which hp_low is set and
// can_fight is withdrawn.
const LowHPThreshold = 0.3

// BuildState derives the full symbolic state for snap at now.
//
// The world snapshot supplies location-context facts (at_bank,
// at_monster_location, ...) for the tile the character stands on; ws may be
// nil, in which case those facts default to false.
//
// Precondition: snap must not be nil.
// Postcondition: every key of the result belongs to the state vocabulary.
func BuildState(snap *gameapi.CharacterSnapshot, ws *world.Snapshot, now time.Time) state.State {
	alive := snap.HP > 0
	hpFull := snap.HP >= snap.MaxHP
	hpLow := snap.MaxHP > 0 && float64(snap.HP) < float64(snap.MaxHP)*LowHPThreshold
	cooldownReady := !snap.CooldownUntil.After(now)
	invCount := snap.InventoryCount()
	invFull := snap.InventoryMax > 0 && invCount >= snap.InventoryMax

	s := state.State{
		state.KeyCharacterLevel: state.Int(snap.Level),
		state.KeyCharacterXP:    state.Int(snap.XP),
		state.KeyCharacterGold:  state.Int(snap.Gold),
		state.KeyAlive:          state.Bool(alive),

		state.KeyHPCurrent: state.Int(snap.HP),
		state.KeyHPMax:     state.Int(snap.MaxHP),
		state.KeyHPFull:    state.Bool(hpFull),
		state.KeyHPLow:     state.Bool(hpLow),

		state.KeyCurrentX: state.Int(snap.X),
		state.KeyCurrentY: state.Int(snap.Y),

		state.KeyCooldownReady: state.Bool(cooldownReady),
		state.KeyCanMove:       state.Bool(alive && cooldownReady),
		state.KeyCanFight:      state.Bool(alive && cooldownReady && !hpLow),
		state.KeyCanGather:     state.Bool(alive && cooldownReady && !invFull),
		state.KeyCanCraft:      state.Bool(alive && cooldownReady),
		state.KeyCanRest:       state.Bool(alive && cooldownReady && !hpFull),

		state.KeyMiningLevel:          state.Int(snap.MiningLevel),
		state.KeyWoodcuttingLevel:     state.Int(snap.WoodcuttingLevel),
		state.KeyFishingLevel:         state.Int(snap.FishingLevel),
		state.KeyWeaponcraftingLevel:  state.Int(snap.WeaponcraftingLevel),
		state.KeyGearcraftingLevel:    state.Int(snap.GearcraftingLevel),
		state.KeyJewelrycraftingLevel: state.Int(snap.JewelrycraftingLevel),
		state.KeyCookingLevel:         state.Int(snap.CookingLevel),
		state.KeyAlchemyLevel:         state.Int(snap.AlchemyLevel),

		state.KeyWeaponSlot:    state.Str(snap.Equipment.Weapon),
		state.KeyShieldSlot:    state.Str(snap.Equipment.Shield),
		state.KeyHelmetSlot:    state.Str(snap.Equipment.Helmet),
		state.KeyBodyArmorSlot: state.Str(snap.Equipment.BodyArmor),
		state.KeyLegArmorSlot:  state.Str(snap.Equipment.LegArmor),
		state.KeyBootsSlot:     state.Str(snap.Equipment.Boots),
		state.KeyAmuletSlot:    state.Str(snap.Equipment.Amulet),
		state.KeyRing1Slot:     state.Str(snap.Equipment.Ring1),
		state.KeyRing2Slot:     state.Str(snap.Equipment.Ring2),

		state.KeyWeaponEquipped: state.Bool(snap.Equipment.Weapon != ""),
		state.KeyShieldEquipped: state.Bool(snap.Equipment.Shield != ""),
		state.KeyArmorEquipped:  state.Bool(snap.Equipment.BodyArmor != ""),

		state.KeyInventoryCount:          state.Int(invCount),
		state.KeyInventoryMax:            state.Int(snap.InventoryMax),
		state.KeyInventoryFull:           state.Bool(invFull),
		state.KeyInventorySpaceAvailable: state.Bool(!invFull),

		// Cycle outcome facts reset on every fresh build.
		state.KeyXPGained:           state.Bool(false),
		state.KeySkillXPGained:      state.Bool(false),
		state.KeyResourceGathered:   state.Bool(false),
		state.KeyItemCrafted:        state.Bool(false),
		state.KeyInventoryDeposited: state.Bool(false),

		state.KeyTaskAssigned: state.Bool(snap.Task.Code != ""),
		state.KeyTaskComplete: state.Bool(snap.Task.Code != "" && snap.Task.Progress >= snap.Task.Total),
		state.KeyTaskCode:     state.Str(snap.Task.Code),
		state.KeyTaskType:     state.Str(snap.Task.Type),
		state.KeyTaskProgress: state.Int(snap.Task.Progress),
		state.KeyTaskTotal:    state.Int(snap.Task.Total),
	}

	applyLocationContext(s, snap, ws)
	return s
}

// applyLocationContext sets the location fact family for the tile under the
// character. Off-map coordinates and a nil snapshot both read as plain
// terrain.
func applyLocationContext(s state.State, snap *gameapi.CharacterSnapshot, ws *world.Snapshot) {
	var tile *world.Tile
	if ws != nil {
		tile, _ = ws.TileAt(world.Coord{X: snap.X, Y: snap.Y})
	}

	contentType := world.ContentNone
	contentCode := ""
	if tile != nil {
		contentType = tile.ContentType
		contentCode = tile.ContentCode
	}

	s[state.KeyAtBank] = state.Bool(contentType == world.ContentBank)
	s[state.KeyAtMonsterLocation] = state.Bool(contentType == world.ContentMonster)
	s[state.KeyAtResourceLocation] = state.Bool(contentType == world.ContentResource)
	s[state.KeyAtWorkshop] = state.Bool(contentType == world.ContentWorkshop)
	s[state.KeyAtGrandExchange] = state.Bool(contentType == world.ContentGrandExchange)
	s[state.KeyAtTaskMaster] = state.Bool(contentType == world.ContentTaskMaster)
	s[state.KeyAtSafeLocation] = state.Bool(contentType != world.ContentMonster)

	switch contentType {
	case world.ContentMonster:
		s[state.KeyLocationMonster] = state.Str(contentCode)
		s[state.KeyLocationResource] = state.Str("")
		s[state.KeyLocationWorkshop] = state.Str("")
	case world.ContentResource:
		s[state.KeyLocationMonster] = state.Str("")
		s[state.KeyLocationResource] = state.Str(contentCode)
		s[state.KeyLocationWorkshop] = state.Str("")
	case world.ContentWorkshop:
		s[state.KeyLocationMonster] = state.Str("")
		s[state.KeyLocationResource] = state.Str("")
		s[state.KeyLocationWorkshop] = state.Str(contentCode)
	default:
		s[state.KeyLocationMonster] = state.Str("")
		s[state.KeyLocationResource] = state.Str("")
		s[state.KeyLocationWorkshop] = state.Str("")
	}
}
