package state

// Key identifies one fact in the symbolic world state.
//
// The vocabulary is closed: every Key used in a precondition, effect, or
// target state must be declared in this file. ValidateDict rejects anything
// else, so the planner never reasons over a fact it cannot name.
type Key string

// Character identity and progression.
const (
	KeyCharacterLevel Key = "character_level"
	KeyCharacterXP    Key = "character_xp"
	KeyCharacterGold  Key = "character_gold"
	KeyAlive          Key = "alive"
)

// Health.
const (
	KeyHPCurrent Key = "hp_current"
	KeyHPMax     Key = "hp_max"
	KeyHPFull    Key = "hp_full"
	KeyHPLow     Key = "hp_low"
)

// Position.
const (
	KeyCurrentX Key = "current_x"
	KeyCurrentY Key = "current_y"
)

// Cooldown and capability gates.
const (
	KeyCooldownReady Key = "cooldown_ready"
	KeyCanMove       Key = "can_move"
	KeyCanFight      Key = "can_fight"
	KeyCanGather     Key = "can_gather"
	KeyCanCraft      Key = "can_craft"
	KeyCanRest       Key = "can_rest"
)

// Skill levels.
const (
	KeyMiningLevel          Key = "mining_level"
	KeyWoodcuttingLevel     Key = "woodcutting_level"
	KeyFishingLevel         Key = "fishing_level"
	KeyWeaponcraftingLevel  Key = "weaponcrafting_level"
	KeyGearcraftingLevel    Key = "gearcrafting_level"
	KeyJewelrycraftingLevel Key = "jewelrycrafting_level"
	KeyCookingLevel         Key = "cooking_level"
	KeyAlchemyLevel         Key = "alchemy_level"
)

// Equipment slots. The string value is the equipped item code; an empty
// string means the slot is empty. The boolean *_equipped keys mirror the
// slots for preconditions that only care about occupancy.
const (
	KeyWeaponSlot     Key = "weapon_slot"
	KeyShieldSlot     Key = "shield_slot"
	KeyHelmetSlot     Key = "helmet_slot"
	KeyBodyArmorSlot  Key = "body_armor_slot"
	KeyLegArmorSlot   Key = "leg_armor_slot"
	KeyBootsSlot      Key = "boots_slot"
	KeyAmuletSlot     Key = "amulet_slot"
	KeyRing1Slot      Key = "ring1_slot"
	KeyRing2Slot      Key = "ring2_slot"
	KeyWeaponEquipped Key = "weapon_equipped"
	KeyShieldEquipped Key = "shield_equipped"
	KeyArmorEquipped  Key = "armor_equipped"
)

// Inventory.
const (
	KeyInventorySpaceAvailable Key = "inventory_space_available"
	KeyInventoryFull           Key = "inventory_full"
	KeyInventoryCount          Key = "inventory_count"
	KeyInventoryMax            Key = "inventory_max"
)

// Location context. These are derived from the world snapshot at state-build
// time so factories and preconditions can reason about "where am I standing"
// without touching map data.
const (
	KeyAtSafeLocation     Key = "at_safe_location"
	KeyAtBank             Key = "at_bank"
	KeyAtMonsterLocation  Key = "at_monster_location"
	KeyAtResourceLocation Key = "at_resource_location"
	KeyAtWorkshop         Key = "at_workshop"
	KeyAtGrandExchange    Key = "at_grand_exchange"
	KeyAtTaskMaster       Key = "at_task_master"
	KeyLocationMonster    Key = "location_monster"
	KeyLocationResource   Key = "location_resource"
	KeyLocationWorkshop   Key = "location_workshop"
)

// Cycle outcome facts. These start false in every freshly built state and
// are asserted by action effects within one plan, letting open-ended goals
// ("gain combat XP") terminate a single planning cycle.
const (
	KeyXPGained           Key = "xp_gained"
	KeySkillXPGained      Key = "skill_xp_gained"
	KeyResourceGathered   Key = "resource_gathered"
	KeyItemCrafted        Key = "item_crafted"
	KeyInventoryDeposited Key = "inventory_deposited"
)

// Task progress.
const (
	KeyTaskAssigned  Key = "task_assigned"
	KeyTaskComplete  Key = "task_complete"
	KeyTaskCode      Key = "task_code"
	KeyTaskProgress  Key = "task_progress"
	KeyTaskTotal     Key = "task_total"
	KeyTaskType      Key = "task_type"
	KeyBankGold      Key = "bank_gold"
	KeyBankItemCount Key = "bank_item_count"
)

// allKeys enumerates the full vocabulary. Keep in sync with the const
// blocks above; TestVocabularyClosed cross-checks it.
var allKeys = []Key{
	KeyCharacterLevel, KeyCharacterXP, KeyCharacterGold, KeyAlive,
	KeyHPCurrent, KeyHPMax, KeyHPFull, KeyHPLow,
	KeyCurrentX, KeyCurrentY,
	KeyCooldownReady, KeyCanMove, KeyCanFight, KeyCanGather, KeyCanCraft, KeyCanRest,
	KeyMiningLevel, KeyWoodcuttingLevel, KeyFishingLevel,
	KeyWeaponcraftingLevel, KeyGearcraftingLevel, KeyJewelrycraftingLevel,
	KeyCookingLevel, KeyAlchemyLevel,
	KeyWeaponSlot, KeyShieldSlot, KeyHelmetSlot, KeyBodyArmorSlot,
	KeyLegArmorSlot, KeyBootsSlot, KeyAmuletSlot, KeyRing1Slot, KeyRing2Slot,
	KeyWeaponEquipped, KeyShieldEquipped, KeyArmorEquipped,
	KeyInventorySpaceAvailable, KeyInventoryFull, KeyInventoryCount, KeyInventoryMax,
	KeyAtSafeLocation, KeyAtBank, KeyAtMonsterLocation, KeyAtResourceLocation,
	KeyAtWorkshop, KeyAtGrandExchange, KeyAtTaskMaster,
	KeyLocationMonster, KeyLocationResource, KeyLocationWorkshop,
	KeyXPGained, KeySkillXPGained, KeyResourceGathered, KeyItemCrafted,
	KeyInventoryDeposited,
	KeyTaskAssigned, KeyTaskComplete, KeyTaskCode, KeyTaskProgress,
	KeyTaskTotal, KeyTaskType,
	KeyBankGold, KeyBankItemCount,
}

var keyIndex = func() map[Key]struct{} {
	m := make(map[Key]struct{}, len(allKeys))
	for _, k := range allKeys {
		m[k] = struct{}{}
	}
	return m
}()

// IsKnown reports whether k belongs to the fixed vocabulary.
func IsKnown(k Key) bool {
	_, ok := keyIndex[k]
	return ok
}

// AllKeys returns a copy of the full vocabulary in declaration order.
func AllKeys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// SkillLevelKeys returns the level key of every tracked skill.
func SkillLevelKeys() []Key {
	return []Key{
		KeyMiningLevel, KeyWoodcuttingLevel, KeyFishingLevel,
		KeyWeaponcraftingLevel, KeyGearcraftingLevel, KeyJewelrycraftingLevel,
		KeyCookingLevel, KeyAlchemyLevel,
	}
}

// SkillLevelKey maps a skill name ("mining", "cooking", ...) to its level
// key, or false when the name is not a known skill.
func SkillLevelKey(skill string) (Key, bool) {
	switch skill {
	case "mining":
		return KeyMiningLevel, true
	case "woodcutting":
		return KeyWoodcuttingLevel, true
	case "fishing":
		return KeyFishingLevel, true
	case "weaponcrafting":
		return KeyWeaponcraftingLevel, true
	case "gearcrafting":
		return KeyGearcraftingLevel, true
	case "jewelrycrafting":
		return KeyJewelrycraftingLevel, true
	case "cooking":
		return KeyCookingLevel, true
	case "alchemy":
		return KeyAlchemyLevel, true
	default:
		return "", false
	}
}
