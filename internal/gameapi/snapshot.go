package gameapi

import "time"

// EquipmentSlots holds the item code equipped in each slot; empty string
// means the slot is empty.
type EquipmentSlots struct {
	Weapon    string
	Shield    string
	Helmet    string
	BodyArmor string
	LegArmor  string
	Boots     string
	Amulet    string
	Ring1     string
	Ring2     string
}

// InventoryItem is one occupied inventory slot.
type InventoryItem struct {
	Code     string
	Quantity int
}

// TaskState is the character's current task-master assignment.
type TaskState struct {
	Code     string
	Type     string // "monsters" or "items"
	Progress int
	Total    int
}

// CharacterSnapshot is the raw live character state as returned by the
// remote API. It is the sole input to the symbolic state builder; the live
// snapshot always wins over derived symbolic facts on conflict.
type CharacterSnapshot struct {
	Name  string
	Level int
	XP    int
	Gold  int

	HP    int
	MaxHP int

	X int
	Y int

	MiningLevel          int
	WoodcuttingLevel     int
	FishingLevel         int
	WeaponcraftingLevel  int
	GearcraftingLevel    int
	JewelrycraftingLevel int
	CookingLevel         int
	AlchemyLevel         int

	Equipment     EquipmentSlots
	Inventory     []InventoryItem
	InventoryMax  int
	CooldownUntil time.Time

	Task TaskState
}

// InventoryCount returns the total number of items carried.
func (c *CharacterSnapshot) InventoryCount() int {
	n := 0
	for _, it := range c.Inventory {
		n += it.Quantity
	}
	return n
}

// HasItem reports whether the character carries at least quantity of code.
func (c *CharacterSnapshot) HasItem(code string, quantity int) bool {
	n := 0
	for _, it := range c.Inventory {
		if it.Code == code {
			n += it.Quantity
		}
	}
	return n >= quantity
}

// CooldownRemaining returns the time left on cooldown at now, or zero.
func (c *CharacterSnapshot) CooldownRemaining(now time.Time) time.Duration {
	if c.CooldownUntil.After(now) {
		return c.CooldownUntil.Sub(now)
	}
	return 0
}
