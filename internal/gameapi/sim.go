package gameapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
)

// Simulator is an in-process Client and CharacterFetcher backed by a
// world snapshot. It applies the game rules deterministically with a
// configurable cooldown, which makes it the backend for dry runs and for
// tests that need a full perceive/act round trip without a server.
//
// Invariant: all mutation happens under mu; snapshots handed out are
// copies, never aliases of the live character.
type Simulator struct {
	mu       sync.Mutex
	world    *world.Snapshot
	char     CharacterSnapshot
	cooldown time.Duration
	clock    func() time.Time
}

// NewSimulator creates a simulator for one character.
//
// Precondition: ws is non-nil; start.Name is non-empty.
func NewSimulator(ws *world.Snapshot, start CharacterSnapshot, cooldown time.Duration) *Simulator {
	if ws == nil {
		panic("gameapi.NewSimulator: world is nil")
	}
	if start.Name == "" {
		panic("gameapi.NewSimulator: character name is empty")
	}
	if start.InventoryMax <= 0 {
		start.InventoryMax = 100
	}
	return &Simulator{
		world:    ws,
		char:     start,
		cooldown: cooldown,
		clock:    time.Now,
	}
}

// SetClock replaces the time source. Tests use this to run without real
// cooldown waits.
func (s *Simulator) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// FetchCharacter returns a copy of the simulated character.
func (s *Simulator) FetchCharacter(_ context.Context, name string) (*CharacterSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != s.char.Name {
		return nil, fmt.Errorf("gameapi.Simulator.FetchCharacter: %s: %w", name, ErrNotFound)
	}
	cp := s.copyChar()
	return &cp, nil
}

func (s *Simulator) copyChar() CharacterSnapshot {
	cp := s.char
	cp.Inventory = append([]InventoryItem(nil), s.char.Inventory...)
	return cp
}

func (s *Simulator) outcome(xp int, drops []ItemDrop) *ActionOutcome {
	s.char.CooldownUntil = s.clock().Add(s.cooldown)
	cp := s.copyChar()
	return &ActionOutcome{
		Cooldown:  s.cooldown,
		Character: &cp,
		XPGained:  xp,
		Drops:     drops,
	}
}

func (s *Simulator) check(op, name string) error {
	if name != s.char.Name {
		return fmt.Errorf("gameapi.Simulator.%s: %s: %w", op, name, ErrNotFound)
	}
	if s.char.HP <= 0 {
		return ErrCharacterDead
	}
	if rem := s.char.CooldownRemaining(s.clock()); rem > 0 {
		return &CooldownError{Remaining: rem}
	}
	return nil
}

func (s *Simulator) tileHere() (*world.Tile, bool) {
	return s.world.TileAt(world.Coord{X: s.char.X, Y: s.char.Y})
}

// Move relocates the character. Moving to the current tile is rejected
// the way the live game rejects it.
func (s *Simulator) Move(_ context.Context, name string, x, y int) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("Move", name); err != nil {
		return nil, err
	}
	if s.char.X == x && s.char.Y == y {
		return nil, fmt.Errorf("gameapi.Simulator.Move: already at (%d,%d)", x, y)
	}
	s.char.X, s.char.Y = x, y
	return s.outcome(0, nil), nil
}

// Fight resolves combat on the current tile. The character wins when its
// level is at least the monster's; otherwise it loses half its HP and
// the fight reports a loss.
func (s *Simulator) Fight(_ context.Context, name string) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("Fight", name); err != nil {
		return nil, err
	}
	tile, ok := s.tileHere()
	if !ok || tile.ContentType != world.ContentMonster {
		return nil, fmt.Errorf("gameapi.Simulator.Fight: no monster here: %w", ErrNotFound)
	}
	m, ok := s.world.Monster(tile.ContentCode)
	if !ok {
		return nil, fmt.Errorf("gameapi.Simulator.Fight: unknown monster %s: %w", tile.ContentCode, ErrNotFound)
	}
	if s.char.Level < m.Level {
		s.char.HP /= 2
		s.char.CooldownUntil = s.clock().Add(s.cooldown)
		return nil, &CombatLossError{Monster: m.Code}
	}
	xp := 10 * m.Level
	s.char.XP += xp
	for s.char.XP >= s.char.Level*100 {
		s.char.XP -= s.char.Level * 100
		s.char.Level++
	}
	s.char.Gold += m.Level
	return s.outcome(xp, nil), nil
}

// Gather harvests the resource on the current tile. The gathered item
// carries the resource's own code.
func (s *Simulator) Gather(_ context.Context, name string) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("Gather", name); err != nil {
		return nil, err
	}
	tile, ok := s.tileHere()
	if !ok || tile.ContentType != world.ContentResource {
		return nil, fmt.Errorf("gameapi.Simulator.Gather: no resource here: %w", ErrNotFound)
	}
	r, ok := s.world.Resource(tile.ContentCode)
	if !ok {
		return nil, fmt.Errorf("gameapi.Simulator.Gather: unknown resource %s: %w", tile.ContentCode, ErrNotFound)
	}
	if lvl := s.skillLevel(r.Skill); lvl < r.Level {
		return nil, fmt.Errorf("gameapi.Simulator.Gather: %s level %d below %d: %w", r.Skill, lvl, r.Level, ErrInsufficientSkill)
	}
	if s.char.InventoryCount() >= s.char.InventoryMax {
		return nil, ErrInventoryFull
	}
	s.addItem(InventoryItem{Code: r.Code, Quantity: 1})
	return s.outcome(r.Level*5, []ItemDrop{{Code: r.Code, Quantity: 1}}), nil
}

// Craft produces an item at the workshop on the current tile, consuming
// the recipe inputs from the inventory.
func (s *Simulator) Craft(_ context.Context, name, itemCode string, quantity int) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("Craft", name); err != nil {
		return nil, err
	}
	tile, ok := s.tileHere()
	if !ok || tile.ContentType != world.ContentWorkshop {
		return nil, fmt.Errorf("gameapi.Simulator.Craft: no workshop here: %w", ErrNotFound)
	}
	item, ok := s.world.Item(itemCode)
	if !ok || item.Craft == nil {
		return nil, fmt.Errorf("gameapi.Simulator.Craft: %s not craftable: %w", itemCode, ErrNotFound)
	}
	if item.Craft.Skill != tile.ContentCode {
		return nil, fmt.Errorf("gameapi.Simulator.Craft: %s needs a %s workshop: %w", itemCode, item.Craft.Skill, ErrNotFound)
	}
	if lvl := s.skillLevel(item.Craft.Skill); lvl < item.Craft.Level {
		return nil, fmt.Errorf("gameapi.Simulator.Craft: %s level %d below %d: %w", item.Craft.Skill, lvl, item.Craft.Level, ErrInsufficientSkill)
	}
	batches := quantity
	if batches <= 0 {
		batches = 1
	}
	for _, in := range item.Craft.Inputs {
		if !s.char.HasItem(in.Code, in.Quantity*batches) {
			return nil, fmt.Errorf("gameapi.Simulator.Craft: need %dx %s: %w", in.Quantity*batches, in.Code, ErrMissingItem)
		}
	}
	for _, in := range item.Craft.Inputs {
		s.removeItem(in.Code, in.Quantity*batches)
	}
	per := item.Craft.Quantity
	if per <= 0 {
		per = 1
	}
	qty := per * batches
	s.addItem(InventoryItem{Code: itemCode, Quantity: qty})
	return s.outcome(item.Craft.Level*5*batches, []ItemDrop{{Code: itemCode, Quantity: qty}}), nil
}

// Rest restores a quarter of max HP per call and works while at zero HP.
func (s *Simulator) Rest(_ context.Context, name string) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != s.char.Name {
		return nil, fmt.Errorf("gameapi.Simulator.Rest: %s: %w", name, ErrNotFound)
	}
	if rem := s.char.CooldownRemaining(s.clock()); rem > 0 {
		return nil, &CooldownError{Remaining: rem}
	}
	s.char.HP += s.char.MaxHP / 4
	if s.char.HP > s.char.MaxHP {
		s.char.HP = s.char.MaxHP
	}
	if s.char.HP <= 0 {
		s.char.HP = 1
	}
	return s.outcome(0, nil), nil
}

// Equip places an inventory item into slot, failing when the item is not
// held or the slot is occupied.
func (s *Simulator) Equip(_ context.Context, name, itemCode, slot string) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("Equip", name); err != nil {
		return nil, err
	}
	ref := slotRef(&s.char.Equipment, slot)
	if ref == nil {
		return nil, fmt.Errorf("gameapi.Simulator.Equip: unknown slot %s", slot)
	}
	if !s.char.HasItem(itemCode, 1) {
		return nil, fmt.Errorf("gameapi.Simulator.Equip: %s not in inventory: %w", itemCode, ErrMissingItem)
	}
	if *ref != "" {
		return nil, fmt.Errorf("gameapi.Simulator.Equip: slot %s occupied by %s", slot, *ref)
	}
	s.removeItem(itemCode, 1)
	*ref = itemCode
	return s.outcome(0, nil), nil
}

// Unequip returns the item in slot to the inventory.
func (s *Simulator) Unequip(_ context.Context, name, slot string) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("Unequip", name); err != nil {
		return nil, err
	}
	ref := slotRef(&s.char.Equipment, slot)
	if ref == nil {
		return nil, fmt.Errorf("gameapi.Simulator.Unequip: unknown slot %s", slot)
	}
	if *ref == "" {
		return nil, fmt.Errorf("gameapi.Simulator.Unequip: slot %s empty: %w", slot, ErrMissingItem)
	}
	s.addItem(InventoryItem{Code: *ref, Quantity: 1})
	*ref = ""
	return s.outcome(0, nil), nil
}

// DepositItem moves a stack from the inventory into the bank on the
// current tile.
func (s *Simulator) DepositItem(_ context.Context, name, itemCode string, quantity int) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DepositItem", name); err != nil {
		return nil, err
	}
	tile, ok := s.tileHere()
	if !ok || tile.ContentType != world.ContentBank {
		return nil, fmt.Errorf("gameapi.Simulator.DepositItem: no bank here: %w", ErrNotFound)
	}
	if !s.char.HasItem(itemCode, quantity) {
		return nil, fmt.Errorf("gameapi.Simulator.DepositItem: %s: %w", itemCode, ErrMissingItem)
	}
	s.removeItem(itemCode, quantity)
	return s.outcome(0, nil), nil
}

// WithdrawItem always fails: the simulator does not track bank contents,
// so nothing is ever available to withdraw.
func (s *Simulator) WithdrawItem(_ context.Context, name, itemCode string, _ int) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("WithdrawItem", name); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("gameapi.Simulator.WithdrawItem: %s: %w", itemCode, ErrNotFound)
}

func slotRef(eq *EquipmentSlots, slot string) *string {
	switch slot {
	case "weapon":
		return &eq.Weapon
	case "shield":
		return &eq.Shield
	case "helmet":
		return &eq.Helmet
	case "body_armor":
		return &eq.BodyArmor
	case "leg_armor":
		return &eq.LegArmor
	case "boots":
		return &eq.Boots
	case "amulet":
		return &eq.Amulet
	case "ring1":
		return &eq.Ring1
	case "ring2":
		return &eq.Ring2
	default:
		return nil
	}
}

func (s *Simulator) skillLevel(skill string) int {
	switch skill {
	case "mining":
		return s.char.MiningLevel
	case "woodcutting":
		return s.char.WoodcuttingLevel
	case "fishing":
		return s.char.FishingLevel
	case "weaponcrafting":
		return s.char.WeaponcraftingLevel
	case "gearcrafting":
		return s.char.GearcraftingLevel
	case "jewelrycrafting":
		return s.char.JewelrycraftingLevel
	case "cooking":
		return s.char.CookingLevel
	case "alchemy":
		return s.char.AlchemyLevel
	default:
		return 0
	}
}

func (s *Simulator) addItem(it InventoryItem) {
	for i := range s.char.Inventory {
		if s.char.Inventory[i].Code == it.Code {
			s.char.Inventory[i].Quantity += it.Quantity
			return
		}
	}
	s.char.Inventory = append(s.char.Inventory, it)
}

func (s *Simulator) removeItem(code string, qty int) {
	for i := range s.char.Inventory {
		if s.char.Inventory[i].Code == code {
			s.char.Inventory[i].Quantity -= qty
			if s.char.Inventory[i].Quantity <= 0 {
				s.char.Inventory = append(s.char.Inventory[:i], s.char.Inventory[i+1:]...)
			}
			return
		}
	}
}
