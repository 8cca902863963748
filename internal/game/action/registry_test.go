package action_test

import (
	"strings"
	"testing"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
	"github.com/blentz/artifactsmmo-sub007/internal/testutil"
)

// fetcherSnap backs the fake fetcher wherever a test needs one but its
// contents do not matter.
var fetcherSnap = gameapi.CharacterSnapshot{
	Name: "alpha", Level: 1, HP: 120, MaxHP: 120, InventoryMax: 100,
}

// testWorld holds two monsters (one out of reach for a fresh character),
// two resources (one skill-gated away), a workshop, and a bank.
func testWorld(t *testing.T) *world.Snapshot {
	t.Helper()
	tiles := []*world.Tile{
		{Coord: world.Coord{X: 0, Y: 0}, Name: "spawn"},
		{Coord: world.Coord{X: 1, Y: 0}, Name: "coop", ContentType: world.ContentMonster, ContentCode: "chicken"},
		{Coord: world.Coord{X: 4, Y: 0}, Name: "den", ContentType: world.ContentMonster, ContentCode: "wolf"},
		{Coord: world.Coord{X: 2, Y: 0}, Name: "vein", ContentType: world.ContentResource, ContentCode: "copper_rocks"},
		{Coord: world.Coord{X: 0, Y: 2}, Name: "grove", ContentType: world.ContentResource, ContentCode: "ash_tree"},
		{Coord: world.Coord{X: 0, Y: 1}, Name: "forge", ContentType: world.ContentWorkshop, ContentCode: "weaponcrafting"},
		{Coord: world.Coord{X: 3, Y: 3}, Name: "bank", ContentType: world.ContentBank},
	}
	monsters := []*world.Monster{
		{Code: "chicken", Name: "Chicken", Level: 1, HP: 60},
		{Code: "wolf", Name: "Wolf", Level: 8, HP: 240},
	}
	resources := []*world.Resource{
		{Code: "copper_rocks", Name: "Copper Rocks", Skill: "mining", Level: 1},
		{Code: "ash_tree", Name: "Ash Tree", Skill: "woodcutting", Level: 3},
	}
	items := []*world.Item{
		{Code: "wooden_stick", Name: "Wooden Stick", Type: "weapon", Level: 1},
		{
			Code: "copper_dagger", Name: "Copper Dagger", Type: "weapon", Level: 5,
			Craft: &world.CraftRecipe{
				Skill: "weaponcrafting", Level: 1, Quantity: 1,
				Inputs: []world.RecipeInput{{Code: "copper_ore", Quantity: 6}},
			},
		},
		{Code: "copper_ore", Name: "Copper Ore", Type: "resource", Level: 1},
	}
	snap, err := world.NewSnapshot(tiles, monsters, resources, items)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

// freshState is the symbolic state of a level-1 character at the spawn.
func freshState() state.State {
	return state.State{
		state.KeyCurrentX:                state.Int(0),
		state.KeyCurrentY:                state.Int(0),
		state.KeyCharacterLevel:          state.Int(1),
		state.KeyMiningLevel:             state.Int(1),
		state.KeyWoodcuttingLevel:        state.Int(1),
		state.KeyWeaponcraftingLevel:     state.Int(1),
		state.KeyCanMove:                 state.Bool(true),
		state.KeyWeaponSlot:              state.Str(""),
		state.KeyInventorySpaceAvailable: state.Bool(true),
	}
}

func universe(t *testing.T, s state.State) map[string]action.Action {
	t.Helper()
	client := testutil.NewFakeClient()
	r := action.DefaultRegistry(client, testutil.NewFakeFetcher(&fetcherSnap), nil)
	actions, err := r.GenerateActionsForState(s, testWorld(t))
	if err != nil {
		t.Fatalf("GenerateActionsForState: %v", err)
	}
	byName := make(map[string]action.Action, len(actions))
	for _, a := range actions {
		if _, dup := byName[a.Name()]; dup {
			t.Fatalf("duplicate name %q escaped the registry", a.Name())
		}
		byName[a.Name()] = a
	}
	return byName
}

func TestDefaultRegistry_Types(t *testing.T) {
	r := action.DefaultRegistry(testutil.NewFakeClient(), testutil.NewFakeFetcher(&fetcherSnap), nil)
	want := []string{"move", "fight", "gather", "craft", "rest", "equip", "bank"}
	got := r.Types()
	if len(got) != len(want) {
		t.Fatalf("Types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Types[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_RegisterReplacesByType(t *testing.T) {
	r := action.NewRegistry()
	client := testutil.NewFakeClient()
	r.Register(action.NewRestFactory(client))
	r.Register(action.NewRestFactory(client))
	if got := r.Types(); len(got) != 1 || got[0] != "rest" {
		t.Fatalf("Types = %v", got)
	}
}

func TestGenerateActions_MoveEnumeration(t *testing.T) {
	names := universe(t, freshState())

	// Every content tile except the current one gets a move.
	for _, want := range []string{"move_1_0", "move_4_0", "move_2_0", "move_0_2", "move_0_1", "move_3_3"} {
		if _, ok := names[want]; !ok {
			t.Fatalf("expected %s in universe %v", want, keys(names))
		}
	}
	if _, ok := names["move_0_0"]; ok {
		t.Fatal("move to the current tile must be skipped")
	}
}

func TestGenerateActions_FightLevelGate(t *testing.T) {
	names := universe(t, freshState())
	if _, ok := names["fight_chicken_1_0"]; !ok {
		t.Fatal("level-1 monster must be offered to a level-1 character")
	}
	if _, ok := names["fight_wolf_4_0"]; ok {
		t.Fatal("a monster far above character level must be withheld")
	}

	s := freshState()
	s[state.KeyCharacterLevel] = state.Int(6)
	names = universe(t, s)
	if _, ok := names["fight_wolf_4_0"]; !ok {
		t.Fatal("level 6 puts the level-8 wolf within the fight margin")
	}
}

func TestGenerateActions_GatherSkillGate(t *testing.T) {
	names := universe(t, freshState())
	if _, ok := names["gather_copper_rocks_2_0"]; !ok {
		t.Fatal("meeting the mining requirement must offer the gather")
	}
	if _, ok := names["gather_ash_tree_0_2"]; ok {
		t.Fatal("woodcutting 1 must not offer a level-3 resource")
	}
}

func TestGenerateActions_CraftSkillGateAndWorkshop(t *testing.T) {
	names := universe(t, freshState())
	if _, ok := names["craft_copper_dagger_0_1"]; !ok {
		t.Fatalf("craft at nearest workshop missing from %v", keys(names))
	}

	s := freshState()
	s[state.KeyWeaponcraftingLevel] = state.Int(0)
	names = universe(t, s)
	if _, ok := names["craft_copper_dagger_0_1"]; ok {
		t.Fatal("craft must be withheld below the recipe's skill level")
	}
}

func TestGenerateActions_EquipSkipsEquippedAndHighLevel(t *testing.T) {
	names := universe(t, freshState())
	if _, ok := names["equip_weapon_wooden_stick"]; !ok {
		t.Fatal("level-1 weapon must be offered")
	}
	if _, ok := names["equip_weapon_copper_dagger"]; ok {
		t.Fatal("a level-5 weapon must be withheld from a level-1 character")
	}

	s := freshState()
	s[state.KeyWeaponSlot] = state.Str("wooden_stick")
	names = universe(t, s)
	if _, ok := names["equip_weapon_wooden_stick"]; ok {
		t.Fatal("the currently equipped weapon must be skipped")
	}
}

func TestGenerateActions_RestAndBankSingletons(t *testing.T) {
	names := universe(t, freshState())
	if _, ok := names["rest"]; !ok {
		t.Fatal("rest missing")
	}
	if _, ok := names["deposit_all"]; !ok {
		t.Fatal("deposit_all missing")
	}
}

// collidingFactory emits two actions with the same derived name.
type collidingFactory struct{}

func (collidingFactory) ActionType() string { return "colliding" }

func (collidingFactory) CreateInstances(_ *world.Snapshot, _ state.State) ([]action.Action, error) {
	a, err := action.NewRestAction(testutil.NewFakeClient())
	if err != nil {
		return nil, err
	}
	b, err := action.NewRestAction(testutil.NewFakeClient())
	if err != nil {
		return nil, err
	}
	return []action.Action{a, b}, nil
}

func TestGenerateActions_DuplicateNameFailsFast(t *testing.T) {
	r := action.NewRegistry()
	r.Register(collidingFactory{})
	_, err := r.GenerateActionsForState(freshState(), testWorld(t))
	if err == nil || !strings.Contains(err.Error(), "duplicate action name") {
		t.Fatalf("expected duplicate-name error, got %v", err)
	}
}

func TestActionByName(t *testing.T) {
	client := testutil.NewFakeClient()
	r := action.DefaultRegistry(client, testutil.NewFakeFetcher(&fetcherSnap), nil)
	ws := testWorld(t)

	a, err := r.ActionByName("rest", freshState(), ws)
	if err != nil || a.Name() != "rest" {
		t.Fatalf("ActionByName(rest) = %v, %v", a, err)
	}
	if _, err := r.ActionByName("no_such_action", freshState(), ws); err == nil {
		t.Fatal("unknown name must error")
	}
}

func TestNilWorldYieldsEmptyUniverse(t *testing.T) {
	client := testutil.NewFakeClient()
	f := action.NewMoveFactory(client, nil)
	actions, err := f.CreateInstances(nil, freshState())
	if err != nil || len(actions) != 0 {
		t.Fatalf("nil world: %v, %v", actions, err)
	}
}

func keys(m map[string]action.Action) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
