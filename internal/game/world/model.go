// Package world provides the read-only world data snapshot: map tiles,
// monsters, resources, and items fetched in bulk before planning begins.
//
// Only action factories consume the snapshot; the planner and executor never
// read it directly.
package world

// Coord is a map tile coordinate.
type Coord struct {
	X int
	Y int
}

// ManhattanDistance returns |dx| + |dy| between c and other.
func (c Coord) ManhattanDistance(other Coord) int {
	dx := c.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := c.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// ContentType classifies what occupies a map tile.
type ContentType string

// Tile content types.
const (
	ContentNone          ContentType = ""
	ContentMonster       ContentType = "monster"
	ContentResource      ContentType = "resource"
	ContentWorkshop      ContentType = "workshop"
	ContentBank          ContentType = "bank"
	ContentGrandExchange ContentType = "grand_exchange"
	ContentTaskMaster    ContentType = "tasks_master"
)

// Tile is one map square. ContentCode identifies the monster, resource, or
// workshop on the tile; empty for plain terrain.
type Tile struct {
	Coord       Coord
	Name        string
	ContentType ContentType
	ContentCode string
}

// Monster describes one monster type from the bulk data fetch.
type Monster struct {
	Code    string
	Name    string
	Level   int
	HP      int
	Attack  int
	Defense int
}

// Resource describes one gatherable resource type.
type Resource struct {
	Code  string
	Name  string
	Skill string // "mining", "woodcutting", "fishing", "alchemy"
	Level int    // minimum skill level to gather
}

// CraftRecipe describes how an item is crafted.
type CraftRecipe struct {
	Skill    string
	Level    int
	Quantity int
	Inputs   []RecipeInput
}

// RecipeInput is one ingredient of a craft recipe.
type RecipeInput struct {
	Code     string
	Quantity int
}

// Item describes one item type. Craft is nil for non-craftable items.
type Item struct {
	Code  string
	Name  string
	Type  string // "weapon", "helmet", "resource", "consumable", ...
	Level int
	Craft *CraftRecipe
}
