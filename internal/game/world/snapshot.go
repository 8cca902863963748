package world

import (
	"fmt"
	"sort"
)

// Snapshot indexes the bulk world data for lookup by action factories.
//
// A Snapshot is immutable after construction and safe to share across all
// character control loops without synchronization.
type Snapshot struct {
	tiles     map[Coord]*Tile
	monsters  map[string]*Monster
	resources map[string]*Resource
	items     map[string]*Item

	monsterTiles  map[string][]*Tile // monster code -> tiles holding it
	resourceTiles map[string][]*Tile
	workshopTiles map[string][]*Tile // workshop skill -> tiles
	bankTiles     []*Tile
}

// NewSnapshot builds an indexed Snapshot from raw bulk-fetch slices.
//
// Postcondition: returns an error on duplicate tile coordinates or duplicate
// monster/resource/item codes; the index is complete on success.
func NewSnapshot(tiles []*Tile, monsters []*Monster, resources []*Resource, items []*Item) (*Snapshot, error) {
	s := &Snapshot{
		tiles:         make(map[Coord]*Tile, len(tiles)),
		monsters:      make(map[string]*Monster, len(monsters)),
		resources:     make(map[string]*Resource, len(resources)),
		items:         make(map[string]*Item, len(items)),
		monsterTiles:  make(map[string][]*Tile),
		resourceTiles: make(map[string][]*Tile),
		workshopTiles: make(map[string][]*Tile),
	}

	for _, m := range monsters {
		if _, exists := s.monsters[m.Code]; exists {
			return nil, fmt.Errorf("world.NewSnapshot: duplicate monster code %q", m.Code)
		}
		s.monsters[m.Code] = m
	}
	for _, r := range resources {
		if _, exists := s.resources[r.Code]; exists {
			return nil, fmt.Errorf("world.NewSnapshot: duplicate resource code %q", r.Code)
		}
		s.resources[r.Code] = r
	}
	for _, it := range items {
		if _, exists := s.items[it.Code]; exists {
			return nil, fmt.Errorf("world.NewSnapshot: duplicate item code %q", it.Code)
		}
		s.items[it.Code] = it
	}

	for _, t := range tiles {
		if _, exists := s.tiles[t.Coord]; exists {
			return nil, fmt.Errorf("world.NewSnapshot: duplicate tile at (%d,%d)", t.Coord.X, t.Coord.Y)
		}
		s.tiles[t.Coord] = t
		switch t.ContentType {
		case ContentMonster:
			s.monsterTiles[t.ContentCode] = append(s.monsterTiles[t.ContentCode], t)
		case ContentResource:
			s.resourceTiles[t.ContentCode] = append(s.resourceTiles[t.ContentCode], t)
		case ContentWorkshop:
			s.workshopTiles[t.ContentCode] = append(s.workshopTiles[t.ContentCode], t)
		case ContentBank:
			s.bankTiles = append(s.bankTiles, t)
		}
	}

	return s, nil
}

// TileAt returns the tile at c, or (nil, false) for off-map coordinates.
func (s *Snapshot) TileAt(c Coord) (*Tile, bool) {
	t, ok := s.tiles[c]
	return t, ok
}

// Monster returns the monster with the given code.
func (s *Snapshot) Monster(code string) (*Monster, bool) {
	m, ok := s.monsters[code]
	return m, ok
}

// Resource returns the resource with the given code.
func (s *Snapshot) Resource(code string) (*Resource, bool) {
	r, ok := s.resources[code]
	return r, ok
}

// Item returns the item with the given code.
func (s *Snapshot) Item(code string) (*Item, bool) {
	it, ok := s.items[code]
	return it, ok
}

// MonsterTiles returns the tiles holding the given monster code, in bulk
// fetch order.
func (s *Snapshot) MonsterTiles(code string) []*Tile {
	return s.monsterTiles[code]
}

// ResourceTiles returns the tiles holding the given resource code.
func (s *Snapshot) ResourceTiles(code string) []*Tile {
	return s.resourceTiles[code]
}

// WorkshopTiles returns the tiles holding a workshop for the given skill.
func (s *Snapshot) WorkshopTiles(skill string) []*Tile {
	return s.workshopTiles[skill]
}

// BankTiles returns all bank tiles.
func (s *Snapshot) BankTiles() []*Tile {
	return s.bankTiles
}

// AllMonsters returns every monster, in no particular order.
func (s *Snapshot) AllMonsters() []*Monster {
	out := make([]*Monster, 0, len(s.monsters))
	for _, m := range s.monsters {
		out = append(out, m)
	}
	return out
}

// MonsterCount and friends report index sizes for startup logging.
func (s *Snapshot) MonsterCount() int  { return len(s.monsters) }
func (s *Snapshot) ResourceCount() int { return len(s.resources) }
func (s *Snapshot) ItemCount() int     { return len(s.items) }
func (s *Snapshot) TileCount() int     { return len(s.tiles) }

// MonsterCodes returns every monster code present on the map, sorted, so
// iteration over the index is deterministic.
func (s *Snapshot) MonsterCodes() []string {
	return sortedKeys(s.monsterTiles)
}

// ResourceCodes returns every resource code present on the map, sorted.
func (s *Snapshot) ResourceCodes() []string {
	return sortedKeys(s.resourceTiles)
}

// ItemCodes returns every item code in the catalog, sorted.
func (s *Snapshot) ItemCodes() []string {
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WorkshopSkills returns every workshop skill present on the map, sorted.
func (s *Snapshot) WorkshopSkills() []string {
	return sortedKeys(s.workshopTiles)
}

func sortedKeys(m map[string][]*Tile) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NearestTile returns the tile from candidates closest to from by Manhattan
// distance; ties break by candidate order. Returns nil for no candidates.
func NearestTile(from Coord, candidates []*Tile) *Tile {
	var best *Tile
	bestDist := 0
	for _, t := range candidates {
		d := from.ManhattanDistance(t.Coord)
		if best == nil || d < bestDist {
			best = t
			bestDist = d
		}
	}
	return best
}
