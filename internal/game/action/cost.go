package action

import "github.com/blentz/artifactsmmo-sub007/internal/game/world"

// MoveCostProvider prices a move between two map coordinates for planning.
//
// The grid pathfinder plugs in here; the planner itself never touches map
// topology. Implementations must be pure: the same pair of coordinates
// always yields the same cost, so replanning stays deterministic.
type MoveCostProvider interface {
	MoveCost(from, to world.Coord) int
}

// ManhattanCost prices moves by Manhattan distance. It is the default
// provider; the remote API charges cooldown roughly per tile crossed.
type ManhattanCost struct{}

// MoveCost returns |dx| + |dy|.
func (ManhattanCost) MoveCost(from, to world.Coord) int {
	return from.ManhattanDistance(to)
}
