package action

import (
	"fmt"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

// Factory enumerates every concrete instance of one action type that is
// relevant for a given state and world snapshot.
//
// A factory returning an error indicates a programming or configuration
// defect, never a planning dead end; the registry propagates it unchanged.
type Factory interface {
	// ActionType identifies the factory; re-registering the same type
	// replaces the previous factory.
	ActionType() string
	// CreateInstances returns the parameterized actions this type
	// contributes. Implementations must deduplicate derived names within
	// one call.
	CreateInstances(ws *world.Snapshot, s state.State) ([]Action, error)
}

// Registry owns the set of registered action factories.
//
// Construct one Registry at process start and pass it by reference; it is
// read-only after registration and safe to share across character loops.
type Registry struct {
	order     []string
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates f with its action type, replacing any previous
// factory of the same type. Registration order is preserved for the
// first registration of each type, keeping action enumeration stable.
func (r *Registry) Register(f Factory) {
	t := f.ActionType()
	if _, exists := r.factories[t]; !exists {
		r.order = append(r.order, t)
	}
	r.factories[t] = f
}

// Types returns the registered action types in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// GenerateActionsForState invokes every registered factory in registration
// order and concatenates the results. This is the planner's action universe
// for one planning call.
//
// A factory error propagates to the caller unchanged (fail fast): a
// silently missing action type would make solvable goals look impossible,
// which is worse than a loud crash. A duplicate derived name across the
// whole universe is likewise an error.
func (r *Registry) GenerateActionsForState(s state.State, ws *world.Snapshot) ([]Action, error) {
	var out []Action
	seen := make(map[string]string)
	for _, t := range r.order {
		instances, err := r.factories[t].CreateInstances(ws, s)
		if err != nil {
			return nil, fmt.Errorf("action.Registry: factory %q: %w", t, err)
		}
		for _, a := range instances {
			if prev, dup := seen[a.Name()]; dup {
				return nil, fmt.Errorf("action.Registry: duplicate action name %q from factories %q and %q", a.Name(), prev, t)
			}
			seen[a.Name()] = t
			out = append(out, a)
		}
	}
	return out, nil
}

// DefaultRegistry returns a Registry with every built-in action factory
// registered: move, fight, gather, craft, rest, equip, and bank deposit.
//
// Precondition: client and fetcher are non-nil. A nil costs falls back to
// ManhattanCost.
func DefaultRegistry(client gameapi.Client, fetcher gameapi.CharacterFetcher, costs MoveCostProvider) *Registry {
	if costs == nil {
		costs = ManhattanCost{}
	}
	r := NewRegistry()
	r.Register(NewMoveFactory(client, costs))
	r.Register(NewFightFactory(client))
	r.Register(NewGatherFactory(client))
	r.Register(NewCraftFactory(client, nil))
	r.Register(NewRestFactory(client))
	r.Register(NewEquipFactory(client))
	r.Register(NewBankFactory(client, fetcher))
	return r
}

// ActionByName returns the action with the given derived name from the
// current universe. Linear scan; diagnostics only, not on the planning hot
// path.
func (r *Registry) ActionByName(name string, s state.State, ws *world.Snapshot) (Action, error) {
	actions, err := r.GenerateActionsForState(s, ws)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		if a.Name() == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("action.Registry: no action named %q in current universe", name)
}
