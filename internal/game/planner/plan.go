package planner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
)

// Plan is an ordered, immutable action sequence produced for one goal.
//
// The empty plan is a valid, distinguished value meaning the goal was
// already satisfied; it is never used to signal search failure.
type Plan struct {
	// ID uniquely identifies this plan for logging and history.
	ID string
	// Actions execute strictly in order; the slice is never mutated after
	// construction.
	Actions []action.Action
	// TotalCost is the sum of the action costs.
	TotalCost int
}

func newPlan(actions []action.Action) *Plan {
	total := 0
	for _, a := range actions {
		total += a.Cost()
	}
	return &Plan{
		ID:        uuid.NewString(),
		Actions:   actions,
		TotalCost: total,
	}
}

// Empty reports whether the plan contains no actions.
func (p *Plan) Empty() bool { return len(p.Actions) == 0 }

// Len returns the number of actions.
func (p *Plan) Len() int { return len(p.Actions) }

// String renders the action names joined by " -> " for logs.
func (p *Plan) String() string {
	if p.Empty() {
		return "(already satisfied)"
	}
	names := make([]string, len(p.Actions))
	for i, a := range p.Actions {
		names[i] = a.Name()
	}
	return strings.Join(names, " -> ")
}
