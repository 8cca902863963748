// Package goal maps declared objectives (template names, free-form goal
// strings, and sub-goal requests emitted by failing actions) to the
// concrete target states the planner searches toward.
package goal

import (
	"fmt"
	"time"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
)

// Goal is a declared objective resolved to a concrete target state.
//
// A Goal is created fresh per planning attempt and discarded once its plan
// is produced; it holds no execution-time mutable state.
type Goal struct {
	name     string
	target   state.State
	priority int
	timeout  time.Duration
}

// New constructs a Goal.
//
// Precondition: name must be non-empty; target may be empty (trivially
// satisfied).
func New(name string, target state.State, priority int, timeout time.Duration) *Goal {
	return &Goal{name: name, target: target.Clone(), priority: priority, timeout: timeout}
}

// Name identifies the goal for logs and history.
func (g *Goal) Name() string { return g.name }

// TargetState returns the partial world state whose satisfaction completes
// the goal. The returned copy is safe to mutate.
func (g *Goal) TargetState() state.State { return g.target.Clone() }

// Priority orders competing goals; higher wins.
func (g *Goal) Priority() int { return g.priority }

// Timeout bounds recursive execution of this goal; zero means unbounded.
func (g *Goal) Timeout() time.Duration { return g.timeout }

func (g *Goal) String() string {
	return fmt.Sprintf("%s -> %s", g.name, g.target)
}

// NoValidGoalError reports that a goal expression or sub-goal request
// could not be resolved to a plannable target state, or that planning for
// the resolved target found no path.
type NoValidGoalError struct {
	GoalType string
	Reason   string
	Err      error
}

func (e *NoValidGoalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("goal: no valid goal for %q: %s: %v", e.GoalType, e.Reason, e.Err)
	}
	return fmt.Sprintf("goal: no valid goal for %q: %s", e.GoalType, e.Reason)
}

func (e *NoValidGoalError) Unwrap() error { return e.Err }

// FactoryContext carries the recursion context a sub-goal factory needs to
// build a Goal from a request.
type FactoryContext struct {
	// CharacterState is a fresh symbolic snapshot, never the stale
	// pre-failure one.
	CharacterState state.State
	// ParentGoalType names the goal whose plan emitted the request.
	ParentGoalType string
	// Depth is the recursion level the new goal will execute at.
	Depth int
	// MaxDepth is the configured recursion bound.
	MaxDepth int
}
