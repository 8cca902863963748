// Package action defines the capability contract every game action
// implements (name, cost, preconditions, effects, and the execution
// operation) plus the factories and registry that enumerate the concrete
// action universe for a given state and world snapshot.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
)

// Action is an immutable, stateless capability descriptor.
//
// Name must be unique per concrete parameterization and deterministic for
// the same construction parameters, so identical logical actions carry the
// same identifier across planning calls. Cost, Preconditions, and Effects
// are pure: they never consult external mutable state.
//
// Execute is the only operation allowed to perform I/O. Ordinary game-level
// failures ("on cooldown", "inventory full", "monster not here") return
// success=false Results, with SubGoalRequests where a known remedy exists;
// only transport faults and malformed responses propagate as errors.
type Action interface {
	Name() string
	Cost() int
	Preconditions() state.State
	Effects() state.State
	CanExecute(s state.State) bool
	Execute(ctx context.Context, character string, s state.State) (*Result, error)
}

// SubGoalRequest is a declarative ask emitted inside a failed Result for a
// dependency to be resolved before the action is retried.
//
// Requests are immutable: construct fully, never mutate Parameters after.
type SubGoalRequest struct {
	// GoalType keys the goal manager's sub-goal factory table.
	GoalType string
	// Parameters carries goal-specific arguments, e.g. target coordinates.
	Parameters map[string]any
	// Priority orders competing requests; higher is tried first.
	Priority int
	// Requester names the originating action for diagnostics.
	Requester string
	// Reason is a human-readable justification.
	Reason string
}

// Result is the outcome of executing one action.
type Result struct {
	Success bool
	Message string
	// StateChanges holds the authoritative observed deltas; these may differ
	// from the action's declared Effects and always win on conflict.
	StateChanges state.State
	// Cooldown is the server-imposed delay before the next action.
	Cooldown time.Duration
	// SubGoalRequests is non-empty only on recoverable failures.
	SubGoalRequests []SubGoalRequest
}

// Succeed builds a successful Result.
func Succeed(message string, changes state.State, cooldown time.Duration) *Result {
	return &Result{Success: true, Message: message, StateChanges: changes, Cooldown: cooldown}
}

// Fail builds a failed Result with no remedy.
func Fail(message string) *Result {
	return &Result{Success: false, Message: message}
}

// FailWithRequests builds a failed Result carrying sub-goal remedies.
func FailWithRequests(message string, requests ...SubGoalRequest) *Result {
	return &Result{Success: false, Message: message, SubGoalRequests: requests}
}

// descriptor carries the pure planning surface shared by all concrete
// actions. Construction validates every precondition and effect key against
// the state vocabulary, so an out-of-vocabulary key is a loud factory error
// rather than a silent planning dead end.
type descriptor struct {
	name string
	cost int
	pre  state.State
	eff  state.State
}

func newDescriptor(name string, cost int, pre, eff state.State) (descriptor, error) {
	if name == "" {
		return descriptor{}, fmt.Errorf("action: descriptor name must not be empty")
	}
	if cost < 0 {
		return descriptor{}, fmt.Errorf("action %q: cost must be >= 0, got %d", name, cost)
	}
	for k := range pre {
		if !state.IsKnown(k) {
			return descriptor{}, fmt.Errorf("action %q: precondition key %q is not in the state vocabulary", name, k)
		}
	}
	for k := range eff {
		if !state.IsKnown(k) {
			return descriptor{}, fmt.Errorf("action %q: effect key %q is not in the state vocabulary", name, k)
		}
	}
	return descriptor{name: name, cost: cost, pre: pre, eff: eff}, nil
}

func (d descriptor) Name() string { return d.name }

func (d descriptor) Cost() int { return d.cost }

// Preconditions returns a copy so callers cannot mutate the descriptor.
func (d descriptor) Preconditions() state.State { return d.pre.Clone() }

// Effects returns a copy so callers cannot mutate the descriptor.
func (d descriptor) Effects() state.State { return d.eff.Clone() }

// CanExecute reports whether every precondition fact holds exactly in s.
// Missing keys and differing values both fail. The check is advisory: the
// live environment can still diverge from the symbolic snapshot.
func (d descriptor) CanExecute(s state.State) bool {
	return s.Satisfies(d.pre)
}
