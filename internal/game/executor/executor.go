// Package executor drives plans produced by the planner against the live
// game, recovering from action failures by planning and running sub-goals.
//
// Recursion is bounded in depth, retries per action are bounded, and the
// character state is re-fetched between recursion levels so every plan is
// grounded in reality rather than in stale predictions. Execution is
// single-threaded per character: a state merge always completes before the
// next read, so plans never observe a half-applied action.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/character"
	"github.com/blentz/artifactsmmo-sub007/internal/game/goal"
	"github.com/blentz/artifactsmmo-sub007/internal/game/planner"
	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

const (
	// DefaultMaxDepth bounds how many levels of sub-goal recursion a single
	// top-level plan may open.
	DefaultMaxDepth = 5
	// DefaultMaxRetries bounds how many times a single failing action is
	// re-attempted after recovery sub-goals complete.
	DefaultMaxRetries = 3
)

// Config carries the execution bounds. Zero values fall back to the
// package defaults.
type Config struct {
	MaxDepth   int
	MaxRetries int
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}

// Result summarizes one plan execution, including everything done by
// nested sub-goal executions on its behalf.
type Result struct {
	Success         bool
	DepthReached    int
	ActionsExecuted int
	ExecutionTime   time.Duration
	ErrorMessage    string
}

// Executor runs plans for a single character at a time.
//
// Invariant: the symbolic state passed between actions is mutated only by
// merging Result.StateChanges or by replacing it wholesale with a fresh
// snapshot, never by partial writes.
type Executor struct {
	goals    *goal.Manager
	registry *action.Registry
	fetcher  gameapi.CharacterFetcher
	world    *world.Snapshot
	cfg      Config
	logger   *zap.Logger
	clock    func() time.Time
	sleep    func(context.Context, time.Duration) error
}

// New constructs an Executor.
//
// Precondition: goals, registry, fetcher, world, and logger are non-nil.
// Postcondition: the returned executor applies package defaults for any
// unset Config bound.
func New(goals *goal.Manager, registry *action.Registry, fetcher gameapi.CharacterFetcher, ws *world.Snapshot, cfg Config, logger *zap.Logger) *Executor {
	if goals == nil {
		panic("executor.New: goals is nil")
	}
	if registry == nil {
		panic("executor.New: registry is nil")
	}
	if fetcher == nil {
		panic("executor.New: fetcher is nil")
	}
	if ws == nil {
		panic("executor.New: world is nil")
	}
	if logger == nil {
		panic("executor.New: logger is nil")
	}
	return &Executor{
		goals:    goals,
		registry: registry,
		fetcher:  fetcher,
		world:    ws,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		clock:    time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExecutePlan runs every action of plan in order against the live game,
// starting from current. Action failures that carry sub-goal requests are
// recovered by resolving and executing those requests at depth+1, then
// retrying the failed action.
//
// Precondition: depth >= 0; current was built from a recent snapshot.
// Postcondition: on a nil error, the Result says whether the plan
// completed; a *MaxDepthError is returned when depth is already at the
// bound, and other errors indicate transport or wiring defects rather
// than in-game failure.
func (e *Executor) ExecutePlan(ctx context.Context, plan *planner.Plan, characterName string, current state.State, depth int) (*Result, error) {
	return e.run(ctx, plan, characterName, current, depth, time.Time{})
}

func (e *Executor) run(ctx context.Context, plan *planner.Plan, characterName string, current state.State, depth int, deadline time.Time) (*Result, error) {
	if plan == nil {
		return nil, fmt.Errorf("executor.Executor.ExecutePlan: plan is nil")
	}
	if depth >= e.cfg.MaxDepth {
		return nil, &MaxDepthError{Depth: depth, MaxDepth: e.cfg.MaxDepth}
	}

	start := e.clock()
	res := &Result{DepthReached: depth}
	log := e.logger.With(
		zap.String("character", characterName),
		zap.Int("depth", depth),
		zap.String("plan", plan.ID),
	)
	log.Info("executing plan",
		zap.Int("actions", plan.Len()),
		zap.Int("total_cost", plan.TotalCost),
	)

	for _, act := range plan.Actions {
		ok, err := e.runAction(ctx, act, characterName, current, depth, deadline, res, log)
		if err != nil {
			res.ExecutionTime = e.clock().Sub(start)
			return res, err
		}
		if !ok {
			res.Success = false
			res.ExecutionTime = e.clock().Sub(start)
			log.Warn("plan failed",
				zap.String("action", act.Name()),
				zap.String("reason", res.ErrorMessage),
			)
			return res, nil
		}
	}

	res.Success = true
	res.ExecutionTime = e.clock().Sub(start)
	log.Info("plan completed",
		zap.Int("actions_executed", res.ActionsExecuted),
		zap.Int("depth_reached", res.DepthReached),
		zap.Duration("elapsed", res.ExecutionTime),
	)
	return res, nil
}

// runAction attempts a single action, recovering through sub-goals and
// retrying up to the configured bound. A false return with a nil error
// means the action failed terminally and res.ErrorMessage explains why.
func (e *Executor) runAction(ctx context.Context, act action.Action, characterName string, current state.State, depth int, deadline time.Time, res *Result, log *zap.Logger) (bool, error) {
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("executor.Executor.ExecutePlan: action %s: %w", act.Name(), err)
		}
		if !deadline.IsZero() && e.clock().After(deadline) {
			res.ErrorMessage = fmt.Sprintf("action %s: goal timeout exceeded", act.Name())
			return false, nil
		}
		attempts++

		if !act.CanExecute(current) {
			// Advisory only. The live game is authoritative, and the
			// symbolic model may be coarser than reality.
			log.Debug("preconditions not satisfied in symbolic state, executing anyway",
				zap.String("action", act.Name()),
			)
		}

		res.ActionsExecuted++
		r, err := act.Execute(ctx, characterName, current)
		if err != nil {
			return false, fmt.Errorf("executor.Executor.ExecutePlan: action %s: %w", act.Name(), err)
		}
		if r.Success {
			current.Merge(r.StateChanges)
			if err := e.sleep(ctx, r.Cooldown); err != nil {
				return false, fmt.Errorf("executor.Executor.ExecutePlan: action %s: %w", act.Name(), err)
			}
			return true, nil
		}

		log.Info("action failed",
			zap.String("action", act.Name()),
			zap.Int("attempt", attempts),
			zap.String("message", r.Message),
			zap.Int("sub_goal_requests", len(r.SubGoalRequests)),
		)

		if len(r.SubGoalRequests) == 0 {
			res.ErrorMessage = fmt.Sprintf("action %s: %s", act.Name(), r.Message)
			return false, nil
		}
		if attempts > e.cfg.MaxRetries {
			res.ErrorMessage = fmt.Sprintf("action %s failed after %d attempts: %s", act.Name(), attempts, r.Message)
			return false, nil
		}

		recovered, err := e.resolveSubGoals(ctx, r.SubGoalRequests, characterName, current, depth, res, log)
		if err != nil {
			return false, err
		}
		if !recovered {
			res.ErrorMessage = fmt.Sprintf("action %s: %s", act.Name(), r.Message)
			return false, nil
		}
	}
}

// resolveSubGoals tries each request in descending priority order until
// one completes. On success the parent's symbolic state is replaced with
// a fresh snapshot so the retried action sees reality, not predictions.
func (e *Executor) resolveSubGoals(ctx context.Context, requests []action.SubGoalRequest, characterName string, current state.State, depth int, res *Result, log *zap.Logger) (bool, error) {
	if depth+1 >= e.cfg.MaxDepth {
		log.Warn("sub-goal recovery skipped, recursion bound reached",
			zap.Int("depth", depth),
			zap.Int("max_depth", e.cfg.MaxDepth),
		)
		return false, nil
	}

	ordered := make([]action.SubGoalRequest, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for _, req := range ordered {
		ok, err := e.executeSubGoal(ctx, req, characterName, current, depth, res, log)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (e *Executor) executeSubGoal(ctx context.Context, req action.SubGoalRequest, characterName string, current state.State, depth int, res *Result, log *zap.Logger) (bool, error) {
	slog := log.With(
		zap.String("sub_goal", req.GoalType),
		zap.String("requester", req.Requester),
		zap.Int("priority", req.Priority),
	)

	fresh, err := e.refreshState(ctx, characterName)
	if err != nil {
		return false, err
	}

	g, err := e.goals.CreateGoalFromRequest(req, goal.FactoryContext{
		CharacterState: fresh,
		ParentGoalType: req.Requester,
		Depth:          depth + 1,
		MaxDepth:       e.cfg.MaxDepth,
	})
	if err != nil {
		var nvg *goal.NoValidGoalError
		if errors.As(err, &nvg) {
			slog.Warn("sub-goal request rejected", zap.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("executor.Executor.ExecutePlan: sub-goal %s: %w", req.GoalType, err)
	}

	available, err := e.registry.GenerateActionsForState(fresh, e.world)
	if err != nil {
		return false, fmt.Errorf("executor.Executor.ExecutePlan: sub-goal %s: %w", req.GoalType, err)
	}

	subPlan, err := e.goals.PlanToTargetState(fresh, g.TargetState(), available)
	if err != nil {
		var nvg *goal.NoValidGoalError
		if errors.As(err, &nvg) {
			slog.Warn("no plan for sub-goal", zap.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("executor.Executor.ExecutePlan: sub-goal %s: %w", req.GoalType, err)
	}

	deadline := time.Time{}
	if g.Timeout() > 0 {
		deadline = e.clock().Add(g.Timeout())
	}
	subRes, err := e.run(ctx, subPlan, characterName, fresh, depth+1, deadline)
	if err != nil {
		var mde *MaxDepthError
		if errors.As(err, &mde) {
			slog.Warn("sub-goal hit recursion bound", zap.Error(err))
			return false, nil
		}
		return false, err
	}
	if subRes.DepthReached > res.DepthReached {
		res.DepthReached = subRes.DepthReached
	}
	res.ActionsExecuted += subRes.ActionsExecuted
	if !subRes.Success {
		slog.Info("sub-goal execution failed", zap.String("reason", subRes.ErrorMessage))
		return false, nil
	}

	// Re-fetch after the sub-plan and confirm it did not undo anything the
	// parent plan depends on before handing the refreshed state back.
	final, err := e.refreshState(ctx, characterName)
	if err != nil {
		return false, err
	}
	if cerr := validateConsistency(current, final); cerr != nil {
		slog.Warn("sub-goal left inconsistent state", zap.Error(cerr))
		return false, nil
	}

	replaceState(current, final)
	slog.Info("sub-goal completed",
		zap.Int("actions_executed", subRes.ActionsExecuted),
	)
	return true, nil
}

// refreshState fetches the live character snapshot and rebuilds the full
// symbolic state from it.
func (e *Executor) refreshState(ctx context.Context, characterName string) (state.State, error) {
	snap, err := e.fetcher.FetchCharacter(ctx, characterName)
	if err != nil {
		return nil, fmt.Errorf("executor.Executor.ExecutePlan: refresh %s: %w", characterName, err)
	}
	return character.BuildState(snap, e.world, e.clock()), nil
}

// validateConsistency checks that refreshed does not contradict the
// invariants parent-level plans rely on: the character did not die while
// previously alive, and no level went backwards.
func validateConsistency(before, after state.State) *StateConsistencyError {
	if boolFact(before, state.KeyAlive) && !boolFact(after, state.KeyAlive) {
		return &StateConsistencyError{Reason: "character died during sub-goal execution"}
	}
	if decreased(before, after, state.KeyCharacterLevel) {
		return &StateConsistencyError{Reason: "character level decreased during sub-goal execution"}
	}
	for _, k := range state.SkillLevelKeys() {
		if decreased(before, after, k) {
			return &StateConsistencyError{Reason: fmt.Sprintf("%s decreased during sub-goal execution", k)}
		}
	}
	return nil
}

// boolFact reads a boolean fact, treating unknown as false.
func boolFact(s state.State, k state.Key) bool {
	v, ok := s.Get(k)
	if !ok {
		return false
	}
	b, isBool := v.AsBool()
	return isBool && b
}

func decreased(before, after state.State, k state.Key) bool {
	bv, okB := before.Get(k)
	av, okA := after.Get(k)
	if !okB || !okA {
		return false
	}
	b, isIntB := bv.AsInt()
	a, isIntA := av.AsInt()
	return isIntB && isIntA && a < b
}

// replaceState overwrites dst in place with the contents of src so that
// callers holding a reference to dst observe the refreshed world.
func replaceState(dst, src state.State) {
	for k := range dst {
		delete(dst, k)
	}
	for k, v := range src {
		dst[k] = v
	}
}
