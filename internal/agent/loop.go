// Package agent runs the perceive/decide/act loop for one or more
// characters: refresh the live state, resolve the configured goal, plan,
// execute, record the outcome, and go again.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/character"
	"github.com/blentz/artifactsmmo-sub007/internal/game/executor"
	"github.com/blentz/artifactsmmo-sub007/internal/game/goal"
	"github.com/blentz/artifactsmmo-sub007/internal/game/planner"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

const (
	// defaultTickInterval paces cycles when the configuration does not set one.
	defaultTickInterval = 3 * time.Second
	// errorBackoff spaces out retries after transport failures so a flapping
	// connection does not spin the loop.
	errorBackoff = 5 * time.Second
)

// LoopConfig identifies the character a Loop drives and what it works toward.
type LoopConfig struct {
	Character    string
	GoalExpr     string
	TickInterval time.Duration
}

// Loop drives a single character. It owns no shared mutable state besides
// the recorder, so distinct Loops may run concurrently.
type Loop struct {
	cfg      LoopConfig
	fetcher  gameapi.CharacterFetcher
	world    *world.Snapshot
	goals    *goal.Manager
	registry *action.Registry
	exec     *executor.Executor
	history  HistoryRecorder
	logger   *zap.Logger
	clock    func() time.Time
}

// NewLoop constructs a Loop.
//
// Precondition: cfg.Character and cfg.GoalExpr are non-empty; fetcher,
// ws, goals, registry, exec, and logger are non-nil. A nil history falls
// back to NopRecorder.
func NewLoop(cfg LoopConfig, fetcher gameapi.CharacterFetcher, ws *world.Snapshot, goals *goal.Manager, registry *action.Registry, exec *executor.Executor, history HistoryRecorder, logger *zap.Logger) *Loop {
	if cfg.Character == "" {
		panic("agent.NewLoop: character is empty")
	}
	if cfg.GoalExpr == "" {
		panic("agent.NewLoop: goal expression is empty")
	}
	if fetcher == nil || ws == nil || goals == nil || registry == nil || exec == nil || logger == nil {
		panic("agent.NewLoop: nil dependency")
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if history == nil {
		history = NopRecorder{}
	}
	return &Loop{
		cfg:      cfg,
		fetcher:  fetcher,
		world:    ws,
		goals:    goals,
		registry: registry,
		exec:     exec,
		history:  history,
		logger:   logger.With(zap.String("character", cfg.Character)),
		clock:    time.Now,
	}
}

// Run cycles until ctx is cancelled. Transport failures and unplannable
// goals back off and retry; only cancellation or a wiring defect ends
// the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("agent loop starting",
		zap.String("goal", l.cfg.GoalExpr),
		zap.Duration("tick", l.cfg.TickInterval),
	)
	for {
		if err := ctx.Err(); err != nil {
			l.logger.Info("agent loop stopped")
			return nil
		}
		wait, err := l.cycle(ctx)
		if err != nil {
			return err
		}
		if err := sleepCtx(ctx, wait); err != nil {
			l.logger.Info("agent loop stopped")
			return nil
		}
	}
}

// cycle performs one full refresh/resolve/plan/execute pass and returns
// how long to wait before the next one.
func (l *Loop) cycle(ctx context.Context) (time.Duration, error) {
	started := l.clock()

	snap, err := l.fetcher.FetchCharacter(ctx, l.cfg.Character)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil
		}
		l.logger.Warn("character refresh failed", zap.Error(err))
		return errorBackoff, nil
	}
	current := character.BuildState(snap, l.world, l.clock())

	g, err := l.goals.ResolveGoal(l.cfg.GoalExpr, current)
	if err != nil {
		var nvg *goal.NoValidGoalError
		if errors.As(err, &nvg) {
			l.logger.Warn("goal not resolvable this cycle", zap.Error(err))
			return l.cfg.TickInterval, nil
		}
		return 0, fmt.Errorf("agent.Loop.Run: %w", err)
	}

	if current.Satisfies(g.TargetState()) {
		l.logger.Info("goal already satisfied", zap.String("goal", g.Name()))
		return l.cfg.TickInterval, nil
	}

	available, err := l.registry.GenerateActionsForState(current, l.world)
	if err != nil {
		return 0, fmt.Errorf("agent.Loop.Run: %w", err)
	}

	plan, err := l.goals.PlanToTargetState(current, g.TargetState(), available)
	if err != nil {
		var nvg *goal.NoValidGoalError
		if errors.As(err, &nvg) {
			l.logger.Warn("no plan for goal",
				zap.String("goal", g.Name()),
				zap.Error(err),
			)
			return l.cfg.TickInterval, nil
		}
		return 0, fmt.Errorf("agent.Loop.Run: %w", err)
	}

	res, err := l.exec.ExecutePlan(ctx, plan, l.cfg.Character, current, 0)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil
		}
		l.logger.Warn("plan execution aborted", zap.Error(err))
		l.record(ctx, plan, res, started, err.Error())
		return errorBackoff, nil
	}
	l.record(ctx, plan, res, started, res.ErrorMessage)

	if res.Success {
		l.logger.Info("cycle complete",
			zap.String("goal", g.Name()),
			zap.Int("actions", res.ActionsExecuted),
			zap.Duration("elapsed", res.ExecutionTime),
		)
	}
	return l.cfg.TickInterval, nil
}

func (l *Loop) record(ctx context.Context, plan *planner.Plan, res *executor.Result, started time.Time, errMsg string) {
	names := make([]string, 0, plan.Len())
	for _, a := range plan.Actions {
		names = append(names, a.Name())
	}
	rec := &RunRecord{
		ID:           uuid.NewString(),
		Character:    l.cfg.Character,
		GoalExpr:     l.cfg.GoalExpr,
		PlanID:       plan.ID,
		PlanActions:  names,
		PlanCost:     plan.TotalCost,
		StartedAt:    started,
		FinishedAt:   l.clock(),
		ErrorMessage: errMsg,
	}
	if res != nil {
		rec.Success = res.Success
		rec.DepthReached = res.DepthReached
		rec.ActionCount = res.ActionsExecuted
	}
	if err := l.history.RecordRun(ctx, rec); err != nil {
		l.logger.Warn("history record failed", zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
