package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/executor"
	"github.com/blentz/artifactsmmo-sub007/internal/game/goal"
	"github.com/blentz/artifactsmmo-sub007/internal/game/planner"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

// captureRecorder keeps every record in memory for assertions.
type captureRecorder struct {
	mu   sync.Mutex
	recs []*RunRecord
}

func (r *captureRecorder) RecordRun(_ context.Context, rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

func (r *captureRecorder) records() []*RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RunRecord(nil), r.recs...)
}

type failingFetcher struct{}

func (failingFetcher) FetchCharacter(context.Context, string) (*gameapi.CharacterSnapshot, error) {
	return nil, fmt.Errorf("dial: connection refused")
}

func chickenWorld(t *testing.T) *world.Snapshot {
	t.Helper()
	ws, err := world.NewSnapshot(
		[]*world.Tile{{
			Coord:       world.Coord{X: 1, Y: 0},
			Name:        "chicken coop",
			ContentType: world.ContentMonster,
			ContentCode: "chicken",
		}},
		[]*world.Monster{{Code: "chicken", Name: "Chicken", Level: 1, HP: 60}},
		nil, nil,
	)
	require.NoError(t, err)
	return ws
}

func newTestLoop(t *testing.T, cfg LoopConfig, fetcher gameapi.CharacterFetcher, client gameapi.Client, ws *world.Snapshot, history HistoryRecorder) *Loop {
	t.Helper()
	logger := zaptest.NewLogger(t)
	goals := goal.NewManager(planner.New(0), logger)
	registry := action.DefaultRegistry(client, fetcher, nil)
	exec := executor.New(goals, registry, fetcher, ws, executor.Config{}, logger)
	return NewLoop(cfg, fetcher, ws, goals, registry, exec, history, logger)
}

func TestCycleExecutesPlanAndRecords(t *testing.T) {
	ws := chickenWorld(t)
	sim := gameapi.NewSimulator(ws, gameapi.CharacterSnapshot{
		Name: "alpha", Level: 1, HP: 120, MaxHP: 120, InventoryMax: 100,
	}, 0)
	history := &captureRecorder{}
	l := newTestLoop(t, LoopConfig{
		Character:    "alpha",
		GoalExpr:     "reach_level_2",
		TickInterval: 10 * time.Millisecond,
	}, sim, sim, ws, history)

	wait, err := l.cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, wait)

	recs := history.records()
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.True(t, rec.Success)
	assert.Equal(t, "alpha", rec.Character)
	assert.Equal(t, "reach_level_2", rec.GoalExpr)
	assert.Equal(t, []string{"move_1_0", "fight_chicken_1_0"}, rec.PlanActions)
	assert.Equal(t, 2, rec.ActionCount)
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.PlanID)
	assert.Empty(t, rec.ErrorMessage)
	assert.False(t, rec.FinishedAt.Before(rec.StartedAt))

	snap, err := sim.FetchCharacter(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.X)
	assert.Equal(t, 0, snap.Y)
	assert.Equal(t, 10, snap.XP, "a won fight grants the monster's XP")
}

func TestCycleGoalAlreadySatisfied(t *testing.T) {
	ws := chickenWorld(t)
	sim := gameapi.NewSimulator(ws, gameapi.CharacterSnapshot{
		Name: "alpha", Level: 1, HP: 120, MaxHP: 120,
	}, 0)
	history := &captureRecorder{}
	l := newTestLoop(t, LoopConfig{
		Character:    "alpha",
		GoalExpr:     "alive",
		TickInterval: 42 * time.Millisecond,
	}, sim, sim, ws, history)

	wait, err := l.cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42*time.Millisecond, wait)
	assert.Empty(t, history.records(), "a satisfied goal plans and executes nothing")
}

func TestCycleUnresolvableGoalWaitsForNextTick(t *testing.T) {
	ws := chickenWorld(t)
	sim := gameapi.NewSimulator(ws, gameapi.CharacterSnapshot{
		Name: "alpha", Level: 1, HP: 120, MaxHP: 120,
	}, 0)
	history := &captureRecorder{}
	l := newTestLoop(t, LoopConfig{
		Character:    "alpha",
		GoalExpr:     "conquer_everything",
		TickInterval: 15 * time.Millisecond,
	}, sim, sim, ws, history)

	wait, err := l.cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15*time.Millisecond, wait)
	assert.Empty(t, history.records())
}

func TestCycleFetchFailureBacksOff(t *testing.T) {
	ws := chickenWorld(t)
	sim := gameapi.NewSimulator(ws, gameapi.CharacterSnapshot{
		Name: "alpha", Level: 1, HP: 120, MaxHP: 120,
	}, 0)
	l := newTestLoop(t, LoopConfig{
		Character:    "alpha",
		GoalExpr:     "reach_level_2",
		TickInterval: 10 * time.Millisecond,
	}, failingFetcher{}, sim, ws, nil)

	wait, err := l.cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, errorBackoff, wait, "transport failures retry on the error backoff, not the tick")
}

func TestNewLoopValidation(t *testing.T) {
	ws := chickenWorld(t)
	sim := gameapi.NewSimulator(ws, gameapi.CharacterSnapshot{
		Name: "alpha", Level: 1, HP: 120, MaxHP: 120,
	}, 0)

	assert.Panics(t, func() {
		newTestLoop(t, LoopConfig{GoalExpr: "reach_level_2"}, sim, sim, ws, nil)
	})
	assert.Panics(t, func() {
		newTestLoop(t, LoopConfig{Character: "alpha"}, sim, sim, ws, nil)
	})

	l := newTestLoop(t, LoopConfig{Character: "alpha", GoalExpr: "reach_level_2"}, sim, sim, ws, nil)
	assert.Equal(t, defaultTickInterval, l.cfg.TickInterval)
	assert.NotNil(t, l.history, "a nil recorder falls back to NopRecorder")
}

func TestRunnerRequiresLoops(t *testing.T) {
	r := NewRunner(zaptest.NewLogger(t))
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no character loops registered")
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ws := chickenWorld(t)
	sim := gameapi.NewSimulator(ws, gameapi.CharacterSnapshot{
		Name: "alpha", Level: 1, HP: 120, MaxHP: 120,
	}, 0)
	l := newTestLoop(t, LoopConfig{
		Character:    "alpha",
		GoalExpr:     "alive",
		TickInterval: 5 * time.Millisecond,
	}, sim, sim, ws, nil)

	r := NewRunner(zaptest.NewLogger(t))
	r.Add(l)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown, not a failure")
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}
