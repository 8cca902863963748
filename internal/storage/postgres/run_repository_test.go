package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blentz/artifactsmmo-sub007/internal/agent"
	"github.com/blentz/artifactsmmo-sub007/internal/storage/postgres"
	"github.com/blentz/artifactsmmo-sub007/internal/testutil"
)

func testRecord(character string, startedAt time.Time, success bool) *agent.RunRecord {
	return &agent.RunRecord{
		ID:           uuid.NewString(),
		Character:    character,
		GoalExpr:     "reach_level_10",
		PlanID:       uuid.NewString(),
		PlanActions:  []string{"move_1_0", "fight_chicken_1_0", "rest"},
		PlanCost:     14,
		Success:      success,
		DepthReached: 1,
		ActionCount:  3,
		StartedAt:    startedAt,
		FinishedAt:   startedAt.Add(30 * time.Second),
	}
}

func TestRunRepositoryRecordAndGet(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewRunRepository(pc.RawPool)
	ctx := context.Background()

	rec := testRecord("alpha", time.Now().UTC().Truncate(time.Microsecond), true)
	rec.ErrorMessage = ""
	require.NoError(t, repo.RecordRun(ctx, rec))

	got, err := repo.GetRun(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "alpha", got.Character)
	assert.Equal(t, "reach_level_10", got.GoalExpr)
	assert.Equal(t, rec.PlanID, got.PlanID)
	assert.Equal(t, 14, got.PlanCost)
	assert.True(t, got.Success)
	assert.Equal(t, 1, got.DepthReached)
	assert.Equal(t, 3, got.ActionCount)
	assert.Empty(t, got.ErrorMessage)
	assert.Equal(t, []string{"move_1_0", "fight_chicken_1_0", "rest"}, got.PlanActions,
		"actions come back in plan order")
	assert.WithinDuration(t, rec.StartedAt, got.StartedAt, time.Millisecond)
	assert.WithinDuration(t, rec.FinishedAt, got.FinishedAt, time.Millisecond)
}

func TestRunRepositoryGetRunNotFound(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewRunRepository(pc.RawPool)

	_, err := repo.GetRun(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, postgres.ErrRunNotFound)
}

func TestRunRepositoryRecordRunEmptyPlan(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewRunRepository(pc.RawPool)
	ctx := context.Background()

	rec := testRecord("alpha", time.Now().UTC(), false)
	rec.PlanActions = nil
	rec.ActionCount = 0
	rec.ErrorMessage = "action rest: goal timeout exceeded"
	require.NoError(t, repo.RecordRun(ctx, rec))

	got, err := repo.GetRun(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Empty(t, got.PlanActions)
	assert.Equal(t, "action rest: goal timeout exceeded", got.ErrorMessage)
}

func TestRunRepositoryListRecent(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewRunRepository(pc.RawPool)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		rec := testRecord("alpha", base.Add(time.Duration(i)*time.Minute), true)
		require.NoError(t, repo.RecordRun(ctx, rec))
		ids = append(ids, rec.ID)
	}
	other := testRecord("beta", base.Add(10*time.Minute), true)
	require.NoError(t, repo.RecordRun(ctx, other))

	runs, err := repo.ListRecent(ctx, "alpha", 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[4], runs[0].ID, "newest first")
	assert.Equal(t, ids[3], runs[1].ID)
	assert.Equal(t, ids[2], runs[2].ID)
	for _, r := range runs {
		assert.Equal(t, "alpha", r.Character)
	}
}

func TestRunRepositorySuccessRate(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	repo := postgres.NewRunRepository(pc.RawPool)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	outcomes := []bool{true, true, true, false}
	for i, ok := range outcomes {
		rec := testRecord("alpha", base.Add(time.Duration(i)*time.Minute), ok)
		require.NoError(t, repo.RecordRun(ctx, rec))
	}
	old := testRecord("alpha", base.Add(-48*time.Hour), false)
	require.NoError(t, repo.RecordRun(ctx, old))

	rate, err := repo.SuccessRate(ctx, "alpha", base.Add(-time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, rate, 1e-9, "runs before the window are excluded")

	rate, err = repo.SuccessRate(ctx, "gamma", base)
	require.NoError(t, err)
	assert.Zero(t, rate, "no runs means a zero rate, not an error")
}
