package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blentz/artifactsmmo-sub007/internal/agent"
)

// ErrRunNotFound is returned when a run lookup yields no results.
var ErrRunNotFound = errors.New("run not found")

// RunRepository persists goal-cycle run records. It implements
// agent.HistoryRecorder.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// RecordRun inserts a run and its executed action list in one transaction.
//
// Precondition: rec.ID must be a unique UUID; rec.Character must be non-empty.
// Postcondition: Either the run and all its action rows are stored, or
// nothing is.
func (r *RunRepository) RecordRun(ctx context.Context, rec *agent.RunRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning run transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO runs
			(id, character_name, goal_expr, plan_id, plan_cost, success,
			 depth_reached, action_count, error_message, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.Character, rec.GoalExpr, rec.PlanID, rec.PlanCost, rec.Success,
		rec.DepthReached, rec.ActionCount, rec.ErrorMessage, rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, name := range rec.PlanActions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO run_actions (run_id, position, action_name)
			VALUES ($1,$2,$3)`,
			rec.ID, i, name,
		); err != nil {
			return fmt.Errorf("inserting run action %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing run transaction: %w", err)
	}
	return nil
}

// GetRun fetches one run by ID, including its action list in plan order.
//
// Postcondition: Returns the run or ErrRunNotFound.
func (r *RunRepository) GetRun(ctx context.Context, id string) (*agent.RunRecord, error) {
	var rec agent.RunRecord
	err := r.db.QueryRow(ctx, `
		SELECT id, character_name, goal_expr, plan_id, plan_cost, success,
		       depth_reached, action_count, error_message, started_at, finished_at
		FROM runs WHERE id = $1`,
		id,
	).Scan(
		&rec.ID, &rec.Character, &rec.GoalExpr, &rec.PlanID, &rec.PlanCost, &rec.Success,
		&rec.DepthReached, &rec.ActionCount, &rec.ErrorMessage, &rec.StartedAt, &rec.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("fetching run: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT action_name FROM run_actions
		WHERE run_id = $1 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching run actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning run action: %w", err)
		}
		rec.PlanActions = append(rec.PlanActions, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run actions: %w", err)
	}
	return &rec, nil
}

// ListRecent returns the most recent runs for a character, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *RunRepository) ListRecent(ctx context.Context, characterName string, limit int) ([]*agent.RunRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, character_name, goal_expr, plan_id, plan_cost, success,
		       depth_reached, action_count, error_message, started_at, finished_at
		FROM runs WHERE character_name = $1
		ORDER BY started_at DESC LIMIT $2`,
		characterName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []*agent.RunRecord
	for rows.Next() {
		var rec agent.RunRecord
		if err := rows.Scan(
			&rec.ID, &rec.Character, &rec.GoalExpr, &rec.PlanID, &rec.PlanCost, &rec.Success,
			&rec.DepthReached, &rec.ActionCount, &rec.ErrorMessage, &rec.StartedAt, &rec.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return out, nil
}

// SuccessRate returns the fraction of successful runs for a character over
// the trailing window.
func (r *RunRepository) SuccessRate(ctx context.Context, characterName string, since time.Time) (float64, error) {
	var total, successes int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE success)
		FROM runs WHERE character_name = $1 AND started_at >= $2`,
		characterName, since,
	).Scan(&total, &successes)
	if err != nil {
		return 0, fmt.Errorf("computing success rate: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(successes) / float64(total), nil
}
