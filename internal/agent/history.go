package agent

import (
	"context"
	"time"
)

// RunRecord captures one completed goal cycle for later analysis.
type RunRecord struct {
	ID           string
	Character    string
	GoalExpr     string
	PlanID       string
	PlanActions  []string
	PlanCost     int
	Success      bool
	DepthReached int
	ActionCount  int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// HistoryRecorder persists run records. Implementations must tolerate
// concurrent calls from multiple character loops.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, rec *RunRecord) error
}

// NopRecorder discards every record. Used when history persistence is
// disabled in configuration.
type NopRecorder struct{}

func (NopRecorder) RecordRun(context.Context, *RunRecord) error { return nil }
