package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type RunStore struct {
	db *sqlx.DB
}

const PipelineName = "dre_pipeline"

// Persisted run and step statuses.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusWarning = "WARNING"
	StatusFailed  = "FAILED"
)

const (
	TriggerManual    = "MANUAL"
	TriggerScheduled = "SCHEDULED"
	TriggerAPI       = "API"
)

// Start inserts a RUNNING run and fills in its generated id.
func (rs *RunStore) Start(ctx context.Context, run *Run) error {
	if run.PipelineName == "" {
		run.PipelineName = PipelineName
	}
	run.Status = StatusRunning

	query := rs.db.Rebind(`INSERT INTO dw.etl_run (
		pipeline_name,
		started_at,
		status,
		triggered_by
	) VALUES (?, ?, ?, ?)
	RETURNING run_id`)

	err := rs.db.QueryRowxContext(ctx, query, run.PipelineName, run.StartedAt, run.Status, run.TriggeredBy).Scan(&run.RunID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// LogStep appends one step record. Steps are never updated afterwards.
func (rs *RunStore) LogStep(ctx context.Context, step *StepLog) error {
	query := rs.db.Rebind(`INSERT INTO dw.etl_step_log (
		run_id,
		step_name,
		step_order,
		status,
		rows_read,
		rows_written,
		started_at,
		finished_at,
		error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING step_id`)

	err := rs.db.QueryRowxContext(ctx, query,
		step.RunID, step.StepName, step.StepOrder, step.Status,
		step.RowsRead, step.RowsWritten, step.StartedAt, step.FinishedAt, deref(step.ErrorMessage),
	).Scan(&step.StepID)
	if err != nil {
		return fmt.Errorf("failed to insert step %s: %w", step.StepName, err)
	}
	return nil
}

// Finish applies the terminal status. It only matches runs still RUNNING, so
// a second terminal update fails with ErrRunNotRunning.
func (rs *RunStore) Finish(ctx context.Context, runID int64, o RunOutcome) error {
	var errMsg any
	if o.ErrorMessage != "" {
		errMsg = o.ErrorMessage
	}

	query := rs.db.Rebind(`UPDATE dw.etl_run SET
		finished_at = ?,
		status = ?,
		duration_seconds = ?,
		total_rows_processed = ?,
		error_message = ?
	WHERE run_id = ? AND status = ?`)

	res, err := rs.db.ExecContext(ctx, query,
		o.FinishedAt, o.Status, o.DurationSeconds, o.TotalRows, errMsg,
		runID, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("run %d: %w", runID, ErrRunNotRunning)
	}
	return nil
}

const runColumns = `run_id, pipeline_name, started_at, finished_at, status, triggered_by,
	duration_seconds, total_rows_processed, error_message`

func (rs *RunStore) Get(ctx context.Context, runID int64) (*Run, error) {
	var run Run
	query := rs.db.Rebind(`SELECT ` + runColumns + ` FROM dw.etl_run WHERE run_id = ?`)
	if err := rs.db.GetContext(ctx, &run, query, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return &run, nil
}

func (rs *RunStore) GetLatest(ctx context.Context, limit int) ([]Run, error) {
	runs := []Run{}
	query := rs.db.Rebind(`SELECT ` + runColumns + ` FROM dw.etl_run ORDER BY run_id DESC LIMIT ?`)
	if err := rs.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (rs *RunStore) Steps(ctx context.Context, runID int64) ([]StepLog, error) {
	steps := []StepLog{}
	query := rs.db.Rebind(`SELECT
		step_id, run_id, step_name, step_order, status, rows_read, rows_written,
		started_at, finished_at, error_message
	FROM dw.etl_step_log
	WHERE run_id = ?
	ORDER BY step_order, step_id`)
	if err := rs.db.SelectContext(ctx, &steps, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list steps of run %d: %w", runID, err)
	}
	return steps, nil
}
