package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/jackc/pgx/v5"
)

const runColumns = `
	SELECT id, issue_key, status, stage, commit_hash, error, started_at,
		COALESCE(finished_at, '0001-01-01 00:00:00+00'::timestamptz)
	FROM pipeline_runs`

// SaveRun inserts a new pipeline run.
func (r *Repository) SaveRun(ctx context.Context, run models.PipelineRun) error {
	defer r.observe("save_run", time.Now())

	query := `
		INSERT INTO pipeline_runs (id, issue_key, status, stage, commit_hash, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := r.db.Exec(ctx, query, run.ID, run.IssueKey, run.Status, run.Stage, run.CommitHash, run.Error,
		run.StartedAt, nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to execute insert query: %w", err)
	}

	return nil
}

// UpdateRun stores the outcome of a pipeline run.
func (r *Repository) UpdateRun(ctx context.Context, run models.PipelineRun) error {
	defer r.observe("update_run", time.Now())

	query := `
		UPDATE pipeline_runs
		SET status = $2, stage = $3, commit_hash = $4, error = $5, finished_at = $6
		WHERE id = $1;`

	tag, err := r.db.Exec(ctx, query, run.ID, run.Status, run.Stage, run.CommitHash, run.Error,
		nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to execute update query: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update run '%s': %w", run.ID, ErrNotFound)
	}

	return nil
}

// GetLastRun returns the most recent run of the given issue.
func (r *Repository) GetLastRun(ctx context.Context, issueKey string) (models.PipelineRun, error) {
	defer r.observe("get_last_run", time.Now())

	query := runColumns + ` WHERE issue_key = $1 ORDER BY started_at DESC LIMIT 1`

	run, err := scanRun(r.db.QueryRow(ctx, query, issueKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PipelineRun{}, fmt.Errorf("no runs for issue '%s': %w", issueKey, ErrNotFound)
		}
		return models.PipelineRun{}, fmt.Errorf("failed to get last run from table pipeline_runs: %w", err)
	}

	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns every run.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	defer r.observe("list_runs", time.Now())

	rows, err := r.db.Query(ctx, runColumns+` ORDER BY started_at DESC LIMIT $1`, rowLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]models.PipelineRun, 0)
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", scanErr)
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}

	return runs, nil
}

func scanRun(row pgx.Row) (models.PipelineRun, error) {
	var run models.PipelineRun

	err := row.Scan(&run.ID, &run.IssueKey, &run.Status, &run.Stage, &run.CommitHash, &run.Error,
		&run.StartedAt, &run.FinishedAt)

	return run, err
}

// rowLimit binds limit <= 0 as LIMIT NULL, which Postgres treats as no limit.
func rowLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func nullTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}
