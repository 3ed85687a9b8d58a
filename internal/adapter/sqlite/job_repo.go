// Package sqlite implements the record store on an embedded SQLite database
// for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"descsvc/internal/domain"
)

const jobColumns = `id, job_id, workflow_id, subject, context, source_url, COALESCE(override_text, ''),
	force, status, progress_data, COALESCE(generated_about, ''), COALESCE(generated_what_to_expect, ''),
	COALESCE(generated_subscribe, ''), COALESCE(generated_tags, ''), started_at, completed_at,
	updated_at, COALESCE(error_message, ''), version`

// JobRepository implements domain.JobRepository using SQLite.
type JobRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	progress, err := json.Marshal(job.Progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	startedAt := r.now()
	if job.StartedAt != nil {
		startedAt = *job.StartedAt
	}
	updatedAt := job.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = startedAt
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO description_jobs (job_id, workflow_id, subject, context, source_url, override_text,
			force, status, progress_data, started_at, updated_at, version)
		 VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, 1)`,
		job.JobID, nullInt64(job.WorkflowID), job.Subject, job.Context, job.SourceURL, job.OverrideText,
		job.Force, string(job.Status), string(progress), startedAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	job.ID = id
	job.StartedAt = &startedAt
	job.UpdatedAt = updatedAt
	job.Version = 1
	return nil
}

func (r *JobRepository) GetByJobID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM description_jobs WHERE job_id = ?`, jobID)
	return scanJob(row)
}

func (r *JobRepository) Update(ctx context.Context, jobID string, upd domain.JobUpdate) error {
	var progress sql.NullString
	if upd.Progress != nil {
		b, err := json.Marshal(upd.Progress)
		if err != nil {
			return fmt.Errorf("encode progress: %w", err)
		}
		progress = sql.NullString{String: string(b), Valid: true}
	}
	var about, wte, subscribe, tags sql.NullString
	if g := upd.Generated; g != nil {
		about = sql.NullString{String: g.About, Valid: true}
		wte = sql.NullString{String: g.WhatToExpect, Valid: true}
		subscribe = sql.NullString{String: g.Subscribe, Valid: true}
		tags = sql.NullString{String: g.Tags, Valid: true}
	}
	var errMsg sql.NullString
	if upd.ErrorMessage != nil {
		errMsg = sql.NullString{String: *upd.ErrorMessage, Valid: true}
	}
	var completedAt sql.NullTime
	if upd.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *upd.CompletedAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE description_jobs
		 SET status = ?,
		     progress_data = COALESCE(?, progress_data),
		     generated_about = COALESCE(?, generated_about),
		     generated_what_to_expect = COALESCE(?, generated_what_to_expect),
		     generated_subscribe = COALESCE(?, generated_subscribe),
		     generated_tags = COALESCE(?, generated_tags),
		     error_message = COALESCE(?, error_message),
		     completed_at = COALESCE(?, completed_at),
		     updated_at = ?,
		     version = version + 1
		 WHERE job_id = ? AND status NOT IN ('completed', 'failed')`,
		string(upd.Status), progress, about, wte, subscribe, tags, errMsg, completedAt, r.now(), jobID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM description_jobs WHERE job_id = ?`, jobID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: status %s", domain.ErrJobFinalized, status)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*domain.Job, error) {
	var (
		job         domain.Job
		workflowID  sql.NullInt64
		status      string
		progress    string
		startedAt   time.Time
		completedAt sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.JobID, &workflowID, &job.Subject, &job.Context, &job.SourceURL, &job.OverrideText,
		&job.Force, &status, &progress, &job.Generated.About, &job.Generated.WhatToExpect,
		&job.Generated.Subscribe, &job.Generated.Tags, &startedAt, &completedAt,
		&job.UpdatedAt, &job.ErrorMessage, &job.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	if workflowID.Valid {
		job.WorkflowID = &workflowID.Int64
	}
	job.StartedAt = &startedAt
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	if err := json.Unmarshal([]byte(progress), &job.Progress); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &job, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

var _ domain.JobRepository = (*JobRepository)(nil)
