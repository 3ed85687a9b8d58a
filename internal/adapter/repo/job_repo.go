package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"descsvc/internal/domain"
	"descsvc/internal/infra"
	"descsvc/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository on Postgres.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

// Create inserts job and fills in its surrogate ID.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	progress, err := json.Marshal(job.Progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	startedAt := time.Now().UTC()
	if job.StartedAt != nil {
		startedAt = *job.StartedAt
	}
	updatedAt := job.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = startedAt
	}

	row := r.db.QueryRow(ctx, sqlinline.QJobInsert,
		job.JobID,
		job.WorkflowID,
		job.Subject,
		job.Context,
		job.SourceURL,
		job.OverrideText,
		job.Force,
		string(job.Status),
		progress,
		startedAt,
		updatedAt,
	)
	if err := row.Scan(&job.ID); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	job.StartedAt = &startedAt
	job.UpdatedAt = updatedAt
	job.Version = 1
	return nil
}

func (r *JobRepositoryPG) GetByJobID(ctx context.Context, jobID string) (*domain.Job, error) {
	var (
		job      domain.Job
		status   string
		progress []byte
	)
	err := r.db.QueryRow(ctx, sqlinline.QJobGetByJobID, jobID).Scan(
		&job.ID,
		&job.JobID,
		&job.WorkflowID,
		&job.Subject,
		&job.Context,
		&job.SourceURL,
		&job.OverrideText,
		&job.Force,
		&status,
		&progress,
		&job.Generated.About,
		&job.Generated.WhatToExpect,
		&job.Generated.Subscribe,
		&job.Generated.Tags,
		&job.StartedAt,
		&job.CompletedAt,
		&job.UpdatedAt,
		&job.ErrorMessage,
		&job.Version,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	if len(progress) > 0 {
		if err := json.Unmarshal(progress, &job.Progress); err != nil {
			return nil, fmt.Errorf("decode progress: %w", err)
		}
	}
	return &job, nil
}

func (r *JobRepositoryPG) Update(ctx context.Context, jobID string, upd domain.JobUpdate) error {
	var progress []byte
	if upd.Progress != nil {
		b, err := json.Marshal(upd.Progress)
		if err != nil {
			return fmt.Errorf("encode progress: %w", err)
		}
		progress = b
	}
	var about, wte, subscribe, tags *string
	if g := upd.Generated; g != nil {
		about, wte, subscribe, tags = &g.About, &g.WhatToExpect, &g.Subscribe, &g.Tags
	}

	tag, err := r.db.Exec(ctx, sqlinline.QJobUpdate,
		jobID,
		string(upd.Status),
		progress,
		about,
		wte,
		subscribe,
		tags,
		upd.ErrorMessage,
		upd.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.explainNoUpdate(ctx, jobID)
}

// explainNoUpdate tells an unknown job apart from a finalized one.
func (r *JobRepositoryPG) explainNoUpdate(ctx context.Context, jobID string) error {
	var status string
	if err := r.db.QueryRow(ctx, sqlinline.QJobStatus, jobID).Scan(&status); err != nil {
		if infra.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return fmt.Errorf("%w: status %s", domain.ErrJobFinalized, status)
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
