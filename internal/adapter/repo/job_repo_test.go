package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"descsvc/internal/domain"
	"descsvc/internal/sqlinline"
)

func TestJobRepositoryCreateSetsID(t *testing.T) {
	exec := newStubExecutor()
	exec.rows[sqlinline.QJobInsert] = func([]any) pgx.Row {
		return simpleRow{scan: func(dest ...any) error { return assign(dest, int64(42)) }}
	}
	repo := NewJobRepository(exec)

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job := &domain.Job{
		JobID:     "job-1",
		Subject:   "Novel",
		Context:   "ctx",
		SourceURL: "https://example.com",
		Status:    domain.JobStatusPending,
		StartedAt: &started,
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if job.ID != 42 || job.Version != 1 {
		t.Fatalf("unexpected job after create: id=%d version=%d", job.ID, job.Version)
	}
	if !job.UpdatedAt.Equal(started) {
		t.Fatalf("UpdatedAt = %s, want %s", job.UpdatedAt, started)
	}

	args := exec.args[sqlinline.QJobInsert]
	if args[0] != "job-1" || args[7] != "pending" {
		t.Fatalf("unexpected insert args: %v", args)
	}
	var progress domain.Progress
	if err := json.Unmarshal(args[8].([]byte), &progress); err != nil || progress.Total != 0 {
		t.Fatalf("progress arg = %s, err %v", args[8], err)
	}
}

func TestJobRepositoryGetByJobID(t *testing.T) {
	exec := newStubExecutor()
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	exec.rows[sqlinline.QJobGetByJobID] = func([]any) pgx.Row {
		return simpleRow{scan: func(dest ...any) error {
			return assign(dest,
				int64(7), "job-7", nil, "Novel", "ctx", "https://example.com", "", true,
				"processing", []byte(`{"total":4,"completed":2,"percent":50}`),
				"about", "wte", "sub", "tags",
				started, nil, started, "", 3,
			)
		}}
	}
	repo := NewJobRepository(exec)

	job, err := repo.GetByJobID(context.Background(), "job-7")
	if err != nil {
		t.Fatalf("GetByJobID returned error: %v", err)
	}
	if job.Status != domain.JobStatusProcessing || !job.Force || job.Version != 3 {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.Progress != (domain.Progress{Total: 4, Completed: 2, Percent: 50}) {
		t.Fatalf("unexpected progress: %+v", job.Progress)
	}
	if job.WorkflowID != nil || job.CompletedAt != nil {
		t.Fatalf("nullable columns should stay nil")
	}
	if job.Generated.Tags != "tags" {
		t.Fatalf("generated tags = %q", job.Generated.Tags)
	}
}

func TestJobRepositoryGetByJobIDNotFound(t *testing.T) {
	repo := NewJobRepository(newStubExecutor())
	if _, err := repo.GetByJobID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobRepositoryUpdate(t *testing.T) {
	exec := newStubExecutor()
	exec.execTag[sqlinline.QJobUpdate] = pgconn.NewCommandTag("UPDATE 1")
	repo := NewJobRepository(exec)

	progress := domain.NewProgress(2, 1)
	err := repo.Update(context.Background(), "job-1", domain.JobUpdate{
		Status:   domain.JobStatusProcessing,
		Progress: &progress,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	args := exec.args[sqlinline.QJobUpdate]
	if args[1] != "processing" {
		t.Fatalf("status arg = %v", args[1])
	}
	if args[3].(*string) != nil {
		t.Fatalf("generated fields should be nil when not updated")
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected a single statement, got %d", len(exec.calls))
	}
}

func TestJobRepositoryUpdateRejectsFinalizedAndUnknown(t *testing.T) {
	cases := []struct {
		name   string
		status string
		want   error
	}{
		{name: "finalized", status: "completed", want: domain.ErrJobFinalized},
		{name: "unknown", status: "", want: domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := newStubExecutor()
			exec.execTag[sqlinline.QJobUpdate] = pgconn.NewCommandTag("UPDATE 0")
			if tc.status != "" {
				status := tc.status
				exec.rows[sqlinline.QJobStatus] = func([]any) pgx.Row {
					return simpleRow{scan: func(dest ...any) error { return assign(dest, status) }}
				}
			}
			repo := NewJobRepository(exec)
			err := repo.Update(context.Background(), "job-1", domain.JobUpdate{Status: domain.JobStatusFailed})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
