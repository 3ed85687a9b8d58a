package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"descsvc/internal/domain"
)

type jobResponse struct {
	Success      bool            `json:"success"`
	JobID        string          `json:"job_id"`
	Status       string          `json:"status"`
	Progress     domain.Progress `json:"progress"`
	StartedAt    *string         `json:"started_at"`
	CompletedAt  *string         `json:"completed_at"`
	UpdatedAt    *string         `json:"updated_at"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	Message      string          `json:"message,omitempty"`
}

func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := a.Jobs.GetByJobID(r.Context(), jobID)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		a.internal(w, r, err, "jobs: load job")
		return
	}

	resp := jobResponse{
		Success:     true,
		JobID:       job.JobID,
		Status:      string(job.Status),
		Progress:    job.Progress,
		StartedAt:   isoTime(job.StartedAt),
		CompletedAt: isoTime(job.CompletedAt),
	}
	if !job.UpdatedAt.IsZero() {
		resp.UpdatedAt = isoTime(&job.UpdatedAt)
	}
	switch job.Status {
	case domain.JobStatusFailed:
		msg := job.ErrorMessage
		resp.ErrorMessage = &msg
	case domain.JobStatusCompleted:
		resp.Message = fmt.Sprintf("All %d descriptions generated successfully", job.Progress.Completed)
	}
	a.json(w, http.StatusOK, resp)
}

func isoTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
