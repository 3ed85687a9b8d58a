package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"descsvc/internal/domain"
)

type generateRequest struct {
	Subject      string `json:"subject" validate:"required,nopathsep,nodotsegment"`
	Context      string `json:"context" validate:"required,max=5000"`
	SourceURL    string `json:"source_url" validate:"required,startswith=http"`
	OverrideText string `json:"override_text" validate:"max=1000"`
	Force        bool   `json:"force"`
}

type generateResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	PollURL string `json:"poll_url"`
}

// GenerateDescriptions records a pending job and hands it to the dispatcher.
// The response never waits for generation.
func (a *App) GenerateDescriptions(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := check(req, generateRules); msg != "" {
		a.error(w, http.StatusBadRequest, msg)
		return
	}

	startedAt := a.now()
	job := &domain.Job{
		JobID:        a.newID(),
		Subject:      req.Subject,
		Context:      req.Context,
		SourceURL:    req.SourceURL,
		OverrideText: req.OverrideText,
		Force:        req.Force,
		Status:       domain.JobStatusPending,
		Progress:     domain.NewProgress(0, 0),
		StartedAt:    &startedAt,
		UpdatedAt:    startedAt,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.internal(w, r, err, "generate: create job")
		return
	}

	if err := a.Dispatcher.Dispatch(r.Context(), job.JobID); err != nil {
		a.abandon(r.Context(), job.JobID, err)
		a.internal(w, r, err, "generate: dispatch job")
		return
	}

	a.Logger.Info().Str("job_id", job.JobID).Str("subject", job.Subject).Bool("force", job.Force).Msg("generate: job accepted")
	a.json(w, http.StatusOK, generateResponse{
		Success: true,
		JobID:   job.JobID,
		Status:  string(domain.JobStatusProcessing),
		Message: fmt.Sprintf("Description generation started for %s", job.Subject),
		PollURL: "/jobs/" + job.JobID,
	})
}

// abandon marks a job that could not be scheduled as failed so pollers do not
// wait on it forever.
func (a *App) abandon(ctx context.Context, jobID string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	msg := fmt.Sprintf("dispatch failed: %v", cause)
	finishedAt := a.now()
	err := a.Jobs.Update(ctx, jobID, domain.JobUpdate{
		Status:       domain.JobStatusFailed,
		ErrorMessage: &msg,
		CompletedAt:  &finishedAt,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("generate: could not mark undispatched job failed")
	}
}
