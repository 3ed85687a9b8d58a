// Package orchestrator runs description jobs: one generator call per job,
// then a sequential render pass over every item of the subject.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"descsvc/internal/description"
	"descsvc/internal/domain"
	"descsvc/internal/prompts"
)

const (
	defaultWriteTimeout = 10 * time.Second
	descriptionMIME     = "text/plain; charset=utf-8"
)

type RunnerOptions struct {
	Jobs      domain.JobRepository
	Prompts   domain.PromptRepository
	Blobs     domain.BlobStore
	Generator domain.TextGenerator
	Logger    zerolog.Logger
	// WriteTimeout bounds each job record mutation.
	WriteTimeout time.Duration
	Now          func() time.Time
}

// Runner executes a single job from pending to a terminal status.
type Runner struct {
	jobs         domain.JobRepository
	prompts      domain.PromptRepository
	blobs        domain.BlobStore
	generator    domain.TextGenerator
	logger       zerolog.Logger
	writeTimeout time.Duration
	now          func() time.Time
}

func NewRunner(opts RunnerOptions) (*Runner, error) {
	switch {
	case opts.Jobs == nil:
		return nil, errors.New("runner: job repository is required")
	case opts.Prompts == nil:
		return nil, errors.New("runner: prompt repository is required")
	case opts.Blobs == nil:
		return nil, errors.New("runner: blob store is required")
	case opts.Generator == nil:
		return nil, errors.New("runner: text generator is required")
	}
	r := &Runner{
		jobs:         opts.Jobs,
		prompts:      opts.Prompts,
		blobs:        opts.Blobs,
		generator:    opts.Generator,
		logger:       opts.Logger,
		writeTimeout: opts.WriteTimeout,
		now:          opts.Now,
	}
	if r.writeTimeout <= 0 {
		r.writeTimeout = defaultWriteTimeout
	}
	if r.now == nil {
		r.now = func() time.Time { return time.Now().UTC() }
	}
	return r, nil
}

// Run drives the job identified by jobID. Any failure after the job was
// picked up is persisted as status failed with the error text; the same error
// is returned for logging by the caller.
func (r *Runner) Run(ctx context.Context, jobID string) (err error) {
	logger := r.logger.With().Str("job_id", jobID).Logger()

	job, err := r.jobs.GetByJobID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status != domain.JobStatusPending {
		return fmt.Errorf("%w: %s is %s", domain.ErrJobNotRunnable, jobID, job.Status)
	}
	logger = logger.With().Str("subject", job.Subject).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal fault: %v", rec)
			logger.Error().Interface("panic", rec).Msg("runner: recovered panic")
			r.fail(ctx, job.JobID, err, logger)
		}
	}()

	if err := r.execute(ctx, job, logger); err != nil {
		logger.Error().Err(err).Msg("runner: job failed")
		r.fail(ctx, job.JobID, err, logger)
		return err
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, job *domain.Job, logger zerolog.Logger) error {
	if err := r.persist(ctx, job.JobID, domain.JobUpdate{Status: domain.JobStatusProcessing}); err != nil {
		return err
	}

	sections, err := r.draft(ctx, job, logger)
	if err != nil {
		return err
	}
	if err := r.persist(ctx, job.JobID, domain.JobUpdate{
		Status:    domain.JobStatusProcessing,
		Generated: &sections,
	}); err != nil {
		return err
	}

	prefix := description.TimestampPrefix(job.Subject)
	keys, err := r.blobs.List(ctx, prefix)
	if err != nil {
		return err
	}
	items := description.ItemsFromKeys(prefix, keys)
	if len(items) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNoItems, job.Subject)
	}
	total := len(items)
	logger.Info().Int("items", total).Msg("runner: items discovered")

	initial := domain.NewProgress(total, 0)
	if err := r.persist(ctx, job.JobID, domain.JobUpdate{Status: domain.JobStatusProcessing, Progress: &initial}); err != nil {
		return err
	}

	subscribe := sections.Subscribe
	if strings.TrimSpace(job.OverrideText) != "" {
		subscribe = job.OverrideText
	}

	completed := 0
	for _, item := range items {
		itemLogger := logger.With().Str("item", item).Logger()
		written, err := r.renderItem(ctx, job, item, sections, subscribe)
		if err != nil {
			itemLogger.Warn().Err(err).Msg("runner: item skipped")
			continue
		}
		completed++
		if written {
			itemLogger.Debug().Msg("runner: description written")
		} else {
			itemLogger.Debug().Msg("runner: description exists, kept")
		}
		progress := domain.NewProgress(total, completed)
		if err := r.persist(ctx, job.JobID, domain.JobUpdate{Status: domain.JobStatusProcessing, Progress: &progress}); err != nil {
			return err
		}
	}

	finishedAt := r.now()
	final := domain.Progress{Total: total, Completed: completed, Percent: 100}
	if err := r.persist(ctx, job.JobID, domain.JobUpdate{
		Status:      domain.JobStatusCompleted,
		Progress:    &final,
		CompletedAt: &finishedAt,
	}); err != nil {
		return err
	}
	logger.Info().Int("completed", completed).Int("total", total).Msg("runner: job completed")
	return nil
}

// draft makes the single generator call of a job and splits the reply.
func (r *Runner) draft(ctx context.Context, job *domain.Job, logger zerolog.Logger) (domain.Sections, error) {
	system, userTemplate, err := prompts.Load(ctx, r.prompts)
	if err != nil {
		return domain.Sections{}, err
	}
	reply, err := r.generator.Generate(ctx, system, prompts.Fill(userTemplate, job.Subject, job.Context))
	if err != nil {
		return domain.Sections{}, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return domain.Sections{}, fmt.Errorf("%w: empty reply", domain.ErrGenerator)
	}
	sections, parsed := description.ParseSections(reply)
	if !parsed {
		logger.Warn().Int("reply_chars", utf8.RuneCountInString(reply)).Msg("runner: section markers missing, using whole reply as about")
	}
	return sections, nil
}

// renderItem produces one description. It reports whether a blob was written;
// false with a nil error means an existing output was kept.
func (r *Runner) renderItem(ctx context.Context, job *domain.Job, item string, sections domain.Sections, subscribe string) (bool, error) {
	outKey := description.OutputKey(job.Subject, item)
	if !job.Force {
		exists, err := r.blobs.Exists(ctx, outKey)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	raw, err := r.blobs.Get(ctx, description.TimestampKey(job.Subject, item))
	if err != nil {
		return false, err
	}
	if !utf8.Valid(raw) {
		return false, fmt.Errorf("%w: timestamps for %s are not valid UTF-8", domain.ErrItemRenderInvalid, item)
	}

	text := description.Render(description.RenderInput{
		Subject:      job.Subject,
		SourceURL:    job.SourceURL,
		About:        sections.About,
		WhatToExpect: sections.WhatToExpect,
		Subscribe:    subscribe,
		Timestamps:   string(raw),
		Tags:         sections.Tags,
	})
	if err := description.Validate(text); err != nil {
		return false, err
	}
	if err := r.blobs.Put(ctx, outKey, []byte(text), descriptionMIME); err != nil {
		return false, err
	}
	return true, nil
}

// persist applies one short, independent mutation to the job record. It is
// detached from ctx cancellation so a stopping caller still records state.
func (r *Runner) persist(ctx context.Context, jobID string, upd domain.JobUpdate) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
	defer cancel()
	return r.jobs.Update(writeCtx, jobID, upd)
}

func (r *Runner) fail(ctx context.Context, jobID string, cause error, logger zerolog.Logger) {
	msg := cause.Error()
	finishedAt := r.now()
	err := r.persist(ctx, jobID, domain.JobUpdate{
		Status:       domain.JobStatusFailed,
		ErrorMessage: &msg,
		CompletedAt:  &finishedAt,
	})
	if err != nil {
		logger.Error().Err(err).Msg("runner: could not record failure")
	}
}
