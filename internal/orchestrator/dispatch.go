package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrDispatcherClosed = errors.New("dispatcher closed")
	ErrQueueFull        = errors.New("dispatch queue full")
)

// Dispatcher schedules a job to run in the background. It returns once the
// job is scheduled, never after it ran.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

// JobRunner is satisfied by *Runner.
type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

const defaultQueueSize = 256

// LocalPool runs jobs on a fixed set of goroutines inside the API process.
type LocalPool struct {
	runner JobRunner
	logger zerolog.Logger
	queue  chan string
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewLocalPool(runner JobRunner, workers, queueSize int, logger zerolog.Logger) *LocalPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}
	p := &LocalPool{
		runner: runner,
		logger: logger,
		queue:  make(chan string, queueSize),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *LocalPool) Dispatch(ctx context.Context, jobID string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrDispatcherClosed
	}
	select {
	case p.queue <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued and running ones to finish
// or for ctx to expire.
func (p *LocalPool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain job pool: %w", ctx.Err())
	}
}

func (p *LocalPool) work() {
	defer p.wg.Done()
	for jobID := range p.queue {
		runJob(p.runner, jobID, p.logger)
	}
}

// runJob runs one job on a context that outlives the request that created it.
func runJob(runner JobRunner, jobID string, logger zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Str("job_id", jobID).Interface("panic", rec).Msg("dispatch: job panicked")
		}
	}()
	logger.Info().Str("job_id", jobID).Msg("dispatch: job started")
	if err := runner.Run(context.Background(), jobID); err != nil {
		logger.Error().Err(err).Str("job_id", jobID).Msg("dispatch: job finished with error")
		return
	}
	logger.Info().Str("job_id", jobID).Msg("dispatch: job finished")
}

var _ Dispatcher = (*LocalPool)(nil)
