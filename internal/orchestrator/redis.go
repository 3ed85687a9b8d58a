package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrQueueEmpty is returned by Next when no job arrived within the wait.
var ErrQueueEmpty = errors.New("queue empty")

const (
	defaultPollWait = 5 * time.Second
	errorBackoff    = time.Second
)

// RedisClient is the subset of *redis.Client the queue needs.
type RedisClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisQueue hands job ids to separate worker processes through a Redis list.
type RedisQueue struct {
	client   RedisClient
	key      string
	pollWait time.Duration
}

func NewRedisQueue(client RedisClient, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key, pollWait: defaultPollWait}
}

func (q *RedisQueue) Dispatch(ctx context.Context, jobID string) error {
	if err := q.client.LPush(ctx, q.key, jobID).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", jobID, err)
	}
	return nil
}

// Next blocks up to wait for the oldest queued job id.
func (q *RedisQueue) Next(ctx context.Context, wait time.Duration) (string, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	if len(res) != 2 {
		return "", fmt.Errorf("unexpected brpop reply: %v", res)
	}
	return res[1], nil
}

// Consume pops job ids and runs them with at most concurrency jobs in flight.
// It returns when ctx is cancelled, after running jobs have finished.
func (q *RedisQueue) Consume(ctx context.Context, runner JobRunner, concurrency int, logger zerolog.Logger) error {
	if concurrency < 1 {
		concurrency = 1
	}
	slots := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	logger.Info().Str("queue", q.key).Int("concurrency", concurrency).Msg("worker: consuming")
	for {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		jobID, err := q.Next(ctx, q.pollWait)
		if err != nil {
			<-slots
			if ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, ErrQueueEmpty) {
				logger.Error().Err(err).Msg("worker: dequeue failed")
				if !sleepCtx(ctx, errorBackoff) {
					return nil
				}
			}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()
			runJob(runner, jobID, logger)
		}()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

var _ Dispatcher = (*RedisQueue)(nil)
