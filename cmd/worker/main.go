package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"descsvc/internal/bootstrap"
	"descsvc/internal/infra"
	"descsvc/internal/orchestrator"
)

func main() {
	if err := infra.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("worker: exited")
		os.Exit(1)
	}
	logger.Info().Msg("worker: stopped")
}

// run returns instead of exiting so the deferred closers always run.
func run(cfg *infra.Config, logger infra.Logger) error {
	if cfg.DispatchMode != "redis" {
		return fmt.Errorf("DISPATCH_MODE must be redis, got %q; the api runs jobs itself otherwise", cfg.DispatchMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closers := &infra.Closers{}
	defer func() {
		if err := closers.Close(); err != nil {
			logger.Error().Err(err).Msg("worker: shutdown hooks failed")
		}
	}()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger, closers)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	blobs, err := bootstrap.OpenBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	runner, err := bootstrap.NewRunner(cfg, stores, blobs, logger)
	if err != nil {
		return fmt.Errorf("build job runner: %w", err)
	}

	client, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	closers.Add(client.Close)

	queue := orchestrator.NewRedisQueue(client, cfg.RedisQueue)
	if err := queue.Consume(ctx, runner, cfg.WorkerConcurrency, logger); err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	return nil
}
