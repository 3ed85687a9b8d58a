package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"descsvc/internal/bootstrap"
	"descsvc/internal/http/handlers"
	"descsvc/internal/http/httpapi"
	"descsvc/internal/infra"
	"descsvc/internal/prompts"
)

const shutdownTimeout = 20 * time.Second

func main() {
	if err := infra.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireAPIToken(); err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("api: exited")
		os.Exit(1)
	}
}

// run owns every resource it opens; the deferred closers run on each return
// path, including startup failures.
func run(cfg *infra.Config, logger infra.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closers := &infra.Closers{}
	defer func() {
		if cerr := closers.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("api: shutdown hooks failed")
		}
	}()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger, closers)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	if stores.Driver == infra.DriverSQLite {
		// local databases are migrated and seeded on boot
		if err := stores.Migrate(ctx, logger); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
		if _, err := prompts.Seed(ctx, stores.Prompts, logger); err != nil {
			return fmt.Errorf("seed prompts: %w", err)
		}
	}

	blobs, err := bootstrap.OpenBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	runner, err := bootstrap.NewRunner(cfg, stores, blobs, logger)
	if err != nil {
		return fmt.Errorf("build job runner: %w", err)
	}
	dispatcher, err := bootstrap.NewDispatcher(ctx, cfg, runner, logger, closers)
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}

	app := &handlers.App{
		Jobs:       stores.Jobs,
		Prompts:    stores.Prompts,
		Blobs:      blobs,
		Dispatcher: dispatcher,
		Logger:     logger,
		Version:    handlers.ServiceVersion,
	}
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		APIToken:           cfg.APIToken,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		Logger:             logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("db", stores.Driver).
			Str("storage", cfg.StorageDriver).
			Str("dispatch", cfg.DispatchMode).
			Msg("api: listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		serveErr = fmt.Errorf("http server: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: http shutdown")
	}
	logger.Info().Msg("api: stopped accepting requests, draining jobs")
	return serveErr
}
