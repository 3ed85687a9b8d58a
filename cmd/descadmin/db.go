package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"descsvc/internal/bootstrap"
	"descsvc/internal/infra"
)

// withStores loads configuration, opens the record store and runs fn. The
// connection is closed when fn returns.
func withStores(cmd *cobra.Command, envFile string, fn func(ctx context.Context, stores *bootstrap.Stores, logger zerolog.Logger) error) (err error) {
	if err := infra.LoadDotEnv(envFile); err != nil {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("service", "descadmin").Logger()
	if cfg.AppEnv != "development" {
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	closers := &infra.Closers{}
	defer func() {
		if cerr := closers.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger, closers)
	if err != nil {
		return err
	}
	return fn(ctx, stores, logger)
}
