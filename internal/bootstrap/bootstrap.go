// Package bootstrap assembles the concrete adapters selected by configuration.
// Commands call it so the API, the worker and the admin CLI share one wiring.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"descsvc/internal/adapter/repo"
	"descsvc/internal/adapter/sqlite"
	"descsvc/internal/domain"
	"descsvc/internal/infra"
	"descsvc/internal/orchestrator"
	"descsvc/internal/providers/llm"
	"descsvc/internal/storage"
)

const poolDrainTimeout = 30 * time.Second

// Stores bundles the record store repositories of one database.
type Stores struct {
	Driver  string
	Jobs    domain.JobRepository
	Prompts domain.PromptRepository

	// sqlDB is the database/sql handle goose migrates.
	sqlDB *sql.DB
}

// OpenStores connects to DATABASE_URL and registers the connection on closers.
func OpenStores(ctx context.Context, cfg *infra.Config, logger zerolog.Logger, closers *infra.Closers) (*Stores, error) {
	driver, dsn, err := cfg.Database()
	if err != nil {
		return nil, err
	}
	switch driver {
	case infra.DriverPostgres:
		pool, err := infra.NewDBPool(ctx, dsn)
		if err != nil {
			return nil, err
		}
		closers.Add(func() error { pool.Close(); return nil })
		stores := postgresStores(pool, logger)
		closers.Add(stores.sqlDB.Close)
		return stores, nil
	case infra.DriverSQLite:
		db, err := infra.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		closers.Add(db.Close)
		return &Stores{
			Driver:  infra.DriverSQLite,
			Jobs:    sqlite.NewJobRepository(db),
			Prompts: sqlite.NewPromptRepository(db),
			sqlDB:   db,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func postgresStores(pool *pgxpool.Pool, logger zerolog.Logger) *Stores {
	runner := infra.NewSQLRunner(pool, logger)
	return &Stores{
		Driver:  infra.DriverPostgres,
		Jobs:    repo.NewJobRepository(runner),
		Prompts: repo.NewPromptRepository(runner),
		sqlDB:   stdlib.OpenDBFromPool(pool),
	}
}

// Migrate applies pending schema migrations for the store's driver.
func (s *Stores) Migrate(ctx context.Context, logger zerolog.Logger) error {
	return infra.Migrate(ctx, s.Driver, s.sqlDB, logger)
}

// OpenBlobStore returns the blob store selected by STORAGE_DRIVER.
func OpenBlobStore(ctx context.Context, cfg *infra.Config) (domain.BlobStore, error) {
	switch cfg.StorageDriver {
	case "fs":
		store, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
		store, err := storage.NewS3Store(client, cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// NewRunner builds the job runner on top of the configured adapters.
func NewRunner(cfg *infra.Config, stores *Stores, blobs domain.BlobStore, logger zerolog.Logger) (*orchestrator.Runner, error) {
	gen, err := llm.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return orchestrator.NewRunner(orchestrator.RunnerOptions{
		Jobs:      stores.Jobs,
		Prompts:   stores.Prompts,
		Blobs:     blobs,
		Generator: gen,
		Logger:    logger,
	})
}

// NewDispatcher returns the dispatcher selected by DISPATCH_MODE. The local
// pool is drained on close; the Redis client is closed.
func NewDispatcher(ctx context.Context, cfg *infra.Config, runner orchestrator.JobRunner, logger zerolog.Logger, closers *infra.Closers) (orchestrator.Dispatcher, error) {
	switch cfg.DispatchMode {
	case "local":
		pool := orchestrator.NewLocalPool(runner, cfg.WorkerConcurrency, 0, logger)
		closers.Add(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), poolDrainTimeout)
			defer cancel()
			return pool.Close(ctx)
		})
		return pool, nil
	case "redis":
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		closers.Add(client.Close)
		return orchestrator.NewRedisQueue(client, cfg.RedisQueue), nil
	default:
		return nil, fmt.Errorf("unsupported dispatch mode %q", cfg.DispatchMode)
	}
}
