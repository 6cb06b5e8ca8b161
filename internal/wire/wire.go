// Package wire builds the store and services every front end shares.
package wire

import (
	"context"
	"fmt"
	"log/slog"

	"seqtag/internal/adapters/memory"
	"seqtag/internal/adapters/postgres"
	"seqtag/internal/adapters/sqlite"
	"seqtag/internal/application/batch"
	"seqtag/internal/application/session"
	"seqtag/internal/config"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// App holds the dependencies a front end needs
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    ports.Store
	Executor *batch.Executor[string]
}

// New opens the configured store and builds the executor
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "store opened", "driver", cfg.Driver, "batch_size", cfg.BatchSize)
	return &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Executor: batch.NewExecutor[string](
			batch.WithChunkSize(cfg.BatchSize),
			batch.WithLogger(logger),
		),
	}, nil
}

// OpenStore opens the store selected by cfg.Driver
func OpenStore(ctx context.Context, cfg *config.Config) (ports.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		s, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

// Session starts an edit session for rel
func (a *App) Session(rel domain.Relation) *session.Session {
	return session.New(a.Store, rel, a.Executor, a.Logger)
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
