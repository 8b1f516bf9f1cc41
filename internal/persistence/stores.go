package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/repository"
)

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores bundles the record store backend selected by STORE_BACKEND.
type Stores struct {
	Backend   string
	Reporters repository.ReporterRepository
	Issues    repository.IssueRepository
	// Redis is set only for the redis backend; the session store shares it.
	Redis   *Redis
	Pingers map[string]Pinger

	closers []func()
}

// Open connects the configured backend and builds its repositories.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
	stores := &Stores{Backend: cfg.Store.Backend, Pingers: map[string]Pinger{}}

	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		reporters := repository.NewMemoryReporterRepository()
		stores.Reporters = reporters
		stores.Issues = repository.NewMemoryIssueRepository()
		stores.Pingers["memory"] = reporters
		logger.Warn("using in-memory record store; data is lost on restart")

	case config.StoreBackendRedis:
		rdb := NewRedis(ctx, cfg.Redis, logger)
		stores.Redis = rdb
		stores.Reporters = repository.NewRedisReporterRepository(rdb.Client, rdb.Prefix)
		stores.Issues = repository.NewRedisIssueRepository(rdb.Client, rdb.Prefix)
		stores.Pingers["redis"] = rdb
		stores.closers = append(stores.closers, rdb.Close)

	case config.StoreBackendPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				stores.Close()
				return nil, err
			}
		}
		stores.Reporters = repository.NewReporterRepository(pg.Pool)
		stores.Issues = repository.NewIssueRepository(pg.Pool)
		stores.Pingers["postgres"] = pg

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}

	logger.Info("record store ready", zap.String("backend", stores.Backend))
	return stores, nil
}

// Close releases backend connections in reverse order of opening.
func (s *Stores) Close() {
	if s == nil {
		return
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
