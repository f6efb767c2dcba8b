// Package di binds the configured storage backend to each request. The
// long-lived handles live in Bindings; a fresh adapter and repository are
// built per request and carried in the request context.
package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BuzzLyutic/taskeeper/internal/config"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
	"github.com/BuzzLyutic/taskeeper/internal/storage/badgerstore"
	"github.com/BuzzLyutic/taskeeper/internal/storage/memory"
	"github.com/BuzzLyutic/taskeeper/internal/storage/postgres"
	"github.com/BuzzLyutic/taskeeper/internal/storage/redisstore"
	"github.com/BuzzLyutic/taskeeper/internal/storage/sqlite"
	"github.com/BuzzLyutic/taskeeper/internal/worker"
)

const gcDiscardRatio = 0.5

// Bindings holds the handle of the selected backend. Only the field matching
// Backend is set.
type Bindings struct {
	Backend     string
	Postgres    *pgxpool.Pool
	SQLite      *gorm.DB
	Redis       *redis.Client
	RedisPrefix string
	Badger      *badger.DB
	Memory      *memory.Store
}

// Open connects to the configured backend and applies the schema where the
// backend has one.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Bindings, error) {
	b := Bindings{Backend: cfg.StorageBackend}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		b.Memory = memory.NewStore()

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return b, err
		}
		b.SQLite = db
		if err := sqlite.Migrate(db); err != nil {
			b.Close()
			return b, fmt.Errorf("migrate sqlite: %w", err)
		}

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return b, fmt.Errorf("connect to database: %w", err)
		}
		b.Postgres = pool
		if err := pool.Ping(ctx); err != nil {
			b.Close()
			return b, fmt.Errorf("ping database: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			b.Close()
			return b, fmt.Errorf("migrate database: %w", err)
		}

	case config.BackendRedis:
		b.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.RedisPrefix = cfg.Redis.Prefix
		if err := b.Redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return b, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
		}

	case config.BackendBadger:
		db, err := badgerstore.Open(badgerstore.Config{Path: cfg.BadgerPath}, logger)
		if err != nil {
			return b, err
		}
		b.Badger = db

	default:
		return b, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	logger.Info("storage backend ready", zap.String("backend", cfg.StorageBackend))
	return b, nil
}

// NewAdapter builds an adapter over the bound handle. Adapters hold no state
// of their own, so building one per request is cheap.
func (b Bindings) NewAdapter() (storage.Adapter, error) {
	switch b.Backend {
	case config.BackendMemory:
		if b.Memory != nil {
			return memory.NewTaskAdapter(b.Memory), nil
		}
	case config.BackendSQLite:
		if b.SQLite != nil {
			return sqlite.NewTaskAdapter(b.SQLite), nil
		}
	case config.BackendPostgres:
		if b.Postgres != nil {
			return postgres.NewTaskAdapter(b.Postgres), nil
		}
	case config.BackendRedis:
		if b.Redis != nil {
			return redisstore.NewTaskAdapter(b.Redis, b.RedisPrefix), nil
		}
	case config.BackendBadger:
		if b.Badger != nil {
			return badgerstore.NewTaskAdapter(b.Badger), nil
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", b.Backend)
	}
	return nil, fmt.Errorf("storage backend %q is not bound", b.Backend)
}

// MaintenanceJobs lists the background jobs the bound backend needs.
func (b Bindings) MaintenanceJobs(gcInterval time.Duration) []worker.Job {
	var jobs []worker.Job

	if db := b.Badger; db != nil {
		jobs = append(jobs, worker.Job{
			Name:     "badger-value-log-gc",
			Interval: gcInterval,
			Run: func(context.Context) error {
				rewritten, err := badgerstore.ValueLogGC(db, gcDiscardRatio)
				if err == nil && !rewritten {
					return worker.ErrNothingToDo
				}
				return err
			},
		})
	}
	return jobs
}

func (b Bindings) Close() error {
	var errs []error

	if b.Postgres != nil {
		b.Postgres.Close()
	}
	if b.SQLite != nil {
		if sqlDB, err := b.SQLite.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		} else {
			errs = append(errs, err)
		}
	}
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	if b.Badger != nil {
		errs = append(errs, b.Badger.Close())
	}
	return errors.Join(errs...)
}
