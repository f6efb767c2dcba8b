package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskeeper/internal/config"
	"github.com/BuzzLyutic/taskeeper/internal/di"
	"github.com/BuzzLyutic/taskeeper/internal/metrics"
	"github.com/BuzzLyutic/taskeeper/internal/server"
	"github.com/BuzzLyutic/taskeeper/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	bindings, err := di.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}

	pool := worker.NewPool(logger, bindings.MaintenanceJobs(cfg.BadgerGCInterval)...)
	pool.Start(context.Background())

	srv := server.New(cfg.Port, server.NewRouter(server.Options{
		Env:      cfg.Env,
		Logger:   logger,
		Bindings: bindings,
		Metrics:  metrics.New(),
	}))

	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// The server drains and the workers stop before storage is closed, so all
	// of it runs in one operation.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"taskeeper": func(ctx context.Context) error {
				logger.Info("Shutting down server...")
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("Shutdown error", zap.Error(err))
					return err
				}
				pool.Stop()
				if err := bindings.Close(); err != nil {
					logger.Error("Failed to close storage", zap.Error(err))
					return err
				}
				logger.Info("Server stopped successfully!")
				return nil
			},
		},
	)

	exitCode := <-wait
	logger.Sync()
	os.Exit(exitCode)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}
