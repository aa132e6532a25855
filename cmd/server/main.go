package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/renaissancebro/AGI-seed/internal/api"
	"github.com/renaissancebro/AGI-seed/internal/buildconfig"
	"github.com/renaissancebro/AGI-seed/internal/config"
	"github.com/renaissancebro/AGI-seed/internal/store/sqlite"
	"go.uber.org/zap"
)

func newLogger() *zap.Logger {
	if config.LogLevel() == "debug" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var app *api.App
	switch driver := config.StorageDriver(); driver {
	case "sqlite":
		db, err := sqlite.Open(config.SQLitePath())
		if err != nil {
			logger.Fatal("failed to open sqlite database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("opened sqlite database", zap.String("path", config.SQLitePath()))
		app = api.NewSQLiteApp(db, logger)

	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			logger.Fatal("DATABASE_URL is required")
		}

		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		logger.Info("connected to database")
		app = api.NewApp(pool, logger)

	default:
		logger.Fatal("unknown STORAGE_DRIVER", zap.String("driver", driver))
	}

	app.Recovery.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	app.Recovery.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
