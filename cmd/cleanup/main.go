package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/logger"
	"github.com/reelforge/reelforge/internal/pipeline"
	"github.com/reelforge/reelforge/internal/storage"
)

// One-shot orphan sweep: removes stored media files no catalog record
// references. Run from cron or by hand after incidents.
func main() {
	if err := run(); err != nil {
		slog.Error("cleanup failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.LogLevel)
	log := logger.Default()

	log.Info("starting orphan sweep")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	log.Info("connecting to database")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("database connected")

	store := catalog.NewPostgresStore(pool)

	var files storage.Storage
	switch cfg.StorageBackend {
	case "minio":
		files, err = storage.NewMinIOStorage(&storage.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			Region:    cfg.MinIORegion,
		})
	default:
		files, err = storage.NewDiskStorage(cfg.MediaRoot)
	}
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	// The sweep only needs the store and storage halves of the pipeline.
	pipe := pipeline.New(store, files, nil, nil, cfg.ScratchDir)

	stats, err := pipe.SweepOrphans(logger.WithLogger(ctx, log), pipeline.SweepPrefixes)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	log.Info("orphan sweep completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"scanned", stats.Scanned,
		"removed", stats.Removed,
		"errors", stats.Errors,
	)

	return nil
}
