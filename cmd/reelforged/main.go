package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/reelforge/reelforge/internal/api"
	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/encoder"
	"github.com/reelforge/reelforge/internal/health"
	"github.com/reelforge/reelforge/internal/logger"
	"github.com/reelforge/reelforge/internal/metrics"
	"github.com/reelforge/reelforge/internal/pipeline"
	"github.com/reelforge/reelforge/internal/queue"
	"github.com/reelforge/reelforge/internal/storage"
	"github.com/reelforge/reelforge/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(cfg.LogLevel)
	log := logger.Default()
	log.Info("configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, &tracing.Config{
		ServiceName:    "reelforged",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.TracingEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

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

	files, err := newStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	instrumentedFiles := metrics.NewInstrumentedStorage(files)

	enc, err := encoder.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath)
	if err != nil {
		return fmt.Errorf("failed to init encoder: %w", err)
	}
	log.Info("encoder ready")

	metrics.SetAppInfo("1.0.0", cfg.Environment, "reelforged")
	metrics.SetWorkerPoolSize(cfg.WorkerConcurrency)

	zerologger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	registry := queue.NewRegistry()
	registry.Use(
		queue.RecoveryMiddleware(zerologger),
		queue.LoggingMiddleware(zerologger),
		queue.TimeoutMiddleware(cfg.JobTimeout),
	)

	workerPool := queue.NewPool(registry,
		queue.WithConcurrency(cfg.WorkerConcurrency),
		queue.WithQueueSize(cfg.QueueSize),
		queue.WithShutdownTimeout(30*time.Second),
		queue.WithPoolLogger(zerologger),
		queue.WithCollector(metrics.NewPrometheusCollector()),
	)

	pipe := pipeline.New(store, instrumentedFiles, enc, workerPool, cfg.ScratchDir)
	if err := registry.Register(pipeline.JobTypeTranscode, pipe.TranscodeHandler()); err != nil {
		return fmt.Errorf("failed to register handler: %w", err)
	}
	log.Info("handlers registered", "types", registry.Types())

	checker := health.NewChecker(pool, instrumentedFiles)

	server := api.NewServer(store, instrumentedFiles, pipe, pipe, checker, api.Config{
		BaseURL:       cfg.BaseURL,
		JWTSecret:     cfg.JWTSecret,
		MaxUploadSize: cfg.MaxUploadSize,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
	}

	poolErr := make(chan error, 1)
	go func() {
		log.Info("starting worker pool", "concurrency", cfg.WorkerConcurrency)
		poolErr <- workerPool.Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.SetJobsInQueue(workerPool.Depth())
			}
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server error: %w", err)
	case err := <-poolErr:
		if err != nil && err != context.Canceled {
			return fmt.Errorf("worker pool error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("error stopping http server", "error", err)
		}
		if err := workerPool.Stop(shutdownCtx); err != nil {
			log.Error("error stopping pool", "error", err)
		}
		cancel()
	}

	log.Info("stopped gracefully")
	return nil
}

func newStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "minio":
		log.Info("connecting to object storage", "endpoint", cfg.MinIOEndpoint)
		store, err := storage.NewMinIOStorage(&storage.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			Region:    cfg.MinIORegion,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
		return store, nil
	default:
		log.Info("using disk storage", "root", cfg.MediaRoot)
		store, err := storage.NewDiskStorage(cfg.MediaRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		return store, nil
	}
}
