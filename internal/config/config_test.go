package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reelforge_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.StorageBackend != "disk" {
		t.Errorf("StorageBackend = %q, want disk", cfg.StorageBackend)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Errorf("WorkerConcurrency = %d, want 4", cfg.WorkerConcurrency)
	}
	if cfg.QueueSize != 256 {
		t.Errorf("QueueSize = %d, want 256", cfg.QueueSize)
	}
	if cfg.JobTimeout != 60*time.Minute {
		t.Errorf("JobTimeout = %v, want 60m", cfg.JobTimeout)
	}
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Errorf("encoder paths = %q, %q", cfg.FFmpegPath, cfg.FFprobePath)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Load() without DATABASE_URL expected error, got nil")
	}
}

func TestLoad_MinioBackend(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reelforge_test")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	t.Setenv("MINIO_SECRET_KEY", "minioadmin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinIOBucket != "media" {
		t.Errorf("MinIOBucket = %q, want media", cfg.MinIOBucket)
	}
}

func TestLoad_MinioBackendMissingCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reelforge_test")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Error("Load() without MINIO_ENDPOINT expected error, got nil")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reelforge_test")
	t.Setenv("STORAGE_BACKEND", "tape")

	if _, err := Load(); err == nil {
		t.Error("Load() with unknown backend expected error, got nil")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/reelforge_test")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("JOB_TIMEOUT", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Errorf("WorkerConcurrency = %d, want 8", cfg.WorkerConcurrency)
	}
	if cfg.JobTimeout != 90*time.Second {
		t.Errorf("JobTimeout = %v, want 90s", cfg.JobTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "port too low", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "zero upload size", mutate: func(c *Config) { c.MaxUploadSize = 0 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.WorkerConcurrency = 0 }, wantErr: true},
		{name: "zero queue size", mutate: func(c *Config) { c.QueueSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:              8080,
				MaxUploadSize:     1 << 20,
				WorkerConcurrency: 4,
				QueueSize:         256,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
