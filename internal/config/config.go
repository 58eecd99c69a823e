package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	BaseURL       string
	MaxUploadSize int64

	Environment string
	LogLevel    string

	DatabaseURL string

	// StorageBackend selects where media files live: "disk" or "minio".
	StorageBackend string
	MediaRoot      string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIORegion    string

	WorkerConcurrency int
	QueueSize         int
	JobTimeout        time.Duration
	ScratchDir        string

	FFmpegPath  string
	FFprobePath string

	JWTSecret string

	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64
}

func Load() (*Config, error) {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	cfg.Port = getEnvInt("PORT", 8080)
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", 500*1024*1024)

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.StorageBackend = getEnvString("STORAGE_BACKEND", "disk")
	switch cfg.StorageBackend {
	case "disk":
		cfg.MediaRoot = getEnvString("MEDIA_ROOT", "./media")
	case "minio":
		cfg.MinIOEndpoint = os.Getenv("MINIO_ENDPOINT")
		if cfg.MinIOEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required for the minio backend")
		}
		cfg.MinIOAccessKey = os.Getenv("MINIO_ACCESS_KEY")
		if cfg.MinIOAccessKey == "" {
			return nil, fmt.Errorf("MINIO_ACCESS_KEY is required for the minio backend")
		}
		cfg.MinIOSecretKey = os.Getenv("MINIO_SECRET_KEY")
		if cfg.MinIOSecretKey == "" {
			return nil, fmt.Errorf("MINIO_SECRET_KEY is required for the minio backend")
		}
		cfg.MinIOBucket = getEnvString("MINIO_BUCKET", "media")
		cfg.MinIOUseSSL = getEnvBool("MINIO_USE_SSL", false)
		cfg.MinIORegion = getEnvString("MINIO_REGION", "us-east-1")
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND: %q", cfg.StorageBackend)
	}

	cfg.WorkerConcurrency = getEnvInt("WORKER_CONCURRENCY", 4)
	cfg.QueueSize = getEnvInt("QUEUE_SIZE", 256)
	cfg.JobTimeout, err = getEnvDuration("JOB_TIMEOUT", "60m")
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}
	cfg.ScratchDir = getEnvString("SCRATCH_DIR", os.TempDir())

	cfg.FFmpegPath = getEnvString("FFMPEG_PATH", "ffmpeg")
	cfg.FFprobePath = getEnvString("FFPROBE_PATH", "ffprobe")

	cfg.JWTSecret = getEnvString("JWT_SECRET", "change-me-in-production")

	cfg.Environment = getEnvString("ENVIRONMENT", "development")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	cfg.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.TracingEndpoint = getEnvString("OTLP_ENDPOINT", "localhost:4317")
	cfg.TracingSampleRate = getEnvFloat("TRACING_SAMPLE_RATE", 1.0)

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return time.ParseDuration(value)
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.MaxUploadSize < 1 {
		return fmt.Errorf("invalid max upload size: %d", c.MaxUploadSize)
	}

	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("invalid worker concurrency: %d", c.WorkerConcurrency)
	}

	if c.QueueSize < 1 {
		return fmt.Errorf("invalid queue size: %d", c.QueueSize)
	}

	return nil
}
