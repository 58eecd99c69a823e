package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/health"
	"github.com/reelforge/reelforge/internal/metrics"
	"github.com/reelforge/reelforge/internal/storage"
	"github.com/reelforge/reelforge/internal/tracing"
)

// Events is the pipeline hook the HTTP layer fires on catalog changes. The
// implementation is injected at process bootstrap; handlers never reach into
// the pipeline directly.
type Events interface {
	OnAssetCreated(ctx context.Context, videoID int64)
	OnAssetDeleted(ctx context.Context, refs []string)
}

// Requeuer re-enqueues jobs for renditions a video is missing.
type Requeuer interface {
	Requeue(ctx context.Context, videoID int64) ([]catalog.Resolution, error)
}

type Server struct {
	store    catalog.Store
	files    storage.Storage
	events   Events
	requeuer Requeuer
	checker  *health.Checker

	baseURL       string
	jwtSecret     []byte
	maxUploadSize int64
}

type Config struct {
	BaseURL       string
	JWTSecret     string
	MaxUploadSize int64
}

func NewServer(store catalog.Store, files storage.Storage, events Events, requeuer Requeuer, checker *health.Checker, cfg Config) *Server {
	return &Server{
		store:         store,
		files:         files,
		events:        events,
		requeuer:      requeuer,
		checker:       checker,
		baseURL:       cfg.BaseURL,
		jwtSecret:     []byte(cfg.JWTSecret),
		maxUploadSize: cfg.MaxUploadSize,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/videos", s.handleListVideos)
	mux.Handle("POST /api/videos", s.requireAdmin(http.HandlerFunc(s.handleCreateVideo)))
	mux.HandleFunc("GET /api/videos/{id}", s.handleGetVideo)
	mux.Handle("DELETE /api/videos/{id}", s.requireAdmin(http.HandlerFunc(s.handleDeleteVideo)))
	mux.HandleFunc("GET /api/videos/{id}/thumbnail", s.handleGetThumbnail)
	mux.Handle("POST /api/videos/{id}/requeue", s.requireAdmin(http.HandlerFunc(s.handleRequeueVideo)))

	mux.Handle("GET /healthz", health.LivenessHandler())
	if s.checker != nil {
		mux.Handle("GET /readyz", health.ReadinessHandler(s.checker))
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = metrics.HTTPMetricsMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	handler = tracing.HTTPMiddleware("reelforge-api")(handler)
	return handler
}
