package health

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reelforge/reelforge/internal/storage"
)

// failingStorage reports every operation as broken.
type failingStorage struct {
	storage.Storage
}

func (failingStorage) Exists(ctx context.Context, key string) (bool, error) {
	return false, errors.New("backend unreachable")
}

func TestCheckAll_HealthyStorage(t *testing.T) {
	checker := NewChecker(nil, storage.NewMemoryStorage())

	resp := checker.CheckAll(context.Background())
	if resp.Status != StatusHealthy {
		t.Errorf("Status = %s, want healthy", resp.Status)
	}
	if len(resp.Components) != 1 || resp.Components[0].Name != "storage" {
		t.Errorf("Components = %+v, want single storage entry", resp.Components)
	}
}

func TestCheckAll_UnhealthyStorage(t *testing.T) {
	checker := NewChecker(nil, failingStorage{})

	resp := checker.CheckAll(context.Background())
	if resp.Status != StatusUnhealthy {
		t.Errorf("Status = %s, want unhealthy", resp.Status)
	}
	if resp.Components[0].Error == "" {
		t.Error("component error message missing")
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		files      storage.Storage
		wantStatus int
	}{
		{name: "ready", files: storage.NewMemoryStorage(), wantStatus: http.StatusOK},
		{name: "not ready", files: failingStorage{}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ReadinessHandler(NewChecker(nil, tt.files))

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) == "" {
		t.Error("empty body")
	}
}
