package ctl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 5*time.Second)
}

func TestClient_ListVideos(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/videos", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"My Movie","genre":"drama","renditions":{"480p":"http://x/media/videos/480p/my-movie.480p.mp4"}}]`))
	})

	videos, err := client.ListVideos(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, int64(1), videos[0].ID)
	assert.Equal(t, "My Movie", videos[0].Title)
	assert.Contains(t, videos[0].Renditions, "480p")
}

func TestClient_ListVideos_GenreQuery(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "comedy", r.URL.Query().Get("genre"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.ListVideos(context.Background(), "comedy")
	require.NoError(t, err)
}

func TestClient_Requeue(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/videos/42/requeue", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"requeued":["720p","1080p"]}`))
	})

	requeued, err := client.Requeue(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"720p", "1080p"}, requeued)
}

func TestClient_ErrorResponse(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","error":"The requested resource was not found"}`))
	})

	_, err := client.GetVideo(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The requested resource was not found")
}

func TestClient_Health(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	require.NoError(t, client.Health(context.Background()))
}
