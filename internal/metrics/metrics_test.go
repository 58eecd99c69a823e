package metrics

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/videos", "/api/videos"},
		{"/api/videos/42", "/api/videos/:id"},
		{"/api/videos/42/thumbnail", "/api/videos/:id/thumbnail"},
		{"/api/videos/42/requeue", "/api/videos/:id/requeue"},
		{"/healthz", "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
