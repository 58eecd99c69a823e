package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRequireAdmin(t *testing.T) {
	expiredToken := func(t *testing.T) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			Admin: true,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(testJWTSecret))
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		return signed
	}

	tests := []struct {
		name       string
		setupAuth  func(t *testing.T, req *http.Request)
		wantStatus int
	}{
		{
			name: "admin token passes",
			setupAuth: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+adminToken(t, testJWTSecret, true))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			setupAuth:  func(t *testing.T, req *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "no bearer prefix",
			setupAuth: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", adminToken(t, testJWTSecret, true))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong secret",
			setupAuth: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+adminToken(t, "other-secret", true))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "garbage token",
			setupAuth: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer not.a.token")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			setupAuth: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+expiredToken(t))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid token without admin claim",
			setupAuth: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+adminToken(t, testJWTSecret, false))
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(nil, nil, nil, nil, nil, Config{JWTSecret: testJWTSecret})

			handler := srv.requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/videos", nil)
			tt.setupAuth(t, req)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestReadEndpointsStayOpen(t *testing.T) {
	env := newServerEnv(t)
	env.createVideo(t, "open access", "drama")

	// No Authorization header on any read path.
	for _, url := range []string{"/api/videos", "/api/videos/1", "/healthz"} {
		rec := doRequest(env, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", url, rec.Code)
		}
	}
}

func TestWriteEndpointsRequireAuth(t *testing.T) {
	env := newServerEnv(t)
	env.createVideo(t, "guarded", "drama")

	requests := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/videos", nil),
		httptest.NewRequest(http.MethodDelete, "/api/videos/1", nil),
		httptest.NewRequest(http.MethodPost, "/api/videos/1/requeue", nil),
	}

	for _, req := range requests {
		rec := doRequest(env, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", req.Method, req.URL.Path, rec.Code)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	env := newServerEnv(t)

	rec := doRequest(env, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set on response")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = doRequest(env, req)
	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want caller's id echoed", got)
	}
}

func TestValidators(t *testing.T) {
	if err := validateTitle("fine title"); err != nil {
		t.Errorf("validateTitle() error = %v", err)
	}
	if err := validateTitle(""); err == nil {
		t.Error("validateTitle(\"\") expected error")
	}
	if err := validateUploadFilename("clip.MOV"); err != nil {
		t.Errorf("validateUploadFilename() rejects uppercase extension: %v", err)
	}
	if err := validateUploadFilename("clip.webm"); err == nil {
		t.Error("validateUploadFilename(\"clip.webm\") expected error")
	}
}
