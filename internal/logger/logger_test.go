package logger

import (
	"context"
	"testing"
)

func TestFromContext_Fallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext() returned nil without a stored logger")
	}
}

func TestWithLogger(t *testing.T) {
	l := NewTestLogger()
	ctx := WithLogger(context.Background(), l)

	if FromContext(ctx) != l {
		t.Error("FromContext() did not return the stored logger")
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")

	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("RequestID() = %q, want %q", got, "req-123")
	}
	if got := RequestID(context.Background()); got != "" {
		t.Errorf("RequestID() on empty context = %q, want empty", got)
	}
}

func TestWithVideoID(t *testing.T) {
	ctx := WithVideoID(context.Background(), 42)

	if got := VideoID(ctx); got != 42 {
		t.Errorf("VideoID() = %d, want 42", got)
	}
	if got := VideoID(context.Background()); got != 0 {
		t.Errorf("VideoID() on empty context = %d, want 0", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"WARN", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"nonsense", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
