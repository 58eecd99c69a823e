package tracing

import (
	"context"
	"testing"
)

func TestDomainAttributes(t *testing.T) {
	if got := VideoID(42); string(got.Key) != "video.id" || got.Value.AsInt64() != 42 {
		t.Errorf("VideoID(42) = %s=%v, want video.id=42", got.Key, got.Value.AsInt64())
	}
	if got := Rendition("480p"); string(got.Key) != "video.resolution" || got.Value.AsString() != "480p" {
		t.Errorf("Rendition(480p) = %s=%q, want video.resolution=480p", got.Key, got.Value.AsString())
	}
}

func TestStartJobSpan_AcceptsDomainAttributes(t *testing.T) {
	ctx, span := StartJobSpan(context.Background(), "transcode", "job-1",
		VideoID(42), Rendition("480p"))
	defer span.End()

	if SpanFromContext(ctx) != span {
		t.Error("StartJobSpan() did not install the span on the context")
	}
}

func TestExtractTraceContext_EmptyCarrier(t *testing.T) {
	ctx := context.Background()
	if got := ExtractTraceContext(ctx, TraceCarrier{}); got != ctx {
		t.Error("ExtractTraceContext() with an empty carrier must return the context unchanged")
	}
}
