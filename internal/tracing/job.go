package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceCarrier rides inside a job payload so the consumer span links back to
// the producer.
type TraceCarrier struct {
	TraceParent string `json:"trace_parent,omitempty"`
	TraceState  string `json:"trace_state,omitempty"`
}

func InjectTraceContext(ctx context.Context) TraceCarrier {
	carrier := TraceCarrier{}
	propagator := propagation.TraceContext{}

	mapCarrier := propagation.MapCarrier{}
	propagator.Inject(ctx, mapCarrier)

	carrier.TraceParent = mapCarrier.Get("traceparent")
	carrier.TraceState = mapCarrier.Get("tracestate")

	return carrier
}

func ExtractTraceContext(ctx context.Context, carrier TraceCarrier) context.Context {
	if carrier.TraceParent == "" {
		return ctx
	}

	propagator := propagation.TraceContext{}
	mapCarrier := propagation.MapCarrier{
		"traceparent": carrier.TraceParent,
		"tracestate":  carrier.TraceState,
	}

	return propagator.Extract(ctx, mapCarrier)
}

// VideoID tags a span with the asset the job works on.
func VideoID(id int64) attribute.KeyValue {
	return attribute.Int64("video.id", id)
}

// Rendition tags a span with the resolution tag being produced.
func Rendition(res string) attribute.KeyValue {
	return attribute.String("video.resolution", res)
}

func StartJobSpan(ctx context.Context, jobType, jobID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "job.process."+jobType,
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	span.SetAttributes(
		attribute.String("job.type", jobType),
		attribute.String("job.id", jobID),
	)
	span.SetAttributes(attrs...)
	return ctx, span
}

func StartJobEnqueueSpan(ctx context.Context, jobType string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "job.enqueue."+jobType,
		trace.WithSpanKind(trace.SpanKindProducer),
	)
	span.SetAttributes(
		attribute.String("job.type", jobType),
	)
	span.SetAttributes(attrs...)
	return ctx, span
}
