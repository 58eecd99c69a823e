package queue

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRecoveryMiddleware(t *testing.T) {
	log := zerolog.New(io.Discard)
	handler := RecoveryMiddleware(log)(func(ctx context.Context, j *Job) error {
		panic("boom")
	})

	err := handler(context.Background(), &Job{ID: "1", Type: "panicky"})
	if err == nil {
		t.Fatal("handler error = nil, want permanent error")
	}
	if !IsPermanent(err) {
		t.Errorf("handler error = %v, want permanent", err)
	}
}

func TestRecoveryMiddleware_PassesThrough(t *testing.T) {
	log := zerolog.New(io.Discard)
	want := errors.New("ordinary failure")
	handler := RecoveryMiddleware(log)(func(ctx context.Context, j *Job) error {
		return want
	})

	err := handler(context.Background(), &Job{ID: "1", Type: "failing"})
	if !errors.Is(err, want) {
		t.Errorf("handler error = %v, want %v", err, want)
	}
	if IsPermanent(err) {
		t.Error("ordinary failure was marked permanent")
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	handler := TimeoutMiddleware(10 * time.Millisecond)(func(ctx context.Context, j *Job) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	err := handler(context.Background(), &Job{ID: "1", Type: "slow"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("handler error = %v, want DeadlineExceeded", err)
	}
}

func TestMiddlewareOrder(t *testing.T) {
	registry := NewRegistry()

	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, j *Job) error {
				order = append(order, name)
				return next(ctx, j)
			}
		}
	}

	registry.Use(mark("outer"), mark("inner"))
	if err := registry.Register("noop", func(ctx context.Context, j *Job) error {
		order = append(order, "handler")
		return nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	handler, err := registry.resolve("noop")
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if err := handler(context.Background(), &Job{ID: "1", Type: "noop"}); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("call order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call order = %v, want %v", order, want)
			break
		}
	}
}
