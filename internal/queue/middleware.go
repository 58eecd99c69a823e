package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type Middleware func(Handler) Handler

// RecoveryMiddleware turns a handler panic into a permanent error so one bad
// job cannot take a worker down.
func RecoveryMiddleware(log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, j *Job) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("job_id", j.ID).
						Str("job_type", j.Type).
						Interface("panic", r).
						Msg("job handler panicked")
					err = Permanent(fmt.Errorf("handler panicked: %v", r))
				}
			}()
			return next(ctx, j)
		}
	}
}

func LoggingMiddleware(log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, j *Job) error {
			start := time.Now()
			log.Debug().
				Str("job_id", j.ID).
				Str("job_type", j.Type).
				Int("attempt", j.Attempt).
				Msg("job started")

			err := next(ctx, j)

			evt := log.Debug()
			if err != nil {
				evt = log.Warn().Err(err)
			}
			evt.
				Str("job_id", j.ID).
				Str("job_type", j.Type).
				Dur("duration", time.Since(start)).
				Msg("job finished")
			return err
		}
	}
}

func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, j *Job) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, j)
		}
	}
}

