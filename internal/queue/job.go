package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job is an ephemeral unit of work. It lives only inside the queue; nothing
// about it is persisted.
type Job struct {
	ID      string
	Type    string
	Payload []byte
	Attempt int
}

func New(jobType string, payload any) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: data,
		Attempt: 1,
	}, nil
}

func (j *Job) UnmarshalPayload(v any) error {
	return json.Unmarshal(j.Payload, v)
}

// RetryPolicy is a value object attached to each submission. A job is
// attempted at most MaxAttempts times, with Interval between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultRetryPolicy matches the dispatcher contract: three attempts, five
// seconds apart.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Interval: 5 * time.Second}

type Handler func(ctx context.Context, j *Job) error

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks an error as non-retryable; the pool drops the job
// immediately regardless of remaining attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
