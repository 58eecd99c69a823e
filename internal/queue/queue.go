package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull     = errors.New("queue: queue is full")
	ErrUnknownType   = errors.New("queue: no handler registered for job type")
	ErrAlreadyClosed = errors.New("queue: pool is stopped")
)

// MetricsCollector receives job lifecycle events from the pool.
type MetricsCollector interface {
	JobStarted(jobType string)
	JobCompleted(jobType string, duration time.Duration)
	JobFailed(jobType string, duration time.Duration)
	JobRetrying(jobType string, attempt int)
}

// Registry maps job types to handlers and holds the middleware chain.
type Registry struct {
	mu         sync.RWMutex
	handlers   map[string]Handler
	middleware []Middleware
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(jobType string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[jobType]; exists {
		return fmt.Errorf("handler already registered for type %q", jobType)
	}
	r.handlers[jobType] = h
	return nil
}

// Use appends middleware; the first registered wraps outermost.
func (r *Registry) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

func (r *Registry) resolve(jobType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, jobType)
	}
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	return h, nil
}

type delivery struct {
	job    *Job
	policy RetryPolicy
}

// Pool runs a bounded set of workers over a shared in-process queue.
// Retries are re-scheduled off-pool with a timer so a waiting job never
// occupies a worker slot.
type Pool struct {
	registry        *Registry
	jobs            chan delivery
	concurrency     int
	shutdownTimeout time.Duration
	logger          zerolog.Logger
	collector       MetricsCollector

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	pending sync.WaitGroup
}

type PoolOption func(*Pool)

func WithConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func WithQueueSize(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.jobs = make(chan delivery, n)
		}
	}
}

func WithShutdownTimeout(d time.Duration) PoolOption {
	return func(p *Pool) { p.shutdownTimeout = d }
}

func WithPoolLogger(l zerolog.Logger) PoolOption {
	return func(p *Pool) { p.logger = l }
}

func WithCollector(c MetricsCollector) PoolOption {
	return func(p *Pool) { p.collector = c }
}

func NewPool(registry *Registry, opts ...PoolOption) *Pool {
	p := &Pool{
		registry:        registry,
		jobs:            make(chan delivery, 256),
		concurrency:     4,
		shutdownTimeout: 30 * time.Second,
		logger:          zerolog.New(io.Discard),
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enqueue submits a job without blocking the caller. The retry policy
// travels with the submission.
func (p *Pool) Enqueue(ctx context.Context, j *Job, policy RetryPolicy) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrAlreadyClosed
	}
	p.mu.Unlock()

	if policy.MaxAttempts < 1 {
		policy = DefaultRetryPolicy
	}

	select {
	case p.jobs <- delivery{job: j, policy: policy}:
		p.logger.Debug().Str("job_id", j.ID).Str("job_type", j.Type).Msg("job enqueued")
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers and blocks until ctx is cancelled or Stop is
// called.
func (p *Pool) Start(ctx context.Context) error {
	p.logger.Info().Int("concurrency", p.concurrency).Msg("worker pool starting")

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopCh:
		return nil
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case d := <-p.jobs:
			p.process(ctx, d)
		}
	}
}

func (p *Pool) process(ctx context.Context, d delivery) {
	j := d.job
	handler, err := p.registry.resolve(j.Type)
	if err != nil {
		p.logger.Error().Str("job_id", j.ID).Str("job_type", j.Type).Err(err).Msg("job dropped")
		return
	}

	if p.collector != nil {
		p.collector.JobStarted(j.Type)
	}
	start := time.Now()

	err = handler(ctx, j)
	duration := time.Since(start)

	if err == nil {
		if p.collector != nil {
			p.collector.JobCompleted(j.Type, duration)
		}
		return
	}

	if IsPermanent(err) || j.Attempt >= d.policy.MaxAttempts {
		p.logger.Error().
			Str("job_id", j.ID).
			Str("job_type", j.Type).
			Int("attempt", j.Attempt).
			Err(err).
			Msg("job failed permanently")
		if p.collector != nil {
			p.collector.JobFailed(j.Type, duration)
		}
		return
	}

	p.logger.Warn().
		Str("job_id", j.ID).
		Str("job_type", j.Type).
		Int("attempt", j.Attempt).
		Dur("retry_in", d.policy.Interval).
		Err(err).
		Msg("job failed, scheduling retry")
	if p.collector != nil {
		p.collector.JobRetrying(j.Type, j.Attempt)
	}

	j.Attempt++
	p.pending.Add(1)
	time.AfterFunc(d.policy.Interval, func() {
		defer p.pending.Done()
		select {
		case <-p.stopCh:
		case p.jobs <- d:
		}
	})
}

// Stop shuts the pool down, waiting up to the shutdown timeout for in-flight
// jobs and scheduled retries.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		p.pending.Wait()
		close(done)
	}()

	timeout := p.shutdownTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.logger.Info().Msg("worker pool stopped")
		return nil
	case <-timer.C:
		return fmt.Errorf("queue: shutdown timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Depth reports how many submissions are waiting in the channel.
func (p *Pool) Depth() int {
	return len(p.jobs)
}
