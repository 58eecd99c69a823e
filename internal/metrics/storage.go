package metrics

import (
	"context"
	"io"
	"time"

	"github.com/reelforge/reelforge/internal/storage"
)

// InstrumentedStorage wraps a Storage backend and records operation counts
// and latencies.
type InstrumentedStorage struct {
	inner storage.Storage
}

var _ storage.Storage = (*InstrumentedStorage)(nil)

func NewInstrumentedStorage(inner storage.Storage) *InstrumentedStorage {
	return &InstrumentedStorage{inner: inner}
}

func (s *InstrumentedStorage) observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StorageOperationsTotal.WithLabelValues(op, status).Inc()
	StorageOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error {
	start := time.Now()
	err := s.inner.Upload(ctx, key, reader, contentType, size)
	s.observe("upload", start, err)
	return err
}

func (s *InstrumentedStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := s.inner.Download(ctx, key)
	s.observe("download", start, err)
	return rc, err
}

func (s *InstrumentedStorage) Promote(ctx context.Context, localPath, key, contentType string) error {
	start := time.Now()
	err := s.inner.Promote(ctx, localPath, key, contentType)
	s.observe("promote", start, err)
	return err
}

func (s *InstrumentedStorage) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, key)
	s.observe("delete", start, err)
	return err
}

func (s *InstrumentedStorage) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := s.inner.Exists(ctx, key)
	s.observe("exists", start, err)
	return ok, err
}

func (s *InstrumentedStorage) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.inner.List(ctx, prefix)
	s.observe("list", start, err)
	return keys, err
}
