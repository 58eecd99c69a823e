package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound   = errors.New("storage: file not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage abstracts the media file store. Keys are slash-separated and
// relative to the store root ("videos/480p/my-movie.480p.mp4").
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Promote moves a finished local file into the store under key.
	Promote(ctx context.Context, localPath, key, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}
