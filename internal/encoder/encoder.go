package encoder

import (
	"context"
	"errors"
	"time"
)

var (
	ErrFFmpegNotFound  = errors.New("encoder: ffmpeg binary not found")
	ErrFFprobeNotFound = errors.New("encoder: ffprobe binary not found")
	ErrEncodeFailed    = errors.New("encoder: encoding failed")
	ErrInvalidInput    = errors.New("encoder: invalid input file")
)

// Encoder produces derived media from a source video on the local
// filesystem. Implementations block until the external process exits.
type Encoder interface {
	// Transcode re-encodes srcPath into dstPath at the given frame size.
	Transcode(ctx context.Context, srcPath, dstPath string, width, height int) error
	// ExtractFrame writes a single JPEG frame taken at offset `at`.
	ExtractFrame(ctx context.Context, srcPath, dstPath string, at time.Duration) error
	// Probe inspects the source and returns its metadata.
	Probe(ctx context.Context, srcPath string) (*Metadata, error)
}

type Metadata struct {
	Duration   float64
	Width      int
	Height     int
	FrameRate  float64
	VideoCodec string
	AudioCodec string
	HasAudio   bool
	Container  string
	FileSize   int64
	Bitrate    int64
}
