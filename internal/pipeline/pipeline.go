package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/encoder"
	"github.com/reelforge/reelforge/internal/logger"
	"github.com/reelforge/reelforge/internal/metrics"
	"github.com/reelforge/reelforge/internal/queue"
	"github.com/reelforge/reelforge/internal/storage"
	"github.com/reelforge/reelforge/internal/tracing"
)

const JobTypeTranscode = "transcode"

const (
	// A freshly committed record can lag behind the enqueueing goroutine's
	// view of the database; workers poll before giving up.
	visibilityAttempts = 5
	visibilityInterval = time.Second

	// Poster frame offset into the video.
	thumbnailOffset = time.Second
)

var (
	ErrVisibilityTimeout = errors.New("pipeline: video record never became visible")
	ErrMissingSource     = errors.New("pipeline: source file missing from storage")
)

// TranscodePayload is the wire form of one rendition job.
type TranscodePayload struct {
	VideoID    int64                `json:"video_id"`
	Resolution catalog.Resolution   `json:"resolution"`
	Trace      tracing.TraceCarrier `json:"trace,omitempty"`
}

// Pipeline owns the transcode flow: dispatching rendition jobs on creation,
// producing renditions in workers, extracting thumbnails inline and sweeping
// files after deletion.
type Pipeline struct {
	store catalog.Store
	files storage.Storage
	enc   encoder.Encoder
	pool  *queue.Pool

	retry      queue.RetryPolicy
	scratchDir string

	visibilityAttempts int
	visibilityInterval time.Duration
}

func New(store catalog.Store, files storage.Storage, enc encoder.Encoder, pool *queue.Pool, scratchDir string) *Pipeline {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Pipeline{
		store:              store,
		files:              files,
		enc:                enc,
		pool:               pool,
		retry:              queue.DefaultRetryPolicy,
		scratchDir:         scratchDir,
		visibilityAttempts: visibilityAttempts,
		visibilityInterval: visibilityInterval,
	}
}

// OnAssetCreated fires once per newly created video: it extracts the poster
// thumbnail inline, then enqueues one transcode job per resolution. It never
// blocks on encoding work and never fails the caller; problems are logged.
func (p *Pipeline) OnAssetCreated(ctx context.Context, videoID int64) {
	log := logger.FromContext(ctx).With("video_id", videoID)

	asset, err := p.store.Get(ctx, videoID)
	if err != nil {
		log.Error("dispatch aborted, video not found", "error", err)
		return
	}
	if asset.Original == "" {
		log.Warn("dispatch skipped, no original file")
		return
	}

	if asset.Thumbnail == "" {
		if err := p.extractThumbnail(ctx, asset); err != nil {
			// No retry for thumbnails; the video remains usable without one.
			log.Error("thumbnail extraction failed", "error", err)
			metrics.RecordThumbnailExtraction("error")
		} else {
			metrics.RecordThumbnailExtraction("success")
		}
	}

	for _, res := range catalog.AllResolutions {
		p.enqueueTranscode(ctx, videoID, res)
	}
}

func (p *Pipeline) enqueueTranscode(ctx context.Context, videoID int64, res catalog.Resolution) {
	log := logger.FromContext(ctx).With("video_id", videoID, "resolution", res)

	ctx, span := tracing.StartJobEnqueueSpan(ctx, JobTypeTranscode,
		tracing.VideoID(videoID), tracing.Rendition(string(res)))
	defer span.End()

	job, err := queue.New(JobTypeTranscode, TranscodePayload{
		VideoID:    videoID,
		Resolution: res,
		Trace:      tracing.InjectTraceContext(ctx),
	})
	if err != nil {
		log.Error("failed to build job", "error", err)
		return
	}

	if err := p.pool.Enqueue(ctx, job, p.retry); err != nil {
		log.Error("failed to enqueue job", "error", err)
		return
	}

	metrics.RecordJobEnqueued(JobTypeTranscode)
	log.Debug("transcode job enqueued", "job_id", job.ID)
}

// OnAssetDeleted removes the given storage refs best-effort. A ref whose
// file is already gone is logged at debug level and skipped; nothing here
// can fail the deletion that triggered it.
func (p *Pipeline) OnAssetDeleted(ctx context.Context, refs []string) {
	log := logger.FromContext(ctx)

	for _, ref := range refs {
		err := p.files.Delete(ctx, ref)
		switch {
		case err == nil:
			log.Debug("file removed", "ref", ref)
		case errors.Is(err, storage.ErrNotFound):
			log.Debug("cleanup miss, file already gone", "ref", ref)
			metrics.RecordCleanupMiss()
		default:
			log.Warn("cleanup failed", "ref", ref, "error", err)
		}
	}
}

// materialize downloads a stored file into dir and returns its local path.
func (p *Pipeline) materialize(ctx context.Context, dir, ref string) (string, error) {
	reader, err := p.files.Download(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", ref, err)
	}
	defer func() { _ = reader.Close() }()

	localPath := filepath.Join(dir, "input"+filepath.Ext(ref))
	f, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return localPath, nil
}
