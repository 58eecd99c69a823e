package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/logger"
	"github.com/reelforge/reelforge/internal/metrics"
	"github.com/reelforge/reelforge/internal/queue"
	"github.com/reelforge/reelforge/internal/storage"
	"github.com/reelforge/reelforge/internal/tracing"
)

// TranscodeHandler produces one rendition per job. The flow is a fixed
// sequence: wait for the record to be visible, check the source, encode into
// scratch, then finalize with a collision-free name and a single-column
// record write.
func (p *Pipeline) TranscodeHandler() queue.Handler {
	return func(ctx context.Context, j *queue.Job) error {
		log := logger.FromContext(ctx).With("job_id", j.ID, "job_type", JobTypeTranscode)
		start := time.Now()

		var payload TranscodePayload
		if err := j.UnmarshalPayload(&payload); err != nil {
			log.Error("invalid payload", "error", err)
			return queue.Permanent(fmt.Errorf("invalid payload: %w", err))
		}
		if !payload.Resolution.Valid() {
			log.Error("invalid payload", "resolution", payload.Resolution)
			return queue.Permanent(fmt.Errorf("unknown resolution %q", payload.Resolution))
		}

		ctx = tracing.ExtractTraceContext(ctx, payload.Trace)
		ctx, span := tracing.StartJobSpan(ctx, JobTypeTranscode, j.ID,
			tracing.VideoID(payload.VideoID), tracing.Rendition(string(payload.Resolution)))
		defer span.End()

		log = log.With("video_id", payload.VideoID, "resolution", payload.Resolution, "attempt", j.Attempt)
		log.Info("job started")

		asset, err := p.waitForVisibility(ctx, payload.VideoID)
		if err != nil {
			if errors.Is(err, ErrVisibilityTimeout) {
				log.Error("giving up, record never appeared", "error", err)
				return queue.Permanent(err)
			}
			return err
		}

		// Requeued jobs may target a rendition a previous attempt finished.
		if asset.Rendition(payload.Resolution) != "" {
			log.Info("rendition already present, nothing to do")
			return nil
		}

		ok, err := p.files.Exists(ctx, asset.Original)
		if err != nil {
			return fmt.Errorf("check source %s: %w", asset.Original, err)
		}
		if !ok {
			// Retryable on purpose: an operator restoring the file within
			// the retry window rescues the job.
			log.Warn("source file missing", "ref", asset.Original)
			return fmt.Errorf("%w: %s", ErrMissingSource, asset.Original)
		}

		tempDir, err := os.MkdirTemp(p.scratchDir, "transcode-*")
		if err != nil {
			return fmt.Errorf("create scratch dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(tempDir) }()

		srcPath, err := p.materialize(ctx, tempDir, asset.Original)
		if err != nil {
			return err
		}

		width, height := payload.Resolution.FrameSize()
		outPath := filepath.Join(tempDir, "output.mp4")

		encodeStart := time.Now()
		if err := p.enc.Transcode(ctx, srcPath, outPath, width, height); err != nil {
			log.Error("encoding failed", "error", err)
			return fmt.Errorf("transcode %s: %w", payload.Resolution, err)
		}
		metrics.RecordJobStage(JobTypeTranscode, "encode", time.Since(encodeStart).Seconds())
		log.Debug("encoding finished", "duration_ms", time.Since(encodeStart).Milliseconds())

		key, err := p.finalize(ctx, asset, payload.Resolution, outPath)
		if err != nil {
			return err
		}
		if key == "" {
			// Record disappeared while encoding; output was discarded.
			return nil
		}

		metrics.RecordRenditionCompleted(string(payload.Resolution))
		log.Info("job completed", "key", key, "duration_ms", time.Since(start).Milliseconds())
		return nil
	}
}

// waitForVisibility polls for the video record. A worker can pick the job up
// before the creating transaction is observable from its pool connection.
func (p *Pipeline) waitForVisibility(ctx context.Context, videoID int64) (*catalog.VideoAsset, error) {
	for attempt := 1; ; attempt++ {
		asset, err := p.store.Get(ctx, videoID)
		if err == nil {
			return asset, nil
		}
		if !errors.Is(err, catalog.ErrNoRecord) {
			return nil, fmt.Errorf("load video %d: %w", videoID, err)
		}
		if attempt >= p.visibilityAttempts {
			return nil, fmt.Errorf("%w: video %d after %d attempts", ErrVisibilityTimeout, videoID, attempt)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.visibilityInterval):
		}
	}
}

// finalize promotes the raw encoder output into storage under a unique name
// and records it with a scoped write. Returns "" when the record vanished
// mid-flight and the output was cleaned up instead.
func (p *Pipeline) finalize(ctx context.Context, asset *catalog.VideoAsset, res catalog.Resolution, outPath string) (string, error) {
	log := logger.FromContext(ctx).With("video_id", asset.ID, "resolution", res)

	base := storage.Slugify(asset.Title)
	dir := "videos/" + string(res)

	key, err := storage.ResolveUnique(ctx, p.files, dir, base, string(res), "mp4")
	if err != nil {
		return "", fmt.Errorf("resolve output name: %w", err)
	}

	if err := p.files.Promote(ctx, outPath, key, "video/mp4"); err != nil {
		return "", fmt.Errorf("promote output: %w", err)
	}

	ok, err := p.files.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("verify output %s: %w", key, err)
	}
	if !ok {
		return "", fmt.Errorf("output %s missing after promote", key)
	}

	if err := p.store.SetRendition(ctx, asset.ID, res, key); err != nil {
		if errors.Is(err, catalog.ErrNoRecord) {
			log.Warn("video deleted during transcode, discarding output", "key", key)
			if derr := p.files.Delete(ctx, key); derr != nil && !errors.Is(derr, storage.ErrNotFound) {
				log.Warn("failed to discard output", "key", key, "error", derr)
			}
			return "", nil
		}
		return "", fmt.Errorf("record rendition: %w", err)
	}

	return key, nil
}
