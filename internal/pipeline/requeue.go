package pipeline

import (
	"context"
	"fmt"

	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/logger"
)

// Requeue re-enqueues transcode jobs for every rendition the video is still
// missing. Renditions already produced are left alone. Returns the list of
// resolutions that were requeued.
func (p *Pipeline) Requeue(ctx context.Context, videoID int64) ([]catalog.Resolution, error) {
	log := logger.FromContext(ctx).With("video_id", videoID)

	asset, err := p.store.Get(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load video %d: %w", videoID, err)
	}
	if asset.Original == "" {
		return nil, fmt.Errorf("video %d has no original file", videoID)
	}

	var requeued []catalog.Resolution
	for _, res := range catalog.AllResolutions {
		if asset.Rendition(res) != "" {
			continue
		}
		p.enqueueTranscode(ctx, videoID, res)
		requeued = append(requeued, res)
	}

	log.Info("renditions requeued", "count", len(requeued))
	return requeued, nil
}
