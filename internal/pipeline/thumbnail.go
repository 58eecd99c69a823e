package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/logger"
)

// extractThumbnail grabs a poster frame one second into the original and
// stores it as thumbnails/{id}.jpg. Runs inline during creation; no queue,
// no retry. The source is probed first, both to reject uploads ffmpeg cannot
// read and to move the frame offset to the start for sub-second clips.
func (p *Pipeline) extractThumbnail(ctx context.Context, asset *catalog.VideoAsset) error {
	log := logger.FromContext(ctx).With("video_id", asset.ID)

	tempDir, err := os.MkdirTemp(p.scratchDir, "thumbnail-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	srcPath, err := p.materialize(ctx, tempDir, asset.Original)
	if err != nil {
		return err
	}

	meta, err := p.enc.Probe(ctx, srcPath)
	if err != nil {
		return fmt.Errorf("probe source: %w", err)
	}
	log.Debug("source probed",
		"duration_s", meta.Duration, "container", meta.Container,
		"width", meta.Width, "height", meta.Height)

	at := thumbnailOffset
	if meta.Duration > 0 && meta.Duration < thumbnailOffset.Seconds() {
		at = 0
	}

	outPath := filepath.Join(tempDir, "frame.jpg")
	if err := p.enc.ExtractFrame(ctx, srcPath, outPath, at); err != nil {
		return fmt.Errorf("extract frame: %w", err)
	}

	key := fmt.Sprintf("thumbnails/%d.jpg", asset.ID)
	if err := p.files.Promote(ctx, outPath, key, "image/jpeg"); err != nil {
		return fmt.Errorf("promote thumbnail: %w", err)
	}

	if err := p.store.SetThumbnail(ctx, asset.ID, key); err != nil {
		return fmt.Errorf("record thumbnail: %w", err)
	}

	log.Debug("thumbnail extracted", "key", key)
	return nil
}
