package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/logger"
	"github.com/reelforge/reelforge/internal/metrics"
	"github.com/reelforge/reelforge/internal/storage"
)

// SweepPrefixes covers every directory the pipeline writes into.
var SweepPrefixes = []string{"videos/", "thumbnails/"}

type SweepStats struct {
	Scanned int
	Removed int
	Errors  int
}

// SweepOrphans removes stored files no catalog record references. It backs
// up the best-effort deletion path: files stranded by a crash between record
// delete and file delete get collected here.
func (p *Pipeline) SweepOrphans(ctx context.Context, prefixes []string) (*SweepStats, error) {
	log := logger.FromContext(ctx)
	stats := &SweepStats{}

	assets, err := p.store.List(ctx, catalog.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	referenced := make(map[string]struct{})
	for _, asset := range assets {
		for _, ref := range asset.Refs() {
			referenced[ref] = struct{}{}
		}
	}

	for _, prefix := range prefixes {
		keys, err := p.files.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list storage %s: %w", prefix, err)
		}

		for _, key := range keys {
			stats.Scanned++
			if _, ok := referenced[key]; ok {
				continue
			}

			err := p.files.Delete(ctx, key)
			switch {
			case err == nil:
				stats.Removed++
				log.Info("orphan removed", "key", key)
			case errors.Is(err, storage.ErrNotFound):
				log.Debug("orphan already gone", "key", key)
				metrics.RecordCleanupMiss()
			default:
				stats.Errors++
				log.Warn("orphan removal failed", "key", key, "error", err)
			}
		}
	}

	return stats, nil
}
