package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain/ports/repository"
	"gamenews-web-memory/internal/infra/metrics"
)

// CleanupWorker sweeps expired web memories once per interval. Expiry is
// judged by creation age against the configured TTL, so memories written
// before the expires_at column existed are still swept.
type CleanupWorker struct {
	interval time.Duration
	ttl      time.Duration
	batch    int
	memories repository.WebMemoryRepository
	now      func() time.Time
	log      *zerolog.Logger
}

func NewCleanupWorker(interval, ttl time.Duration, batch int, memories repository.WebMemoryRepository, logger *zerolog.Logger) *CleanupWorker {
	cwLog := logger.With().Str("component", "CleanupWorker").Logger()
	return &CleanupWorker{
		interval: interval,
		ttl:      ttl,
		batch:    batch,
		memories: memories,
		now:      time.Now,
		log:      &cwLog,
	}
}

func (w *CleanupWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting cleanup worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping cleanup worker")
			return ctx.Err()
		case <-ticker.C:
			found, deleted, err := w.RunOnce(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("cleanup sweep error")
			}
			if found > 0 {
				w.log.Info().Int("found", found).Int("deleted", deleted).Msg("cleanup sweep finished")
			}
		}
	}
}

// RunOnce performs a single sweep and reports how many expired memories were
// found and how many were actually deleted. A per-row delete failure is
// logged and skipped; the sweep keeps going.
func (w *CleanupWorker) RunOnce(ctx context.Context) (found, deleted int, err error) {
	cutoff := w.now().Add(-w.ttl)
	postIDs, err := w.memories.ListExpired(ctx, cutoff, w.batch)
	if err != nil {
		return 0, 0, err
	}
	found = len(postIDs)
	metrics.AddMemoriesFound(found)

	for _, postID := range postIDs {
		if derr := w.memories.Delete(ctx, postID); derr != nil {
			w.log.Warn().Err(derr).Str("post_id", postID).Msg("failed to delete expired memory")
			continue
		}
		deleted++
	}
	metrics.AddMemoriesDeleted(deleted)
	return found, deleted, nil
}
