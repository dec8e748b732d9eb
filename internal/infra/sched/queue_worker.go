package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/infra/redis"
	"gamenews-web-memory/internal/usecase"
)

// workerLockKey serializes job processing across ticks and replicas.
const workerLockKey = "web-memory:worker"

// QueueWorker drives the pipeline on a fixed interval. Each tick processes at
// most one job, under a redis lock so overlapping ticks never double-claim.
type QueueWorker struct {
	interval time.Duration
	pipeline usecase.PipelineUseCase
	locker   redis.Locker
	log      *zerolog.Logger
}

func NewQueueWorker(interval time.Duration, pipeline usecase.PipelineUseCase, locker redis.Locker, logger *zerolog.Logger) *QueueWorker {
	qwLog := logger.With().Str("component", "QueueWorker").Logger()
	return &QueueWorker{
		interval: interval,
		pipeline: pipeline,
		locker:   locker,
		log:      &qwLog,
	}
}

func (w *QueueWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting queue worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping queue worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *QueueWorker) tick(ctx context.Context) {
	// Lock TTL stays under the tick interval so a crashed holder frees the
	// queue before the next tick fires.
	ttl := w.interval - w.interval/5
	token, err := w.locker.TryLock(ctx, workerLockKey, ttl)
	if err != nil {
		if errors.Is(err, domain.ErrLockBusy) {
			w.log.Debug().Msg("worker lock busy, skipping tick")
		} else {
			w.log.Error().Err(err).Msg("worker lock error")
		}
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()

	if err := w.pipeline.RunOnce(runCtx); err != nil {
		w.log.Error().Err(err).Msg("pipeline run failed")
	}

	if err := w.locker.Unlock(ctx, workerLockKey, token); err != nil {
		w.log.Warn().Err(err).Msg("worker unlock failed")
	}
}
