package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/repository"
	"gamenews-web-memory/internal/infra/metrics"
)

var _ QueueUseCase = (*queueUC)(nil)

// QueueUseCase is the write side of the job queue: the post-creation event
// handler calls EnqueueForPost, everything else is the worker's business.
type QueueUseCase interface {
	// EnqueueForPost applies the eligibility filter and enqueues a job for
	// the post. Ineligible and unknown posts are silently skipped.
	EnqueueForPost(ctx context.Context, postID string) error

	// JobStatus returns the job for a post, for the operator API.
	JobStatus(ctx context.Context, postID string) (*model.MemoryJob, error)
}

type queueUC struct {
	posts repository.PostRepository
	jobs  repository.MemoryJobRepository
	log   *zerolog.Logger
}

func NewQueueUseCase(posts repository.PostRepository, jobs repository.MemoryJobRepository, logger *zerolog.Logger) *queueUC {
	l := logger.With().Str("component", "QueueUC").Logger()
	return &queueUC{posts: posts, jobs: jobs, log: &l}
}

func (u *queueUC) EnqueueForPost(ctx context.Context, postID string) error {
	post, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted between event delivery and handling; nothing to do.
			u.log.Debug().Str("post_id", postID).Msg("post not found, skipping enqueue")
			return nil
		}
		return err
	}
	if !post.IsNews() {
		// Not an error, not even noteworthy: most posts are not news.
		return nil
	}

	job := model.NewMemoryJob(post.ID)
	if err := u.jobs.Enqueue(ctx, nil, job); err != nil {
		return err
	}
	metrics.IncJobEnqueued()
	u.log.Info().Str("post_id", post.ID).Str("job_id", job.ID).Msg("memory job enqueued")
	return nil
}

func (u *queueUC) JobStatus(ctx context.Context, postID string) (*model.MemoryJob, error) {
	return u.jobs.FindByPostID(ctx, postID)
}
