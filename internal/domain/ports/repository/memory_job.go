package repository

import (
	"context"

	"gamenews-web-memory/internal/domain/model"
)

// MemoryJobRepository persists the durable job queue.
type MemoryJobRepository interface {
	// Enqueue inserts a pending job keyed by post ID. Enqueueing a post that
	// already has a job (any status) is a no-op, not a duplicate.
	Enqueue(ctx context.Context, tx Tx, job *model.MemoryJob) error

	// ClaimNext atomically selects the oldest pending job (FIFO by creation
	// time). Concurrent claimers never receive the same job. Returns
	// domain.ErrNotFound when no pending job exists.
	ClaimNext(ctx context.Context) (*model.MemoryJob, error)

	// Update persists a state transition made on the model.
	Update(ctx context.Context, tx Tx, job *model.MemoryJob) error

	FindByPostID(ctx context.Context, postID string) (*model.MemoryJob, error)
}
