package repository

import (
	"context"
	"time"

	"gamenews-web-memory/internal/domain/model"
)

// WebMemoryRepository persists synthesized web memories, one per post.
type WebMemoryRepository interface {
	Save(ctx context.Context, tx Tx, mem *model.WebMemory) error
	FindByPostID(ctx context.Context, postID string) (*model.WebMemory, error)
	Exists(ctx context.Context, postID string) (bool, error)

	// ListExpired returns post IDs of memories created before cutoff,
	// at most limit of them.
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	Delete(ctx context.Context, postID string) error
}
