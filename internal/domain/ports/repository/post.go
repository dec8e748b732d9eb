package repository

import (
	"context"

	"gamenews-web-memory/internal/domain/model"
)

// PostRepository reads posts written by the (out-of-scope) post CRUD.
// Save exists for seeds and integration tests only.
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
	Save(ctx context.Context, tx Tx, post *model.Post) error
}
