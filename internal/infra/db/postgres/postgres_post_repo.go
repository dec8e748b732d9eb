package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/repository"
)

var _ repository.PostRepository = (*postRepo)(nil)

type postRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *postRepo {
	return &postRepo{pool: pool}
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	const q = `SELECT id, title, body, game_title, category, created_at FROM posts WHERE id = $1;`

	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}
	var p model.Post
	err = row.Scan(&p.ID, &p.Title, &p.Body, &p.GameTitle, &p.Category, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

func (r *postRepo) Save(ctx context.Context, tx repository.Tx, post *model.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	const q = `
INSERT INTO posts (id, title, body, game_title, category, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  body = EXCLUDED.body,
  game_title = EXCLUDED.game_title,
  category = EXCLUDED.category;`

	_, err := execSQL(ctx, r.pool, tx, q,
		post.ID, post.Title, post.Body, post.GameTitle, post.Category, post.CreatedAt)
	return err
}
