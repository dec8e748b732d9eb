package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/repository"
)

var _ repository.WebMemoryRepository = (*webMemoryRepo)(nil)

type webMemoryRepo struct {
	pool *pgxpool.Pool
}

func NewWebMemoryRepo(pool *pgxpool.Pool) *webMemoryRepo {
	return &webMemoryRepo{pool: pool}
}

func (r *webMemoryRepo) Save(ctx context.Context, tx repository.Tx, mem *model.WebMemory) error {
	sources, err := json.Marshal(mem.Sources)
	if err != nil {
		return err
	}
	mem.UpdatedAt = time.Now()
	if mem.CreatedAt.IsZero() {
		mem.CreatedAt = mem.UpdatedAt
	}

	const q = `
INSERT INTO web_memories (
  post_id, summary, consensus, points_of_disagreement, rumors_and_unconfirmed,
  notable_details, sources, generated_at_iso, query_count, result_count,
  created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (post_id) DO UPDATE SET
  summary = EXCLUDED.summary,
  consensus = EXCLUDED.consensus,
  points_of_disagreement = EXCLUDED.points_of_disagreement,
  rumors_and_unconfirmed = EXCLUDED.rumors_and_unconfirmed,
  notable_details = EXCLUDED.notable_details,
  sources = EXCLUDED.sources,
  generated_at_iso = EXCLUDED.generated_at_iso,
  query_count = EXCLUDED.query_count,
  result_count = EXCLUDED.result_count,
  updated_at = EXCLUDED.updated_at,
  expires_at = EXCLUDED.expires_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		mem.PostID, mem.Summary, mem.Consensus,
		mem.PointsOfDisagreement, mem.RumorsAndUnconfirmed, mem.NotableDetails,
		sources, mem.GeneratedAtIso, mem.QueryCount, mem.ResultCount,
		mem.CreatedAt, mem.UpdatedAt, mem.ExpiresAt)
	return err
}

func (r *webMemoryRepo) FindByPostID(ctx context.Context, postID string) (*model.WebMemory, error) {
	const q = `
SELECT post_id, summary, consensus, points_of_disagreement, rumors_and_unconfirmed,
       notable_details, sources, generated_at_iso, query_count, result_count,
       created_at, updated_at, expires_at
FROM web_memories
WHERE post_id = $1;`

	row, err := pickRow(ctx, r.pool, nil, q, postID)
	if err != nil {
		return nil, err
	}

	var m model.WebMemory
	var sources []byte
	err = row.Scan(&m.PostID, &m.Summary, &m.Consensus,
		&m.PointsOfDisagreement, &m.RumorsAndUnconfirmed, &m.NotableDetails,
		&sources, &m.GeneratedAtIso, &m.QueryCount, &m.ResultCount,
		&m.CreatedAt, &m.UpdatedAt, &m.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if err := json.Unmarshal(sources, &m.Sources); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return &m, nil
}

func (r *webMemoryRepo) Exists(ctx context.Context, postID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM web_memories WHERE post_id = $1);`

	row, err := pickRow(ctx, r.pool, nil, q, postID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *webMemoryRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	const q = `
SELECT post_id FROM web_memories
WHERE created_at < $1
ORDER BY created_at
LIMIT $2;`

	rows, err := r.pool.Query(ctx, q, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *webMemoryRepo) Delete(ctx context.Context, postID string) error {
	const q = `DELETE FROM web_memories WHERE post_id = $1;`
	_, err := execSQL(ctx, r.pool, nil, q, postID)
	return err
}
