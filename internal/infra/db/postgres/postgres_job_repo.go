package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/repository"
)

var _ repository.MemoryJobRepository = (*memoryJobRepo)(nil)

type memoryJobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewMemoryJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *memoryJobRepo {
	return &memoryJobRepo{pool: pool, tm: tm}
}

// Enqueue inserts a pending job. The unique post_id constraint gives the
// merge semantics: a post that already has a job, in any status, is left
// untouched.
func (r *memoryJobRepo) Enqueue(ctx context.Context, tx repository.Tx, job *model.MemoryJob) error {
	const q = `
INSERT INTO memory_jobs (id, post_id, status, attempts, last_error, last_error_at, created_at, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (post_id) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.PostID, job.Status, job.Attempts, job.LastError, job.LastErrorAt, job.CreatedAt, job.ProcessedAt)
	return err
}

func (r *memoryJobRepo) Update(ctx context.Context, tx repository.Tx, job *model.MemoryJob) error {
	const q = `
UPDATE memory_jobs SET
  status = $2,
  attempts = $3,
  last_error = $4,
  last_error_at = $5,
  processed_at = $6
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.Status, job.Attempts, job.LastError, job.LastErrorAt, job.ProcessedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimNext selects the oldest pending job. FOR UPDATE SKIP LOCKED keeps
// concurrent claimers from receiving the same row while the claim transaction
// is open.
func (r *memoryJobRepo) ClaimNext(ctx context.Context) (*model.MemoryJob, error) {
	var job *model.MemoryJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const q = `
SELECT id, post_id, status, attempts, last_error, last_error_at, created_at, processed_at
FROM memory_jobs
WHERE status = 'pending'
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, q)
		if err != nil {
			return err
		}
		j, err := scanJob(row)
		if err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *memoryJobRepo) FindByPostID(ctx context.Context, postID string) (*model.MemoryJob, error) {
	const q = `
SELECT id, post_id, status, attempts, last_error, last_error_at, created_at, processed_at
FROM memory_jobs
WHERE post_id = $1;`

	row, err := pickRow(ctx, r.pool, nil, q, postID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func scanJob(row pgx.Row) (*model.MemoryJob, error) {
	var j model.MemoryJob
	var status string
	err := row.Scan(&j.ID, &j.PostID, &status, &j.Attempts, &j.LastError, &j.LastErrorAt, &j.CreatedAt, &j.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	j.Status = model.MemoryJobStatus(status)
	return &j, nil
}
