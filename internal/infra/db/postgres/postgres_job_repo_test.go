//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
)

func TestMemoryJobRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	tm := NewTxManager(testPool)
	repo := NewMemoryJobRepo(testPool, tm)

	t.Run("enqueue and find", func(t *testing.T) {
		cleanup(t)

		job := model.NewMemoryJob("post-1")
		if err := repo.Enqueue(ctx, nil, job); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}

		got, err := repo.FindByPostID(ctx, "post-1")
		if err != nil {
			t.Fatalf("FindByPostID: %v", err)
		}
		if got.ID != job.ID || got.Status != model.MemoryJobStatusPending || got.Attempts != 0 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("duplicate enqueue is a no-op", func(t *testing.T) {
		cleanup(t)

		first := model.NewMemoryJob("post-1")
		if err := repo.Enqueue(ctx, nil, first); err != nil {
			t.Fatal(err)
		}
		second := model.NewMemoryJob("post-1")
		if err := repo.Enqueue(ctx, nil, second); err != nil {
			t.Fatalf("second Enqueue: %v", err)
		}

		got, err := repo.FindByPostID(ctx, "post-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != first.ID {
			t.Errorf("duplicate enqueue replaced the job: %s -> %s", first.ID, got.ID)
		}
	})

	t.Run("claim is FIFO by creation time", func(t *testing.T) {
		cleanup(t)

		older := model.NewMemoryJob("post-old")
		older.CreatedAt = time.Now().Add(-time.Hour)
		newer := model.NewMemoryJob("post-new")
		if err := repo.Enqueue(ctx, nil, newer); err != nil {
			t.Fatal(err)
		}
		if err := repo.Enqueue(ctx, nil, older); err != nil {
			t.Fatal(err)
		}

		got, err := repo.ClaimNext(ctx)
		if err != nil {
			t.Fatalf("ClaimNext: %v", err)
		}
		if got.PostID != "post-old" {
			t.Errorf("claimed %s, want the older job", got.PostID)
		}
	})

	t.Run("claim skips terminal jobs", func(t *testing.T) {
		cleanup(t)

		done := model.NewMemoryJob("post-done")
		if err := repo.Enqueue(ctx, nil, done); err != nil {
			t.Fatal(err)
		}
		done.Complete(time.Now())
		if err := repo.Update(ctx, nil, done); err != nil {
			t.Fatalf("Update: %v", err)
		}

		if _, err := repo.ClaimNext(ctx); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("ClaimNext = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty queue returns ErrNotFound", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.ClaimNext(ctx); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("ClaimNext = %v, want ErrNotFound", err)
		}
	})

	t.Run("update persists failure transitions", func(t *testing.T) {
		cleanup(t)

		job := model.NewMemoryJob("post-1")
		if err := repo.Enqueue(ctx, nil, job); err != nil {
			t.Fatal(err)
		}

		job.Fail(time.Now(), errors.New("scrape: timeout"))
		if err := repo.Update(ctx, nil, job); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, err := repo.FindByPostID(ctx, "post-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Attempts != 1 || got.Status != model.MemoryJobStatusPending {
			t.Errorf("got %+v", got)
		}
		if got.LastError != "scrape: timeout" || got.LastErrorAt == nil {
			t.Errorf("failure fields not persisted: %+v", got)
		}
	})

	t.Run("update of unknown job is ErrNotFound", func(t *testing.T) {
		cleanup(t)
		ghost := model.NewMemoryJob("ghost")
		if err := repo.Update(ctx, nil, ghost); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Update = %v, want ErrNotFound", err)
		}
	})
}
