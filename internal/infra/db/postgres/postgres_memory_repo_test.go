//go:build integration

package postgres

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
)

func sampleMemory(postID string) *model.WebMemory {
	now := time.Now().Truncate(time.Millisecond)
	return &model.WebMemory{
		PostID:               postID,
		Summary:              "Summary of coverage.",
		Consensus:            "A sequel exists.",
		PointsOfDisagreement: []string{"release year"},
		RumorsAndUnconfirmed: []string{"open world"},
		NotableDetails:       []string{"same engine"},
		Sources: []model.SourceRef{
			{URL: "https://example.com/1", Title: "Coverage", ShortNote: "Teaser analysis"},
		},
		GeneratedAtIso: "2026-08-30T10:00:00Z",
		QueryCount:     5,
		ResultCount:    12,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(30 * 24 * time.Hour),
	}
}

func TestWebMemoryRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewWebMemoryRepo(testPool)

	t.Run("save and find round-trips arrays and sources", func(t *testing.T) {
		cleanup(t)

		mem := sampleMemory("post-1")
		if err := repo.Save(ctx, nil, mem); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := repo.FindByPostID(ctx, "post-1")
		if err != nil {
			t.Fatalf("FindByPostID: %v", err)
		}
		if got.Summary != mem.Summary || got.Consensus != mem.Consensus {
			t.Errorf("got %+v", got)
		}
		if !reflect.DeepEqual(got.PointsOfDisagreement, mem.PointsOfDisagreement) {
			t.Errorf("PointsOfDisagreement = %v", got.PointsOfDisagreement)
		}
		if !reflect.DeepEqual(got.Sources, mem.Sources) {
			t.Errorf("Sources = %+v", got.Sources)
		}
		if got.QueryCount != 5 || got.ResultCount != 12 {
			t.Errorf("audit counts = (%d, %d)", got.QueryCount, got.ResultCount)
		}
	})

	t.Run("exists", func(t *testing.T) {
		cleanup(t)

		if ok, err := repo.Exists(ctx, "post-1"); err != nil || ok {
			t.Fatalf("Exists = (%v, %v), want (false, nil)", ok, err)
		}
		if err := repo.Save(ctx, nil, sampleMemory("post-1")); err != nil {
			t.Fatal(err)
		}
		if ok, err := repo.Exists(ctx, "post-1"); err != nil || !ok {
			t.Fatalf("Exists = (%v, %v), want (true, nil)", ok, err)
		}
	})

	t.Run("save upserts on post_id", func(t *testing.T) {
		cleanup(t)

		mem := sampleMemory("post-1")
		if err := repo.Save(ctx, nil, mem); err != nil {
			t.Fatal(err)
		}
		mem.Summary = "Revised summary."
		if err := repo.Save(ctx, nil, mem); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		got, err := repo.FindByPostID(ctx, "post-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Summary != "Revised summary." {
			t.Errorf("Summary = %q", got.Summary)
		}
	})

	t.Run("list expired respects cutoff and limit", func(t *testing.T) {
		cleanup(t)

		old1 := sampleMemory("old-1")
		old1.CreatedAt = time.Now().Add(-40 * 24 * time.Hour)
		old2 := sampleMemory("old-2")
		old2.CreatedAt = time.Now().Add(-35 * 24 * time.Hour)
		fresh := sampleMemory("fresh")
		for _, m := range []*model.WebMemory{old1, old2, fresh} {
			if err := repo.Save(ctx, nil, m); err != nil {
				t.Fatal(err)
			}
		}

		cutoff := time.Now().Add(-30 * 24 * time.Hour)
		ids, err := repo.ListExpired(ctx, cutoff, 10)
		if err != nil {
			t.Fatalf("ListExpired: %v", err)
		}
		if !reflect.DeepEqual(ids, []string{"old-1", "old-2"}) {
			t.Errorf("ids = %v", ids)
		}

		ids, err = repo.ListExpired(ctx, cutoff, 1)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ids, []string{"old-1"}) {
			t.Errorf("limited ids = %v, want the oldest first", ids)
		}
	})

	t.Run("delete", func(t *testing.T) {
		cleanup(t)

		if err := repo.Save(ctx, nil, sampleMemory("post-1")); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(ctx, "post-1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.FindByPostID(ctx, "post-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("FindByPostID after delete = %v, want ErrNotFound", err)
		}
		// Deleting an absent row is not an error.
		if err := repo.Delete(ctx, "post-1"); err != nil {
			t.Errorf("second Delete: %v", err)
		}
	})
}
