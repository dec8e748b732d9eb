package sched

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/repository"
)

func noplog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type memMemoryRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.WebMemory
	deleteErr map[string]error
}

var _ repository.WebMemoryRepository = (*memMemoryRepo)(nil)

func newMemMemoryRepo() *memMemoryRepo {
	return &memMemoryRepo{store: make(map[string]*model.WebMemory), deleteErr: map[string]error{}}
}

func (m *memMemoryRepo) Save(ctx context.Context, tx repository.Tx, mem *model.WebMemory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mem
	m.store[mem.PostID] = &cp
	return nil
}

func (m *memMemoryRepo) FindByPostID(ctx context.Context, postID string) (*model.WebMemory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mem, ok := m.store[postID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *mem
	return &cp, nil
}

func (m *memMemoryRepo) Exists(ctx context.Context, postID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[postID]
	return ok, nil
}

func (m *memMemoryRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for id, mem := range m.store {
		if mem.CreatedAt.Before(cutoff) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memMemoryRepo) Delete(ctx context.Context, postID string) error {
	if err := m.deleteErr[postID]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, postID)
	return nil
}

func seedMemory(repo *memMemoryRepo, postID string, age time.Duration) {
	repo.Save(context.Background(), nil, &model.WebMemory{
		PostID:    postID,
		Summary:   "s",
		CreatedAt: time.Now().Add(-age),
	})
}

func TestCleanup_SweepsOnlyExpired(t *testing.T) {
	repo := newMemMemoryRepo()
	seedMemory(repo, "old", 31*24*time.Hour)
	seedMemory(repo, "fresh", 29*24*time.Hour)

	w := NewCleanupWorker(24*time.Hour, 30*24*time.Hour, 100, repo, noplog())
	found, deleted, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if found != 1 || deleted != 1 {
		t.Fatalf("(found, deleted) = (%d, %d), want (1, 1)", found, deleted)
	}

	if ok, _ := repo.Exists(context.Background(), "old"); ok {
		t.Error("expired memory survived the sweep")
	}
	if ok, _ := repo.Exists(context.Background(), "fresh"); !ok {
		t.Error("fresh memory was deleted")
	}
}

func TestCleanup_EmptySweep(t *testing.T) {
	w := NewCleanupWorker(24*time.Hour, 30*24*time.Hour, 100, newMemMemoryRepo(), noplog())
	found, deleted, err := w.RunOnce(context.Background())
	if err != nil || found != 0 || deleted != 0 {
		t.Fatalf("RunOnce = (%d, %d, %v), want (0, 0, nil)", found, deleted, err)
	}
}

func TestCleanup_RespectsBatchLimit(t *testing.T) {
	repo := newMemMemoryRepo()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		seedMemory(repo, id, 40*24*time.Hour)
	}

	w := NewCleanupWorker(24*time.Hour, 30*24*time.Hour, 2, repo, noplog())
	found, deleted, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if found != 2 || deleted != 2 {
		t.Fatalf("(found, deleted) = (%d, %d), want (2, 2)", found, deleted)
	}
}

func TestCleanup_DeleteFailureDoesNotAbortSweep(t *testing.T) {
	repo := newMemMemoryRepo()
	seedMemory(repo, "a", 40*24*time.Hour)
	seedMemory(repo, "b", 40*24*time.Hour)
	seedMemory(repo, "c", 40*24*time.Hour)
	repo.deleteErr["b"] = errors.New("row locked")

	w := NewCleanupWorker(24*time.Hour, 30*24*time.Hour, 100, repo, noplog())
	found, deleted, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if found != 3 || deleted != 2 {
		t.Fatalf("(found, deleted) = (%d, %d), want (3, 2)", found, deleted)
	}
	if ok, _ := repo.Exists(context.Background(), "c"); ok {
		t.Error("sweep stopped at the failing row")
	}
}
