package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/adapter"
	"gamenews-web-memory/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- Fake AI adapter ----

// fakeAI scripts Chat replies and token counts per test.
type fakeAI struct {
	ChatFunc        func(ctx context.Context, model string, messages []adapter.Message) (string, error)
	CountTokensFunc func(ctx context.Context, model string, messages []adapter.Message) (int, error)
	Calls           int
}

var _ adapter.AIServiceAdapter = (*fakeAI)(nil)

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"gpt-4o-mini"}, nil
}

func (f *fakeAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if f.CountTokensFunc != nil {
		return f.CountTokensFunc(ctx, model, messages)
	}
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.Calls++
	if f.ChatFunc != nil {
		return f.ChatFunc(ctx, model, messages)
	}
	return "{}", nil
}

// ---- Fake scraper + browser ----

type fakeScraper struct {
	Results []model.ScrapedResult
	Err     error
	Queries []string
}

var _ adapter.SearchScraper = (*fakeScraper)(nil)

func (f *fakeScraper) Scrape(ctx context.Context, queries []string, maxPerQuery int) ([]model.ScrapedResult, error) {
	f.Queries = append(f.Queries, queries...)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Results, nil
}

type fakeBrowser struct {
	mu       sync.Mutex
	Released int
}

var _ adapter.BrowserSessions = (*fakeBrowser)(nil)

func (f *fakeBrowser) ReleaseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Released++
}

// ---- In-memory repositories ----

type memPostRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Post
}

var _ repository.PostRepository = (*memPostRepo)(nil)

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{store: make(map[string]*model.Post)}
}

func (m *memPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPostRepo) Save(ctx context.Context, tx repository.Tx, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *post
	m.store[post.ID] = &cp
	return nil
}

type memJobRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.MemoryJob // keyed by post ID
	saveErr error
}

var _ repository.MemoryJobRepository = (*memJobRepo)(nil)

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.MemoryJob)}
}

func (m *memJobRepo) Enqueue(ctx context.Context, tx repository.Tx, job *model.MemoryJob) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.store[job.PostID]; exists {
		return nil // merge semantics, matching the conflict-ignoring insert
	}
	cp := *job
	m.store[job.PostID] = &cp
	return nil
}

func (m *memJobRepo) ClaimNext(ctx context.Context) (*model.MemoryJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*model.MemoryJob
	for _, j := range m.store {
		if j.Status == model.MemoryJobStatusPending {
			pending = append(pending, j)
		}
	}
	if len(pending) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	cp := *pending[0]
	return &cp, nil
}

func (m *memJobRepo) Update(ctx context.Context, tx repository.Tx, job *model.MemoryJob) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[job.PostID]; !ok {
		return domain.ErrNotFound
	}
	cp := *job
	m.store[job.PostID] = &cp
	return nil
}

func (m *memJobRepo) FindByPostID(ctx context.Context, postID string) (*model.MemoryJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[postID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

type memMemoryRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.WebMemory
	saveErr   error
	existsErr error
	deleteErr map[string]error // per-post delete failures
}

var _ repository.WebMemoryRepository = (*memMemoryRepo)(nil)

func newMemMemoryRepo() *memMemoryRepo {
	return &memMemoryRepo{store: make(map[string]*model.WebMemory)}
}

func (m *memMemoryRepo) Save(ctx context.Context, tx repository.Tx, mem *model.WebMemory) error {
	if m.saveErr != nil {
		return m.saveErr
	}
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
	if m.existsErr != nil {
		return false, m.existsErr
	}
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
