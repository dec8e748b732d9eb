package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/adapter"
	"gamenews-web-memory/internal/domain/ports/repository"
	"gamenews-web-memory/internal/infra/metrics"
)

var _ PipelineUseCase = (*pipelineUC)(nil)

// PipelineUseCase drives one queue-worker invocation: claim at most one
// pending job and run it through query generation, scraping, synthesis and
// persistence.
type PipelineUseCase interface {
	// RunOnce claims and processes a single job. No pending job is a no-op.
	RunOnce(ctx context.Context) error

	// ProcessJob runs the stages for an already-claimed job and persists the
	// resulting transition. Exposed for the worker and for tests.
	ProcessJob(ctx context.Context, job *model.MemoryJob) error
}

type pipelineUC struct {
	posts    repository.PostRepository
	jobs     repository.MemoryJobRepository
	memories repository.WebMemoryRepository
	queries  QueryGenUseCase
	scraper  adapter.SearchScraper
	synth    SynthesisUseCase
	browser  adapter.BrowserSessions
	ttl      time.Duration
	maxPerQ  int
	now      func() time.Time
	log      *zerolog.Logger
}

func NewPipelineUseCase(
	posts repository.PostRepository,
	jobs repository.MemoryJobRepository,
	memories repository.WebMemoryRepository,
	queries QueryGenUseCase,
	scraper adapter.SearchScraper,
	synth SynthesisUseCase,
	browser adapter.BrowserSessions,
	ttl time.Duration,
	maxPerQuery int,
	logger *zerolog.Logger,
) *pipelineUC {
	l := logger.With().Str("component", "PipelineUC").Logger()
	if ttl <= 0 {
		ttl = model.DefaultMemoryTTL
	}
	return &pipelineUC{
		posts:    posts,
		jobs:     jobs,
		memories: memories,
		queries:  queries,
		scraper:  scraper,
		synth:    synth,
		browser:  browser,
		ttl:      ttl,
		maxPerQ:  maxPerQuery,
		now:      time.Now,
		log:      &l,
	}
}

func (p *pipelineUC) RunOnce(ctx context.Context) error {
	job, err := p.jobs.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // nothing pending, this invocation is a no-op
		}
		return err
	}
	return p.ProcessJob(ctx, job)
}

func (p *pipelineUC) ProcessJob(ctx context.Context, job *model.MemoryJob) error {
	log := p.log.With().Str("job_id", job.ID).Str("post_id", job.PostID).Logger()
	log.Info().Int("attempts", job.Attempts).Msg("processing memory job")

	// The shared browser session never survives a run, successful or not:
	// a corrupted session must not poison the next job.
	defer p.browser.ReleaseAll()

	start := p.now()
	err := p.runStages(ctx, job, &log)

	if err != nil {
		job.Fail(p.now(), err)
		if uerr := p.jobs.Update(ctx, nil, job); uerr != nil {
			log.Error().Err(uerr).Msg("failed to persist job failure")
		}
		if job.Status == model.MemoryJobStatusFailed {
			metrics.IncJobProcessed("failed")
			log.Error().Err(err).Int("attempts", job.Attempts).Msg("memory job permanently failed")
		} else {
			metrics.IncJobProcessed("retried")
			log.Warn().Err(err).Int("attempts", job.Attempts).Msg("memory job failed, will retry")
		}
		return err
	}

	job.Complete(p.now())
	if uerr := p.jobs.Update(ctx, nil, job); uerr != nil {
		log.Error().Err(uerr).Msg("failed to persist job completion")
		return uerr
	}
	metrics.IncJobProcessed("completed")
	log.Info().Dur("duration", p.now().Sub(start)).Msg("memory job completed")

	p.verifyMemory(ctx, job.PostID, &log)
	return nil
}

// runStages executes the pipeline stages. Component-level failures have
// already degraded to empty/nil sentinels inside the components; anything
// returned here is a genuine job-level error and counts against attempts.
func (p *pipelineUC) runStages(ctx context.Context, job *model.MemoryJob, log *zerolog.Logger) error {
	post, err := p.posts.FindByID(ctx, job.PostID)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}

	// Idempotency guard: an existing memory is never overwritten by a job.
	exists, err := p.memories.Exists(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("memory existence check: %w", err)
	}
	if exists {
		log.Info().Msg("web memory already exists, skipping synthesis")
		return nil
	}

	queries, err := p.queries.Generate(ctx, post)
	if err != nil {
		return fmt.Errorf("query generation: %w", err)
	}
	if len(queries) == 0 {
		log.Info().Msg("no queries generated, skipping post")
		return nil
	}

	scraped, err := p.scraper.Scrape(ctx, queries, p.maxPerQ)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	log.Info().Int("queries", len(queries)).Int("results", len(scraped)).Msg("scrape finished")

	mem, err := p.synth.Synthesize(ctx, post, scraped)
	if err != nil {
		return fmt.Errorf("synthesis: %w", err)
	}
	if mem == nil {
		log.Info().Msg("no usable memory synthesized")
		return nil
	}

	now := p.now()
	mem.QueryCount = len(queries)
	mem.ResultCount = len(scraped)
	mem.CreatedAt = now
	mem.UpdatedAt = now
	mem.ExpiresAt = now.Add(p.ttl)

	if err := p.memories.Save(ctx, nil, mem); err != nil {
		return fmt.Errorf("persist memory: %w", err)
	}
	return nil
}

// verifyMemory is a best-effort read-after-write check; it only logs and
// never affects job status.
func (p *pipelineUC) verifyMemory(ctx context.Context, postID string, log *zerolog.Logger) {
	exists, err := p.memories.Exists(ctx, postID)
	if err != nil {
		log.Warn().Err(err).Msg("memory verification read failed")
		return
	}
	log.Info().Bool("memory_exists", exists).Msg("post-completion verification")
}
