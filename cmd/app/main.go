package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/config"
	"gamenews-web-memory/internal/domain/ports/adapter"
	aiAdapters "gamenews-web-memory/internal/infra/adapters/ai"
	"gamenews-web-memory/internal/infra/browser"
	pg "gamenews-web-memory/internal/infra/db/postgres"
	"gamenews-web-memory/internal/infra/logging"
	"gamenews-web-memory/internal/infra/metrics"
	red "gamenews-web-memory/internal/infra/redis"
	"gamenews-web-memory/internal/infra/sched"
	"gamenews-web-memory/internal/infra/scraper"
	"gamenews-web-memory/internal/infra/web"
	"gamenews-web-memory/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	postRepo := pg.NewPostRepo(pool)
	jobRepo := pg.NewMemoryJobRepo(pool, tm)
	memoryRepo := pg.NewWebMemoryRepo(pool)

	// ---- AI adapter ----
	ai, err := buildAIAdapter(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai adapter")
	}

	// ---- Browser + scraper ----
	sessions := browser.NewSessionManager(cfg.Browser, logger)
	searchScraper := scraper.NewSearchScraper(sessions, cfg.Pipeline, logger)

	// ---- Use cases ----
	queryGenUC := usecase.NewQueryGenUseCase(ai, cfg.AI.QueryGenModelName(), logger)
	synthesisUC := usecase.NewSynthesisUseCase(ai, cfg.AI.SynthesisModelName(), cfg.AI.MaxPromptTokens, logger)
	pipelineUC := usecase.NewPipelineUseCase(
		postRepo, jobRepo, memoryRepo,
		queryGenUC, searchScraper, synthesisUC, sessions,
		cfg.Pipeline.TTL(), cfg.Pipeline.MaxPerQuery, logger,
	)
	queueUC := usecase.NewQueueUseCase(postRepo, jobRepo, logger)

	// ---- Workers ----
	if cfg.Pipeline.Enabled() {
		queueWorker := sched.NewQueueWorker(cfg.Pipeline.WorkerInterval, pipelineUC, locker, logger)
		go func() { _ = queueWorker.Run(ctx) }()

		cleanupWorker := sched.NewCleanupWorker(cfg.Pipeline.CleanupInterval, cfg.Pipeline.TTL(), cfg.Pipeline.CleanupBatch, memoryRepo, logger)
		go func() { _ = cleanupWorker.Run(ctx) }()
	} else {
		logger.Warn().Msg("pipeline disabled; workers not started")
	}

	// ---- HTTP server ----
	srv := web.NewServer(queueUC, cfg.Pipeline.Enabled(), logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	sessions.ReleaseAll()
}

// buildAIAdapter wires providers by key availability: dev mode always gets the
// noop adapter; with both an OpenAI-compatible key and a Gemini key the multi
// adapter routes per model name.
func buildAIAdapter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	if cfg.Runtime.Dev {
		logger.Info().Msg("AI adapter: noop (dev mode)")
		return aiAdapters.NewNoopAIAdapter(), nil
	}

	providers := map[string]adapter.AIServiceAdapter{}
	defaultProvider := ""

	if cfg.AI.APIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.APIKey, cfg.AI.DefaultModel, cfg.AI.BaseURL)
		if err != nil {
			return nil, err
		}
		providers["openai"] = oa
		defaultProvider = "openai"
		logger.Info().Str("base", cfg.AI.BaseURL).Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI-compatible")
	}
	if cfg.AI.GeminiKey != "" {
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel, 0)
		if err != nil {
			return nil, err
		}
		providers["gemini"] = ga
		if defaultProvider == "" {
			defaultProvider = "gemini"
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	}

	switch len(providers) {
	case 0:
		return nil, fmt.Errorf("no AI provider configured")
	case 1:
		return providers[defaultProvider], nil
	default:
		return aiAdapters.NewMultiAIAdapter(defaultProvider, providers, nil), nil
	}
}
