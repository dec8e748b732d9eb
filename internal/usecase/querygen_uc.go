package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/adapter"
	"gamenews-web-memory/internal/infra/metrics"
)

// MaxQueries caps the query list handed to the scraper.
const MaxQueries = 10

// Compile-time check
var _ QueryGenUseCase = (*queryGenUC)(nil)

// QueryGenUseCase turns a post into short web-search queries.
// Every failure mode degrades to an empty list: downstream treats "no
// queries" as "skip this post", never as an error.
type QueryGenUseCase interface {
	Generate(ctx context.Context, post *model.Post) ([]string, error)
}

type queryGenUC struct {
	ai    adapter.AIServiceAdapter
	model string
	log   *zerolog.Logger
}

func NewQueryGenUseCase(ai adapter.AIServiceAdapter, modelName string, logger *zerolog.Logger) *queryGenUC {
	l := logger.With().Str("component", "QueryGenUC").Logger()
	return &queryGenUC{ai: ai, model: modelName, log: &l}
}

const queryGenSystemPrompt = `You generate web search queries for gaming news research.
Given a community post about a game, produce 5-10 short queries (about 7 words each)
covering distinct angles: features, leaks, platforms, release date, reviews,
developer statements, DLC, performance, controversy, esports. Avoid near-duplicate
queries. Respond with strict JSON only: {"queries": ["...", "..."]}`

func (u *queryGenUC) Generate(ctx context.Context, post *model.Post) ([]string, error) {
	if post == nil || post.Empty() {
		return nil, nil
	}

	userPrompt := fmt.Sprintf("Post title: %s\nGame: %s\nPost body:\n%s",
		strings.TrimSpace(post.Title), strings.TrimSpace(post.GameTitle), strings.TrimSpace(post.Body))

	start := time.Now()
	reply, err := u.ai.Chat(ctx, u.model, []adapter.Message{
		{Role: "system", Content: queryGenSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	metrics.ObserveAICall("querygen", time.Since(start).Seconds(), err == nil)
	if err != nil {
		u.log.Warn().Err(err).Str("post_id", post.ID).Msg("query generation call failed")
		return []string{}, nil
	}

	var payload struct {
		Queries []string `json:"queries"`
	}
	raw := extractJSON(reply)
	if raw == "" || json.Unmarshal([]byte(raw), &payload) != nil {
		u.log.Warn().Str("post_id", post.ID).Msg("query generation returned malformed JSON")
		return []string{}, nil
	}

	return CleanQueries(payload.Queries), nil
}

// CleanQueries trims each candidate, drops empties, deduplicates
// case-insensitively (first occurrence wins) and caps the list at MaxQueries.
// Idempotent: cleaning an already-clean list is a no-op.
func CleanQueries(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, q := range in {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == MaxQueries {
			break
		}
	}
	return out
}
