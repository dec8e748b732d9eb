package ai

import (
	"context"
	"strings"
	"time"

	"gamenews-web-memory/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev runs.
// It returns canned JSON shaped like the pipeline prompts expect, so the
// whole pipeline can be exercised without an API key.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-model"}, nil
}

func (a *NoopAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        "noop-model",
		Description: "Noop model for local development",
		MaxTokens:   1024,
		Supports:    []string{"text", "json"},
	}, nil
}

func (a *NoopAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(strings.Fields(m.Content))
	}
	return n, nil
}

func (a *NoopAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	// Crude prompt sniffing: query-generation prompts ask for a "queries" key.
	for _, m := range messages {
		if strings.Contains(m.Content, `"queries"`) {
			return `{"queries": ["noop game news", "noop release date"]}`, nil
		}
	}
	return `{"summary": "Noop summary of scraped coverage.", "consensus": "Noop consensus.",
"pointsOfDisagreement": [], "rumorsAndUnconfirmed": [], "notableDetails": [],
"sources": [], "generatedAtIso": ""}`, nil
}
