package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/adapter"
	"gamenews-web-memory/internal/infra/metrics"
)

// maxSynthesisResults caps how many scraped results reach the prompt.
const maxSynthesisResults = 10

var _ SynthesisUseCase = (*synthesisUC)(nil)

// SynthesisUseCase turns scraped results into a validated web memory.
// A nil result means "no usable memory"; the synthesizer never asks the
// queue to retry, that policy lives with the job worker.
type SynthesisUseCase interface {
	Synthesize(ctx context.Context, post *model.Post, scraped []model.ScrapedResult) (*model.WebMemory, error)
}

type synthesisUC struct {
	ai        adapter.AIServiceAdapter
	model     string
	maxTokens int
	sanitize  *bluemonday.Policy
	now       func() time.Time
	log       *zerolog.Logger
}

func NewSynthesisUseCase(ai adapter.AIServiceAdapter, modelName string, maxPromptTokens int, logger *zerolog.Logger) *synthesisUC {
	l := logger.With().Str("component", "SynthesisUC").Logger()
	return &synthesisUC{
		ai:        ai,
		model:     modelName,
		maxTokens: maxPromptTokens,
		sanitize:  bluemonday.StrictPolicy(),
		now:       time.Now,
		log:       &l,
	}
}

const synthesisSystemPrompt = `You synthesize a research memory from web search snippets about a gaming news post.
Paraphrase, never quote. Hedge anything speculative. Keep consensus strictly separate from rumor.
Respond with strict JSON only, using exactly these keys:
{"summary": "...", "consensus": "...", "pointsOfDisagreement": ["..."],
"rumorsAndUnconfirmed": ["..."], "notableDetails": ["..."],
"sources": [{"url": "...", "title": "...", "shortNote": "..."}],
"generatedAtIso": "..."}`

func (u *synthesisUC) Synthesize(ctx context.Context, post *model.Post, scraped []model.ScrapedResult) (*model.WebMemory, error) {
	if len(scraped) == 0 {
		return nil, nil
	}

	shaped := shapeResults(scraped)
	if len(shaped) == 0 {
		return nil, nil
	}

	msgs := u.buildMessages(ctx, post, shaped)

	start := time.Now()
	reply, err := u.ai.Chat(ctx, u.model, msgs)
	metrics.ObserveAICall("synthesis", time.Since(start).Seconds(), err == nil)
	if err != nil {
		u.log.Warn().Err(err).Str("post_id", post.ID).Msg("synthesis call failed")
		return nil, nil
	}

	mem := u.validate(reply)
	if mem == nil {
		u.log.Warn().Str("post_id", post.ID).Msg("synthesis result rejected")
		return nil, nil
	}
	mem.PostID = post.ID
	return mem, nil
}

// buildMessages serializes the shaped results into the prompt, trimming
// trailing results while the prompt exceeds the token budget.
func (u *synthesisUC) buildMessages(ctx context.Context, post *model.Post, shaped []model.ScrapedResult) []adapter.Message {
	for len(shaped) > 1 {
		msgs := []adapter.Message{
			{Role: "system", Content: synthesisSystemPrompt},
			{Role: "user", Content: buildUserPrompt(post, shaped)},
		}
		n, err := u.ai.CountTokens(ctx, u.model, msgs)
		if err != nil || n <= u.maxTokens {
			return msgs
		}
		shaped = shaped[:len(shaped)-1]
	}
	return []adapter.Message{
		{Role: "system", Content: synthesisSystemPrompt},
		{Role: "user", Content: buildUserPrompt(post, shaped)},
	}
}

func buildUserPrompt(post *model.Post, shaped []model.ScrapedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Post title: %s\nGame: %s\nPost body:\n%s\n\nScraped results:\n",
		strings.TrimSpace(post.Title), strings.TrimSpace(post.GameTitle), strings.TrimSpace(post.Body))
	for i, r := range shaped {
		fmt.Fprintf(&b, "%d. [%s] %s\n   url: %s\n   snippet: %s\n", i+1, r.Query, r.Title, r.URL, r.Snippet)
	}
	return b.String()
}

// shapeResults drops entries missing url or title, sorts ascending by rank
// and caps the list for the prompt.
func shapeResults(scraped []model.ScrapedResult) []model.ScrapedResult {
	shaped := make([]model.ScrapedResult, 0, len(scraped))
	for _, r := range scraped {
		if r.URL == "" || r.Title == "" {
			continue
		}
		shaped = append(shaped, r)
	}
	sort.SliceStable(shaped, func(i, j int) bool { return shaped[i].Rank < shaped[j].Rank })
	if len(shaped) > maxSynthesisResults {
		shaped = shaped[:maxSynthesisResults]
	}
	return shaped
}

// rawMemory is the provisional, untrusted shape of the model's reply.
type rawMemory struct {
	Summary              string      `json:"summary"`
	Consensus            string      `json:"consensus"`
	PointsOfDisagreement []string    `json:"pointsOfDisagreement"`
	RumorsAndUnconfirmed []string    `json:"rumorsAndUnconfirmed"`
	NotableDetails       []string    `json:"notableDetails"`
	Sources              []rawSource `json:"sources"`
	GeneratedAtIso       string      `json:"generatedAtIso"`
}

type rawSource struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	ShortNote string `json:"shortNote"`
}

// validate runs regardless of model compliance: the reply is untrusted input.
// Returns nil when the document is unusable (the only hard requirement is a
// non-empty summary).
func (u *synthesisUC) validate(reply string) *model.WebMemory {
	raw := extractJSON(reply)
	if raw == "" {
		return nil
	}
	var rm rawMemory
	if err := json.Unmarshal([]byte(raw), &rm); err != nil {
		return nil
	}

	summary := u.clean(rm.Summary)
	if summary == "" {
		return nil
	}
	consensus := u.clean(rm.Consensus)
	if consensus == "" {
		consensus = summary
	}

	generatedAt := strings.TrimSpace(rm.GeneratedAtIso)
	if generatedAt == "" {
		generatedAt = u.now().UTC().Format(time.RFC3339)
	}

	mem := &model.WebMemory{
		Summary:              summary,
		Consensus:            consensus,
		PointsOfDisagreement: u.cleanList(rm.PointsOfDisagreement),
		RumorsAndUnconfirmed: u.cleanList(rm.RumorsAndUnconfirmed),
		NotableDetails:       u.cleanList(rm.NotableDetails),
		GeneratedAtIso:       generatedAt,
	}

	for _, s := range rm.Sources {
		src := model.SourceRef{
			URL:       strings.TrimSpace(s.URL),
			Title:     u.clean(s.Title),
			ShortNote: u.clean(s.ShortNote),
		}
		if src.URL == "" || src.Title == "" {
			continue
		}
		if src.ShortNote == "" {
			src.ShortNote = src.Title
		}
		mem.Sources = append(mem.Sources, src)
		if len(mem.Sources) == model.MaxMemorySources {
			break
		}
	}

	return mem
}

func (u *synthesisUC) clean(s string) string {
	return strings.TrimSpace(u.sanitize.Sanitize(s))
}

func (u *synthesisUC) cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := u.clean(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}
