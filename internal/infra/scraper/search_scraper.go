// Package scraper extracts ranked search-engine results for a set of queries
// through the shared headless-browser session. Queries run strictly
// sequentially with one open page at a time.
package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"gamenews-web-memory/internal/config"
	"gamenews-web-memory/internal/domain/model"
	"gamenews-web-memory/internal/domain/ports/adapter"
	"gamenews-web-memory/internal/infra/browser"
	"gamenews-web-memory/internal/infra/metrics"
)

// Selector sets for the supported engine layouts. The scraper tolerates all
// of them being absent and works with whatever the page shows.
var (
	// Result containers we wait for after navigation (first match wins).
	containerSelectors = []string{"#b_results", "#links"}

	// Per-result nodes, in priority order.
	resultNodeSelectors = []string{"li.b_algo", "div.result", "li.b_ans"}
)

var _ adapter.SearchScraper = (*SearchScraper)(nil)

type SearchScraper struct {
	sessions *browser.SessionManager
	cfg      config.PipelineConfig
	limiter  *rate.Limiter
	strip    *bluemonday.Policy
	log      *zerolog.Logger
}

func NewSearchScraper(sessions *browser.SessionManager, cfg config.PipelineConfig, logger *zerolog.Logger) *SearchScraper {
	l := logger.With().Str("component", "SearchScraper").Logger()
	return &SearchScraper{
		sessions: sessions,
		cfg:      cfg,
		// One query every two seconds keeps us under anti-bot thresholds.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		strip:   bluemonday.StrictPolicy(),
		log:     &l,
	}
}

// Scrape opens one page per query, extracts up to maxPerQuery ranked results
// each, and returns the cross-query deduplicated set. A failure scraping one
// query is logged and skipped; only a browser that cannot launch at all is an
// error.
func (s *SearchScraper) Scrape(ctx context.Context, queries []string, maxPerQuery int) ([]model.ScrapedResult, error) {
	if maxPerQuery <= 0 {
		maxPerQuery = s.cfg.MaxPerQuery
	}

	b, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var all []model.ScrapedResult
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return all, err
		}

		start := time.Now()
		results, err := s.scrapeQuery(ctx, b, q, maxPerQuery)
		metrics.ObserveScrapeQuery(time.Since(start).Seconds())
		if err != nil {
			metrics.IncScrapeQuery("error")
			s.log.Warn().Err(err).Str("query", q).Msg("query scrape failed, skipping")
			continue
		}
		metrics.IncScrapeQuery("ok")
		metrics.AddScrapeResults(len(results))
		all = append(all, results...)
	}

	return DedupByURL(all), nil
}

func (s *SearchScraper) scrapeQuery(ctx context.Context, b *rod.Browser, query string, max int) (results []model.ScrapedResult, err error) {
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			s.log.Debug().Err(cerr).Msg("page close failed")
		}
	}()

	target := s.cfg.SearchURL + url.QueryEscape(query)
	if err := page.Timeout(s.cfg.NavTimeout).Navigate(target); err != nil {
		return nil, err
	}
	if err := page.Timeout(s.cfg.NavTimeout).WaitLoad(); err != nil {
		return nil, err
	}

	// Wait for a known result container; tolerate absence and read whatever
	// the page shows.
	race := page.Timeout(s.cfg.WaitTimeout).Race()
	for _, sel := range containerSelectors {
		race = race.Element(sel)
	}
	if _, err := race.Do(); err != nil {
		s.log.Debug().Str("query", query).Msg("no result container appeared")
	}

	nodes := s.resultNodes(page)
	if len(nodes) > max {
		nodes = nodes[:max]
	}

	rank := 0
	for _, node := range nodes {
		html, err := node.HTML()
		if err != nil {
			continue
		}
		rank++
		r := parseResultNode(html)
		r.Query = query
		r.Rank = rank
		r.Snippet = strings.TrimSpace(s.strip.Sanitize(r.Snippet))
		if !r.Valid() {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// resultNodes returns result elements in document order, trying each node
// selector until one matches.
func (s *SearchScraper) resultNodes(page *rod.Page) []*rod.Element {
	for _, sel := range resultNodeSelectors {
		els, err := page.Timeout(s.cfg.WaitTimeout).Elements(sel)
		if err == nil && len(els) > 0 {
			return els
		}
	}
	return nil
}
