package adapter

import (
	"context"

	"gamenews-web-memory/internal/domain/model"
)

// SearchScraper turns search queries into deduplicated result entries.
// A failure scraping one query must not abort the remaining queries; only a
// failure that prevents scraping altogether (e.g. the shared browser cannot
// launch) is returned as an error.
type SearchScraper interface {
	Scrape(ctx context.Context, queries []string, maxPerQuery int) ([]model.ScrapedResult, error)
}

// BrowserSessions is the slice of the browser session manager the pipeline
// needs: releasing the shared session after every run, successful or not.
type BrowserSessions interface {
	ReleaseAll()
}
