package scraper

import (
	"net/url"
	"strings"

	"gamenews-web-memory/internal/domain/model"
)

// NormalizeURL strips any fragment so that links differing only in `#...`
// collapse to one key.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		// Unparseable URLs still dedup on the text before the fragment.
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.Fragment = ""
	return u.String()
}

// DedupByURL collapses results sharing a normalized URL (duplicates may come
// from different queries), keeping the occurrence with the lowest rank.
// Ties at equal rank keep the first-seen occurrence. Single pass, O(n).
func DedupByURL(results []model.ScrapedResult) []model.ScrapedResult {
	if len(results) == 0 {
		return nil
	}

	best := make(map[string]model.ScrapedResult, len(results))
	order := make([]string, 0, len(results))

	for _, r := range results {
		if !r.Valid() {
			continue
		}
		key := NormalizeURL(r.URL)
		seen, ok := best[key]
		if !ok {
			best[key] = r
			order = append(order, key)
			continue
		}
		if r.Rank < seen.Rank {
			best[key] = r
		}
	}

	out := make([]model.ScrapedResult, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}
