package model

// ScrapedResult is one normalized search-result entry. Results are ephemeral;
// they live only for the duration of a pipeline run.
type ScrapedResult struct {
	Query   string
	Title   string
	Snippet string
	URL     string
	Rank    int // 1-based position within its query's result page
}

// Valid reports whether the entry carries the minimum fields required to be
// useful downstream. Invalid entries are dropped before deduplication.
func (r ScrapedResult) Valid() bool {
	return r.URL != "" && r.Title != "" && r.Rank >= 1
}
