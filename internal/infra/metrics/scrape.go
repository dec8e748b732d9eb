package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(scrapeQueriesTotal, scrapeResultsTotal, scrapeQuerySeconds) }

var scrapeQueriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scrape_queries_total",
		Help: "Search queries scraped, labeled by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'error'
)

var scrapeResultsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "scrape_results_total",
		Help: "Raw search results extracted before deduplication.",
	},
)

var scrapeQuerySeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "scrape_query_duration_seconds",
		Help:    "Time spent scraping a single query, navigation included.",
		Buckets: prometheus.DefBuckets,
	},
)

func IncScrapeQuery(outcome string) {
	scrapeQueriesTotal.WithLabelValues(outcome).Inc()
}

func AddScrapeResults(n int) {
	scrapeResultsTotal.Add(float64(n))
}

func ObserveScrapeQuery(seconds float64) {
	scrapeQuerySeconds.Observe(seconds)
}
