package model

import "time"

// MaxMemorySources caps how many source entries a web memory may carry.
const MaxMemorySources = 15

// DefaultMemoryTTL is the default age after which a web memory expires.
const DefaultMemoryTTL = 30 * 24 * time.Hour

// SourceRef is one cited source inside a web memory.
type SourceRef struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	ShortNote string `json:"shortNote"`
}

// WebMemory is the structured, sanitized summary document synthesized from
// scraped web content for a single post. Its existence doubles as the
// idempotency guard: once a post has a memory, no job may overwrite it.
type WebMemory struct {
	PostID               string
	Summary              string
	Consensus            string
	PointsOfDisagreement []string
	RumorsAndUnconfirmed []string
	NotableDetails       []string
	Sources              []SourceRef
	GeneratedAtIso       string

	// Audit counts from the run that produced this document.
	QueryCount  int
	ResultCount int

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}
