package model

import (
	"strings"
	"time"
)

// Post is the slice of a community post the pipeline cares about.
// The post CRUD itself lives outside this service; we only read posts
// to decide eligibility and to feed the query generator.
type Post struct {
	ID        string
	Title     string
	Body      string
	GameTitle string
	Category  string
	CreatedAt time.Time
}

// IsNews reports whether the post passes the pipeline eligibility filter.
// Category comparison is trimmed and case-folded.
func (p *Post) IsNews() bool {
	return strings.EqualFold(strings.TrimSpace(p.Category), "news")
}

// Empty reports whether the post carries no usable text at all.
func (p *Post) Empty() bool {
	return strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Body) == ""
}
