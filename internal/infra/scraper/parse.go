package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gamenews-web-memory/internal/domain/model"
)

// Field selector fallback chains, in priority order.
var (
	titleSelectors   = []string{"h2 a", "a.result__a", "h3 a", "h2", "h3"}
	snippetSelectors = []string{".b_caption p", "a.result__snippet", ".result__snippet", "p"}
)

// parseResultNode reads title, url and snippet out of one result node's HTML
// using the fallback chains above. Query and Rank are filled by the caller.
func parseResultNode(html string) model.ScrapedResult {
	var r model.ScrapedResult

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return r
	}

	for _, sel := range titleSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		title := strings.TrimSpace(node.Text())
		if title == "" {
			continue
		}
		r.Title = title
		if href, ok := node.Attr("href"); ok {
			r.URL = strings.TrimSpace(href)
		}
		break
	}

	// A title node without an href: fall back to the first absolute link.
	if r.URL == "" || !isAbsolute(r.URL) {
		r.URL = ""
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)
			if isAbsolute(href) {
				r.URL = href
				return false
			}
			return true
		})
	}

	for _, sel := range snippetSelectors {
		snippet := strings.TrimSpace(doc.Find(sel).First().Text())
		if snippet != "" && snippet != r.Title {
			r.Snippet = snippet
			break
		}
	}

	return r
}

func isAbsolute(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
