// Package models defines data structures shared between extraction,
// the acquisition pipeline, and output packaging.
package models

import (
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Metadata holds fields resolved from structured hints in the page head
// with heuristic fallbacks. Optional fields are empty strings / nil when
// no hint matched; that is not an error condition.
type Metadata struct {
	Title     string
	Byline    string
	SiteName  string
	Excerpt   string
	Language  string
	Published *time.Time
}

// Article is the result of a successful extraction. Content is the
// normalized subtree detached from the original document; it is only
// non-nil on success.
type Article struct {
	Metadata

	// URL is the final URL the page was served from (after redirects).
	URL string

	// Content is the root of the cleaned article body.
	Content *html.Node
}

// ImageURLs returns the src attribute of every image in the article body,
// in document order. Sources are already absolute after normalization.
func (a *Article) ImageURLs() []string {
	if a.Content == nil {
		return nil
	}
	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key == "src" && attr.Val != "" {
					urls = append(urls, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(a.Content)
	return urls
}

// Text returns the article body as plain text with single-space word
// separation, used for language detection.
func (a *Article) Text() string {
	if a.Content == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(a.Content)
	return strings.Join(parts, " ")
}
