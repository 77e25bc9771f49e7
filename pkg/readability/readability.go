package readability

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"webtome/models"
)

// ErrNoContent is returned when no candidate reaches the minimum viable
// score, meaning the page has no extractable article body.
var ErrNoContent = errors.New("no article content found")

// Extract parses markup and returns the article it contains, using the
// default heuristic tuning. It is a pure function of its inputs: the same
// markup and base URL always produce the same Article.
func Extract(markup string, base *url.URL) (*models.Article, error) {
	return ExtractWithTuning(markup, base, DefaultTuning)
}

// ExtractWithTuning runs the full extraction sequence: candidate scoring
// and selection, normalization of the winning subtree, and metadata
// resolution, with the excerpt finalized against the normalized content.
func ExtractWithTuning(markup string, base *url.URL, tun Tuning) (*models.Article, error) {
	doc, err := ParseDocument(markup, base)
	if err != nil {
		return nil, err
	}

	meta := resolveMetadata(doc)

	candidate, err := scoreAndSelect(doc, tun)
	if err != nil {
		return nil, err
	}
	content := normalize(candidate, base, tun)

	if meta.Excerpt == "" {
		meta.Excerpt = firstParagraphText(content)
	}

	article := &models.Article{
		Metadata: meta,
		Content:  content,
	}
	if base != nil {
		article.URL = base.String()
	}
	return article, nil
}

// firstParagraphText returns the text of the first meaningful paragraph,
// used as the excerpt when the page carries no description meta.
func firstParagraphText(content *html.Node) string {
	var excerpt string
	walkElements(content, func(n *html.Node) bool {
		if excerpt != "" {
			return false
		}
		if n.Data == "p" {
			if text := nodeText(n); text != "" {
				excerpt = truncateExcerpt(text)
				return false
			}
		}
		return true
	})
	return excerpt
}

func truncateExcerpt(text string) string {
	const maxExcerpt = 250
	if len(text) <= maxExcerpt {
		return text
	}
	end := maxExcerpt
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	cut := text[:end]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
