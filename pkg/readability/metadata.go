package readability

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"webtome/models"
)

// resolveMetadata reads title, byline, site name, excerpt, language, and
// published date from structured hints with heuristic fallbacks. It never
// mutates the tree; first non-empty match wins per field. The excerpt is
// finalized later against the normalized content when no description meta
// exists.
func resolveMetadata(d *Document) models.Metadata {
	metas := collectMetaTags(d)

	meta := models.Metadata{
		Title:    resolveTitle(d, metas),
		Byline:   resolveByline(d, metas),
		SiteName: firstMeta(metas, "og:site_name"),
		Excerpt:  firstMeta(metas, "description", "og:description", "twitter:description"),
		Language: resolveLanguage(d, metas),
	}
	if meta.SiteName == "" && d.base != nil {
		meta.SiteName = d.base.Host
	}
	meta.Published = resolvePublished(d, metas)
	return meta
}

// collectMetaTags indexes <meta> name/property attributes to content
// values, lowercased, first occurrence wins.
func collectMetaTags(d *Document) map[string]string {
	metas := make(map[string]string)
	d.doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		for _, keyAttr := range []string{"property", "name", "itemprop"} {
			key := strings.ToLower(strings.TrimSpace(s.AttrOr(keyAttr, "")))
			if key == "" {
				continue
			}
			if _, seen := metas[key]; !seen {
				metas[key] = content
			}
		}
	})
	return metas
}

func firstMeta(metas map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := metas[key]; v != "" {
			return v
		}
	}
	return ""
}

func resolveTitle(d *Document, metas map[string]string) string {
	if t := firstMeta(metas, "og:title", "twitter:title", "dc:title", "dcterm:title"); t != "" {
		return t
	}
	if t := cleanTitle(d.doc.Find("head title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(d.doc.Find("h1").First().Text())
}

// cleanTitle strips a trailing site-name segment from "Article | Site"
// style page titles. When the kept half is suspiciously short the other
// half is used instead.
func cleanTitle(title string) string {
	title = strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))
	loc := titleSeparatorRe.FindStringIndex(title)
	if loc == nil {
		return title
	}
	before := strings.TrimSpace(title[:loc[0]])
	after := strings.TrimSpace(title[loc[1]:])
	if len(strings.Fields(before)) >= 3 {
		return before
	}
	if after != "" {
		return after
	}
	return before
}

func resolveByline(d *Document, metas map[string]string) string {
	if b := firstMeta(metas, "author", "dc:creator", "dcterm:creator", "article:author"); b != "" {
		// article:author is sometimes a profile URL, not a name.
		if !strings.HasPrefix(b, "http://") && !strings.HasPrefix(b, "https://") {
			return b
		}
	}
	if b := strings.TrimSpace(d.doc.Find(`[rel="author"]`).First().Text()); b != "" && len(b) < 100 {
		return b
	}
	var byline string
	d.doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		attrs := s.AttrOr("class", "") + " " + s.AttrOr("id", "") + " " + s.AttrOr("itemprop", "")
		if !bylineRe.MatchString(attrs) {
			return true
		}
		text := strings.TrimSpace(s.Text())
		if text != "" && len(text) < 100 {
			byline = whitespaceRe.ReplaceAllString(text, " ")
			return false
		}
		return true
	})
	return byline
}

func resolveLanguage(d *Document, metas map[string]string) string {
	if lang := strings.TrimSpace(d.doc.Find("html").AttrOr("lang", "")); lang != "" {
		return normalizeLang(lang)
	}
	if locale := firstMeta(metas, "og:locale"); locale != "" {
		return normalizeLang(locale)
	}
	return ""
}

// normalizeLang reduces "en_US" / "en-US" style locales to the bare
// language code used for the book's dc:language field.
func normalizeLang(lang string) string {
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

func resolvePublished(d *Document, metas map[string]string) *time.Time {
	candidates := []string{
		firstMeta(metas, "article:published_time", "og:article:published_time",
			"datepublished", "date", "dc.date", "dc.date.issued", "parsely-pub-date"),
		d.doc.Find("time[datetime]").First().AttrOr("datetime", ""),
		strings.TrimSpace(d.doc.Find("time").First().Text()),
	}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return &t
		}
	}
	return nil
}
