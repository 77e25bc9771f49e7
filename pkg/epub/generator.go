// Package epub packages extracted articles into EPUB files: one book per
// article, or a single merged collection with a table of contents and a
// source appendix. It consumes fully normalized Article values and owns
// all on-disk serialization.
package epub

import (
	"crypto/md5"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	goepub "github.com/go-shiori/go-epub"
	"webtome/models"
	"webtome/pkg/readability"
)

// Config controls packaging. MergedName non-empty selects merged mode.
type Config struct {
	OutputDir  string
	MergedName string
	InlineTOC  bool
}

// Book records where one article ended up. Partial means the book was
// written but at least one of the article's images could not be embedded.
type Book struct {
	URL     string
	Path    string
	Partial bool
}

// Output reports what Generate produced. In merged mode every Book shares
// the same path.
type Output struct {
	Paths  []string
	Books  []Book
	Errors []error
}

// Generate writes books for the given articles. Per-article failures in
// individual mode are collected and do not stop the remaining books.
func Generate(articles []*models.Article, cfg Config, logger *slog.Logger) Output {
	var out Output
	if len(articles) == 0 {
		return out
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	// The epub builder reads file sources at Write time, so the staged
	// stylesheet has to outlive every book write.
	cssFile, cleanup, err := stageStylesheet()
	if err != nil {
		out.Errors = []error{err}
		return out
	}
	defer cleanup()

	if cfg.MergedName != "" {
		p, books, err := generateMerged(articles, cfg, cssFile, logger)
		if err != nil {
			out.Errors = []error{err}
			return out
		}
		out.Paths = []string{p}
		out.Books = books
		return out
	}

	for _, article := range articles {
		book, err := generateSingle(article, cfg, cssFile, logger)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Errorf("epub for %s: %w", article.URL, err))
			continue
		}
		out.Paths = append(out.Paths, book.Path)
		out.Books = append(out.Books, book)
	}
	return out
}

func generateMerged(articles []*models.Article, cfg Config, cssFile string, logger *slog.Logger) (string, []Book, error) {
	book, err := goepub.NewEpub(cfg.MergedName)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create epub: %w", err)
	}
	cssPath, err := addStylesheet(book, cssFile)
	if err != nil {
		return "", nil, err
	}
	if lang := firstLanguage(articles); lang != "" {
		book.SetLang(lang)
	}

	if cfg.InlineTOC {
		toc := buildInlineTOC(articles)
		if _, err := book.AddSection(toc, "Table of Contents", "toc.xhtml", cssPath); err != nil {
			return "", nil, fmt.Errorf("failed to add table of contents: %w", err)
		}
	}

	books := make([]Book, 0, len(articles))
	for i, article := range articles {
		body, lost, err := articleBody(book, article, logger)
		if err != nil {
			return "", nil, err
		}
		filename := fmt.Sprintf("article_%d.xhtml", i)
		if _, err := book.AddSection(body, displayTitle(article), filename, cssPath); err != nil {
			return "", nil, fmt.Errorf("failed to add section for %s: %w", article.URL, err)
		}
		books = append(books, Book{URL: article.URL, Partial: lost > 0})
	}

	appendix := buildAppendix(articles)
	if _, err := book.AddSection(appendix, "Article Sources", "appendix.xhtml", cssPath); err != nil {
		return "", nil, fmt.Errorf("failed to add appendix: %w", err)
	}

	outPath := filepath.Join(cfg.OutputDir, sanitizeFilename(cfg.MergedName)+".epub")
	if err := book.Write(outPath); err != nil {
		return "", nil, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	for i := range books {
		books[i].Path = outPath
	}
	logger.Info("Created merged epub", "path", outPath, "articles", len(articles))
	return outPath, books, nil
}

func generateSingle(article *models.Article, cfg Config, cssFile string, logger *slog.Logger) (Book, error) {
	title := displayTitle(article)
	book, err := goepub.NewEpub(title)
	if err != nil {
		return Book{}, fmt.Errorf("failed to create epub: %w", err)
	}
	if article.Byline != "" {
		book.SetAuthor(article.Byline)
	}
	if article.Excerpt != "" {
		book.SetDescription(article.Excerpt)
	}
	if article.Language != "" {
		book.SetLang(article.Language)
	}
	cssPath, err := addStylesheet(book, cssFile)
	if err != nil {
		return Book{}, err
	}

	body, lost, err := articleBody(book, article, logger)
	if err != nil {
		return Book{}, err
	}
	if _, err := book.AddSection(body, title, "index.xhtml", cssPath); err != nil {
		return Book{}, fmt.Errorf("failed to add section: %w", err)
	}

	appendix := buildAppendix([]*models.Article{article})
	if _, err := book.AddSection(appendix, "Article Source", "appendix.xhtml", cssPath); err != nil {
		return Book{}, fmt.Errorf("failed to add appendix: %w", err)
	}

	outPath := filepath.Join(cfg.OutputDir, sanitizeFilename(title)+".epub")
	if err := book.Write(outPath); err != nil {
		return Book{}, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logger.Info("Created epub", "path", outPath, "title", title)
	return Book{URL: article.URL, Path: outPath, Partial: lost > 0}, nil
}

// stageStylesheet writes the embedded stylesheet to a temp file the epub
// builder can read back at Write time. The returned cleanup removes the
// staging dir and must run only after every book has been written.
func stageStylesheet() (string, func(), error) {
	dir, err := os.MkdirTemp("", "webtome-epub-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to stage stylesheet: %w", err)
	}
	cssFile := filepath.Join(dir, "stylesheet.css")
	if err := os.WriteFile(cssFile, []byte(stylesheet), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("failed to stage stylesheet: %w", err)
	}
	return cssFile, func() { os.RemoveAll(dir) }, nil
}

func addStylesheet(book *goepub.Epub, cssFile string) (string, error) {
	cssPath, err := book.AddCSS(cssFile, "stylesheet.css")
	if err != nil {
		return "", fmt.Errorf("failed to add stylesheet: %w", err)
	}
	return cssPath, nil
}

// articleBody embeds the article's images as book resources, rewrites
// their sources to the internal paths, and renders the content subtree.
// The second return value counts images that could not be embedded.
func articleBody(book *goepub.Epub, article *models.Article, logger *slog.Logger) (string, int, error) {
	markup, err := readability.RenderNode(article.Content)
	if err != nil {
		return "", 0, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", 0, fmt.Errorf("failed to reparse article body: %w", err)
	}

	lost := 0
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		internal, err := book.AddImage(src, imageFilename(src))
		if err != nil {
			// A lost image degrades the book, it does not fail it.
			logger.Warn("Failed to embed image", "src", src, "error", err)
			s.Remove()
			lost++
			return
		}
		s.SetAttr("src", internal)
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", 0, fmt.Errorf("failed to render article body: %w", err)
	}
	return body, lost, nil
}

// imageFilename derives a stable internal filename from the image URL.
func imageFilename(src string) string {
	ext := ".png"
	if u, err := url.Parse(src); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 6 {
			ext = e
		}
	}
	return fmt.Sprintf("%x%s", md5.Sum([]byte(src)), ext)
}

func buildInlineTOC(articles []*models.Article) string {
	var b strings.Builder
	b.WriteString("<h1>Table of Contents</h1>\n<ol>\n")
	for i, article := range articles {
		fmt.Fprintf(&b, "  <li><a href=%q>%s</a></li>\n",
			fmt.Sprintf("article_%d.xhtml", i), html.EscapeString(displayTitle(article)))
	}
	b.WriteString("</ol>\n")
	return b.String()
}

// buildAppendix lists the source link of every article, the way readers
// expect to find where a clipped article came from.
func buildAppendix(articles []*models.Article) string {
	var b strings.Builder
	b.WriteString("<h2>Appendix</h2>\n<h3>Article sources</h3>\n<p>\n")
	for _, article := range articles {
		fmt.Fprintf(&b, "  <a href=%q>%s</a><br/>\n",
			article.URL, html.EscapeString(displayTitle(article)))
	}
	b.WriteString("</p>\n")
	return b.String()
}

func displayTitle(article *models.Article) string {
	if article.Title != "" {
		return article.Title
	}
	return article.URL
}

func firstLanguage(articles []*models.Article) string {
	for _, a := range articles {
		if a.Language != "" {
			return a.Language
		}
	}
	return ""
}

// sanitizeFilename strips path separators and characters that commonly
// break cross-platform filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", " ", "\\", " ", ":", " ", "*", "", "?", "",
		"\"", "", "<", "", ">", "", "|", "",
	)
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "" {
		cleaned = "article"
	}
	return cleaned
}
