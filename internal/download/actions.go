// Package download implements the CLI's default command: acquire every
// URL concurrently, extract the article from each page, and package the
// results into EPUB files.
package download

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"
	"webtome/internal/common"
	"webtome/models"
	"webtome/pkg/caching"
	"webtome/pkg/epub"
	"webtome/pkg/fetcher"
	"webtome/pkg/lang"
	"webtome/pkg/library"
	"webtome/pkg/pipeline"
	"webtome/pkg/readability"
)

func DownloadAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()

	config, err := buildConfig(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	// Sanitize and validate all URLs before processing (fail fast)
	sanitizedURLs, invalidURLs := common.SanitizeAndValidateURLs(config.URLs)
	if len(invalidURLs) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalidURLs))
		for _, badURL := range invalidURLs {
			fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Note: URLs are auto-cleaned (whitespace trimmed, trailing punctuation removed, markdown links extracted)")
		fmt.Fprintln(os.Stderr, "      Spaces in URLs must be pre-encoded as %20.")
		os.Exit(1)
	}
	config.URLs = sanitizedURLs

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	f := fetcher.NewFetcher()
	if cacheDir := c.String("cache-dir"); cacheDir != "" {
		maxAge, err := time.ParseDuration(c.String("max-age"))
		if err != nil {
			logger.Error("invalid max-age duration", "error", err)
			os.Exit(2)
		}
		cache, err := caching.NewCache(cacheDir, maxAge)
		if err != nil {
			logger.Error("failed to initialize page cache", "error", err)
			os.Exit(2)
		}
		f = f.WithCache(cache)
	}

	// Open the run history unless disabled
	var db *library.DB
	var runID int64
	if !config.NoHistory {
		db, err = library.Open()
		if err != nil {
			logger.Error("failed to open download history", "error", err)
			os.Exit(2)
		}
		defer db.Close()
		if err := db.InitSchema(); err != nil {
			logger.Error("failed to initialize download history", "error", err)
			os.Exit(2)
		}
		runID, err = db.CreateRun(len(config.URLs), config.Merged(), config.MergedName)
		if err != nil {
			logger.Warn("Failed to record run, continuing without history", "error", err)
			db.Close()
			db = nil
		}
	}

	task := func(rawURL string) (*models.Article, error) {
		markup, finalURL, err := f.Fetch(rawURL)
		if err != nil {
			return nil, err
		}
		base, err := url.Parse(finalURL)
		if err != nil {
			return nil, fmt.Errorf("invalid final url %q: %w", finalURL, err)
		}
		article, err := readability.Extract(markup, base)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", rawURL, err)
		}
		if article.Language == "" {
			article.Language = lang.Detect(article.Text())
		}
		return article, nil
	}

	total := len(config.URLs)
	var done atomic.Int64
	observer := pipeline.ObserverFunc(func(u string, err error) {
		n := done.Add(1)
		if err != nil {
			logger.Error("Download failed", "url", u, "error", err, "completed", n, "total", total)
			return
		}
		logger.Info("Downloaded", "url", u, "completed", n, "total", total)
	})

	results, err := pipeline.Run(config.URLs, config.MaxConn, task, observer)
	if err != nil {
		logger.Error("failed to start downloads", "error", err)
		os.Exit(2)
	}

	var articles []*models.Article
	for _, r := range results {
		if !r.Failed() {
			articles = append(articles, r.Article)
		}
	}

	out := epub.Generate(articles, epub.Config{
		OutputDir:  config.OutputDir,
		MergedName: config.MergedName,
		InlineTOC:  config.InlineTOC,
	}, logger)
	for _, genErr := range out.Errors {
		logger.Error("Packaging failed", "error", genErr)
	}

	bookByURL := make(map[string]epub.Book, len(out.Books))
	for _, b := range out.Books {
		bookByURL[b.URL] = b
	}

	stats := Stats{Total: total}
	for _, r := range results {
		if r.Failed() {
			stats.Failed++
			continue
		}
		book, ok := bookByURL[r.Article.URL]
		switch {
		case !ok:
			stats.Failed++
		case book.Partial:
			stats.Partial++
		default:
			stats.Successful++
		}
	}

	if db != nil {
		recordRun(db, runID, results, bookByURL, stats, logger)
	}

	fmt.Println(shortSummary(stats))
	if !c.Bool("quiet") {
		for _, p := range out.Paths {
			fmt.Println(p)
		}
		for _, r := range results {
			if r.Failed() {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", r.URL, r.Err)
			}
		}
	}
	logger.Info("Run finished",
		"total", stats.Total,
		"successful", stats.Successful,
		"partial", stats.Partial,
		"failed", stats.Failed,
		"elapsed_seconds", time.Since(startTime).Seconds())

	if stats.Failed == stats.Total {
		os.Exit(2)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

// buildConfig assembles the run configuration: YAML config file first,
// then CLI flags and arguments on top.
func buildConfig(c *cli.Context) (*models.AppConfig, error) {
	config := &models.AppConfig{MaxConn: models.DefaultMaxConn}
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
		if config.MaxConn == 0 {
			config.MaxConn = models.DefaultMaxConn
		}
	}

	config.URLs = append(config.URLs, c.Args().Slice()...)
	if filePath := c.String("file"); filePath != "" {
		fileURLs, err := common.ReadURLFile(filePath)
		if err != nil {
			return nil, err
		}
		config.URLs = append(config.URLs, fileURLs...)
	}

	if c.IsSet("max-conn") {
		config.MaxConn = c.Int("max-conn")
	}
	if c.IsSet("output-dir") {
		config.OutputDir = c.String("output-dir")
	}
	if c.IsSet("merge") {
		config.MergedName = c.String("merge")
	}
	if c.Bool("inline-toc") {
		config.InlineTOC = true
	}
	if c.Bool("no-history") {
		config.NoHistory = true
	}

	if config.InlineTOC && !config.Merged() {
		return nil, fmt.Errorf("--inline-toc requires --merge")
	}
	return config, nil
}

// recordRun persists one row per slot plus the final tallies. History
// failures are logged and otherwise ignored; the books are already on disk.
func recordRun(db *library.DB, runID int64, results []pipeline.Result, bookByURL map[string]epub.Book, stats Stats, logger *slog.Logger) {
	for slot, r := range results {
		row := library.RunResult{RunID: runID, Slot: slot, URL: r.URL}
		if r.Failed() {
			row.Status = "failed"
			row.ErrorKind = errorKind(r.Err)
			row.ErrorMessage = r.Err.Error()
		} else if book, ok := bookByURL[r.Article.URL]; ok {
			row.Status = "success"
			if book.Partial {
				row.Status = "partial"
			}
			row.Title = r.Article.Title
			row.OutputPath = book.Path
		} else {
			row.Status = "failed"
			row.ErrorKind = "epub"
			row.ErrorMessage = "epub generation failed"
			row.Title = r.Article.Title
		}
		if err := db.InsertResult(row); err != nil {
			logger.Warn("Failed to record result", "url", r.URL, "error", err)
		}
	}
	if err := db.FinishRun(runID, stats.Successful+stats.Partial, stats.Failed); err != nil {
		logger.Warn("Failed to record run tallies", "error", err)
	}
}

// errorKind reduces a slot error to the short code stored in history.
func errorKind(err error) string {
	var fetchErr *fetcher.Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind.String()
	}
	if errors.Is(err, readability.ErrNoContent) {
		return "no_content"
	}
	return "extract"
}
