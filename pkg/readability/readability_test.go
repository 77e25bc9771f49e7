package readability

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"
)

const articlePage = `<!DOCTYPE html>
<html lang="en">
<head>
	<title>Gopher Burrow Design | Example Site</title>
	<meta property="og:site_name" content="Example Site">
	<meta name="author" content="Pat Writer">
	<meta property="article:published_time" content="2024-03-05T10:00:00Z">
</head>
<body>
	<nav><a href="/">Home</a> <a href="/archive">Archive</a> <a href="/about">About</a></nav>
	<div class="sidebar">
		<ul>
			<li><a href="/related/1">Ten related stories you must read today</a></li>
			<li><a href="/related/2">Another story from the archive collection</a></li>
			<li><a href="/related/3">A third story with a very long headline</a></li>
		</ul>
	</div>
	<div id="content">
		<h1>Gopher Burrow Design</h1>
		<p>Gophers dig elaborate burrow systems, with separate chambers for food storage,
		nesting, and waste. A single burrow network can cover hundreds of square meters,
		and the resident maintains it daily throughout the year.</p>
		<p>The entrance mounds are fan shaped, which distinguishes them from molehills,
		and the main tunnel usually runs parallel to the surface at a depth of around
		thirty centimeters, connecting every chamber to several escape routes.</p>
		<p>Researchers mapping these systems found that tunnel layouts are far from
		random: chamber placement follows soil moisture gradients, and the deepest
		nesting chambers sit below the frost line in colder regions.</p>
		<img src="/images/burrow-diagram.png" alt="Burrow diagram">
	</div>
	<footer><p>Copyright, all rights reserved, contact us for licensing.</p></footer>
	<script>console.log("tracking")</script>
</body>
</html>`

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}

func TestExtract_ArticleBodyWinsOverChrome(t *testing.T) {
	base := mustParse(t, "https://example.com/posts/gophers")
	article, err := Extract(articlePage, base)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	rendered, err := RenderNode(article.Content)
	if err != nil {
		t.Fatalf("RenderNode() error = %v", err)
	}

	for _, want := range []string{"elaborate burrow systems", "fan shaped", "soil moisture gradients"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("content missing %q", want)
		}
	}
	for _, reject := range []string{"related stories", "Archive", "console.log", "rights reserved"} {
		if strings.Contains(rendered, reject) {
			t.Errorf("content should not contain %q", reject)
		}
	}
}

func TestExtract_Metadata(t *testing.T) {
	base := mustParse(t, "https://example.com/posts/gophers")
	article, err := Extract(articlePage, base)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if article.Title != "Gopher Burrow Design" {
		t.Errorf("Title = %q, want %q", article.Title, "Gopher Burrow Design")
	}
	if article.Byline != "Pat Writer" {
		t.Errorf("Byline = %q, want %q", article.Byline, "Pat Writer")
	}
	if article.SiteName != "Example Site" {
		t.Errorf("SiteName = %q, want %q", article.SiteName, "Example Site")
	}
	if article.Language != "en" {
		t.Errorf("Language = %q, want %q", article.Language, "en")
	}
	if article.Published == nil {
		t.Fatal("Published = nil, want parsed date")
	}
	if got := article.Published.UTC().Format("2006-01-02"); got != "2024-03-05" {
		t.Errorf("Published = %s, want 2024-03-05", got)
	}
	if article.URL != "https://example.com/posts/gophers" {
		t.Errorf("URL = %q", article.URL)
	}
}

func TestExtract_ExcerptFallsBackToFirstParagraph(t *testing.T) {
	article, err := Extract(articlePage, mustParse(t, "https://example.com/posts/gophers"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.HasPrefix(article.Excerpt, "Gophers dig elaborate burrow systems") {
		t.Errorf("Excerpt = %q, want first paragraph text", article.Excerpt)
	}
}

func TestExtract_AbsolutizesImageSources(t *testing.T) {
	article, err := Extract(articlePage, mustParse(t, "https://example.com/posts/gophers"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	images := article.ImageURLs()
	if len(images) != 1 {
		t.Fatalf("ImageURLs() = %v, want one image", images)
	}
	if images[0] != "https://example.com/images/burrow-diagram.png" {
		t.Errorf("image src = %q, want absolute URL", images[0])
	}
}

func TestExtract_Deterministic(t *testing.T) {
	base := mustParse(t, "https://example.com/posts/gophers")
	var renders []string
	for i := 0; i < 3; i++ {
		article, err := Extract(articlePage, base)
		if err != nil {
			t.Fatalf("Extract() run %d error = %v", i, err)
		}
		rendered, err := RenderNode(article.Content)
		if err != nil {
			t.Fatalf("RenderNode() run %d error = %v", i, err)
		}
		renders = append(renders, rendered)
	}
	if renders[0] != renders[1] || renders[1] != renders[2] {
		t.Error("repeated extractions produced different output")
	}
}

func TestExtract_NoContent(t *testing.T) {
	pages := map[string]string{
		"empty":    `<html><body></body></html>`,
		"nav only": `<html><body><nav><a href="/">Home</a><a href="/b">B</a></nav></body></html>`,
		"short":    `<html><body><div><p>Too short.</p></div></body></html>`,
	}
	for name, page := range pages {
		article, err := Extract(page, nil)
		if err == nil {
			t.Errorf("%s: Extract() = %+v, want ErrNoContent", name, article.Title)
			continue
		}
		if err != ErrNoContent {
			t.Errorf("%s: Extract() error = %v, want ErrNoContent", name, err)
		}
	}
}

func TestExtract_AbsorbsIntroSibling(t *testing.T) {
	page := `<html><body>
	<p>This intro paragraph sits outside the main container. It still belongs
	to the article and should travel with it into the extracted body.</p>
	<div class="article-body">
		<p>Burrow entrances are sealed with soil plugs during the day, which keeps
		predators out and stabilizes the temperature, humidity, and airflow inside
		the deeper chambers where the animals actually live.</p>
		<p>Seasonal remodeling is common: new chambers appear after the harvest, and
		flooded sections are abandoned, backfilled, and rerouted within days.</p>
	</div>
	<div class="sidebar"><a href="/x">More stories</a><a href="/y">Even more</a></div>
	</body></html>`

	article, err := Extract(page, mustParse(t, "https://example.com/a"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	rendered, err := RenderNode(article.Content)
	if err != nil {
		t.Fatalf("RenderNode() error = %v", err)
	}
	if !strings.Contains(rendered, "intro paragraph sits outside") {
		t.Error("intro sibling paragraph was not absorbed")
	}
	if !strings.Contains(rendered, "sealed with soil plugs") {
		t.Error("main container content missing")
	}
	if strings.Contains(rendered, "More stories") {
		t.Error("link-only sibling should not be absorbed")
	}
}

func TestExtract_NilBaseKeepsAbsoluteImagesOnly(t *testing.T) {
	page := `<html><body><div>
	<p>Without a base URL the extractor cannot resolve relative references, so
	relative images are dropped while absolute ones survive, and the text of the
	article itself is unaffected by either outcome, staying fully intact.</p>
	<p>A second paragraph keeps the candidate container comfortably above the
	minimum score threshold, with commas, clauses, and enough length to count.</p>
	<img src="/relative.png">
	<img src="https://cdn.example.com/absolute.png">
	</div></body></html>`

	article, err := Extract(page, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	images := article.ImageURLs()
	if len(images) != 1 || images[0] != "https://cdn.example.com/absolute.png" {
		t.Errorf("ImageURLs() = %v, want only the absolute image", images)
	}
}

func TestTruncateExcerpt(t *testing.T) {
	short := "Fits as is."
	if got := truncateExcerpt(short); got != short {
		t.Errorf("truncateExcerpt(%q) = %q, want unchanged", short, got)
	}

	// No spaces and the 250-byte mark lands inside a two-byte rune. The
	// cut must back up to a rune boundary so the excerpt stays valid UTF-8.
	unbroken := "a" + strings.Repeat("é", 200)
	got := truncateExcerpt(unbroken)
	if !utf8.ValidString(got) {
		t.Errorf("truncateExcerpt() produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncateExcerpt() = %q, want ellipsis suffix", got)
	}

	spaced := strings.Repeat("une phrase posée ", 30)
	got = truncateExcerpt(spaced)
	if !utf8.ValidString(got) {
		t.Errorf("truncateExcerpt() produced invalid UTF-8: %q", got)
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "…"), " ") {
		t.Errorf("truncateExcerpt() = %q, want cut at the last word boundary", got)
	}
}
