package readability

import (
	"testing"
)

func metadataFor(t *testing.T, markup string) (title, byline, lang, site string) {
	t.Helper()
	d := parseDoc(t, markup)
	meta := resolveMetadata(d)
	return meta.Title, meta.Byline, meta.Language, meta.SiteName
}

func TestResolveTitle_PreferenceOrder(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			"og:title wins",
			`<html><head><meta property="og:title" content="OG Title"><title>Doc Title</title></head><body><h1>H1 Title</h1></body></html>`,
			"OG Title",
		},
		{
			"twitter fallback",
			`<html><head><meta name="twitter:title" content="TW Title"><title>Doc Title</title></head></html>`,
			"TW Title",
		},
		{
			"document title",
			`<html><head><title>Plain Document Title</title></head></html>`,
			"Plain Document Title",
		},
		{
			"h1 last resort",
			`<html><head></head><body><h1>Heading Title</h1></body></html>`,
			"Heading Title",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, _, _, _ := metadataFor(t, tt.markup)
			if title != tt.want {
				t.Errorf("Title = %q, want %q", title, tt.want)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Understanding Gopher Burrows | Example Site", "Understanding Gopher Burrows"},
		{"Understanding Gopher Burrows - Example Site", "Understanding Gopher Burrows"},
		{"Understanding Gopher Burrows » Example Site", "Understanding Gopher Burrows"},
		// Too few words before the separator: keep the other half.
		{"Home | Example Site News", "Example Site News"},
		{"No Separator Here", "No Separator Here"},
		{"  Extra   whitespace   collapses  ", "Extra whitespace collapses"},
		// Hyphenated words are not separators (no surrounding spaces).
		{"Well-Known Gopher Facts", "Well-Known Gopher Facts"},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveByline(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			"author meta",
			`<html><head><meta name="author" content="Pat Writer"></head></html>`,
			"Pat Writer",
		},
		{
			"article:author URL rejected, rel=author used",
			`<html><head><meta property="article:author" content="https://example.com/u/pat"></head>
			<body><a rel="author" href="/pat">Pat Writer</a></body></html>`,
			"Pat Writer",
		},
		{
			"byline class fallback",
			`<html><body><span class="byline">By Pat Writer</span></body></html>`,
			"By Pat Writer",
		},
		{
			"nothing found",
			`<html><body><p>No byline anywhere.</p></body></html>`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, byline, _, _ := metadataFor(t, tt.markup)
			if byline != tt.want {
				t.Errorf("Byline = %q, want %q", byline, tt.want)
			}
		})
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"html lang", `<html lang="fr"><head></head></html>`, "fr"},
		{"regional code reduced", `<html lang="en-US"><head></head></html>`, "en"},
		{"og:locale fallback", `<html><head><meta property="og:locale" content="de_DE"></head></html>`, "de"},
		{"no declaration", `<html><head></head></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, lang, _ := metadataFor(t, tt.markup)
			if lang != tt.want {
				t.Errorf("Language = %q, want %q", lang, tt.want)
			}
		})
	}
}

func TestResolvePublished(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string // YYYY-MM-DD, or "" for nil
	}{
		{
			"meta property",
			`<html><head><meta property="article:published_time" content="2023-11-20T08:30:00Z"></head></html>`,
			"2023-11-20",
		},
		{
			"time datetime attribute",
			`<html><body><time datetime="2022-07-04">July 4th</time></body></html>`,
			"2022-07-04",
		},
		{
			"time text content",
			`<html><body><time>January 2, 2021</time></body></html>`,
			"2021-01-02",
		},
		{
			"unparseable",
			`<html><body><time>sometime last week</time></body></html>`,
			"",
		},
		{
			"absent",
			`<html><body><p>No date.</p></body></html>`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseDoc(t, tt.markup)
			meta := resolveMetadata(d)
			if tt.want == "" {
				if meta.Published != nil {
					t.Errorf("Published = %v, want nil", meta.Published)
				}
				return
			}
			if meta.Published == nil {
				t.Fatal("Published = nil, want a date")
			}
			if got := meta.Published.Format("2006-01-02"); got != tt.want {
				t.Errorf("Published = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveMetadata_SiteNameFallsBackToHost(t *testing.T) {
	d, err := ParseDocument(`<html><head></head></html>`, mustParse(t, "https://news.example.org/a"))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	meta := resolveMetadata(d)
	if meta.SiteName != "news.example.org" {
		t.Errorf("SiteName = %q, want host fallback", meta.SiteName)
	}
}

func TestResolveMetadata_DoesNotMutateDocument(t *testing.T) {
	markup := `<html><head><title>T | S</title></head><body><p>Body text.</p></body></html>`
	d := parseDoc(t, markup)
	before, err := RenderNode(d.root())
	if err != nil {
		t.Fatalf("RenderNode() error = %v", err)
	}
	resolveMetadata(d)
	after, err := RenderNode(d.root())
	if err != nil {
		t.Fatalf("RenderNode() error = %v", err)
	}
	if before != after {
		t.Error("resolveMetadata mutated the document tree")
	}
}
