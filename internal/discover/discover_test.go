package discover

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/calegray/novelbind/internal/novel"
	"github.com/calegray/novelbind/internal/rules"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestDiscover_SiteSelectorWins(t *testing.T) {
	html := `<html><body>
		<ul class="toc">
			<a href="/c/1">Part One</a>
			<a href="/c/2">Part Two</a>
		</ul>
		<a href="/spam/chapter-99">Chapter 99 spam link</a>
	</body></html>`

	rs := rules.RuleSet{ChapterSelectors: []string{"ul.toc a"}}
	chapters, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/novel"), rs)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	// the winning strategy's links only; no merging with the aggressive scan
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].URL != "http://site.test/c/1" {
		t.Fatalf("unexpected first URL %q", chapters[0].URL)
	}
	if chapters[0].Title != "Part One" {
		t.Fatalf("unexpected first title %q", chapters[0].Title)
	}
}

func TestDiscover_AggressiveScanFallback(t *testing.T) {
	html := `<html><body>
		<a href="/about">About</a>
		<a href="/read/chapter-1">Chapter 1</a>
		<a href="/read/chapter-2">Chapter 2</a>
	</body></html>`

	chapters, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/"), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	for _, ch := range chapters {
		if strings.Contains(ch.URL, "about") {
			t.Fatalf("non-chapter link picked up: %q", ch.URL)
		}
	}
}

func TestDiscover_DeduplicatesResolvedURLs(t *testing.T) {
	html := `<html><body>
		<a href="/read/chapter-1">Chapter 1</a>
		<a href="http://site.test/read/chapter-1">Chapter 1 (again)</a>
	</body></html>`

	chapters, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/"), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(chapters) != 1 {
		t.Fatalf("expected duplicates collapsed to 1 chapter, got %d", len(chapters))
	}
}

func TestDiscover_NumericTitleSort(t *testing.T) {
	html := `<html><body>
		<a href="/c2">Chapter 2</a>
		<a href="/c1">Chapter 1</a>
		<a href="/c10">Chapter 10</a>
	</body></html>`

	chapters, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/"), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	got := []string{chapters[0].Title, chapters[1].Title, chapters[2].Title}
	want := []string{"Chapter 1", "Chapter 2", "Chapter 10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("wrong order: got %v, want %v", got, want)
		}
	}
	for i, ch := range chapters {
		if ch.Index != i {
			t.Fatalf("chapter %q has index %d, want %d", ch.Title, ch.Index, i)
		}
	}
}

func TestDiscover_NonNumericTitlesKeepDocumentOrder(t *testing.T) {
	html := `<html><body>
		<a href="/c/prologue">Prologue chapter</a>
		<a href="/c/epilogue">Epilogue chapter</a>
	</body></html>`

	chapters, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/"), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if chapters[0].Title != "Prologue chapter" || chapters[1].Title != "Epilogue chapter" {
		t.Fatalf("non-numeric titles were reordered: %q, %q", chapters[0].Title, chapters[1].Title)
	}
}

func TestDiscover_SynthesizesMissingTitles(t *testing.T) {
	html := `<html><body>
		<a href="/read/chapter-1"><img src="/thumb.jpg"/></a>
	</body></html>`

	chapters, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/"), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if chapters[0].Title != "Chapter 1" {
		t.Fatalf("expected synthesized title, got %q", chapters[0].Title)
	}
}

func TestDiscover_NoChapters(t *testing.T) {
	html := `<html><body><a href="/about">About</a><p>No story here.</p></body></html>`

	_, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/"), rules.RuleSet{})
	if !errors.Is(err, ErrNoChapters) {
		t.Fatalf("expected ErrNoChapters, got %v", err)
	}
}

func TestDiscover_ChapterDefaults(t *testing.T) {
	html := `<html><body><a href="/read/chapter-1">Chapter 1</a></body></html>`

	chapters, err := Discover(parseDoc(t, html), mustURL(t, "http://site.test/toc"), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	ch := chapters[0]
	if ch.Status != novel.StatusPending {
		t.Fatalf("new chapter status = %q, want pending", ch.Status)
	}
	if !ch.Include {
		t.Fatalf("new chapters must be included by default")
	}
	if ch.BaseURL != "http://site.test/toc" {
		t.Fatalf("base URL = %q", ch.BaseURL)
	}
}

func TestExtractMetadata(t *testing.T) {
	html := `<html><head>
		<title>fallback</title>
		<meta property="og:title" content="  The   Great  Novel "/>
		<meta name="description" content="A story."/>
		<meta property="og:image" content="/covers/1.jpg"/>
	</head><body>
		<a href="/author/jane" class="author">Jane Doe</a>
	</body></html>`

	meta := ExtractMetadata(parseDoc(t, html), mustURL(t, "http://site.test/"), rules.Default())

	if meta.Title != "The Great Novel" {
		t.Fatalf("title = %q", meta.Title)
	}
	if meta.Author != "Jane Doe" {
		t.Fatalf("author = %q", meta.Author)
	}
	if meta.Description != "A story." {
		t.Fatalf("description = %q", meta.Description)
	}
	if meta.CoverURL != "http://site.test/covers/1.jpg" {
		t.Fatalf("cover = %q", meta.CoverURL)
	}
}

func TestExtractMetadata_Empty(t *testing.T) {
	meta := ExtractMetadata(parseDoc(t, "<html><body></body></html>"), mustURL(t, "http://site.test/"), rules.RuleSet{})

	if meta.Title != "" {
		t.Fatalf("expected empty title, got %q", meta.Title)
	}

	meta.ApplyDefaults()
	if meta.Title != novel.PlaceholderTitle {
		t.Fatalf("placeholder not applied: %q", meta.Title)
	}
	if meta.Language != "en" {
		t.Fatalf("default language not applied: %q", meta.Language)
	}
}
