package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/calegray/novelbind/internal/novel"
	"github.com/calegray/novelbind/internal/rules"
)

func parsePage(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func testChapter() *novel.Chapter {
	return &novel.Chapter{Title: "Chapter 1", URL: "http://site.test/read/chapter-1"}
}

// paddedBlock builds markup whose text is long but whose density is far below
// the threshold, by burying the text in attribute-heavy spans.
func paddedBlock(units int) string {
	unit := `<span class="` + strings.Repeat("x", 40) + `">abcde fghi</span>`
	return strings.Repeat(unit, units)
}

func TestExtract_SiteSelectorWins(t *testing.T) {
	story := strings.Repeat("once upon a time ", 20)
	doc := parsePage(t,
		`<div class="sidebar">`+strings.Repeat("link soup ", 40)+`</div>`+
			`<div class="story-body">`+story+`</div>`)

	rs := rules.RuleSet{ContentSelectors: []string{"div.story-body"}}
	body, err := New().Extract(doc, testChapter(), rs)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !strings.Contains(body, "once upon a time") {
		t.Fatalf("story text missing from body: %q", body)
	}
	if strings.Contains(body, "link soup") {
		t.Fatalf("selector extraction leaked sibling content: %q", body)
	}
}

func TestExtract_DensityBeatsLength(t *testing.T) {
	// the promo block has more text overall but a far worse
	// text-to-markup ratio, so the heuristic must pass it over
	story := strings.Repeat("dense story text ", 20)
	doc := parsePage(t,
		`<div class="promo">`+paddedBlock(40)+`</div>`+
			`<div class="story">`+story+`</div>`)

	body, err := New().Extract(doc, testChapter(), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !strings.Contains(body, "dense story text") {
		t.Fatalf("dense candidate not chosen: %q", body)
	}
	if strings.Contains(body, "abcde") {
		t.Fatalf("low-density candidate leaked into body: %q", body)
	}
}

func TestExtract_SkipPatternsDisqualify(t *testing.T) {
	longer := strings.Repeat("sidebar filler text ", 30)
	story := strings.Repeat("actual story text ", 20)
	doc := parsePage(t,
		`<div class="sidebar">`+longer+`</div>`+
			`<div class="story">`+story+`</div>`)

	body, err := New().Extract(doc, testChapter(), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if strings.Contains(body, "sidebar filler") {
		t.Fatalf("skip-listed candidate won: %q", body)
	}
	if !strings.Contains(body, "actual story text") {
		t.Fatalf("story candidate not chosen: %q", body)
	}
}

func TestExtract_TieGoesToFirstCandidate(t *testing.T) {
	first := strings.Repeat("first block ", 25)
	later := strings.Repeat("later block ", 25)
	doc := parsePage(t,
		`<div class="alpha">`+first+`</div>`+
			`<div class="omega">`+later+`</div>`)

	body, err := New().Extract(doc, testChapter(), rules.RuleSet{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !strings.Contains(body, "first block") {
		t.Fatalf("tie did not resolve to the first candidate: %q", body)
	}
}

func TestExtract_ContentNotFound(t *testing.T) {
	doc := parsePage(t, `<p>no container elements at all</p>`)

	_, err := New().Extract(doc, testChapter(), rules.RuleSet{})
	if !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestExtract_AllCandidatesBelowDensity(t *testing.T) {
	doc := parsePage(t, `<div class="stuff">`+paddedBlock(20)+`</div>`)

	_, err := New().Extract(doc, testChapter(), rules.RuleSet{})
	if !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestExtract_MinTextLenBoundary(t *testing.T) {
	rs := rules.RuleSet{ContentSelectors: []string{"#c"}}

	doc := parsePage(t, `<div id="c">`+strings.Repeat("a", 100)+`</div>`)
	if _, err := New().Extract(doc, testChapter(), rs); err != nil {
		t.Fatalf("100 runes must pass: %v", err)
	}

	doc = parsePage(t, `<div id="c">`+strings.Repeat("a", 99)+`</div>`)
	if _, err := New().Extract(doc, testChapter(), rs); !errors.Is(err, ErrContentTooShort) {
		t.Fatalf("99 runes must fail short, got %v", err)
	}
}

func TestExtract_NormalizesSelectedContent(t *testing.T) {
	story := strings.Repeat("a fine paragraph of story ", 10)
	doc := parsePage(t,
		`<div id="c"><p>`+story+`</p><script>track()</script><div class="adsbygoogle">ads</div></div>`)

	rs := rules.RuleSet{ContentSelectors: []string{"#c"}}
	body, err := New().Extract(doc, testChapter(), rs)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if strings.Contains(body, "track()") || strings.Contains(body, "ads") {
		t.Fatalf("boilerplate survived extraction: %q", body)
	}
	if !strings.Contains(body, "a fine paragraph") {
		t.Fatalf("story lost: %q", body)
	}
}
