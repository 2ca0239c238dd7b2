// Package extract locates and cleans the body text of a single chapter page.
// It tries the site's selector chain, then the generic chain, then a
// text-density heuristic over the page's container elements.
package extract

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/calegray/novelbind/internal/content"
	"github.com/calegray/novelbind/internal/novel"
	"github.com/calegray/novelbind/internal/rules"
)

var (
	// ErrContentNotFound means no selector and no heuristic picked an element.
	ErrContentNotFound = errors.New("extract: content not found")
	// ErrContentTooShort flags a low-confidence extraction, usually navigation
	// chrome picked up instead of the chapter body.
	ErrContentTooShort = errors.New("extract: content too short")
)

// Tuning constants carried over from the reference behavior. Their exact
// values affect extraction outcomes on real sites; override through the
// Extractor fields, do not re-tune here.
const (
	DefaultMinDensity = 0.5
	DefaultMinTextLen = 100
)

// candidateTags are the container elements the density heuristic considers.
const candidateTags = "article, div, section, main"

// skipPatterns disqualify a candidate whose class or id matches any entry.
var skipPatterns = []string{
	"header",
	"footer",
	"sidebar",
	"menu",
	"nav",
	"comment",
	"advertisement",
	"breadcrumb",
	"pagination",
	"social",
}

// Extractor finds and normalizes chapter bodies.
type Extractor struct {
	// MinDensity is the minimum trimmed-text-to-markup ratio a heuristic
	// candidate must exceed.
	MinDensity float64
	// MinTextLen is the minimum trimmed text length (in runes) of an
	// accepted extraction.
	MinTextLen int
}

// New returns an Extractor with the default thresholds.
func New() *Extractor {
	return &Extractor{
		MinDensity: DefaultMinDensity,
		MinTextLen: DefaultMinTextLen,
	}
}

// Extract selects the chapter body in doc, normalizes it against the
// chapter's URL and returns the cleaned fragment markup.
func (e *Extractor) Extract(doc *goquery.Document, ch *novel.Chapter, rs rules.RuleSet) (string, error) {
	sel := firstSelectorMatch(doc, rs.ContentSelectors)
	if sel == nil {
		sel = firstSelectorMatch(doc, rules.Default().ContentSelectors)
	}
	if sel == nil {
		sel = e.largestQualifyingBlock(doc)
	}
	if sel == nil {
		return "", ErrContentNotFound
	}

	base, err := url.Parse(ch.URL)
	if err != nil {
		base = nil
	}

	body, err := content.Normalize(sel, base)
	if err != nil {
		return "", err
	}

	if utf8.RuneCountInString(strings.TrimSpace(sel.Text())) < e.MinTextLen {
		return "", ErrContentTooShort
	}

	return body, nil
}

func firstSelectorMatch(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if found := doc.Find(s); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// largestQualifyingBlock scans every container element, rejects ones whose
// class/id matches a skip pattern or whose text density is at or below
// MinDensity, and keeps the candidate with the longest trimmed text. Ties
// resolve to the first in document order.
func (e *Extractor) largestQualifyingBlock(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0

	doc.Find(candidateTags).Each(func(_ int, s *goquery.Selection) {
		if skipCandidate(s) {
			return
		}

		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		markup, err := goquery.OuterHtml(s)
		if err != nil || len(markup) == 0 {
			return
		}

		density := float64(len(text)) / float64(len(markup))
		if density <= e.MinDensity {
			return
		}

		if len(text) > bestLen {
			best = s
			bestLen = len(text)
		}
	})

	return best
}

func skipCandidate(s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	key := strings.ToLower(class + " " + id)
	for _, pat := range skipPatterns {
		if strings.Contains(key, pat) {
			return true
		}
	}
	return false
}
