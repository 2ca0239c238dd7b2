// Package discover locates and orders chapter links on a novel's start page.
package discover

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/calegray/novelbind/internal/novel"
	"github.com/calegray/novelbind/internal/rules"
)

// ErrNoChapters means no strategy produced a single chapter link. Fatal for
// the whole conversion, not retryable.
var ErrNoChapters = errors.New("discover: no chapters found")

var (
	reChapterHref = regexp.MustCompile(`(?i)(?:ch|chapter)[\s_-]*\d+`)
	reFirstInt    = regexp.MustCompile(`\d+`)
)

// Discover finds the chapter links on the start page and returns them as
// ordered chapter records. Strategy order: the site's selector chain, the
// default chain, then an aggressive anchor scan. The first strategy that
// matches at least one link wins; results are never merged across strategies.
func Discover(doc *goquery.Document, startURL *url.URL, rs rules.RuleSet) ([]*novel.Chapter, error) {
	links := firstMatch(doc, rs.ChapterSelectors)
	if links == nil {
		links = firstMatch(doc, rules.Default().ChapterSelectors)
	}
	if links == nil {
		links = aggressiveScan(doc)
	}
	if links == nil || links.Length() == 0 {
		return nil, ErrNoChapters
	}

	seen := make(map[string]bool)
	var out []*novel.Chapter

	links.Each(func(_ int, a *goquery.Selection) {
		href := linkHref(a)
		if href == "" {
			return
		}

		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := startURL.ResolveReference(u).String()
		if seen[abs] {
			return
		}
		seen[abs] = true

		title := strings.Join(strings.Fields(a.Text()), " ")
		if title == "" {
			title = fmt.Sprintf("Chapter %d", len(out)+1)
		}

		out = append(out, &novel.Chapter{
			Title:   title,
			URL:     abs,
			BaseURL: startURL.String(),
			Status:  novel.StatusPending,
			Include: true,
		})
	})

	if len(out) == 0 {
		return nil, ErrNoChapters
	}

	sortByEmbeddedNumber(out)
	for i, ch := range out {
		ch.Index = i
	}

	return out, nil
}

func firstMatch(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		found := doc.Find(sel).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return linkHref(s) != ""
		})
		if found.Length() > 0 {
			return found
		}
	}
	return nil
}

// aggressiveScan collects every anchor whose visible text or href carries a
// chapter-indicating token.
func aggressiveScan(doc *goquery.Document) *goquery.Selection {
	found := doc.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		text := strings.ToLower(a.Text())
		h := strings.ToLower(href)

		if strings.Contains(text, "chapter") || strings.Contains(text, "ch.") {
			return true
		}
		if strings.Contains(h, "chapter") || strings.Contains(h, "ch.") {
			return true
		}
		return reChapterHref.MatchString(h)
	})
	if found.Length() == 0 {
		return nil
	}
	return found
}

// linkHref returns the link target of a discovered element. Option elements
// (chapter dropdowns) carry it in value instead of href.
func linkHref(s *goquery.Selection) string {
	if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href
	}
	if s.Nodes[0].Data == "option" {
		if v, ok := s.Attr("value"); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// sortByEmbeddedNumber stable-sorts chapters comparing the first integer
// embedded in each title. Pairs where either title has no number keep their
// discovery order. Multi-part labels like "Volume 2 Chapter 1" compare by
// their first number only; known heuristic limitation.
func sortByEmbeddedNumber(chapters []*novel.Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		ni, oki := embeddedNumber(chapters[i].Title)
		nj, okj := embeddedNumber(chapters[j].Title)
		if !oki || !okj {
			return false
		}
		return ni < nj
	})
}

func embeddedNumber(title string) (int, bool) {
	m := reFirstInt.FindString(title)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
