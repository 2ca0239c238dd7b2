package discover

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/calegray/novelbind/internal/novel"
	"github.com/calegray/novelbind/internal/rules"
)

// ExtractMetadata pulls title, author and cover reference from the start
// page. Missing values stay empty; defaults are applied by the session.
func ExtractMetadata(doc *goquery.Document, startURL *url.URL, rs rules.RuleSet) novel.Metadata {
	meta := novel.Metadata{
		Title:  firstText(doc, rs.TitleSelectors),
		Author: firstText(doc, rs.AuthorSelectors),
	}
	if meta.Title == "" {
		meta.Title = firstText(doc, rules.Default().TitleSelectors)
	}
	if meta.Author == "" {
		meta.Author = firstText(doc, rules.Default().AuthorSelectors)
	}

	if desc, ok := doc.Find("meta[property='og:description'], meta[name='description']").First().Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	}

	cover := rs.CoverSelector
	if cover == "" {
		cover = rules.Default().CoverSelector
	}
	if cover != "" {
		meta.CoverURL = coverURL(doc, startURL, cover)
	}

	return meta
}

// firstText returns the first selector's first non-empty value. Meta tags
// carry it in content, everything else in the element text.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if s.Nodes[0].Data == "meta" {
			if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
				return strings.Join(strings.Fields(v), " ")
			}
			continue
		}
		if txt := strings.Join(strings.Fields(s.Text()), " "); txt != "" {
			return txt
		}
	}
	return ""
}

func coverURL(doc *goquery.Document, startURL *url.URL, selector string) string {
	s := doc.Find(selector).First()
	if s.Length() == 0 {
		return ""
	}

	var raw string
	switch s.Nodes[0].Data {
	case "meta":
		raw, _ = s.Attr("content")
	default:
		raw, _ = s.Attr("src")
		if raw == "" {
			raw, _ = s.Attr("data-src")
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return startURL.ResolveReference(u).String()
}
