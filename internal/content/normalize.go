// Package content turns a raw markup subtree into a clean fragment suitable
// for packaging: boilerplate removed, whitespace collapsed, loose text wrapped
// in paragraphs, image references resolved against the page URL.
package content

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// removeTags are dropped wholesale, subtree included.
const removeTags = "script, style, iframe, form, button, input"

// denyPatterns are matched as substrings against each element's class and id.
// Ads, social widgets, comment sections and chapter-navigation chrome.
var denyPatterns = []string{
	"adsbygoogle",
	"advert",
	"sponsor",
	"banner",
	"social",
	"share-buttons",
	"sharedaddy",
	"disqus",
	"comment",
	"chapter-nav",
	"chapternav",
	"nav-buttons",
	"prevnext",
	"next-prev",
	"breadcrumb",
	"related-posts",
	"recommend",
	"newsletter",
	"popup",
}

// blockSelector lists the elements that keep a div from being reclassified
// as a paragraph.
const blockSelector = "p, div, section, article, ul, ol, li, dl, table, blockquote, h1, h2, h3, h4, h5, h6, pre, hr, figure, header, footer, aside, nav"

var wsRe = regexp.MustCompile(`\s+`)

// lazySrcAttrs are checked when an img carries no usable src. Lazy-loading
// sites park the real URL in data attributes.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original"}

// Normalize cleans the first element of sel in place and returns its
// serialized inner markup. The steps run in a fixed order and the whole
// function is idempotent: normalizing already-clean markup is a no-op.
func Normalize(sel *goquery.Selection, base *url.URL) (string, error) {
	if sel == nil || sel.Length() == 0 {
		return "", nil
	}
	sel = sel.First()

	removeDenied(sel)
	stripComments(sel)
	collapseWhitespace(sel)
	flattenDivs(sel)
	wrapBareText(sel)
	pruneEmpty(sel)
	resolveImages(sel, base)

	return sel.Html()
}

func removeDenied(sel *goquery.Selection) {
	sel.Find(removeTags).Remove()

	sel.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		key := strings.ToLower(class + " " + id)
		for _, pat := range denyPatterns {
			if strings.Contains(key, pat) {
				s.Remove()
				return
			}
		}
	})
}

func stripComments(sel *goquery.Selection) {
	for _, n := range sel.Nodes {
		stripCommentNodes(n)
	}
}

func stripCommentNodes(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			stripCommentNodes(c)
		}
		c = next
	}
}

func collapseWhitespace(sel *goquery.Selection) {
	for _, n := range sel.Nodes {
		collapseTextNodes(n)
	}
}

func collapseTextNodes(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			c.Data = strings.TrimSpace(wsRe.ReplaceAllString(c.Data, " "))
			if c.Data == "" {
				n.RemoveChild(c)
			}
		} else {
			collapseTextNodes(c)
		}
		c = next
	}
}

// flattenDivs reclassifies every div-equivalent with no block-level or image
// descendant as a paragraph. Reverse document order so nested divs are
// handled innermost-first.
func flattenDivs(sel *goquery.Selection) {
	divs := sel.Find("div, section")
	for i := divs.Length() - 1; i >= 0; i-- {
		s := divs.Eq(i)
		if s.Find(blockSelector).Length() > 0 || s.Find("img").Length() > 0 {
			continue
		}
		n := s.Nodes[0]
		n.Data = "p"
		n.DataAtom = atom.P
	}
}

func wrapBareText(sel *goquery.Selection) {
	for _, root := range sel.Nodes {
		for c := root.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
				p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
				root.InsertBefore(p, c)
				root.RemoveChild(c)
				p.AppendChild(c)
			}
			c = next
		}
	}
}

// pruneEmpty drops elements left with no text and no image descendant.
// Void formatting elements are kept.
func pruneEmpty(sel *goquery.Selection) {
	all := sel.Find("*")
	for i := all.Length() - 1; i >= 0; i-- {
		s := all.Eq(i)
		switch s.Nodes[0].Data {
		case "img", "br", "hr":
			continue
		}
		if strings.TrimSpace(s.Text()) == "" && s.Find("img").Length() == 0 {
			s.Remove()
		}
	}
}

func resolveImages(sel *goquery.Selection, base *url.URL) {
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			for _, attr := range lazySrcAttrs {
				if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
					src = strings.TrimSpace(v)
					break
				}
			}
		}
		if src == "" {
			img.Remove()
			return
		}

		u, err := url.Parse(src)
		if err != nil {
			img.Remove()
			return
		}
		if !u.IsAbs() {
			if base == nil {
				img.Remove()
				return
			}
			u = base.ResolveReference(u)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			img.Remove()
			return
		}

		img.SetAttr("src", u.String())
		for _, attr := range lazySrcAttrs {
			img.RemoveAttr(attr)
		}
		img.RemoveAttr("srcset")
	})
}
