package content

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func normalizeFragment(t *testing.T, fragment, base string) string {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="root">` + fragment + `</div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var baseURL *url.URL
	if base != "" {
		baseURL, err = url.Parse(base)
		if err != nil {
			t.Fatalf("base: %v", err)
		}
	}

	out, err := Normalize(doc.Find("#root"), baseURL)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return out
}

func TestNormalize_RemovesDeniedTags(t *testing.T) {
	out := normalizeFragment(t,
		`<p>keep me here</p><script>alert(1)</script><style>p{}</style><iframe src="x"></iframe><form><input/><button>go</button></form>`,
		"")

	if !strings.Contains(out, "keep me here") {
		t.Fatalf("content lost: %q", out)
	}
	for _, tag := range []string{"<script", "<style", "<iframe", "<form", "<input", "<button"} {
		if strings.Contains(out, tag) {
			t.Fatalf("%s survived normalization: %q", tag, out)
		}
	}
}

func TestNormalize_RemovesDeniedClassesAndComments(t *testing.T) {
	out := normalizeFragment(t,
		`<p>the story text</p><div class="adsbygoogle">buy stuff</div><div id="disqus_thread">talk</div><ul class="chapter-nav"><li>next</li></ul><!-- tracking comment -->`,
		"")

	if !strings.Contains(out, "the story text") {
		t.Fatalf("content lost: %q", out)
	}
	for _, junk := range []string{"buy stuff", "talk", "next", "tracking comment"} {
		if strings.Contains(out, junk) {
			t.Fatalf("boilerplate %q survived: %q", junk, out)
		}
	}
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	out := normalizeFragment(t, "<p>  hello \n\t  world  </p>", "")

	if !strings.Contains(out, ">hello world<") {
		t.Fatalf("whitespace not collapsed: %q", out)
	}
}

func TestNormalize_ReclassifiesLeafDivs(t *testing.T) {
	out := normalizeFragment(t, `<div>just some inline <em>text</em></div>`, "")

	if strings.Contains(out, "<div") {
		t.Fatalf("leaf div not reclassified: %q", out)
	}
	if !strings.Contains(out, "<p>") || !strings.Contains(out, "<em>") {
		t.Fatalf("expected a paragraph with inline content: %q", out)
	}
}

func TestNormalize_KeepsDivsWithBlockDescendants(t *testing.T) {
	out := normalizeFragment(t, `<div><p>inner paragraph</p></div>`, "")

	if !strings.Contains(out, "<div>") {
		t.Fatalf("div with block descendant must stay a div: %q", out)
	}
}

func TestNormalize_WrapsBareTopLevelText(t *testing.T) {
	out := normalizeFragment(t, `loose text run<p>a real paragraph</p>`, "")

	if !strings.Contains(out, "<p>loose text run</p>") {
		t.Fatalf("bare text not wrapped: %q", out)
	}
}

func TestNormalize_PrunesEmptyElements(t *testing.T) {
	out := normalizeFragment(t, `<p>real content</p><p>   </p><span></span><div><b></b></div>`, "")

	if strings.Contains(out, "<span") || strings.Contains(out, "<b>") {
		t.Fatalf("empty elements survived: %q", out)
	}
	if strings.Count(out, "<p>") != 1 {
		t.Fatalf("expected exactly one paragraph: %q", out)
	}
}

func TestNormalize_KeepsImageOnlyElements(t *testing.T) {
	out := normalizeFragment(t, `<div><img src="http://site.test/a.jpg"/></div>`, "")

	if !strings.Contains(out, "<img") {
		t.Fatalf("image-only element was pruned: %q", out)
	}
}

func TestNormalize_ResolvesImageSources(t *testing.T) {
	out := normalizeFragment(t, `<p>text</p><img src="../img/pic.jpg"/>`, "http://site.test/novel/ch1/")

	if !strings.Contains(out, `src="http://site.test/novel/img/pic.jpg"`) {
		t.Fatalf("relative src not resolved: %q", out)
	}
}

func TestNormalize_DropsUnresolvableImages(t *testing.T) {
	out := normalizeFragment(t, `<p>text</p><img alt="no source"/><img src="../img/pic.jpg"/>`, "")

	// no base URL: relative sources cannot resolve, both images go
	if strings.Contains(out, "<img") {
		t.Fatalf("dangling image survived: %q", out)
	}
	if !strings.Contains(out, "text") {
		t.Fatalf("content lost: %q", out)
	}
}

func TestNormalize_UsesLazySrcAttributes(t *testing.T) {
	out := normalizeFragment(t, `<img data-src="/lazy/pic.png"/>`, "http://site.test/")

	if !strings.Contains(out, `src="http://site.test/lazy/pic.png"`) {
		t.Fatalf("lazy src not promoted: %q", out)
	}
	if strings.Contains(out, "data-src") {
		t.Fatalf("lazy attribute should be stripped: %q", out)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	messy := `<div>  leaf   div </div>bare text<p>para  with   spaces</p><script>x</script><img src="/p.jpg"/><span></span>`

	first := normalizeFragment(t, messy, "http://site.test/dir/")
	second := normalizeFragment(t, first, "http://site.test/dir/")

	if first != second {
		t.Fatalf("normalizer is not idempotent:\nfirst:  %q\nsecond: %q", first, second)
	}
}
