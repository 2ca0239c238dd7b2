package epub

import (
	"fmt"
	"strings"

	"github.com/calegray/novelbind/internal/novel"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

const stylesheet = `body {
  font-family: serif;
  line-height: 1.5;
  margin: 0 5%;
}
h1 {
  font-size: 1.4em;
  text-align: center;
  margin: 1em 0;
}
p {
  text-indent: 1.2em;
  margin: 0 0 0.4em 0;
}
img {
  max-width: 100%;
}
`

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return xmlEscaper.Replace(s)
}

func buildOPF(meta novel.Metadata, chapters []*novel.Chapter, uid, modified string, cover *coverAsset) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<package xmlns="http://www.idpf.org/2007/opf" unique-identifier="BookId" version="2.0">` + "\n")

	b.WriteString(`  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">` + "\n")
	fmt.Fprintf(&b, "    <dc:identifier id=\"BookId\" opf:scheme=\"UUID\">%s</dc:identifier>\n", uid)
	fmt.Fprintf(&b, "    <dc:title>%s</dc:title>\n", escape(meta.Title))
	if meta.Author != "" {
		fmt.Fprintf(&b, "    <dc:creator opf:role=\"aut\">%s</dc:creator>\n", escape(meta.Author))
	}
	fmt.Fprintf(&b, "    <dc:language>%s</dc:language>\n", escape(meta.Language))
	fmt.Fprintf(&b, "    <dc:date opf:event=\"modification\">%s</dc:date>\n", modified)
	if meta.Publisher != "" {
		fmt.Fprintf(&b, "    <dc:publisher>%s</dc:publisher>\n", escape(meta.Publisher))
	}
	if meta.Description != "" {
		fmt.Fprintf(&b, "    <dc:description>%s</dc:description>\n", escape(meta.Description))
	}
	if meta.Subject != "" {
		fmt.Fprintf(&b, "    <dc:subject>%s</dc:subject>\n", escape(meta.Subject))
	}
	if cover != nil {
		b.WriteString(`    <meta name="cover" content="cover-image"/>` + "\n")
	}
	b.WriteString("  </metadata>\n")

	b.WriteString("  <manifest>\n")
	b.WriteString(`    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + "\n")
	b.WriteString(`    <item id="css" href="styles.css" media-type="text/css"/>` + "\n")
	if cover != nil {
		fmt.Fprintf(&b, "    <item id=\"cover-image\" href=\"%s\" media-type=\"%s\"/>\n", cover.name, cover.mediaType)
	}
	for i := range chapters {
		fmt.Fprintf(&b, "    <item id=\"chapter%04d\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", i+1, chapterPath(i))
	}
	b.WriteString("  </manifest>\n")

	b.WriteString(`  <spine toc="ncx">` + "\n")
	for i := range chapters {
		fmt.Fprintf(&b, "    <itemref idref=\"chapter%04d\"/>\n", i+1)
	}
	b.WriteString("  </spine>\n")

	b.WriteString("</package>\n")
	return b.String()
}

func buildNCX(meta novel.Metadata, chapters []*novel.Chapter, uid string) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE ncx PUBLIC "-//NISO//DTD ncx 2005-1//EN" "http://www.daisy.org/z3986/2005/ncx/">` + "\n")
	b.WriteString(`<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">` + "\n")
	b.WriteString("  <head>\n")
	fmt.Fprintf(&b, "    <meta name=\"dtb:uid\" content=\"%s\"/>\n", uid)
	b.WriteString(`    <meta name="dtb:depth" content="1"/>` + "\n")
	b.WriteString(`    <meta name="dtb:totalPageCount" content="0"/>` + "\n")
	b.WriteString(`    <meta name="dtb:maxPageNumber" content="0"/>` + "\n")
	b.WriteString("  </head>\n")
	fmt.Fprintf(&b, "  <docTitle><text>%s</text></docTitle>\n", escape(meta.Title))

	b.WriteString("  <navMap>\n")
	for i, ch := range chapters {
		fmt.Fprintf(&b, "    <navPoint id=\"navpoint-%d\" playOrder=\"%d\">\n", i+1, i+1)
		fmt.Fprintf(&b, "      <navLabel><text>%s</text></navLabel>\n", escape(ch.Title))
		fmt.Fprintf(&b, "      <content src=\"%s\"/>\n", chapterPath(i))
		b.WriteString("    </navPoint>\n")
	}
	b.WriteString("  </navMap>\n")

	b.WriteString("</ncx>\n")
	return b.String()
}

// buildChapterXHTML wraps the chapter's normalized fragment. The fragment is
// already XML-well-formed: the normalizer's serializer escapes text and
// attributes and self-closes void elements.
func buildChapterXHTML(ch *novel.Chapter) string {
	title := escape(ch.Title)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">` + "\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">` + "\n")
	b.WriteString("<head>\n")
	fmt.Fprintf(&b, "  <title>%s</title>\n", title)
	b.WriteString(`  <link rel="stylesheet" type="text/css" href="styles.css"/>` + "\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "  <h1>%s</h1>\n", title)
	b.WriteString(ch.Body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
