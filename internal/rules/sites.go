package rules

// builtinSites is the static per-site table. Keys are normalized hostnames
// (lowercase, no leading www).
var builtinSites = map[string]RuleSet{
	"royalroad.com": {
		TitleSelectors:   []string{"div.fic-title h1", "h1[property='name']"},
		AuthorSelectors:  []string{"div.fic-title a[href*='/profile/']", "span[property='name']"},
		ChapterSelectors: []string{"table#chapters tbody a", "table#chapters a"},
		ContentSelectors: []string{"div.chapter-inner.chapter-content", "div.chapter-content"},
		CoverSelector:    "img.thumbnail[src]",
	},
	"scribblehub.com": {
		TitleSelectors:   []string{"div.fic_title", "h1.fic_title"},
		AuthorSelectors:  []string{"span.auth_name_fic", "div.auth_name_fic"},
		ChapterSelectors: []string{"ol.toc_ol a.toc_a", "ol.toc_ol a"},
		ContentSelectors: []string{"div#chp_raw", "div.chp_raw"},
		CoverSelector:    "div.fic_image img",
	},
	"novelbin.com": {
		TitleSelectors:   []string{"h3.title", "a.novel-title"},
		AuthorSelectors:  []string{"ul.info-meta a[href*='/a/']", ".info a[href*='author']"},
		ChapterSelectors: []string{"ul.list-chapter a", "select.chapter_jump option"},
		ContentSelectors: []string{"div#chr-content", "div.chr-c"},
		CoverSelector:    "div.book img",
	},
	"freewebnovel.com": {
		TitleSelectors:   []string{"h1.tit", "div.m-desc h1"},
		AuthorSelectors:  []string{"div.right a[href*='/author/']", "span.s1 a"},
		ChapterSelectors: []string{"ul#idData a", "div.m-newest2 a"},
		ContentSelectors: []string{"div#article", "div.txt"},
		CoverSelector:    "div.pic img",
	},
	"wuxiaworld.site": {
		TitleSelectors:   []string{"div.post-title h1", "ol.breadcrumb li:last-child"},
		AuthorSelectors:  []string{"div.author-content a"},
		ChapterSelectors: []string{"li.wp-manga-chapter a", "ul.main.version-chap a"},
		ContentSelectors: []string{"div.reading-content div.text-left", "div.reading-content"},
		CoverSelector:    "div.summary_image img",
	},
	"fanfiction.net": {
		TitleSelectors:   []string{"div#profile_top b.xcontrast_txt"},
		AuthorSelectors:  []string{"div#profile_top a.xcontrast_txt[href*='/u/']"},
		ChapterSelectors: []string{"select#chap_select option"},
		ContentSelectors: []string{"div#storytext", "div.storytext"},
	},
}
