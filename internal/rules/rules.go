// Package rules is the read-only registry of per-site selector strategies.
// Both discovery and extraction consult it; a hostname with no entry falls
// back to the generic default chain.
package rules

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet holds the ordered selector chains for one site. Selectors are tried
// in order; the first one that matches wins.
type RuleSet struct {
	TitleSelectors   []string `yaml:"title"`
	AuthorSelectors  []string `yaml:"author"`
	ChapterSelectors []string `yaml:"chapters"`
	ContentSelectors []string `yaml:"content"`
	CoverSelector    string   `yaml:"cover"`
}

// Default returns the generic rule set used when no host entry exists. It is
// itself a chain of fallbacks, not a single selector.
func Default() RuleSet {
	return RuleSet{
		TitleSelectors: []string{
			"meta[property='og:title']",
			"h1.entry-title",
			"h1.novel-title",
			"h1",
			"title",
		},
		AuthorSelectors: []string{
			"meta[name='author']",
			"a[href*='/author/']",
			".author a",
			".author",
			"span[itemprop='author']",
		},
		ChapterSelectors: []string{
			"ul.chapter-list a",
			"div.chapter-list a",
			"ol.chapters a",
			"table#chapters a",
			"div#chapterlist a",
			".wp-manga-chapter a",
			"ul.main.version-chap a",
			".entry-content a[href*='chapter']",
		},
		ContentSelectors: []string{
			"div.chapter-content",
			"div#chapter-content",
			"div.chapter-inner",
			"div.reading-content",
			"div.entry-content",
			"div.text_story",
			"article .post-content",
			"article",
		},
		CoverSelector: "meta[property='og:image']",
	}
}

// Registry maps normalized hostnames to rule sets.
type Registry struct {
	sites map[string]RuleSet
}

// NewRegistry returns a registry preloaded with the built-in site table.
func NewRegistry() *Registry {
	sites := make(map[string]RuleSet, len(builtinSites))
	for host, rs := range builtinSites {
		sites[host] = rs
	}
	return &Registry{sites: sites}
}

// NormalizeHost lowercases the hostname and strips a leading "www.".
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// RulesFor returns the rule set for a hostname, or the default set when the
// host has no entry. Lookup is exact-match only.
func (r *Registry) RulesFor(host string) RuleSet {
	if rs, ok := r.sites[NormalizeHost(host)]; ok {
		return rs
	}
	return Default()
}

// Known reports whether the host has a dedicated entry.
func (r *Registry) Known(host string) bool {
	_, ok := r.sites[NormalizeHost(host)]
	return ok
}

// Hostnames returns every registered hostname, sorted.
func (r *Registry) Hostnames() []string {
	out := make([]string, 0, len(r.sites))
	for h := range r.sites {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

type overlayFile struct {
	Rules map[string]RuleSet `yaml:"rules"`
}

// LoadOverlay merges a user rules file into the registry. Entries replace
// built-in ones wholesale for the same hostname.
func (r *Registry) LoadOverlay(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rules file: %w", err)
	}

	var ov overlayFile
	if err := yaml.Unmarshal(b, &ov); err != nil {
		return fmt.Errorf("rules file %s: %w", path, err)
	}

	for host, rs := range ov.Rules {
		r.sites[NormalizeHost(host)] = rs
	}

	return nil
}
