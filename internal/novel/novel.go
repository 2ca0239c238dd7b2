// Package novel holds the shared data model of a conversion: the book
// metadata and the chapter records that flow from discovery through
// extraction into the assembled EPUB.
package novel

// Status is the lifecycle state of a chapter within one conversion.
type Status string

const (
	StatusPending   Status = "pending"
	StatusLoading   Status = "loading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// PlaceholderTitle is used when no title can be extracted from the start page.
const PlaceholderTitle = "Untitled Novel"

// Chapter is a single chapter of the book. Records are created in bulk by the
// discoverer and mutated in place afterwards; exclusion happens through the
// Include flag, never by removing the record.
type Chapter struct {
	Index   int
	Title   string
	URL     string
	BaseURL string
	Status  Status
	Body    string
	Err     string
	Include bool
}

// Settled reports whether the chapter reached a terminal state.
func (c *Chapter) Settled() bool {
	return c.Status == StatusCompleted || c.Status == StatusError
}

// Metadata describes the book being assembled. Fields start empty and are
// filled from start-page extraction, then overridden by user-supplied values.
type Metadata struct {
	Title       string
	Author      string
	Language    string
	Description string
	Subject     string
	Publisher   string
	CoverURL    string
}

// Merge applies every non-empty field of override on top of m.
func (m *Metadata) Merge(override Metadata) {
	if override.Title != "" {
		m.Title = override.Title
	}
	if override.Author != "" {
		m.Author = override.Author
	}
	if override.Language != "" {
		m.Language = override.Language
	}
	if override.Description != "" {
		m.Description = override.Description
	}
	if override.Subject != "" {
		m.Subject = override.Subject
	}
	if override.Publisher != "" {
		m.Publisher = override.Publisher
	}
	if override.CoverURL != "" {
		m.CoverURL = override.CoverURL
	}
}

// ApplyDefaults fills the fields that must never stay empty.
func (m *Metadata) ApplyDefaults() {
	if m.Title == "" {
		m.Title = PlaceholderTitle
	}
	if m.Language == "" {
		m.Language = "en"
	}
}
