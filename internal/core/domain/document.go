package domain

import "time"

// Heading is a heading detected by a section indexer: its text as found in
// the source and its byte offset into the document text.
type Heading struct {
	Title  string
	Offset int
}

// Section is an addressable sub-range of a loaded document's text.
type Section struct {
	// ID is a stable slug derived from the heading, e.g. "art_1".
	ID string `json:"id"`

	// Title is the heading as found in the source, e.g. "Art. 1.".
	Title string `json:"title"`

	// StartOffset and EndOffset delimit the section within the document
	// text. Sections are non-overlapping and ordered by StartOffset.
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`

	// Body is the section text, headings included.
	Body string `json:"body"`
}

// LoadedDocument is a document held by the document store, indexed into
// sections at load time. Every loaded document has at least one section.
type LoadedDocument struct {
	ELI          string
	Text         string
	Sections     []Section
	SizeBytes    int
	Truncated    bool
	LoadedAt     time.Time
	LastAccessed time.Time
}

// TOCEntry is one row of a document's table of contents.
type TOCEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SearchHit is a single match from an in-document search.
type SearchHit struct {
	// SectionID identifies the section enclosing the match.
	SectionID string `json:"section_id"`

	// SectionTitle is the enclosing section's heading.
	SectionTitle string `json:"section_title"`

	// MatchedText is the matched substring as it appears in the document.
	MatchedText string `json:"matched_text"`

	// Context is a bounded window of text surrounding the match.
	Context string `json:"context"`

	// Offset is the match position within the document text.
	Offset int `json:"offset"`
}

// DocumentInfo is accounting metadata for a loaded document.
// Listing it does not count as an access for LRU purposes.
type DocumentInfo struct {
	ELI          string    `json:"eli"`
	SizeBytes    int       `json:"size_bytes"`
	SectionCount int       `json:"section_count"`
	Truncated    bool      `json:"truncated,omitempty"`
	LoadedAt     time.Time `json:"loaded_at"`
}
