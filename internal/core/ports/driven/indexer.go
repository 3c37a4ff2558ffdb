package driven

import "github.com/acta-dev/acta-mcp/internal/core/domain"

// SectionIndexer detects headings in raw document text.
// Implementations must be pure: same text, same headings.
type SectionIndexer interface {
	// Index returns the detected headings ordered by offset.
	Index(text string) []domain.Heading
}
