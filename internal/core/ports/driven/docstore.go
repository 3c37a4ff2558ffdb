package driven

import (
	"context"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// DocumentStore holds loaded documents indexed into addressable sections.
// Documents expire on a TTL from load time and are evicted least recently
// accessed first under count or size pressure.
type DocumentStore interface {
	// Load indexes text into sections and stores the document, replacing
	// any prior entry for the same ELI. Oversized text is truncated to
	// the per-document limit before indexing and the document is stored
	// marked truncated.
	Load(ctx context.Context, eli, text string) (*domain.LoadedDocument, error)

	// IsLoaded reports whether the document is present and unexpired.
	IsLoaded(ctx context.Context, eli string) bool

	// TOC returns the table of contents, or ErrNotLoaded.
	TOC(ctx context.Context, eli string) ([]domain.TOCEntry, error)

	// Section resolves a selector to a section, or ErrSectionNotFound.
	// Resolution order: exact id, case-insensitive title, normalized
	// token match. ErrNotLoaded if the document is absent.
	Section(ctx context.Context, eli, selector string) (*domain.Section, error)

	// SearchIn performs a case-insensitive substring search over the
	// document's sections, reporting every match in document order.
	SearchIn(ctx context.Context, eli, query string) ([]domain.SearchHit, error)

	// Evict removes the document, if present.
	Evict(ctx context.Context, eli string)

	// ListLoaded returns accounting metadata for all live documents.
	// It does not affect LRU ordering.
	ListLoaded(ctx context.Context) []domain.DocumentInfo
}
