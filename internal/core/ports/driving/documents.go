package driving

import (
	"context"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// DocumentService provides act text loading and section-level access.
type DocumentService interface {
	// Load fetches the act text upstream (unless already loaded and
	// unexpired) and indexes it into sections.
	Load(ctx context.Context, eli string) (*domain.DocumentInfo, error)

	// TOC returns the table of contents of a loaded act.
	TOC(ctx context.Context, eli string) ([]domain.TOCEntry, error)

	// Section resolves a selector within a loaded act.
	Section(ctx context.Context, eli, selector string) (*domain.Section, error)

	// SearchIn searches within a loaded act.
	SearchIn(ctx context.Context, eli, query string) ([]domain.SearchHit, error)

	// Evict removes a loaded act from the store.
	Evict(ctx context.Context, eli string)

	// ListLoaded returns metadata for all loaded acts.
	ListLoaded(ctx context.Context) []domain.DocumentInfo
}
