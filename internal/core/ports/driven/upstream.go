package driven

import (
	"context"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// ActAPI is the upstream legal-act API. Implementations are expected to
// cache responses and to fail fast with resilience.ErrCircuitOpen while
// the upstream is deemed unhealthy.
type ActAPI interface {
	// SearchActs runs a metadata search and returns matching summaries.
	SearchActs(ctx context.Context, query domain.SearchQuery) ([]domain.ActSummary, error)

	// BrowseActs lists every act a journal published in a year.
	BrowseActs(ctx context.Context, publisher string, year int) ([]domain.ActSummary, error)

	// FetchActText returns the consolidated text of an act, or
	// ErrNotFound if the ELI does not resolve.
	FetchActText(ctx context.Context, eli string) (string, error)
}
