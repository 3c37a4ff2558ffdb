package driven

import (
	"context"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// ResultStore persists named, immutable result sets and derives new sets
// by filtering existing ones. Sets expire on a TTL from creation and are
// evicted least recently accessed first at capacity.
type ResultStore interface {
	// Store creates a new result set and returns its id. parentID may be
	// empty for top-level query results.
	Store(ctx context.Context, records []domain.ActSummary, querySummary, parentID string) (string, error)

	// Filter applies spec to the identified set and persists the outcome
	// as a new child set, leaving the source untouched. ErrNotFound if
	// the source set is absent or expired.
	Filter(ctx context.Context, id string, spec domain.FilterSpec) (string, []domain.ActSummary, error)

	// Get returns the identified set, updating its recency.
	Get(ctx context.Context, id string) (*domain.ResultSet, error)

	// List returns accounting metadata for all live sets in creation
	// order. It does not affect LRU ordering.
	List(ctx context.Context) []domain.ResultSetInfo
}
