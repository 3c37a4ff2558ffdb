package driving

import (
	"context"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// SearchResult is the outcome of a search or filter call: the records and
// the id of the result set they were persisted under. The id can be fed
// back into Filter to narrow results without re-querying upstream.
type SearchResult struct {
	ResultSetID  string
	QuerySummary string
	Records      []domain.ActSummary
}

// ActService provides act search and chained result filtering.
type ActService interface {
	// Search queries the upstream API and stores the outcome as a new
	// result set.
	Search(ctx context.Context, query domain.SearchQuery) (*SearchResult, error)

	// Browse lists a journal's acts for a year and stores the outcome
	// as a new result set.
	Browse(ctx context.Context, publisher string, year, limit int) (*SearchResult, error)

	// Filter derives a new result set from a stored one.
	Filter(ctx context.Context, resultSetID string, spec domain.FilterSpec) (*SearchResult, error)

	// ListSets returns metadata for all live result sets.
	ListSets(ctx context.Context) []domain.ResultSetInfo
}
