package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driven"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driving"
	"github.com/acta-dev/acta-mcp/internal/logger"
)

// Ensure ActService implements the interface.
var _ driving.ActService = (*ActService)(nil)

// ActService provides act search and chained result filtering.
type ActService struct {
	api     driven.ActAPI
	results driven.ResultStore
}

// NewActService creates a new act service.
func NewActService(api driven.ActAPI, results driven.ResultStore) *ActService {
	return &ActService{
		api:     api,
		results: results,
	}
}

// Search queries the upstream API and stores the outcome as a new result
// set, so follow-up filters can run against it without another upstream
// round trip.
func (s *ActService) Search(ctx context.Context, query domain.SearchQuery) (*driving.SearchResult, error) {
	summary := querySummary(query)
	if summary == "" {
		return nil, fmt.Errorf("%w: at least one search criterion is required", domain.ErrInvalidInput)
	}
	logger.Info("searching acts: %s", summary)

	records, err := s.api.SearchActs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search acts: %w", err)
	}

	id, err := s.results.Store(ctx, records, summary, "")
	if err != nil {
		return nil, fmt.Errorf("store result set: %w", err)
	}
	logger.Debug("search yielded %d records as %s", len(records), id)

	return &driving.SearchResult{
		ResultSetID:  id,
		QuerySummary: summary,
		Records:      records,
	}, nil
}

// Browse lists a journal's acts for a year and stores the outcome as a
// new result set. limit caps the stored records; zero keeps them all.
func (s *ActService) Browse(ctx context.Context, publisher string, year, limit int) (*driving.SearchResult, error) {
	summary := fmt.Sprintf("browse: publisher=%q, year=%d", publisher, year)
	logger.Info("browsing acts: %s", summary)

	records, err := s.api.BrowseActs(ctx, publisher, year)
	if err != nil {
		return nil, fmt.Errorf("browse acts: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	id, err := s.results.Store(ctx, records, summary, "")
	if err != nil {
		return nil, fmt.Errorf("store result set: %w", err)
	}
	logger.Debug("browse yielded %d records as %s", len(records), id)

	return &driving.SearchResult{
		ResultSetID:  id,
		QuerySummary: summary,
		Records:      records,
	}, nil
}

// Filter derives a new result set from a stored one.
func (s *ActService) Filter(ctx context.Context, resultSetID string, spec domain.FilterSpec) (*driving.SearchResult, error) {
	if resultSetID == "" {
		return nil, fmt.Errorf("%w: result set id is required", domain.ErrInvalidInput)
	}
	if spec.IsZero() {
		return nil, fmt.Errorf("%w: at least one filter criterion is required", domain.ErrInvalidInput)
	}

	childID, records, err := s.results.Filter(ctx, resultSetID, spec)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", resultSetID, err)
	}
	logger.Debug("filter of %s yielded %d records as %s", resultSetID, len(records), childID)

	return &driving.SearchResult{
		ResultSetID:  childID,
		QuerySummary: fmt.Sprintf("filter of %s: %s", resultSetID, spec.Summary()),
		Records:      records,
	}, nil
}

// ListSets returns metadata for all live result sets.
func (s *ActService) ListSets(ctx context.Context) []domain.ResultSetInfo {
	return s.results.List(ctx)
}

// querySummary renders a search query as a short human-readable label.
// Empty means the query carries no criteria.
func querySummary(query domain.SearchQuery) string {
	var parts []string
	if query.Title != "" {
		parts = append(parts, fmt.Sprintf("title=%q", query.Title))
	}
	if query.Year != 0 {
		parts = append(parts, fmt.Sprintf("year=%d", query.Year))
	}
	if query.Type != "" {
		parts = append(parts, fmt.Sprintf("type=%q", query.Type))
	}
	if query.Publisher != "" {
		parts = append(parts, fmt.Sprintf("publisher=%q", query.Publisher))
	}
	if len(parts) == 0 {
		return ""
	}
	return "search: " + strings.Join(parts, ", ")
}
