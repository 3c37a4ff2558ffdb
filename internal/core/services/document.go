package services

import (
	"context"
	"fmt"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driven"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driving"
	"github.com/acta-dev/acta-mcp/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides act text loading and section-level access.
type DocumentService struct {
	api  driven.ActAPI
	docs driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(api driven.ActAPI, docs driven.DocumentStore) *DocumentService {
	return &DocumentService{
		api:  api,
		docs: docs,
	}
}

// Load makes an act's text available for section access. An act already
// loaded and unexpired is not fetched again.
func (s *DocumentService) Load(ctx context.Context, eli string) (*domain.DocumentInfo, error) {
	if eli == "" {
		return nil, fmt.Errorf("%w: eli is required", domain.ErrInvalidInput)
	}

	if s.docs.IsLoaded(ctx, eli) {
		logger.Debug("act %s already loaded", eli)
		for _, info := range s.docs.ListLoaded(ctx) {
			if info.ELI == eli {
				return &info, nil
			}
		}
	}

	logger.Info("loading act %s", eli)
	text, err := s.api.FetchActText(ctx, eli)
	if err != nil {
		return nil, fmt.Errorf("fetch act %s: %w", eli, err)
	}

	doc, err := s.docs.Load(ctx, eli, text)
	if err != nil {
		return nil, fmt.Errorf("index act %s: %w", eli, err)
	}
	if doc.Truncated {
		logger.Warn("act %s exceeded the size limit and was truncated to %d bytes", eli, doc.SizeBytes)
	}

	return &domain.DocumentInfo{
		ELI:          doc.ELI,
		SizeBytes:    doc.SizeBytes,
		SectionCount: len(doc.Sections),
		Truncated:    doc.Truncated,
		LoadedAt:     doc.LoadedAt,
	}, nil
}

// TOC returns the table of contents of a loaded act.
func (s *DocumentService) TOC(ctx context.Context, eli string) ([]domain.TOCEntry, error) {
	return s.docs.TOC(ctx, eli)
}

// Section resolves a selector within a loaded act.
func (s *DocumentService) Section(ctx context.Context, eli, selector string) (*domain.Section, error) {
	return s.docs.Section(ctx, eli, selector)
}

// SearchIn searches within a loaded act.
func (s *DocumentService) SearchIn(ctx context.Context, eli, query string) ([]domain.SearchHit, error) {
	return s.docs.SearchIn(ctx, eli, query)
}

// Evict removes a loaded act from the store.
func (s *DocumentService) Evict(ctx context.Context, eli string) {
	s.docs.Evict(ctx, eli)
}

// ListLoaded returns metadata for all loaded acts.
func (s *DocumentService) ListLoaded(ctx context.Context) []domain.DocumentInfo {
	return s.docs.ListLoaded(ctx)
}
