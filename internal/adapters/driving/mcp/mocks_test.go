package mcp

import (
	"context"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driving"
)

// mockActService is a mock implementation of driving.ActService.
type mockActService struct {
	result *driving.SearchResult
	infos  []domain.ResultSetInfo
	err    error

	lastQuery     domain.SearchQuery
	lastSpec      domain.FilterSpec
	lastSetID     string
	lastPublisher string
	lastYear      int
	lastLimit     int
}

func (m *mockActService) Search(_ context.Context, query domain.SearchQuery) (*driving.SearchResult, error) {
	m.lastQuery = query
	return m.result, m.err
}

func (m *mockActService) Browse(_ context.Context, publisher string, year, limit int) (*driving.SearchResult, error) {
	m.lastPublisher = publisher
	m.lastYear = year
	m.lastLimit = limit
	return m.result, m.err
}

func (m *mockActService) Filter(_ context.Context, id string, spec domain.FilterSpec) (*driving.SearchResult, error) {
	m.lastSetID = id
	m.lastSpec = spec
	return m.result, m.err
}

func (m *mockActService) ListSets(_ context.Context) []domain.ResultSetInfo {
	return m.infos
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	info    *domain.DocumentInfo
	toc     []domain.TOCEntry
	section *domain.Section
	hits    []domain.SearchHit
	loaded  []domain.DocumentInfo
	err     error

	evicted []string
}

func (m *mockDocumentService) Load(_ context.Context, _ string) (*domain.DocumentInfo, error) {
	return m.info, m.err
}

func (m *mockDocumentService) TOC(_ context.Context, _ string) ([]domain.TOCEntry, error) {
	return m.toc, m.err
}

func (m *mockDocumentService) Section(_ context.Context, _, _ string) (*domain.Section, error) {
	return m.section, m.err
}

func (m *mockDocumentService) SearchIn(_ context.Context, _, _ string) ([]domain.SearchHit, error) {
	return m.hits, m.err
}

func (m *mockDocumentService) Evict(_ context.Context, eli string) {
	m.evicted = append(m.evicted, eli)
}

func (m *mockDocumentService) ListLoaded(_ context.Context) []domain.DocumentInfo {
	return m.loaded
}
