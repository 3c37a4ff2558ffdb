package mcp

import (
	"github.com/acta-dev/acta-mcp/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Act provides act search and result set filtering.
	Act driving.ActService

	// Document provides act text loading and section access.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Act == nil {
		return ErrMissingActService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
