// Package mcp provides an MCP (Model Context Protocol) server adapter for Acta.
// It lets AI assistants search Polish legal acts, refine stored result sets,
// and read loaded act texts section by section.
package mcp

import "errors"

// ErrMissingActService is returned when the act service is not provided.
var ErrMissingActService = errors.New("mcp: act service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
