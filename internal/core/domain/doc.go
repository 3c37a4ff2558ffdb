// Package domain contains the core business entities for acta-mcp:
// act summaries, loaded documents with their section index, result sets,
// and the domain error values shared across ports and adapters.
package domain
