package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Acta resources.
	uriScheme = "acta://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing loaded acts.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "loaded",
		Name:        "loaded-acts",
		Description: "List of acts currently loaded in memory",
		MIMEType:    "application/json",
	}, s.handleLoadedResource)

	// Template for loaded act text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "acts/{+eli}",
		Name:        "act-text",
		Description: "Full text of a loaded act",
		MIMEType:    "text/plain",
	}, s.handleActTextResource)
}

// handleLoadedResource returns a list of all loaded acts.
func (s *Server) handleLoadedResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := s.ports.Document.ListLoaded(ctx)

	type actInfo struct {
		ELI          string `json:"eli"`
		SizeBytes    int    `json:"size_bytes"`
		SectionCount int    `json:"section_count"`
		Truncated    bool   `json:"truncated"`
		LoadedAt     string `json:"loaded_at"`
	}

	list := make([]actInfo, len(infos))
	for i, info := range infos {
		list[i] = actInfo{
			ELI:          info.ELI,
			SizeBytes:    info.SizeBytes,
			SectionCount: info.SectionCount,
			Truncated:    info.Truncated,
			LoadedAt:     info.LoadedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling loaded acts: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleActTextResource returns the full text of a loaded act, rebuilt
// from its sections in document order.
func (s *Server) handleActTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	eli := extractELI(req.Params.URI)
	if eli == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	toc, err := s.ports.Document.TOC(ctx, eli)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var text strings.Builder
	for _, entry := range toc {
		section, err := s.ports.Document.Section(ctx, eli, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("reading section %s of %s: %w", entry.ID, eli, err)
		}
		text.WriteString(section.Body)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text.String(),
		}},
	}, nil
}

// extractELI extracts the ELI from a URI like acta://acts/DU/2023/1234.
func extractELI(uri string) string {
	const prefix = uriScheme + "acts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
