package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

func TestExtractELI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid act URI",
			uri:      "acta://acts/DU/2023/1234",
			expected: "DU/2023/1234",
		},
		{
			name:     "invalid scheme",
			uri:      "file://acts/DU/2023/1234",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractELI(tt.uri))
		})
	}
}

func TestServer_handleLoadedResource(t *testing.T) {
	loaded := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)
	doc := &mockDocumentService{
		loaded: []domain.DocumentInfo{
			{ELI: "DU/2023/100", SizeBytes: 512, SectionCount: 4, LoadedAt: loaded},
		},
	}
	server := newTestServer(t, nil, doc)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "acta://loaded"},
	}
	result, err := server.handleLoadedResource(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, `"eli": "DU/2023/100"`)
	assert.Contains(t, result.Contents[0].Text, `"section_count": 4`)
}

func TestServer_handleActTextResource(t *testing.T) {
	ctx := context.Background()

	t.Run("rebuilds text from sections", func(t *testing.T) {
		doc := &mockDocumentService{
			toc:     []domain.TOCEntry{{ID: "art_1", Title: "Art. 1"}},
			section: &domain.Section{ID: "art_1", Title: "Art. 1", Body: "Art. 1\ntreść ustawy\n"},
		}
		server := newTestServer(t, nil, doc)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "acta://acts/DU/2023/100"},
		}
		result, err := server.handleActTextResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "Art. 1\ntreść ustawy\n", result.Contents[0].Text)
	})

	t.Run("unloaded act maps to resource not found", func(t *testing.T) {
		doc := &mockDocumentService{err: domain.ErrNotLoaded}
		server := newTestServer(t, nil, doc)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "acta://acts/DU/1900/1"},
		}
		_, err := server.handleActTextResource(ctx, req)
		require.Error(t, err)
	})

	t.Run("malformed URI", func(t *testing.T) {
		server := newTestServer(t, nil, &mockDocumentService{})

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "acta://other/DU/2023/1"},
		}
		_, err := server.handleActTextResource(ctx, req)
		require.Error(t, err)
	})
}
