package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driving"
)

// SearchActsInput is the input schema for the search_acts tool.
type SearchActsInput struct {
	Title     string `json:"title,omitempty" jsonschema:"words to match in the act title"`
	Year      int    `json:"year,omitempty" jsonschema:"publication year"`
	Type      string `json:"type,omitempty" jsonschema:"act type, e.g. Ustawa or Rozporządzenie"`
	Publisher string `json:"publisher,omitempty" jsonschema:"journal code, e.g. DU or MP"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 50)"`
}

// BrowseActsInput is the input schema for the browse_acts tool.
type BrowseActsInput struct {
	Publisher string `json:"publisher" jsonschema:"journal code, e.g. DU (Dziennik Ustaw) or MP (Monitor Polski)"`
	Year      int    `json:"year" jsonschema:"publication year, e.g. 2024"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of records to keep"`
}

// FilterResultsInput is the input schema for the filter_results tool.
type FilterResultsInput struct {
	ResultSetID  string `json:"result_set_id" jsonschema:"id of the result set to filter, e.g. rs_1"`
	Type         string `json:"type,omitempty" jsonschema:"keep only records of this act type"`
	Status       string `json:"status,omitempty" jsonschema:"keep only records with this status"`
	Year         int    `json:"year,omitempty" jsonschema:"keep only records from this year"`
	DateField    string `json:"date_field,omitempty" jsonschema:"date field for the range filter: promulgation_date or effective_date"`
	DateFrom     string `json:"date_from,omitempty" jsonschema:"inclusive lower date bound, YYYY-MM-DD"`
	DateTo       string `json:"date_to,omitempty" jsonschema:"inclusive upper date bound, YYYY-MM-DD"`
	Pattern      string `json:"pattern,omitempty" jsonschema:"case-insensitive regular expression"`
	PatternField string `json:"pattern_field,omitempty" jsonschema:"text field the pattern applies to (default title)"`
	SortBy       string `json:"sort_by,omitempty" jsonschema:"field to sort by"`
	SortDesc     bool   `json:"sort_desc,omitempty" jsonschema:"sort descending"`
	Limit        int    `json:"limit,omitempty" jsonschema:"cap the number of records after sorting"`
}

// ResultSetOutput is the output schema for search_acts and filter_results.
type ResultSetOutput struct {
	ResultSetID  string              `json:"result_set_id"`
	QuerySummary string              `json:"query_summary"`
	Count        int                 `json:"count"`
	Records      []domain.ActSummary `json:"records"`
}

// ListResultSetsOutput is the output schema for the list_result_sets tool.
type ListResultSetsOutput struct {
	Sets  []ResultSetInfoOutput `json:"sets"`
	Count int                   `json:"count"`
}

// ResultSetInfoOutput describes one stored result set.
type ResultSetInfoOutput struct {
	ID           string `json:"id"`
	QuerySummary string `json:"query_summary"`
	RecordCount  int    `json:"record_count"`
	CreatedAt    string `json:"created_at"`
}

// ActInput identifies an act by its ELI.
type ActInput struct {
	ELI string `json:"eli" jsonschema:"European Legislation Identifier, e.g. DU/2023/1234"`
}

// LoadActOutput is the output schema for the load_act tool.
type LoadActOutput struct {
	ELI          string `json:"eli"`
	SizeBytes    int    `json:"size_bytes"`
	SectionCount int    `json:"section_count"`
	Truncated    bool   `json:"truncated"`
}

// TOCOutput is the output schema for the get_act_toc tool.
type TOCOutput struct {
	ELI      string            `json:"eli"`
	Sections []domain.TOCEntry `json:"sections"`
}

// SectionInput is the input schema for the get_act_section tool.
type SectionInput struct {
	ELI     string `json:"eli" jsonschema:"European Legislation Identifier"`
	Section string `json:"section" jsonschema:"section id or title, e.g. art_1 or Art. 1"`
}

// SectionOutput is the output schema for the get_act_section tool.
type SectionOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SearchActInput is the input schema for the search_act tool.
type SearchActInput struct {
	ELI   string `json:"eli" jsonschema:"European Legislation Identifier"`
	Query string `json:"query" jsonschema:"text to find within the loaded act"`
}

// SearchActOutput is the output schema for the search_act tool.
type SearchActOutput struct {
	Matches []domain.SearchHit `json:"matches"`
	Count   int                `json:"count"`
}

// ListLoadedOutput is the output schema for the list_loaded_acts tool.
type ListLoadedOutput struct {
	Acts  []LoadedActOutput `json:"acts"`
	Count int               `json:"count"`
}

// LoadedActOutput describes one loaded act.
type LoadedActOutput struct {
	ELI          string `json:"eli"`
	SizeBytes    int    `json:"size_bytes"`
	SectionCount int    `json:"section_count"`
	Truncated    bool   `json:"truncated"`
	LoadedAt     string `json:"loaded_at"`
}

// EvictActOutput is the output schema for the evict_act tool.
type EvictActOutput struct {
	ELI     string `json:"eli"`
	Evicted bool   `json:"evicted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_acts",
		Description: "Search Polish legal acts by title, year, type or publisher. Stores the results as a result set for later filtering.",
	}, s.handleSearchActs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "browse_acts",
		Description: "List every act a journal published in a year, without keyword filtering. Stores the results as a result set for later filtering.",
	}, s.handleBrowseActs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "filter_results",
		Description: "Filter a stored result set by equality, date range, regex pattern, sort order and limit. Produces a new result set; the source set is unchanged.",
	}, s.handleFilterResults)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_result_sets",
		Description: "List all stored result sets.",
	}, s.handleListResultSets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_act",
		Description: "Fetch an act's consolidated text and index it into sections for TOC, section and in-act search access.",
	}, s.handleLoadAct)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_act_toc",
		Description: "Get the table of contents of a loaded act.",
	}, s.handleGetActTOC)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_act_section",
		Description: "Get one section of a loaded act by id or title.",
	}, s.handleGetActSection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_act",
		Description: "Search for text within a loaded act. Matches are reported per section with surrounding context.",
	}, s.handleSearchAct)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_loaded_acts",
		Description: "List all currently loaded acts.",
	}, s.handleListLoadedActs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evict_act",
		Description: "Remove a loaded act from memory.",
	}, s.handleEvictAct)
}

// handleSearchActs handles the search_acts tool invocation.
func (s *Server) handleSearchActs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchActsInput,
) (*mcp.CallToolResult, ResultSetOutput, error) {
	result, err := s.ports.Act.Search(ctx, domain.SearchQuery{
		Title:     input.Title,
		Year:      input.Year,
		Type:      input.Type,
		Publisher: input.Publisher,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, ResultSetOutput{}, err
	}
	return nil, resultSetOutput(result), nil
}

// handleBrowseActs handles the browse_acts tool invocation.
func (s *Server) handleBrowseActs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BrowseActsInput,
) (*mcp.CallToolResult, ResultSetOutput, error) {
	result, err := s.ports.Act.Browse(ctx, input.Publisher, input.Year, input.Limit)
	if err != nil {
		return nil, ResultSetOutput{}, err
	}
	return nil, resultSetOutput(result), nil
}

// handleFilterResults handles the filter_results tool invocation.
func (s *Server) handleFilterResults(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FilterResultsInput,
) (*mcp.CallToolResult, ResultSetOutput, error) {
	result, err := s.ports.Act.Filter(ctx, input.ResultSetID, domain.FilterSpec{
		Type:         input.Type,
		Status:       input.Status,
		Year:         input.Year,
		DateField:    input.DateField,
		DateFrom:     input.DateFrom,
		DateTo:       input.DateTo,
		Pattern:      input.Pattern,
		PatternField: input.PatternField,
		SortBy:       input.SortBy,
		SortDesc:     input.SortDesc,
		Limit:        input.Limit,
	})
	if err != nil {
		return nil, ResultSetOutput{}, err
	}
	return nil, resultSetOutput(result), nil
}

// handleListResultSets handles the list_result_sets tool invocation.
func (s *Server) handleListResultSets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListResultSetsOutput, error) {
	infos := s.ports.Act.ListSets(ctx)

	output := ListResultSetsOutput{
		Sets:  make([]ResultSetInfoOutput, len(infos)),
		Count: len(infos),
	}
	for i, info := range infos {
		output.Sets[i] = ResultSetInfoOutput{
			ID:           info.ID,
			QuerySummary: info.QuerySummary,
			RecordCount:  info.RecordCount,
			CreatedAt:    info.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// handleLoadAct handles the load_act tool invocation.
func (s *Server) handleLoadAct(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ActInput,
) (*mcp.CallToolResult, LoadActOutput, error) {
	info, err := s.ports.Document.Load(ctx, input.ELI)
	if err != nil {
		return nil, LoadActOutput{}, err
	}
	return nil, LoadActOutput{
		ELI:          info.ELI,
		SizeBytes:    info.SizeBytes,
		SectionCount: info.SectionCount,
		Truncated:    info.Truncated,
	}, nil
}

// handleGetActTOC handles the get_act_toc tool invocation.
func (s *Server) handleGetActTOC(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ActInput,
) (*mcp.CallToolResult, TOCOutput, error) {
	toc, err := s.ports.Document.TOC(ctx, input.ELI)
	if err != nil {
		return nil, TOCOutput{}, err
	}
	return nil, TOCOutput{ELI: input.ELI, Sections: toc}, nil
}

// handleGetActSection handles the get_act_section tool invocation.
func (s *Server) handleGetActSection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SectionInput,
) (*mcp.CallToolResult, SectionOutput, error) {
	section, err := s.ports.Document.Section(ctx, input.ELI, input.Section)
	if err != nil {
		return nil, SectionOutput{}, err
	}
	return nil, SectionOutput{
		ID:    section.ID,
		Title: section.Title,
		Text:  section.Body,
	}, nil
}

// handleSearchAct handles the search_act tool invocation.
func (s *Server) handleSearchAct(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchActInput,
) (*mcp.CallToolResult, SearchActOutput, error) {
	hits, err := s.ports.Document.SearchIn(ctx, input.ELI, input.Query)
	if err != nil {
		return nil, SearchActOutput{}, err
	}
	return nil, SearchActOutput{Matches: hits, Count: len(hits)}, nil
}

// handleListLoadedActs handles the list_loaded_acts tool invocation.
func (s *Server) handleListLoadedActs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListLoadedOutput, error) {
	infos := s.ports.Document.ListLoaded(ctx)

	output := ListLoadedOutput{
		Acts:  make([]LoadedActOutput, len(infos)),
		Count: len(infos),
	}
	for i, info := range infos {
		output.Acts[i] = LoadedActOutput{
			ELI:          info.ELI,
			SizeBytes:    info.SizeBytes,
			SectionCount: info.SectionCount,
			Truncated:    info.Truncated,
			LoadedAt:     info.LoadedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// handleEvictAct handles the evict_act tool invocation.
func (s *Server) handleEvictAct(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ActInput,
) (*mcp.CallToolResult, EvictActOutput, error) {
	s.ports.Document.Evict(ctx, input.ELI)
	return nil, EvictActOutput{ELI: input.ELI, Evicted: true}, nil
}

// resultSetOutput converts a service result into the tool output shape.
func resultSetOutput(result *driving.SearchResult) ResultSetOutput {
	return ResultSetOutput{
		ResultSetID:  result.ResultSetID,
		QuerySummary: result.QuerySummary,
		Count:        len(result.Records),
		Records:      result.Records,
	}
}
