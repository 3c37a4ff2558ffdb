package domain

import (
	"fmt"
	"strings"
	"time"
)

// ResultSet is an immutable, identifiable snapshot of query results.
// Filtering a set never mutates it; it produces a child set instead.
type ResultSet struct {
	// ID identifies the set, e.g. "rs_3".
	ID string

	// Records is the ordered record sequence. Never mutated after creation.
	Records []ActSummary

	// QuerySummary describes how the set was produced.
	QuerySummary string

	// ParentID is the id of the set this one was filtered from, if any.
	ParentID string

	CreatedAt    time.Time
	LastAccessed time.Time
}

// ResultSetInfo is accounting metadata for a stored result set.
type ResultSetInfo struct {
	ID           string    `json:"result_set_id"`
	QuerySummary string    `json:"query_summary"`
	RecordCount  int       `json:"record_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// FilterSpec describes one filtering step over a stored result set.
// All fields are optional and composable; they are applied in a fixed
// order regardless of which are present: equality filters, date range,
// regex pattern, sort, limit.
type FilterSpec struct {
	// Type, Status and Year are exact-match equality filters.
	// Zero values mean the filter is not applied.
	Type   string
	Status string
	Year   int

	// DateField names the date field the range below applies to.
	// Records with a missing or unparseable value are excluded.
	DateField string
	DateFrom  string
	DateTo    string

	// Pattern is a regular expression tested against PatternField.
	// OR semantics exist only through alternation inside the pattern.
	Pattern string

	// PatternField names the text field Pattern is tested against.
	// Defaults to the title.
	PatternField string

	// SortBy names the field to sort by, ascending unless SortDesc.
	// The sort is stable with respect to the original order.
	SortBy   string
	SortDesc bool

	// Limit caps the record count after sorting. Zero means no limit.
	Limit int
}

// IsZero reports whether the spec applies no filtering at all.
func (s FilterSpec) IsZero() bool {
	return s == FilterSpec{}
}

// Summary returns a human-readable description of the filter step,
// suitable for a derived set's QuerySummary.
func (s FilterSpec) Summary() string {
	var parts []string
	if s.Type != "" {
		parts = append(parts, "type="+s.Type)
	}
	if s.Status != "" {
		parts = append(parts, "status="+s.Status)
	}
	if s.Year != 0 {
		parts = append(parts, fmt.Sprintf("year=%d", s.Year))
	}
	if s.DateField != "" && (s.DateFrom != "" || s.DateTo != "") {
		parts = append(parts, fmt.Sprintf("%s in [%s..%s]", s.DateField, s.DateFrom, s.DateTo))
	}
	if s.Pattern != "" {
		field := s.PatternField
		if field == "" {
			field = FieldTitle
		}
		parts = append(parts, fmt.Sprintf("%s~/%s/", field, s.Pattern))
	}
	if s.SortBy != "" {
		dir := "asc"
		if s.SortDesc {
			dir = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort=%s %s", s.SortBy, dir))
	}
	if s.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", s.Limit))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}
