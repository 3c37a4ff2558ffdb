package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

var (
	filterType      string
	filterStatus    string
	filterYear      int
	filterDateField string
	filterDateFrom  string
	filterDateTo    string
	filterPattern   string
	filterField     string
	filterSortBy    string
	filterSortDesc  bool
	filterLimit     int
	filterJSON      bool
)

var filterCmd = &cobra.Command{
	Use:   "filter [result-set-id]",
	Short: "Filter a stored result set",
	Long: `Derives a new result set from a stored one. Filters apply in a
fixed order: equality, date range, regex pattern, sort, limit.
The source result set is left unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List stored result sets",
	RunE:  runSets,
}

func init() {
	filterCmd.Flags().StringVar(&filterType, "type", "", "keep only records of this act type")
	filterCmd.Flags().StringVar(&filterStatus, "status", "", "keep only records with this status")
	filterCmd.Flags().IntVar(&filterYear, "year", 0, "keep only records from this year")
	filterCmd.Flags().StringVar(&filterDateField, "date-field", "", "date field for the range filter")
	filterCmd.Flags().StringVar(&filterDateFrom, "from", "", "inclusive lower date bound (YYYY-MM-DD)")
	filterCmd.Flags().StringVar(&filterDateTo, "to", "", "inclusive upper date bound (YYYY-MM-DD)")
	filterCmd.Flags().StringVar(&filterPattern, "pattern", "", "case-insensitive regular expression")
	filterCmd.Flags().StringVar(&filterField, "pattern-field", "", "text field the pattern applies to (default title)")
	filterCmd.Flags().StringVar(&filterSortBy, "sort", "", "field to sort by")
	filterCmd.Flags().BoolVar(&filterSortDesc, "desc", false, "sort descending")
	filterCmd.Flags().IntVarP(&filterLimit, "limit", "n", 0, "cap the number of records after sorting")
	filterCmd.Flags().BoolVar(&filterJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(setsCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	spec := domain.FilterSpec{
		Type:         filterType,
		Status:       filterStatus,
		Year:         filterYear,
		DateField:    filterDateField,
		DateFrom:     filterDateFrom,
		DateTo:       filterDateTo,
		Pattern:      filterPattern,
		PatternField: filterField,
		SortBy:       filterSortBy,
		SortDesc:     filterSortDesc,
		Limit:        filterLimit,
	}

	result, err := actService.Filter(cmd.Context(), args[0], spec)
	if err != nil {
		return fmt.Errorf("filter failed: %w", err)
	}

	if filterJSON {
		return outputResultJSON(cmd, result)
	}
	return outputResultTable(cmd, result)
}

func runSets(cmd *cobra.Command, _ []string) error {
	infos := actService.ListSets(cmd.Context())
	if len(infos) == 0 {
		cmd.Println("No stored result sets.")
		return nil
	}

	for _, info := range infos {
		cmd.Printf("  %s  %d record(s)  %s\n", info.ID, info.RecordCount, info.QuerySummary)
	}
	return nil
}
