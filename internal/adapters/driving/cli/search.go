package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driving"
)

var (
	searchYear      int
	searchType      string
	searchPublisher string
	searchLimit     int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [title]",
	Short: "Search legal acts",
	Long: `Searches Polish legal act metadata via the ELI API.
The results are stored as a result set whose id can be passed to
"acta filter" to narrow them without another upstream query.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchYear, "year", 0, "publication year")
	searchCmd.Flags().StringVar(&searchType, "type", "", "act type, e.g. Ustawa")
	searchCmd.Flags().StringVar(&searchPublisher, "publisher", "", "journal code, e.g. DU or MP")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of records")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := domain.SearchQuery{
		Year:      searchYear,
		Type:      searchType,
		Publisher: searchPublisher,
		Limit:     searchLimit,
	}
	if len(args) > 0 {
		query.Title = args[0]
	}

	result, err := actService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputResultJSON(cmd, result)
	}
	return outputResultTable(cmd, result)
}

func outputResultJSON(cmd *cobra.Command, result *driving.SearchResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultTable(cmd *cobra.Command, result *driving.SearchResult) error {
	cmd.Printf("Result set %s (%s)\n", result.ResultSetID, result.QuerySummary)
	cmd.Println()

	if len(result.Records) == 0 {
		cmd.Println("No matching acts.")
		return nil
	}

	for i, record := range result.Records {
		cmd.Printf("  [%d] %s\n", i+1, record.Title)
		cmd.Printf("      %s", record.ELI)
		if record.Type != "" {
			cmd.Printf("  %s", record.Type)
		}
		if record.Status != "" {
			cmd.Printf("  (%s)", record.Status)
		}
		cmd.Println()
	}
	cmd.Println()
	cmd.Printf("%d record(s)\n", len(result.Records))
	return nil
}
