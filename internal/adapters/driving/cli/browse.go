package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	browseLimit int
	browseJSON  bool
)

var browseCmd = &cobra.Command{
	Use:   "browse [publisher] [year]",
	Short: "List a journal's acts for a year",
	Long: `Lists every act a journal published in a year, without keyword
filtering. The results are stored as a result set whose id can be
passed to "acta filter".`,
	Args: cobra.ExactArgs(2),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().IntVarP(&browseLimit, "limit", "n", 0, "maximum number of records")
	browseCmd.Flags().BoolVar(&browseJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[1])
	}

	result, err := actService.Browse(cmd.Context(), args[0], year, browseLimit)
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	if browseJSON {
		return outputResultJSON(cmd, result)
	}
	return outputResultTable(cmd, result)
}
