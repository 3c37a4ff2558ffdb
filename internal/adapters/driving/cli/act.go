package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var actCmd = &cobra.Command{
	Use:   "act",
	Short: "Work with loaded act texts",
	Long: `Commands for loading act texts into memory and reading them
section by section.`,
}

var actLoadCmd = &cobra.Command{
	Use:   "load [eli]",
	Short: "Load an act's text into memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := documentService.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
		cmd.Printf("Loaded %s: %d section(s), %d bytes", info.ELI, info.SectionCount, info.SizeBytes)
		if info.Truncated {
			cmd.Print(" (truncated)")
		}
		cmd.Println()
		return nil
	},
}

var actTOCCmd = &cobra.Command{
	Use:   "toc [eli]",
	Short: "Print the table of contents of a loaded act",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toc, err := documentService.TOC(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, entry := range toc {
			cmd.Printf("  %-30s %s\n", entry.ID, entry.Title)
		}
		return nil
	},
}

var actSectionCmd = &cobra.Command{
	Use:   "section [eli] [selector]",
	Short: "Print one section of a loaded act",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, err := documentService.Section(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Println(section.Body)
		return nil
	},
}

var actFindCmd = &cobra.Command{
	Use:   "find [eli] [query]",
	Short: "Search for text within a loaded act",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hits, err := documentService.SearchIn(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			cmd.Println("No matches.")
			return nil
		}
		for _, hit := range hits {
			cmd.Printf("  [%s] …%s…\n", hit.SectionID, hit.Context)
		}
		cmd.Printf("%d match(es)\n", len(hits))
		return nil
	},
}

var actListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded acts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		infos := documentService.ListLoaded(cmd.Context())
		if len(infos) == 0 {
			cmd.Println("No acts loaded.")
			return nil
		}
		for _, info := range infos {
			cmd.Printf("  %s  %d section(s)  %d bytes\n", info.ELI, info.SectionCount, info.SizeBytes)
		}
		return nil
	},
}

var actEvictCmd = &cobra.Command{
	Use:   "evict [eli]",
	Short: "Remove a loaded act from memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documentService.Evict(cmd.Context(), args[0])
		cmd.Printf("Evicted %s\n", args[0])
		return nil
	},
}

func init() {
	actCmd.AddCommand(actLoadCmd)
	actCmd.AddCommand(actTOCCmd)
	actCmd.AddCommand(actSectionCmd)
	actCmd.AddCommand(actFindCmd)
	actCmd.AddCommand(actListCmd)
	actCmd.AddCommand(actEvictCmd)
	rootCmd.AddCommand(actCmd)
}
