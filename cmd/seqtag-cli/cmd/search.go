package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"seqtag/internal/application"
	"seqtag/internal/application/commands"
)

var searchType string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search records",
	Long: `Search records of one type by ID, name and detail.

Examples:
  seqtag-cli search L001
  seqtag-cli search --type labels influenza`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchCmd := commands.NewSearchCommand(GetApp().Store, application.ParseRecordType(searchType), args[0])
		results, err := searchCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
			return nil
		}
		for _, r := range results {
			fmt.Fprintln(cmd.OutOrStdout(), formatRecord(r.Record))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "files", "record type to search (files, samples, labels)")
	rootCmd.AddCommand(searchCmd)
}
