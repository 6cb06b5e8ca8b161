package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"seqtag/internal/application"
	"seqtag/internal/application/commands"
)

var listCmd = &cobra.Command{
	Use:   "list <files|samples|labels>",
	Short: "List records",
	Long: `List sequencing files, samples or pathogen labels, ordered by ID.

Examples:
  seqtag-cli list files
  seqtag-cli list samples
  seqtag-cli list labels`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"files", "samples", "labels"},
	RunE: func(cmd *cobra.Command, args []string) error {
		listCmd := commands.NewListRecordsCommand(GetApp().Store, application.ParseRecordType(args[0]))
		records, err := listCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		for _, r := range records {
			fmt.Fprintln(cmd.OutOrStdout(), formatRecord(r))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
