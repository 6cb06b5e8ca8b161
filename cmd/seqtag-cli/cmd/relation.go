package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"seqtag/internal/application"
	"seqtag/internal/application/commands"
)

var relationDryRun bool

// errFailures makes the process exit non-zero after the failures were printed
var errFailures = errors.New("some links could not be applied")

var relationCmd = &cobra.Command{
	Use:   "relation",
	Short: "Show or change the files and labels linked to a sample",
	Long: `Relation kinds:
  file-sample   sequencing files of a sample (aliases: files, file)
  sample-label  pathogen labels of a sample (aliases: labels, label)

Examples:
  seqtag-cli relation show files S-2024-0117
  seqtag-cli relation add labels S-2024-0117 sars-cov-2
  seqtag-cli relation set files S-2024-0117 RUN042_L001_R1 RUN042_L001_R2 --dry-run
  seqtag-cli relation remove labels S-2024-0117 rsv`,
}

var relationShowCmd = &cobra.Command{
	Use:   "show <kind> <sample-id>",
	Short: "List the items linked to a sample",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rel, err := parseRelation(args[0], args[1])
		if err != nil {
			return err
		}
		result, err := commands.NewShowRelationCommand(GetApp().Store, rel).Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Message)
		for _, r := range result.Items {
			fmt.Fprintln(out, "  "+formatRecord(r))
		}
		return nil
	},
}

func newRelationChangeCmd(mode commands.RelationMode, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   mode.String() + " <kind> <sample-id> [item-id...]",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := parseRelation(args[0], args[1])
			if err != nil {
				return err
			}
			a := GetApp()
			setCmd := commands.NewSetRelationCommand(a.Store, a.Executor, a.Logger, rel, mode, args[2:])
			setCmd.DryRun = relationDryRun

			result, err := setCmd.Execute(cmd.Context())
			if result != nil {
				printSetResult(cmd.OutOrStdout(), result)
			}
			if err != nil {
				return err
			}
			if result.HasFailures() {
				return errFailures
			}
			return nil
		},
	}
	c.Flags().BoolVarP(&relationDryRun, "dry-run", "n", false, "print the planned changes without applying them")
	return c
}

func parseRelation(kind, ownerID string) (application.Relation, error) {
	k, err := application.ParseRelationKind(kind)
	if err != nil {
		return application.Relation{}, err
	}
	return application.Relation{Kind: k, OwnerID: ownerID}, nil
}

func init() {
	relationCmd.AddCommand(relationShowCmd)
	relationCmd.AddCommand(newRelationChangeCmd(commands.ModeSet, "Make the linked items exactly the given IDs"))
	relationCmd.AddCommand(newRelationChangeCmd(commands.ModeAdd, "Link items to a sample"))
	relationCmd.AddCommand(newRelationChangeCmd(commands.ModeRemove, "Unlink items from a sample"))
	rootCmd.AddCommand(relationCmd)
}
