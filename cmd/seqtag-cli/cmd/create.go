package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"seqtag/internal/application"
	"seqtag/internal/application/commands"
)

var (
	createDetail string
	createRun    string
	createLane   int
	createReads  int64
	createTags   []string
)

var createCmd = &cobra.Command{
	Use:   "create <file|sample|label> <id> <name>",
	Short: "Create a record",
	Long: `Create a sequencing file, sample or pathogen label.

--detail is the file path, the sample description or the label taxon ID.

Examples:
  seqtag-cli create sample S-2024-0117 "Nasal swab, patient 17"
  seqtag-cli create label sars-cov-2 SARS-CoV-2 --detail 2697049
  seqtag-cli create file RUN042_L001_R1 RUN042_S7_L001_R1_001.fastq.gz \
      --run RUN042 --lane 1 --detail /seq/RUN042/RUN042_S7_L001_R1_001.fastq.gz`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		createCmd := commands.NewCreateRecordCommand(GetApp().Store, application.ParseRecordType(args[0]), args[1], args[2], createDetail)
		createCmd.Run = createRun
		createCmd.Lane = createLane
		createCmd.Reads = createReads
		createCmd.Tags = createTags

		result, err := createCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createDetail, "detail", "d", "", "file path, sample description or label taxon")
	createCmd.Flags().StringVar(&createRun, "run", "", "sequencing run (files only)")
	createCmd.Flags().IntVar(&createLane, "lane", 0, "flow cell lane (files only)")
	createCmd.Flags().Int64Var(&createReads, "reads", 0, "read count (files only)")
	createCmd.Flags().StringSliceVar(&createTags, "tag", nil, "file tag, repeatable (files only)")
	rootCmd.AddCommand(createCmd)
}
