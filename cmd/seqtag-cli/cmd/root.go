package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seqtag/internal/config"
	"seqtag/internal/wire"
)

var (
	cfg *config.Config
	app *wire.App
)

var rootCmd = &cobra.Command{
	Use:   "seqtag-cli",
	Short: "CLI for annotating sequencing files",
	Long: `seqtag-cli manages sequencing file records, samples and pathogen labels,
and links them together.

It provides commands to list, search and create records, and to show or
change which files and labels are linked to a sample.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		logger, err := cfg.NewLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		app, err = wire.New(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		err := app.Close()
		app = nil
		return err
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite database")
	flags.StringVar(&cfg.Driver, "driver", cfg.Driver, "store driver (sqlite, postgres, memory)")
	flags.StringVar(&cfg.DSN, "dsn", cfg.DSN, "postgres connection string")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "maximum concurrent mutations per chunk")
	flags.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "set the log level (debug, info, warn, error)")
	flags.StringVarP(&cfg.LogFormat, "logformat", "f", cfg.LogFormat, "set the log format (text, json)")
}

// GetApp returns the initialized application
func GetApp() *wire.App {
	return app
}
