package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"seqtag/internal/adapters/tui"
	"seqtag/internal/config"
	"seqtag/internal/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite database")
	flag.StringVar(&cfg.Driver, "driver", cfg.Driver, "store driver (sqlite, postgres, memory)")
	flag.StringVar(&cfg.DSN, "dsn", cfg.DSN, "postgres connection string")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "maximum concurrent mutations per chunk")
	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	// The terminal belongs to the UI, so logs go to a file
	logDir := config.DataDir()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(logDir, "seqtag.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger, err := cfg.NewLogger(logFile)
	if err != nil {
		return err
	}

	app, err := wire.New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(tui.NewApp(app.Store, app.Session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("ui stopped", "error", err)
		return err
	}
	return nil
}
