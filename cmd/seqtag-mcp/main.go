package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "seqtag/internal/adapters/mcp"
	"seqtag/internal/config"
	"seqtag/internal/wire"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("seqtag-mcp: %v", err)
	}
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite database")
	flag.StringVar(&cfg.Driver, "driver", cfg.Driver, "store driver (sqlite, postgres, memory)")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "maximum concurrent mutations per chunk")
	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	// stdout carries the MCP protocol
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("seqtag-mcp: %v", err)
	}

	ctx := context.Background()
	app, err := wire.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("seqtag-mcp: %v", err)
	}
	defer app.Close()

	mcpServer := server.NewMCPServer(
		"seqtag-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, app.Store)
	mcpadapter.RegisterWriteTools(mcpServer, app.Store, app.Executor, app.Logger)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
