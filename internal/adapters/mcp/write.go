package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"seqtag/internal/application/batch"
	"seqtag/internal/application/commands"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// RegisterWriteTools adds the record and relation mutation tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, store ports.Store, exec *batch.Executor[string], logger *slog.Logger) {
	s.AddTool(createRecordTool(), createRecordHandler(store))
	s.AddTool(setRelationTool(), setRelationHandler(store, exec, logger))
}

// --- create_record ---

func createRecordTool() mcp.Tool {
	return mcp.NewTool("create_record",
		mcp.WithDescription("Create a sequencing file, sample or pathogen label."),
		mcp.WithString("type",
			mcp.Description("Record type to create"),
			mcp.Enum("file", "sample", "label"),
			mcp.Required(),
		),
		mcp.WithString("id",
			mcp.Description("Record ID (letters, digits, '.', '_', ':' and '-')"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Display name"),
			mcp.Required(),
		),
		mcp.WithString("detail",
			mcp.Description("File path, sample description or label taxon ID"),
		),
		mcp.WithString("run",
			mcp.Description("Sequencing run (files only)"),
		),
		mcp.WithNumber("lane",
			mcp.Description("Flow cell lane (files only)"),
		),
	)
}

func createRecordHandler(store ports.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewCreateRecordCommand(store,
			domain.ParseRecordType(req.GetString("type", "")),
			req.GetString("id", ""),
			req.GetString("name", ""),
			req.GetString("detail", ""),
		)
		cmd.Run = req.GetString("run", "")
		cmd.Lane = req.GetInt("lane", 0)

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- set_relation ---

func setRelationTool() mcp.Tool {
	return mcp.NewTool("set_relation",
		mcp.WithDescription("Link or unlink items on a sample. mode=set makes the membership exactly item_ids, "+
			"mode=add links them, mode=remove unlinks them. Only the minimal set of changes is applied; "+
			"failures of individual items are listed and do not roll back the others."),
		mcp.WithString("kind",
			mcp.Description("Relation kind"),
			mcp.Enum("file-sample", "sample-label"),
			mcp.Required(),
		),
		mcp.WithString("owner_id",
			mcp.Description("Sample ID owning the relation"),
			mcp.Required(),
		),
		mcp.WithArray("item_ids",
			mcp.Description("File or label IDs"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("mode",
			mcp.Description("How item_ids combine with the current links (default set)"),
			mcp.Enum("set", "add", "remove"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Report the planned changes without applying them"),
		),
	)
}

func setRelationHandler(store ports.Store, exec *batch.Executor[string], logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rel, err := relationFrom(req)
		if err != nil {
			return toolError(err)
		}
		mode, err := commands.ParseRelationMode(req.GetString("mode", "set"))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewSetRelationCommand(store, exec, logger, rel, mode, req.GetStringSlice("item_ids", nil))
		cmd.DryRun = req.GetBool("dry_run", false)

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		text := formatSetResult(result)
		if result.HasFailures() {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func formatSetResult(r *commands.SetRelationResult) string {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteByte('\n')
	if r.DryRun {
		for _, id := range domain.Sorted(r.Plan.ToAdd) {
			fmt.Fprintf(&sb, "+ %s\n", id)
		}
		for _, id := range domain.Sorted(r.Plan.ToRemove) {
			fmt.Fprintf(&sb, "- %s\n", id)
		}
		return sb.String()
	}
	for _, f := range r.Result.Failed() {
		fmt.Fprintf(&sb, "failed %s %s: %s (%v)\n", f.Op, f.ID, f.Kind, f.Err)
	}
	if r.Members != nil {
		fmt.Fprintf(&sb, "now linked: %s\n", strings.Join(r.Members, ", "))
	}
	return sb.String()
}
