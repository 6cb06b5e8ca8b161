package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"seqtag/internal/application/commands"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// RegisterReadTools adds all read-only record and relation tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, store ports.Store) {
	s.AddTool(listRecordsTool(), listRecordsHandler(store))
	s.AddTool(getRelationTool(), getRelationHandler(store))
}

// --- list_records ---

func listRecordsTool() mcp.Tool {
	return mcp.NewTool("list_records",
		mcp.WithDescription("List sequencing files, samples or pathogen labels. With a query, returns the best fuzzy matches instead."),
		mcp.WithString("type",
			mcp.Description("Record type to list"),
			mcp.Enum("file", "sample", "label"),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Optional search text matched against ID, name and detail (at least 2 characters)"),
		),
	)
}

func listRecordsHandler(store ports.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t := domain.ParseRecordType(req.GetString("type", ""))
		query := req.GetString("query", "")

		if query != "" {
			results, err := commands.NewSearchCommand(store, t, query).Execute(ctx)
			if err != nil {
				return toolError(err)
			}
			if len(results) == 0 {
				return mcp.NewToolResultText("No results found."), nil
			}
			var sb strings.Builder
			for _, r := range results {
				sb.WriteString(formatRecord(r.Record))
				sb.WriteByte('\n')
			}
			return mcp.NewToolResultText(sb.String()), nil
		}

		records, err := commands.NewListRecordsCommand(store, t).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(records, formatRecord)
	}
}

// --- get_relation ---

func getRelationTool() mcp.Tool {
	return mcp.NewTool("get_relation",
		mcp.WithDescription("Show the items linked to a sample: its sequencing files (kind file-sample) or its pathogen labels (kind sample-label)."),
		mcp.WithString("kind",
			mcp.Description("Relation kind"),
			mcp.Enum("file-sample", "sample-label"),
			mcp.Required(),
		),
		mcp.WithString("owner_id",
			mcp.Description("Sample ID owning the relation"),
			mcp.Required(),
		),
	)
}

func getRelationHandler(store ports.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rel, err := relationFrom(req)
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewShowRelationCommand(store, rel).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, r := range result.Items {
			sb.WriteString(formatRecord(r))
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func relationFrom(req mcp.CallToolRequest) (domain.Relation, error) {
	kind, err := domain.ParseRelationKind(req.GetString("kind", ""))
	if err != nil {
		return domain.Relation{}, err
	}
	ownerID := req.GetString("owner_id", "")
	if ownerID == "" {
		return domain.Relation{}, fmt.Errorf("owner_id is required")
	}
	return domain.Relation{Kind: kind, OwnerID: ownerID}, nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatRecord(r domain.Record) string {
	if r.Info == "" {
		return fmt.Sprintf("%s  %s", r.ID, r.Name)
	}
	return fmt.Sprintf("%s  %s  (%s)", r.ID, r.Name, r.Info)
}
