package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neilberkman/gptwrapped/internal/core/userstats"
	"github.com/neilberkman/gptwrapped/internal/core/wrapped"
	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// AnalyzeArchiveArgs defines arguments for the analyze_archive tool
type AnalyzeArchiveArgs struct {
	Path   string `json:"path" jsonschema:"description=Path to an exported conversations.json,required"`
	Year   string `json:"year,omitempty" jsonschema:"description=Year to report on (default: configured year)"`
	Name   string `json:"name,omitempty" jsonschema:"description=Name to use in the headline"`
	NoSave bool   `json:"no_save,omitempty" jsonschema:"description=Do not record totals for comparison"`
}

// NewServer registers the wrapped tools on a new MCP server
func NewServer(svc *wrapped.Service, store *userstats.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"GPTWrapped",
		"1.0.0",
	)

	analyzeTool := mcp.NewTool("analyze_archive",
		mcp.WithDescription("Build a year-in-review report from a ChatGPT conversations.json export: totals, monthly activity, longest conversation, topics and a comparison with other users."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to an exported conversations.json")),
		mcp.WithString("year",
			mcp.Description("Year to report on, e.g. '2024' or '2 years ago' (default: configured year)")),
		mcp.WithString("name",
			mcp.Description("Name to use in the headline")),
		mcp.WithBoolean("no_save",
			mcp.Description("If true, totals are not recorded and no comparison is made")),
	)
	s.AddTool(analyzeTool, makeAnalyzeArchiveHandler(svc))

	summaryTool := mcp.NewTool("stats_summary",
		mcp.WithDescription("Average words, conversations and messages across every archive analyzed so far"),
	)
	s.AddTool(summaryTool, makeStatsSummaryHandler(store))

	return s
}

// StartServer serves the wrapped tools over stdio
func StartServer(svc *wrapped.Service, store *userstats.Store) error {
	return server.ServeStdio(NewServer(svc, store))
}

func makeAnalyzeArchiveHandler(svc *wrapped.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AnalyzeArchiveArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		var year int
		if args.Year != "" {
			parsed, err := wrapped.ParseYear(args.Year, time.Now())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			year = parsed
		}

		conversations, err := chatexport.ParseFile(args.Path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read archive: %v", err)), nil
		}

		result, err := svc.Analyze(ctx, conversations, wrapped.Request{
			Year:   year,
			Name:   args.Name,
			NoSave: args.NoSave,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeStatsSummaryHandler(store *userstats.Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, ok := store.Summary(ctx)
		if !ok {
			return mcp.NewToolResultError("stats store unavailable"), nil
		}

		resultJSON, err := json.Marshal(summary)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}
