package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/neilberkman/gptwrapped/internal/core/userstats"
	"github.com/neilberkman/gptwrapped/internal/core/wrapped"
)

const sampleArchive = "../../../pkg/chatexport/testdata/conversations.json"

func newTestService(t *testing.T) (*wrapped.Service, *userstats.Store) {
	t.Helper()
	store := userstats.New(userstats.SQLiteOpener(filepath.Join(t.TempDir(), "wrapped.db")), zerolog.Nop())
	svc := wrapped.NewService(
		wrapped.NewBuilder(wrapped.Options{Year: 2025}, nil, zerolog.Nop()),
		wrapped.NewComparer(store),
		"{{words}} words",
		zerolog.Nop(),
	)
	return svc, store
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return res, text.Text
}

func TestAnalyzeArchive(t *testing.T) {
	svc, store := newTestService(t)
	handler := makeAnalyzeArchiveHandler(svc)

	res, text := callTool(t, handler, map[string]any{"path": sampleArchive, "year": "2025"})
	if res.IsError {
		t.Fatalf("analyze_archive failed: %s", text)
	}

	var result wrapped.Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Report.UserWords != 8 || result.Headline != "8 words" {
		t.Errorf("unexpected result: words=%d headline=%q", result.Report.UserWords, result.Headline)
	}

	_, text = callTool(t, makeStatsSummaryHandler(store), nil)
	var summary struct {
		TotalUsers int `json:"total_users"`
	}
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1", summary.TotalUsers)
	}
}

func TestAnalyzeArchive_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	handler := makeAnalyzeArchiveHandler(svc)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing path", args: map[string]any{}},
		{name: "missing file", args: map[string]any{"path": filepath.Join(t.TempDir(), "nope.json")}},
		{name: "bad year", args: map[string]any{"path": sampleArchive, "year": "xyz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := callTool(t, handler, tt.args)
			if !res.IsError {
				t.Error("expected an error result")
			}
		})
	}
}

func TestAnalyzeArchive_ConfiguredYear(t *testing.T) {
	svc, _ := newTestService(t)

	res, text := callTool(t, makeAnalyzeArchiveHandler(svc), map[string]any{"path": sampleArchive, "no_save": true})
	if res.IsError {
		t.Fatalf("analyze_archive failed: %s", text)
	}

	var result wrapped.Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Report.Year != 2025 || result.Report.TotalMessages != 4 {
		t.Errorf("report year=%d messages=%d, want 2025 and 4", result.Report.Year, result.Report.TotalMessages)
	}
}
