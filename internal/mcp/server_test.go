package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/helpdesk/internal/chat"
	"github.com/ziadkadry99/helpdesk/internal/db"
	"github.com/ziadkadry99/helpdesk/internal/embeddings"
	"github.com/ziadkadry99/helpdesk/internal/gateway"
	"github.com/ziadkadry99/helpdesk/internal/knowledge"
	"github.com/ziadkadry99/helpdesk/internal/prompt"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
	"github.com/ziadkadry99/helpdesk/internal/search"
	"github.com/ziadkadry99/helpdesk/internal/vectordb"
)

// mockGateway answers every prompt with a fixed text.
type mockGateway struct{ calls int }

func (m *mockGateway) Complete(_ context.Context, _ string, entries []retrieval.ScoredEntry) gateway.Response {
	m.calls++
	return gateway.Response{Text: "Convocation is in March 2025.", Sources: retrieval.Citations(entries), OK: true}
}

func newTestServer(t *testing.T, withIndex bool) (*Server, *querylog.Store, *mockGateway) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	store := querylog.NewStore(database)
	rec := querylog.NewRecorder(store, nil)
	kb := knowledge.Builtin()
	gw := &mockGateway{}

	deps := Deps{
		Store: kb,
		Pipeline: chat.Pipeline{
			Retriever: retrieval.New(kb, 0),
			Composer:  prompt.NewComposer(prompt.DefaultInstitution),
			Gateway:   gw,
			Recorder:  rec,
		},
		Recorder: rec,
	}
	if withIndex {
		ix, err := vectordb.Build(context.Background(), embeddings.NewTFIDF(), kb.ListEntries(), nil)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		deps.Search = search.NewService(ix, rec, nil, 0, 0.1)
	}
	return NewServer(deps), store, gw
}

func callArgs(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// extractText gets the text content from a CallToolResult.
func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{searchKnowledgeTool, "search_knowledge"},
		{semanticSearchTool, "semantic_search"},
		{askHelpdeskTool, "ask_helpdesk"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleSearchKnowledge(t *testing.T) {
	srv, store, _ := newTestServer(t, false)
	ctx := context.Background()

	t.Run("ranked results", func(t *testing.T) {
		result, err := srv.handleSearchKnowledge(ctx, callArgs(map[string]any{"query": "semester fees structure"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(result)
		if !strings.Contains(text, "ID: fee-001") || !strings.Contains(text, "Score: 4") {
			t.Errorf("expected fee-001 with score 4, got:\n%s", text)
		}
	})

	t.Run("limit", func(t *testing.T) {
		result, _ := srv.handleSearchKnowledge(ctx, callArgs(map[string]any{"query": "semester fees structure", "limit": 1}))
		if got := extractText(result); !strings.HasPrefix(got, "Found 1 record(s)") {
			t.Errorf("expected a single record, got:\n%s", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		result, _ := srv.handleSearchKnowledge(ctx, callArgs(map[string]any{"query": "hostel curfew"}))
		if result.IsError || !strings.Contains(extractText(result), "No matching records") {
			t.Errorf("unexpected result: %v", result.Content)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		result, _ := srv.handleSearchKnowledge(ctx, callArgs(map[string]any{}))
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	entries, err := store.Query(ctx, querylog.Filter{Source: querylog.SourceMCP})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("logged %d queries, want 3", len(entries))
	}
}

func TestHandleSemanticSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("indexed", func(t *testing.T) {
		srv, _, _ := newTestServer(t, true)
		result, err := srv.handleSemanticSearch(ctx, callArgs(map[string]any{"query": "admission fees"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := extractText(result)
		if result.IsError || !strings.Contains(text, "Confidence:") {
			t.Errorf("unexpected result:\n%s", text)
		}
	})

	t.Run("no index", func(t *testing.T) {
		srv, _, _ := newTestServer(t, false)
		result, _ := srv.handleSemanticSearch(ctx, callArgs(map[string]any{"query": "admission fees"}))
		if !result.IsError {
			t.Error("expected error without an index")
		}
	})
}

func TestHandleAskHelpdesk(t *testing.T) {
	srv, _, gw := newTestServer(t, false)
	ctx := context.Background()

	t.Run("answered with sources", func(t *testing.T) {
		result, err := srv.handleAskHelpdesk(ctx, callArgs(map[string]any{"question": "When is the convocation?"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := extractText(result)
		if !strings.HasPrefix(text, "Convocation is in March 2025.") || !strings.Contains(text, "Sources:\n- ") {
			t.Errorf("unexpected answer:\n%s", text)
		}
	})

	t.Run("refusal skips generation", func(t *testing.T) {
		before := gw.calls
		result, _ := srv.handleAskHelpdesk(ctx, callArgs(map[string]any{"question": "hostel curfew"}))
		if got := extractText(result); got != prompt.RefusalText {
			t.Errorf("got %q, want refusal", got)
		}
		if gw.calls != before {
			t.Error("gateway called for a refused question")
		}
	})

	t.Run("blank question", func(t *testing.T) {
		result, _ := srv.handleAskHelpdesk(ctx, callArgs(map[string]any{"question": "  "}))
		if !result.IsError {
			t.Error("expected error for blank question")
		}
	})
}
