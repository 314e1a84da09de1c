package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
	"github.com/ziadkadry99/helpdesk/internal/search"
)

const defaultKeywordLimit = 3

// handleSearchKnowledge ranks entries by keyword overlap.
func (s *Server) handleSearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := request.GetInt("limit", defaultKeywordLimit)
	if limit <= 0 {
		limit = defaultKeywordLimit
	}

	start := time.Now()
	results := retrieval.Retrieve(query, s.deps.Store.ListEntries(), limit)

	outcome := querylog.OutcomeMatched
	if len(results) == 0 {
		outcome = querylog.OutcomeNoMatch
	}
	s.deps.Recorder.Record(ctx, querylog.Entry{
		Timestamp:         start,
		Query:             query,
		CategoriesMatched: retrieval.Categories(results),
		ConfidenceScore:   querylog.KeywordConfidence(query, results),
		Source:            querylog.SourceMCP,
		Outcome:           outcome,
		ElapsedMS:         time.Since(start).Milliseconds(),
	})

	if len(results) == 0 {
		return mcp.NewToolResultText("No matching records found."), nil
	}
	return mcp.NewToolResultText(formatKeywordResults(results)), nil
}

// handleSemanticSearch runs a cosine-similarity query against the index.
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if s.deps.Search == nil {
		return mcp.NewToolResultError("semantic search is not available. Run `helpdesk index` to build the index."), nil
	}

	resp, err := s.deps.Search.QueryFrom(ctx, query, querylog.SourceMCP)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(resp.Context) == 0 {
		return mcp.NewToolResultText("No matching records found."), nil
	}
	return mcp.NewToolResultText(formatSemanticResults(resp.Context)), nil
}

// handleAskHelpdesk answers one question on a fresh conversation.
func (s *Server) handleAskHelpdesk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	c := s.deps.Pipeline.NewController(querylog.SourceMCP)
	reply, err := c.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(reply.Text)
	if len(reply.Sources) > 0 {
		sb.WriteString("\n\nSources:\n")
		for _, src := range reply.Sources {
			sb.WriteString("- " + src + "\n")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatKeywordResults(results []retrieval.ScoredEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d record(s):\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		fmt.Fprintf(&sb, "ID: %s\nCategory: %s\nScore: %d\nSource: %s\n\n%s\n",
			r.Entry.ID, r.Entry.Category, r.Score, r.Entry.Citation(), r.Entry.Content)
	}
	return sb.String()
}

func formatSemanticResults(results []search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d record(s):\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		fmt.Fprintf(&sb, "ID: %s\nCategory: %s\nConfidence: %.1f%%\nSource: %s\n\n%s\n",
			r.ID, r.Category, r.ConfidenceScore*100, r.Citation(), r.Content)
	}
	return sb.String()
}
