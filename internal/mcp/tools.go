package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchKnowledgeTool defines the search_knowledge MCP tool.
var searchKnowledgeTool = mcp.NewTool("search_knowledge",
	mcp.WithDescription("Keyword search over the verified university records. Returns matching entries with their relevance score and citation."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Student question or keywords"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 3)"),
	),
)

// semanticSearchTool defines the semantic_search MCP tool.
var semanticSearchTool = mcp.NewTool("semantic_search",
	mcp.WithDescription("Cosine-similarity search over the university records. Returns entries with a confidence score."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
)

// askHelpdeskTool defines the ask_helpdesk MCP tool.
var askHelpdeskTool = mcp.NewTool("ask_helpdesk",
	mcp.WithDescription("Ask the academic assistant a question. The answer is grounded only in the official records and lists its sources."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to answer"),
	),
)
