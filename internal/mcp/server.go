// Package mcp exposes the helpdesk to AI agents over the Model Context
// Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/helpdesk/internal/chat"
	"github.com/ziadkadry99/helpdesk/internal/knowledge"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the services behind the tools. Search may be nil when no
// semantic index is available.
type Deps struct {
	Store    knowledge.Store
	Search   *search.Service
	Pipeline chat.Pipeline
	Recorder *querylog.Recorder
}

// Server wraps an MCP server that exposes knowledge base tools.
type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"helpdesk",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchKnowledgeTool, s.handleSearchKnowledge)
	s.mcp.AddTool(semanticSearchTool, s.handleSemanticSearch)
	s.mcp.AddTool(askHelpdeskTool, s.handleAskHelpdesk)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
