package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/corpus-search/internal/retriever"
	"github.com/bull/corpus-search/internal/storage"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server    *mcp.Server
	store     *storage.Store
	retriever *retriever.Retriever
}

// Config holds server dependencies.
type Config struct {
	Store     *storage.Store
	Retriever *retriever.Retriever
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "corpus-search-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_corpus",
		Description: "Search the indexed corpus semantically. Results are deduplicated so at most one chunk per distinct dedupe-field value is returned; fewer than k results means diversity was exhausted, not an error.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "corpus_status",
		Description: "Describe the loaded corpus index: row count, embedding dimension, and the metadata columns available as dedupe fields.",
	}, makeStatusHandler(cfg.Store))

	return &Server{
		server:    server,
		store:     cfg.Store,
		retriever: cfg.Retriever,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
