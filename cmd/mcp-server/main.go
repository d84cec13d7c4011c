// Package main provides the MCP server entry point for corpus search.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bull/corpus-search/internal/embedding"
	mcpserver "github.com/bull/corpus-search/internal/mcp"
	"github.com/bull/corpus-search/internal/retriever"
	"github.com/bull/corpus-search/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Configuration from environment
	indexDir := getEnv("CORPUS_INDEX_DIR", "data/index")
	port := getEnv("PORT", "8080")

	// Load the prebuilt index and metadata pair
	store, err := storage.Load(indexDir)
	if err != nil {
		log.Fatalf("failed to load index from %s: %v", indexDir, err)
	}
	log.Printf("Loaded index: %d chunks, dimension %d", store.Len(), store.Dimension())

	// Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Store:     store,
		Retriever: retriever.New(store, embedder, nil),
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()

	// Health endpoint (for deployment health checks)
	healthHandler := mcpserver.NewHealthHandler(store)
	mux.HandleFunc("/health", healthHandler)

	// MCP HTTP endpoint (for remote client connections)
	mcpHTTPHandler := mcpserver.NewHTTPHandler(server, nil)
	mux.Handle("/mcp", mcpHTTPHandler)

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		// HTTP mode: serve MCP over HTTP for remote clients
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting Corpus Search MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
