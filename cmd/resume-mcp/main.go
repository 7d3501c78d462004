package main

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"alfredoptarigan/resume-analyzer/internal/bootstrap"
	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/mcptools"
)

func main() {
	// stdout carries the MCP protocol.
	log.SetOutput(os.Stderr)

	cfg := config.Load()
	components, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}

	log.Println("🚀 Starting resume-analyzer MCP server")
	srv := mcptools.CreateServer(components.Storage, components.Pipeline)
	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
