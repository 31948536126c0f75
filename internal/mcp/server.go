// Package mcp exposes a banter room to agents over the Model Context
// Protocol. Reads go through the server's REST surface; sending holds a
// live WebSocket session so the agent is a real room participant.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config holds the configuration for the MCP server.
type Config struct {
	ServerURL string
	Room      string
	Nick      string
}

// Serve starts the MCP stdio server. It blocks until stdin is closed or a
// signal is received.
func Serve(cfg Config) error {
	rest := NewRESTClient(cfg.ServerURL, cfg.Room)
	session := NewSession(cfg.ServerURL, cfg.Room, cfg.Nick)
	defer session.Close()

	srv := mcpserver.NewMCPServer(
		"banter",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	RegisterTools(srv, rest, session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stdioSrv := mcpserver.NewStdioServer(srv)
	return stdioSrv.Listen(ctx, os.Stdin, os.Stdout)
}
