// Command muscle-avatar-mcp serves the MCP tools over stdio against a running
// Muscle Avatar server, for desktop MCP clients.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	avatarmcp "github.com/dk3682/muscle-avatar/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", os.Getenv("MUSCLEAVATAR_URL"), "base URL of the game server (e.g. http://muscle-avatar)")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: muscle-avatar-mcp -server http://host:port\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := avatarmcp.New(avatarmcp.NewHTTPClient(*serverURL), Version, log)
	log.Info("mcp stdio server starting", "server", *serverURL)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
