// Package mcp exposes the avatar's progress to MCP clients.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Muscle Avatar", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Muscle Avatar training game. Read the avatar's stats, level, fatigue and streak, inspect the set in progress, and preview how a set would pay out. Read-only: play happens in the game view."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolGetSetSession, Handler: h.getSetSession},
		server.ServerTool{Tool: toolPreviewGain, Handler: h.previewGain},
		server.ServerTool{Tool: toolGetXPTable, Handler: h.getXPTable},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSave, Handler: h.save},
		server.ServerResource{Resource: resCatalog, Handler: h.catalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resSave = mcp.NewResource(
	"muscleavatar://save",
	"Save Record",
	mcp.WithResourceDescription("The full save record (profile and progress) as exported for backup"),
	mcp.WithMIMEType("application/json"),
)

var resCatalog = mcp.NewResource(
	"muscleavatar://catalog",
	"Appearance Catalog",
	mcp.WithResourceDescription("Appearance fields and their option labels, in editor order"),
	mcp.WithMIMEType("application/json"),
)
