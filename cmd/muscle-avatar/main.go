package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/dk3682/muscle-avatar/internal/clock"
	"github.com/dk3682/muscle-avatar/internal/config"
	"github.com/dk3682/muscle-avatar/internal/game"
	avatarmcp "github.com/dk3682/muscle-avatar/internal/mcp"
	"github.com/dk3682/muscle-avatar/internal/server"
	"github.com/dk3682/muscle-avatar/internal/session"
	"github.com/dk3682/muscle-avatar/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (empty for defaults + env)")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	ephemeral := flag.Bool("ephemeral", false, "keep the save in memory only")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("Muscle Avatar starting", "version", Version)

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *ephemeral {
		cfg.Storage.Driver = config.DriverMemory
	}

	// Open storage (runs migrations)
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN())
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Create game engine
	rules, err := gameRules(cfg.Game)
	if err != nil {
		log.Error("invalid game rules", "error", err)
		os.Exit(1)
	}
	loc, _ := cfg.Game.Location() // checked by config validation
	store := storage.NewProgressionStore(backend, cfg.Game.Slot, log)
	engine, err := game.New(ctx, store, game.Options{
		Slot:         cfg.Game.Slot,
		Rules:        rules,
		Clock:        clock.System{Location: loc},
		Random:       session.NewRandom(cfg.Game.Seed),
		ResetWindow:  cfg.Game.ResetConfirmWindow,
		ServerFrames: cfg.Game.FrameSource == config.FrameSourceServer,
	}, log)
	if err != nil {
		log.Error("failed to start game", "error", err)
		os.Exit(1)
	}

	frameCtx, stopFrames := context.WithCancel(ctx)
	defer stopFrames()
	if engine.ServerFrames() {
		go engine.RunFrames(frameCtx, cfg.Game.FrameRate)
		log.Info("server frame loop enabled", "rate", cfg.Game.FrameRate)
	}

	// Create server
	srv := server.New(engine, cfg.Auth.APIKey, log)
	if cfg.Metrics.Enabled {
		srv.MountMetrics(cfg.Metrics.Path)
		log.Info("metrics enabled", "path", cfg.Metrics.Path)
	}
	if cfg.MCP.Enabled {
		mcpSrv := avatarmcp.New(avatarmcp.Local{Engine: engine}, Version, log)
		srv.MountMCP("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))
		log.Info("mcp enabled", "path", "/mcp")
	}
	if cfg.Server.StaticDir != "" {
		srv.SetFrontend(os.DirFS(cfg.Server.StaticDir))
		log.Info("serving frontend", "dir", cfg.Server.StaticDir)
	}

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
	stopFrames()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
