// Command muscle-avatar-restore writes an exported save back into storage,
// for restoring a backup while the server is stopped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/dk3682/muscle-avatar/internal/config"
	"github.com/dk3682/muscle-avatar/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	backupPath := flag.String("file", "", "exported save JSON (required)")
	slot := flag.String("slot", "", "save slot to write (defaults to game.slot)")
	dryRun := flag.Bool("dry-run", false, "validate the backup without writing it")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	_ = godotenv.Load()

	if *backupPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: muscle-avatar-restore -config config.yaml -file save.json [-slot name] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*backupPath)
	if err != nil {
		log.Error("failed to read backup", "path", *backupPath, "error", err)
		os.Exit(1)
	}

	if *dryRun {
		st, err := storage.Decode(data)
		if err == nil {
			err = st.Validate()
		}
		if err != nil {
			log.Error("backup is invalid", "error", err)
			os.Exit(1)
		}
		log.Info("DRY RUN: backup is valid", "name", st.Profile.Name, "level", st.Progress.Level, "total_sets", st.Progress.TotalSets)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *slot == "" {
		*slot = cfg.Game.Slot
	}
	if cfg.Storage.Driver == config.DriverMemory {
		log.Error("nothing to restore into: storage.driver is memory")
		os.Exit(1)
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN())
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	st, err := storage.NewProgressionStore(backend, *slot, log).Import(ctx, data)
	if err != nil {
		log.Error("restore failed", "error", err)
		os.Exit(1)
	}
	log.Info("restore complete",
		"slot", *slot,
		"name", st.Profile.Name,
		"level", st.Progress.Level,
		"total_sets", st.Progress.TotalSets,
	)
}
