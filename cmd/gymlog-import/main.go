package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/gymlog/internal/config"
	"github.com/claude/gymlog/internal/importer"
	"github.com/claude/gymlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to Alpha Progression CSV export (required)")
	userID := flag.String("user", "default", "user ID to own imported sessions")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymlog-import -config config.yaml -path /path/to/export.csv [-user name] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*exportPath)
	if err != nil {
		log.Error("cannot open export file", "path", *exportPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	imp := importer.New(db, *userID, log, *dryRun)
	stats, err := imp.Import(ctx, f)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"sessions_imported", stats.SessionsImported,
		"exercises_imported", stats.ExercisesImported,
		"sets_imported", stats.SetsImported,
		"warmup_sets", stats.WarmupSets,
	)
}
