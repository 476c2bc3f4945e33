package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/gymlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "GymLog server URL (e.g. https://gymlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", "", "API key for the GymLog server")
	notesPath := flag.String("path", "", "directory containing recorded voice notes")
	userID := flag.String("user", "default", "user id to log workouts under")
	group := flag.Bool("group", false, "log all notes from this run into one workout session")
	dryRun := flag.Bool("dry-run", false, "scan and report but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *notesPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymlog-upload -server <URL> -api-key <key> -path <notes dir> [-user ID] [-group] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if (*serverURL == "" || *apiKey == "") && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*notesPath)
	if err != nil || !info.IsDir() {
		log.Error("notes directory not found", "path", *notesPath)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".gymlog-upload")

	state, err := upload.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode — notes will be scanned but not sent")
	}

	client := upload.NewClient(*serverURL, *apiKey)

	uploader := upload.New(client, state, *notesPath, *userID, *group, *dryRun, log)
	stats, err := uploader.Run()
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Notes total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Notes uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Notes skipped:    %d (already logged)\n", stats.FilesSkipped)
	fmt.Printf("  Notes errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Exercises logged: %d\n", stats.ExercisesLogged)
	fmt.Printf("  Sets logged:      %d\n", stats.SetsLogged)

	if len(stats.UnparsedNotes) > 0 {
		fmt.Printf("\n  Notes that did not parse (re-record these):\n")
		for _, n := range stats.UnparsedNotes {
			fmt.Printf("    - %s\n", n)
		}
	}
	fmt.Println()
}
