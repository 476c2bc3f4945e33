package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/claude/gymlog/internal/ai"
	"github.com/claude/gymlog/internal/coach"
	"github.com/claude/gymlog/internal/config"
	gymlogmcp "github.com/claude/gymlog/internal/mcp"
	"github.com/claude/gymlog/internal/parse"
	"github.com/claude/gymlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode: direct DB access)")
	serverURL := flag.String("server", "", "GymLog server URL (remote mode: everything over REST)")
	apiKey := flag.String("api-key", "", "API key for remote mode")
	defaultUser := flag.String("user", "default", "user id for resource reads")
	flag.Parse()

	// MCP uses stdout for the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var mcpServer *server.MCPServer
	switch {
	case *serverURL != "":
		client := gymlogmcp.NewHTTPClient(*serverURL, *apiKey)
		mcpServer = gymlogmcp.New(client, client, client, *defaultUser, Version, log)
		log.Info("gymlog-mcp starting", "mode", "remote", "server", *serverURL)

	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		var aiOpts []ai.Option
		if cfg.OpenAI.BaseURL != "" {
			aiOpts = append(aiOpts, ai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		aiOpts = append(aiOpts, ai.WithTimeout(cfg.OpenAI.Timeout()))

		aiClient, err := ai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.TranscribeModel, aiOpts...)
		if err != nil {
			log.Error("failed to create AI client", "error", err)
			os.Exit(1)
		}

		// Tool handlers log errors themselves; silence the pipeline's own logs
		// so they don't interleave with stderr diagnostics.
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		parser := parse.NewParser(aiClient, quiet)
		coachSvc := coach.New(aiClient, db, quiet)

		mcpServer = gymlogmcp.New(db, parser, coachSvc, *defaultUser, Version, log)
		log.Info("gymlog-mcp starting", "mode", "local")

	default:
		log.Error("either -config (local mode) or -server (remote mode) is required")
		os.Exit(1)
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
