package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
// defaultUser scopes resource reads, which carry no arguments.
func New(ds DataSource, parser WorkoutParser, coach CoachAsker, defaultUser, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GymLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("GymLog workout tracking server. Parse spoken or typed workout descriptions into structured data, log exercises with their sets, and review past sessions."),
	)

	if defaultUser == "" {
		defaultUser = "default"
	}
	h := &handlers{ds: ds, parser: parser, coach: coach, defaultUser: defaultUser, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolParseWorkout, Handler: h.parseWorkout},
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolGetWorkoutSessions, Handler: h.getWorkoutSessions},
		server.ServerTool{Tool: toolDeleteWorkoutSession, Handler: h.deleteWorkoutSession},
		server.ServerTool{Tool: toolAskCoach, Handler: h.askCoach},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds          DataSource
	parser      WorkoutParser
	coach       CoachAsker
	defaultUser string
	log         *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"gymlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The default user's most recent workout sessions with exercises and sets"),
	mcp.WithMIMEType("application/json"),
)
