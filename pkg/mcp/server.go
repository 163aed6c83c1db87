package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/orchestrate"
)

const (
	serverName    = "pydoc-parser"
	serverVersion = "1.0.0"
)

// Runner executes one mode. *orchestrate.Orchestrator serializes its runs.
type Runner interface {
	Run(ctx context.Context, mode orchestrate.Mode, clearCache bool) (*orchestrate.RunResult, error)
}

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	Runner    Runner
	Transport string // "stdio" or "sse"
	Port      int
	Logger    *logrus.Logger
}

// Server exposes the parser modes as MCP tools
type Server struct {
	mcpServer *server.MCPServer
	cfg       *ServerConfig
	log       *logrus.Entry
	history   *RunHistory
}

// modeTools maps tool names to the modes they run
var modeTools = []struct {
	name        string
	mode        orchestrate.Mode
	description string
}{
	{"whats_new", orchestrate.ModeWhatsNew, "List every 'What's New in Python' article with its title and editors"},
	{"latest_versions", orchestrate.ModeLatestVersions, "List the Python documentation versions with their release status"},
	{"pep_status_counts", orchestrate.ModePEP, "Count Python Enhancement Proposals by the status stated on each proposal page, with a Total row"},
	{"download_docs", orchestrate.ModeDownload, "Download the A4 PDF documentation archive and report where it was saved"},
}

// NewServer creates a new MCP server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("Runner is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		cfg:       cfg,
		log:       cfg.Logger.WithField("component", "mcp"),
		history:   NewRunHistory(defaultHistorySize),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	for _, t := range modeTools {
		tool := mcp.NewTool(t.name,
			mcp.WithDescription(t.description),
			mcp.WithBoolean("clear_cache",
				mcp.Description("Drop the response cache before fetching"),
			),
		)
		s.mcpServer.AddTool(tool, s.modeHandler(t.mode))
	}

	recentRunsTool := mcp.NewTool("recent_runs",
		mcp.WithDescription("List recent tool runs, or one run when run_id is given"),
		mcp.WithString("run_id",
			mcp.Description("Run ID returned by a previous tool call"),
		),
	)
	s.mcpServer.AddTool(recentRunsTool, s.handleRecentRuns)

	s.log.Infof("Registered %d MCP tools", len(modeTools)+1)
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}
