package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sriram-PR/pydoc-parser/pkg/mcp"
	"github.com/Sriram-PR/pydoc-parser/pkg/orchestrate"
	"github.com/Sriram-PR/pydoc-parser/pkg/progress"
)

func newMcpCmd(global *globalOptions, stderr io.Writer, exitCode *int) *cobra.Command {
	var transport string
	var port int

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start an MCP (Model Context Protocol) server exposing the modes as tools",
		Long: `Start an MCP (Model Context Protocol) server for AI tool integration.

Available MCP Tools:
  whats_new          List "What's New" articles
  latest_versions    List documentation versions
  pep_status_counts  Count PEPs by status
  download_docs      Download the A4 PDF archive
  recent_runs        Show recent tool runs

Examples:
  # Start with stdio transport
  pydoc-parser mcp-server

  # Start with SSE transport on port 8080
  pydoc-parser mcp-server --transport sse --port 8080`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			*exitCode = doMcpServer(*global, transport, port, stderr)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type (stdio, sse)")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port (for sse transport)")
	return cmd
}

// doMcpServer is the testable implementation of the MCP server
func doMcpServer(global globalOptions, transport string, port int, stderr io.Writer) int {
	if transport != "stdio" && transport != "sse" {
		fmt.Fprintf(stderr, "Unknown transport: %s (supported: stdio, sse)\n", transport)
		return 1
	}

	cfg, warnings, err := loadConfig(global)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	// MCP protocol uses stdout, logs go to stderr
	logger, closer, err := newLogger(cfg, global.logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()
	for _, w := range warnings {
		logger.Warn(w)
	}

	svc, err := orchestrate.NewService(cfg, progress.Nop{}, logrus.NewEntry(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Error creating parser service: %v\n", err)
		return 1
	}
	defer svc.Close()

	server, err := mcp.NewServer(&mcp.ServerConfig{
		Runner:    svc,
		Transport: transport,
		Port:      port,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error creating MCP server: %v\n", err)
		return 1
	}

	logger.Infof("Starting MCP server (transport: %s)", transport)
	if err := server.Run(); err != nil {
		fmt.Fprintf(stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
