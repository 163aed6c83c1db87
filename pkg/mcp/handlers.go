package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Sriram-PR/pydoc-parser/pkg/orchestrate"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// modeHandler returns the tool handler that runs mode synchronously
func (s *Server) modeHandler(mode orchestrate.Mode) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		clearCache := request.GetBool("clear_cache", false)
		started := time.Now()

		s.history.Begin(mode)
		result, err := s.cfg.Runner.Run(ctx, mode, clearCache)
		rec := s.history.Finish(mode, started, result, err)

		if err != nil {
			s.log.WithField("mode", string(mode)).Errorf("Tool run failed: %v", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed [%s]: %v", mode, utils.CategorizeError(err), err)), nil
		}
		return mcp.NewToolResultText(formatJSON(runPayload(rec, result))), nil
	}
}

// runPayload builds the JSON body describing a finished run
func runPayload(rec RunRecord, result *orchestrate.RunResult) map[string]interface{} {
	payload := map[string]interface{}{
		"run_id":      rec.ID,
		"mode":        rec.Mode,
		"status":      rec.Status,
		"duration_ms": result.Duration.Milliseconds(),
		"fetches": map[string]int64{
			"network":    result.Fetches.NetworkFetches,
			"from_cache": result.Fetches.CacheHits,
			"failed":     result.Fetches.Failures,
		},
	}
	if result.NoResult {
		payload["message"] = "a page was unavailable, no result for this run"
		if result.Error != nil {
			payload["error"] = result.Error.Error()
		}
		return payload
	}
	if result.Results != nil {
		rows := make([]map[string]string, 0, result.Results.Len())
		for _, r := range result.Results.Rows {
			row := make(map[string]string, len(r))
			for i, field := range r {
				row[result.Results.Header[i]] = field
			}
			rows = append(rows, row)
		}
		payload["header"] = result.Results.Header
		payload["rows"] = rows
	}
	if d := result.Download; d != nil {
		payload["download"] = map[string]interface{}{
			"url":    d.URL,
			"path":   d.Path,
			"bytes":  d.Size,
			"sha256": d.SHA256,
		}
	}
	return payload
}

// handleRecentRuns handles the recent_runs tool
func (s *Server) handleRecentRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if runID := request.GetString("run_id", ""); runID != "" {
		rec, ok := s.history.Get(runID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("run not found: %s", runID)), nil
		}
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{"run": rec})), nil
	}

	runs := s.history.List()
	result := map[string]interface{}{
		"runs":       runs,
		"total_runs": len(runs),
	}
	if active := s.history.Active(); active != "" {
		result["running"] = active
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// formatJSON formats data as an indented JSON string
func formatJSON(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
