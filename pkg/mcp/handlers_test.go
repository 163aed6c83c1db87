package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/pydoc-parser/pkg/crawler"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/orchestrate"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// fakeRunner returns canned results per mode and records calls
type fakeRunner struct {
	results map[orchestrate.Mode]*orchestrate.RunResult
	err     error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, mode orchestrate.Mode, clearCache bool) (*orchestrate.RunResult, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%v", mode, clearCache))
	return f.results[mode], f.err
}

func newTestServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s, err := NewServer(&ServerConfig{Runner: runner, Transport: "stdio", Logger: logger})
	require.NoError(t, err)
	return s
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func pepRun() *orchestrate.RunResult {
	rs := models.NewResultSet("Status", "Count")
	rs.Rows = []models.Record{{"Final", "2"}, {"Total", "2"}}
	return &orchestrate.RunResult{
		Mode:     orchestrate.ModePEP,
		RunID:    "run-1",
		Results:  rs,
		Duration: 1500 * time.Millisecond,
	}
}

func TestNewServer_RequiresRunner(t *testing.T) {
	_, err := NewServer(&ServerConfig{})
	assert.Error(t, err)
}

func TestModeHandler_ReturnsRows(t *testing.T) {
	runner := &fakeRunner{results: map[orchestrate.Mode]*orchestrate.RunResult{orchestrate.ModePEP: pepRun()}}
	s := newTestServer(t, runner)

	res, err := s.modeHandler(orchestrate.ModePEP)(context.Background(), callTool("pep_status_counts", map[string]any{"clear_cache": true}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"pep:true"}, runner.calls)

	var payload struct {
		RunID      string              `json:"run_id"`
		Status     string              `json:"status"`
		DurationMS int64               `json:"duration_ms"`
		Header     []string            `json:"header"`
		Rows       []map[string]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
	assert.Equal(t, "run-1", payload.RunID)
	assert.Equal(t, "completed", payload.Status)
	assert.Equal(t, int64(1500), payload.DurationMS)
	assert.Equal(t, []string{"Status", "Count"}, payload.Header)
	assert.Equal(t, []map[string]string{{"Status": "Final", "Count": "2"}, {"Status": "Total", "Count": "2"}}, payload.Rows)
}

func TestModeHandler_NoResult(t *testing.T) {
	run := &orchestrate.RunResult{
		Mode:     orchestrate.ModeWhatsNew,
		RunID:    "run-2",
		NoResult: true,
		Error:    fmt.Errorf("%w: 404", utils.ErrUnavailable),
	}
	s := newTestServer(t, &fakeRunner{results: map[orchestrate.Mode]*orchestrate.RunResult{orchestrate.ModeWhatsNew: run}})

	res, err := s.modeHandler(orchestrate.ModeWhatsNew)(context.Background(), callTool("whats_new", nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, `"status": "no_result"`)
	assert.NotContains(t, text, `"rows"`)

	rec, ok := s.history.Get("run-2")
	require.True(t, ok)
	assert.Equal(t, RunStatusNoResult, rec.Status)
}

func TestModeHandler_Download(t *testing.T) {
	run := &orchestrate.RunResult{
		Mode:     orchestrate.ModeDownload,
		RunID:    "run-3",
		Download: &crawler.DownloadResult{URL: "https://docs.python.org/3/archives/a-pdf-a4.zip", Path: "downloads/a-pdf-a4.zip", Size: 3, SHA256: "abc"},
	}
	s := newTestServer(t, &fakeRunner{results: map[orchestrate.Mode]*orchestrate.RunResult{orchestrate.ModeDownload: run}})

	res, err := s.modeHandler(orchestrate.ModeDownload)(context.Background(), callTool("download_docs", nil))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, `"path": "downloads/a-pdf-a4.zip"`)
	assert.Contains(t, text, `"sha256": "abc"`)

	rec, ok := s.history.Get("run-3")
	require.True(t, ok)
	assert.Equal(t, "downloads/a-pdf-a4.zip", rec.SavedPath)
}

func TestModeHandler_FatalError(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("%w: no sidebar list", utils.ErrNoVersionsFound)}
	s := newTestServer(t, runner)

	res, err := s.modeHandler(orchestrate.ModeLatestVersions)(context.Background(), callTool("latest_versions", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Content_NoVersions")

	runs := s.history.List()
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusFailed, runs[0].Status)
	assert.Empty(t, s.history.Active())
}

func TestHandleRecentRuns(t *testing.T) {
	s := newTestServer(t, &fakeRunner{results: map[orchestrate.Mode]*orchestrate.RunResult{orchestrate.ModePEP: pepRun()}})
	_, err := s.modeHandler(orchestrate.ModePEP)(context.Background(), callTool("pep_status_counts", nil))
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		res, err := s.handleRecentRuns(context.Background(), callTool("recent_runs", nil))
		require.NoError(t, err)
		assert.Contains(t, resultText(t, res), `"total_runs": 1`)
	})

	t.Run("by id", func(t *testing.T) {
		res, err := s.handleRecentRuns(context.Background(), callTool("recent_runs", map[string]any{"run_id": "run-1"}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, resultText(t, res), `"rows": 2`)
	})

	t.Run("unknown id", func(t *testing.T) {
		res, err := s.handleRecentRuns(context.Background(), callTool("recent_runs", map[string]any{"run_id": "nope"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestRunHistory_Limit(t *testing.T) {
	h := NewRunHistory(2)
	for i := range 3 {
		h.Begin(orchestrate.ModePEP)
		assert.Equal(t, "pep", h.Active())
		h.Finish(orchestrate.ModePEP, time.Now(), &orchestrate.RunResult{RunID: fmt.Sprintf("r%d", i)}, nil)
	}
	runs := h.List()
	require.Len(t, runs, 2)
	assert.Equal(t, "r1", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)

	_, ok := h.Get("r0")
	assert.False(t, ok)
}

func TestRunHistory_FailedBeforeRun(t *testing.T) {
	h := NewRunHistory(0)
	rec := h.Finish(orchestrate.ModeDownload, time.Now(), nil, errors.New("clearing cache"))
	assert.Equal(t, RunStatusFailed, rec.Status)
	assert.Equal(t, "clearing cache", rec.ErrorMessage)
	assert.Empty(t, rec.ID)
}
