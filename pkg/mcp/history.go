package mcp

import (
	"sync"
	"time"

	"github.com/Sriram-PR/pydoc-parser/pkg/orchestrate"
)

// RunStatus represents the final state of a tool run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusNoResult  RunStatus = "no_result"
	RunStatusFailed    RunStatus = "failed"
)

const defaultHistorySize = 50

// RunRecord is the history entry of one tool run
type RunRecord struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Status       RunStatus `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`
	Rows         int       `json:"rows"`
	SavedPath    string    `json:"saved_path,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// RunHistory keeps the most recent runs, newest last
type RunHistory struct {
	mu      sync.RWMutex
	records []RunRecord
	active  string // mode currently running, "" when idle
	limit   int
}

// NewRunHistory creates a history holding at most limit records
func NewRunHistory(limit int) *RunHistory {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return &RunHistory{limit: limit}
}

// Begin marks mode as running
func (h *RunHistory) Begin(mode orchestrate.Mode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = string(mode)
}

// Finish records the outcome of a run and clears the running marker
func (h *RunHistory) Finish(mode orchestrate.Mode, started time.Time, result *orchestrate.RunResult, err error) RunRecord {
	rec := RunRecord{
		Mode:        string(mode),
		Status:      RunStatusCompleted,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}
	if result != nil {
		rec.ID = result.RunID
		rec.Rows = result.Rows()
		if result.Download != nil {
			rec.SavedPath = result.Download.Path
		}
		if result.NoResult {
			rec.Status = RunStatusNoResult
			if result.Error != nil {
				rec.ErrorMessage = result.Error.Error()
			}
		}
	}
	if err != nil {
		rec.Status = RunStatusFailed
		rec.ErrorMessage = err.Error()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = ""
	h.records = append(h.records, rec)
	if len(h.records) > h.limit {
		h.records = h.records[len(h.records)-h.limit:]
	}
	return rec
}

// Active returns the mode currently running, or ""
func (h *RunHistory) Active() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active
}

// Get retrieves a record by run ID
func (h *RunHistory) Get(id string) (RunRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, rec := range h.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return RunRecord{}, false
}

// List returns all records, oldest first
func (h *RunHistory) List() []RunRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]RunRecord(nil), h.records...)
}
