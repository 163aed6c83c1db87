package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/config"
	"github.com/Sriram-PR/pydoc-parser/pkg/crawler"
	"github.com/Sriram-PR/pydoc-parser/pkg/fetch"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/progress"
	"github.com/Sriram-PR/pydoc-parser/pkg/storage"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// RunResult contains the outcome of one mode run
type RunResult struct {
	Mode     Mode
	RunID    string
	Results  *models.ResultSet       // nil for download and for runs without a result
	Download *crawler.DownloadResult // set by a successful download run
	NoResult bool                    // a page was unavailable; nothing is rendered
	Error    error                   // the unavailability that caused NoResult, or a fatal error
	Duration time.Duration
	Fetches  fetch.Stats // fetch counters for this run only
}

// Rows returns the number of data records, or 0 when there is no result set
func (r *RunResult) Rows() int {
	if r.Results == nil {
		return 0
	}
	return r.Results.Len()
}

// Deps are the collaborators an Orchestrator drives
type Deps struct {
	Fetcher  fetch.PageFetcher
	Cache    storage.CacheAdmin // nil when caching is disabled
	Progress progress.Reporter  // nil disables progress output
}

// statsReporter is implemented by fetchers that count their outcomes
type statsReporter interface {
	Stats() fetch.Stats
}

type runner func(ctx context.Context, c *crawler.Crawler, result *RunResult) error

// Orchestrator runs one mode at a time against the shared fetch service
type Orchestrator struct {
	cfg     *config.AppConfig
	log     *logrus.Entry
	deps    Deps
	runners map[Mode]runner

	runMu sync.Mutex
}

// NewOrchestrator creates an orchestrator after checking the expected-status table
func NewOrchestrator(cfg *config.AppConfig, deps Deps, log *logrus.Entry) (*Orchestrator, error) {
	if err := models.CheckExpectedStatus(); err != nil {
		return nil, err
	}
	if deps.Fetcher == nil {
		return nil, errors.New("orchestrator requires a fetcher")
	}
	return &Orchestrator{
		cfg:  cfg,
		log:  log.WithField("component", "orchestrator"),
		deps: deps,
		runners: map[Mode]runner{
			ModeWhatsNew: func(ctx context.Context, c *crawler.Crawler, r *RunResult) (err error) {
				r.Results, err = c.WhatsNew(ctx)
				return err
			},
			ModeLatestVersions: func(ctx context.Context, c *crawler.Crawler, r *RunResult) (err error) {
				r.Results, err = c.LatestVersions(ctx)
				return err
			},
			ModeDownload: func(ctx context.Context, c *crawler.Crawler, r *RunResult) (err error) {
				r.Download, err = c.Download(ctx)
				return err
			},
			ModePEP: func(ctx context.Context, c *crawler.Crawler, r *RunResult) (err error) {
				r.Results, err = c.PEP(ctx)
				return err
			},
		},
	}, nil
}

// Run executes mode once. Concurrent callers are serialized.
// When clearCache is set the response cache is emptied before any fetch.
// A page that cannot be fetched ends the run with NoResult set and a nil error;
// structural failures (missing tags, no version list) are returned as errors.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, clearCache bool) (*RunResult, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	run, ok := o.runners[mode]
	if !ok {
		_, err := ParseMode(string(mode))
		return nil, err
	}

	result := &RunResult{Mode: mode, RunID: uuid.NewString()}
	runLog := o.log.WithFields(logrus.Fields{"mode": string(mode), "run_id": result.RunID})
	startTime := time.Now()
	runLog.Info("Run started")

	if clearCache {
		if err := o.clearCache(runLog); err != nil {
			return nil, err
		}
	}

	before := o.fetchStats()
	c := crawler.NewCrawler(o.cfg, o.deps.Fetcher, o.deps.Progress, runLog)
	err := run(ctx, c, result)

	result.Duration = time.Since(startTime)
	result.Fetches = diffStats(o.fetchStats(), before)
	result.Error = err
	if err != nil {
		result.Results = nil
		result.Download = nil
		if errors.Is(err, utils.ErrUnavailable) {
			result.NoResult = true
			err = nil
		}
	}

	o.logSummary(runLog, result)
	return result, err
}

// clearCache drops every cached response and blocks until done
func (o *Orchestrator) clearCache(runLog *logrus.Entry) error {
	if o.deps.Cache == nil {
		runLog.Warn("Response cache is disabled, nothing to clear")
		return nil
	}
	if err := o.deps.Cache.Clear(); err != nil {
		return fmt.Errorf("%w: clearing response cache: %w", utils.ErrCache, err)
	}
	runLog.Info("Response cache cleared")
	return nil
}

func (o *Orchestrator) fetchStats() fetch.Stats {
	if s, ok := o.deps.Fetcher.(statsReporter); ok {
		return s.Stats()
	}
	return fetch.Stats{}
}

func diffStats(after, before fetch.Stats) fetch.Stats {
	return fetch.Stats{
		CacheHits:      after.CacheHits - before.CacheHits,
		NetworkFetches: after.NetworkFetches - before.NetworkFetches,
		Failures:       after.Failures - before.Failures,
	}
}

// logSummary logs a summary of the run
func (o *Orchestrator) logSummary(runLog *logrus.Entry, r *RunResult) {
	outcome := "SUCCESS"
	switch {
	case r.NoResult:
		outcome = "NO RESULT"
	case r.Error != nil:
		outcome = "FAILED"
	}

	runLog.Info("============================================")
	runLog.Infof("Run '%s' finished in %v: %s", r.Mode, r.Duration, outcome)
	if r.Mode.ProducesResultSet() {
		runLog.Infof("  Rows: %d", r.Rows())
	} else if r.Download != nil {
		runLog.Infof("  Saved: %s (%d bytes)", r.Download.Path, r.Download.Size)
	}
	runLog.Infof("  Fetches: %d network, %d from cache, %d failed",
		r.Fetches.NetworkFetches, r.Fetches.CacheHits, r.Fetches.Failures)
	if r.Error != nil {
		runLog.Infof("  Error [%s]: %v", utils.CategorizeError(r.Error), r.Error)
	}
	runLog.Info("============================================")
}
