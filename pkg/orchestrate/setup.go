package orchestrate

import (
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/config"
	"github.com/Sriram-PR/pydoc-parser/pkg/fetch"
	"github.com/Sriram-PR/pydoc-parser/pkg/progress"
	"github.com/Sriram-PR/pydoc-parser/pkg/storage"
)

// Service is an Orchestrator together with the resources it owns
type Service struct {
	*Orchestrator
	Fetcher *fetch.Fetcher
	cache   *storage.BadgerCache
}

// NewService wires the fetch service from cfg: HTTP client, response cache, politeness delay
// and robots.txt gate. Close must be called to release the cache.
func NewService(cfg *config.AppConfig, reporter progress.Reporter, log *logrus.Entry) (*Service, error) {
	client := fetch.NewClient(cfg.HTTPClientSettings, log)

	var opts fetch.Options
	svc := &Service{}
	if cfg.Cache.Disabled {
		log.Info("Response cache disabled")
	} else {
		cache, err := storage.NewBadgerCache(cfg.CachePath(), cfg.Cache.TTL, log.WithField("component", "cache"))
		if err != nil {
			return nil, err
		}
		svc.cache = cache
		opts.Cache = cache
	}
	if cfg.RequestDelay > 0 {
		opts.Limiter = fetch.NewHostLimiter(cfg.RequestDelay, log)
	}
	if cfg.RespectRobotsTxt {
		opts.Robots = fetch.NewRobotsGate(client, cfg.UserAgent, log)
	}

	svc.Fetcher = fetch.NewFetcher(client, cfg, opts, log.WithField("component", "fetcher"))

	deps := Deps{Fetcher: svc.Fetcher, Progress: reporter}
	if svc.cache != nil {
		deps.Cache = svc.cache
	}
	orch, err := NewOrchestrator(cfg, deps, log)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Orchestrator = orch
	return svc, nil
}

// Close releases the response cache
func (s *Service) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}
