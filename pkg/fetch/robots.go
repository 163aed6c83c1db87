package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

const maxRobotsBytes = 512 << 10

// RobotsGate checks URLs against each host's robots.txt, fetched once per host
type RobotsGate struct {
	client    *http.Client
	userAgent string
	cache     map[string]*robotstxt.RobotsData // host -> parsed data (nil = allow all)
	mu        sync.Mutex
	log       *logrus.Entry
}

// NewRobotsGate creates a RobotsGate
func NewRobotsGate(client *http.Client, userAgent string, log *logrus.Entry) *RobotsGate {
	return &RobotsGate{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
		log:       log,
	}
}

// Allowed reports whether the user agent may fetch target.
// Any failure to obtain robots.txt allows the request.
func (g *RobotsGate) Allowed(ctx context.Context, target *url.URL) bool {
	data := g.robotsFor(ctx, target)
	if data == nil {
		return true
	}
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return data.TestAgent(path, g.userAgent)
}

func (g *RobotsGate) robotsFor(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	host := target.Host
	g.mu.Lock()
	data, found := g.cache[host]
	g.mu.Unlock()
	if found {
		return data
	}

	data = g.fetch(ctx, target)
	g.mu.Lock()
	g.cache[host] = data
	g.mu.Unlock()
	return data
}

func (g *RobotsGate) fetch(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	robotsURL := (&url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}).String()
	robotsLog := g.log.WithField("robots_url", robotsURL)
	robotsLog.Info("Fetching robots.txt...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		robotsLog.Errorf("Error creating request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		robotsLog.Warnf("Fetching robots.txt failed, allowing all: %v", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		robotsLog.Warnf("Error reading robots.txt body, allowing all: %v", err)
		return nil
	}

	// 4xx means allow all, 5xx means disallow all
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		robotsLog.Warnf("Error parsing robots.txt, allowing all: %v", err)
		return nil
	}
	robotsLog.WithField("status_code", resp.StatusCode).Debug("robots.txt loaded")
	return data
}
