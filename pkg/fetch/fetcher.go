package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/config"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/parse"
	"github.com/Sriram-PR/pydoc-parser/pkg/storage"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// PageFetcher retrieves a URL as a Page.
// Every failure is returned wrapping utils.ErrUnavailable.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*models.Page, error)
}

// Stats counts fetch outcomes since the fetcher was created
type Stats struct {
	CacheHits      int64
	NetworkFetches int64
	Failures       int64
}

// Options holds the optional collaborators of a Fetcher. Nil fields are skipped.
type Options struct {
	Cache   storage.ResponseCache
	Limiter *HostLimiter
	Robots  *RobotsGate
}

// Fetcher is the single-attempt fetch service: cache lookup, robots check, politeness delay,
// one GET, then cache store. It never retries.
type Fetcher struct {
	client *http.Client
	cfg    *config.AppConfig
	opts   Options
	log    *logrus.Entry

	cacheHits      atomic.Int64
	networkFetches atomic.Int64
	failures       atomic.Int64
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, cfg *config.AppConfig, opts Options, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
		opts:   opts,
		log:    log,
	}
}

// Stats returns a snapshot of the fetch counters
func (f *Fetcher) Stats() Stats {
	return Stats{
		CacheHits:      f.cacheHits.Load(),
		NetworkFetches: f.networkFetches.Load(),
		Failures:       f.failures.Load(),
	}
}

// Fetch implements PageFetcher. Content is always decoded as UTF-8 by consumers regardless of
// any charset the server declares.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.Page, error) {
	reqLog := f.log.WithField("url", rawURL)

	cacheKey, parsed, err := parse.ParseAndNormalize(rawURL)
	if err != nil {
		return nil, f.fail(reqLog, rawURL, fmt.Errorf("%w: invalid URL: %w", utils.ErrParsing, err))
	}

	// --- Cache Lookup ---
	if f.opts.Cache != nil {
		cached, found, errCache := f.opts.Cache.Get(cacheKey)
		if errCache != nil {
			reqLog.Warnf("Cache lookup failed, fetching from network: %v", errCache)
		} else if found {
			f.cacheHits.Add(1)
			reqLog.Debug("Served from cache")
			return &models.Page{
				URL:       cached.URL,
				Content:   cached.Body,
				Encoding:  models.ForcedEncoding,
				FromCache: true,
			}, nil
		}
	}

	// --- Politeness ---
	if f.opts.Robots != nil && !f.opts.Robots.Allowed(ctx, parsed) {
		return nil, f.fail(reqLog, rawURL, utils.ErrRobotsDisallowed)
	}
	if f.opts.Limiter != nil {
		if err := f.opts.Limiter.Wait(ctx, parsed.Host); err != nil {
			return nil, f.fail(reqLog, rawURL, err)
		}
	}

	// --- Single Attempt ---
	f.networkFetches.Add(1)
	body, finalURL, statusCode, err := f.get(ctx, rawURL, reqLog)
	if err != nil {
		return nil, f.fail(reqLog, rawURL, err)
	}

	if f.opts.Cache != nil {
		entry := &models.CachedResponse{URL: finalURL, StatusCode: statusCode, Body: body, FetchedAt: time.Now()}
		if errCache := f.opts.Cache.Put(cacheKey, entry); errCache != nil {
			reqLog.Warnf("Failed to cache response: %v", errCache)
		}
	}

	return &models.Page{
		URL:      finalURL,
		Content:  body,
		Encoding: models.ForcedEncoding,
	}, nil
}

// get performs one GET and classifies the status. Only 2xx responses yield a body.
func (f *Fetcher) get(ctx context.Context, rawURL string, reqLog *logrus.Entry) ([]byte, string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", 0, err
	}
	defer resp.Body.Close()

	statusCode := resp.StatusCode
	resLog := reqLog.WithFields(logrus.Fields{"status_code": statusCode, "status": resp.Status})

	switch {
	case statusCode >= 200 && statusCode < 300:
		resLog.Debug("Successfully fetched")
	case statusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, "", statusCode, fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, statusCode, resp.Status)
	case statusCode >= 400:
		io.Copy(io.Discard, resp.Body)
		return nil, "", statusCode, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, resp.Status)
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, "", statusCode, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, statusCode, resp.Status)
	}

	limit := f.cfg.MaxBodyBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", statusCode, fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}
	if int64(len(body)) > limit {
		return nil, "", statusCode, fmt.Errorf("%w: body exceeds %d bytes", utils.ErrResponseBodyRead, limit)
	}
	return body, resp.Request.URL.String(), statusCode, nil
}

// fail logs the offending URL and wraps cause as unavailable
func (f *Fetcher) fail(reqLog *logrus.Entry, rawURL string, cause error) error {
	f.failures.Add(1)
	reqLog.WithField("category", utils.CategorizeError(cause)).Errorf("Fetch failed: %v", cause)
	return fmt.Errorf("%w: %s: %w", utils.ErrUnavailable, rawURL, cause)
}
