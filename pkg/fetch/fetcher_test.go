package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/pydoc-parser/pkg/config"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// testConfig returns a validated AppConfig
func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := &config.AppConfig{UserAgent: "pydoc-parser-test"}
	_, err := cfg.Validate()
	require.NoError(t, err)
	return cfg
}

// testLogger returns a logger that discards output
func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// testClient returns an http.Client suitable for testing
func testClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// mockServer creates an httptest.Server that answers every request with status and body.
// Returns the server and an atomic counter tracking requests.
func mockServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	count := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		count.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, count
}

// memCache is an in-memory storage.ResponseCache
type memCache struct {
	mu      sync.Mutex
	entries map[string]*models.CachedResponse
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*models.CachedResponse)}
}

func (m *memCache) Get(key string) (*models.CachedResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *memCache) Put(key string, resp *models.CachedResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = resp
	return nil
}

func (m *memCache) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*models.CachedResponse)
	return nil
}

func (m *memCache) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *memCache) Close() error { return nil }

func TestFetch_Success(t *testing.T) {
	server, count := mockServer(t, http.StatusOK, "<html>caf\xc3\xa9</html>")
	fetcher := NewFetcher(testClient(), testConfig(t), Options{}, testLogger())

	page, err := fetcher.Fetch(context.Background(), server.URL+"/3/")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/3/", page.URL)
	assert.Equal(t, models.ForcedEncoding, page.Encoding)
	assert.Equal(t, "<html>café</html>", page.Text())
	assert.False(t, page.FromCache)
	assert.Equal(t, int32(1), count.Load())
	assert.Equal(t, Stats{NetworkFetches: 1}, fetcher.Stats())
}

func TestFetch_NonSuccessIsUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"404 Not Found", http.StatusNotFound, utils.ErrClientHTTPError},
		{"429 Too Many Requests", http.StatusTooManyRequests, utils.ErrClientHTTPError},
		{"500 Internal Server Error", http.StatusInternalServerError, utils.ErrServerHTTPError},
		{"503 Service Unavailable", http.StatusServiceUnavailable, utils.ErrServerHTTPError},
		{"304 Not Modified", http.StatusNotModified, utils.ErrOtherHTTPError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, count := mockServer(t, tt.status, "")
			fetcher := NewFetcher(testClient(), testConfig(t), Options{}, testLogger())

			page, err := fetcher.Fetch(context.Background(), server.URL+"/page")
			require.Error(t, err)
			assert.Nil(t, page)
			assert.True(t, errors.Is(err, utils.ErrUnavailable))
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Equal(t, int32(1), count.Load(), "a failed fetch is never retried")
			assert.Equal(t, int64(1), fetcher.Stats().Failures)
		})
	}
}

func TestFetch_NetworkErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	fetcher := NewFetcher(testClient(), testConfig(t), Options{}, testLogger())
	_, err := fetcher.Fetch(context.Background(), addr+"/3/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrUnavailable))
}

func TestFetch_InvalidURL(t *testing.T) {
	fetcher := NewFetcher(testClient(), testConfig(t), Options{}, testLogger())
	_, err := fetcher.Fetch(context.Background(), "pep-0008/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrUnavailable))
	assert.True(t, errors.Is(err, utils.ErrParsing))
}

func TestFetch_BodyTooLarge(t *testing.T) {
	server, _ := mockServer(t, http.StatusOK, "0123456789")
	cfg := testConfig(t)
	cfg.MaxBodyBytes = 5
	fetcher := NewFetcher(testClient(), cfg, Options{}, testLogger())

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrResponseBodyRead))
}

func TestFetch_UsesCache(t *testing.T) {
	server, count := mockServer(t, http.StatusOK, "<html>cached</html>")
	cache := newMemCache()
	fetcher := NewFetcher(testClient(), testConfig(t), Options{Cache: cache}, testLogger())

	first, err := fetcher.Fetch(context.Background(), server.URL+"/3/#top")
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := fetcher.Fetch(context.Background(), server.URL+"/3/")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Content, second.Content)

	assert.Equal(t, int32(1), count.Load())
	assert.Equal(t, Stats{CacheHits: 1, NetworkFetches: 1}, fetcher.Stats())

	require.NoError(t, cache.Clear())
	third, err := fetcher.Fetch(context.Background(), server.URL+"/3/")
	require.NoError(t, err)
	assert.False(t, third.FromCache)
	assert.Equal(t, int32(2), count.Load())
}

func TestFetch_FailuresNotCached(t *testing.T) {
	server, count := mockServer(t, http.StatusNotFound, "")
	cache := newMemCache()
	fetcher := NewFetcher(testClient(), testConfig(t), Options{Cache: cache}, testLogger())

	_, err := fetcher.Fetch(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	n, _ := cache.Count()
	assert.Equal(t, 0, n)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, int32(2), count.Load())
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			io.WriteString(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		io.WriteString(w, "ok")
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t)
	client := testClient()
	robots := NewRobotsGate(client, cfg.UserAgent, testLogger())
	fetcher := NewFetcher(client, cfg, Options{Robots: robots}, testLogger())

	_, err := fetcher.Fetch(context.Background(), server.URL+"/private/page")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrUnavailable))
	assert.True(t, errors.Is(err, utils.ErrRobotsDisallowed))

	page, err := fetcher.Fetch(context.Background(), server.URL+"/public/page")
	require.NoError(t, err)
	assert.Equal(t, "ok", page.Text())
}

func TestFetch_SetsUserAgent(t *testing.T) {
	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.UserAgent())
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(testClient(), testConfig(t), Options{}, testLogger())
	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "pydoc-parser-test", gotUA.Load())
}

func TestFetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "moved")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := testConfig(t)
	fetcher := NewFetcher(NewClient(cfg.HTTPClientSettings, testLogger()), cfg, Options{}, testLogger())
	page, err := fetcher.Fetch(context.Background(), server.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/new", page.URL)
	assert.Equal(t, "moved", page.Text())
}
