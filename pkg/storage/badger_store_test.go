package storage

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/pydoc-parser/pkg/models"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestCache(t *testing.T, ttl time.Duration) *BadgerCache {
	t.Helper()
	cache, err := NewBadgerCache(t.TempDir(), ttl, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func testResponse(url, body string) *models.CachedResponse {
	return &models.CachedResponse{
		URL:        url,
		StatusCode: 200,
		Body:       []byte(body),
		FetchedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBadgerCache_GetMiss(t *testing.T) {
	cache := newTestCache(t, 0)

	resp, found, err := cache.Get("https://docs.python.org/3/")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, resp)
}

func TestBadgerCache_PutGet(t *testing.T) {
	cache := newTestCache(t, 0)
	url := "https://docs.python.org/3/whatsnew/"

	require.NoError(t, cache.Put(url, testResponse(url, "<html>index</html>")))

	resp, found, err := cache.Get(url)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, url, resp.URL)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []byte("<html>index</html>"), resp.Body)
	assert.True(t, resp.FetchedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

	// Overwrite keeps one entry
	require.NoError(t, cache.Put(url, testResponse(url, "<html>v2</html>")))
	resp, _, err = cache.Get(url)
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>v2</html>"), resp.Body)

	count, err := cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBadgerCache_Clear(t *testing.T) {
	cache := newTestCache(t, 0)
	for _, u := range []string{"https://peps.python.org/", "https://peps.python.org/pep-0008/"} {
		require.NoError(t, cache.Put(u, testResponse(u, "x")))
	}
	count, err := cache.Count()
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, cache.Clear())

	count, err = cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	_, found, err := cache.Get("https://peps.python.org/")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBadgerCache_TTLExpiry(t *testing.T) {
	cache := newTestCache(t, time.Second)
	url := "https://docs.python.org/3/"
	require.NoError(t, cache.Put(url, testResponse(url, "x")))

	_, found, err := cache.Get(url)
	require.NoError(t, err)
	require.True(t, found)

	// Badger TTLs have one-second resolution
	time.Sleep(2100 * time.Millisecond)

	_, found, err = cache.Get(url)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBadgerCache_Reopen(t *testing.T) {
	dir := t.TempDir()
	url := "https://docs.python.org/3/download.html"

	cache1, err := NewBadgerCache(dir, 0, testLogger())
	require.NoError(t, err)
	require.NoError(t, cache1.Put(url, testResponse(url, "persisted")))
	require.NoError(t, cache1.Close())

	cache2, err := NewBadgerCache(dir, 0, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { cache2.Close() })

	resp, found, err := cache2.Get(url)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("persisted"), resp.Body)
}

func TestBadgerCache_CloseTwice(t *testing.T) {
	cache, err := NewBadgerCache(t.TempDir(), 0, testLogger())
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	assert.NoError(t, cache.Close())
}

func TestBadgerCache_ImplementsInterface(t *testing.T) {
	var _ ResponseCache = newTestCache(t, 0)
}
