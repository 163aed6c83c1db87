package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func robotsServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
			w.WriteHeader(status)
			io.WriteString(w, body)
		}
	}))
	t.Cleanup(server.Close)
	return server, hits
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestRobotsGate_Rules(t *testing.T) {
	server, hits := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /dev/\n")
	gate := NewRobotsGate(testClient(), "pydoc-parser", testLogger())

	assert.True(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/3/")))
	assert.False(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/dev/peps/")))
	assert.Equal(t, int32(1), hits.Load(), "robots.txt is fetched once per host")
}

func TestRobotsGate_MissingFileAllowsAll(t *testing.T) {
	server, _ := robotsServer(t, http.StatusNotFound, "")
	gate := NewRobotsGate(testClient(), "pydoc-parser", testLogger())
	assert.True(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/anything")))
}

func TestRobotsGate_ServerErrorDisallowsAll(t *testing.T) {
	server, _ := robotsServer(t, http.StatusServiceUnavailable, "")
	gate := NewRobotsGate(testClient(), "pydoc-parser", testLogger())
	assert.False(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/anything")))
}

func TestRobotsGate_UnreachableAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	gate := NewRobotsGate(testClient(), "pydoc-parser", testLogger())
	assert.True(t, gate.Allowed(context.Background(), mustParse(t, addr+"/3/")))
}
