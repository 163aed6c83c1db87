package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

const defaultMaxBodyBytes = 64 << 20

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// Source URLs
	if c.MainDocURL == "" {
		c.MainDocURL = DefaultMainDocURL
	}
	if c.PEPURL == "" {
		c.PEPURL = DefaultPEPURL
	}
	for _, field := range []struct {
		name string
		val  *string
	}{
		{"main_doc_url", &c.MainDocURL},
		{"pep_url", &c.PEPURL},
	} {
		u, errParse := url.Parse(*field.val)
		if errParse != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return warnings, fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", utils.ErrConfigValidation, field.name, *field.val)
		}
		// Relative links resolve against the directory, so the base must end with '/'
		if !strings.HasSuffix(u.Path, "/") {
			warnings = append(warnings, fmt.Sprintf("%s does not end with '/', appending one", field.name))
			u.Path += "/"
			*field.val = u.String()
		}
	}

	// Directories
	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	if c.DownloadsDir == "" {
		c.DownloadsDir = "downloads"
	}
	if c.ResultsDir == "" {
		c.ResultsDir = "results"
	}

	// UserAgent
	if c.UserAgent == "" {
		c.UserAgent = "pydoc-parser/1.0"
	}

	// RequestDelay
	if c.RequestDelay < 0 {
		warnings = append(warnings, "request_delay cannot be negative, disabling delay")
		c.RequestDelay = 0
	}

	// MaxBodyBytes
	if c.MaxBodyBytes < 0 {
		warnings = append(warnings, "max_body_bytes cannot be negative, defaulting to 64 MiB")
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}

	warnings = append(warnings, c.validateCache()...)
	warnings = append(warnings, c.validateLogging()...)
	c.validateHTTPClientSettings()

	return warnings, nil
}

func (c *AppConfig) validateCache() (warnings []string) {
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".http_cache"
	}
	if c.Cache.TTL < 0 {
		warnings = append(warnings, "cache.ttl cannot be negative, entries will never expire")
		c.Cache.TTL = 0
	}
	if c.Cache.TTL > 0 && c.Cache.TTL < time.Second {
		warnings = append(warnings, "cache.ttl below one second is rounded up to 1s")
		c.Cache.TTL = time.Second
	}
	return warnings
}

func (c *AppConfig) validateLogging() (warnings []string) {
	l := &c.Logging
	if l.Dir == "" {
		l.Dir = "logs"
	}
	if l.File == "" {
		l.File = "parser.log"
	}
	if l.MaxSizeMB <= 0 {
		l.MaxSizeMB = 1
	}
	if l.MaxBackups < 0 {
		warnings = append(warnings, "logging.max_backups cannot be negative, defaulting to 5")
	}
	if l.MaxBackups <= 0 {
		l.MaxBackups = 5
	}
	return warnings
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 45 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}
