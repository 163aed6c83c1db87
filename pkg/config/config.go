package config

import (
	"path/filepath"
	"time"

	"github.com/Sriram-PR/pydoc-parser/pkg/parse"
)

// Default source locations
const (
	DefaultMainDocURL = "https://docs.python.org/3/"
	DefaultPEPURL     = "https://peps.python.org/"
)

// AppConfig holds the global application configuration
type AppConfig struct {
	MainDocURL         string           `yaml:"main_doc_url"`
	PEPURL             string           `yaml:"pep_url"`
	BaseDir            string           `yaml:"base_dir"`      // Root for downloads, results, logs and cache
	DownloadsDir       string           `yaml:"downloads_dir"` // Relative to BaseDir unless absolute
	ResultsDir         string           `yaml:"results_dir"`   // Relative to BaseDir unless absolute
	UserAgent          string           `yaml:"user_agent,omitempty"`
	RequestDelay       time.Duration    `yaml:"request_delay,omitempty"` // Minimum gap between requests to one host (0 = none)
	RespectRobotsTxt   bool             `yaml:"respect_robots_txt,omitempty"`
	MaxBodyBytes       int64            `yaml:"max_body_bytes,omitempty"` // Responses larger than this are unavailable
	Cache              CacheConfig      `yaml:"cache,omitempty"`
	Logging            LogConfig        `yaml:"logging,omitempty"`
	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
}

// CacheConfig holds settings for the persistent response cache
type CacheConfig struct {
	Dir      string        `yaml:"dir,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"` // 0 = entries never expire
	Disabled bool          `yaml:"disabled,omitempty"`
}

// LogConfig holds settings for the rotating log file
type LogConfig struct {
	Dir        string `yaml:"dir,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// underBase joins dir onto BaseDir unless dir is already absolute
func (c *AppConfig) underBase(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.BaseDir, dir)
}

// DownloadsPath returns the directory archives are saved into
func (c *AppConfig) DownloadsPath() string { return c.underBase(c.DownloadsDir) }

// ResultsPath returns the directory result files are written into
func (c *AppConfig) ResultsPath() string { return c.underBase(c.ResultsDir) }

// LogPath returns the directory holding the rotating log file
func (c *AppConfig) LogPath() string { return c.underBase(c.Logging.Dir) }

// CachePath returns the response cache directory
func (c *AppConfig) CachePath() string { return c.underBase(c.Cache.Dir) }

// WhatsNewURL returns the release-notes hub under MainDocURL
func (c *AppConfig) WhatsNewURL() (string, error) {
	return parse.ResolveReference(c.MainDocURL, "whatsnew/")
}

// DownloadPageURL returns the documentation downloads page under MainDocURL
func (c *AppConfig) DownloadPageURL() (string, error) {
	return parse.ResolveReference(c.MainDocURL, "download.html")
}
