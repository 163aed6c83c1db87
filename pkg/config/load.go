package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PYDOC_PARSER_"

// Load reads the YAML file at path (skipped when path is empty), then applies overrides from
// envFile and the process environment. Process variables win over the env file.
// Defaults are not applied; call Validate afterwards.
func Load(path, envFile string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	fileEnv := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = vals
		case errors.Is(err, fs.ErrNotExist):
			// An absent .env file is normal
		default:
			return nil, fmt.Errorf("read env file: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyEnv(lookup func(string) (string, bool)) error {
	strVars := map[string]*string{
		"MAIN_DOC_URL":  &c.MainDocURL,
		"PEP_URL":       &c.PEPURL,
		"BASE_DIR":      &c.BaseDir,
		"DOWNLOADS_DIR": &c.DownloadsDir,
		"RESULTS_DIR":   &c.ResultsDir,
		"USER_AGENT":    &c.UserAgent,
		"CACHE_DIR":     &c.Cache.Dir,
		"LOG_DIR":       &c.Logging.Dir,
	}
	for name, dst := range strVars {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durVars := map[string]*time.Duration{
		"CACHE_TTL":     &c.Cache.TTL,
		"REQUEST_DELAY": &c.RequestDelay,
	}
	for name, dst := range durVars {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %w", utils.ErrConfigValidation, EnvPrefix, name, err)
			}
			*dst = d
		}
	}

	boolVars := map[string]*bool{
		"DISABLE_CACHE":      &c.Cache.Disabled,
		"RESPECT_ROBOTS_TXT": &c.RespectRobotsTxt,
	}
	for name, dst := range boolVars {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %w", utils.ErrConfigValidation, EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}
