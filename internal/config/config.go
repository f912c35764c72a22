// Package config loads songmatch settings from a YAML file, an optional .env
// file and SM_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sydlexius/songmatch/internal/cache"
	"github.com/sydlexius/songmatch/internal/catalog"
	"github.com/sydlexius/songmatch/internal/catalog/spotify"
	"github.com/sydlexius/songmatch/internal/logging"
	"github.com/sydlexius/songmatch/internal/match"
	"github.com/sydlexius/songmatch/internal/version"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Cache    CacheConfig    `yaml:"cache"`
	Match    MatchConfig    `yaml:"match"`
	Database DatabaseConfig `yaml:"database"`
	Logging  logging.Config `yaml:"logging"`
}

// CatalogConfig holds the catalog endpoint, credentials and request pacing.
type CatalogConfig struct {
	BaseURL         string `yaml:"base_url"`
	TokenURL        string `yaml:"token_url"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	AccessToken     string `yaml:"access_token"`
	Market          string `yaml:"market"`
	SearchLimit     int    `yaml:"search_limit"`
	RateLimitMS     int    `yaml:"rate_limit_ms"`
	RetryAttempts   int    `yaml:"retry_attempts"`
	RetryIntervalMS int    `yaml:"retry_interval_ms"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend     string `yaml:"backend"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	TTLHours    int    `yaml:"ttl_hours"`
}

// MatchConfig holds the scoring tuning.
type MatchConfig struct {
	Thresholds   match.Thresholds `yaml:"thresholds"`
	Weights      match.Weights    `yaml:"weights"`
	IgnoredTerms []string         `yaml:"ignored_terms"`
	RemixTerms   []string         `yaml:"remix_terms"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns a Config with the standard tuning and an in-memory cache.
func Default() *Config {
	opts := match.DefaultOptions()
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:         spotify.DefaultBaseURL,
			TokenURL:        spotify.DefaultTokenURL,
			Market:          opts.Market,
			SearchLimit:     opts.SearchLimit,
			RateLimitMS:     int(catalog.DefaultMinInterval / time.Millisecond),
			RetryAttempts:   catalog.DefaultAttempts,
			RetryIntervalMS: int(catalog.DefaultRetryInterval / time.Millisecond),
			TimeoutSeconds:  30,
		},
		Cache: CacheConfig{
			Backend:     CacheMemory,
			RedisAddr:   "localhost:6379",
			RedisPrefix: cache.DefaultRedisPrefix,
			TTLHours:    24,
		},
		Match: MatchConfig{
			Thresholds:   opts.Thresholds,
			Weights:      opts.Weights,
			IgnoredTerms: opts.IgnoredTerms,
			RemixTerms:   opts.RemixTerms,
		},
		Database: DatabaseConfig{
			Path: "songmatch.db",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists), then a .env file in the
// working directory (if it exists), and overrides with environment variables.
// Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	var errs []error
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
			return
		}
		*dst = n
	}

	setString("SM_CATALOG_BASE_URL", &c.Catalog.BaseURL)
	setString("SM_CATALOG_TOKEN_URL", &c.Catalog.TokenURL)
	setString("SM_CLIENT_ID", &c.Catalog.ClientID)
	setString("SM_CLIENT_SECRET", &c.Catalog.ClientSecret)
	setString("SM_ACCESS_TOKEN", &c.Catalog.AccessToken)
	setString("SM_MARKET", &c.Catalog.Market)
	setInt("SM_SEARCH_LIMIT", &c.Catalog.SearchLimit)
	setInt("SM_RATE_LIMIT_MS", &c.Catalog.RateLimitMS)
	setInt("SM_RETRY_ATTEMPTS", &c.Catalog.RetryAttempts)
	setInt("SM_RETRY_INTERVAL_MS", &c.Catalog.RetryIntervalMS)
	setInt("SM_TIMEOUT_SECONDS", &c.Catalog.TimeoutSeconds)

	setString("SM_CACHE_BACKEND", &c.Cache.Backend)
	setString("SM_REDIS_ADDR", &c.Cache.RedisAddr)
	setString("SM_REDIS_PREFIX", &c.Cache.RedisPrefix)
	setInt("SM_CACHE_TTL_HOURS", &c.Cache.TTLHours)

	setString("SM_DB_PATH", &c.Database.Path)

	setString("SM_LOG_LEVEL", &c.Logging.Level)
	setString("SM_LOG_FORMAT", &c.Logging.Format)
	setString("SM_LOG_FILE", &c.Logging.FilePath)

	return errors.Join(errs...)
}

func (c *Config) validate() error {
	var errs []error

	if c.Catalog.BaseURL == "" {
		errs = append(errs, errors.New("catalog base_url is required"))
	}
	if c.Catalog.SearchLimit < 1 || c.Catalog.SearchLimit > 50 {
		errs = append(errs, fmt.Errorf("catalog search_limit must be between 1 and 50, got %d", c.Catalog.SearchLimit))
	}
	if c.Catalog.RateLimitMS < 0 {
		errs = append(errs, fmt.Errorf("catalog rate_limit_ms must not be negative, got %d", c.Catalog.RateLimitMS))
	}
	if c.Catalog.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("catalog retry_attempts must be at least 1, got %d", c.Catalog.RetryAttempts))
	}
	if c.Catalog.RetryAttempts > 1 && c.Catalog.RetryIntervalMS < 1 {
		errs = append(errs, fmt.Errorf("catalog retry_interval_ms must be at least 1 when retrying, got %d", c.Catalog.RetryIntervalMS))
	} else if c.Catalog.RetryIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("catalog retry_interval_ms must not be negative, got %d", c.Catalog.RetryIntervalMS))
	}
	if c.Catalog.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("catalog timeout_seconds must not be negative, got %d", c.Catalog.TimeoutSeconds))
	}
	if (c.Catalog.ClientID == "") != (c.Catalog.ClientSecret == "") {
		errs = append(errs, errors.New("catalog client_id and client_secret must be set together"))
	}

	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database path is required for the sqlite cache"))
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache redis_addr is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	if c.Cache.TTLHours < 0 {
		errs = append(errs, fmt.Errorf("cache ttl_hours must not be negative, got %d", c.Cache.TTLHours))
	}

	t := c.Match.Thresholds
	for _, th := range []struct {
		name  string
		value float64
	}{{"artist", t.Artist}, {"album", t.Album}, {"track", t.Track}, {"composite", t.Composite}} {
		if th.value < 0 || th.value > 1 {
			errs = append(errs, fmt.Errorf("match %s threshold must be between 0 and 1, got %v", th.name, th.value))
		}
	}
	w := c.Match.Weights
	if w.Artist < 0 || w.Album < 0 || w.Track < 0 {
		errs = append(errs, errors.New("match weights must not be negative"))
	}
	if w.Artist+w.Album+w.Track == 0 {
		errs = append(errs, errors.New("match weights must not all be zero"))
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	if !logging.ValidFormat(c.Logging.Format) {
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// MatchOptions converts the tuning into resolver options.
func (c *Config) MatchOptions() match.Options {
	return match.Options{
		Thresholds:   c.Match.Thresholds,
		Weights:      c.Match.Weights,
		IgnoredTerms: c.Match.IgnoredTerms,
		RemixTerms:   c.Match.RemixTerms,
		Market:       c.Catalog.Market,
		SearchLimit:  c.Catalog.SearchLimit,
	}
}

// TransportOptions converts the request pacing into transport options.
func (c *Config) TransportOptions() catalog.TransportOptions {
	return catalog.TransportOptions{
		Catalog:       spotify.Name,
		MinInterval:   time.Duration(c.Catalog.RateLimitMS) * time.Millisecond,
		Attempts:      c.Catalog.RetryAttempts,
		RetryInterval: time.Duration(c.Catalog.RetryIntervalMS) * time.Millisecond,
		UserAgent:     version.UserAgent(),
	}
}

// Timeout is the per-call catalog timeout. Zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

// CacheTTL is how long cached responses stay valid. Zero means forever.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// HasCredential reports whether any bearer credential is configured.
func (c *Config) HasCredential() bool {
	return c.Catalog.AccessToken != "" || c.Catalog.ClientID != ""
}
