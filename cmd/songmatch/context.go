package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"

	"github.com/sydlexius/songmatch/internal/cache"
	"github.com/sydlexius/songmatch/internal/catalog"
	"github.com/sydlexius/songmatch/internal/catalog/spotify"
	"github.com/sydlexius/songmatch/internal/config"
	"github.com/sydlexius/songmatch/internal/database"
	"github.com/sydlexius/songmatch/internal/logging"
	"github.com/sydlexius/songmatch/internal/match"
)

const defaultConfigPath = "songmatch.yaml"

// commandContext lazily builds the shared dependencies of every command.
type commandContext struct {
	configFlag   string
	logLevelFlag string
	jsonFlag     bool

	configOnce sync.Once
	configErr  error

	mu       sync.Mutex
	config   *config.Config
	stderr   io.Writer
	logs     *logging.Manager
	logger   *slog.Logger
	db       *sql.DB
	redis    *redis.Client
	cache    catalog.Cache
	cacheSet bool
}

func newCommandContext() *commandContext {
	return &commandContext{stderr: os.Stderr}
}

func (c *commandContext) setErrorOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logs == nil && w != nil {
		c.stderr = w
	}
}

// configPath is the file the configuration is (or would be) read from.
func (c *commandContext) configPath() string {
	if p := strings.TrimSpace(c.configFlag); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("SM_CONFIG_PATH")); p != "" {
		return p
	}
	return defaultConfigPath
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := c.loadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		c.mu.Lock()
		c.config = cfg
		c.mu.Unlock()
	})
	if c.configErr != nil {
		return nil, c.configErr
	}
	return c.currentConfig(), nil
}

func (c *commandContext) currentConfig() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

func (c *commandContext) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath())
	if err != nil {
		return nil, err
	}
	if lvl := strings.ToLower(strings.TrimSpace(c.logLevelFlag)); lvl != "" {
		if !logging.ValidLevel(lvl) {
			return nil, fmt.Errorf("invalid --log-level %q", c.logLevelFlag)
		}
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

// reloadConfig re-reads the configuration and applies its logging settings
// to the running logger. On error the previous configuration stays active.
func (c *commandContext) reloadConfig() (*config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.config = cfg
	logs := c.logs
	logCfg := c.loggingConfig(cfg)
	c.mu.Unlock()

	if logs != nil {
		logs.Reconfigure(logCfg)
	}
	return cfg, nil
}

// loggingConfig must be called with c.mu held.
func (c *commandContext) loggingConfig(cfg *config.Config) logging.Config {
	lc := cfg.Logging
	lc.Output = c.stderr
	return lc
}

func (c *commandContext) log() *slog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		return c.logger
	}
	lc := logging.DefaultConfig()
	lc.Output = c.stderr
	if c.config != nil {
		lc = c.loggingConfig(c.config)
	}
	c.logs, c.logger = logging.NewManager(lc)
	return c.logger
}

func (c *commandContext) database(ctx context.Context) (*sql.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}
	db, err := database.OpenMigrated(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// responseCache returns the configured cache backend, or nil when caching
// is disabled. The backend is created once and shared by later calls.
func (c *commandContext) responseCache(ctx context.Context) (catalog.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.cacheSet {
		defer c.mu.Unlock()
		return c.cache, nil
	}
	c.mu.Unlock()

	var backend catalog.Cache
	var client *redis.Client
	switch cfg.Cache.Backend {
	case config.CacheNone:
	case config.CacheSQLite:
		db, err := c.database(ctx)
		if err != nil {
			return nil, err
		}
		backend = cache.NewSQLite(db, cfg.CacheTTL())
	case config.CacheRedis:
		client, err = cache.DialRedis(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, err
		}
		backend = cache.NewRedis(client, cfg.Cache.RedisPrefix, cfg.CacheTTL())
	default:
		backend = cache.NewMemory(cfg.CacheTTL())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cacheSet {
		// Another caller finished first; keep its backend.
		if client != nil {
			_ = client.Close()
		}
		return c.cache, nil
	}
	c.cache, c.cacheSet, c.redis = backend, true, client
	return backend, nil
}

func (c *commandContext) tokenSource(ctx context.Context, cfg *config.Config) oauth2.TokenSource {
	switch {
	case cfg.Catalog.AccessToken != "":
		return catalog.StaticToken(cfg.Catalog.AccessToken)
	case cfg.Catalog.ClientID != "":
		return catalog.ClientCredentials(ctx, cfg.Catalog.ClientID, cfg.Catalog.ClientSecret, cfg.Catalog.TokenURL)
	default:
		c.log().Warn("no catalog credential configured; requests are sent without authorization",
			slog.String("hint", "set SM_ACCESS_TOKEN or SM_CLIENT_ID and SM_CLIENT_SECRET"))
		return nil
	}
}

// catalogClient builds a catalog adapter from the current configuration.
func (c *commandContext) catalogClient(ctx context.Context) (catalog.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	respCache, err := c.responseCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening response cache: %w", err)
	}

	logger := c.log()
	httpClient := catalog.NewHTTPClient(catalog.HTTPOptions{
		Transport: cfg.TransportOptions(),
		Token:     c.tokenSource(ctx, cfg),
		Cache:     respCache,
		Timeout:   cfg.Timeout(),
	}, logger)
	return spotify.NewWithBaseURL(httpClient, logger, cfg.Catalog.BaseURL), nil
}

func (c *commandContext) resolver(ctx context.Context) (*match.Resolver, error) {
	client, err := c.catalogClient(ctx)
	if err != nil {
		return nil, err
	}
	return match.NewResolver(client, c.currentConfig().MatchOptions(), c.log()), nil
}

func (c *commandContext) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.redis != nil {
		_ = c.redis.Close()
		c.redis = nil
	}
	if c.db != nil {
		_ = c.db.Close()
		c.db = nil
	}
	if c.logs != nil {
		_ = c.logs.Close()
	}
}
