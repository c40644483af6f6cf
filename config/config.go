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
)

// Rate limit strategies accepted by RATE_LIMIT_STRATEGY.
const (
	RateLimitFixed   = "fixed"
	RateLimitSliding = "sliding"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheBigCache = "bigcache"
	CacheRedis    = "redis"
	CacheNone     = "none"
)

// Config holds everything the server and the worker binaries read at startup.
type Config struct {
	Port               string        `yaml:"port"`
	DatabasePath       string        `yaml:"database_path"`
	PersistViews       bool          `yaml:"persist_views"`
	RestoreOnStart     bool          `yaml:"restore_on_start"`
	RedisURL           string        `yaml:"redis_url"`
	RedisPassword      string        `yaml:"redis_password"`
	RedisDB            int           `yaml:"redis_db"`
	CacheBackend       string        `yaml:"cache_backend"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	SentryDSN          string        `yaml:"sentry_dsn"`
	LogDir             string        `yaml:"log_dir"`
	DefaultTopLimit    int           `yaml:"default_top_limit"`
	MaxTopLimit        int           `yaml:"max_top_limit"`
	BatchSize          int           `yaml:"batch_size"`
	FlushInterval      time.Duration `yaml:"flush_interval"`
	RateLimitPerMinute int64         `yaml:"rate_limit_per_minute"`
	RateLimitStrategy  string        `yaml:"rate_limit_strategy"`
	BlocklistPath      string        `yaml:"blocklist_path"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	TrustedProxies     []string      `yaml:"trusted_proxies"`
	PublishEvents      bool          `yaml:"publish_events"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:              "8000",
		DatabasePath:      "analytics.db",
		CacheBackend:      CacheBigCache,
		CacheTTL:          30 * time.Second,
		LogDir:            "logs",
		DefaultTopLimit:   10,
		MaxTopLimit:       100,
		BatchSize:         100,
		FlushInterval:     5 * time.Second,
		RateLimitStrategy: RateLimitFixed,
		AllowedOrigins:    []string{"*"},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// ANALYTICS_CONFIG, a .env file and finally the process environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("ANALYTICS_CONFIG"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return cfg, err
		}
	}

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error

	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.CacheBackend, "CACHE_BACKEND")
	setString(&cfg.SentryDSN, "SENTRY_DSN")
	setString(&cfg.LogDir, "LOG_DIR")
	setString(&cfg.RateLimitStrategy, "RATE_LIMIT_STRATEGY")
	setString(&cfg.BlocklistPath, "BLOCKLIST_PATH")

	errs = append(errs,
		setBool(&cfg.PersistViews, "PERSIST_VIEWS"),
		setBool(&cfg.RestoreOnStart, "RESTORE_ON_START"),
		setBool(&cfg.PublishEvents, "PUBLISH_EVENTS"),
		setInt(&cfg.RedisDB, "REDIS_DB"),
		setInt(&cfg.DefaultTopLimit, "DEFAULT_TOP_LIMIT"),
		setInt(&cfg.MaxTopLimit, "MAX_TOP_LIMIT"),
		setInt(&cfg.BatchSize, "BATCH_SIZE"),
		setDuration(&cfg.CacheTTL, "CACHE_TTL"),
		setDuration(&cfg.FlushInterval, "FLUSH_INTERVAL"),
	)

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err))
		} else {
			cfg.RateLimitPerMinute = n
		}
	}

	setList(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	setList(&cfg.TrustedProxies, "TRUSTED_PROXIES")

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.DefaultTopLimit < 1 {
		errs = append(errs, errors.New("default top limit must be at least 1"))
	}
	if c.MaxTopLimit < c.DefaultTopLimit {
		errs = append(errs, errors.New("max top limit must not be below the default top limit"))
	}
	switch c.CacheBackend {
	case CacheBigCache, CacheNone:
	case CacheRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("redis cache backend requires REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.CacheBackend))
	}
	if c.PublishEvents && c.RedisURL == "" {
		errs = append(errs, errors.New("publishing events requires REDIS_URL"))
	}
	if (c.PersistViews || c.RestoreOnStart) && c.DatabasePath == "" {
		errs = append(errs, errors.New("persisting views requires DATABASE_PATH"))
	}
	if c.BatchSize < 0 {
		errs = append(errs, errors.New("batch size must not be negative"))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.RateLimitStrategy != RateLimitFixed && c.RateLimitStrategy != RateLimitSliding {
		errs = append(errs, fmt.Errorf("unknown rate limit strategy %q", c.RateLimitStrategy))
	}
	return errors.Join(errs...)
}

// DatabaseEnabled reports whether the SQLite mirror is needed.
func (c Config) DatabaseEnabled() bool {
	return c.PersistViews || c.RestoreOnStart
}
