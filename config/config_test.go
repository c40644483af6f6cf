package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var envKeys = []string{
	"ANALYTICS_CONFIG", "PORT", "DATABASE_PATH", "PERSIST_VIEWS", "RESTORE_ON_START",
	"REDIS_URL", "REDIS_PASSWORD", "REDIS_DB", "CACHE_BACKEND", "CACHE_TTL",
	"SENTRY_DSN", "LOG_DIR", "DEFAULT_TOP_LIMIT", "MAX_TOP_LIMIT", "BATCH_SIZE",
	"FLUSH_INTERVAL", "RATE_LIMIT_PER_MINUTE", "ALLOWED_ORIGINS", "PUBLISH_EVENTS",
	"RATE_LIMIT_STRATEGY", "BLOCKLIST_PATH", "TRUSTED_PROXIES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.DatabaseEnabled() {
		t.Error("database should be disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("PERSIST_VIEWS", "true")
	t.Setenv("DEFAULT_TOP_LIMIT", "5")
	t.Setenv("MAX_TOP_LIMIT", "50")
	t.Setenv("FLUSH_INTERVAL", "250ms")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://devarticles.dev")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !cfg.PersistViews || !cfg.DatabaseEnabled() {
		t.Error("PERSIST_VIEWS not applied")
	}
	if cfg.DefaultTopLimit != 5 || cfg.MaxTopLimit != 50 {
		t.Errorf("limits = %d/%d", cfg.DefaultTopLimit, cfg.MaxTopLimit)
	}
	if cfg.FlushInterval != 250*time.Millisecond {
		t.Errorf("FlushInterval = %s", cfg.FlushInterval)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("RateLimitPerMinute = %d", cfg.RateLimitPerMinute)
	}
	want := []string{"http://localhost:3000", "https://devarticles.dev"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if !reflect.DeepEqual(cfg.TrustedProxies, []string{"10.0.0.0/8"}) {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "analytics.yaml")
	yamlDoc := "port: \"7000\"\nmax_top_limit: 25\ncache_backend: none\n"
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANALYTICS_CONFIG", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "7001" {
		t.Errorf("env should win over YAML, got port %q", cfg.Port)
	}
	if cfg.MaxTopLimit != 25 || cfg.CacheBackend != CacheNone {
		t.Errorf("YAML values not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BATCH_SIZE", "lots")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric BATCH_SIZE")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty port":          func(c *Config) { c.Port = "" },
		"zero default limit":  func(c *Config) { c.DefaultTopLimit = 0 },
		"max below default":   func(c *Config) { c.MaxTopLimit = 5; c.DefaultTopLimit = 10 },
		"unknown cache":       func(c *Config) { c.CacheBackend = "memcached" },
		"redis cache no url":  func(c *Config) { c.CacheBackend = CacheRedis },
		"publish without url": func(c *Config) { c.PublishEvents = true },
		"negative rate limit": func(c *Config) { c.RateLimitPerMinute = -1 },
		"unknown strategy":    func(c *Config) { c.RateLimitStrategy = "token" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}
