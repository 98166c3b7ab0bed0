// Package config loads the gateway configuration from YAML with
// environment variable expansion.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arenalytics/statsgate/pkg/cachecontrol"
	"github.com/arenalytics/statsgate/pkg/ratelimit"
)

// Config holds all gateway configuration.
type Config struct {
	Listen         string                 `yaml:"listen"`
	InternalAPIKey string                 `yaml:"internal_api_key"`
	Log            LogConfig              `yaml:"log"`
	Redis          RedisConfig            `yaml:"redis"`
	Upstream       UpstreamConfig         `yaml:"upstream"`
	Server         ServerConfig           `yaml:"server"`
	Classes        map[string]ClassConfig `yaml:"classes"`
	DefaultCache   CacheConfig            `yaml:"default_cache"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// RedisConfig points at the shared quota store. An empty Addr selects the
// in-process store, which is only safe for single-instance deployments.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// UpstreamConfig points at the event store and caps how hard the gateway
// may drive it.
type UpstreamConfig struct {
	DSN    string  `yaml:"dsn"`
	MaxQPS float64 `yaml:"max_qps"`
	Burst  int     `yaml:"burst"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	MaxInflight     int64         `yaml:"max_inflight"`
	TrustForwarded  bool          `yaml:"trust_forwarded"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ClassConfig is the admission and freshness policy of one endpoint class.
type ClassConfig struct {
	ResultTTL time.Duration `yaml:"result_ttl"`
	Cache     CacheConfig   `yaml:"cache"`
	Quotas    []QuotaConfig `yaml:"quotas"`
}

// CacheConfig mirrors cachecontrol.Directive in YAML form.
type CacheConfig struct {
	MaxAge               time.Duration `yaml:"max_age"`
	StaleWhileRevalidate time.Duration `yaml:"stale_while_revalidate"`
	StaleIfError         time.Duration `yaml:"stale_if_error"`
}

// QuotaConfig is one fixed-window limit in YAML form.
type QuotaConfig struct {
	Scope  string        `yaml:"scope"`
	Limit  uint32        `yaml:"limit"`
	Period time.Duration `yaml:"period"`
}

// Directive converts the YAML form into a cachecontrol.Directive.
func (c CacheConfig) Directive() cachecontrol.Directive {
	return cachecontrol.New(c.MaxAge).
		WithStaleWhileRevalidate(c.StaleWhileRevalidate).
		WithStaleIfError(c.StaleIfError)
}

// QuotaSet converts the YAML quotas into the limiter's form.
func (c ClassConfig) QuotaSet() []ratelimit.Quota {
	quotas := make([]ratelimit.Quota, 0, len(c.Quotas))
	for _, q := range c.Quotas {
		quotas = append(quotas, ratelimit.Quota{
			Scope:  ratelimit.Scope(q.Scope),
			Limit:  q.Limit,
			Period: q.Period,
		})
	}
	return quotas
}

// Default returns a Config with sensible defaults: a one-hour analytics
// class behind 100 requests per second per address and an embedded SQLite
// event store.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log: LogConfig{
			Level: "info",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Upstream: UpstreamConfig{
			DSN:    "stats.db",
			MaxQPS: 8,
			Burst:  4,
		},
		Server: ServerConfig{
			MaxInflight:     1024,
			TrustForwarded:  true,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Classes: map[string]ClassConfig{
			"analytics": {
				ResultTTL: time.Hour,
				Cache: CacheConfig{
					MaxAge:               time.Hour,
					StaleWhileRevalidate: 12 * time.Hour,
					StaleIfError:         24 * time.Hour,
				},
				Quotas: []QuotaConfig{
					{Scope: "ip", Limit: 100, Period: time.Second},
					{Scope: "global", Limit: 1000, Period: time.Second},
				},
			},
		},
		DefaultCache: CacheConfig{
			MaxAge: 2 * time.Minute,
		},
	}
}

// Load reads a YAML config file, expands environment variables, applies
// defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for mistakes that would otherwise
// surface as confusing runtime behavior.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must be set")
	}
	if c.Upstream.DSN == "" {
		return fmt.Errorf("upstream dsn must be set")
	}
	if c.Upstream.MaxQPS <= 0 {
		return fmt.Errorf("upstream max_qps must be positive, got %v", c.Upstream.MaxQPS)
	}
	if c.Upstream.Burst < 1 {
		return fmt.Errorf("upstream burst must be at least 1, got %d", c.Upstream.Burst)
	}
	if c.Server.MaxInflight < 1 {
		return fmt.Errorf("server max_inflight must be at least 1, got %d", c.Server.MaxInflight)
	}

	for name, class := range c.Classes {
		if class.ResultTTL <= 0 {
			return fmt.Errorf("class %s: result_ttl must be positive", name)
		}
		seen := make(map[string]bool, len(class.Quotas))
		for _, q := range class.Quotas {
			if !ratelimit.Scope(q.Scope).Valid() {
				return fmt.Errorf("class %s: unknown quota scope %q", name, q.Scope)
			}
			if seen[q.Scope] {
				return fmt.Errorf("class %s: duplicate quota scope %q", name, q.Scope)
			}
			seen[q.Scope] = true
			if q.Limit == 0 {
				return fmt.Errorf("class %s: quota limit for scope %q must be positive", name, q.Scope)
			}
			if q.Period <= 0 {
				return fmt.Errorf("class %s: quota period for scope %q must be positive", name, q.Scope)
			}
		}
	}
	return nil
}
