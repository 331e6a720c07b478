// Package config loads and validates engine configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/qualisero/opquery/cache"
	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/observability"
)

// Config is the root engine configuration.
type Config struct {
	Cache         CacheConfig         `yaml:"cache"`
	Defaults      DefaultsConfig      `yaml:"defaults"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CacheConfig describes the external store sizing and policy.
type CacheConfig struct {
	Capacity           int           `yaml:"capacity"`
	NumShards          int           `yaml:"num_shards"`
	TTL                time.Duration `yaml:"ttl"`
	EvictionPercentage int           `yaml:"eviction_percentage"`
	EvictionInterval   time.Duration `yaml:"eviction_interval"`
}

// DefaultsConfig describes the instance-level options layer applied beneath
// call-setup and per-invocation options.
type DefaultsConfig struct {
	Headers map[string]string `yaml:"headers"`
	Timeout time.Duration     `yaml:"timeout"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string                      `yaml:"log_level"`
	Tracing  observability.TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig               `yaml:"metrics"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Cache: CacheConfig{
			Capacity:           10000,
			NumShards:          256,
			TTL:                5 * time.Minute,
			EvictionPercentage: 10,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: observability.TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	var errs []string

	if c.Cache.Capacity <= 0 {
		errs = append(errs, "cache.capacity must be greater than 0")
	}
	if c.Cache.NumShards <= 0 {
		errs = append(errs, "cache.num_shards must be greater than 0")
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be greater than 0")
	}
	if c.Cache.EvictionPercentage < 1 || c.Cache.EvictionPercentage > 100 {
		errs = append(errs, "cache.eviction_percentage must be between 1 and 100")
	}
	if c.Observability.Tracing.SamplingRate < 0 || c.Observability.Tracing.SamplingRate > 1 {
		errs = append(errs, "observability.tracing.sampling_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// StoreConfig converts the cache section into the store facade's
// configuration. Fields the file does not expose (early refresh) keep the
// store defaults.
func (c *Config) StoreConfig() cache.Config {
	sc := cache.DefaultConfig()
	sc.Capacity = c.Cache.Capacity
	sc.NumShards = c.Cache.NumShards
	sc.TTL = c.Cache.TTL
	sc.EvictionPercentage = c.Cache.EvictionPercentage
	sc.EvictionInterval = c.Cache.EvictionInterval
	return sc
}

// ClientDefaults converts the defaults section into the instance-level
// options layer merged beneath every call's own options. It returns nil when
// the section is empty.
func (c *Config) ClientDefaults() *model.Options {
	if len(c.Defaults.Headers) == 0 && c.Defaults.Timeout == 0 {
		return nil
	}
	return &model.Options{
		Transport: &model.TransportOptions{
			Headers: c.Defaults.Headers,
			Timeout: c.Defaults.Timeout,
		},
	}
}

// Logger builds the configured JSON logger.
func (c *Config) Logger() (*zap.Logger, error) {
	return observability.NewLogger(c.Observability.LogLevel)
}

// applyEnvOverrides reads OPQUERY_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPQUERY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("OPQUERY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("OPQUERY_CACHE_CAPACITY"); v != "" {
		var capacity int
		if _, err := fmt.Sscanf(v, "%d", &capacity); err == nil {
			cfg.Cache.Capacity = capacity
		}
	}
	if v := os.Getenv("OPQUERY_TRACING_ENDPOINT"); v != "" {
		cfg.Observability.Tracing.Endpoint = v
	}
}
