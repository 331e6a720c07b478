package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate(): %v", err)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.Observability.LogLevel)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  capacity: 500
  ttl: 30s
defaults:
  timeout: 10s
  headers:
    X-Tenant: acme
observability:
  log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Cache.Capacity != 500 {
		t.Errorf("Cache.Capacity = %d, want 500", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want 30s", cfg.Cache.TTL)
	}
	// Unset fields keep their defaults.
	if cfg.Cache.NumShards != 256 {
		t.Errorf("Cache.NumShards = %d, want default 256", cfg.Cache.NumShards)
	}
	if cfg.Defaults.Headers["X-Tenant"] != "acme" {
		t.Errorf("Defaults.Headers = %v", cfg.Defaults.Headers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Observability.LogLevel)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load on a missing file succeeded, want error")
	}
}

func TestLoad_invalidValues(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  capacity: -1
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load succeeded, want validation error")
	}
	if !strings.Contains(err.Error(), "cache.capacity") {
		t.Errorf("error = %q, want offending field named", err)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	t.Setenv("OPQUERY_LOG_LEVEL", "warn")
	t.Setenv("OPQUERY_CACHE_TTL", "90s")
	t.Setenv("OPQUERY_CACHE_CAPACITY", "42")

	path := writeConfigFile(t, `
observability:
  log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Observability.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override warn", cfg.Observability.LogLevel)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want 90s", cfg.Cache.TTL)
	}
	if cfg.Cache.Capacity != 42 {
		t.Errorf("Cache.Capacity = %d, want 42", cfg.Cache.Capacity)
	}
}

func TestStoreConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.Capacity = 500
	cfg.Cache.TTL = 30 * time.Second
	cfg.Cache.EvictionInterval = time.Minute

	sc := cfg.StoreConfig()
	if sc.Capacity != 500 || sc.TTL != 30*time.Second || sc.EvictionInterval != time.Minute {
		t.Errorf("StoreConfig = %+v, want cache section carried over", sc)
	}
	if sc.EarlyRefresh == nil {
		t.Error("StoreConfig should keep the store's early-refresh defaults")
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("StoreConfig().Validate(): %v", err)
	}
}

func TestClientDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.ClientDefaults() != nil {
		t.Error("empty defaults section should yield a nil options layer")
	}

	cfg.Defaults.Headers = map[string]string{"X-Tenant": "acme"}
	cfg.Defaults.Timeout = 10 * time.Second

	opts := cfg.ClientDefaults()
	if opts == nil || opts.Transport == nil {
		t.Fatalf("ClientDefaults = %+v, want a transport layer", opts)
	}
	if opts.Transport.Headers["X-Tenant"] != "acme" || opts.Transport.Timeout != 10*time.Second {
		t.Errorf("Transport = %+v", opts.Transport)
	}
}

func TestLogger(t *testing.T) {
	cfg := Defaults()
	cfg.Observability.LogLevel = "warn"

	log, err := cfg.Logger()
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	log.Warn("logger configured")
}

func TestValidate_samplingRate(t *testing.T) {
	cfg := Defaults()
	cfg.Observability.Tracing.SamplingRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted sampling rate above 1")
	}
}
