// Package cacheinfra implements the store boundary on top of sturdyc, an
// in-process cache with request deduplication and stampede protection.
package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the settings for the sturdyc-backed store.
type Config struct {
	// Capacity is the maximum number of cached entries. Must be > 0.
	Capacity int

	// NumShards controls shard count for concurrent access. Must be > 0.
	NumShards int

	// TTL is the default time-to-live for cached entries. Must be > 0.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache is
	// full, between 1 and 100.
	EvictionPercentage int

	// EarlyRefresh enables background refresh of frequently read entries
	// before they expire. Nil disables it.
	EarlyRefresh *EarlyRefreshConfig

	// EvictionInterval overrides how often expired entries are collected.
	// Zero keeps the store default.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures stampede-protecting early refreshes.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns settings suitable for most deployments.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EarlyRefresh: &EarlyRefreshConfig{
			MinAsyncRefreshTime: 10 * time.Second,
			MaxAsyncRefreshTime: 20 * time.Second,
			SyncRefreshTime:     30 * time.Second,
			RetryBaseDelay:      100 * time.Millisecond,
		},
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

func (c Config) options() []sturdyc.Option {
	var opts []sturdyc.Option
	if c.EarlyRefresh != nil {
		opts = append(opts, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}
	if c.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return opts
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "cache config error in field " + e.Field + ": " + e.Message
}

// SturdycStore adapts a sturdyc client to the engine's store boundary.
type SturdycStore struct {
	client *sturdyc.Client[any]
}

// NewSturdycStore validates cfg and constructs the store.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.options()...,
	)

	return &SturdycStore{client: client}, nil
}

// GetOrFetch returns the cached value for key, delegating misses and
// refreshes to fetch. Deduplication of concurrent fetches for the same key
// is the client's responsibility, not the engine's.
func (s *SturdycStore) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	return s.client.GetOrFetch(ctx, key, fetch)
}

// Delete removes the entry for an exact key.
func (s *SturdycStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteFunc removes every entry whose key satisfies match.
func (s *SturdycStore) DeleteFunc(_ context.Context, match func(key string) bool) error {
	for _, key := range s.client.ScanKeys() {
		if match(key) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Keys lists all keys currently present in the store.
func (s *SturdycStore) Keys(_ context.Context) ([]string, error) {
	return s.client.ScanKeys(), nil
}
