package flightinfra

import (
	"context"
	"errors"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-order-loader/orderset"
)

// Config holds the configuration for the sturdyc-backed single-flight layer.
type Config struct {
	// Capacity defines the maximum number of per-order entries the flight
	// cache can hold. Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Must be greater than 0.
	NumShards int

	// TTL is how long a resolved order's line items are held. This is a
	// deduplication window, not a data cache: the orderset.CacheStore
	// stays canonical, so the TTL only needs to cover the overlap between
	// the background sweep and on-demand requests. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are collected.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                30 * time.Second,
		EvictionPercentage: 10,
		EvictionInterval:   0,
	}
}

// Validate checks if the configuration values are valid.
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

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// FetchFn resolves line items for a set of orders from the source of truth.
type FetchFn func(ctx context.Context, orderIDs []string) (map[string][]orderset.LineItem, error)

// Resolver deduplicates concurrent line-item fetches per order ID. sturdyc's
// stampede protection guarantees at most one in-flight request per key, so
// when the background sweep and an on-demand backfill race for the same
// orders, only one of them actually reaches the record store.
type Resolver struct {
	client *sturdyc.Client[[]orderset.LineItem]
	keyFn  sturdyc.KeyFn
	fetch  FetchFn
}

// NewResolver validates the configuration and wraps fetch in a sturdyc
// client keyed per order ID.
func NewResolver(cfg Config, fetch FetchFn) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]orderset.LineItem](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &Resolver{
		client: client,
		keyFn:  client.BatchKeyFn("line-items"),
		fetch:  fetch,
	}, nil
}

// Resolve returns line items for the given orders, fetching only the ones
// that are neither cached nor already in flight. Orders absent from the
// result were not resolved and must be retried by a later pass; orders
// present with an empty list are confirmed to have zero items.
func (r *Resolver) Resolve(ctx context.Context, orderIDs []string) (map[string][]orderset.LineItem, error) {
	if len(orderIDs) == 0 {
		return map[string][]orderset.LineItem{}, nil
	}

	items, err := r.client.GetOrFetchBatch(ctx, orderIDs, r.keyFn, sturdyc.BatchFetchFn[[]orderset.LineItem](r.fetch))
	if err != nil && !errors.Is(err, sturdyc.ErrOnlyCachedRecords) {
		return items, err
	}
	return items, nil
}
