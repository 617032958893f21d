package loader

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-order-loader/internal/flightinfra"
	"github.com/goliatone/go-order-loader/orderset"
)

// Config exposes the engine's tuning knobs.
type Config struct {
	// InitialPageSize is the size of the first, latency-sensitive page.
	InitialPageSize int

	// BackgroundPageSize is the page size used by the background fill,
	// tuned for throughput rather than latency.
	BackgroundPageSize int

	// MaxChildChunkSize bounds how many order IDs travel in one line-item
	// request. The transport encodes identifier lists into the request
	// line, which has a hard length cap.
	MaxChildChunkSize int

	// InterBatchDelay is the pause between background child-fetch batches.
	// It is deliberate backpressure on the transport, not a retry delay.
	InterBatchDelay time.Duration

	// FetchTimeout bounds each individual store call. Zero disables the
	// per-fetch timeout.
	FetchTimeout time.Duration

	// PriorityWindowDays selects orders updated within the last N days for
	// the blocking priority join. Zero disables the window rule.
	PriorityWindowDays int

	// PriorityRecentCount selects the K most recently created orders for
	// the blocking priority join. Zero disables the recency rule.
	PriorityRecentCount int

	// BillableStatuses are the statuses whose orders need accurate totals
	// on first render; the window rule only applies to these.
	BillableStatuses []orderset.OrderStatus

	// Flight configures the single-flight resolver that deduplicates
	// concurrent child fetches between the background sweep and on-demand
	// backfill. Nil disables deduplication.
	Flight *FlightConfig
}

// FlightConfig mirrors the internal single-flight cache options.
type FlightConfig struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() Config {
	flight := convertFlightFromInternal(flightinfra.DefaultConfig())
	return Config{
		InitialPageSize:     100,
		BackgroundPageSize:  500,
		MaxChildChunkSize:   200,
		InterBatchDelay:     100 * time.Millisecond,
		FetchTimeout:        10 * time.Second,
		PriorityWindowDays:  30,
		PriorityRecentCount: 5,
		BillableStatuses:    []orderset.OrderStatus{orderset.StatusCompleted, orderset.StatusInvoiced},
		Flight:              &flight,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.InitialPageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.BackgroundPageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxChildChunkSize, validation.Required, validation.Min(1)),
		validation.Field(&c.InterBatchDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.PriorityWindowDays, validation.Min(0)),
		validation.Field(&c.PriorityRecentCount, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.Flight != nil {
		return c.Flight.toInternal().Validate()
	}
	return nil
}

func (f FlightConfig) toInternal() flightinfra.Config {
	return flightinfra.Config{
		Capacity:           f.Capacity,
		NumShards:          f.NumShards,
		TTL:                f.TTL,
		EvictionPercentage: f.EvictionPercentage,
		EvictionInterval:   f.EvictionInterval,
	}
}

func convertFlightFromInternal(cfg flightinfra.Config) FlightConfig {
	return FlightConfig{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
