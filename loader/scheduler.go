package loader

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-order-loader/orderset"
)

// BackfillScheduler drives the working set to completion after the initial
// priority join: first it pages through the remaining orders at the larger
// background page size, then it resolves line items for every order still
// Unloaded, in bounded batches with an explicit tick between them. The tick is
// backpressure on the transport, not a performance bug.
//
// The scheduler is best-effort: a failed page or batch is logged and skipped,
// and cancelling it is safe at any point because every merge already applied
// is a complete, self-consistent increment.
type BackfillScheduler struct {
	pages     *PageLoader
	resolver  ChildResolver
	cache     *orderset.CacheStore
	pageSize  int
	batchSize int
	tick      time.Duration
	log       *slog.Logger
	done      chan struct{}
}

// NewBackfillScheduler wires a scheduler over the shared cache.
func NewBackfillScheduler(pages *PageLoader, resolver ChildResolver, cache *orderset.CacheStore, cfg Config, log *slog.Logger) *BackfillScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &BackfillScheduler{
		pages:     pages,
		resolver:  resolver,
		cache:     cache,
		pageSize:  cfg.BackgroundPageSize,
		batchSize: cfg.MaxChildChunkSize,
		tick:      cfg.InterBatchDelay,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Done is closed when the scheduler finishes or is cancelled. Completion has
// no callback; consumers observe the cache converging.
func (s *BackfillScheduler) Done() <-chan struct{} {
	return s.done
}

// Run executes both fill phases. It blocks until done and is meant to be
// launched on its own goroutine.
func (s *BackfillScheduler) Run(ctx context.Context) {
	defer close(s.done)

	s.fillPages(ctx)
	if ctx.Err() != nil {
		return
	}

	// First sweep plus one bounded retry pass for orders whose batch
	// failed. Anything still Unloaded after that waits for on-demand
	// backfill.
	s.fillChildren(ctx, s.cache.UnloadedIDs())
	if ctx.Err() != nil {
		return
	}
	if remaining := s.cache.UnloadedIDs(); len(remaining) > 0 {
		s.fillChildren(ctx, remaining)
	}
}

// fillPages loads every order page not yet in the cache. Each page gets one
// retry; a second failure stops the paging pass so a dead store cannot spin
// the scheduler forever.
func (s *BackfillScheduler) fillPages(ctx context.Context) {
	offset := s.cache.Len()
	total := s.cache.Snapshot().TotalKnown

	for offset < total {
		if ctx.Err() != nil {
			return
		}

		page, pageTotal, err := s.pages.LoadPage(ctx, offset, s.pageSize)
		if err != nil {
			s.log.Warn("background page load failed, retrying once", "offset", offset, "error", err)
			page, pageTotal, err = s.pages.LoadPage(ctx, offset, s.pageSize)
			if err != nil {
				s.log.Error("background page load failed again, stopping paging pass", "offset", offset, "error", err)
				return
			}
		}
		if len(page) == 0 {
			return
		}

		s.cache.MergeOrders(page, pageTotal)
		offset += len(page)
		total = pageTotal
	}
}

// fillChildren resolves line items for ids in batches of batchSize, pausing
// one tick between batches.
func (s *BackfillScheduler) fillChildren(ctx context.Context, ids []string) {
	var tick *time.Ticker
	if s.tick > 0 {
		tick = time.NewTicker(s.tick)
		defer tick.Stop()
	}

	for i, batch := range chunkIDs(ids, s.batchSize) {
		if i > 0 && tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}
		}
		if ctx.Err() != nil {
			return
		}

		items, err := s.resolver.Resolve(ctx, batch)
		if len(items) > 0 {
			s.cache.MergeChildren(items)
		}
		if err != nil {
			s.log.Warn("background child batch failed, orders stay unloaded", "orders", len(batch), "error", err)
		}
	}
}
