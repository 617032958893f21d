// Package loader implements progressive loading for order working sets whose
// line items are expensive to fetch in bulk.
//
// # Overview
//
// The record store behind this package is rate and size limited: identifier
// lists are encoded into the request line, which caps how many orders one
// line-item fetch can cover, and joining every order up front would stall the
// first render. The engine therefore loads in stages:
//
//  1. PageLoader fetches the first page of orders without line items.
//  2. PrioritySelector picks the small subset the first render needs accurate
//     totals for (recently updated billable orders plus the newest few).
//  3. ChunkedFetcher resolves that subset's line items, auto-chunked to the
//     transport limit, and the result merges into the orderset.CacheStore.
//  4. BackfillScheduler pages in the remaining orders at a throughput-tuned
//     page size, then fills the remaining line items batch by batch with an
//     explicit tick between batches.
//  5. BackfillGate fast-paths line items for orders the UI scrolls onto
//     before the scheduler reaches them.
//
// Every path converges on one CacheStore, whose asymmetric merge rule keeps
// loaded line items from being regressed by coarser fetches that cross in
// flight. Child fetches from the scheduler and the gate share a single-flight
// resolver, so the same order's items are never fetched twice concurrently.
//
// # Usage
//
//	engine, err := loader.New(store, loader.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	if err := engine.Start(ctx); err != nil {
//		return err // the store was unreachable for the first page
//	}
//	defer engine.Stop()
//
//	snap := engine.Snapshot()            // immediately usable, items backfilling
//	engine.EnsureLoaded(ctx, visibleIDs) // escalate what the UI shows now
//
// # Failure model
//
// Only the initial page load is fatal. A failed chunk, batch, or background
// page is logged and skipped; the affected orders keep an Unloaded item set,
// which consumers should render as "not loaded" rather than "zero items".
package loader
