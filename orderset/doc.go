// Package orderset holds the domain model for orders and their line items,
// together with the canonical in-memory working set (CacheStore) that every
// loading path merges into.
//
// # Overview
//
// The package exports three things:
//
//   - Order / LineItem: the parent and child record types
//   - LineItemSet: an explicit Unloaded|Loaded sum type for an order's items
//   - CacheStore: the single source of truth for the session's working set
//
// # The Unloaded / Loaded distinction
//
// An order's line items are expensive to fetch in bulk, so orders routinely
// arrive without them. A bare slice cannot distinguish "not fetched yet" from
// "genuinely has zero items", and conflating the two produces orders that
// render as "0 items" while their data is still in flight. LineItemSet makes
// the distinction explicit: its zero value is Unloaded, and LoadedItems
// produces the Loaded state, including loaded-with-zero-items.
//
// # Merge semantics
//
// CacheStore is mutated only through its merge operations, which together form
// the one critical section in the system. The load-bearing rule is asymmetric:
// an incoming record whose items are Unloaded never overwrites a cached record
// whose items are Loaded, while an incoming Loaded set always replaces the
// cached one. Scalar fields always take the incoming value. This makes merges
// order-independent when a background page re-fetch crosses in flight with a
// child-join result for the same order.
//
// Consumers observe the store through Snapshot and Subscribe; see the loader
// package for the components that feed it.
package orderset
