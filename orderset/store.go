package orderset

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Snapshot is a point-in-time, read-only view of the working set.
type Snapshot struct {
	// Orders maps order ID to the cached record. The map is a copy; the
	// records' item slices are shared and must be treated as read-only.
	Orders map[string]Order

	// TotalKnown is the store-reported total number of orders, which may
	// exceed len(Orders) while background paging is still in progress.
	TotalKnown int

	// InitialLoadComplete is set once the first page and its priority
	// child joins have been merged.
	InitialLoadComplete bool
}

// Subscriber receives a snapshot after every merge.
type Subscriber func(Snapshot)

// CacheStore owns the canonical working set for one session. Every loading
// path (initial page, background fill, on-demand backfill) converges here, and
// all mutation is serialized through a single critical section so concurrent
// merges cannot interleave at the field level.
type CacheStore struct {
	mu                  sync.Mutex
	orders              map[string]Order
	totalKnown          int
	initialLoadComplete bool

	subscribers *xsync.MapOf[uint64, Subscriber]
	nextSubID   atomic.Uint64
}

// NewCacheStore returns an empty store. It lives for the session lifetime and
// has no eviction; the working set only grows.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		orders:      make(map[string]Order),
		subscribers: xsync.NewMapOf[uint64, Subscriber](),
	}
}

// MergeOrders folds a page of orders into the store. Scalar fields always take
// the incoming value. Items obey the asymmetric rule: an incoming Unloaded set
// never overwrites a cached Loaded set, while an incoming Loaded set always
// replaces the cached one. totalKnown is the store-reported total from the
// page fetch; negative values leave the current total untouched.
func (c *CacheStore) MergeOrders(orders []Order, totalKnown int) {
	c.mu.Lock()
	for _, incoming := range orders {
		if existing, ok := c.orders[incoming.ID]; ok {
			if !incoming.Items.Loaded() && existing.Items.Loaded() {
				incoming.Items = existing.Items
			}
		}
		c.orders[incoming.ID] = incoming
	}
	if totalKnown >= 0 {
		c.totalKnown = totalKnown
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// MergeChildren marks the listed orders Loaded with the given items, sorted by
// position. An explicit empty entry produces the loaded-empty state. IDs not
// present in the store are ignored; a child fetch can never introduce a parent
// the page loads have not seen.
func (c *CacheStore) MergeChildren(items map[string][]LineItem) {
	c.mu.Lock()
	for id, list := range items {
		order, ok := c.orders[id]
		if !ok {
			continue
		}
		order.Items = LoadedItems(list)
		c.orders[id] = order
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// MarkInitialLoadComplete records that the initial page and its priority joins
// have landed. Subscribers are notified like any other merge.
func (c *CacheStore) MarkInitialLoadComplete() {
	c.mu.Lock()
	c.initialLoadComplete = true
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Snapshot returns the current state of the working set.
func (c *CacheStore) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Get returns the cached order for id, if present.
func (c *CacheStore) Get(id string) (Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, ok := c.orders[id]
	return order, ok
}

// Len returns the number of orders currently cached.
func (c *CacheStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.orders)
}

// UnloadedIDs returns the IDs of cached orders whose items are still Unloaded,
// sorted so batch formation is deterministic.
func (c *CacheStore) UnloadedIDs() []string {
	c.mu.Lock()
	var ids []string
	for id, order := range c.orders {
		if !order.Items.Loaded() {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// Subscribe registers fn to receive a snapshot after every merge. The returned
// cancel function removes the subscription.
func (c *CacheStore) Subscribe(fn Subscriber) (cancel func()) {
	id := c.nextSubID.Add(1)
	c.subscribers.Store(id, fn)
	return func() {
		c.subscribers.Delete(id)
	}
}

func (c *CacheStore) snapshotLocked() Snapshot {
	orders := make(map[string]Order, len(c.orders))
	for id, order := range c.orders {
		orders[id] = order
	}
	return Snapshot{
		Orders:              orders,
		TotalKnown:          c.totalKnown,
		InitialLoadComplete: c.initialLoadComplete,
	}
}

// notify runs outside the critical section so a subscriber can call back into
// the store without deadlocking.
func (c *CacheStore) notify(snap Snapshot) {
	c.subscribers.Range(func(_ uint64, fn Subscriber) bool {
		fn(snap)
		return true
	})
}
