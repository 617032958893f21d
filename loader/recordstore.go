package loader

import (
	"context"

	"github.com/goliatone/go-order-loader/orderset"
)

// RecordStore is the external record store the engine loads from. It is
// assumed to be rate and size limited: implementations may reject large
// identifier lists, which is why all callers go through the ChunkedFetcher.
type RecordStore interface {
	// ListOrderPage returns one page of orders without line items, plus the
	// total number of orders in the store. Ordering must be stable across
	// calls (created_at descending, id descending as tiebreak) so pages
	// never overlap or gap while the store is not mutated concurrently.
	ListOrderPage(ctx context.Context, offset, limit int) ([]orderset.Order, int, error)

	// ListLineItems returns the line items belonging to the given orders.
	// Callers keep len(orderIDs) under the transport's identifier limit.
	ListLineItems(ctx context.Context, orderIDs []string) ([]orderset.LineItem, error)
}
