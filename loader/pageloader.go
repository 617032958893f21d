package loader

import (
	"context"
	"time"

	"github.com/goliatone/go-order-loader/orderset"
)

// PageLoader fetches ordered pages of orders without line items. It is
// read-only: the same offset and limit return the same page as long as the
// underlying store is not mutated concurrently.
type PageLoader struct {
	store   RecordStore
	timeout time.Duration
}

// NewPageLoader creates a page loader over the given store. timeout bounds
// each fetch; zero disables it.
func NewPageLoader(store RecordStore, timeout time.Duration) *PageLoader {
	return &PageLoader{store: store, timeout: timeout}
}

// LoadPage fetches one page of orders plus the store's total count. Failures
// surface as *StoreError; the caller decides retry policy.
func (p *PageLoader) LoadPage(ctx context.Context, offset, limit int) ([]orderset.Order, int, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	orders, total, err := p.store.ListOrderPage(ctx, offset, limit)
	if err != nil {
		return nil, 0, &StoreError{Op: "ListOrderPage", Err: err}
	}
	return orders, total, nil
}
