package loader

import (
	"context"

	"github.com/goliatone/go-order-loader/orderset"
)

// ChildResolver resolves line items for a set of orders. The default
// implementation wraps the ChunkedFetcher in a single-flight layer so the
// background sweep and an on-demand request never fetch the same order's
// items twice concurrently; directResolver is the undeduplicated fallback.
type ChildResolver interface {
	Resolve(ctx context.Context, orderIDs []string) (map[string][]orderset.LineItem, error)
}

type directResolver struct {
	fetcher *ChunkedFetcher
}

func (r directResolver) Resolve(ctx context.Context, orderIDs []string) (map[string][]orderset.LineItem, error) {
	return r.fetcher.FetchChildren(ctx, orderIDs)
}
