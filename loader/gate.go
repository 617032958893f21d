package loader

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-order-loader/orderset"
)

// BackfillGate loads line items for specific orders the UI is about to
// display, ahead of the background scheduler's sweep. It is a priority
// escalation, not a separate cache: results merge through the same CacheStore
// as every other path.
type BackfillGate struct {
	cache    *orderset.CacheStore
	resolver ChildResolver
	log      *slog.Logger
}

// NewBackfillGate wires a gate over the shared cache and resolver.
func NewBackfillGate(cache *orderset.CacheStore, resolver ChildResolver, log *slog.Logger) *BackfillGate {
	if log == nil {
		log = slog.Default()
	}
	return &BackfillGate{cache: cache, resolver: resolver, log: log}
}

// EnsureLoaded resolves line items for the given orders if they are cached
// and still Unloaded. IDs that are unknown or already Loaded are skipped; if
// nothing is left the call is a no-op. A fetch failure is logged and returned,
// but the affected orders simply stay Unloaded for a later pass.
func (g *BackfillGate) EnsureLoaded(ctx context.Context, orderIDs []string) error {
	need := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		order, ok := g.cache.Get(id)
		if !ok || order.Items.Loaded() {
			continue
		}
		need = append(need, id)
	}
	if len(need) == 0 {
		return nil
	}

	items, err := g.resolver.Resolve(ctx, need)
	if len(items) > 0 {
		g.cache.MergeChildren(items)
	}
	if err != nil {
		g.log.Warn("on-demand backfill failed, orders stay unloaded", "orders", len(need), "error", err)
		return err
	}
	return nil
}
