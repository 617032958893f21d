package loader

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/goliatone/go-order-loader/orderset"
)

// ChunkedFetcher resolves line items for arbitrarily many orders by splitting
// the ID list into chunks the transport will accept. One chunk failing is
// logged and skipped rather than aborting the whole call, so the result map is
// partial on degraded runs: an order absent from the map is "not yet
// resolved", while an order present with an empty list is confirmed to have
// zero items.
type ChunkedFetcher struct {
	store     RecordStore
	chunkSize int
	timeout   time.Duration
	log       *slog.Logger
}

// NewChunkedFetcher creates a fetcher that issues chunks of at most chunkSize
// IDs. timeout bounds each chunk's fetch; zero disables it.
func NewChunkedFetcher(store RecordStore, chunkSize int, timeout time.Duration, log *slog.Logger) *ChunkedFetcher {
	if log == nil {
		log = slog.Default()
	}
	return &ChunkedFetcher{store: store, chunkSize: chunkSize, timeout: timeout, log: log}
}

// FetchChildren resolves line items for the given orders, issuing
// ceil(len(orderIDs)/chunkSize) store calls. The returned lists are sorted
// ascending by position.
func (f *ChunkedFetcher) FetchChildren(ctx context.Context, orderIDs []string) (map[string][]orderset.LineItem, error) {
	result := make(map[string][]orderset.LineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	chunks := chunkIDs(orderIDs, f.chunkSize)
	for i, chunk := range chunks {
		items, err := f.fetchChunk(ctx, chunk)
		if err != nil {
			chunkErr := &ChunkError{Chunk: i, Total: len(chunks), IDs: chunk, Err: err}
			f.log.Warn("line item chunk failed, orders stay unresolved",
				"chunk", i+1, "chunks", len(chunks), "orders", len(chunk), "error", err)
			// A cancelled parent context means nothing further will
			// succeed; hand back what we have.
			if ctx.Err() != nil {
				return result, chunkErr
			}
			continue
		}

		// Every ID in a successful chunk resolves, including orders the
		// store returned no rows for. That is the loaded-empty state.
		for _, id := range chunk {
			if _, ok := result[id]; !ok {
				result[id] = []orderset.LineItem{}
			}
		}
		for _, item := range items {
			result[item.OrderID] = append(result[item.OrderID], item)
		}
	}

	for id := range result {
		sort.Slice(result[id], func(i, j int) bool {
			return result[id][i].Position < result[id][j].Position
		})
	}
	return result, nil
}

func (f *ChunkedFetcher) fetchChunk(ctx context.Context, ids []string) ([]orderset.LineItem, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.store.ListLineItems(ctx, ids)
}

// chunkIDs partitions ids into slices of at most size elements.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
