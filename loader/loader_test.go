package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-order-loader/orderset"
)

var errStoreDown = errors.New("connection refused")

// fakeStore is an in-memory RecordStore that tracks calls so tests can assert
// chunking, retry, and dedup behavior.
type fakeStore struct {
	mu     sync.Mutex
	orders []orderset.Order
	items  map[string][]orderset.LineItem

	pageCalls    int
	itemCalls    [][]string
	pageFailures int            // upcoming page calls that fail
	failIDs      map[string]int // remaining failures for chunks containing id
	pageDelay    time.Duration
}

func newFakeStore(orders []orderset.Order, items map[string][]orderset.LineItem) *fakeStore {
	if items == nil {
		items = make(map[string][]orderset.LineItem)
	}
	return &fakeStore{
		orders:  orders,
		items:   items,
		failIDs: make(map[string]int),
	}
}

func (s *fakeStore) ListOrderPage(ctx context.Context, offset, limit int) ([]orderset.Order, int, error) {
	s.mu.Lock()
	s.pageCalls++
	delay := s.pageDelay
	if s.pageFailures > 0 {
		s.pageFailures--
		s.mu.Unlock()
		return nil, 0, errStoreDown
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(delay):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.orders)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := make([]orderset.Order, end-offset)
	copy(page, s.orders[offset:end])
	return page, total, nil
}

func (s *fakeStore) ListLineItems(ctx context.Context, orderIDs []string) ([]orderset.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	called := make([]string, len(orderIDs))
	copy(called, orderIDs)
	s.itemCalls = append(s.itemCalls, called)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, id := range orderIDs {
		if s.failIDs[id] > 0 {
			s.failIDs[id]--
			return nil, errStoreDown
		}
	}

	var items []orderset.LineItem
	for _, id := range orderIDs {
		items = append(items, s.items[id]...)
	}
	return items, nil
}

func (s *fakeStore) itemCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.itemCalls)
}

func (s *fakeStore) pageCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCalls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeOrder(id string, status orderset.OrderStatus, created time.Time) orderset.Order {
	return orderset.Order{
		ID:        id,
		Number:    "ORD-" + id,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func fakeItems(orderID string, count int) []orderset.LineItem {
	items := make([]orderset.LineItem, count)
	for i := range items {
		items[i] = orderset.LineItem{
			ID:       orderID + "-li" + string(rune('0'+i)),
			OrderID:  orderID,
			Position: i,
			Quantity: 1,
		}
	}
	return items
}

// testConfig keeps unit tests deterministic: no single-flight cache, no
// inter-batch delay, no per-fetch timeout unless a test opts in.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Flight = nil
	cfg.InterBatchDelay = 0
	cfg.FetchTimeout = 0
	return cfg
}
