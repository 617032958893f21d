package di

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-order-loader/loader"
	"github.com/goliatone/go-order-loader/orderset"
	"github.com/goliatone/go-order-loader/pkg/testsupport"
)

// memStore is a minimal in-memory RecordStore for wiring tests.
type memStore struct {
	mu     sync.Mutex
	orders []orderset.Order
	items  map[string][]orderset.LineItem
}

func newMemStore(count int) *memStore {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	orders := testsupport.MakeOrders(count, orderset.StatusInvoiced, base)
	items := make(map[string][]orderset.LineItem, count)
	for _, order := range orders {
		items[order.ID] = testsupport.MakeLineItems(order.ID, 2)
	}
	return &memStore{orders: orders, items: items}
}

func (s *memStore) ListOrderPage(ctx context.Context, offset, limit int) ([]orderset.Order, int, error) {
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

func (s *memStore) ListLineItems(ctx context.Context, orderIDs []string) ([]orderset.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []orderset.LineItem
	for _, id := range orderIDs {
		items = append(items, s.items[id]...)
	}
	return items, nil
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults: %v", err)
	}
	if container.Config().InitialPageSize != 100 {
		t.Errorf("unexpected InitialPageSize %d", container.Config().InitialPageSize)
	}
	if container.Logger() == nil {
		t.Error("container should carry a logger")
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := loader.DefaultConfig()
	cfg.InitialPageSize = 0
	if _, err := NewContainer(cfg); err == nil {
		t.Error("expected a validation error")
	}
}

func TestContainerBuildsWorkingEngine(t *testing.T) {
	cfg := loader.DefaultConfig()
	cfg.InitialPageSize = 3
	cfg.BackgroundPageSize = 4
	cfg.MaxChildChunkSize = 2
	cfg.InterBatchDelay = time.Millisecond

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	store := newMemStore(10)
	engine, err := container.NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer engine.Stop()

	select {
	case <-engine.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("engine never converged")
	}

	snap := engine.Snapshot()
	if len(snap.Orders) != 10 || snap.TotalKnown != 10 {
		t.Fatalf("got %d orders, total %d; want 10, 10", len(snap.Orders), snap.TotalKnown)
	}
	if !snap.InitialLoadComplete {
		t.Error("InitialLoadComplete should be set")
	}
	for id, order := range snap.Orders {
		if !order.Items.Loaded() || order.Items.Len() != 2 {
			t.Errorf("order %s: loaded=%v len=%d", id, order.Items.Loaded(), order.Items.Len())
		}
	}
}

func TestEnginesDoNotShareWorkingSets(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults: %v", err)
	}

	first, err := container.NewEngine(newMemStore(1))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	second, err := container.NewEngine(newMemStore(1))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if first.Cache() == second.Cache() {
		t.Error("each engine must own its cache store")
	}
}
