package loader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-order-loader/orderset"
)

// The fast path from the component contracts: a two-record first page where
// the priority rules pick only the newest order. Right after the initial load
// the priority order has its items and the other is still Unloaded; the
// background fill then converges the rest.
func TestEngineFastPath(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	orders := []orderset.Order{
		fakeOrder("a", orderset.StatusSent, base),
		fakeOrder("b", orderset.StatusSent, base.Add(-time.Hour)),
	}
	store := newFakeStore(orders, map[string][]orderset.LineItem{
		"a": fakeItems("a", 2),
		"b": fakeItems("b", 1),
	})

	cfg := testConfig()
	cfg.InitialPageSize = 2
	cfg.PriorityWindowDays = 0
	cfg.PriorityRecentCount = 1 // picks a, the newest

	engine, err := New(store, cfg, WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var mu sync.Mutex
	var initial *orderset.Snapshot
	engine.Subscribe(func(snap orderset.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if snap.InitialLoadComplete && initial == nil {
			initial = &snap
		}
	})

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer engine.Stop()

	mu.Lock()
	if initial == nil {
		mu.Unlock()
		t.Fatal("initial-load snapshot never published")
	}
	a := initial.Orders["a"]
	b := initial.Orders["b"]
	mu.Unlock()

	if !a.Items.Loaded() || a.Items.Len() != 2 {
		t.Errorf("priority order a: loaded=%v len=%d, want loaded with 2 items", a.Items.Loaded(), a.Items.Len())
	}
	if b.Items.Loaded() {
		t.Error("order b must still be Unloaded at initial-load time")
	}

	select {
	case <-engine.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("background fill never finished")
	}

	snap := engine.Snapshot()
	if got := snap.Orders["b"]; !got.Items.Loaded() || got.Items.Len() != 1 {
		t.Errorf("order b after convergence: loaded=%v len=%d", got.Items.Loaded(), got.Items.Len())
	}
}

func TestEngineStartFatalWhenStoreDown(t *testing.T) {
	store := newFakeStore(nil, nil)
	store.pageFailures = 1

	engine, err := New(store, testConfig(), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = engine.Start(context.Background())
	if err == nil {
		t.Fatal("a failed initial page load must be fatal")
	}
	if !IsStoreUnavailable(err) {
		t.Errorf("expected a store error, got %v", err)
	}
}

func TestEngineStartTwice(t *testing.T) {
	orders, items := seedOrders(2)
	store := newFakeStore(orders, items)

	engine, err := New(store, testConfig(), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer engine.Stop()

	if err := engine.Start(context.Background()); err == nil {
		t.Error("second Start should error")
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxChildChunkSize = 0

	if _, err := New(newFakeStore(nil, nil), cfg); err == nil {
		t.Error("expected a validation error")
	}
}

func TestEngineEnsureLoadedEscalatesAheadOfScheduler(t *testing.T) {
	orders, items := seedOrders(6)
	store := newFakeStore(orders, items)

	cfg := testConfig()
	cfg.InitialPageSize = 6
	cfg.PriorityWindowDays = 0
	cfg.PriorityRecentCount = 0
	cfg.MaxChildChunkSize = 1
	cfg.InterBatchDelay = time.Hour // the sweep parks after its first batch

	engine, err := New(store, cfg, WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer engine.Stop()

	// The scheduler will not reach f for an hour; the UI needs it now.
	if err := engine.EnsureLoaded(context.Background(), []string{"f"}); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}

	got, ok := engine.Cache().Get("f")
	if !ok || !got.Items.Loaded() {
		t.Error("on-demand backfill should have resolved f immediately")
	}
}
