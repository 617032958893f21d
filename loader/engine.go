package loader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goliatone/go-order-loader/internal/flightinfra"
	"github.com/goliatone/go-order-loader/orderset"
)

// Engine orchestrates the progressive load: one initial page, a blocking
// priority join for the orders the first render needs, then a background fill
// that converges the rest of the working set. All paths merge into a single
// CacheStore, which is the engine's only shared mutable state.
type Engine struct {
	store     RecordStore
	cfg       Config
	cache     *orderset.CacheStore
	pages     *PageLoader
	fetcher   *ChunkedFetcher
	selector  *PrioritySelector
	resolver  ChildResolver
	scheduler *BackfillScheduler
	gate      *BackfillGate
	log       *slog.Logger

	started bool
	cancel  context.CancelFunc
}

// Option customizes an Engine at construction time.
type Option func(*Engine)

// WithLogger replaces the engine's logger, which defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithResolver replaces the child resolver. Tests use this to count or fail
// fetches; production code normally keeps the default single-flight resolver.
func WithResolver(r ChildResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithClock replaces the priority selector's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.selector.WithClock(now)
	}
}

// New validates cfg and wires an engine over the given store.
func New(store RecordStore, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		store:    store,
		cfg:      cfg,
		cache:    orderset.NewCacheStore(),
		selector: NewPrioritySelector(cfg),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.pages = NewPageLoader(store, cfg.FetchTimeout)
	e.fetcher = NewChunkedFetcher(store, cfg.MaxChildChunkSize, cfg.FetchTimeout, e.log)

	if e.resolver == nil {
		if cfg.Flight != nil {
			flight, err := flightinfra.NewResolver(cfg.Flight.toInternal(), e.fetcher.FetchChildren)
			if err != nil {
				return nil, err
			}
			e.resolver = flight
		} else {
			e.resolver = directResolver{fetcher: e.fetcher}
		}
	}

	e.scheduler = NewBackfillScheduler(e.pages, e.resolver, e.cache, cfg, e.log)
	e.gate = NewBackfillGate(e.cache, e.resolver, e.log)
	return e, nil
}

// Start performs the initial load and launches the background fill. A store
// failure on the first page is fatal and returned to the caller; a priority
// join failure is not, since the affected orders stay Unloaded and the
// scheduler retries them. Start may be called once.
func (e *Engine) Start(ctx context.Context) error {
	if e.started {
		return errors.New("loader: engine already started")
	}
	e.started = true

	page, total, err := e.pages.LoadPage(ctx, 0, e.cfg.InitialPageSize)
	if err != nil {
		return err
	}
	e.cache.MergeOrders(page, total)

	if ids := e.selector.Select(page); len(ids) > 0 {
		items, err := e.resolver.Resolve(ctx, ids)
		if len(items) > 0 {
			e.cache.MergeChildren(items)
		}
		if err != nil {
			e.log.Warn("priority join failed, orders stay unloaded", "orders", len(ids), "error", err)
		}
	}
	e.cache.MarkInitialLoadComplete()

	// The background fill outlives the Start call's context; Stop is the
	// only way to cancel it.
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	go e.scheduler.Run(bgCtx)
	return nil
}

// Stop cancels the background fill. Progress already merged stays valid.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

// Done is closed when the background fill finishes or is cancelled.
func (e *Engine) Done() <-chan struct{} {
	return e.scheduler.Done()
}

// Snapshot returns the current state of the working set.
func (e *Engine) Snapshot() orderset.Snapshot {
	return e.cache.Snapshot()
}

// Subscribe registers fn to fire after every merge.
func (e *Engine) Subscribe(fn orderset.Subscriber) (cancel func()) {
	return e.cache.Subscribe(fn)
}

// EnsureLoaded fast-paths line items for orders the UI is about to display.
func (e *Engine) EnsureLoaded(ctx context.Context, orderIDs []string) error {
	return e.gate.EnsureLoaded(ctx, orderIDs)
}

// Cache exposes the canonical store, mainly for tests and advanced consumers.
func (e *Engine) Cache() *orderset.CacheStore {
	return e.cache
}
