// Package storeinfra provides the bun-backed implementation of the record
// store the loader engine reads from. It satisfies loader.RecordStore
// structurally so the engine never depends on this package.
package storeinfra

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-order-loader/orderset"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// BunStore exposes the two read operations the loading pipeline needs:
// stable-ordered order pages and WHERE IN line-item lookups.
type BunStore struct {
	db *bun.DB
}

// NewStore wraps an existing bun.DB, whatever its dialect.
func NewStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// NewSQLiteStore opens a SQLite database at dsn. Tests use ":memory:".
func NewSQLiteStore(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	return &BunStore{db: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

// NewPostgresStore opens a Postgres database at dsn via lib/pq.
func NewPostgresStore(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &BunStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// DB exposes the underlying bun handle for callers that seed or migrate.
func (s *BunStore) DB() *bun.DB {
	return s.db
}

// Close releases the underlying database handle.
func (s *BunStore) Close() error {
	return s.db.Close()
}

// ListOrderPage returns one page of orders without line items plus the total
// order count. The sort key is fixed (created_at descending, id descending as
// tiebreak) so repeated calls never overlap or gap.
func (s *BunStore) ListOrderPage(ctx context.Context, offset, limit int) ([]orderset.Order, int, error) {
	var orders []orderset.Order
	total, err := s.db.NewSelect().
		Model(&orders).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListLineItems returns the line items belonging to the given orders. The
// caller keeps len(orderIDs) under the transport limit.
func (s *BunStore) ListLineItems(ctx context.Context, orderIDs []string) ([]orderset.LineItem, error) {
	items := make([]orderset.LineItem, 0)
	if len(orderIDs) == 0 {
		return items, nil
	}
	err := s.db.NewSelect().
		Model(&items).
		Where("order_id IN (?)", bun.In(orderIDs)).
		Order("order_id").
		Order("position").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ResetSchema drops and recreates the orders and line_items tables. It exists
// for tests and examples, not production migrations.
func (s *BunStore) ResetSchema(ctx context.Context) error {
	models := []any{(*orderset.LineItem)(nil), (*orderset.Order)(nil)}
	for _, model := range models {
		if _, err := s.db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SeedOrders bulk-inserts orders.
func (s *BunStore) SeedOrders(ctx context.Context, orders []orderset.Order) error {
	if len(orders) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&orders).Exec(ctx)
	return err
}

// SeedLineItems bulk-inserts line items.
func (s *BunStore) SeedLineItems(ctx context.Context, items []orderset.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&items).Exec(ctx)
	return err
}
