package orderset

import (
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus enumerates the lifecycle states an order can be in.
type OrderStatus string

const (
	StatusDraft     OrderStatus = "draft"
	StatusSent      OrderStatus = "sent"
	StatusCompleted OrderStatus = "completed"
	StatusInvoiced  OrderStatus = "invoiced"
	StatusCancelled OrderStatus = "cancelled"
)

// Order is a parent record. Its scalar fields are cheap to fetch and always
// travel with page loads; Items is join data that arrives separately and is
// therefore modeled as a LineItemSet rather than a bare slice.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID        string      `json:"id" bun:"id,pk"`
	Number    string      `json:"number" bun:"number"`
	ClientID  string      `json:"client_id" bun:"client_id"`
	Status    OrderStatus `json:"status" bun:"status"`
	TaxRate   float64     `json:"tax_rate" bun:"tax_rate"`
	Discount  float64     `json:"discount" bun:"discount"`
	CreatedAt time.Time   `json:"created_at" bun:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bun:"updated_at"`

	Items LineItemSet `json:"items" bun:"-"`
}

// LineItem is a child record owned by exactly one order, ordered by Position.
type LineItem struct {
	bun.BaseModel `bun:"table:line_items,alias:li"`

	ID            string  `json:"id" bun:"id,pk"`
	OrderID       string  `json:"order_id" bun:"order_id"`
	Position      int     `json:"position" bun:"position"`
	Description   string  `json:"description" bun:"description"`
	Quantity      float64 `json:"quantity" bun:"quantity"`
	UnitPrice     float64 `json:"unit_price" bun:"unit_price"`
	MarkupPercent float64 `json:"markup_percent" bun:"markup_percent"`
}

// LineItemSet is an order's child collection as a sum type: either Unloaded
// (the zero value) or Loaded with a complete, position-sorted list. A loaded
// set with zero items means the store confirmed the order has no items, which
// is a different state from not having fetched them yet.
type LineItemSet struct {
	loaded bool
	items  []LineItem
}

// LoadedItems returns a Loaded set containing the given items sorted ascending
// by Position. Passing nil or an empty slice yields the loaded-empty state.
func LoadedItems(items []LineItem) LineItemSet {
	sorted := make([]LineItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return LineItemSet{loaded: true, items: sorted}
}

// Loaded reports whether the set holds a complete child list.
func (s LineItemSet) Loaded() bool {
	return s.loaded
}

// Items returns the loaded items, or nil when the set is Unloaded. The
// returned slice is shared and must be treated as read-only.
func (s LineItemSet) Items() []LineItem {
	return s.items
}

// Len returns the number of loaded items; zero when Unloaded.
func (s LineItemSet) Len() int {
	return len(s.items)
}
