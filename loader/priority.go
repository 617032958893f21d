package loader

import (
	"sort"
	"time"

	"github.com/goliatone/go-order-loader/orderset"
)

// PrioritySelector decides which orders from the first page need their line
// items resolved before the initial render counts as ready. The dashboard
// needs accurate totals for a small, important subset; everything else is
// filled in by the background scheduler.
type PrioritySelector struct {
	windowDays  int
	recentCount int
	billable    map[orderset.OrderStatus]struct{}
	now         func() time.Time
}

// NewPrioritySelector builds a selector from the config's priority rules. The
// clock is injectable for tests via WithClock.
func NewPrioritySelector(cfg Config) *PrioritySelector {
	billable := make(map[orderset.OrderStatus]struct{}, len(cfg.BillableStatuses))
	for _, status := range cfg.BillableStatuses {
		billable[status] = struct{}{}
	}
	return &PrioritySelector{
		windowDays:  cfg.PriorityWindowDays,
		recentCount: cfg.PriorityRecentCount,
		billable:    billable,
		now:         time.Now,
	}
}

// WithClock replaces the selector's time source and returns the selector.
func (s *PrioritySelector) WithClock(now func() time.Time) *PrioritySelector {
	s.now = now
	return s
}

// Select returns the minimal ID set whose line items must be resolved now:
// billable orders updated within the window, union the most recently created
// orders. An empty rule set selects nothing, which means no blocking join.
func (s *PrioritySelector) Select(page []orderset.Order) []string {
	selected := make(map[string]struct{})

	if s.windowDays > 0 && len(s.billable) > 0 {
		cutoff := s.now().AddDate(0, 0, -s.windowDays)
		for _, order := range page {
			if _, ok := s.billable[order.Status]; !ok {
				continue
			}
			if order.UpdatedAt.Before(cutoff) {
				continue
			}
			selected[order.ID] = struct{}{}
		}
	}

	if s.recentCount > 0 {
		byCreated := make([]orderset.Order, len(page))
		copy(byCreated, page)
		sort.Slice(byCreated, func(i, j int) bool {
			return byCreated[i].CreatedAt.After(byCreated[j].CreatedAt)
		})
		limit := s.recentCount
		if limit > len(byCreated) {
			limit = len(byCreated)
		}
		for _, order := range byCreated[:limit] {
			selected[order.ID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
