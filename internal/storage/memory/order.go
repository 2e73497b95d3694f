// Package memory implements process-local storage used when no database is
// configured.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/order"
)

// ErrDuplicateOrder is returned when an order id is stored twice.
var ErrDuplicateOrder = errors.New("order already exists")

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository keeps orders in memory. It is safe for concurrent use.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []order.Order
	ids    map[string]struct{}
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{ids: make(map[string]struct{})}
}

// Create stores a copy of o.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[o.ID]; ok {
		return errors.Wrapf(ErrDuplicateOrder, "order %q", o.ID)
	}
	c := *o
	c.Items = slices.Clone(o.Items)
	r.orders = append(r.orders, c)
	r.ids[o.ID] = struct{}{}
	return nil
}

// ListByIdentity returns the orders of identity, newest first.
func (r *OrderRepository) ListByIdentity(_ context.Context, identity string) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []order.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].Identity == identity {
			o := r.orders[i]
			o.Items = slices.Clone(o.Items)
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b order.Order) int {
		return b.PlacedAt.Compare(a.PlacedAt)
	})
	return out, nil
}

// Len returns the number of stored orders.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
