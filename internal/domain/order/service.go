package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems      = errors.New("items required")
	ErrMissingIdentity = errors.New("identity required")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// TotalMismatchError indicates the recorded total differs from the sum of
// the items.
type TotalMismatchError struct {
	Want decimal.Decimal
	Got  decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("order total %s does not match items sum %s", e.Got, e.Want)
}

// Service archives completed checkouts.
type Service struct {
	orders Repository
}

// NewService creates an order Service backed by orders.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Record validates o and persists it. The total must equal the exact sum of
// the item totals.
func (s *Service) Record(ctx context.Context, o *Order) error {
	if o.Identity == "" {
		return ErrMissingIdentity
	}
	if len(o.Items) == 0 {
		return ErrEmptyItems
	}

	sum := decimal.Zero
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return &InvalidQuantityError{ProductID: item.ProductID}
		}
		sum = sum.Add(item.Total())
	}
	if !sum.Equal(o.Total) {
		return &TotalMismatchError{Want: sum, Got: o.Total}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return errors.Wrap(err, "create order")
	}
	return nil
}

// History returns the archived orders of identity, newest first.
func (s *Service) History(ctx context.Context, identity string) ([]Order, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}
	orders, err := s.orders.ListByIdentity(ctx, identity)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}
