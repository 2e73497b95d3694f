package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the archived record of a completed demo checkout. It is never
// read back into a cart.
type Order struct {
	ID       string
	Identity string
	Items    []Item
	Total    decimal.Decimal
	PlacedAt time.Time
}

// Item is a single line of an archived order.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Total returns UnitPrice multiplied by Quantity.
func (i Item) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	ListByIdentity(ctx context.Context, identity string) ([]Order, error)
}
