package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/inputerr"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item that can be placed in the cart.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Category  string
	Image     Image
}

// Image holds responsive image URLs for a product.
type Image struct {
	Thumbnail string
	Mobile    string
	Tablet    string
	Desktop   string
}

// Input is the raw payload of an add-to-cart trigger: an identifier, a display
// name and the price exactly as it was shown to the user.
type Input struct {
	ID        string
	Name      string
	PriceText string
}

// FromInput converts a raw add trigger into a Product. The price text is
// parsed here so malformed prices never reach the cart.
func FromInput(in Input) (Product, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Product{}, inputerr.Validation("id", "product id is required")
	}
	price, err := ParsePrice(in.PriceText)
	if err != nil {
		return Product{}, errors.Wrapf(err, "parse price of %q", id)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = id
	}
	return Product{ID: id, Name: name, UnitPrice: price}, nil
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
