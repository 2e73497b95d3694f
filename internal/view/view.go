// Package view projects storefront state into render models.
//
// Projections are pure and recomputed from scratch after every mutation.
// Monetary values are rounded to two decimals here and nowhere else.
package view

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/notify"
)

// CartLine is one rendered cart row.
type CartLine struct {
	ID            string
	Name          string
	Quantity      int
	QuantityLabel string
	UnitPrice     string
	LineTotal     string
}

// CartView is the rendered cart.
type CartView struct {
	Lines           []CartLine
	Total           string
	ItemCount       int
	CheckoutEnabled bool
}

// CartState is the read side of a cart.
type CartState interface {
	Lines() []cart.Line
	Total() decimal.Decimal
	ItemCount() int
	IsEmpty() bool
}

// ProjectCart renders c. CheckoutEnabled is true exactly when c has lines.
func ProjectCart(c CartState) CartView {
	lines := c.Lines()
	v := CartView{
		Lines:           make([]CartLine, 0, len(lines)),
		Total:           "Total: " + product.FormatPrice(c.Total()),
		ItemCount:       c.ItemCount(),
		CheckoutEnabled: !c.IsEmpty(),
	}
	for _, l := range lines {
		v.Lines = append(v.Lines, CartLine{
			ID:            l.ProductID,
			Name:          l.Name,
			Quantity:      l.Quantity,
			QuantityLabel: fmt.Sprintf("Qty: %d", l.Quantity),
			UnitPrice:     product.FormatPrice(l.UnitPrice),
			LineTotal:     product.FormatPrice(l.Total()),
		})
	}
	return v
}

// ProductView is one rendered catalog entry.
type ProductView struct {
	ID        string
	Name      string
	Price     string
	Category  string
	Thumbnail string
	InCart    int
}

// ProjectProducts renders the catalog, annotating how many of each product
// are in c. c may be nil.
func ProjectProducts(products []product.Product, c CartQuantities) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		pv := ProductView{
			ID:        p.ID,
			Name:      p.Name,
			Price:     product.FormatPrice(p.UnitPrice),
			Category:  p.Category,
			Thumbnail: p.Image.Thumbnail,
		}
		if c != nil {
			pv.InCart = c.Quantity(p.ID)
		}
		out = append(out, pv)
	}
	return out
}

// CartQuantities reports per-product quantities.
type CartQuantities interface {
	Quantity(id string) int
}

// Toast is a rendered notification.
type Toast struct {
	ID      uint64
	Message string
	Level   notify.Level
}

// ProjectToasts renders the active notifications in order.
func ProjectToasts(ts []notify.Toast) []Toast {
	out := make([]Toast, 0, len(ts))
	for _, t := range ts {
		out = append(out, Toast{ID: t.ID, Message: t.Message, Level: t.Level})
	}
	return out
}
