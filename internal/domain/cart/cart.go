// Package cart implements the in-memory shopping cart of a single session.
//
// The cart is a pure value store. It owns the ordered list of lines and the
// arithmetic over them; re-rendering and notifications are the caller's job.
package cart

import (
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/inputerr"
	"github.com/xenking/storefront/internal/domain/product"
)

// ErrNegativePrice is returned when a product with a negative unit price is added.
var ErrNegativePrice = errors.New("unit price must not be negative")

// Line is one product entry in the cart.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns UnitPrice multiplied by Quantity, unrounded.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds lines in first-added order. Each product id appears at most
// once and every quantity is at least one.
//
// Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(id string) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ProductID == id })
}

// Add puts one unit of p into the cart. An existing line is incremented in
// place; a new product is appended with quantity 1. The first-seen name and
// price of a line are kept.
func (c *Cart) Add(p product.Product) (Line, error) {
	if p.ID == "" {
		return Line{}, inputerr.Validation("id", "product id is required")
	}
	if p.UnitPrice.IsNegative() {
		return Line{}, errors.Wrapf(ErrNegativePrice, "add %q", p.ID)
	}
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return c.lines[i], nil
	}
	l := Line{ProductID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Quantity: 1}
	c.lines = append(c.lines, l)
	return l, nil
}

// Decrement removes one unit of id. The line disappears when its quantity
// reaches zero, in which case the returned Line has Quantity 0. The boolean
// reports whether id was in the cart.
func (c *Cart) Decrement(id string) (Line, bool) {
	i := c.index(id)
	if i < 0 {
		return Line{}, false
	}
	c.lines[i].Quantity--
	l := c.lines[i]
	if l.Quantity == 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
	return l, true
}

// Remove deletes the whole line for id regardless of quantity. Removing an
// absent id is a no-op and returns false.
func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// ItemCount returns the sum of all quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Quantity returns the quantity of id, or 0 when it is not in the cart.
func (c *Cart) Quantity(id string) int {
	if i := c.index(id); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the lines in display order.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// Total returns the exact sum of all line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}
