// Package cart holds the shopping cart: an append-only list of product
// additions.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// Cart records product additions in the order they were made.
type Cart struct {
	items []product.Quantity
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends quantity of p to the cart.
func (c *Cart) Add(p product.Product, quantity decimal.Decimal) {
	c.items = append(c.items, product.Quantity{Product: p, Amount: quantity})
}

// AddItem appends a single unit of p.
func (c *Cart) AddItem(p product.Product) {
	c.Add(p, decimal.NewFromInt(1))
}

// Items returns a copy of the raw additions in order.
func (c *Cart) Items() []product.Quantity {
	out := make([]product.Quantity, len(c.items))
	copy(out, c.items)
	return out
}

// Accumulated returns the total quantity per product across all additions.
func (c *Cart) Accumulated() product.Quantities {
	out := make(product.Quantities)
	for _, item := range c.items {
		out[item.Product] = out.Get(item.Product).Add(item.Amount)
	}
	return out
}
