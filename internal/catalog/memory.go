// Package catalog provides an in-memory product catalog snapshot.
package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

var _ product.Catalog = (*Memory)(nil)

// Entry is a product with its unit price.
type Entry struct {
	Product product.Product
	Price   decimal.Decimal
}

// Memory is a map-backed catalog. Populate it before use; it is safe for
// concurrent reads once populated.
type Memory struct {
	prices map[product.Product]decimal.Decimal
	byName map[string]product.Product
	order  []product.Product
}

// NewMemory returns a catalog holding the given entries.
func NewMemory(entries ...Entry) *Memory {
	m := &Memory{
		prices: make(map[product.Product]decimal.Decimal, len(entries)),
		byName: make(map[string]product.Product, len(entries)),
	}
	for _, e := range entries {
		m.Add(e.Product, e.Price)
	}
	return m
}

// Add sets the unit price of p, replacing any previous price.
func (m *Memory) Add(p product.Product, price decimal.Decimal) {
	if _, ok := m.prices[p]; !ok {
		m.order = append(m.order, p)
	}
	m.prices[p] = price
	m.byName[p.Name] = p
}

// UnitPrice returns the price of p or a *product.NotFoundError.
func (m *Memory) UnitPrice(p product.Product) (decimal.Decimal, error) {
	price, ok := m.prices[p]
	if !ok {
		return decimal.Zero, &product.NotFoundError{Product: p}
	}
	return price, nil
}

// Lookup finds a product by name. When several units share a name the most
// recently added one wins.
func (m *Memory) Lookup(name string) (product.Product, bool) {
	p, ok := m.byName[name]
	return p, ok
}

// Entries returns all products in insertion order.
func (m *Memory) Entries() []Entry {
	out := make([]Entry, len(m.order))
	for i, p := range m.order {
		out[i] = Entry{Product: p, Price: m.prices[p]}
	}
	return out
}

// Len returns the number of products.
func (m *Memory) Len() int {
	return len(m.order)
}
