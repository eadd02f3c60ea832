package product

import "github.com/shopspring/decimal"

// Quantity pairs a product with an amount: a cart line, a bundle member or
// the quantity consumed by a discount.
type Quantity struct {
	Product Product
	Amount  decimal.Decimal
}

// Quantities maps products to accumulated amounts.
type Quantities map[Product]decimal.Decimal

// Get returns the amount for p, or zero when absent.
func (q Quantities) Get(p Product) decimal.Decimal {
	if v, ok := q[p]; ok {
		return v
	}
	return decimal.Zero
}

// Has reports whether p has a positive amount.
func (q Quantities) Has(p Product) bool {
	return q.Get(p).IsPositive()
}

// Clone returns an independent copy of q.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for p, v := range q {
		out[p] = v
	}
	return out
}

// Without returns a new map with consumed amounts subtracted. Remaining
// amounts never go below zero; exhausted products are dropped.
func (q Quantities) Without(consumed []Quantity) Quantities {
	out := q.Clone()
	for _, c := range consumed {
		left := out.Get(c.Product).Sub(c.Amount)
		if !left.IsPositive() {
			delete(out, c.Product)
			continue
		}
		out[c.Product] = left
	}
	return out
}

// SameSet reports whether a and b contain the same products, ignoring order
// and duplicates.
func SameSet(a, b []Product) bool {
	as := make(map[Product]struct{}, len(a))
	for _, p := range a {
		as[p] = struct{}{}
	}
	bs := make(map[Product]struct{}, len(b))
	for _, p := range b {
		if _, ok := as[p]; !ok {
			return false
		}
		bs[p] = struct{}{}
	}
	return len(as) == len(bs)
}
