package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/offer"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// Item is one priced cart addition.
type Item struct {
	Product    product.Product
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// AppliedDiscount pairs a fired offer with the discount it produced.
type AppliedDiscount struct {
	Offer    offer.Offer
	Discount offer.Discount
}

// Receipt is the result of a checkout. It is not modified after creation.
type Receipt struct {
	Items     []Item
	Discounts []AppliedDiscount
}

// TotalPrice is the sum of item prices minus the sum of discount amounts.
func (r *Receipt) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.TotalPrice)
	}
	for _, applied := range r.Discounts {
		total = total.Sub(applied.Discount.Amount)
	}
	return total
}

// Consumed sums the consumed quantity per product across all discounts.
func (r *Receipt) Consumed() product.Quantities {
	out := make(product.Quantities)
	for _, applied := range r.Discounts {
		for _, c := range applied.Discount.Consumed {
			out[c.Product] = out.Get(c.Product).Add(c.Amount)
		}
	}
	return out
}

// DiscountTotal sums the discount amounts.
func (r *Receipt) DiscountTotal() decimal.Decimal {
	total := decimal.Zero
	for _, applied := range r.Discounts {
		total = total.Add(applied.Discount.Amount)
	}
	return total
}
