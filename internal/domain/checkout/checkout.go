// Package checkout prices a cart against a catalog and an ordered list of
// offers.
package checkout

import (
	"github.com/xenking/supermarket-receipt/internal/domain/offer"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// Cart exposes the cart contents consumed by Checkout.
type Cart interface {
	Items() []product.Quantity
	Accumulated() product.Quantities
}

// Step records the state of one fired offer during a checkout.
type Step struct {
	Applied AppliedDiscount
	// Remaining holds the quantities left for later offers.
	Remaining product.Quantities
}

// Checkout prices every cart addition and applies offers in order. Each
// fired offer consumes quantity, so later offers only see what is left.
// A catalog miss aborts the whole checkout and is returned as is.
func Checkout(cart Cart, offers []offer.Offer, catalog product.Catalog) (*Receipt, error) {
	receipt, _, err := Trace(cart, offers, catalog)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Trace is Checkout that also reports the quantities left after each fired
// offer.
func Trace(cart Cart, offers []offer.Offer, catalog product.Catalog) (*Receipt, []Step, error) {
	items, err := priceItems(cart.Items(), catalog)
	if err != nil {
		return nil, nil, err
	}

	remaining := cart.Accumulated().Clone()
	var (
		discounts []AppliedDiscount
		steps     []Step
	)
	for _, o := range offers {
		if !o.Applicable(remaining) {
			continue
		}

		discount, err := o.Discount(remaining, catalog)
		if err != nil {
			return nil, nil, err
		}

		remaining = remaining.Without(discount.Consumed)
		applied := AppliedDiscount{Offer: o, Discount: discount}
		discounts = append(discounts, applied)
		steps = append(steps, Step{Applied: applied, Remaining: remaining})
	}

	return &Receipt{Items: items, Discounts: discounts}, steps, nil
}

func priceItems(lines []product.Quantity, catalog product.Catalog) ([]Item, error) {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		price, err := catalog.UnitPrice(line.Product)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			Product:    line.Product,
			Quantity:   line.Amount,
			UnitPrice:  price,
			TotalPrice: line.Amount.Mul(price),
		})
	}
	return items, nil
}
