package offer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(3)
	ten   = decimal.NewFromInt(10)
)

// ThreeForTwo charges two units out of every three.
type ThreeForTwo struct {
	Product product.Product
}

func (o ThreeForTwo) Type() Type { return TypeThreeForTwo }

func (o ThreeForTwo) Products() []product.Product { return []product.Product{o.Product} }

func (o ThreeForTwo) Applicable(q product.Quantities) bool {
	return q.Get(o.Product).Floor().GreaterThanOrEqual(three)
}

func (o ThreeForTwo) Discount(q product.Quantities, catalog product.Catalog) (Discount, error) {
	price, err := catalog.UnitPrice(o.Product)
	if err != nil {
		return Discount{}, err
	}

	quantity := q.Get(o.Product)
	groups, rest := quantity.Floor().QuoRem(three, 0)

	charged := groups.Mul(two).Mul(price).Add(rest.Mul(price))
	return Discount{
		Consumed:    []product.Quantity{{Product: o.Product, Amount: groups.Mul(three)}},
		Description: o.Description(),
		Amount:      quantity.Mul(price).Sub(charged),
	}, nil
}

func (o ThreeForTwo) Description() string {
	return fmt.Sprintf("3 for 2(%s)", o.Product.Name)
}

// TenPercentDiscount takes a fixed 10% off the whole quantity of a product.
type TenPercentDiscount struct {
	Product product.Product
}

// Percent is the discount rate, fixed at 10.
func (o TenPercentDiscount) Percent() decimal.Decimal { return ten }

func (o TenPercentDiscount) Type() Type { return TypeTenPercentDiscount }

func (o TenPercentDiscount) Products() []product.Product { return []product.Product{o.Product} }

func (o TenPercentDiscount) Applicable(q product.Quantities) bool {
	return q.Has(o.Product)
}

func (o TenPercentDiscount) Discount(q product.Quantities, catalog product.Catalog) (Discount, error) {
	price, err := catalog.UnitPrice(o.Product)
	if err != nil {
		return Discount{}, err
	}

	quantity := q.Get(o.Product)
	return Discount{
		Consumed:    []product.Quantity{{Product: o.Product, Amount: quantity}},
		Description: o.Description(),
		Amount:      quantity.Mul(price).Mul(o.Percent()).Div(hundred),
	}, nil
}

func (o TenPercentDiscount) Description() string {
	return fmt.Sprintf("%s%% off(%s)", formatNumber(o.Percent()), o.Product.Name)
}

// XForAmount sells every group of Quantity units for a fixed Amount.
type XForAmount struct {
	product  product.Product
	quantity decimal.Decimal
	amount   decimal.Decimal
}

// NewXForAmount builds an "N for amount" offer. The group size must cover at
// least one whole unit.
func NewXForAmount(p product.Product, quantity, amount decimal.Decimal) (XForAmount, error) {
	if quantity.Floor().LessThan(decimal.NewFromInt(1)) {
		return XForAmount{}, &InvalidConfigurationError{
			Type:   TypeXForAmount,
			Reason: fmt.Sprintf("quantity for offer must be at least 1, got %s", quantity),
		}
	}
	return XForAmount{product: p, quantity: quantity, amount: amount}, nil
}

// Quantity returns the group size.
func (o XForAmount) Quantity() decimal.Decimal { return o.quantity }

// Amount returns the price of one group.
func (o XForAmount) Amount() decimal.Decimal { return o.amount }

func (o XForAmount) Type() Type { return TypeXForAmount }

func (o XForAmount) Products() []product.Product { return []product.Product{o.product} }

func (o XForAmount) Applicable(q product.Quantities) bool {
	return q.Get(o.product).Floor().GreaterThanOrEqual(o.quantity.Floor())
}

func (o XForAmount) Discount(q product.Quantities, catalog product.Catalog) (Discount, error) {
	price, err := catalog.UnitPrice(o.product)
	if err != nil {
		return Discount{}, err
	}

	quantity := q.Get(o.product)
	groups, rest := quantity.Floor().QuoRem(o.quantity.Floor(), 0)

	charged := o.amount.Mul(groups).Add(rest.Mul(price))
	consumed := decimal.Min(groups.Mul(o.quantity), quantity)
	return Discount{
		Consumed:    []product.Quantity{{Product: o.product, Amount: consumed}},
		Description: o.Description(),
		Amount:      quantity.Mul(price).Sub(charged),
	}, nil
}

func (o XForAmount) Description() string {
	return fmt.Sprintf("%s for %s(%s)", o.quantity.Floor(), formatNumber(o.amount), o.product.Name)
}
