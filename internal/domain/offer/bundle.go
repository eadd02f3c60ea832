package offer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// BundleDiscount takes a percentage off every complete occurrence of a
// multi-product bundle.
type BundleDiscount struct {
	bundle  []product.Quantity
	percent decimal.Decimal
}

// NewBundleDiscount builds a bundle offer. The bundle needs at least two
// distinct products, each with a positive minimum quantity.
func NewBundleDiscount(percent decimal.Decimal, bundle ...product.Quantity) (*BundleDiscount, error) {
	if len(bundle) < 2 {
		return nil, &InvalidConfigurationError{
			Type:   TypeBundleDiscount,
			Reason: fmt.Sprintf("bundle must have at least 2 products, got %d", len(bundle)),
		}
	}

	seen := make(map[product.Product]struct{}, len(bundle))
	for _, m := range bundle {
		if _, ok := seen[m.Product]; ok {
			return nil, &InvalidConfigurationError{
				Type:   TypeBundleDiscount,
				Reason: fmt.Sprintf("product %s listed twice", m.Product),
			}
		}
		seen[m.Product] = struct{}{}

		if !m.Amount.IsPositive() {
			return nil, &InvalidConfigurationError{
				Type:   TypeBundleDiscount,
				Reason: fmt.Sprintf("quantity of %s must be positive, got %s", m.Product, m.Amount),
			}
		}
	}

	members := make([]product.Quantity, len(bundle))
	copy(members, bundle)
	return &BundleDiscount{bundle: members, percent: percent}, nil
}

// Bundle returns the members in declaration order.
func (o *BundleDiscount) Bundle() []product.Quantity {
	out := make([]product.Quantity, len(o.bundle))
	copy(out, o.bundle)
	return out
}

// Percent returns the discount rate.
func (o *BundleDiscount) Percent() decimal.Decimal { return o.percent }

func (o *BundleDiscount) Type() Type { return TypeBundleDiscount }

func (o *BundleDiscount) Products() []product.Product {
	out := make([]product.Product, len(o.bundle))
	for i, m := range o.bundle {
		out[i] = m.Product
	}
	return out
}

func (o *BundleDiscount) Applicable(q product.Quantities) bool {
	for _, m := range o.bundle {
		if q.Get(m.Product).LessThan(m.Amount) {
			return false
		}
	}
	return o.occurrences(q).IsPositive()
}

func (o *BundleDiscount) Discount(q product.Quantities, catalog product.Catalog) (Discount, error) {
	occurrences := o.occurrences(q)

	cost := decimal.Zero
	consumed := make([]product.Quantity, len(o.bundle))
	for i, m := range o.bundle {
		price, err := catalog.UnitPrice(m.Product)
		if err != nil {
			return Discount{}, err
		}
		cost = cost.Add(m.Amount.Mul(price))
		consumed[i] = product.Quantity{Product: m.Product, Amount: m.Amount.Mul(occurrences)}
	}

	return Discount{
		Consumed:    consumed,
		Description: o.Description(),
		Amount:      occurrences.Mul(cost).Mul(o.percent).Div(hundred),
	}, nil
}

// occurrences is the number of complete bundles the quantities can supply.
func (o *BundleDiscount) occurrences(q product.Quantities) decimal.Decimal {
	var least decimal.Decimal
	for i, m := range o.bundle {
		n, _ := q.Get(m.Product).QuoRem(m.Amount, 0)
		if i == 0 || n.LessThan(least) {
			least = n
		}
	}
	if least.IsNegative() {
		return decimal.Zero
	}
	return least
}

func (o *BundleDiscount) Description() string {
	return fmt.Sprintf("%s%% off(%s)", o.percent.StringFixed(2), formatMembers(o.bundle))
}
