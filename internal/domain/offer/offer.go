// Package offer implements promotional offers and their discount math.
//
// An offer targets a fixed set of products. Given the quantities still
// available in a cart it reports whether it applies and, if so, computes a
// Discount that names the quantities it used up.
package offer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// Type names an offer variant.
type Type string

const (
	TypeThreeForTwo        Type = "three_for_two"
	TypeTenPercentDiscount Type = "ten_percent_discount"
	TypeXForAmount         Type = "x_for_amount"
	TypeBundleDiscount     Type = "bundle_discount"
)

var hundred = decimal.NewFromInt(100)

// Offer is a promotional rule bound to one or more products.
type Offer interface {
	// Type reports the offer variant.
	Type() Type
	// Products returns the distinct products the offer targets.
	Products() []product.Product
	// Applicable reports whether the offer fires for the given quantities.
	Applicable(q product.Quantities) bool
	// Discount computes the offer's effect. Callers check Applicable first.
	Discount(q product.Quantities, catalog product.Catalog) (Discount, error)
	// Description is the receipt label for the offer.
	Description() string
}

// Discount is the effect of one fired offer during one checkout.
type Discount struct {
	// Consumed lists the quantities used up by this discount.
	Consumed    []product.Quantity
	Description string
	// Amount is subtracted from the receipt total. It may be negative.
	Amount decimal.Decimal
}

// InvalidConfigurationError reports an offer that cannot be constructed.
type InvalidConfigurationError struct {
	Type   Type
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s offer: %s", e.Type, e.Reason)
}

// formatNumber prints d the way a floating point literal would be written:
// whole values keep one fractional digit ("10.0", "95.0").
func formatNumber(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(1)
	}
	return d.String()
}

func formatMembers(members []product.Quantity) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = m.Product.Name + " " + m.Product.Unit.Format(m.Amount)
	}
	return strings.Join(parts, " + ")
}
