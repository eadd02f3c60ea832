// Package receipt renders checkout receipts.
//
// The plain text layout right-aligns prices against a fixed column width:
//
//	Apples                             10.00
//	  5.00 * 2.000
//	10.0% off(Apples)                  -0.50
//
//	Total:                              9.50
//
// Lines that do not fit are not wrapped or truncated; they simply run past
// the configured width. All amounts use two decimals and '.' as separator.
package receipt

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/checkout"
)

const (
	// DefaultColumns is the default receipt width.
	DefaultColumns = 40
	// DefaultLineSeparator separates receipt lines by default.
	DefaultLineSeparator = "\n"

	totalLabel = "Total: "
)

// Options controls the receipt layout. Zero values select the defaults.
type Options struct {
	// Columns is the width prices are right-aligned against.
	Columns int
	// LineSeparator is placed between lines.
	LineSeparator string
}

func (o Options) withDefaults() Options {
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.LineSeparator == "" {
		o.LineSeparator = DefaultLineSeparator
	}
	return o
}

// Render returns the plain text receipt.
func Render(r *checkout.Receipt, opts Options) string {
	opts = opts.withDefaults()

	lines := make([]string, 0, 2*len(r.Items)+len(r.Discounts)+2)
	for _, item := range r.Items {
		lines = append(lines, itemLines(item, opts.Columns)...)
	}
	for _, applied := range r.Discounts {
		lines = append(lines, discountLine(applied, opts.Columns))
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, aligned(totalLabel, Money(r.TotalPrice()), opts.Columns))

	return strings.Join(lines, opts.LineSeparator)
}

func itemLines(item checkout.Item, columns int) []string {
	primary := aligned(item.Product.Name, Money(item.TotalPrice), columns)
	if item.Quantity.Equal(decimal.NewFromInt(1)) {
		return []string{primary}
	}
	secondary := "  " + Money(item.UnitPrice) + " * " + item.Product.Unit.Format(item.Quantity)
	return []string{primary, secondary}
}

func discountLine(applied checkout.AppliedDiscount, columns int) string {
	return aligned(applied.Discount.Description, "-"+Money(applied.Discount.Amount), columns)
}

// aligned pads between left and right so the line spans columns. Overlong
// content gets no padding.
func aligned(left, right string, columns int) string {
	pad := columns - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if pad < 0 {
		pad = 0
	}
	return left + strings.Repeat(" ", pad) + right
}

// Money formats an amount with exactly two decimals. Negative amounts keep
// their sign, so a negative discount renders as "--17.00".
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
