package receipt

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-faster/jx"

	"github.com/xenking/supermarket-receipt/internal/domain/checkout"
)

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// UnknownFormatError is returned when no generator exists for a format.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown receipt format %q", e.Format)
}

// Generator turns a receipt into a document.
type Generator interface {
	Generate(r *checkout.Receipt, opts Options) string
	ContentType() string
}

// ForFormat returns the generator for name. An empty name selects text.
func ForFormat(name string) (Generator, error) {
	switch Format(strings.ToLower(name)) {
	case FormatText, "":
		return TextGenerator{}, nil
	case FormatHTML:
		return HTMLGenerator{}, nil
	case FormatJSON:
		return JSONGenerator{}, nil
	default:
		return nil, &UnknownFormatError{Format: name}
	}
}

// TextGenerator produces the plain text receipt.
type TextGenerator struct{}

func (TextGenerator) Generate(r *checkout.Receipt, opts Options) string {
	return Render(r, opts)
}

func (TextGenerator) ContentType() string { return "text/plain; charset=utf-8" }

// HTMLGenerator embeds the plain text receipt in a preformatted block.
type HTMLGenerator struct{}

func (HTMLGenerator) Generate(r *checkout.Receipt, opts Options) string {
	opts = opts.withDefaults()
	return strings.Join([]string{
		"<!DOCTYPE html>",
		"<html>",
		"   <body>",
		"           <pre>",
		html.EscapeString(Render(r, opts)),
		"           </pre>",
		"   </body>",
		"</html>",
	}, opts.LineSeparator)
}

func (HTMLGenerator) ContentType() string { return "text/html; charset=utf-8" }

// JSONGenerator produces a structured receipt. Money is encoded as strings
// with two decimals, quantities as exact decimal strings.
type JSONGenerator struct{}

func (JSONGenerator) Generate(r *checkout.Receipt, _ Options) string {
	var e jx.Encoder
	EncodeJSON(&e, r)
	return e.String()
}

func (JSONGenerator) ContentType() string { return "application/json" }

// EncodeJSON writes r as a JSON object.
func EncodeJSON(e *jx.Encoder, r *checkout.Receipt) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.ArrStart()
			for _, item := range r.Items {
				e.Obj(func(e *jx.Encoder) {
					e.Field("product", func(e *jx.Encoder) { e.Str(item.Product.Name) })
					e.Field("unit", func(e *jx.Encoder) { e.Str(item.Product.Unit.String()) })
					e.Field("quantity", func(e *jx.Encoder) { e.Str(item.Quantity.String()) })
					e.Field("unit_price", func(e *jx.Encoder) { e.Str(Money(item.UnitPrice)) })
					e.Field("total_price", func(e *jx.Encoder) { e.Str(Money(item.TotalPrice)) })
				})
			}
			e.ArrEnd()
		})
		e.Field("discounts", func(e *jx.Encoder) {
			e.ArrStart()
			for _, applied := range r.Discounts {
				e.Obj(func(e *jx.Encoder) {
					e.Field("type", func(e *jx.Encoder) { e.Str(string(applied.Offer.Type())) })
					e.Field("description", func(e *jx.Encoder) { e.Str(applied.Discount.Description) })
					e.Field("amount", func(e *jx.Encoder) { e.Str(Money(applied.Discount.Amount)) })
					e.Field("consumed", func(e *jx.Encoder) {
						e.ArrStart()
						for _, c := range applied.Discount.Consumed {
							e.Obj(func(e *jx.Encoder) {
								e.Field("product", func(e *jx.Encoder) { e.Str(c.Product.Name) })
								e.Field("quantity", func(e *jx.Encoder) { e.Str(c.Amount.String()) })
							})
						}
						e.ArrEnd()
					})
				})
			}
			e.ArrEnd()
		})
		e.Field("total", func(e *jx.Encoder) { e.Str(Money(r.TotalPrice())) })
	})
}
