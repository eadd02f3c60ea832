// Package pricebook reads price book documents: JSON files declaring catalog
// products, promotional offers and optionally a cart to check out.
//
//	{
//	  "products": [{"name": "Apples", "unit": "kilo", "price": "5.00"}],
//	  "offers": [{"type": "ten_percent_discount", "product": "Apples"}],
//	  "cart": [{"product": "Apples", "quantity": 2}]
//	}
//
// Numeric fields accept JSON numbers or strings.
package pricebook

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/supermarket-receipt/internal/domain/offer"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// Document is a single decoded price book.
type Document struct {
	Products []ProductEntry
	Offers   []OfferEntry
	Cart     []CartLine
}

// ProductEntry declares a catalog product.
type ProductEntry struct {
	Name  string
	Unit  product.Unit
	Price decimal.Decimal
}

// Product returns the declared product identity.
func (p ProductEntry) Product() product.Product {
	return product.Product{Name: p.Name, Unit: p.Unit}
}

// OfferEntry declares an offer. Which fields are used depends on Type.
type OfferEntry struct {
	Type     offer.Type
	Product  string
	Quantity decimal.Decimal
	Amount   decimal.Decimal
	Percent  decimal.Decimal
	Bundle   []BundleMember
}

// BundleMember is one product of a bundle offer.
type BundleMember struct {
	Product  string
	Quantity decimal.Decimal
}

// CartLine is a single cart addition. Unit is optional; when empty the unit
// is taken from the catalog.
type CartLine struct {
	Product  string
	Unit     string
	Quantity decimal.Decimal
}

// Parse decodes a document from data.
func Parse(data []byte) (*Document, error) {
	return Decode(jx.DecodeBytes(data))
}

// Decode reads a document object from d.
func Decode(d *jx.Decoder) (*Document, error) {
	doc := &Document{}
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return errors.Wrapf(err, "product %d", len(doc.Products))
				}
				doc.Products = append(doc.Products, p)
				return nil
			})
		case "offers":
			return d.Arr(func(d *jx.Decoder) error {
				o, err := decodeOffer(d)
				if err != nil {
					return errors.Wrapf(err, "offer %d", len(doc.Offers))
				}
				doc.Offers = append(doc.Offers, o)
				return nil
			})
		case "cart":
			lines, err := decodeCartLines(d)
			if err != nil {
				return errors.Wrap(err, "cart")
			}
			doc.Cart = lines
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode price book")
	}
	return doc, nil
}

// DecodeCartRequest reads a checkout request body of the form
// {"items": [{"product": "Apples", "unit": "kilo", "quantity": 2}]}.
func DecodeCartRequest(d *jx.Decoder) ([]CartLine, error) {
	var lines []CartLine
	seen := false
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		seen = true
		var err error
		lines, err = decodeCartLines(d)
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	if !seen {
		return nil, errors.New("decode cart: missing items")
	}
	return lines, nil
}

func decodeProduct(d *jx.Decoder) (ProductEntry, error) {
	var (
		p        ProductEntry
		hasPrice bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "unit":
			var s string
			if s, err = d.Str(); err != nil {
				return err
			}
			p.Unit, err = product.ParseUnit(s)
		case "price":
			hasPrice = true
			p.Price, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return ProductEntry{}, err
	}

	switch {
	case p.Name == "":
		return ProductEntry{}, errors.New("missing name")
	case !hasPrice:
		return ProductEntry{}, errors.Errorf("%q: missing price", p.Name)
	case p.Price.IsNegative():
		return ProductEntry{}, errors.Errorf("%q: negative price %s", p.Name, p.Price)
	}
	return p, nil
}

func decodeOffer(d *jx.Decoder) (OfferEntry, error) {
	var o OfferEntry
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "type":
			var s string
			s, err = d.Str()
			o.Type = offer.Type(s)
		case "product":
			o.Product, err = d.Str()
		case "quantity":
			o.Quantity, err = decodeDecimal(d)
		case "amount":
			o.Amount, err = decodeDecimal(d)
		case "percent":
			o.Percent, err = decodeDecimal(d)
		case "bundle":
			err = d.Arr(func(d *jx.Decoder) error {
				m, err := decodeBundleMember(d)
				if err != nil {
					return err
				}
				o.Bundle = append(o.Bundle, m)
				return nil
			})
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return OfferEntry{}, err
	}
	if o.Type == "" {
		return OfferEntry{}, errors.New("missing type")
	}
	return o, nil
}

func decodeBundleMember(d *jx.Decoder) (BundleMember, error) {
	var m BundleMember
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "product":
			m.Product, err = d.Str()
		case "quantity":
			m.Quantity, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	return m, err
}

func decodeCartLines(d *jx.Decoder) ([]CartLine, error) {
	var lines []CartLine
	err := d.Arr(func(d *jx.Decoder) error {
		line, err := decodeCartLine(d)
		if err != nil {
			return errors.Wrapf(err, "line %d", len(lines))
		}
		lines = append(lines, line)
		return nil
	})
	return lines, err
}

func decodeCartLine(d *jx.Decoder) (CartLine, error) {
	line := CartLine{Quantity: decimal.NewFromInt(1)}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "product":
			line.Product, err = d.Str()
		case "unit":
			line.Unit, err = d.Str()
		case "quantity":
			line.Quantity, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return CartLine{}, err
	}

	switch {
	case line.Product == "":
		return CartLine{}, errors.New("missing product")
	case !line.Quantity.IsPositive():
		return CartLine{}, errors.Errorf("%q: quantity must be positive, got %s", line.Product, line.Quantity)
	}
	return line, nil
}

// decodeDecimal accepts both 1.5 and "1.5".
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch tt := d.Next(); tt {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = n.String()
	default:
		return decimal.Zero, errors.Errorf("expected number, got %s", tt)
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse %q", raw)
	}
	return v, nil
}
