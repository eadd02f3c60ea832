package pricebook

import (
	"github.com/go-faster/errors"

	"github.com/xenking/supermarket-receipt/internal/catalog"
	"github.com/xenking/supermarket-receipt/internal/domain/cart"
	"github.com/xenking/supermarket-receipt/internal/domain/offer"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// Resolver finds catalog products by name.
type Resolver interface {
	Lookup(name string) (product.Product, bool)
}

// Book is the merged result of one or more documents.
type Book struct {
	Catalog *catalog.Memory
	// Offers in declaration order. Registering them with a Teller applies
	// replacement of offers on the same product set.
	Offers []offer.Offer
	Cart   *cart.Cart
}

// Build merges documents in order. Later product prices override earlier ones.
// Offers and cart lines are resolved against the merged catalog, so a document
// may refer to products declared in another one.
func Build(docs ...*Document) (*Book, error) {
	return BuildOn(catalog.NewMemory(), docs...)
}

// BuildOn is Build starting from an existing catalog, which is modified in
// place. Document prices override base prices.
func BuildOn(base *catalog.Memory, docs ...*Document) (*Book, error) {
	b := &Book{
		Catalog: base,
		Cart:    cart.New(),
	}
	for _, doc := range docs {
		for _, p := range doc.Products {
			b.Catalog.Add(p.Product(), p.Price)
		}
	}

	for _, doc := range docs {
		for i, entry := range doc.Offers {
			o, err := BuildOffer(entry, b.Catalog)
			if err != nil {
				return nil, errors.Wrapf(err, "offer %d", i)
			}
			b.Offers = append(b.Offers, o)
		}
	}

	for _, doc := range docs {
		if err := AddToCart(b.Cart, doc.Cart, b.Catalog); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// BuildOffer turns an entry into an offer, resolving product names.
func BuildOffer(e OfferEntry, r Resolver) (offer.Offer, error) {
	switch e.Type {
	case offer.TypeThreeForTwo:
		p, err := lookup(r, e.Product)
		if err != nil {
			return nil, err
		}
		return offer.ThreeForTwo{Product: p}, nil
	case offer.TypeTenPercentDiscount:
		p, err := lookup(r, e.Product)
		if err != nil {
			return nil, err
		}
		return offer.TenPercentDiscount{Product: p}, nil
	case offer.TypeXForAmount:
		p, err := lookup(r, e.Product)
		if err != nil {
			return nil, err
		}
		o, err := offer.NewXForAmount(p, e.Quantity, e.Amount)
		if err != nil {
			return nil, err
		}
		return o, nil
	case offer.TypeBundleDiscount:
		members := make([]product.Quantity, 0, len(e.Bundle))
		for _, m := range e.Bundle {
			p, err := lookup(r, m.Product)
			if err != nil {
				return nil, err
			}
			members = append(members, product.Quantity{Product: p, Amount: m.Quantity})
		}
		o, err := offer.NewBundleDiscount(e.Percent, members...)
		if err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, errors.Errorf("unknown offer type %q", e.Type)
	}
}

// AddToCart resolves lines and appends them to c. A line without a unit takes
// the catalog's unit for that name; unknown names default to each and are
// left for checkout to reject.
func AddToCart(c *cart.Cart, lines []CartLine, r Resolver) error {
	for i, line := range lines {
		p, err := line.resolve(r)
		if err != nil {
			return errors.Wrapf(err, "cart line %d", i)
		}
		c.Add(p, line.Quantity)
	}
	return nil
}

func (l CartLine) resolve(r Resolver) (product.Product, error) {
	if l.Unit != "" {
		u, err := product.ParseUnit(l.Unit)
		if err != nil {
			return product.Product{}, err
		}
		return product.Product{Name: l.Product, Unit: u}, nil
	}
	if p, ok := r.Lookup(l.Product); ok {
		return p, nil
	}
	return product.Product{Name: l.Product, Unit: product.Each}, nil
}

func lookup(r Resolver, name string) (product.Product, error) {
	if name == "" {
		return product.Product{}, errors.New("missing product")
	}
	p, ok := r.Lookup(name)
	if !ok {
		return product.Product{}, errors.Errorf("unknown product %q", name)
	}
	return p, nil
}
