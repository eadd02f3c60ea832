package checkout

import (
	"go.uber.org/zap"

	"github.com/xenking/supermarket-receipt/internal/domain/offer"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

// Option configures a Teller.
type Option func(*Teller)

// WithLogger sets the logger used for offer registration and checkout
// tracing. The default discards everything.
func WithLogger(lg *zap.Logger) Option {
	return func(t *Teller) {
		t.lg = lg
	}
}

// Teller keeps the ordered set of active offers and checks carts out
// against a catalog. At most one offer is active per product set.
//
// Registration must complete before checkouts start; the Teller does not
// synchronize concurrent Register and Checkout calls.
type Teller struct {
	catalog product.Catalog
	offers  []offer.Offer
	lg      *zap.Logger
}

// NewTeller creates a Teller pricing against catalog.
func NewTeller(catalog product.Catalog, opts ...Option) *Teller {
	t := &Teller{
		catalog: catalog,
		lg:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register adds o. An active offer targeting the same set of products is
// removed first, so the latest registration wins and moves to the end.
func (t *Teller) Register(offers ...offer.Offer) {
	for _, o := range offers {
		t.register(o)
	}
}

func (t *Teller) register(o offer.Offer) {
	target := o.Products()

	kept := t.offers[:0:0]
	for _, existing := range t.offers {
		if product.SameSet(existing.Products(), target) {
			t.lg.Debug("Replacing offer",
				zap.String("old", existing.Description()),
				zap.String("new", o.Description()),
			)
			continue
		}
		kept = append(kept, existing)
	}

	t.offers = append(kept, o)
	t.lg.Debug("Registered offer",
		zap.String("type", string(o.Type())),
		zap.String("description", o.Description()),
	)
}

// Offers returns the active offers in registration order.
func (t *Teller) Offers() []offer.Offer {
	out := make([]offer.Offer, len(t.offers))
	copy(out, t.offers)
	return out
}

// Checkout prices cart with the active offers.
func (t *Teller) Checkout(cart Cart) (*Receipt, error) {
	receipt, steps, err := Trace(cart, t.offers, t.catalog)
	if err != nil {
		return nil, err
	}

	if t.lg.Core().Enabled(zap.DebugLevel) {
		for _, s := range steps {
			t.lg.Debug("Offer applied",
				zap.String("description", s.Applied.Discount.Description),
				zap.Stringer("amount", s.Applied.Discount.Amount),
				zap.Int("remaining_products", len(s.Remaining)),
			)
		}
	}
	return receipt, nil
}
