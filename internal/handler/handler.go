// Package handler exposes checkout over HTTP.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/supermarket-receipt/internal/domain/checkout"
	"github.com/xenking/supermarket-receipt/internal/domain/offer"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
	"github.com/xenking/supermarket-receipt/internal/pricebook"
	"github.com/xenking/supermarket-receipt/internal/receipt"
)

const instrumentationName = "github.com/xenking/supermarket-receipt/internal/handler"

// Teller prices carts with the active offers.
type Teller interface {
	Checkout(cart checkout.Cart) (*checkout.Receipt, error)
	Offers() []offer.Offer
}

// Config holds non-dependency handler settings.
type Config struct {
	// Receipt is the default layout; requests may override the width.
	Receipt receipt.Options
	// MaxBodyBytes caps checkout request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
}

// Handler serves the checkout API.
type Handler struct {
	teller   Teller
	products pricebook.Resolver
	cfg      Config

	tracer    trace.Tracer
	receipts  metric.Int64Counter
	discounts metric.Int64Counter
}

// NewHandler builds a Handler. products resolves cart lines that omit a unit.
func NewHandler(
	cfg Config,
	teller Teller,
	products pricebook.Resolver,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Handler, error) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	meter := mp.Meter(instrumentationName)
	receipts, err := meter.Int64Counter("receipt.checkouts",
		metric.WithDescription("Receipts produced by checkout"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create checkouts counter")
	}
	discounts, err := meter.Int64Counter("receipt.discounts",
		metric.WithDescription("Offers applied during checkout"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create discounts counter")
	}

	return &Handler{
		teller:    teller,
		products:  products,
		cfg:       cfg,
		tracer:    tp.Tracer(instrumentationName),
		receipts:  receipts,
		discounts: discounts,
	}, nil
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/offers", h.Offers)
}

// Offers lists the active offers in registration order with their terms.
// Bundle members carry the quantity one bundle requires.
func (h *Handler) Offers(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ArrStart()
	for _, o := range h.teller.Offers() {
		e.Obj(func(e *jx.Encoder) {
			e.Field("type", func(e *jx.Encoder) { e.Str(string(o.Type())) })
			e.Field("description", func(e *jx.Encoder) { e.Str(o.Description()) })
			encodeTerms(e, o)
			e.Field("products", func(e *jx.Encoder) {
				e.ArrStart()
				for _, m := range members(o) {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(m.Product.Name) })
						e.Field("unit", func(e *jx.Encoder) { e.Str(m.Product.Unit.String()) })
						if !m.Amount.IsZero() {
							e.Field("quantity", func(e *jx.Encoder) { e.Str(m.Amount.String()) })
						}
					})
				}
				e.ArrEnd()
			})
		})
	}
	e.ArrEnd()

	writeJSON(w, http.StatusOK, e.Bytes())
}

func encodeTerms(e *jx.Encoder, o offer.Offer) {
	str := func(name string, d decimal.Decimal) {
		e.Field(name, func(e *jx.Encoder) { e.Str(d.String()) })
	}
	switch o := o.(type) {
	case offer.TenPercentDiscount:
		str("percent", o.Percent())
	case offer.XForAmount:
		str("quantity", o.Quantity())
		str("amount", o.Amount())
	case *offer.BundleDiscount:
		str("percent", o.Percent())
	}
}

// members returns the targeted products; only bundles carry quantities.
func members(o offer.Offer) []product.Quantity {
	if b, ok := o.(*offer.BundleDiscount); ok {
		return b.Bundle()
	}
	products := o.Products()
	out := make([]product.Quantity, len(products))
	for i, p := range products {
		out[i] = product.Quantity{Product: p}
	}
	return out
}

// writeError responds with {"code": status, "message": msg}.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	lg := zctx.From(r.Context())
	if status >= http.StatusInternalServerError {
		lg.Error("Request failed", zap.Error(err))
	} else {
		lg.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, status, e.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
