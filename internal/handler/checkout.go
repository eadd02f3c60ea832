package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/supermarket-receipt/internal/domain/cart"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
	"github.com/xenking/supermarket-receipt/internal/pricebook"
	"github.com/xenking/supermarket-receipt/internal/receipt"
)

// Checkout prices the posted cart and responds with the rendered receipt.
//
// Query parameters: format (text, html or json) and columns (receipt width).
// Malformed input yields 400, an oversized body 413 and a product missing
// from the catalog 422.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()
	r = r.WithContext(ctx)

	fail := func(status int, err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeError(w, r, status, err)
	}

	query := r.URL.Query()
	format := query.Get("format")
	if format == "" {
		format = string(receipt.FormatText)
	}
	gen, err := receipt.ForFormat(format)
	if err != nil {
		fail(http.StatusBadRequest, err)
		return
	}

	opts := h.cfg.Receipt
	if raw := query.Get("columns"); raw != "" {
		columns, err := strconv.Atoi(raw)
		if err != nil || columns <= 0 {
			fail(http.StatusBadRequest, errors.Errorf("invalid columns %q", raw))
			return
		}
		opts.Columns = columns
	}

	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	lines, err := pricebook.DecodeCartRequest(jx.Decode(body, 4096))
	if err != nil {
		status := http.StatusBadRequest
		if tooLarge := new(http.MaxBytesError); errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		fail(status, err)
		return
	}

	c := cart.New()
	if err := pricebook.AddToCart(c, lines, h.products); err != nil {
		fail(http.StatusBadRequest, err)
		return
	}

	rec, err := h.teller.Checkout(c)
	switch {
	case errors.Is(err, product.ErrNotFound):
		fail(http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		fail(http.StatusInternalServerError, errors.Wrap(err, "checkout"))
		return
	}

	formatAttr := attribute.String("receipt.format", format)
	h.receipts.Add(ctx, 1, metric.WithAttributes(formatAttr))
	h.discounts.Add(ctx, int64(len(rec.Discounts)))
	span.SetAttributes(
		formatAttr,
		attribute.Int("receipt.items", len(rec.Items)),
		attribute.Int("receipt.discounts", len(rec.Discounts)),
		attribute.String("receipt.total", receipt.Money(rec.TotalPrice())),
	)
	zctx.From(ctx).Debug("Checked out",
		zap.Int("items", len(rec.Items)),
		zap.Int("discounts", len(rec.Discounts)),
		zap.String("total", receipt.Money(rec.TotalPrice())),
	)

	w.Header().Set("Content-Type", gen.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(gen.Generate(rec, opts)))
}
