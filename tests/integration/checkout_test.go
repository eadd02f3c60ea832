//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestCheckout_Text(t *testing.T) {
	resp := doPost(t, "/api/checkout", checkoutRequest{Items: []cartItem{
		{Product: "Oranges", Quantity: 3},
	}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q", ct)
	}

	want := "" +
		"Oranges                            45.00\n" +
		"  15.00 * 3.000\n" +
		"3 for 2(Oranges)                  -15.00\n" +
		"\n" +
		"Total:                             30.00"
	if got := readBody(t, resp); got != want {
		t.Errorf("receipt mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestCheckout_JSON(t *testing.T) {
	// Catalog prices come from PostgreSQL, offers from the mounted price book.
	resp := doPost(t, "/api/checkout?format=json", checkoutRequest{Items: []cartItem{
		{Product: "Vegetable Oil", Quantity: 7.5},
		{Product: "Onions", Quantity: 2},
	}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[receiptResponse](t, resp)
	if len(body.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(body.Items))
	}
	if body.Items[0].UnitPrice != "20.00" || body.Items[0].TotalPrice != "150.00" {
		t.Errorf("oil line: got %+v", body.Items[0])
	}
	if len(body.Discounts) != 2 {
		t.Fatalf("expected 2 discounts, got %d", len(body.Discounts))
	}
	amounts := map[string]string{}
	for _, d := range body.Discounts {
		amounts[d.Type] = d.Amount
	}
	if amounts["x_for_amount"] != "15.00" {
		t.Errorf("x_for_amount discount: got %q, want 15.00", amounts["x_for_amount"])
	}
	if amounts["ten_percent_discount"] != "5.00" {
		t.Errorf("ten_percent_discount discount: got %q, want 5.00", amounts["ten_percent_discount"])
	}
	// 150.00 + 50.00 - 15.00 - 5.00
	if body.Total != "180.00" {
		t.Errorf("total: got %q, want 180.00", body.Total)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	resp := doPost(t, "/api/checkout", checkoutRequest{Items: []cartItem{}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := readBody(t, resp); got != "Total:                              0.00" {
		t.Errorf("got %q", got)
	}
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
	}{
		{
			name:       "unknown product",
			path:       "/api/checkout",
			body:       checkoutRequest{Items: []cartItem{{Product: "Durian", Quantity: 1}}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown format",
			path:       "/api/checkout?format=pdf",
			body:       checkoutRequest{Items: []cartItem{{Product: "Oranges", Quantity: 1}}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad columns",
			path:       "/api/checkout?columns=0",
			body:       checkoutRequest{Items: []cartItem{{Product: "Oranges", Quantity: 1}}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative quantity",
			path:       "/api/checkout",
			body:       checkoutRequest{Items: []cartItem{{Product: "Oranges", Quantity: -1}}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing items",
			path:       "/api/checkout",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doPost(t, tt.path, tt.body)
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}

			body := decodeJSON[errorResponse](t, resp)
			if body.Code != tt.wantStatus {
				t.Errorf("code: got %d, want %d", body.Code, tt.wantStatus)
			}
			if body.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestOffers(t *testing.T) {
	resp := doGet(t, "/api/offers")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	offers := decodeJSON[[]offerResponse](t, resp)
	if len(offers) != 6 {
		t.Fatalf("expected 6 offers, got %d", len(offers))
	}
	bundle := offers[0]
	if bundle.Type != "bundle_discount" {
		t.Fatalf("first offer: got type %q", bundle.Type)
	}
	if bundle.Percent != "15" {
		t.Errorf("bundle percent: got %q, want 15", bundle.Percent)
	}
	if len(bundle.Products) != 2 || bundle.Products[0].Name != "Apples" || bundle.Products[1].Name != "Peeler" {
		t.Fatalf("bundle products: got %+v", bundle.Products)
	}
	if bundle.Products[0].Quantity != "1.5" || bundle.Products[0].Unit != "kilo" {
		t.Errorf("bundle apples: got %+v, want 1.5 kilo from the seeded catalog", bundle.Products[0])
	}

	oil := offers[4]
	if oil.Type != "x_for_amount" || oil.Quantity != "5" || oil.Amount != "95" {
		t.Errorf("oil offer: got %+v", oil)
	}
}
