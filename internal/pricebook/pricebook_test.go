package pricebook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/supermarket-receipt/internal/catalog"
	"github.com/xenking/supermarket-receipt/internal/domain/cart"
	"github.com/xenking/supermarket-receipt/internal/domain/checkout"
	"github.com/xenking/supermarket-receipt/internal/domain/offer"
	"github.com/xenking/supermarket-receipt/internal/domain/product"
)

const supermarket = `{
  "products": [
    {"name": "Apples", "unit": "kilo", "price": "5.00"},
    {"name": "Peeler", "unit": "each", "price": 10},
    {"name": "Oranges", "unit": "KILO", "price": 15},
    {"name": "Vegetable Oil", "unit": "each", "price": "20"},
    {"name": "Onions", "unit": "kilo", "price": 25},
    {"name": "Fantastic Beasts And Where To Find Them, by Joanne Kathleen Rowling", "unit": "each", "price": 100}
  ],
  "offers": [
    {"type": "bundle_discount", "percent": 15, "bundle": [
      {"product": "Apples", "quantity": 1.5},
      {"product": "Peeler", "quantity": 1}
    ]},
    {"type": "three_for_two", "product": "Oranges"},
    {"type": "ten_percent_discount", "product": "Apples"},
    {"type": "ten_percent_discount", "product": "Onions"},
    {"type": "x_for_amount", "product": "Vegetable Oil", "quantity": 5, "amount": "95"},
    {"type": "ten_percent_discount", "product": "Peeler"}
  ],
  "cart": [
    {"product": "Apples", "quantity": 2},
    {"product": "Vegetable Oil", "quantity": 7.5},
    {"product": "Peeler", "quantity": 3},
    {"product": "Apples", "quantity": "2"},
    {"product": "Oranges", "quantity": 2},
    {"product": "Onions", "quantity": 3.5},
    {"product": "Oranges"},
    {"product": "Fantastic Beasts And Where To Find Them, by Joanne Kathleen Rowling", "unit": "each"}
  ],
  "comment": {"ignored": [1, 2, 3]}
}`

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(supermarket))
	require.NoError(t, err)

	require.Len(t, doc.Products, 6)
	assert.Equal(t, "Apples", doc.Products[0].Name)
	assert.Equal(t, product.Kilo, doc.Products[0].Unit)
	assert.True(t, d("5").Equal(doc.Products[0].Price))
	assert.Equal(t, product.Kilo, doc.Products[2].Unit)

	require.Len(t, doc.Offers, 6)
	assert.Equal(t, offer.TypeBundleDiscount, doc.Offers[0].Type)
	require.Len(t, doc.Offers[0].Bundle, 2)
	assert.True(t, d("1.5").Equal(doc.Offers[0].Bundle[0].Quantity))
	assert.True(t, d("95").Equal(doc.Offers[4].Amount))

	require.Len(t, doc.Cart, 8)
	assert.True(t, d("1").Equal(doc.Cart[6].Quantity), "quantity defaults to one")
	assert.Equal(t, "each", doc.Cart[7].Unit)
}

func TestParse_Invalid(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input string
	}{
		{"NotObject", `[]`},
		{"Truncated", `{"products": [`},
		{"UnknownUnit", `{"products": [{"name": "Apples", "unit": "litre", "price": 1}]}`},
		{"MissingName", `{"products": [{"unit": "each", "price": 1}]}`},
		{"MissingPrice", `{"products": [{"name": "Apples", "unit": "each"}]}`},
		{"NegativePrice", `{"products": [{"name": "Apples", "unit": "each", "price": -1}]}`},
		{"BadNumber", `{"products": [{"name": "Apples", "unit": "each", "price": "cheap"}]}`},
		{"BoolNumber", `{"products": [{"name": "Apples", "unit": "each", "price": true}]}`},
		{"OfferWithoutType", `{"offers": [{"product": "Apples"}]}`},
		{"ZeroQuantity", `{"cart": [{"product": "Apples", "quantity": 0}]}`},
		{"CartWithoutProduct", `{"cart": [{"quantity": 1}]}`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
		})
	}
}

func TestBuild_Checkout(t *testing.T) {
	doc, err := Parse([]byte(supermarket))
	require.NoError(t, err)

	book, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, 6, book.Catalog.Len())
	require.Len(t, book.Offers, 6)

	teller := checkout.NewTeller(book.Catalog)
	teller.Register(book.Offers...)

	r, err := teller.Checkout(book.Cart)
	require.NoError(t, err)
	assert.Equal(t, "387.00", r.TotalPrice().StringFixed(2))
	assert.Len(t, r.Items, 8)
	assert.Len(t, r.Discounts, 6)
}

func TestBuild_Merge(t *testing.T) {
	base, err := Parse([]byte(`{
		"products": [{"name": "Apples", "unit": "kilo", "price": 5}],
		"offers": [{"type": "three_for_two", "product": "Apples"}]
	}`))
	require.NoError(t, err)
	override, err := Parse([]byte(`{
		"products": [{"name": "Apples", "unit": "kilo", "price": "4.50"}],
		"offers": [{"type": "ten_percent_discount", "product": "Apples"}],
		"cart": [{"product": "Apples", "quantity": 3}]
	}`))
	require.NoError(t, err)

	book, err := Build(base, override)
	require.NoError(t, err)

	apples := product.Product{Name: "Apples", Unit: product.Kilo}
	price, err := book.Catalog.UnitPrice(apples)
	require.NoError(t, err)
	assert.True(t, d("4.5").Equal(price))

	teller := checkout.NewTeller(book.Catalog)
	teller.Register(book.Offers...)
	assert.Equal(t, []offer.Offer{offer.TenPercentDiscount{Product: apples}}, teller.Offers())

	r, err := teller.Checkout(book.Cart)
	require.NoError(t, err)
	assert.Equal(t, "12.15", r.TotalPrice().StringFixed(2))
}

func TestBuildOffer_Invalid(t *testing.T) {
	prices := catalog.NewMemory(
		catalog.Entry{Product: product.Product{Name: "Apples", Unit: product.Kilo}, Price: d("1")},
	)

	for _, tt := range []struct {
		name  string
		entry OfferEntry
	}{
		{"UnknownType", OfferEntry{Type: "buy_one_get_two", Product: "Apples"}},
		{"UnknownProduct", OfferEntry{Type: offer.TypeThreeForTwo, Product: "Bananas"}},
		{"MissingProduct", OfferEntry{Type: offer.TypeTenPercentDiscount}},
		{"ZeroGroup", OfferEntry{Type: offer.TypeXForAmount, Product: "Apples", Quantity: d("0.5"), Amount: d("1")}},
		{"SingleMemberBundle", OfferEntry{
			Type:    offer.TypeBundleDiscount,
			Percent: d("10"),
			Bundle:  []BundleMember{{Product: "Apples", Quantity: d("1")}},
		}},
		{"UnknownBundleMember", OfferEntry{
			Type:    offer.TypeBundleDiscount,
			Percent: d("10"),
			Bundle: []BundleMember{
				{Product: "Apples", Quantity: d("1")},
				{Product: "Pears", Quantity: d("1")},
			},
		}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			o, err := BuildOffer(tt.entry, prices)
			require.Error(t, err)
			assert.Nil(t, o)
		})
	}

	_, err := BuildOffer(OfferEntry{Type: offer.TypeXForAmount, Product: "Apples", Amount: d("1")}, prices)
	var cfgErr *offer.InvalidConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestAddToCart(t *testing.T) {
	apples := product.Product{Name: "Apples", Unit: product.Kilo}
	prices := catalog.NewMemory(catalog.Entry{Product: apples, Price: d("1")})

	c := cart.New()
	require.NoError(t, AddToCart(c, []CartLine{
		{Product: "Apples", Quantity: d("1.5")},
		{Product: "Apples", Unit: "each", Quantity: d("2")},
		{Product: "Ghost", Quantity: d("1")},
	}, prices))

	assert.Equal(t, []product.Quantity{
		{Product: apples, Amount: d("1.5")},
		{Product: product.Product{Name: "Apples", Unit: product.Each}, Amount: d("2")},
		{Product: product.Product{Name: "Ghost", Unit: product.Each}, Amount: d("1")},
	}, c.Items())

	err := AddToCart(cart.New(), []CartLine{{Product: "Apples", Unit: "litre", Quantity: d("1")}}, prices)
	require.Error(t, err)
}

func TestDecodeCartRequest(t *testing.T) {
	lines, err := DecodeCartRequest(jx.DecodeStr(`{
		"items": [
			{"product": "Apples", "unit": "kilo", "quantity": "0.250"},
			{"product": "Peeler"}
		],
		"note": "ignored"
	}`))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, CartLine{Product: "Apples", Unit: "kilo", Quantity: d("0.250")}, lines[0])
	assert.True(t, d("1").Equal(lines[1].Quantity))

	lines, err = DecodeCartRequest(jx.DecodeStr(`{"items": []}`))
	require.NoError(t, err)
	assert.Empty(t, lines)

	for _, input := range []string{`{}`, `{"items": {}}`, `{"items": [{"product": "Apples", "quantity": -1}]}`, `nope`} {
		_, err := DecodeCartRequest(jx.DecodeStr(input))
		assert.Error(t, err, input)
	}
}

func writeFile(t *testing.T, path, content string, gzipped bool) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	if !gzipped {
		_, err = f.WriteString(content)
		require.NoError(t, err)
		return
	}

	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json.gz")
	cartPath := filepath.Join(dir, "cart.json")

	writeFile(t, catalogPath, `{
		"products": [
			{"name": "Toothbrush", "unit": "each", "price": "0.99"},
			{"name": "Rice", "unit": "each", "price": "2.49"}
		],
		"offers": [{"type": "three_for_two", "product": "Toothbrush"}]
	}`, true)
	writeFile(t, cartPath, `{
		"cart": [{"product": "Toothbrush", "quantity": 3}, {"product": "Rice"}]
	}`, false)

	book, err := LoadFiles(context.Background(), catalogPath, cartPath)
	require.NoError(t, err)

	teller := checkout.NewTeller(book.Catalog)
	teller.Register(book.Offers...)
	r, err := teller.Checkout(book.Cart)
	require.NoError(t, err)
	assert.Equal(t, "4.47", r.TotalPrice().StringFixed(2))

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFiles(context.Background(), catalogPath, filepath.Join(dir, "missing.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("NotGzip", func(t *testing.T) {
		fake := filepath.Join(dir, "plain.json.gz")
		writeFile(t, fake, `{}`, false)
		_, err := LoadFiles(context.Background(), fake)
		require.Error(t, err)
	})
	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := LoadFiles(ctx, cartPath)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuildOn(t *testing.T) {
	apples := product.Product{Name: "Apples", Unit: product.Kilo}
	base := catalog.NewMemory(catalog.Entry{Product: apples, Price: d("2")})

	doc, err := Parse([]byte(`{"offers": [{"type": "ten_percent_discount", "product": "Apples"}]}`))
	require.NoError(t, err)

	book, err := BuildOn(base, doc)
	require.NoError(t, err)
	assert.Same(t, base, book.Catalog)
	assert.Equal(t, []offer.Offer{offer.TenPercentDiscount{Product: apples}}, book.Offers)

	_, err = Build(doc)
	require.ErrorContains(t, err, `unknown product "Apples"`)
}
