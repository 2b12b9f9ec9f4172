package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/cart"
)

type fakeRow struct {
	doc []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.doc
	return nil
}

type fakeQuerier struct {
	rows map[string]fakeRow
	last []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.last = args
	row, ok := q.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return row
}

func TestPGStoreGetDecodesDocument(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: map[string]fakeRow{
		"c1": {doc: []byte(`{
			"currencyCode":"USD",
			"tax":0.1,
			"items":[{"id":"i1","productId":"p1","variantId":"v1","quantity":2,"priceWhenAdded":{"amount":10,"currencyCode":"USD"}}],
			"shipping":[{"id":"g1","shipmentMethod":{"id":"m1","name":"Ground","rate":5}}]
		}`)},
	}}
	store := cart.NewPGStore(q)

	c, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "c1", c.ID)
	require.Equal(t, "USD", c.CurrencyCode)
	require.True(t, c.Tax.Valid)
	require.Equal(t, "0.1", c.Tax.Decimal.String())
	require.False(t, c.Discount.Valid)
	require.Len(t, c.Items, 1)
	require.Equal(t, "10", c.Items[0].PriceWhenAdded.Amount.String())
	require.Len(t, c.Shipping, 1)
	require.True(t, c.Shipping[0].ShipmentMethod.Handling.IsZero())
	require.Equal(t, []any{"c1"}, q.last)
}

func TestPGStoreGetNotFound(t *testing.T) {
	t.Parallel()

	_, err := cart.NewPGStore(&fakeQuerier{}).Get(context.Background(), "missing")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestPGStoreGetWrapsQueryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	q := &fakeQuerier{rows: map[string]fakeRow{"c1": {err: boom}}}
	_, err := cart.NewPGStore(q).Get(context.Background(), "c1")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, cart.ErrNotFound)
}

func TestPGStoreGetTreatsNonNumericTaxAsUnset(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: map[string]fakeRow{
		"quoted": {doc: []byte(`{"currencyCode":"USD","tax":"0.1"}`)},
		"word":   {doc: []byte(`{"currencyCode":"USD","tax":"abc"}`)},
		"bool":   {doc: []byte(`{"currencyCode":"USD","tax":true}`)},
	}}
	store := cart.NewPGStore(q)
	for _, id := range []string{"quoted", "word", "bool"} {
		c, err := store.Get(context.Background(), id)
		require.NoError(t, err, id)
		require.False(t, c.Tax.Valid, id)
		require.Equal(t, "USD", c.CurrencyCode, id)
	}
}

func TestCartJSONRoundTripKeepsNumericTax(t *testing.T) {
	t.Parallel()

	in := cart.Cart{
		ID:           "c1",
		CurrencyCode: "IDR",
		Tax:          decimal.NewNullDecimal(decimal.RequireFromString("0.11")),
		Discount:     decimal.NewNullDecimal(decimal.NewFromInt(50000)),
	}
	doc, err := json.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(doc), `"tax":0.11`)
	require.Contains(t, string(doc), `"discount":50000`)

	var out cart.Cart
	require.NoError(t, json.Unmarshal(doc, &out))
	require.True(t, out.Tax.Valid)
	require.True(t, out.Tax.Decimal.Equal(in.Tax.Decimal))
	require.True(t, out.Discount.Decimal.Equal(in.Discount.Decimal))

	empty, err := json.Marshal(cart.Cart{CurrencyCode: "USD"})
	require.NoError(t, err)
	require.Contains(t, string(empty), `"tax":null`)
}

func TestPGStoreGetRejectsMalformedDocument(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: map[string]fakeRow{"c1": {doc: []byte(`{"items":"lots"}`)}}}
	_, err := cart.NewPGStore(q).Get(context.Background(), "c1")
	require.Error(t, err)
}
