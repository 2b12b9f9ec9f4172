package payment_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/payment"
)

func TestResolvePaymentUsesFullTotal(t *testing.T) {
	t.Parallel()

	c := cart.Cart{CurrencyCode: "IDR"}
	total := decimal.RequireFromString("150000.50")
	addr := &cart.Address{FullName: "Budi"}

	for _, p := range []cart.Payment{{ID: "p1", Address: addr}, {ID: "p2"}} {
		got := payment.ResolvePayment(p, c, total)
		require.Equal(t, p.ID, got.ID)
		require.Equal(t, "IDR", got.Amount.CurrencyCode)
		require.True(t, got.Amount.Amount.Equal(total))
		require.Equal(t, p.Address, got.Data.BillingAddress)
	}
}
