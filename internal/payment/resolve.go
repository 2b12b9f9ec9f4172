package payment

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// Data holds the billing details of a payment.
type Data struct {
	BillingAddress *cart.Address `json:"billingAddress"`
}

// ResolvedPayment is the client-facing view of a cart payment.
type ResolvedPayment struct {
	ID     string        `json:"id"`
	Amount pricing.Money `json:"amount"`
	Data   Data          `json:"data"`
}

// ResolvePayment stamps a payment with the cart grand total. Totals are not
// split across payments; each one carries the full amount.
func ResolvePayment(p cart.Payment, c cart.Cart, grandTotal decimal.Decimal) ResolvedPayment {
	return ResolvedPayment{
		ID:     p.ID,
		Amount: pricing.NewMoney(grandTotal, c.CurrencyCode),
		Data:   Data{BillingAddress: p.Address},
	}
}
