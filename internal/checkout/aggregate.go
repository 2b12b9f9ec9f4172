package checkout

import (
	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/payment"
	"github.com/noah-isme/toko-checkout/internal/pricing"
	"github.com/noah-isme/toko-checkout/internal/shipping"
)

// Totals is the priced summary of a checkout. FulfillmentTotal and TaxTotal are
// nil until they can be computed.
type Totals struct {
	ItemTotal        pricing.Money  `json:"itemTotal"`
	FulfillmentTotal *pricing.Money `json:"fulfillmentTotal"`
	TaxTotal         *pricing.Money `json:"taxTotal"`
	DiscountTotal    pricing.Money  `json:"discountTotal"`
	Total            pricing.Money  `json:"total"`
}

// Summary is the resolved checkout view of a cart.
type Summary struct {
	FulfillmentGroups []shipping.FulfillmentOption `json:"fulfillmentGroups"`
	Payments          []payment.ResolvedPayment    `json:"payments"`
	Summary           Totals                       `json:"summary"`
}

// Compute assembles the checkout summary from a cart and its resolved items.
// The item total uses the price captured when each item was added, not the
// current catalog price.
func Compute(c cart.Cart, items []cart.ResolvedItem) Summary {
	in := pricing.Input{
		Lines:    make([]pricing.Line, 0, len(items)),
		Tax:      c.Tax,
		Discount: c.Discount,
	}
	for _, it := range items {
		in.Lines = append(in.Lines, pricing.Line{Qty: it.Quantity, UnitPrice: it.PriceWhenAdded.Amount})
	}
	for _, g := range c.Shipping {
		if g.ShipmentMethod == nil {
			continue
		}
		in.Fees = append(in.Fees, pricing.Fee{Rate: g.ShipmentMethod.Rate, Handling: g.ShipmentMethod.Handling})
	}
	sum := pricing.Compute(in)

	currency := c.CurrencyCode
	out := Summary{
		FulfillmentGroups: make([]shipping.FulfillmentOption, 0, len(c.Shipping)),
		Payments:          make([]payment.ResolvedPayment, 0, len(c.Billing)),
		Summary: Totals{
			ItemTotal:        pricing.NewMoney(sum.ItemTotal, currency),
			FulfillmentTotal: pricing.MoneyPtr(sum.FulfillmentTotal, currency),
			TaxTotal:         pricing.MoneyPtr(sum.TaxTotal, currency),
			DiscountTotal:    pricing.NewMoney(sum.DiscountTotal, currency),
			Total:            pricing.NewMoney(sum.Total, currency),
		},
	}
	for _, g := range c.Shipping {
		out.FulfillmentGroups = append(out.FulfillmentGroups, shipping.ResolveFulfillmentGroup(g, c, items))
	}
	for _, p := range c.Billing {
		out.Payments = append(out.Payments, payment.ResolvePayment(p, c, sum.Total))
	}
	return out
}
