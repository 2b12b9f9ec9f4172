package pricing

import "github.com/shopspring/decimal"

// Line describes a cart line contributing to the item total.
type Line struct {
	Qty       int
	UnitPrice decimal.Decimal
}

// Fee is the rate and handling charged by one selected shipment method.
type Fee struct {
	Rate     decimal.Decimal
	Handling decimal.Decimal
}

// Input carries everything Compute needs. Fees holds one entry per fulfillment
// group that has a selected shipment method; groups without a method are omitted.
type Input struct {
	Lines    []Line
	Fees     []Fee
	Tax      decimal.NullDecimal
	Discount decimal.NullDecimal
}

// Summary aggregates computed pricing components. FulfillmentTotal and TaxTotal
// are nil when they could not be computed yet, which is distinct from zero.
type Summary struct {
	ItemTotal        decimal.Decimal
	FulfillmentTotal *decimal.Decimal
	TaxTotal         *decimal.Decimal
	DiscountTotal    decimal.Decimal
	Total            decimal.Decimal
}

// Compute calculates cart totals given the provided inputs.
func Compute(in Input) Summary {
	itemTotal := decimal.Zero
	for _, l := range in.Lines {
		itemTotal = itemTotal.Add(decimal.NewFromInt(int64(l.Qty)).Mul(l.UnitPrice))
	}

	// No destination, or destinations without a chosen method: not computable.
	var fulfillmentTotal *decimal.Decimal
	if len(in.Fees) > 0 {
		shipping := decimal.Zero
		handling := decimal.Zero
		for _, f := range in.Fees {
			shipping = shipping.Add(f.Rate)
			handling = handling.Add(f.Handling)
		}
		sum := shipping.Add(handling)
		fulfillmentTotal = &sum
	}

	var taxTotal *decimal.Decimal
	if in.Tax.Valid {
		tax := itemTotal.Mul(in.Tax.Decimal)
		taxTotal = &tax
	}

	discount := decimal.Zero
	if in.Discount.Valid {
		discount = in.Discount.Decimal
	}

	total := itemTotal.
		Add(ZeroIfNil(fulfillmentTotal)).
		Add(ZeroIfNil(taxTotal)).
		Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Summary{
		ItemTotal:        itemTotal,
		FulfillmentTotal: fulfillmentTotal,
		TaxTotal:         taxTotal,
		DiscountTotal:    discount,
		Total:            total,
	}
}

// ZeroIfNil treats a missing amount as zero. Only the grand total formula uses
// it; emitted summaries keep nil amounts as nil.
func ZeroIfNil(amount *decimal.Decimal) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return *amount
}
