package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is an amount paired with the currency it is expressed in. Monetary
// fields never cross a package boundary as bare numbers.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney constructs a Money value.
func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{Amount: amount, CurrencyCode: currencyCode}
}

// MoneyPtr wraps an optional amount, returning nil when the amount was not computed.
func MoneyPtr(amount *decimal.Decimal, currencyCode string) *Money {
	if amount == nil {
		return nil
	}
	m := NewMoney(*amount, currencyCode)
	return &m
}

// MarshalJSON encodes the amount as a JSON number rather than a quoted string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount       json.Number `json:"amount"`
		CurrencyCode string      `json:"currencyCode"`
	}{
		Amount:       json.Number(m.Amount.String()),
		CurrencyCode: m.CurrencyCode,
	})
}
