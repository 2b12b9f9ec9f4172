package cart

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// Address is a postal destination used for shipping and billing.
type Address struct {
	FullName     string `json:"fullName"`
	Company      string `json:"company,omitempty"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region"`
	Postal       string `json:"postal"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	IsCommercial bool   `json:"isCommercial"`
}

// Item is a line of the stored cart document. PriceWhenAdded captures the
// currency the item is resolved against.
type Item struct {
	ID             string        `json:"id" validate:"required"`
	ProductID      string        `json:"productId" validate:"required"`
	VariantID      string        `json:"variantId" validate:"required"`
	Quantity       int           `json:"quantity" validate:"gte=1"`
	PriceWhenAdded pricing.Money `json:"priceWhenAdded"`
	Title          string        `json:"title,omitempty"`
	VariantTitle   string        `json:"variantTitle,omitempty"`
	OptionTitle    string        `json:"optionTitle,omitempty"`
}

// ProductConfiguration names the product and variant an item was configured with.
type ProductConfiguration struct {
	ProductID        string `json:"productId"`
	ProductVariantID string `json:"productVariantId"`
}

// ResolvedItem is an Item joined with current catalog data.
type ResolvedItem struct {
	ID                   string               `json:"id"`
	ProductID            string               `json:"productId"`
	VariantID            string               `json:"variantId"`
	Quantity             int                  `json:"quantity"`
	PriceWhenAdded       pricing.Money        `json:"priceWhenAdded"`
	Title                string               `json:"title,omitempty"`
	VariantTitle         string               `json:"variantTitle,omitempty"`
	OptionTitle          string               `json:"optionTitle,omitempty"`
	Price                pricing.Money        `json:"price"`
	CompareAtPrice       *pricing.Money       `json:"compareAtPrice"`
	CurrentQuantity      int                  `json:"currentQuantity"`
	IsBackorder          bool                 `json:"isBackorder"`
	IsLowQuantity        bool                 `json:"isLowQuantity"`
	IsSoldOut            bool                 `json:"isSoldOut"`
	ImageURLs            *catalog.ImageURLs   `json:"imageURLs"`
	ProductConfiguration ProductConfiguration `json:"productConfiguration"`
}

// ShipmentMethod is the shipping method chosen for a fulfillment group.
type ShipmentMethod struct {
	ID       string          `json:"id"`
	Carrier  string          `json:"carrier,omitempty"`
	Name     string          `json:"name"`
	Label    string          `json:"label,omitempty"`
	Group    string          `json:"group,omitempty"`
	Rate     decimal.Decimal `json:"rate"`
	Handling decimal.Decimal `json:"handling"`
}

// FulfillmentGroup is a shipping destination. ShipmentMethod is nil until the
// shopper picks one.
type FulfillmentGroup struct {
	ID             string          `json:"id" validate:"required"`
	Address        *Address        `json:"address"`
	ShipmentMethod *ShipmentMethod `json:"shipmentMethod"`
}

// Payment is a billing record attached to the cart.
type Payment struct {
	ID      string   `json:"id" validate:"required"`
	Address *Address `json:"address"`
}

// Cart is the stored cart document. Tax is a ratio applied to the item total
// and Discount an absolute amount; both are optional. Tax is only set when the
// document carries it as a JSON number; any other value leaves it unset.
type Cart struct {
	ID           string              `json:"id"`
	Items        []Item              `json:"items" validate:"dive"`
	Shipping     []FulfillmentGroup  `json:"shipping" validate:"dive"`
	Billing      []Payment           `json:"billing" validate:"dive"`
	CurrencyCode string              `json:"currencyCode" validate:"required,len=3"`
	Tax          decimal.NullDecimal `json:"tax"`
	Discount     decimal.NullDecimal `json:"discount"`
}

type cartFields Cart

// UnmarshalJSON decodes a cart document. A tax that is not a JSON number
// (a string, bool or object) decodes as unset instead of failing the cart.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var doc struct {
		cartFields
		Tax json.RawMessage `json:"tax"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*c = Cart(doc.cartFields)
	c.Tax = taxRatio(doc.Tax)
	return nil
}

// MarshalJSON writes tax and discount as JSON numbers so stored documents
// round-trip through UnmarshalJSON.
func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		cartFields
		Tax      json.RawMessage `json:"tax"`
		Discount json.RawMessage `json:"discount"`
	}{
		cartFields: cartFields(c),
		Tax:        numberOrNull(c.Tax),
		Discount:   numberOrNull(c.Discount),
	})
}

func taxRatio(raw json.RawMessage) decimal.NullDecimal {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return decimal.NullDecimal{}
	}
	n, ok := v.(json.Number)
	if !ok {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func numberOrNull(d decimal.NullDecimal) json.RawMessage {
	if !d.Valid {
		return json.RawMessage("null")
	}
	return json.RawMessage(d.Decimal.String())
}

// ProductIDs returns the distinct product ids referenced by the cart items.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return catalog.DistinctIDs(ids)
}
