package shipping

import (
	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// FulfillmentTypeShipping is the only fulfillment type supported today.
const FulfillmentTypeShipping = "shipping"

// AllItemsPerGroup records the single-destination limitation: every fulfillment
// group carries the entire resolved item list. Splitting items across groups is
// not modelled yet.
const AllItemsPerGroup = true

// FulfillmentMethod describes the shipping method selected for a group.
type FulfillmentMethod struct {
	Carrier          *string  `json:"carrier"`
	DisplayName      string   `json:"displayName"`
	Group            *string  `json:"group"`
	Name             string   `json:"name"`
	FulfillmentTypes []string `json:"fulfillmentTypes"`
}

// SelectedOption is the priced shipping choice of a fulfillment group.
type SelectedOption struct {
	ID                string            `json:"id"`
	FulfillmentMethod FulfillmentMethod `json:"fulfillmentMethod"`
	HandlingPrice     pricing.Money     `json:"handlingPrice"`
	Price             pricing.Money     `json:"price"`
}

// FulfillmentData holds the destination of a fulfillment group.
type FulfillmentData struct {
	ShippingAddress *cart.Address `json:"shippingAddress"`
}

// FulfillmentOption is the client-facing view of a fulfillment group.
type FulfillmentOption struct {
	ID                        string              `json:"id"`
	Type                      string              `json:"type"`
	Data                      FulfillmentData     `json:"data"`
	Items                     []cart.ResolvedItem `json:"items"`
	SelectedFulfillmentOption *SelectedOption     `json:"selectedFulfillmentOption"`
}

// ResolveFulfillmentGroup prices a fulfillment group in the cart's currency.
// A group without a shipment method yields no selected option.
func ResolveFulfillmentGroup(group cart.FulfillmentGroup, c cart.Cart, items []cart.ResolvedItem) FulfillmentOption {
	if items == nil {
		items = []cart.ResolvedItem{}
	}
	opt := FulfillmentOption{
		ID:    group.ID,
		Type:  FulfillmentTypeShipping,
		Data:  FulfillmentData{ShippingAddress: group.Address},
		Items: items,
	}
	method := group.ShipmentMethod
	if method == nil {
		return opt
	}

	displayName := method.Label
	if displayName == "" {
		displayName = method.Name
	}
	opt.SelectedFulfillmentOption = &SelectedOption{
		ID: method.ID,
		FulfillmentMethod: FulfillmentMethod{
			Carrier:          optionalString(method.Carrier),
			DisplayName:      displayName,
			Group:            optionalString(method.Group),
			Name:             method.Name,
			FulfillmentTypes: []string{FulfillmentTypeShipping},
		},
		HandlingPrice: pricing.NewMoney(method.Handling, c.CurrencyCode),
		Price:         pricing.NewMoney(method.Rate, c.CurrencyCode),
	}
	return opt
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
