package catalog

import "github.com/shopspring/decimal"

// Product is the published, customer-facing representation of a product.
type Product struct {
	ProductID string      `json:"productId"`
	Title     string      `json:"title,omitempty"`
	IsVisible bool        `json:"isVisible"`
	IsDeleted bool        `json:"isDeleted"`
	Variants  []Variant   `json:"variants"`
	Media     []MediaItem `json:"media,omitempty"`
}

// Variant is a purchasable configuration of a product. Options hold nested
// variants for multi-level choices.
type Variant struct {
	VariantID     string                  `json:"variantId"`
	Title         string                  `json:"title,omitempty"`
	Pricing       map[string]VariantPrice `json:"pricing"`
	Quantity      int                     `json:"quantity"`
	IsBackorder   bool                    `json:"isBackorder"`
	IsLowQuantity bool                    `json:"isLowQuantity"`
	IsSoldOut     bool                    `json:"isSoldOut"`
	Options       []Variant               `json:"options,omitempty"`
}

// VariantPrice is the price of a variant in a single currency.
type VariantPrice struct {
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice decimal.NullDecimal `json:"compareAtPrice"`
}

// MediaItem links image URLs to a product and optionally to one of its variants.
type MediaItem struct {
	VariantID string    `json:"variantId,omitempty"`
	URLs      ImageURLs `json:"URLs"`
}

// ImageURLs lists the rendered sizes of a media item.
type ImageURLs struct {
	Large     string `json:"large,omitempty"`
	Medium    string `json:"medium,omitempty"`
	Original  string `json:"original,omitempty"`
	Small     string `json:"small,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Sellable reports whether the product passes the visibility filter.
func (p Product) Sellable() bool {
	return p.IsVisible && !p.IsDeleted
}

// PriceFor returns the variant price in the requested currency.
func (v Variant) PriceFor(currencyCode string) (VariantPrice, bool) {
	price, ok := v.Pricing[currencyCode]
	return price, ok
}

// MediaFor selects the media item for a variant: an exact match first, then the
// first media item of the product. It reports false when the product has no media.
func (p Product) MediaFor(variantID string) (MediaItem, bool) {
	for _, m := range p.Media {
		if m.VariantID != "" && m.VariantID == variantID {
			return m, true
		}
	}
	if len(p.Media) > 0 {
		return p.Media[0], true
	}
	return MediaItem{}, false
}
