package cart

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

var (
	// ErrProductNotFound indicates an item references a product missing from the catalog snapshot.
	ErrProductNotFound = errors.New("catalog product not found")
	// ErrVariantNotFound indicates the product has no variant with the item's variant id.
	ErrVariantNotFound = errors.New("product variant not found")
	// ErrPriceNotFound indicates the variant has no price in the item's currency.
	ErrPriceNotFound = errors.New("variant price not found for currency")
)

// ItemErrorDetails identifies the line item that failed to resolve.
type ItemErrorDetails struct {
	ProductID    string `json:"productId"`
	VariantID    string `json:"variantId,omitempty"`
	CurrencyCode string `json:"currencyCode,omitempty"`
}

// Resolver joins cart items against a catalog snapshot.
type Resolver struct {
	// Workers bounds concurrent item resolution. Zero means GOMAXPROCS.
	Workers int
}

// ResolveItems resolves items with the default worker bound.
func ResolveItems(products []catalog.Product, items []Item) ([]ResolvedItem, error) {
	return Resolver{}.Resolve(context.Background(), products, items)
}

// Resolve returns one ResolvedItem per input item, in input order. Any failure
// aborts the batch; when several items fail, the error of the first one in
// input order is returned.
func (r Resolver) Resolve(ctx context.Context, products []catalog.Product, items []Item) ([]ResolvedItem, error) {
	if len(items) == 0 {
		return []ResolvedItem{}, nil
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		if _, ok := byID[p.ProductID]; !ok {
			byID[p.ProductID] = p
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]ResolvedItem, len(items))
	errs := make([]error, len(items))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			resolved, err := resolveItem(byID, items[i])
			if err != nil {
				errs[i] = err
				return err
			}
			out[i] = resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}
		return nil, err
	}
	return out, nil
}

func resolveItem(products map[string]catalog.Product, item Item) (ResolvedItem, error) {
	product, ok := products[item.ProductID]
	if !ok {
		return ResolvedItem{}, common.NotFound(
			fmt.Sprintf("product %s not found", item.ProductID),
			fmt.Errorf("resolve item %s: %w", item.ID, ErrProductNotFound),
			ItemErrorDetails{ProductID: item.ProductID},
		)
	}

	variant, ok := catalog.FindVariant(product, item.VariantID)
	if !ok {
		return ResolvedItem{}, common.InvalidParameter(
			fmt.Sprintf("variant %s not found on product %s", item.VariantID, item.ProductID),
			fmt.Errorf("resolve item %s: %w", item.ID, ErrVariantNotFound),
			ItemErrorDetails{ProductID: item.ProductID, VariantID: item.VariantID},
		)
	}

	currency := item.PriceWhenAdded.CurrencyCode
	price, ok := variant.PriceFor(currency)
	if !ok {
		return ResolvedItem{}, common.InvalidParameter(
			fmt.Sprintf("variant %s has no %s price", item.VariantID, currency),
			fmt.Errorf("resolve item %s: %w", item.ID, ErrPriceNotFound),
			ItemErrorDetails{ProductID: item.ProductID, VariantID: item.VariantID, CurrencyCode: currency},
		)
	}

	var images *catalog.ImageURLs
	if media, ok := product.MediaFor(item.VariantID); ok {
		urls := media.URLs
		images = &urls
	}

	var compareAt *pricing.Money
	if price.CompareAtPrice.Valid {
		compareAt = pricing.MoneyPtr(&price.CompareAtPrice.Decimal, currency)
	}

	return ResolvedItem{
		ID:              item.ID,
		ProductID:       item.ProductID,
		VariantID:       item.VariantID,
		Quantity:        item.Quantity,
		PriceWhenAdded:  item.PriceWhenAdded,
		Title:           item.Title,
		VariantTitle:    item.VariantTitle,
		OptionTitle:     item.OptionTitle,
		Price:           pricing.NewMoney(price.Price, currency),
		CompareAtPrice:  compareAt,
		CurrentQuantity: variant.Quantity,
		IsBackorder:     variant.IsBackorder,
		IsLowQuantity:   variant.IsLowQuantity,
		IsSoldOut:       variant.IsSoldOut,
		ImageURLs:       images,
		ProductConfiguration: ProductConfiguration{
			ProductID:        item.ProductID,
			ProductVariantID: item.VariantID,
		},
	}, nil
}
