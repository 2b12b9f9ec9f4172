package catalog

import "context"

// Lookup fetches catalog products in one batched call. Implementations return
// only visible, non-deleted products whose id is among productIDs; ids without
// a match are simply absent from the result.
type Lookup interface {
	FindVisibleProducts(ctx context.Context, productIDs []string) ([]Product, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, productIDs []string) ([]Product, error)

// FindVisibleProducts implements Lookup.
func (f LookupFunc) FindVisibleProducts(ctx context.Context, productIDs []string) ([]Product, error) {
	return f(ctx, productIDs)
}

// DistinctIDs removes empty and duplicate ids while keeping first-seen order.
func DistinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sellableOnly(products []Product) []Product {
	out := products[:0]
	for _, p := range products {
		if p.Sellable() {
			out = append(out, p)
		}
	}
	return out
}
