package catalog

import (
	"context"

	"github.com/noah-isme/toko-checkout/internal/resilience"
)

// GuardedLookup applies retries and a circuit breaker around catalog I/O. The
// checkout core itself never retries; this wrapper belongs to the caller side.
type GuardedLookup struct {
	Next    Lookup
	Retrier resilience.Retrier
}

// FindVisibleProducts implements Lookup.
func (g GuardedLookup) FindVisibleProducts(ctx context.Context, productIDs []string) ([]Product, error) {
	var products []Product
	err := g.Retrier.Do(ctx, func(ctx context.Context) error {
		found, err := g.Next.FindVisibleProducts(ctx, productIDs)
		if err != nil {
			return err
		}
		products = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}
