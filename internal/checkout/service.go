package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/resilience"
)

// Result is a fully resolved cart and its checkout summary.
type Result struct {
	Cart     cart.Cart
	Items    []cart.ResolvedItem
	Checkout Summary
}

// Service builds checkouts from cart documents and a catalog source.
type Service struct {
	Lookup         catalog.Lookup
	Resolver       cart.Resolver
	CatalogTimeout time.Duration
	Logger         zerolog.Logger
}

// Build fetches the catalog products referenced by the cart in one batched
// call, resolves every item and computes the checkout. Any failure aborts the
// build; no partial result is returned.
func (s *Service) Build(ctx context.Context, c cart.Cart) (Result, error) {
	start := time.Now()
	ctx, span := obs.StartSpan(ctx, "checkout.build",
		attribute.Int("checkout.items", len(c.Items)),
		attribute.Int("checkout.fulfillment_groups", len(c.Shipping)),
	)
	res, err := s.build(ctx, c)
	outcome := "ok"
	if err != nil {
		outcome = outcomeCode(err)
		s.logFailure(ctx, c, err)
	}
	span.SetAttributes(attribute.String("checkout.outcome", outcome))
	obs.EndSpan(span, err)
	obs.ObserveCheckoutBuild(outcome, obs.DurationMillis(time.Since(start)))
	return res, err
}

func (s *Service) build(ctx context.Context, c cart.Cart) (Result, error) {
	if s == nil || s.Lookup == nil {
		return Result{}, errors.New("checkout service not configured")
	}
	var products []catalog.Product
	if ids := c.ProductIDs(); len(ids) > 0 {
		lookupCtx := ctx
		if s.CatalogTimeout > 0 {
			var cancel context.CancelFunc
			lookupCtx, cancel = context.WithTimeoutCause(ctx, s.CatalogTimeout, resilience.ErrDependencyTimeout)
			defer cancel()
		}
		lookupCtx, span := obs.StartSpan(lookupCtx, "checkout.catalog_lookup", attribute.Int("catalog.product_ids", len(ids)))
		found, err := s.Lookup.FindVisibleProducts(lookupCtx, ids)
		obs.EndSpan(span, err)
		if err != nil {
			if common.IsAppError(err) || ctx.Err() != nil {
				return Result{}, err
			}
			return Result{}, common.Unavailable(common.CodeCatalogUnavailable, "catalog is unavailable", fmt.Errorf("find visible products: %w", err))
		}
		products = found
	}

	items, err := s.Resolver.Resolve(ctx, products, c.Items)
	if err != nil {
		return Result{}, err
	}
	return Result{Cart: c, Items: items, Checkout: Compute(c, items)}, nil
}

func (s *Service) logFailure(ctx context.Context, c cart.Cart, err error) {
	logger := s.Logger
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		logger = *l
	}
	evt := logger.Warn().Err(err).Str("cart_id", c.ID).Int("items", len(c.Items))
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		evt = evt.Str("code", appErr.Code)
		if d, ok := appErr.Details.(cart.ItemErrorDetails); ok {
			evt = evt.Str("product_id", d.ProductID).Str("variant_id", d.VariantID).Str("currency", d.CurrencyCode)
		}
	}
	evt.Msg("checkout build failed")
}

func outcomeCode(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "CANCELED"
	}
	return common.CodeInternal
}
