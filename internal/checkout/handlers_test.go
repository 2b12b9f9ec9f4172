package checkout_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/checkout"
	"github.com/noah-isme/toko-checkout/internal/opaqueid"
)

type memoryCarts map[string]cart.Cart

func (m memoryCarts) Get(_ context.Context, id string) (cart.Cart, error) {
	c, ok := m[id]
	if !ok {
		return cart.Cart{}, cart.ErrNotFound
	}
	return c, nil
}

type failingCarts struct{}

func (failingCarts) Get(context.Context, string) (cart.Cart, error) {
	return cart.Cart{}, errors.New("db down")
}

func newRouter(lookup catalog.Lookup, carts checkout.CartLoader) http.Handler {
	h := &checkout.Handler{Svc: newService(lookup), Carts: carts}
	r := chi.NewRouter()
	r.Post("/api/v1/checkout/preview", h.Preview)
	r.Get("/api/v1/carts/{cartId}/checkout", h.ForCart)
	return r
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func previewBody(t *testing.T, variantID string) []byte {
	t.Helper()
	body := map[string]any{
		"id":           opaqueid.Encode(opaqueid.Cart, "c1"),
		"currencyCode": "USD",
		"tax":          0.1,
		"items": []map[string]any{{
			"id":             opaqueid.Encode(opaqueid.CartItem, "i1"),
			"productId":      opaqueid.Encode(opaqueid.Product, "p1"),
			"variantId":      opaqueid.Encode(opaqueid.Product, variantID),
			"quantity":       2,
			"priceWhenAdded": map[string]any{"amount": 10, "currencyCode": "USD"},
		}},
		"shipping": []map[string]any{{
			"id":             "g1",
			"shipmentMethod": map[string]any{"id": "m1", "name": "Ground", "rate": 5, "handling": 1},
		}},
		"billing": []map[string]any{{"id": "pay1"}},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func TestPreviewReturnsCheckout(t *testing.T) {
	t.Parallel()

	router := newRouter(&recordingLookup{products: []catalog.Product{catalogProduct("p1", "12")}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/preview", bytes.NewReader(previewBody(t, "p1-v")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Data struct {
			Cart struct {
				ID    string `json:"id"`
				Items []struct {
					ID                   string         `json:"id"`
					ProductID            string         `json:"productId"`
					Price                map[string]any `json:"price"`
					ProductConfiguration struct {
						ProductVariantID string `json:"productVariantId"`
					} `json:"productConfiguration"`
				} `json:"items"`
			} `json:"cart"`
			Checkout struct {
				FulfillmentGroups []struct {
					Items []struct {
						ID string `json:"id"`
					} `json:"items"`
				} `json:"fulfillmentGroups"`
				Payments []struct {
					Amount map[string]any `json:"amount"`
				} `json:"payments"`
				Summary map[string]any `json:"summary"`
			} `json:"checkout"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Equal(t, opaqueid.Encode(opaqueid.Cart, "c1"), resp.Data.Cart.ID)
	require.Len(t, resp.Data.Cart.Items, 1)
	item := resp.Data.Cart.Items[0]
	require.Equal(t, opaqueid.Encode(opaqueid.CartItem, "i1"), item.ID)
	require.Equal(t, opaqueid.Encode(opaqueid.Product, "p1"), item.ProductID)
	require.Equal(t, opaqueid.Encode(opaqueid.Product, "p1-v"), item.ProductConfiguration.ProductVariantID)
	require.EqualValues(t, 12, item.Price["amount"])

	require.Equal(t, item.ID, resp.Data.Checkout.FulfillmentGroups[0].Items[0].ID)
	require.EqualValues(t, 28, resp.Data.Checkout.Payments[0].Amount["amount"])

	summary := resp.Data.Checkout.Summary
	require.EqualValues(t, 20, summary["itemTotal"].(map[string]any)["amount"])
	require.EqualValues(t, 6, summary["fulfillmentTotal"].(map[string]any)["amount"])
	require.EqualValues(t, 2, summary["taxTotal"].(map[string]any)["amount"])
	require.EqualValues(t, 0, summary["discountTotal"].(map[string]any)["amount"])
	require.EqualValues(t, 28, summary["total"].(map[string]any)["amount"])
}

func TestPreviewMissingVariantIsInvalidParameter(t *testing.T) {
	t.Parallel()

	router := newRouter(&recordingLookup{products: []catalog.Product{catalogProduct("p1", "12")}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/preview", bytes.NewReader(previewBody(t, "ghost")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "INVALID_PARAMETER", env.Error.Code)
	require.Equal(t, "p1", env.Error.Details["productId"])
	require.Equal(t, "ghost", env.Error.Details["variantId"])
}

func TestPreviewRejectsMalformedOpaqueID(t *testing.T) {
	t.Parallel()

	body := bytes.Replace(previewBody(t, "p1-v"), []byte(opaqueid.Encode(opaqueid.Product, "p1")), []byte("bm90LWFuLWlk"), 1)
	router := newRouter(&recordingLookup{}, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/preview", bytes.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestPreviewValidatesPayload(t *testing.T) {
	t.Parallel()

	router := newRouter(&recordingLookup{}, nil)
	cases := map[string]string{
		"bad json":           `{"items":`,
		"missing currency":   `{"items":[]}`,
		"zero quantity":      `{"currencyCode":"USD","items":[{"id":"a","productId":"b","variantId":"c","quantity":0}]}`,
		"negative discount":  `{"currencyCode":"USD","discount":-1}`,
		"negative tax":       `{"currencyCode":"USD","tax":-0.1}`,
		"negative price":     `{"currencyCode":"USD","items":[{"id":"a","productId":"b","variantId":"c","quantity":1,"priceWhenAdded":{"amount":-5,"currencyCode":"USD"}}]}`,
		"configuration only": `{"currencyCode":"USD","items":[{"id":"a","quantity":1,"productConfiguration":{"productId":"b","productVariantId":"c"}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/preview", bytes.NewBufferString(body)))
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestForCartLoadsStoredCart(t *testing.T) {
	t.Parallel()

	carts := memoryCarts{"c9": {CurrencyCode: "USD", Items: []cart.Item{itemFor("i1", "p1", 3, "2")}}}
	router := newRouter(&recordingLookup{products: []catalog.Product{catalogProduct("p1", "2")}}, carts)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/carts/"+opaqueid.Encode(opaqueid.Cart, "c9")+"/checkout", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Data checkout.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, opaqueid.Encode(opaqueid.Cart, "c9"), resp.Data.Cart.ID)
	require.Equal(t, "6", resp.Data.Checkout.Summary.Total.Amount.String())
	require.Nil(t, resp.Data.Checkout.Summary.FulfillmentTotal)
	require.Nil(t, resp.Data.Checkout.Summary.TaxTotal)
}

func TestForCartAcceptsEscapedID(t *testing.T) {
	t.Parallel()

	// "reaction/Cart:??>" encodes with a slash.
	id := "??>"
	opaque := opaqueid.Encode(opaqueid.Cart, id)
	require.Contains(t, opaque, "/")

	carts := memoryCarts{id: {CurrencyCode: "USD"}}
	router := newRouter(&recordingLookup{}, carts)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/carts/"+url.PathEscape(opaque)+"/checkout", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestForCartErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		carts  checkout.CartLoader
		cartID string
		status int
		code   string
	}{
		{"unknown cart", memoryCarts{}, opaqueid.Encode(opaqueid.Cart, "nope"), http.StatusNotFound, "NOT_FOUND"},
		{"malformed id", memoryCarts{}, "@@@", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"wrong namespace", memoryCarts{}, opaqueid.Encode(opaqueid.Product, "c1"), http.StatusBadRequest, "INVALID_PARAMETER"},
		{"store failure", failingCarts{}, opaqueid.Encode(opaqueid.Cart, "c1"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(&recordingLookup{}, tc.carts)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/carts/"+tc.cartID+"/checkout", nil))
			require.Equal(t, tc.status, rr.Code)

			var env errorEnvelope
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
			require.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestForCartCatalogOutage(t *testing.T) {
	t.Parallel()

	carts := memoryCarts{"c1": {CurrencyCode: "USD", Items: []cart.Item{itemFor("i1", "p1", 1, "1")}}}
	router := newRouter(&recordingLookup{err: errors.New("timeout")}, carts)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/carts/"+opaqueid.Encode(opaqueid.Cart, "c1")+"/checkout", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "CATALOG_UNAVAILABLE", env.Error.Code)
}
