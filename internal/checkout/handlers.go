package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/opaqueid"
	"github.com/noah-isme/toko-checkout/internal/shipping"
)

const maxPreviewBody = 1 << 20

// CartLoader loads stored cart documents by internal id.
type CartLoader interface {
	Get(ctx context.Context, id string) (cart.Cart, error)
}

// Handler exposes checkout building over HTTP.
type Handler struct {
	Svc      *Service
	Carts    CartLoader
	Validate *validator.Validate
}

// CartView is the resolved cart returned to clients, with opaque ids.
type CartView struct {
	ID           string              `json:"id,omitempty"`
	CurrencyCode string              `json:"currencyCode"`
	Items        []cart.ResolvedItem `json:"items"`
}

// Response is the payload of both checkout endpoints.
type Response struct {
	Cart     CartView `json:"cart"`
	Checkout Summary  `json:"checkout"`
}

// Preview builds a checkout for a cart document posted by the client.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	var payload cart.Cart
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBody))
	if err := dec.Decode(&payload); err != nil {
		h.writeError(w, r, common.InvalidParameter("invalid payload", err, nil))
		return
	}
	if err := h.validate(payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := decodeCartIDs(payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	obs.SetCartID(r.Context(), c.ID)
	h.respond(w, r, c)
}

// ForCart builds the checkout of a stored cart.
func (h *Handler) ForCart(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil || h.Carts == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	raw, err := url.PathUnescape(chi.URLParam(r, "cartId"))
	if err != nil {
		h.writeError(w, r, common.InvalidParameter("invalid cart id", err, nil))
		return
	}
	cartID, err := opaqueid.Decode(opaqueid.Cart, raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	obs.SetCartID(r.Context(), cartID)
	c, err := h.Carts.Get(r.Context(), cartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			h.writeError(w, r, common.NotFound("cart not found", err, nil))
			return
		}
		h.writeError(w, r, err)
		return
	}
	c.ID = cartID
	h.respond(w, r, c)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, c cart.Cart) {
	res, err := h.Svc.Build(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": encodeResult(res)})
}

func (h *Handler) validate(c cart.Cart) error {
	v := h.Validate
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Namespace()] = fe.Tag()
			}
			return common.InvalidParameter("invalid cart", err, fields)
		}
		return common.InvalidParameter("invalid cart", err, nil)
	}
	if c.Discount.Valid && c.Discount.Decimal.IsNegative() {
		return common.InvalidParameter("discount must not be negative", nil, map[string]string{"Cart.Discount": "gte"})
	}
	if c.Tax.Valid && c.Tax.Decimal.IsNegative() {
		return common.InvalidParameter("tax must not be negative", nil, map[string]string{"Cart.Tax": "gte"})
	}
	for _, it := range c.Items {
		if it.PriceWhenAdded.Amount.IsNegative() {
			return common.InvalidParameter("item price must not be negative", nil, map[string]string{"itemId": it.ID})
		}
	}
	for _, g := range c.Shipping {
		if m := g.ShipmentMethod; m != nil && (m.Rate.IsNegative() || m.Handling.IsNegative()) {
			return common.InvalidParameter("shipment rate and handling must not be negative", nil, map[string]string{"fulfillmentGroupId": g.ID})
		}
	}
	return nil
}

func decodeCartIDs(in cart.Cart) (cart.Cart, error) {
	out := in
	if in.ID != "" {
		id, err := opaqueid.Decode(opaqueid.Cart, in.ID)
		if err != nil {
			return cart.Cart{}, err
		}
		out.ID = id
	}
	out.Items = make([]cart.Item, len(in.Items))
	for i, it := range in.Items {
		var err error
		if it.ID, err = opaqueid.Decode(opaqueid.CartItem, it.ID); err != nil {
			return cart.Cart{}, err
		}
		if it.ProductID, err = opaqueid.Decode(opaqueid.Product, it.ProductID); err != nil {
			return cart.Cart{}, err
		}
		if it.VariantID, err = opaqueid.Decode(opaqueid.Product, it.VariantID); err != nil {
			return cart.Cart{}, err
		}
		out.Items[i] = it
	}
	return out, nil
}

func encodeResult(res Result) Response {
	items := make([]cart.ResolvedItem, len(res.Items))
	for i, it := range res.Items {
		it.ID = opaqueid.Encode(opaqueid.CartItem, it.ID)
		it.ProductID = opaqueid.Encode(opaqueid.Product, it.ProductID)
		it.VariantID = opaqueid.Encode(opaqueid.Product, it.VariantID)
		it.ProductConfiguration = cart.ProductConfiguration{
			ProductID:        opaqueid.Encode(opaqueid.Product, it.ProductConfiguration.ProductID),
			ProductVariantID: opaqueid.Encode(opaqueid.Product, it.ProductConfiguration.ProductVariantID),
		}
		items[i] = it
	}
	summary := res.Checkout
	groups := make([]shipping.FulfillmentOption, len(summary.FulfillmentGroups))
	for i, g := range summary.FulfillmentGroups {
		g.Items = items
		groups[i] = g
	}
	summary.FulfillmentGroups = groups

	view := CartView{CurrencyCode: res.Cart.CurrencyCode, Items: items}
	if res.Cart.ID != "" {
		view.ID = opaqueid.Encode(opaqueid.Cart, res.Cart.ID)
	}
	return Response{Cart: view, Checkout: summary}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := common.ErrorResponse(err, "unable to build checkout")
	obs.SetErrorCode(r.Context(), body.Code)
	common.JSONError(w, status, body.Code, body.Message, body.Details)
}
