package httptransport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

type addToCartRequest struct {
	Quantity *int `json:"quantity" validate:"omitempty,gte=1"`
}

type setQuantityRequest struct {
	// zero or less removes the line
	Quantity *int `json:"quantity" validate:"required"`
}

type checkoutResponse struct {
	OrderID                    string `json:"orderId"`
	TotalAmount                int64  `json:"totalAmount"`
	TotalDisplay               string `json:"totalDisplay"`
	PrescriptionUploadRequired bool   `json:"prescriptionUploadRequired"`
}

func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPTransport) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	items, totals := h.deps.Sessions.Snapshot(sessionFrom(r.Context()))
	h.writeJSON(w, status, h.views.cart(items, totals))
}

func (h *HTTPTransport) addProduct(w http.ResponseWriter, r *http.Request) {
	h.addToCart(w, r, func(ctx context.Context, id string) (domain.Purchasable, error) {
		p, found, err := h.deps.Catalog.GetProduct(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("catalog.GetProduct: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("product %s: %w", id, errNotFound)
		}
		return p, nil
	})
}

func (h *HTTPTransport) addLabTest(w http.ResponseWriter, r *http.Request) {
	h.addToCart(w, r, func(ctx context.Context, id string) (domain.Purchasable, error) {
		t, found, err := h.deps.Catalog.GetLabTest(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("catalog.GetLabTest: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("lab test %s: %w", id, errNotFound)
		}
		return t, nil
	})
}

func (h *HTTPTransport) addHealthPackage(w http.ResponseWriter, r *http.Request) {
	h.addToCart(w, r, func(ctx context.Context, id string) (domain.Purchasable, error) {
		p, found, err := h.deps.Catalog.GetHealthPackage(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("catalog.GetHealthPackage: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("health package %s: %w", id, errNotFound)
		}
		return p, nil
	})
}

func (h *HTTPTransport) addToCart(w http.ResponseWriter, r *http.Request, lookup func(context.Context, string) (domain.Purchasable, error)) {
	var req addToCartRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Validator.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	src, err := lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.deps.Sessions.With(sessionFrom(r.Context()), func(cart *domain.Cart) {
		cart.Add(src, quantity)
	})

	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPTransport) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Validator.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	itemID := chi.URLParam(r, "itemID")
	h.deps.Sessions.With(sessionFrom(r.Context()), func(cart *domain.Cart) {
		cart.SetQuantity(itemID, *req.Quantity)
	})

	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPTransport) removeItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.deps.Sessions.With(sessionFrom(r.Context()), func(cart *domain.Cart) {
		cart.Remove(itemID)
	})

	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPTransport) clearCart(w http.ResponseWriter, r *http.Request) {
	h.deps.Sessions.Clear(sessionFrom(r.Context()))
	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPTransport) checkout(w http.ResponseWriter, r *http.Request) {
	var req addressView
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.deps.Checkout.PlaceOrder(r.Context(), sessionFrom(r.Context()), req.toDomain())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:                    result.OrderID,
		TotalAmount:                result.TotalAmount,
		TotalDisplay:               h.views.money(result.TotalAmount),
		PrescriptionUploadRequired: result.PrescriptionUploadRequired,
	})
}
