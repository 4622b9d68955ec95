package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shamanicca/storefront/internal/cart"
	"github.com/shamanicca/storefront/internal/checkout"
	"github.com/shamanicca/storefront/internal/platform/httpx"
	"github.com/shamanicca/storefront/internal/platform/session"
)

// CheckoutHandlers exposes the checkout endpoints.
type CheckoutHandlers struct {
	checkout *checkout.Service
	carts    *cart.Manager
}

// NewCheckoutHandlers constructs the checkout handlers.
func NewCheckoutHandlers(service *checkout.Service, carts *cart.Manager) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: service, carts: carts}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/session", h.createSession)
}

// createSession turns the current cart into a hosted payment session. The
// cart is left intact; it clears only after the payment provider confirms.
func (h *CheckoutHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil || h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID := session.FromContext(ctx)
	store, err := h.carts.Store(ctx, sessionID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "failed to open cart", http.StatusServiceUnavailable))
		return
	}

	created, err := h.checkout.CreateSession(ctx, sessionID, store.Items())
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cannot check out an empty cart", http.StatusConflict))
		case errors.Is(err, checkout.ErrProviderFailed):
			httpx.WriteError(ctx, w, httpx.NewError("provider_failed", "payment provider failed", http.StatusBadGateway))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to create checkout session", http.StatusInternalServerError))
		}
		return
	}

	writeJSONResponse(w, http.StatusCreated, created)
}
