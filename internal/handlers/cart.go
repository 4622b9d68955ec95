package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shamanicca/storefront/internal/cart"
	domain "github.com/shamanicca/storefront/internal/domain"
	"github.com/shamanicca/storefront/internal/format"
	"github.com/shamanicca/storefront/internal/platform/httpx"
	"github.com/shamanicca/storefront/internal/platform/session"
)

// CartHandlers exposes the session cart endpoints. Mutations are tolerant:
// removing or updating an absent line succeeds and returns the current cart,
// matching the in-memory store's no-op semantics.
type CartHandlers struct {
	carts  *cart.Manager
	prices *format.PriceFormatter
}

const maxCartBodySize = 16 * 1024

// NewCartHandlers constructs the cart handlers.
func NewCartHandlers(carts *cart.Manager, prices *format.PriceFormatter) *CartHandlers {
	return &CartHandlers{carts: carts, prices: prices}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{key}", h.updateItem)
	r.Delete("/items/{key}", h.removeItem)
}

type cartPayload struct {
	Items             []domain.CartItem `json:"items"`
	Count             int               `json:"count"`
	Subtotal          int64             `json:"subtotal"`
	SubtotalFormatted string            `json:"subtotalFormatted,omitempty"`
	Hydrated          bool              `json:"hydrated"`
}

type addItemRequest struct {
	Product  domain.CartProduct `json:"product"`
	Quantity int                `json:"qty"`
	Size     string             `json:"size"`
}

type updateItemRequest struct {
	Quantity int `json:"qty"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	h.writeCart(w, store)
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.Clear()
	h.writeCart(w, store)
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(r.Context(), w, err)
		return
	}
	var req addItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed request body", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Product.ID) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	store.AddItem(req.Product, req.Quantity, domain.CartItemOptions{Size: req.Size})
	h.writeCartStatus(w, store, http.StatusCreated)
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(r.Context(), w, err)
		return
	}
	var req updateItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed request body", http.StatusBadRequest))
		return
	}

	store.UpdateQty(chi.URLParam(r, "key"), req.Quantity)
	h.writeCart(w, store)
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.RemoveItem(chi.URLParam(r, "key"))
	h.writeCart(w, store)
}

func (h *CartHandlers) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}

	sessionID := session.FromContext(ctx)
	store, err := h.carts.Store(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cart.ErrSessionRequired) {
			httpx.WriteError(ctx, w, httpx.NewError("session_required", "no cart session on request", http.StatusInternalServerError))
			return nil, false
		}
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "failed to open cart", http.StatusServiceUnavailable))
		return nil, false
	}
	return store, true
}

func (h *CartHandlers) writeCart(w http.ResponseWriter, store *cart.Store) {
	h.writeCartStatus(w, store, http.StatusOK)
}

func (h *CartHandlers) writeCartStatus(w http.ResponseWriter, store *cart.Store, status int) {
	snapshot := store.Snapshot()
	payload := cartPayload{
		Items:    snapshot.Items,
		Count:    snapshot.Count,
		Subtotal: snapshot.Subtotal,
		Hydrated: snapshot.Hydrated,
	}
	if h.prices != nil {
		payload.SubtotalFormatted = h.prices.Minor(snapshot.Subtotal)
	}
	writeJSONResponse(w, status, payload)
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	}
}
