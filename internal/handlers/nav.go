package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shamanicca/storefront/internal/nav"
	"github.com/shamanicca/storefront/internal/platform/httpx"
)

// NavHandlers exposes the navigation endpoints.
type NavHandlers struct {
	nav *nav.Service
}

// NewNavHandlers constructs the navigation handlers.
func NewNavHandlers(service *nav.Service) *NavHandlers {
	return &NavHandlers{nav: service}
}

// Routes wires the /nav endpoints onto the provided router.
func (h *NavHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getTree)
	r.Get("/breadcrumbs", h.getBreadcrumbs)
}

// getTree returns the navigation tree. When ?path= is supplied the items are
// annotated with active state for that path.
func (h *NavHandlers) getTree(w http.ResponseWriter, r *http.Request) {
	if h.nav == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("nav_unavailable", "navigation service is unavailable", http.StatusServiceUnavailable))
		return
	}
	path := r.URL.Query().Get("path")
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": h.nav.Build(path)})
}

func (h *NavHandlers) getBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	if h.nav == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("nav_unavailable", "navigation service is unavailable", http.StatusServiceUnavailable))
		return
	}
	query := r.URL.Query()
	crumbs := h.nav.Breadcrumbs(query.Get("path"), query.Get("label"))
	writeJSONResponse(w, http.StatusOK, map[string]any{"breadcrumbs": crumbs})
}
