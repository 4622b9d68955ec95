package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shamanicca/storefront/internal/catalog"
	domain "github.com/shamanicca/storefront/internal/domain"
	"github.com/shamanicca/storefront/internal/format"
	"github.com/shamanicca/storefront/internal/nav"
	"github.com/shamanicca/storefront/internal/platform/httpx"
	"github.com/shamanicca/storefront/internal/platform/pagination"
)

// ShopHandlers exposes the catalog read endpoints.
type ShopHandlers struct {
	catalog  *catalog.Service
	nav      *nav.Service
	prices   *format.PriceFormatter
	pageOpts pagination.Options
}

// NewShopHandlers constructs the catalog handlers.
func NewShopHandlers(service *catalog.Service, navigation *nav.Service, prices *format.PriceFormatter, pageOpts pagination.Options) *ShopHandlers {
	return &ShopHandlers{
		catalog:  service,
		nav:      navigation,
		prices:   prices,
		pageOpts: pageOpts,
	}
}

// Routes wires the /shop endpoints onto the provided router.
func (h *ShopHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/printful/products", h.listPrintfulProducts)
}

type productPayload struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Price            int64            `json:"price"`
	PriceFormatted   string           `json:"priceFormatted,omitempty"`
	RegularPrice     int64            `json:"regularPrice,omitempty"`
	OnSale           bool             `json:"onSale"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
	Categories       []string         `json:"categories,omitempty"`
	Sizes            []string         `json:"sizes,omitempty"`
	Subcategories    []nav.Suggestion `json:"subcategories,omitempty"`
}

type productListingPayload struct {
	Products   []productPayload      `json:"products"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalItems int                   `json:"totalItems"`
	TotalPages int                   `json:"totalPages"`
	Pages      []pagination.PageItem `json:"pages"`
}

func (h *ShopHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeCatalogUnavailable(ctx, w)
		return
	}

	params, err := pagination.FromRequest(r, h.pageOpts)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	listing, err := h.catalog.ListProducts(ctx, catalog.ListingQuery{
		Params:   params,
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	payload := productListingPayload{
		Products:   make([]productPayload, 0, len(listing.Products)),
		Page:       listing.Page,
		PageSize:   listing.PageSize,
		TotalItems: listing.TotalItems,
		TotalPages: listing.TotalPages,
		Pages:      listing.Pages,
	}
	for _, p := range listing.Products {
		payload.Products = append(payload.Products, h.buildProductPayload(p, 0))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ShopHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeCatalogUnavailable(ctx, w)
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	product, err := h.catalog.ProductBySlug(ctx, slug)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.buildProductPayload(product, 2))
}

func (h *ShopHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeCatalogUnavailable(ctx, w)
		return
	}

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *ShopHandlers) listPrintfulProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeCatalogUnavailable(ctx, w)
		return
	}

	products, err := h.catalog.SyncProducts(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrFulfilmentUnconfigured) {
			httpx.WriteError(ctx, w, httpx.NewError("fulfilment_unconfigured", "fulfilment provider is not configured", http.StatusServiceUnavailable))
			return
		}
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ShopHandlers) buildProductPayload(p domain.Product, suggestions int) productPayload {
	payload := productPayload{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		Price:            p.Price,
		RegularPrice:     p.RegularPrice,
		OnSale:           p.OnSale(),
		ShortDescription: p.ShortDescription,
		ImageURL:         p.ImageURL,
		Categories:       p.Categories,
		Sizes:            catalog.SizesFor(p),
	}
	if h.prices != nil {
		payload.PriceFormatted = h.prices.Minor(p.Price)
	}
	if h.nav != nil && suggestions > 0 {
		payload.Subcategories = h.nav.SuggestSubcategories(p, suggestions)
	}
	return payload
}

func writeCatalogUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, catalog.ErrBackendUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("backend_unavailable", "commerce backend unavailable", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to load catalog data", http.StatusInternalServerError))
	}
}
