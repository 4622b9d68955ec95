package catalog

import (
	"context"
	"errors"
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
	"github.com/shamanicca/storefront/internal/platform/pagination"
)

// RestBackend is the slice of the WooCommerce REST API the service consumes.
type RestBackend interface {
	ListProducts(ctx context.Context, params ListProductsParams) (ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryBackend resolves category-scoped product queries.
type CategoryBackend interface {
	ProductsByCategory(ctx context.Context, category string, first int) ([]domain.Product, error)
}

// FulfilmentBackend lists print-on-demand products.
type FulfilmentBackend interface {
	ListSyncProducts(ctx context.Context) ([]domain.SyncProduct, error)
}

// ServiceDeps bundles constructor inputs for the catalog service.
type ServiceDeps struct {
	Rest       RestBackend
	Categories CategoryBackend
	Fulfilment FulfilmentBackend
	Pagination pagination.Options
}

// Service is the storefront's read-side catalog API.
type Service struct {
	rest       RestBackend
	categories CategoryBackend
	fulfilment FulfilmentBackend
	pageOpts   pagination.Options
}

var (
	// ErrRestBackendMissing indicates the REST backend dependency is absent.
	ErrRestBackendMissing = errors.New("catalog service: rest backend is not configured")
	// ErrFulfilmentUnconfigured indicates no fulfilment provider is wired.
	ErrFulfilmentUnconfigured = errors.New("catalog service: fulfilment backend is not configured")
)

// NewService constructs the catalog service with the supplied dependencies.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Rest == nil {
		return nil, ErrRestBackendMissing
	}
	return &Service{
		rest:       deps.Rest,
		categories: deps.Categories,
		fulfilment: deps.Fulfilment,
		pageOpts:   deps.Pagination,
	}, nil
}

// ListingQuery narrows a product listing.
type ListingQuery struct {
	Params   pagination.Params
	Category string
	Search   string
}

// Listing is one page of products plus everything a client needs to render
// pagination controls.
type Listing struct {
	Products   []domain.Product      `json:"products"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalItems int                   `json:"totalItems"`
	TotalPages int                   `json:"totalPages"`
	Pages      []pagination.PageItem `json:"pages"`
}

// ListProducts fetches one page of products and derives the page range. An
// out-of-range requested page clamps rather than erroring, so the listing is
// always renderable.
func (s *Service) ListProducts(ctx context.Context, query ListingQuery) (Listing, error) {
	params := pagination.Must(query.Params)

	page, err := s.rest.ListProducts(ctx, ListProductsParams{
		Page:     params.Page,
		PerPage:  params.PageSize,
		Category: strings.TrimSpace(query.Category),
		Search:   strings.TrimSpace(query.Search),
	})
	if err != nil {
		return Listing{}, err
	}

	totalPages := pagination.TotalPages(page.TotalItems, params.PageSize)
	current := pagination.ClampPage(params.Page, totalPages)

	return Listing{
		Products:   page.Products,
		Page:       current,
		PageSize:   params.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: totalPages,
		Pages:      pagination.RangePages(totalPages, current, params.SiblingCount, params.BoundaryCount),
	}, nil
}

// ProductBySlug resolves a single product. Callers should map
// ErrProductNotFound to a 404.
func (s *Service) ProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	return s.rest.GetProductBySlug(ctx, slug)
}

// Categories lists product categories in the backend's menu order.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.rest.ListCategories(ctx)
}

// ProductsByCategory lists all products in one category, preferring the
// GraphQL backend when wired and falling back to the REST listing.
func (s *Service) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, errors.New("catalog service: category is required")
	}

	if s.categories != nil {
		return s.categories.ProductsByCategory(ctx, category, 100)
	}

	page, err := s.rest.ListProducts(ctx, ListProductsParams{Category: category, PerPage: 100})
	if err != nil {
		return nil, err
	}
	return page.Products, nil
}

// SyncProducts lists print-on-demand products from the fulfilment provider.
func (s *Service) SyncProducts(ctx context.Context) ([]domain.SyncProduct, error) {
	if s.fulfilment == nil {
		return nil, ErrFulfilmentUnconfigured
	}
	return s.fulfilment.ListSyncProducts(ctx)
}
