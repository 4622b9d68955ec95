package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/shamanicca/storefront/internal/domain"
)

var (
	// ErrBackendUnavailable wraps transport failures talking to the commerce
	// backend.
	ErrBackendUnavailable = errors.New("catalog: commerce backend unavailable")
	// ErrBackendResponse wraps non-2xx or undecodable backend responses.
	ErrBackendResponse = errors.New("catalog: unexpected commerce backend response")
	// ErrProductNotFound is returned when no published product matches.
	ErrProductNotFound = errors.New("catalog: product not found")
)

const defaultHTTPTimeout = 10 * time.Second

// WooClient talks to the WooCommerce REST API with consumer-key basic auth.
type WooClient struct {
	baseURL string
	key     string
	secret  string
	client  *http.Client
}

// WooClientDeps wires the dependencies for a WooCommerce REST client.
type WooClientDeps struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	HTTPClient     *http.Client
}

// NewWooClient constructs a WooCommerce REST client.
func NewWooClient(deps WooClientDeps) (*WooClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog: store url is required")
	}
	if strings.TrimSpace(deps.ConsumerKey) == "" || strings.TrimSpace(deps.ConsumerSecret) == "" {
		return nil, errors.New("catalog: consumer credentials are required")
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &WooClient{
		baseURL: baseURL,
		key:     strings.TrimSpace(deps.ConsumerKey),
		secret:  strings.TrimSpace(deps.ConsumerSecret),
		client:  client,
	}, nil
}

// ListProductsParams narrows a product listing request.
type ListProductsParams struct {
	Page     int
	PerPage  int
	Category string
	Search   string
}

type wooProduct struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Price            string `json:"price"`
	RegularPrice     string `json:"regular_price"`
	ShortDescription string `json:"short_description"`
	Images           []struct {
		Src string `json:"src"`
	} `json:"images"`
	Categories []struct {
		Slug string `json:"slug"`
	} `json:"categories"`
}

type wooCategory struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Count     int    `json:"count"`
	MenuOrder int    `json:"menu_order"`
}

// ProductPage is one page of catalog products together with the backend's
// total count, which drives pagination.
type ProductPage struct {
	Products   []domain.Product
	TotalItems int
}

// ListProducts fetches one page of published products.
func (c *WooClient) ListProducts(ctx context.Context, params ListProductsParams) (ProductPage, error) {
	query := url.Values{}
	query.Set("status", "publish")
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if category := strings.TrimSpace(params.Category); category != "" {
		query.Set("category", category)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		query.Set("search", search)
	}

	var raw []wooProduct
	header, err := c.get(ctx, "/wp-json/wc/v3/products", query, &raw)
	if err != nil {
		return ProductPage{}, err
	}

	products := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		product, err := p.toDomain()
		if err != nil {
			return ProductPage{}, err
		}
		products = append(products, product)
	}

	total := len(products)
	if v := header.Get("X-WP-Total"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			total = parsed
		}
	}
	return ProductPage{Products: products, TotalItems: total}, nil
}

// GetProductBySlug fetches a single published product by its slug.
func (c *WooClient) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Product{}, errors.New("catalog: product slug is required")
	}

	query := url.Values{}
	query.Set("slug", slug)
	query.Set("status", "publish")

	var raw []wooProduct
	if _, err := c.get(ctx, "/wp-json/wc/v3/products", query, &raw); err != nil {
		return domain.Product{}, err
	}
	if len(raw) == 0 {
		return domain.Product{}, ErrProductNotFound
	}
	return raw[0].toDomain()
}

// ListCategories fetches product categories ordered by the backend's menu
// order.
func (c *WooClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := url.Values{}
	query.Set("per_page", "100")
	query.Set("hide_empty", "true")
	query.Set("orderby", "menu_order")
	query.Set("order", "asc")

	var raw []wooCategory
	if _, err := c.get(ctx, "/wp-json/wc/v3/products/categories", query, &raw); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(raw))
	for _, c := range raw {
		categories = append(categories, domain.Category{
			ID:    strconv.FormatInt(c.ID, 10),
			Name:  c.Name,
			Slug:  c.Slug,
			Count: c.Count,
		})
	}
	return categories, nil
}

func (c *WooClient) get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d for %s", ErrBackendResponse, resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrBackendResponse, path, err)
	}
	return resp.Header, nil
}

func (p wooProduct) toDomain() (domain.Product, error) {
	price, err := ParsePrice(p.Price)
	if err != nil {
		return domain.Product{}, err
	}
	regular, err := ParsePrice(p.RegularPrice)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:               strconv.FormatInt(p.ID, 10),
		Name:             p.Name,
		Slug:             p.Slug,
		Price:            price,
		RegularPrice:     regular,
		ShortDescription: p.ShortDescription,
	}
	if len(p.Images) > 0 {
		product.ImageURL = p.Images[0].Src
	}
	for _, cat := range p.Categories {
		product.Categories = append(product.Categories, cat.Slug)
	}
	return product, nil
}
