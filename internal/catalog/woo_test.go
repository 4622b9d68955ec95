package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newWooTestClient(t *testing.T, handler http.Handler) *WooClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewWooClient(WooClientDeps{
		BaseURL:        server.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		HTTPClient:     server.Client(),
	})
	if err != nil {
		t.Fatalf("NewWooClient returned error: %v", err)
	}
	return client
}

func TestWooListProducts(t *testing.T) {
	client := newWooTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/v3/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ck_test" || pass != "cs_test" {
			t.Errorf("missing or wrong basic auth")
		}
		if got := r.URL.Query().Get("status"); got != "publish" {
			t.Errorf("expected status=publish, got %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "12" {
			t.Errorf("expected per_page=12, got %q", got)
		}
		w.Header().Set("X-WP-Total", "25")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 7, "name": "Drum", "slug": "drum", "price": "199.00", "regular_price": "249.00",
			 "short_description": "<p>Hand made</p>",
			 "images": [{"src": "https://cdn.example.com/drum.jpg"}],
			 "categories": [{"slug": "instruments"}]}
		]`))
	}))

	page, err := client.ListProducts(context.Background(), ListProductsParams{Page: 1, PerPage: 12})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if page.TotalItems != 25 {
		t.Fatalf("expected total 25, got %d", page.TotalItems)
	}
	if len(page.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(page.Products))
	}
	p := page.Products[0]
	if p.ID != "7" || p.Slug != "drum" {
		t.Fatalf("unexpected product identity: %+v", p)
	}
	if p.Price != 19900 || p.RegularPrice != 24900 {
		t.Fatalf("unexpected prices: %d / %d", p.Price, p.RegularPrice)
	}
	if !p.OnSale() {
		t.Fatalf("expected product to be on sale")
	}
	if p.ImageURL != "https://cdn.example.com/drum.jpg" {
		t.Fatalf("unexpected image: %s", p.ImageURL)
	}
	if len(p.Categories) != 1 || p.Categories[0] != "instruments" {
		t.Fatalf("unexpected categories: %v", p.Categories)
	}
}

func TestWooGetProductBySlug(t *testing.T) {
	client := newWooTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("slug"); got != "drum" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id": 7, "name": "Drum", "slug": "drum", "price": "199.00"}]`))
	}))

	product, err := client.GetProductBySlug(context.Background(), "drum")
	if err != nil {
		t.Fatalf("GetProductBySlug returned error: %v", err)
	}
	if product.Name != "Drum" {
		t.Fatalf("unexpected product: %+v", product)
	}

	if _, err := client.GetProductBySlug(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestWooListCategories(t *testing.T) {
	client := newWooTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/v3/products/categories" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id": 3, "name": "Instruments", "slug": "instruments", "count": 9, "menu_order": 1},
			{"id": 5, "name": "Apparel", "slug": "apparel", "count": 4, "menu_order": 2}
		]`))
	}))

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Slug != "instruments" || categories[0].Count != 9 {
		t.Fatalf("unexpected category: %+v", categories[0])
	}
}

func TestWooBackendErrorsAreClassified(t *testing.T) {
	client := newWooTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := client.ListProducts(context.Background(), ListProductsParams{})
	if !errors.Is(err, ErrBackendResponse) {
		t.Fatalf("expected ErrBackendResponse, got %v", err)
	}
}

func TestNewWooClientValidatesDeps(t *testing.T) {
	if _, err := NewWooClient(WooClientDeps{ConsumerKey: "k", ConsumerSecret: "s"}); err == nil {
		t.Fatalf("expected error for missing base url")
	}
	if _, err := NewWooClient(WooClientDeps{BaseURL: "https://shop.test"}); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}
