package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGraphQLProductsByCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Variables["category"] != "instruments" {
			t.Errorf("unexpected category variable: %v", req.Variables["category"])
		}
		w.Write([]byte(`{"data":{"products":{"nodes":[
			{"databaseId": 7, "name": "Drum", "slug": "drum", "price": "199.00",
			 "regularPrice": "249.00", "shortDescription": "Hand made",
			 "image": {"sourceUrl": "https://cdn.example.com/drum.jpg"}}
		]}}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewGraphQLClient(GraphQLClientDeps{Endpoint: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewGraphQLClient returned error: %v", err)
	}

	products, err := client.ProductsByCategory(context.Background(), "instruments", 100)
	if err != nil {
		t.Fatalf("ProductsByCategory returned error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.ID != "7" || p.Price != 19900 || p.RegularPrice != 24900 {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.Categories) != 1 || p.Categories[0] != "instruments" {
		t.Fatalf("expected category tag, got %v", p.Categories)
	}
}

func TestGraphQLErrorsSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Internal server error"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewGraphQLClient(GraphQLClientDeps{Endpoint: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewGraphQLClient returned error: %v", err)
	}

	if _, err := client.ProductsByCategory(context.Background(), "instruments", 10); !errors.Is(err, ErrBackendResponse) {
		t.Fatalf("expected ErrBackendResponse, got %v", err)
	}
}
