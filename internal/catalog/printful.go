package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
)

const printfulAPIBase = "https://api.printful.com"

// PrintfulClient lists print-on-demand products from the fulfilment provider.
type PrintfulClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// PrintfulClientDeps wires the dependencies for a Printful client.
type PrintfulClientDeps struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewPrintfulClient constructs a Printful client.
func NewPrintfulClient(deps PrintfulClientDeps) (*PrintfulClient, error) {
	if strings.TrimSpace(deps.APIKey) == "" {
		return nil, errors.New("catalog: printful api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if baseURL == "" {
		baseURL = printfulAPIBase
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &PrintfulClient{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(deps.APIKey),
		client:  client,
	}, nil
}

type printfulListResponse struct {
	Result []struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		ThumbnailURL string `json:"thumbnail_url"`
	} `json:"result"`
}

// ListSyncProducts fetches the store's synced products.
func (c *PrintfulClient) ListSyncProducts(ctx context.Context) ([]domain.SyncProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/store/products", nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build printful request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: printful status %d", ErrBackendResponse, resp.StatusCode)
	}

	var decoded printfulListResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode printful response: %v", ErrBackendResponse, err)
	}

	products := make([]domain.SyncProduct, 0, len(decoded.Result))
	for _, p := range decoded.Result {
		products = append(products, domain.SyncProduct{
			ID:       p.ID,
			Name:     p.Name,
			ImageURL: p.ThumbnailURL,
		})
	}
	return products, nil
}
