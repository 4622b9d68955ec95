package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// GraphQLClient talks to the commerce backend's WPGraphQL endpoint. It covers
// the category-scoped product query the REST API does not expose cleanly.
type GraphQLClient struct {
	endpoint string
	client   *http.Client
}

// GraphQLClientDeps wires the dependencies for a GraphQL catalog client.
type GraphQLClientDeps struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewGraphQLClient constructs a GraphQL catalog client.
func NewGraphQLClient(deps GraphQLClientDeps) (*GraphQLClient, error) {
	endpoint := strings.TrimSpace(deps.Endpoint)
	if endpoint == "" {
		return nil, errors.New("catalog: graphql endpoint is required")
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GraphQLClient{endpoint: endpoint, client: client}, nil
}

const productsByCategoryQuery = `query ProductsByCategory($category: String!, $first: Int!) {
  products(first: $first, where: {category: $category, status: "publish"}) {
    nodes {
      databaseId
      name
      slug
      shortDescription
      image { sourceUrl }
      ... on SimpleProduct { price(format: RAW) regularPrice(format: RAW) }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type productsByCategoryResponse struct {
	Data struct {
		Products struct {
			Nodes []struct {
				DatabaseID       int64  `json:"databaseId"`
				Name             string `json:"name"`
				Slug             string `json:"slug"`
				Price            string `json:"price"`
				RegularPrice     string `json:"regularPrice"`
				ShortDescription string `json:"shortDescription"`
				Image            struct {
					SourceURL string `json:"sourceUrl"`
				} `json:"image"`
			} `json:"nodes"`
		} `json:"products"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// ProductsByCategory fetches all published products in one category.
func (c *GraphQLClient) ProductsByCategory(ctx context.Context, category string, first int) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, errors.New("catalog: category is required")
	}
	if first <= 0 {
		first = 100
	}

	var resp productsByCategoryResponse
	if err := c.query(ctx, productsByCategoryQuery, map[string]any{
		"category": category,
		"first":    first,
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBackendResponse, resp.Errors[0].Message)
	}

	nodes := resp.Data.Products.Nodes
	products := make([]domain.Product, 0, len(nodes))
	for _, n := range nodes {
		price, err := ParsePrice(n.Price)
		if err != nil {
			return nil, err
		}
		regular, err := ParsePrice(n.RegularPrice)
		if err != nil {
			return nil, err
		}
		products = append(products, domain.Product{
			ID:               strconv.FormatInt(n.DatabaseID, 10),
			Name:             n.Name,
			Slug:             n.Slug,
			Price:            price,
			RegularPrice:     regular,
			ShortDescription: n.ShortDescription,
			ImageURL:         n.Image.SourceURL,
			Categories:       []string{category},
		})
	}
	return products, nil
}

func (c *GraphQLClient) query(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("catalog: encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("catalog: build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: graphql status %d", ErrBackendResponse, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode graphql response: %v", ErrBackendResponse, err)
	}
	return nil
}
