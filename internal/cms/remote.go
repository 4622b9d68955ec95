package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// ErrRemoteUnavailable wraps transport failures talking to the CMS.
var ErrRemoteUnavailable = errors.New("cms: remote unavailable")

// RemoteClient fetches blog content from the WPGraphQL endpoint.
type RemoteClient struct {
	endpoint string
	client   *http.Client
}

// RemoteClientDeps wires the dependencies for a remote CMS client.
type RemoteClientDeps struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewRemoteClient constructs a remote CMS client.
func NewRemoteClient(deps RemoteClientDeps) (*RemoteClient, error) {
	endpoint := strings.TrimSpace(deps.Endpoint)
	if endpoint == "" {
		return nil, errors.New("cms: endpoint is required")
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteClient{endpoint: endpoint, client: client}, nil
}

const listPostsQuery = `query ListPosts($first: Int!, $offset: Int!, $category: String) {
  posts(where: {offsetPagination: {size: $first, offset: $offset}, categoryName: $category, status: PUBLISH}) {
    pageInfo { offsetPagination { total } }
    nodes {
      databaseId
      title
      slug
      excerpt
      content
      date
      categories { nodes { name } }
      featuredImage { node { sourceUrl } }
    }
  }
}`

const postBySlugQuery = `query PostBySlug($slug: ID!) {
  post(id: $slug, idType: SLUG) {
    databaseId
    title
    slug
    excerpt
    content
    date
    categories { nodes { name } }
    featuredImage { node { sourceUrl } }
  }
}`

const listCategoriesQuery = `query ListCategories($first: Int!) {
  categories(first: $first, where: {hideEmpty: true}) {
    nodes { name slug count }
  }
}`

type postNode struct {
	DatabaseID int64  `json:"databaseId"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	Date       string `json:"date"`
	Categories struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"categories"`
	FeaturedImage struct {
		Node struct {
			SourceURL string `json:"sourceUrl"`
		} `json:"node"`
	} `json:"featuredImage"`
}

// ListArticles implements Repository.
func (c *RemoteClient) ListArticles(ctx context.Context, params ListArticlesParams) (ArticlePage, error) {
	size := params.PageSize
	if size <= 0 {
		size = 9
	}
	page := params.Page
	if page < 1 {
		page = 1
	}

	variables := map[string]any{
		"first":  size,
		"offset": (page - 1) * size,
	}
	if category := strings.TrimSpace(params.Category); category != "" {
		variables["category"] = category
	}

	var resp struct {
		Data struct {
			Posts struct {
				PageInfo struct {
					OffsetPagination struct {
						Total int `json:"total"`
					} `json:"offsetPagination"`
				} `json:"pageInfo"`
				Nodes []postNode `json:"nodes"`
			} `json:"posts"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := c.query(ctx, listPostsQuery, variables, &resp); err != nil {
		return ArticlePage{}, err
	}
	if len(resp.Errors) > 0 {
		return ArticlePage{}, fmt.Errorf("%w: %s", ErrRemoteUnavailable, resp.Errors[0].Message)
	}

	nodes := resp.Data.Posts.Nodes
	articles := make([]domain.Article, 0, len(nodes))
	for _, n := range nodes {
		articles = append(articles, n.toDomain())
	}
	return ArticlePage{
		Articles:   articles,
		TotalItems: resp.Data.Posts.PageInfo.OffsetPagination.Total,
	}, nil
}

// ArticleBySlug implements Repository.
func (c *RemoteClient) ArticleBySlug(ctx context.Context, slug string) (domain.Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Article{}, ErrArticleNotFound
	}

	var resp struct {
		Data struct {
			Post *postNode `json:"post"`
		} `json:"data"`
	}
	if err := c.query(ctx, postBySlugQuery, map[string]any{"slug": slug}, &resp); err != nil {
		return domain.Article{}, err
	}
	if resp.Data.Post == nil {
		return domain.Article{}, ErrArticleNotFound
	}
	return resp.Data.Post.toDomain(), nil
}

// ListCategories implements Repository.
func (c *RemoteClient) ListCategories(ctx context.Context) ([]domain.ArticleCategory, error) {
	var resp struct {
		Data struct {
			Categories struct {
				Nodes []struct {
					Name  string `json:"name"`
					Slug  string `json:"slug"`
					Count int    `json:"count"`
				} `json:"nodes"`
			} `json:"categories"`
		} `json:"data"`
	}
	if err := c.query(ctx, listCategoriesQuery, map[string]any{"first": 100}, &resp); err != nil {
		return nil, err
	}

	nodes := resp.Data.Categories.Nodes
	categories := make([]domain.ArticleCategory, 0, len(nodes))
	for _, n := range nodes {
		categories = append(categories, domain.ArticleCategory{
			Slug:  n.Slug,
			Name:  n.Name,
			Count: n.Count,
		})
	}
	return categories, nil
}

func (c *RemoteClient) query(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("cms: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (n postNode) toDomain() domain.Article {
	article := domain.Article{
		ID:          fmt.Sprintf("%d", n.DatabaseID),
		Title:       n.Title,
		Slug:        n.Slug,
		Summary:     strings.TrimSpace(n.Excerpt),
		Body:        n.Content,
		ImageURL:    n.FeaturedImage.Node.SourceURL,
		PublishedAt: parseDate(n.Date),
	}
	if len(n.Categories.Nodes) > 0 {
		article.Category = n.Categories.Nodes[0].Name
	}
	return article
}
