package cms

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "github.com/shamanicca/storefront/internal/domain"
	"github.com/shamanicca/storefront/internal/platform/pagination"
)

var (
	// ErrArticleNotFound is returned when no article matches the slug.
	ErrArticleNotFound = errors.New("cms: article not found")
	// ErrNoContentSource indicates neither a remote CMS nor local content is
	// configured.
	ErrNoContentSource = errors.New("cms: no content source is configured")
)

// ListArticlesParams narrows an article listing.
type ListArticlesParams struct {
	Page     int
	PageSize int
	Category string
}

// ArticlePage is one page of articles plus the total count.
type ArticlePage struct {
	Articles   []domain.Article
	TotalItems int
}

// Repository is the content source contract shared by the remote CMS client
// and the local markdown store.
type Repository interface {
	ListArticles(ctx context.Context, params ListArticlesParams) (ArticlePage, error)
	ArticleBySlug(ctx context.Context, slug string) (domain.Article, error)
	ListCategories(ctx context.Context) ([]domain.ArticleCategory, error)
}

// ServiceDeps bundles constructor inputs for the content service.
type ServiceDeps struct {
	Remote Repository
	Local  Repository
	Logger *zap.Logger
}

// Service serves blog content, preferring the remote CMS and falling back to
// the local markdown store when the remote is unconfigured or unreachable.
type Service struct {
	remote Repository
	local  Repository
	logger *zap.Logger
}

// NewService constructs the content service.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Remote == nil && deps.Local == nil {
		return nil, ErrNoContentSource
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{remote: deps.Remote, local: deps.Local, logger: logger}, nil
}

// ArticleListing is one page of articles with pagination controls.
type ArticleListing struct {
	Articles   []domain.Article      `json:"articles"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalItems int                   `json:"totalItems"`
	TotalPages int                   `json:"totalPages"`
	Pages      []pagination.PageItem `json:"pages"`
}

// ListArticles returns one page of articles with the derived page range.
func (s *Service) ListArticles(ctx context.Context, params pagination.Params, category string) (ArticleListing, error) {
	params = pagination.Must(params)

	page, err := s.list(ctx, ListArticlesParams{
		Page:     params.Page,
		PageSize: params.PageSize,
		Category: category,
	})
	if err != nil {
		return ArticleListing{}, err
	}

	totalPages := pagination.TotalPages(page.TotalItems, params.PageSize)
	current := pagination.ClampPage(params.Page, totalPages)

	return ArticleListing{
		Articles:   page.Articles,
		Page:       current,
		PageSize:   params.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: totalPages,
		Pages:      pagination.RangePages(totalPages, current, params.SiblingCount, params.BoundaryCount),
	}, nil
}

// ArticleBySlug resolves one article by slug.
func (s *Service) ArticleBySlug(ctx context.Context, slug string) (domain.Article, error) {
	if s.remote != nil {
		article, err := s.remote.ArticleBySlug(ctx, slug)
		if err == nil || errors.Is(err, ErrArticleNotFound) || s.local == nil {
			return article, err
		}
		s.logger.Warn("remote cms article lookup failed, trying local content", zap.Error(err))
	}
	if s.local == nil {
		return domain.Article{}, ErrNoContentSource
	}
	return s.local.ArticleBySlug(ctx, slug)
}

// RelatedArticles picks up to max articles sharing the subject article's
// category, excluding the article itself. When the category has no other
// posts the newest articles overall stand in.
func (s *Service) RelatedArticles(ctx context.Context, article domain.Article, max int) ([]domain.Article, error) {
	if max < 1 {
		return nil, nil
	}

	var candidates []domain.Article
	if article.Category != "" {
		page, err := s.list(ctx, ListArticlesParams{Page: 1, PageSize: max + 1, Category: article.Category})
		if err != nil {
			return nil, err
		}
		candidates = page.Articles
	}
	if len(filterArticle(candidates, article.Slug)) == 0 {
		page, err := s.list(ctx, ListArticlesParams{Page: 1, PageSize: max + 1})
		if err != nil {
			return nil, err
		}
		candidates = page.Articles
	}

	related := filterArticle(candidates, article.Slug)
	if len(related) > max {
		related = related[:max]
	}
	return related, nil
}

func filterArticle(articles []domain.Article, slug string) []domain.Article {
	filtered := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.Slug == slug {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}

// Categories lists article categories.
func (s *Service) Categories(ctx context.Context) ([]domain.ArticleCategory, error) {
	if s.remote != nil {
		categories, err := s.remote.ListCategories(ctx)
		if err == nil || s.local == nil {
			return categories, err
		}
		s.logger.Warn("remote cms categories failed, trying local content", zap.Error(err))
	}
	if s.local == nil {
		return nil, ErrNoContentSource
	}
	return s.local.ListCategories(ctx)
}

func (s *Service) list(ctx context.Context, params ListArticlesParams) (ArticlePage, error) {
	if s.remote != nil {
		page, err := s.remote.ListArticles(ctx, params)
		if err == nil || s.local == nil {
			return page, err
		}
		s.logger.Warn("remote cms listing failed, trying local content", zap.Error(err))
	}
	if s.local == nil {
		return ArticlePage{}, ErrNoContentSource
	}
	return s.local.ListArticles(ctx, params)
}
