package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shamanicca/storefront/internal/cms"
	domain "github.com/shamanicca/storefront/internal/domain"
	"github.com/shamanicca/storefront/internal/platform/httpx"
	"github.com/shamanicca/storefront/internal/platform/pagination"
)

const relatedPostCount = 6

type articleDetailPayload struct {
	Article domain.Article   `json:"article"`
	Related []domain.Article `json:"related,omitempty"`
}

// BlogHandlers exposes the blog read endpoints.
type BlogHandlers struct {
	content  *cms.Service
	pageOpts pagination.Options
}

// NewBlogHandlers constructs the blog handlers.
func NewBlogHandlers(content *cms.Service, pageOpts pagination.Options) *BlogHandlers {
	if pageOpts.DefaultPageSize <= 0 {
		pageOpts.DefaultPageSize = 9
	}
	return &BlogHandlers{content: content, pageOpts: pageOpts}
}

// Routes wires the /blog endpoints onto the provided router.
func (h *BlogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/posts", h.listPosts)
	r.Get("/posts/{slug}", h.getPost)
	r.Get("/categories", h.listCategories)
}

func (h *BlogHandlers) listPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		writeContentUnavailable(ctx, w)
		return
	}

	params, err := pagination.FromRequest(r, h.pageOpts)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	listing, err := h.content.ListArticles(ctx, params, r.URL.Query().Get("category"))
	if err != nil {
		writeContentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, listing)
}

func (h *BlogHandlers) getPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		writeContentUnavailable(ctx, w)
		return
	}

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	article, err := h.content.ArticleBySlug(ctx, slug)
	if err != nil {
		writeContentError(ctx, w, err)
		return
	}

	related, err := h.content.RelatedArticles(ctx, article, relatedPostCount)
	if err != nil {
		// The article itself loaded; ship it without the rail.
		related = nil
	}
	writeJSONResponse(w, http.StatusOK, articleDetailPayload{Article: article, Related: related})
}

func (h *BlogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.content == nil {
		writeContentUnavailable(ctx, w)
		return
	}

	categories, err := h.content.Categories(ctx)
	if err != nil {
		writeContentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"categories": categories})
}

func writeContentUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("content_unavailable", "content service is unavailable", http.StatusServiceUnavailable))
}

func writeContentError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cms.ErrArticleNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("article_not_found", "article not found", http.StatusNotFound))
	case errors.Is(err, cms.ErrRemoteUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("content_backend_unavailable", "content backend unavailable", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to load content", http.StatusInternalServerError))
	}
}
