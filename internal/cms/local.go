package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// LocalStore serves articles from a directory of markdown files with YAML
// front matter. It backs the blog when no remote CMS is configured and acts
// as the fallback content source in development.
type LocalStore struct {
	dir      string
	markdown goldmark.Markdown
	policy   *bluemonday.Policy

	mu       sync.Mutex
	articles []domain.Article
	loaded   bool
}

// NewLocalStore constructs a markdown-backed article store rooted at dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cms: content directory is required")
	}
	return &LocalStore{
		dir: dir,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
		),
		policy: bluemonday.UGCPolicy(),
	}, nil
}

type frontMatter struct {
	Title    string `yaml:"title"`
	Slug     string `yaml:"slug"`
	Summary  string `yaml:"summary"`
	Category string `yaml:"category"`
	Image    string `yaml:"image"`
	Date     string `yaml:"date"`
	Draft    bool   `yaml:"draft"`
}

// ListArticles returns published articles, newest first.
func (s *LocalStore) ListArticles(ctx context.Context, params ListArticlesParams) (ArticlePage, error) {
	articles, err := s.load()
	if err != nil {
		return ArticlePage{}, err
	}

	if category := strings.TrimSpace(params.Category); category != "" {
		filtered := make([]domain.Article, 0, len(articles))
		for _, a := range articles {
			if categorySlug(a.Category) == categorySlug(category) {
				filtered = append(filtered, a)
			}
		}
		articles = filtered
	}

	total := len(articles)
	page, size := params.Page, params.PageSize
	if page < 1 {
		page = 1
	}
	if size > 0 {
		start := (page - 1) * size
		if start > total {
			start = total
		}
		end := start + size
		if end > total {
			end = total
		}
		articles = articles[start:end]
	}
	return ArticlePage{Articles: articles, TotalItems: total}, nil
}

// ArticleBySlug resolves one article.
func (s *LocalStore) ArticleBySlug(ctx context.Context, slug string) (domain.Article, error) {
	articles, err := s.load()
	if err != nil {
		return domain.Article{}, err
	}
	slug = strings.TrimSpace(slug)
	for _, a := range articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return domain.Article{}, ErrArticleNotFound
}

// ListCategories derives categories from the loaded articles.
func (s *LocalStore) ListCategories(ctx context.Context) ([]domain.ArticleCategory, error) {
	articles, err := s.load()
	if err != nil {
		return nil, err
	}

	counts := map[string]*domain.ArticleCategory{}
	order := []string{}
	for _, a := range articles {
		if a.Category == "" {
			continue
		}
		slug := categorySlug(a.Category)
		if existing, ok := counts[slug]; ok {
			existing.Count++
			continue
		}
		counts[slug] = &domain.ArticleCategory{Slug: slug, Name: a.Category, Count: 1}
		order = append(order, slug)
	}
	sort.Strings(order)

	categories := make([]domain.ArticleCategory, 0, len(order))
	for _, slug := range order {
		categories = append(categories, *counts[slug])
	}
	return categories, nil
}

// load parses the content directory once and caches the result for the
// process lifetime. Content ships with the deployment; there is no hot
// reload.
func (s *LocalStore) load() ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.articles, nil
	}

	var articles []domain.Article
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		article, err := s.parseFile(path)
		if err != nil {
			return err
		}
		if article.Slug == "" {
			return nil
		}
		articles = append(articles, article)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cms: load content dir: %w", err)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	s.articles = articles
	s.loaded = true
	return s.articles, nil
}

func (s *LocalStore) parseFile(path string) (domain.Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Article{}, err
	}

	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return domain.Article{}, fmt.Errorf("cms: parse %s: %w", filepath.Base(path), err)
	}
	if meta.Draft {
		return domain.Article{}, nil
	}

	slug := strings.TrimSpace(meta.Slug)
	if slug == "" {
		slug = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	var rendered bytes.Buffer
	if err := s.markdown.Convert(body, &rendered); err != nil {
		return domain.Article{}, fmt.Errorf("cms: render %s: %w", filepath.Base(path), err)
	}

	published := parseDate(meta.Date)
	return domain.Article{
		ID:          slug,
		Title:       meta.Title,
		Slug:        slug,
		Summary:     meta.Summary,
		Body:        s.policy.Sanitize(rendered.String()),
		Category:    meta.Category,
		ImageURL:    meta.Image,
		PublishedAt: published,
	}, nil
}

func splitFrontMatter(raw []byte) (frontMatter, []byte, error) {
	var meta frontMatter
	trimmed := bytes.TrimLeft(raw, "\ufeff\n\r")
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return meta, raw, nil
	}

	rest := trimmed[3:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, nil, errors.New("unterminated front matter")
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, nil, err
	}

	body := rest[end+4:]
	if at := bytes.IndexByte(body, '\n'); at >= 0 {
		body = body[at+1:]
	} else {
		body = nil
	}
	return meta, body, nil
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func categorySlug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
