// Package nav serves the storefront navigation tree and derives view state
// from it: active trails for the current path, breadcrumbs, and keyword-based
// subcategory suggestions for products.
package nav

import (
	"sort"
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// DefaultTree is the site navigation. Subcategory links point at the parent
// collection route; there are no nested shop routes yet.
func DefaultTree() []domain.NavItem {
	return []domain.NavItem{
		{
			ID: "men", Label: "Men", Href: "/shop/men", Order: 1,
			Children: []domain.NavItem{
				{ID: "men-tshirts", Label: "T-Shirts", Href: "/shop/men"},
				{ID: "men-hoodies", Label: "Hoodies", Href: "/shop/men"},
				{ID: "men-sweatshirts", Label: "Sweatshirts", Href: "/shop/men"},
				{ID: "men-jackets", Label: "Jackets", Href: "/shop/men"},
			},
		},
		{
			ID: "women", Label: "Women", Href: "/shop/women", Order: 2,
			Children: []domain.NavItem{
				{ID: "women-tshirts", Label: "T-Shirts", Href: "/shop/women"},
				{ID: "women-hoodies", Label: "Hoodies", Href: "/shop/women"},
				{ID: "women-sweatshirts", Label: "Sweatshirts", Href: "/shop/women"},
				{ID: "women-jackets", Label: "Jackets", Href: "/shop/women"},
			},
		},
		{
			ID: "accessories", Label: "Accessories", Href: "/shop/accessories", Order: 3,
			Children: []domain.NavItem{
				{ID: "acc-caps", Label: "Caps", Href: "/shop/accessories"},
				{ID: "acc-beanies", Label: "Beanies", Href: "/shop/accessories"},
				{ID: "acc-socks", Label: "Socks", Href: "/shop/accessories"},
				{ID: "acc-bags", Label: "Bags", Href: "/shop/accessories"},
				{ID: "acc-phonecases", Label: "Phone Cases", Href: "/shop/accessories"},
			},
		},
		{
			ID: "mystical-home", Label: "Mystical Home", Href: "/shop/mystical-home", Order: 4,
			Children: []domain.NavItem{
				{ID: "altar-mugs", Label: "Mugs", Href: "/shop/mystical-home"},
				{ID: "altar-waterbottles", Label: "Water Bottles", Href: "/shop/mystical-home"},
				{ID: "altar-wallart", Label: "Wall Art", Href: "/shop/mystical-home"},
				{ID: "altar-stickers", Label: "Stickers", Href: "/shop/mystical-home"},
				{ID: "altar-tapestries", Label: "Altar Tapestries", Href: "/shop/mystical-home"},
				{ID: "mystic-talismans", Label: "Talismans", Href: "/shop/mystical-home"},
				{ID: "mystic-candles", Label: "Candles", Href: "/shop/mystical-home"},
				{ID: "mystic-crystals", Label: "Crystals", Href: "/shop/mystical-home"},
			},
		},
		{ID: "bestsellers", Label: "Best Sellers", Href: "/shop/best-sellers", Order: 5},
		{ID: "blog", Label: "Blog", Href: "/blog", Order: 6},
		{ID: "about", Label: "About", Href: "/about", Order: 7},
	}
}

// Service answers navigation queries over a fixed tree.
type Service struct {
	tree []domain.NavItem
}

// NewService constructs a navigation service. A nil tree uses DefaultTree.
func NewService(tree []domain.NavItem) *Service {
	if tree == nil {
		tree = DefaultTree()
	}
	sorted := make([]domain.NavItem, len(tree))
	copy(sorted, tree)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return &Service{tree: sorted}
}

// Tree returns the navigation items in display order.
func (s *Service) Tree() []domain.NavItem {
	out := make([]domain.NavItem, len(s.tree))
	copy(out, s.tree)
	return out
}

// ViewItem is a navigation node annotated with active state for rendering.
type ViewItem struct {
	domain.NavItem
	Active   bool       `json:"active"`
	Children []ViewItem `json:"children,omitempty"`
}

// Build annotates the tree for the current request path. A top-level item is
// active when the path equals its href or sits beneath it.
func (s *Service) Build(currentPath string) []ViewItem {
	currentPath = normalizePath(currentPath)

	out := make([]ViewItem, 0, len(s.tree))
	for _, item := range s.tree {
		view := ViewItem{NavItem: item, Active: pathMatches(currentPath, item.Href)}
		view.NavItem.Children = nil
		for _, child := range item.Children {
			view.Children = append(view.Children, ViewItem{
				NavItem: child,
				Active:  view.Active && pathMatches(currentPath, child.Href),
			})
		}
		out = append(out, view)
	}
	return out
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// Breadcrumbs derives the trail for the current path: Home, then the matching
// top-level collection, then the terminal label when provided. The terminal
// crumb carries no href.
func (s *Service) Breadcrumbs(currentPath, terminal string) []Crumb {
	currentPath = normalizePath(currentPath)
	crumbs := []Crumb{{Label: "Home", Href: "/"}}

	for _, item := range s.tree {
		if item.Href != "/" && pathMatches(currentPath, item.Href) {
			crumbs = append(crumbs, Crumb{Label: item.Label, Href: item.Href})
			break
		}
	}

	if terminal = strings.TrimSpace(terminal); terminal != "" {
		crumbs = append(crumbs, Crumb{Label: terminal})
	}
	return crumbs
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func pathMatches(current, href string) bool {
	if href == "" {
		return false
	}
	href = normalizePath(href)
	return current == href || strings.HasPrefix(current, href+"/")
}
