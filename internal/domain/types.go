package domain

import (
	"strings"
	"time"
)

// CartProduct is the immutable product snapshot copied into the cart at
// add-time. It is never a live reference to catalog state; later catalog
// changes do not affect lines already in a cart.
type CartProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// CartItemOptions carries the variant selection recorded on a cart line.
type CartItemOptions struct {
	Size string `json:"size,omitempty"`
}

// CartItem is a single line in the cart. Key is derived from the product ID
// and the size option so identical product+variant combinations collapse
// into one line.
type CartItem struct {
	Key      string          `json:"key"`
	Product  CartProduct     `json:"product"`
	Quantity int             `json:"qty"`
	Options  CartItemOptions `json:"options"`
}

// CartItemKey derives the deterministic composite key for a product and its
// selected options. The size component is the empty string when absent.
func CartItemKey(productID, size string) string {
	return strings.TrimSpace(productID) + ":" + strings.TrimSpace(size)
}

// LineTotal returns the line subtotal in minor currency units.
func (i CartItem) LineTotal() int64 {
	if i.Quantity <= 0 || i.Product.Price <= 0 {
		return 0
	}
	return i.Product.Price * int64(i.Quantity)
}

// Product represents a catalog product sourced from the commerce backend.
// Prices are minor currency units; RegularPrice captures the pre-sale price
// when the backend reports one.
type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Price            int64    `json:"price"`
	RegularPrice     int64    `json:"regularPrice,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Categories       []string `json:"categories,omitempty"`
}

// OnSale reports whether the product carries a discounted price.
func (p Product) OnSale() bool {
	return p.RegularPrice > 0 && p.Price > 0 && p.Price < p.RegularPrice
}

// Category describes a product category from the commerce backend.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// SyncProduct is a print-on-demand product summary from the fulfilment
// provider. It carries no pricing; pricing lives on the commerce side.
type SyncProduct struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Article is a blog post supplied by the CMS.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary,omitempty"`
	Body        string    `json:"body,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ArticleCategory groups blog posts.
type ArticleCategory struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NavItem is a navigation tree node. Top-level items are collections with
// optional children; order controls display position.
type NavItem struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Href     string    `json:"href"`
	Order    int       `json:"-"`
	Children []NavItem `json:"children,omitempty"`
}
