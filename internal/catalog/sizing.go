package catalog

import (
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// sizedProductKeywords marks the product types that come in multiple sizes.
// Everything else is one size per item.
var sizedProductKeywords = []string{"tee", "hoodie", "sweater", "iphone case"}

// standardSizeRun is the size run offered for sized products.
var standardSizeRun = []string{"S", "M", "L", "XL"}

// RequiresSizing reports whether a product with the given name is sold in
// multiple sizes.
func RequiresSizing(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range sizedProductKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// SizesFor returns the selectable sizes for the product, or nil when the
// product is one-size.
func SizesFor(product domain.Product) []string {
	if !RequiresSizing(product.Name) {
		return nil
	}
	sizes := make([]string, len(standardSizeRun))
	copy(sizes, standardSizeRun)
	return sizes
}
