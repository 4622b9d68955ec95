package nav

import (
	"sort"
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// subcategoryKeywords identifies subcategories by product wording. Keyed by
// navigation child ID; tune as the catalog evolves.
var subcategoryKeywords = map[string][]string{
	"men-tshirts":     {"tee", "t-shirt", "tshirt", "shirt", "pocket tee"},
	"men-hoodies":     {"hoodie", "hooded"},
	"men-sweatshirts": {"sweatshirt", "crewneck", "sweater"},
	"men-jackets":     {"jacket", "cloak", "coat", "cardigan", "parka"},

	"women-tshirts":     {"tee", "t-shirt", "tshirt", "shirt", "pocket tee"},
	"women-hoodies":     {"hoodie", "hooded"},
	"women-sweatshirts": {"sweatshirt", "crewneck", "sweater"},
	"women-jackets":     {"jacket", "cloak", "coat", "cardigan", "parka"},

	"acc-caps":       {"cap", "trucker"},
	"acc-beanies":    {"beanie", "knit cap", "toque", "tuque"},
	"acc-socks":      {"sock", "socks"},
	"acc-bags":       {"bag", "pack", "backpack", "tote"},
	"acc-phonecases": {"phone case", "phone-case", "case"},

	"altar-mugs":         {"mug", "cup", "chalice", "goblet"},
	"altar-waterbottles": {"water bottle", "bottle", "flask"},
	"altar-wallart":      {"wall art", "poster", "print", "canvas"},
	"altar-stickers":     {"sticker", "decal"},
	"altar-tapestries":   {"tapestry"},
	"mystic-talismans":   {"talisman", "pendant", "necklace", "amulet", "charm"},
	"mystic-candles":     {"candle"},
	"mystic-crystals":    {"crystal", "quartz", "gem", "stone"},
}

// Suggestion is a likely subcategory for a product, with parent context.
type Suggestion struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Href        string  `json:"href"`
	ParentID    string  `json:"parentId"`
	ParentLabel string  `json:"parentLabel"`
	Score       float64 `json:"score"`
}

// SuggestSubcategories infers up to max subcategories for a product by
// keyword-matching its name and slug. Subcategories whose parent collection
// already appears on the product get a small boost. Results sort by score,
// then label for stability.
func (s *Service) SuggestSubcategories(product domain.Product, max int) []Suggestion {
	if max <= 0 {
		return nil
	}

	hay := strings.ToLower(product.Name + " " + product.Slug)
	parentTags := map[string]bool{}
	for _, c := range product.Categories {
		parentTags[strings.ToLower(strings.TrimSpace(c))] = true
	}

	var scored []Suggestion
	for _, parent := range s.tree {
		parentBoost := parentTags[strings.ToLower(parent.Label)] || parentTags[strings.ToLower(parent.ID)]
		for _, child := range parent.Children {
			var score float64
			for _, kw := range subcategoryKeywords[child.ID] {
				if strings.Contains(hay, kw) {
					score++
				}
			}
			if score > 0 && parentBoost {
				score += 0.5
			}
			if score > 0 {
				scored = append(scored, Suggestion{
					ID:          child.ID,
					Label:       child.Label,
					Href:        child.Href,
					ParentID:    parent.ID,
					ParentLabel: parent.Label,
					Score:       score,
				})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Label < scored[j].Label
	})

	if len(scored) > max {
		scored = scored[:max]
	}
	return scored
}
