package catalog

import (
	"testing"

	domain "github.com/shamanicca/storefront/internal/domain"
)

func TestRequiresSizing(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Obsidian Moon Tee", true},
		{"Ritual Hoodie", true},
		{"Hexen Sweater", true},
		{"Sigil iPhone Case", true},
		{"SIGIL IPHONE CASE", true},
		{"Pentagram Pendant", false},
		{"Tarot Deck", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := RequiresSizing(tc.name); got != tc.want {
			t.Errorf("RequiresSizing(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSizesFor(t *testing.T) {
	sized := SizesFor(domain.Product{Name: "Obsidian Moon Tee"})
	want := []string{"S", "M", "L", "XL"}
	if len(sized) != len(want) {
		t.Fatalf("sizes = %v, want %v", sized, want)
	}
	for i := range want {
		if sized[i] != want[i] {
			t.Fatalf("sizes = %v, want %v", sized, want)
		}
	}

	if got := SizesFor(domain.Product{Name: "Tarot Deck"}); got != nil {
		t.Fatalf("expected nil sizes for one-size product, got %v", got)
	}

	sized[0] = "XS"
	if again := SizesFor(domain.Product{Name: "Obsidian Moon Tee"}); again[0] != "S" {
		t.Fatal("SizesFor must return a fresh slice")
	}
}
