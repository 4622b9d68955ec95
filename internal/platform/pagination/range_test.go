package pagination

import (
	"fmt"
	"testing"
)

func itemsEqual(a, b []PageItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind {
			return false
		}
		if a[i].Kind == KindPage && a[i].Number != b[i].Number {
			return false
		}
	}
	return true
}

func formatItems(items []PageItem) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += " "
		}
		if item.Kind == KindEllipsis {
			out += "..."
		} else {
			out += fmt.Sprintf("%d", item.Number)
		}
	}
	return out
}

func TestRangePagesKnownLayouts(t *testing.T) {
	cases := []struct {
		name          string
		totalPages    int
		currentPage   int
		siblingCount  int
		boundaryCount int
		want          []PageItem
	}{
		{
			name:       "middle of ten pages",
			totalPages: 10, currentPage: 5, siblingCount: 1, boundaryCount: 1,
			want: []PageItem{Page(1), Ellipsis(), Page(4), Page(5), Page(6), Ellipsis(), Page(10)},
		},
		{
			name:       "five pages fit without ellipsis",
			totalPages: 5, currentPage: 1, siblingCount: 1, boundaryCount: 1,
			want: []PageItem{Page(1), Page(2), Page(3), Page(4), Page(5)},
		},
		{
			name:       "first page of ten",
			totalPages: 10, currentPage: 1, siblingCount: 1, boundaryCount: 1,
			want: []PageItem{Page(1), Page(2), Page(3), Page(4), Page(5), Ellipsis(), Page(10)},
		},
		{
			name:       "last page of ten",
			totalPages: 10, currentPage: 10, siblingCount: 1, boundaryCount: 1,
			want: []PageItem{Page(1), Ellipsis(), Page(6), Page(7), Page(8), Page(9), Page(10)},
		},
		{
			name:       "gap of one collapses to page not ellipsis",
			totalPages: 8, currentPage: 4, siblingCount: 1, boundaryCount: 1,
			want: []PageItem{Page(1), Page(2), Page(3), Page(4), Page(5), Ellipsis(), Page(8)},
		},
		{
			name:       "single page",
			totalPages: 1, currentPage: 1, siblingCount: 1, boundaryCount: 1,
			want: []PageItem{Page(1)},
		},
		{
			name:       "two pages",
			totalPages: 2, currentPage: 2, siblingCount: 0, boundaryCount: 0,
			want: []PageItem{Page(1), Page(2)},
		},
		{
			name:       "wide boundaries swallow everything",
			totalPages: 6, currentPage: 3, siblingCount: 2, boundaryCount: 2,
			want: []PageItem{Page(1), Page(2), Page(3), Page(4), Page(5), Page(6)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RangePages(tc.totalPages, tc.currentPage, tc.siblingCount, tc.boundaryCount)
			if !itemsEqual(got, tc.want) {
				t.Fatalf("unexpected range\n got: %s\nwant: %s", formatItems(got), formatItems(tc.want))
			}
		})
	}
}

func TestRangeDerivesTotalPages(t *testing.T) {
	// 95 items at 10 per page is 10 pages.
	got := Range(95, 10, 5, 1, 1)
	want := []PageItem{Page(1), Ellipsis(), Page(4), Page(5), Page(6), Ellipsis(), Page(10)}
	if !itemsEqual(got, want) {
		t.Fatalf("unexpected range: %s", formatItems(got))
	}
}

func TestRangeZeroItemsSinglePage(t *testing.T) {
	got := Range(0, 10, 1, 1, 1)
	if !itemsEqual(got, []PageItem{Page(1)}) {
		t.Fatalf("expected single page for empty listing, got %s", formatItems(got))
	}
}

func TestRangeClampsCurrentPage(t *testing.T) {
	low := RangePages(10, -5, 1, 1)
	first := RangePages(10, 1, 1, 1)
	if !itemsEqual(low, first) {
		t.Fatalf("page -5 should behave as page 1\n got: %s\nwant: %s", formatItems(low), formatItems(first))
	}

	high := RangePages(10, 1_000_000, 1, 1)
	last := RangePages(10, 10, 1, 1)
	if !itemsEqual(high, last) {
		t.Fatalf("page 1e6 should behave as page 10\n got: %s\nwant: %s", formatItems(high), formatItems(last))
	}
}

func TestRangeClampsNegativeCounts(t *testing.T) {
	got := RangePages(10, 5, -2, -3)
	want := RangePages(10, 5, 0, 0)
	if !itemsEqual(got, want) {
		t.Fatalf("negative counts should clamp to zero\n got: %s\nwant: %s", formatItems(got), formatItems(want))
	}
}

// checkRangeInvariants asserts the structural properties every produced range
// must satisfy: non-empty, distinct page count bounded by totalPages, strictly
// increasing page numbers, and no adjacent ellipsis markers.
func checkRangeInvariants(t *testing.T, totalPages int, items []PageItem) {
	t.Helper()
	if len(items) == 0 {
		t.Fatal("range must never be empty")
	}
	lastPage := 0
	pages := 0
	for i, item := range items {
		switch item.Kind {
		case KindPage:
			pages++
			if item.Number < 1 || item.Number > totalPages {
				t.Fatalf("page %d out of bounds [1, %d] in %s", item.Number, totalPages, formatItems(items))
			}
			if item.Number <= lastPage {
				t.Fatalf("page numbers not strictly increasing in %s", formatItems(items))
			}
			lastPage = item.Number
		case KindEllipsis:
			if i > 0 && items[i-1].Kind == KindEllipsis {
				t.Fatalf("consecutive ellipsis markers in %s", formatItems(items))
			}
		default:
			t.Fatalf("unexpected item kind %q", item.Kind)
		}
	}
	if pages > totalPages {
		t.Fatalf("emitted %d distinct pages for %d total pages", pages, totalPages)
	}
}

func TestRangeInvariantSweep(t *testing.T) {
	for totalPages := 1; totalPages <= 30; totalPages++ {
		for current := -2; current <= totalPages+2; current++ {
			for sibling := 0; sibling <= 3; sibling++ {
				for boundary := 0; boundary <= 3; boundary++ {
					items := RangePages(totalPages, current, sibling, boundary)
					checkRangeInvariants(t, totalPages, items)
				}
			}
		}
	}
}

// The gap-collapsing rule is asymmetric in some boundary configurations, so
// small page counts are exercised against both extremes on each side.
func TestRangeSmallTotalsNoDuplication(t *testing.T) {
	for totalPages := 3; totalPages <= 6; totalPages++ {
		for current := 1; current <= totalPages; current++ {
			for _, sibling := range []int{0, 3} {
				for _, boundary := range []int{0, 3} {
					items := RangePages(totalPages, current, sibling, boundary)
					checkRangeInvariants(t, totalPages, items)
					if current >= 1 && current <= totalPages {
						found := false
						for _, item := range items {
							if item.Kind == KindPage && item.Number == current {
								found = true
								break
							}
						}
						if !found && sibling > 0 {
							t.Fatalf("current page %d missing from %s (totalPages=%d sibling=%d boundary=%d)",
								current, formatItems(items), totalPages, sibling, boundary)
						}
					}
				}
			}
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		totalItems int
		pageSize   int
		want       int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 10, 10},
		{5, 0, 5},
		{-3, 10, 1},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.totalItems, tc.pageSize); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tc.totalItems, tc.pageSize, got, tc.want)
		}
	}
}
