package pagination

// PageItemKind discriminates the entries produced by Range.
type PageItemKind string

const (
	// KindPage marks an entry carrying a concrete page number.
	KindPage PageItemKind = "page"
	// KindEllipsis marks a collapsed run of pages.
	KindEllipsis PageItemKind = "ellipsis"
)

// PageItem is one entry of a rendered page-range: either a page number or an
// ellipsis placeholder. Items are produced transiently per listing response
// and never persisted.
type PageItem struct {
	Kind   PageItemKind `json:"kind"`
	Number int          `json:"number,omitempty"`
}

// Page constructs a numbered page item.
func Page(n int) PageItem { return PageItem{Kind: KindPage, Number: n} }

// Ellipsis constructs an ellipsis marker.
func Ellipsis() PageItem { return PageItem{Kind: KindEllipsis} }

// TotalPages computes the page count for totalItems at the given pageSize,
// never less than one. A non-positive pageSize is treated as one item per page.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 {
		pageSize = 1
	}
	if totalItems <= 0 {
		return 1
	}
	pages := (totalItems + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage forces page into [1, totalPages]. Out-of-range values are never an
// error; callers always receive a usable page number.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Range computes the ordered sequence of page buttons to render for a listing:
// boundaryCount pages anchored at each end, a window of siblingCount pages on
// each side of the current page, and ellipsis markers collapsing the gaps.
// A gap of exactly one page emits that page directly instead of an ellipsis.
// All inputs are clamped rather than rejected; the result is never empty.
func Range(totalItems, pageSize, currentPage, siblingCount, boundaryCount int) []PageItem {
	totalPages := TotalPages(totalItems, pageSize)
	return RangePages(totalPages, currentPage, siblingCount, boundaryCount)
}

// RangePages is Range for callers that already know the page count.
func RangePages(totalPages, currentPage, siblingCount, boundaryCount int) []PageItem {
	if totalPages < 1 {
		totalPages = 1
	}
	if siblingCount < 0 {
		siblingCount = 0
	}
	if boundaryCount < 0 {
		boundaryCount = 0
	}
	current := ClampPage(currentPage, totalPages)

	if totalPages <= 1 {
		return []PageItem{Page(1)}
	}

	startPages := pageSpan(1, min(boundaryCount, totalPages))
	endPages := pageSpan(max(totalPages-boundaryCount+1, boundaryCount+1), totalPages)

	// Window bounds clamped so the siblings never overlap the boundary anchors.
	leftSiblingStart := max(
		min(current-siblingCount, totalPages-boundaryCount-siblingCount*2-1),
		boundaryCount+2,
	)
	rightSiblingLimit := totalPages - 1
	if len(endPages) > 0 {
		rightSiblingLimit = endPages[0] - 2
	}
	rightSiblingEnd := min(
		max(current+siblingCount, boundaryCount+siblingCount*2+2),
		rightSiblingLimit,
	)

	items := make([]PageItem, 0, totalPages)
	for _, p := range startPages {
		items = append(items, Page(p))
	}

	// Left gap: ellipsis for a run, the page itself for a gap of one.
	if leftSiblingStart > boundaryCount+2 {
		items = append(items, Ellipsis())
	} else if boundaryCount+1 < totalPages-boundaryCount {
		items = append(items, Page(boundaryCount+1))
	}

	for p := leftSiblingStart; p <= rightSiblingEnd; p++ {
		items = append(items, Page(p))
	}

	// Right gap, independently of the left side.
	if rightSiblingEnd < totalPages-boundaryCount-1 {
		items = append(items, Ellipsis())
	} else if totalPages-boundaryCount > boundaryCount {
		items = append(items, Page(totalPages-boundaryCount))
	}

	for _, p := range endPages {
		items = append(items, Page(p))
	}

	return dedupeItems(items)
}

// dedupeItems drops repeated page numbers keeping first-seen order and
// collapses consecutive ellipsis markers into one.
func dedupeItems(items []PageItem) []PageItem {
	seen := make(map[int]struct{}, len(items))
	out := make([]PageItem, 0, len(items))
	for _, item := range items {
		if item.Kind == KindEllipsis {
			if len(out) > 0 && out[len(out)-1].Kind == KindEllipsis {
				continue
			}
			out = append(out, item)
			continue
		}
		if _, ok := seen[item.Number]; ok {
			continue
		}
		seen[item.Number] = struct{}{}
		out = append(out, item)
	}
	return out
}

func pageSpan(start, end int) []int {
	if end < start {
		return nil
	}
	out := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
