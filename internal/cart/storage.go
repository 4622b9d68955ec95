package cart

import (
	"context"
	"encoding/json"
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// ReadStatus classifies the outcome of a storage read so callers and tests can
// distinguish a genuinely empty cart from a failed or corrupt read. All three
// states hydrate as an empty cart; the status exists for observability.
type ReadStatus string

const (
	// StatusOK indicates the payload decoded into a (possibly empty) item list.
	StatusOK ReadStatus = "ok"
	// StatusEmpty indicates no payload exists for the key.
	StatusEmpty ReadStatus = "empty"
	// StatusCorrupt indicates the payload existed but could not be decoded.
	StatusCorrupt ReadStatus = "corrupt"
)

// ReadResult is the typed outcome of Storage.Read.
type ReadResult struct {
	Status ReadStatus
	Items  []domain.CartItem
	Err    error
}

// Storage persists the full cart item collection under a fixed namespaced key.
// Implementations never propagate read failures as errors; they report them
// through ReadResult so the store can fail open.
type Storage interface {
	Read(ctx context.Context) ReadResult
	Write(ctx context.Context, items []domain.CartItem) error
}

// DecodeItems parses a stored JSON payload into cart items. A payload that is
// not a JSON array reports StatusCorrupt; decoded items are normalised so the
// store's invariants hold even for legacy or partial shapes.
func DecodeItems(raw []byte) ReadResult {
	if len(raw) == 0 {
		return ReadResult{Status: StatusEmpty}
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return ReadResult{Status: StatusCorrupt, Err: err}
	}

	return ReadResult{Status: StatusOK, Items: NormaliseItems(items)}
}

// NormaliseItems drops unusable lines and repairs invariant violations:
// quantities are floored at one, keys are rederived from the product and
// options, and duplicate keys collapse into the first line (summing
// quantities) while preserving first-seen order.
func NormaliseItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		productID := strings.TrimSpace(item.Product.ID)
		if productID == "" {
			continue
		}
		item.Product.ID = productID
		item.Key = domain.CartItemKey(productID, item.Options.Size)
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if at, ok := index[item.Key]; ok {
			out[at].Quantity += item.Quantity
			continue
		}
		index[item.Key] = len(out)
		out = append(out, item)
	}
	return out
}
