package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	domain "github.com/shamanicca/storefront/internal/domain"
)

type stubStorage struct {
	mu       sync.Mutex
	result   ReadResult
	writes   [][]domain.CartItem
	writeErr error
}

func (s *stubStorage) Read(ctx context.Context) ReadResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *stubStorage) Write(ctx context.Context, items []domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, items)
	return s.writeErr
}

func (s *stubStorage) lastWrite() ([]domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return nil, false
	}
	return s.writes[len(s.writes)-1], true
}

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	store, err := NewStore(StoreDeps{Storage: storage})
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

func product(id string, price int64) domain.CartProduct {
	return domain.CartProduct{ID: id, Name: "product " + id, Slug: id, Price: price}
}

func TestNewStoreRequiresStorage(t *testing.T) {
	if _, err := NewStore(StoreDeps{}); err == nil {
		t.Fatalf("expected error when storage is missing")
	}
}

func TestAddItemMergesOnMatchingKey(t *testing.T) {
	store := newTestStore(t, &stubStorage{})

	store.AddItem(product("p1", 100), 1, domain.CartItemOptions{Size: "M"})
	store.AddItem(product("p1", 100), 2, domain.CartItemOptions{Size: "M"})
	store.AddItem(product("p1", 100), 1, domain.CartItemOptions{Size: "L"})

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].Key != "p1:M" || items[0].Quantity != 3 {
		t.Fatalf("expected p1:M qty 3, got %s qty %d", items[0].Key, items[0].Quantity)
	}
	if items[1].Key != "p1:L" || items[1].Quantity != 1 {
		t.Fatalf("expected p1:L qty 1, got %s qty %d", items[1].Key, items[1].Quantity)
	}
}

func TestAddItemPreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t, &stubStorage{})

	store.AddItem(product("a", 10), 1, domain.CartItemOptions{})
	store.AddItem(product("b", 10), 1, domain.CartItemOptions{})
	store.AddItem(product("c", 10), 1, domain.CartItemOptions{})
	store.AddItem(product("a", 10), 1, domain.CartItemOptions{})

	items := store.Items()
	want := []string{"a:", "b:", "c:"}
	if len(items) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(items))
	}
	for i, key := range want {
		if items[i].Key != key {
			t.Fatalf("line %d: expected key %q, got %q", i, key, items[i].Key)
		}
	}
}

func TestAddItemFloorsQuantity(t *testing.T) {
	store := newTestStore(t, &stubStorage{})

	store.AddItem(product("p1", 100), 0, domain.CartItemOptions{})
	store.AddItem(product("p2", 100), -4, domain.CartItemOptions{})

	for _, item := range store.Items() {
		if item.Quantity != 1 {
			t.Fatalf("expected quantity floored to 1, got %d for %s", item.Quantity, item.Key)
		}
	}
}

func TestAddItemIgnoresEmptyProductID(t *testing.T) {
	store := newTestStore(t, &stubStorage{})

	store.AddItem(domain.CartProduct{ID: "  "}, 1, domain.CartItemOptions{})

	if got := len(store.Items()); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}
}

func TestUpdateQtyFloorsAndIgnoresAbsentKey(t *testing.T) {
	store := newTestStore(t, &stubStorage{})
	store.AddItem(product("p1", 100), 2, domain.CartItemOptions{Size: "S"})

	store.UpdateQty("p1:S", 0)
	if items := store.Items(); items[0].Quantity != 1 {
		t.Fatalf("expected quantity floored to 1, got %d", items[0].Quantity)
	}

	store.UpdateQty("p1:S", 7)
	if items := store.Items(); items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", items[0].Quantity)
	}

	store.UpdateQty("missing:key", 3)
	if got := len(store.Items()); got != 1 {
		t.Fatalf("update of absent key must not change lines, got %d", got)
	}
}

func TestRemoveItemAbsentKeyIsNoOp(t *testing.T) {
	store := newTestStore(t, &stubStorage{})
	store.AddItem(product("p1", 100), 1, domain.CartItemOptions{})

	store.RemoveItem("missing:key")
	if got := len(store.Items()); got != 1 {
		t.Fatalf("expected 1 line after removing absent key, got %d", got)
	}

	store.RemoveItem("p1:")
	if got := len(store.Items()); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}
}

func TestRemoveItemKeepsIndexConsistent(t *testing.T) {
	store := newTestStore(t, &stubStorage{})
	store.AddItem(product("a", 10), 1, domain.CartItemOptions{})
	store.AddItem(product("b", 10), 1, domain.CartItemOptions{})
	store.AddItem(product("c", 10), 1, domain.CartItemOptions{})

	store.RemoveItem("a:")
	store.AddItem(product("c", 10), 2, domain.CartItemOptions{})

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[1].Key != "c:" || items[1].Quantity != 3 {
		t.Fatalf("expected c: merged to qty 3, got %s qty %d", items[1].Key, items[1].Quantity)
	}
}

func TestDerivedTotals(t *testing.T) {
	store := newTestStore(t, &stubStorage{})
	store.AddItem(product("p1", 10), 2, domain.CartItemOptions{})
	store.AddItem(product("p2", 5), 3, domain.CartItemOptions{})

	if got := store.Count(); got != 5 {
		t.Fatalf("expected count 5, got %d", got)
	}
	if got := store.Subtotal(); got != 35 {
		t.Fatalf("expected subtotal 35, got %d", got)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	store := newTestStore(t, &stubStorage{})
	store.AddItem(product("p1", 100), 2, domain.CartItemOptions{})

	store.Clear()

	if got := len(store.Items()); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}
	if got := store.Count(); got != 0 {
		t.Fatalf("expected count 0, got %d", got)
	}
}

func TestHydrateRestoresItemsExactlyOnce(t *testing.T) {
	storage := &stubStorage{result: ReadResult{
		Status: StatusOK,
		Items: []domain.CartItem{
			{Key: "p1:M", Product: product("p1", 100), Quantity: 2, Options: domain.CartItemOptions{Size: "M"}},
		},
	}}
	store := newTestStore(t, storage)

	if store.Hydrated() {
		t.Fatalf("store must not report hydrated before Hydrate")
	}

	store.Hydrate(context.Background())
	if !store.Hydrated() {
		t.Fatalf("store must report hydrated after Hydrate")
	}

	storage.mu.Lock()
	storage.result.Items = append(storage.result.Items, domain.CartItem{
		Key: "p2:", Product: product("p2", 50), Quantity: 1,
	})
	storage.mu.Unlock()

	store.Hydrate(context.Background())
	if got := len(store.Items()); got != 1 {
		t.Fatalf("second Hydrate must be a no-op, got %d lines", got)
	}
}

func TestHydrateMergesPreHydrationItems(t *testing.T) {
	storage := &stubStorage{result: ReadResult{
		Status: StatusOK,
		Items: []domain.CartItem{
			{Key: "p1:M", Product: product("p1", 100), Quantity: 2, Options: domain.CartItemOptions{Size: "M"}},
			{Key: "p2:", Product: product("p2", 50), Quantity: 1},
		},
	}}
	store := newTestStore(t, storage)

	store.AddItem(product("p1", 100), 1, domain.CartItemOptions{Size: "M"})
	store.AddItem(product("p3", 25), 1, domain.CartItemOptions{})

	store.Hydrate(context.Background())

	items := store.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 lines after hydration, got %d", len(items))
	}
	if items[0].Key != "p1:M" || items[0].Quantity != 3 {
		t.Fatalf("expected restored p1:M merged to qty 3, got %s qty %d", items[0].Key, items[0].Quantity)
	}
	if items[1].Key != "p2:" {
		t.Fatalf("expected restored p2: second, got %s", items[1].Key)
	}
	if items[2].Key != "p3:" {
		t.Fatalf("expected pre-hydration p3: last, got %s", items[2].Key)
	}
}

func TestHydrateCorruptStorageFailsOpen(t *testing.T) {
	storage := &stubStorage{result: ReadResult{
		Status: StatusCorrupt,
		Err:    errors.New("unexpected end of JSON input"),
	}}
	store := newTestStore(t, storage)

	store.Hydrate(context.Background())

	if !store.Hydrated() {
		t.Fatalf("store must report hydrated even when storage is corrupt")
	}
	if got := len(store.Items()); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}

	store.AddItem(product("p1", 100), 1, domain.CartItemOptions{})
	if got := store.Count(); got != 1 {
		t.Fatalf("cart must stay usable after corrupt read, got count %d", got)
	}
}

func TestMutationsPersistLatestState(t *testing.T) {
	storage := &stubStorage{result: ReadResult{Status: StatusEmpty}}
	store := newTestStore(t, storage)
	store.Hydrate(context.Background())

	store.AddItem(product("p1", 100), 2, domain.CartItemOptions{Size: "M"})
	store.UpdateQty("p1:M", 5)
	store.Flush()

	written, ok := storage.lastWrite()
	if !ok {
		t.Fatalf("expected at least one storage write")
	}
	if len(written) != 1 || written[0].Quantity != 5 {
		t.Fatalf("expected last write to carry qty 5, got %+v", written)
	}
}

func TestWriteFailureDoesNotRevertState(t *testing.T) {
	storage := &stubStorage{writeErr: errors.New("disk full")}
	store := newTestStore(t, storage)

	store.AddItem(product("p1", 100), 2, domain.CartItemOptions{})
	store.Flush()

	if got := store.Count(); got != 2 {
		t.Fatalf("in-memory state must survive write failure, got count %d", got)
	}
}

func TestSubscribeNotifiesAndUnsubscribes(t *testing.T) {
	store := newTestStore(t, &stubStorage{})

	var got []Snapshot
	unsubscribe := store.Subscribe(func(s Snapshot) {
		got = append(got, s)
	})

	store.AddItem(product("p1", 10), 2, domain.CartItemOptions{})
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].Count != 2 || got[0].Subtotal != 20 {
		t.Fatalf("unexpected snapshot: count %d subtotal %d", got[0].Count, got[0].Subtotal)
	}

	unsubscribe()
	store.AddItem(product("p2", 10), 1, domain.CartItemOptions{})
	if len(got) != 1 {
		t.Fatalf("expected no notification after unsubscribe, got %d", len(got))
	}
}

func TestConcurrentMutations(t *testing.T) {
	store := newTestStore(t, &stubStorage{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				store.AddItem(product("p1", 10), 1, domain.CartItemOptions{Size: "M"})
			}
		}()
	}
	wg.Wait()
	store.Flush()

	if got := store.Count(); got != 200 {
		t.Fatalf("expected count 200, got %d", got)
	}
	if got := len(store.Items()); got != 1 {
		t.Fatalf("expected a single merged line, got %d", got)
	}
}

func TestManagerReturnsSameStorePerSession(t *testing.T) {
	manager, err := NewManager(ManagerDeps{
		StorageFactory: func(sessionID string) (Storage, error) {
			return &stubStorage{result: ReadResult{Status: StatusEmpty}}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	ctx := context.Background()
	first, err := manager.Store(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if !first.Hydrated() {
		t.Fatalf("store must be hydrated on first access")
	}

	second, err := manager.Store(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same store for the same session")
	}

	other, err := manager.Store(ctx, "sess-2")
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if other == first {
		t.Fatalf("expected distinct stores for distinct sessions")
	}
}

func TestManagerRejectsEmptySession(t *testing.T) {
	manager, err := NewManager(ManagerDeps{
		StorageFactory: func(sessionID string) (Storage, error) {
			return &stubStorage{}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	if _, err := manager.Store(context.Background(), "  "); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}
