package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	domain "github.com/shamanicca/storefront/internal/domain"
)

var errStorageRequired = errors.New("cart: storage is required")

// Snapshot is the read model handed to consumers and subscribers. Items are
// copies; mutating a snapshot never affects the store.
type Snapshot struct {
	Items    []domain.CartItem
	Hydrated bool
	Count    int
	Subtotal int64
}

// Store is the authoritative cart state container for one session. All
// mutations go through its methods; persistence happens after every applied
// mutation and never blocks or reverts the in-memory state. The zero value is
// not usable; construct with NewStore.
type Store struct {
	mu       sync.Mutex
	items    []domain.CartItem
	index    map[string]int
	hydrated bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	gen uint64

	persistMu   sync.Mutex
	persistedUp uint64
	persistWG   sync.WaitGroup

	storage Storage
	logger  *zap.Logger
}

// StoreDeps wires the dependencies for a cart store.
type StoreDeps struct {
	Storage Storage
	Logger  *zap.Logger
}

// NewStore constructs an empty, not-yet-hydrated store.
func NewStore(deps StoreDeps) (*Store, error) {
	if deps.Storage == nil {
		return nil, errStorageRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		items:   []domain.CartItem{},
		index:   map[string]int{},
		subs:    map[int]func(Snapshot){},
		storage: deps.Storage,
		logger:  logger,
	}, nil
}

// Hydrate performs the one-time read of durable storage. The hydrated flag
// flips to true exactly once, regardless of the read outcome; a corrupt or
// missing payload hydrates as an empty cart. Items already added before
// hydration are preserved: restored lines come first, then the merge law
// collapses any duplicate keys.
func (s *Store) Hydrate(ctx context.Context) {
	result := s.storage.Read(ctx)
	if result.Status == StatusCorrupt {
		s.logger.Warn("cart storage read failed, hydrating empty",
			zap.Error(result.Err),
		)
	}

	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.hydrated = true

	if len(result.Items) > 0 {
		pending := s.items
		s.items = make([]domain.CartItem, 0, len(result.Items)+len(pending))
		s.index = make(map[string]int, len(result.Items)+len(pending))
		for _, item := range result.Items {
			s.appendOrMergeLocked(item)
		}
		for _, item := range pending {
			s.appendOrMergeLocked(item)
		}
	}
	snapshot := s.snapshotLocked()
	gen := s.nextGenLocked()
	s.mu.Unlock()

	s.persist(snapshot.Items, gen)
	s.notify(snapshot)
}

// AddItem records quantity units of the product+variant. Lines with the same
// composite key merge by summing quantities; new keys append, preserving
// insertion order. A non-positive quantity is corrected to one; an empty
// product ID is ignored.
func (s *Store) AddItem(product domain.CartProduct, quantity int, opts domain.CartItemOptions) {
	if strings.TrimSpace(product.ID) == "" {
		s.logger.Warn("cart add ignored: missing product id")
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	key := domain.CartItemKey(product.ID, opts.Size)

	s.mu.Lock()
	if at, ok := s.index[key]; ok {
		s.items[at].Quantity += quantity
	} else {
		s.index[key] = len(s.items)
		s.items = append(s.items, domain.CartItem{
			Key:      key,
			Product:  product,
			Quantity: quantity,
			Options:  opts,
		})
	}
	snapshot := s.snapshotLocked()
	gen := s.nextGenLocked()
	s.mu.Unlock()

	s.persist(snapshot.Items, gen)
	s.notify(snapshot)
}

// RemoveItem deletes the line with the given key. An absent key is a no-op,
// never an error.
func (s *Store) RemoveItem(key string) {
	s.mu.Lock()
	at, ok := s.index[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:at], s.items[at+1:]...)
	delete(s.index, key)
	for i := at; i < len(s.items); i++ {
		s.index[s.items[i].Key] = i
	}
	snapshot := s.snapshotLocked()
	gen := s.nextGenLocked()
	s.mu.Unlock()

	s.persist(snapshot.Items, gen)
	s.notify(snapshot)
}

// UpdateQty sets the quantity for the matching line, flooring non-positive
// input at one. An absent key is a no-op.
func (s *Store) UpdateQty(key string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	at, ok := s.index[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.items[at].Quantity = quantity
	snapshot := s.snapshotLocked()
	gen := s.nextGenLocked()
	s.mu.Unlock()

	s.persist(snapshot.Items, gen)
	s.notify(snapshot)
}

// Clear empties the collection.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = []domain.CartItem{}
	s.index = map[string]int{}
	snapshot := s.snapshotLocked()
	gen := s.nextGenLocked()
	s.mu.Unlock()

	s.persist(snapshot.Items, gen)
	s.notify(snapshot)
}

// Items returns the lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Hydrated reports whether the one-time storage read has completed.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Count is the sum of quantities across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countLocked(s.items)
}

// Subtotal is the sum of quantity times unit price across all lines, in minor
// currency units.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotalLocked(s.items)
}

// Snapshot returns the full read model in one call.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers an observer invoked with a fresh snapshot after every
// applied mutation and after hydration. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Flush waits for in-flight persistence writes to settle. Used at shutdown
// and in tests; callers on the mutation path never wait.
func (s *Store) Flush() {
	s.persistWG.Wait()
}

func (s *Store) nextGenLocked() uint64 {
	s.gen++
	return s.gen
}

func (s *Store) appendOrMergeLocked(item domain.CartItem) {
	if at, ok := s.index[item.Key]; ok {
		s.items[at].Quantity += item.Quantity
		return
	}
	s.index[item.Key] = len(s.items)
	s.items = append(s.items, item)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:    copyItems(s.items),
		Hydrated: s.hydrated,
		Count:    countLocked(s.items),
		Subtotal: subtotalLocked(s.items),
	}
}

// persist writes the item collection in the background. The generation number
// is assigned on the mutation path while the state lock is held; a write whose
// generation has already been superseded by a later write is skipped, so an
// older snapshot can never overwrite a newer one. Failures are logged and
// discarded, the in-memory state stays authoritative.
func (s *Store) persist(items []domain.CartItem, gen uint64) {
	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()
		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		if gen <= s.persistedUp {
			return
		}
		s.persistedUp = gen
		if err := s.storage.Write(context.Background(), items); err != nil {
			s.logger.Warn("cart storage write failed", zap.Error(err))
		}
	}()
}

func (s *Store) notify(snapshot Snapshot) {
	s.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func copyItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func countLocked(items []domain.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func subtotalLocked(items []domain.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}
