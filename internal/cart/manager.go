package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// StorageFactory builds the durable backend for one session's cart.
type StorageFactory func(sessionID string) (Storage, error)

var (
	errStorageFactoryRequired = errors.New("cart: storage factory is required")
	// ErrSessionRequired is returned when a caller asks for a cart without a
	// session identifier.
	ErrSessionRequired = errors.New("cart: session id is required")
)

// Manager hands out one Store per session, creating and hydrating it on first
// use. Stores live for the process lifetime; durable state is what survives
// restarts.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	factory StorageFactory
	logger  *zap.Logger
}

// ManagerDeps wires the dependencies for a cart manager.
type ManagerDeps struct {
	StorageFactory StorageFactory
	Logger         *zap.Logger
}

// NewManager constructs a cart manager.
func NewManager(deps ManagerDeps) (*Manager, error) {
	if deps.StorageFactory == nil {
		return nil, errStorageFactoryRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		stores:  map[string]*Store{},
		factory: deps.StorageFactory,
		logger:  logger,
	}, nil
}

// Store returns the cart for the session, hydrating it from durable storage
// on first access.
func (m *Manager) Store(ctx context.Context, sessionID string) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	m.mu.Lock()
	if store, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return store, nil
	}
	m.mu.Unlock()

	storage, err := m.factory(sessionID)
	if err != nil {
		return nil, err
	}
	store, err := NewStore(StoreDeps{
		Storage: storage,
		Logger:  m.logger.With(zap.String("cart_session", sessionID)),
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.stores[sessionID] = store
	m.mu.Unlock()

	store.Hydrate(ctx)
	return store, nil
}

// Flush waits for every store's in-flight persistence writes to settle.
func (m *Manager) Flush() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, store := range m.stores {
		stores = append(stores, store)
	}
	m.mu.Unlock()

	for _, store := range stores {
		store.Flush()
	}
}
