package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/shamanicca/storefront/internal/domain"
)

const cartCollection = "carts"

// FirestoreStorage persists a session's cart items in a single document under
// the carts collection. It implements the same fail-open read contract as the
// file backend: a missing or undecodable document hydrates as an empty cart.
type FirestoreStorage struct {
	client *firestore.Client
	docID  string
}

type cartDocument struct {
	Items     []cartItemDocument `firestore:"items"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type cartItemDocument struct {
	Key      string              `firestore:"key"`
	Product  cartProductDocument `firestore:"product"`
	Quantity int                 `firestore:"qty"`
	Size     string              `firestore:"size,omitempty"`
}

type cartProductDocument struct {
	ID       string `firestore:"id"`
	Name     string `firestore:"name"`
	Slug     string `firestore:"slug"`
	Price    int64  `firestore:"price"`
	ImageURL string `firestore:"imageUrl,omitempty"`
}

// NewFirestoreStorage constructs firestore-backed storage for one session.
func NewFirestoreStorage(client *firestore.Client, sessionID string) (*FirestoreStorage, error) {
	if client == nil {
		return nil, errors.New("cart: firestore client is required")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("cart: session id is required")
	}
	return &FirestoreStorage{client: client, docID: sessionID}, nil
}

// Read fetches the session document. NotFound is StatusEmpty; transport or
// decode failures are StatusCorrupt. Read never returns an error.
func (s *FirestoreStorage) Read(ctx context.Context) ReadResult {
	if s == nil || s.client == nil {
		return ReadResult{Status: StatusEmpty}
	}

	snap, err := s.client.Collection(cartCollection).Doc(s.docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ReadResult{Status: StatusEmpty}
		}
		return ReadResult{Status: StatusCorrupt, Err: err}
	}

	var doc cartDocument
	if err := snap.DataTo(&doc); err != nil {
		return ReadResult{Status: StatusCorrupt, Err: err}
	}

	items := make([]domain.CartItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.CartItem{
			Key: item.Key,
			Product: domain.CartProduct{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Slug:     item.Product.Slug,
				Price:    item.Product.Price,
				ImageURL: item.Product.ImageURL,
			},
			Quantity: item.Quantity,
			Options:  domain.CartItemOptions{Size: item.Size},
		})
	}
	return ReadResult{Status: StatusOK, Items: NormaliseItems(items)}
}

// Write replaces the session document with the full item collection.
func (s *FirestoreStorage) Write(ctx context.Context, items []domain.CartItem) error {
	if s == nil || s.client == nil {
		return errors.New("cart: firestore storage not initialised")
	}

	docs := make([]cartItemDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, cartItemDocument{
			Key: item.Key,
			Product: cartProductDocument{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Slug:     item.Product.Slug,
				Price:    item.Product.Price,
				ImageURL: item.Product.ImageURL,
			},
			Quantity: item.Quantity,
			Size:     item.Options.Size,
		})
	}

	_, err := s.client.Collection(cartCollection).Doc(s.docID).Set(ctx, cartDocument{
		Items:     docs,
		UpdatedAt: time.Now().UTC(),
	})
	return err
}
