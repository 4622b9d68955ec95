// Package checkout turns a cart into a hosted Stripe Checkout session.
package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"

	domain "github.com/shamanicca/storefront/internal/domain"
	"github.com/shamanicca/storefront/internal/platform/textutil"
)

var (
	// ErrEmptyCart is returned when checkout is requested for a cart with no
	// lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrProviderFailed wraps payment provider errors.
	ErrProviderFailed = errors.New("checkout: payment provider failed")
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// ServiceDeps bundles constructor inputs for the checkout service. Sessions
// overrides the Stripe client in tests.
type ServiceDeps struct {
	APIKey     string
	Currency   string
	SuccessURL string
	CancelURL  string
	Logger     *zap.Logger
	Clock      func() time.Time
	Sessions   stripeSessionAPI
}

// Service creates Stripe Checkout sessions from cart snapshots.
type Service struct {
	sessions   stripeSessionAPI
	currency   string
	successURL string
	cancelURL  string
	logger     *zap.Logger
	clock      func() time.Time
}

// NewService constructs the checkout service.
func NewService(deps ServiceDeps) (*Service, error) {
	apiKey := strings.TrimSpace(deps.APIKey)
	if apiKey == "" && deps.Sessions == nil {
		return nil, errors.New("checkout: stripe api key is required")
	}
	if strings.TrimSpace(deps.SuccessURL) == "" || strings.TrimSpace(deps.CancelURL) == "" {
		return nil, errors.New("checkout: success and cancel urls are required")
	}

	sessions := deps.Sessions
	if sessions == nil {
		sc := client.New(apiKey, nil)
		sessions = sc.CheckoutSessions
	}

	currency := strings.ToLower(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "usd"
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		sessions:   sessions,
		currency:   currency,
		successURL: strings.TrimSpace(deps.SuccessURL),
		cancelURL:  strings.TrimSpace(deps.CancelURL),
		logger:     logger,
		clock:      func() time.Time { return clock().UTC() },
	}, nil
}

// Session is the storefront's view of a created checkout session.
type Session struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	RedirectURL string    `json:"redirectUrl"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// CreateSession builds a Stripe Checkout session for the cart lines. The
// returned reference is the storefront's own order handle, carried through
// Stripe metadata so webhooks and support can correlate.
func (s *Service) CreateSession(ctx context.Context, sessionID string, items []domain.CartItem) (Session, error) {
	if len(items) == 0 {
		return Session{}, ErrEmptyCart
	}

	reference := newReference(s.clock())

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		Metadata: textutil.NormalizeStringMap(map[string]string{
			"reference":    reference,
			"cart_session": sessionID,
		}),
	}
	params.Context = ctx
	params.SetIdempotencyKey(reference)

	var total int64
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		quantity := int64(item.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		name := item.Product.Name
		if size := strings.TrimSpace(item.Options.Size); size != "" {
			name = fmt.Sprintf("%s (%s)", name, size)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(item.Product.Price),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(name),
					Metadata: map[string]string{"product_id": item.Product.ID},
				},
			},
		})
		total += item.Product.Price * quantity
	}
	params.LineItems = lineItems

	created, err := s.sessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	expiresAt := s.clock().Add(30 * time.Minute)
	if created.ExpiresAt != 0 {
		expiresAt = time.Unix(created.ExpiresAt, 0).UTC()
	}

	s.logger.Info("checkout session created",
		zap.String("stripe_session", created.ID),
		zap.String("reference", reference),
		zap.Int64("amount", total),
	)

	return Session{
		ID:          created.ID,
		Reference:   reference,
		RedirectURL: created.URL,
		Amount:      total,
		Currency:    s.currency,
		ExpiresAt:   expiresAt,
	}, nil
}

func newReference(now time.Time) string {
	return "ord_" + ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}
