// Package checkout talks to the payment provider's hosted checkout.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ProductName is shown on the hosted checkout page.
const ProductName = "Independent Pro Business Platform"

// ErrNotConfigured is returned when no provider key is set.
var ErrNotConfigured = errors.New("checkout: payment provider not configured")

// Session is the provider-neutral view of a checkout session.
type Session struct {
	ID                string
	URL               string
	Paid              bool
	CustomerEmail     string
	ClientReferenceID string
}

// CreateParams describes a new one-time purchase.
type CreateParams struct {
	Email       string
	UserID      string
	AmountCents int64
	SuccessURL  string
	CancelURL   string
}

// Gateway creates and retrieves checkout sessions.
type Gateway interface {
	CreateSession(ctx context.Context, params CreateParams) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// StripeGateway implements Gateway on Stripe Checkout.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway constructs a gateway. An empty key yields a gateway that
// fails every call with ErrNotConfigured.
func NewStripeGateway(secretKey string) *StripeGateway {
	if strings.TrimSpace(secretKey) == "" {
		return &StripeGateway{}
	}
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// CreateSession opens a hosted payment page for a single unlock purchase.
func (g *StripeGateway) CreateSession(ctx context.Context, p CreateParams) (*Session, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(ProductName),
				},
				UnitAmount: stripe.Int64(p.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}
	if p.UserID != "" {
		params.ClientReferenceID = stripe.String(p.UserID)
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("checkout: create session: %w", err)
	}
	return fromStripe(s), nil
}

// GetSession retrieves a session by id.
func (g *StripeGateway) GetSession(ctx context.Context, id string) (*Session, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("checkout: get session %s: %w", id, err)
	}
	return fromStripe(s), nil
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:                s.ID,
		URL:               s.URL,
		Paid:              s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		ClientReferenceID: s.ClientReferenceID,
	}
	out.CustomerEmail = ResolveEmail(s)
	return out
}

// ResolveEmail prefers the email the customer typed at checkout over the
// prefilled one.
func ResolveEmail(s *stripe.CheckoutSession) string {
	if s == nil {
		return ""
	}
	if s.CustomerDetails != nil && strings.TrimSpace(s.CustomerDetails.Email) != "" {
		return s.CustomerDetails.Email
	}
	return s.CustomerEmail
}

// SuccessURL builds the provider redirect target for baseURL.
func SuccessURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL builds the cancel redirect target for baseURL.
func CancelURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/unlock"
}

var _ Gateway = (*StripeGateway)(nil)
