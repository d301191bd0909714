package checkout

import (
	"context"
	"testing"

	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmailPrefersCustomerDetails(t *testing.T) {
	s := &stripe.CheckoutSession{
		CustomerEmail:   "prefill@example.com",
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{Email: "typed@example.com"},
	}
	assert.Equal(t, "typed@example.com", ResolveEmail(s))

	s.CustomerDetails.Email = "  "
	assert.Equal(t, "prefill@example.com", ResolveEmail(s))

	assert.Empty(t, ResolveEmail(&stripe.CheckoutSession{}))
	assert.Empty(t, ResolveEmail(nil))
}

func TestFromStripePaidStatus(t *testing.T) {
	paid := fromStripe(&stripe.CheckoutSession{ID: "cs_1", PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid})
	assert.True(t, paid.Paid)

	unpaid := fromStripe(&stripe.CheckoutSession{ID: "cs_2", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid})
	assert.False(t, unpaid.Paid)
}

func TestRedirectURLs(t *testing.T) {
	assert.Equal(t, "https://ipp.test/checkout/success?session_id={CHECKOUT_SESSION_ID}", SuccessURL("https://ipp.test/"))
	assert.Equal(t, "https://ipp.test/unlock", CancelURL("https://ipp.test"))
}

func TestUnconfiguredGateway(t *testing.T) {
	g := NewStripeGateway("")
	_, err := g.GetSession(context.Background(), "cs_1")
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = g.CreateSession(context.Background(), CreateParams{})
	require.ErrorIs(t, err, ErrNotConfigured)
}
