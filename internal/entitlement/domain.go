package entitlement

import (
	"errors"
	"strings"
	"time"

	"github.com/indiepro/indiepro/internal/users"
)

// Entitlement statuses. Writes always use these literals.
const (
	StatusActive  = "active"
	StatusRevoked = "revoked"
)

// Entitlement records that a user paid for full access.
type Entitlement struct {
	ID                int64
	UserID            string
	Status            string
	PurchaseSessionID string
	PurchasedAt       time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Grant is the outcome of a reconciliation.
type Grant struct {
	User        *users.User
	Entitlement *Entitlement
}

// Reconciliation failures. These are integration errors and must surface.
var (
	ErrMissingSessionID     = errors.New("entitlement: purchase session id required")
	ErrCheckoutLookup       = errors.New("entitlement: checkout session lookup failed")
	ErrMissingCustomerEmail = errors.New("entitlement: checkout session has no customer email")
	ErrCheckoutNotPaid      = errors.New("entitlement: checkout session is not paid")
)

// IsUnlocked reports whether e grants access. Status comparison ignores case
// so rows written as "ACTIVE" are treated the same as "active".
func IsUnlocked(e *Entitlement) bool {
	return e != nil && strings.EqualFold(strings.TrimSpace(e.Status), StatusActive)
}
