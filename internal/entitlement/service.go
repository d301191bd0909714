package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/indiepro/indiepro/internal/checkout"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

// Metrics receives reconciliation outcomes.
type Metrics interface {
	Reconciliation(outcome string)
}

// ServiceConfig carries optional collaborators for Service.
type ServiceConfig struct {
	BaseURL     string
	AmountCents int64
	Metrics     Metrics
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Service resolves and grants paid access.
type Service struct {
	store   Store
	gateway checkout.Gateway
	cfg     ServiceConfig
	logger  *slog.Logger
	now     func() time.Time
	grants  singleflight.Group
}

// NewService constructs a Service.
func NewService(store Store, gateway checkout.Gateway, cfg ServiceConfig) *Service {
	s := &Service{store: store, gateway: gateway, cfg: cfg, logger: cfg.Logger, now: cfg.Clock}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Lookup returns the user's entitlement, or nil when none exists.
func (s *Service) Lookup(ctx context.Context, userID string) (*Entitlement, error) {
	ent, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ent, nil
}

// IsUnlocked reports whether userID holds an active entitlement.
func (s *Service) IsUnlocked(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ent, err := s.Lookup(ctx, userID)
	if err != nil {
		return false, err
	}
	return IsUnlocked(ent), nil
}

// StartCheckout opens a hosted checkout and returns its redirect URL.
func (s *Service) StartCheckout(ctx context.Context, email, userID string) (string, error) {
	sess, err := s.gateway.CreateSession(ctx, checkout.CreateParams{
		Email:       users.NormalizeEmail(email),
		UserID:      userID,
		AmountCents: s.cfg.AmountCents,
		SuccessURL:  checkout.SuccessURL(s.cfg.BaseURL),
		CancelURL:   checkout.CancelURL(s.cfg.BaseURL),
	})
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// Reconcile grants access for a completed checkout. It is safe to call
// repeatedly with the same purchase session id.
func (s *Service) Reconcile(ctx context.Context, purchaseSessionID string) (*Grant, error) {
	purchaseSessionID = strings.TrimSpace(purchaseSessionID)
	if purchaseSessionID == "" {
		return nil, ErrMissingSessionID
	}
	sess, err := s.gateway.GetSession(ctx, purchaseSessionID)
	if err != nil {
		s.observe("lookup_failed")
		return nil, fmt.Errorf("%w: %w", ErrCheckoutLookup, err)
	}
	email := users.NormalizeEmail(sess.CustomerEmail)
	if email == "" {
		s.observe("missing_email")
		return nil, fmt.Errorf("%w: session %s", ErrMissingCustomerEmail, purchaseSessionID)
	}
	if !sess.Paid {
		s.observe("not_paid")
		return nil, fmt.Errorf("%w: session %s", ErrCheckoutNotPaid, purchaseSessionID)
	}
	return s.Grant(ctx, email, purchaseSessionID)
}

// Grant activates the entitlement for email in one transaction, creating the
// user when needed. Concurrent calls for the same purchase share one write.
// A revoked entitlement stays revoked when the same purchase is replayed.
func (s *Service) Grant(ctx context.Context, email, purchaseSessionID string) (*Grant, error) {
	email = users.NormalizeEmail(email)
	if err := users.ValidateEmail(email); err != nil {
		return nil, err
	}
	if purchaseSessionID == "" {
		return nil, ErrMissingSessionID
	}
	// The shared write outlives any single caller's request.
	detached := context.WithoutCancel(ctx)
	v, err, collapsed := s.grants.Do(email+"|"+purchaseSessionID, func() (any, error) {
		return s.grant(detached, email, purchaseSessionID)
	})
	if err != nil {
		s.observe("error")
		return nil, err
	}
	if collapsed {
		s.logger.Debug("entitlement grant collapsed", slog.String("session", purchaseSessionID))
	}
	g := v.(*Grant)
	if !IsUnlocked(g.Entitlement) {
		s.observe("revoked")
		s.logger.Warn("entitlement replay of revoked purchase",
			slog.String("user_id", g.User.ID),
			slog.String("session", purchaseSessionID))
		return g, nil
	}
	s.observe("granted")
	s.logger.Info("entitlement granted",
		slog.String("user_id", g.User.ID),
		slog.String("session", purchaseSessionID))
	return g, nil
}

// Reinstate is the operator path: it grants like Grant and then lifts a
// revocation left on the same purchase.
func (s *Service) Reinstate(ctx context.Context, email, purchaseSessionID string) (*Grant, error) {
	email = users.NormalizeEmail(email)
	if err := users.ValidateEmail(email); err != nil {
		return nil, err
	}
	if purchaseSessionID == "" {
		return nil, ErrMissingSessionID
	}
	var out Grant
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		user, err := tx.FindOrCreateUser(ctx, email)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		ent, err := tx.UpsertActive(ctx, user.ID, purchaseSessionID, now)
		if err != nil {
			return err
		}
		if !IsUnlocked(ent) {
			if ent, err = tx.SetStatus(ctx, user.ID, StatusActive, now); err != nil {
				return err
			}
		}
		out = Grant{User: user, Entitlement: ent}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("entitlement: reinstate %s: %w", email, err)
	}
	s.logger.Info("entitlement reinstated",
		slog.String("user_id", out.User.ID),
		slog.String("session", purchaseSessionID))
	return &out, nil
}

func (s *Service) grant(ctx context.Context, email, purchaseSessionID string) (*Grant, error) {
	var out Grant
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		user, err := tx.FindOrCreateUser(ctx, email)
		if err != nil {
			return err
		}
		ent, err := tx.UpsertActive(ctx, user.ID, purchaseSessionID, s.now().UTC())
		if err != nil {
			return err
		}
		out = Grant{User: user, Entitlement: ent}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("entitlement: grant %s: %w", email, err)
	}
	return &out, nil
}

// Revoke marks the entitlement of email as revoked.
func (s *Service) Revoke(ctx context.Context, email string) (*Entitlement, error) {
	email = users.NormalizeEmail(email)
	var out *Entitlement
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		user, err := tx.FindUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		out, err = tx.SetStatus(ctx, user.ID, StatusRevoked, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) observe(outcome string) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.Reconciliation(outcome)
	}
}
