package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/indiepro/indiepro/internal/platform/db"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

// Store is the persistence surface the service depends on.
type Store interface {
	FindByUserID(ctx context.Context, userID string) (*Entitlement, error)
	FindUserByID(ctx context.Context, userID string) (*users.User, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	FindOrCreateUser(ctx context.Context, email string) (*users.User, error)
	FindUserByEmail(ctx context.Context, email string) (*users.User, error)
	UpsertActive(ctx context.Context, userID, purchaseSessionID string, at time.Time) (*Entitlement, error)
	SetStatus(ctx context.Context, userID, status string, at time.Time) (*Entitlement, error)
}

// Repository provides PostgreSQL backed persistence for entitlements.
type Repository struct {
	pool  db.Pool
	users *users.Repository
}

// NewRepository constructs a repository.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{pool: pool, users: users.NewRepository(pool)}
}

type txRepo struct {
	tx    pgx.Tx
	users *users.Repository
}

// txAttempts bounds how often a transaction colliding with a concurrent
// writer for the same email or user is replayed.
const txAttempts = 3

// WithTx wraps callback in a repeatable-read transaction. The callback may run
// more than once when Postgres reports a serialization failure.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxRetry(ctx, r.pool, txAttempts, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, users: r.users.WithQuerier(tx)})
	})
}

const entitlementColumns = `id, user_id, status, purchase_session_id, purchased_at, created_at, updated_at`

// FindByUserID returns the user's entitlement or shared.ErrNotFound.
func (r *Repository) FindByUserID(ctx context.Context, userID string) (*Entitlement, error) {
	return scanEntitlement(r.pool.QueryRow(ctx,
		`SELECT `+entitlementColumns+` FROM entitlements WHERE user_id = $1`, userID))
}

// FindUserByID fetches the owning user.
func (r *Repository) FindUserByID(ctx context.Context, userID string) (*users.User, error) {
	return r.users.FindByID(ctx, userID)
}

func (t *txRepo) FindOrCreateUser(ctx context.Context, email string) (*users.User, error) {
	return t.users.FindOrCreate(ctx, email)
}

func (t *txRepo) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return t.users.FindByEmail(ctx, email)
}

// UpsertActive activates the user's single entitlement row. Replaying the
// same purchase session keeps the original purchased_at and never lifts a
// revocation; the stored row is returned unchanged in that case.
func (t *txRepo) UpsertActive(ctx context.Context, userID, purchaseSessionID string, at time.Time) (*Entitlement, error) {
	ent, err := scanEntitlement(t.tx.QueryRow(ctx, `
		INSERT INTO entitlements (user_id, status, purchase_session_id, purchased_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			purchased_at = CASE
				WHEN entitlements.purchase_session_id = EXCLUDED.purchase_session_id THEN entitlements.purchased_at
				ELSE EXCLUDED.purchased_at
			END,
			purchase_session_id = EXCLUDED.purchase_session_id,
			updated_at = EXCLUDED.updated_at
		WHERE NOT (lower(entitlements.status) = $5
			AND entitlements.purchase_session_id = EXCLUDED.purchase_session_id)
		RETURNING `+entitlementColumns,
		userID, StatusActive, purchaseSessionID, at, StatusRevoked))
	if !errors.Is(err, shared.ErrNotFound) {
		return ent, err
	}
	return scanEntitlement(t.tx.QueryRow(ctx,
		`SELECT `+entitlementColumns+` FROM entitlements WHERE user_id = $1`, userID))
}

// SetStatus changes the status of an existing entitlement.
func (t *txRepo) SetStatus(ctx context.Context, userID, status string, at time.Time) (*Entitlement, error) {
	return scanEntitlement(t.tx.QueryRow(ctx,
		`UPDATE entitlements SET status = $2, updated_at = $3 WHERE user_id = $1 RETURNING `+entitlementColumns,
		userID, status, at))
}

func scanEntitlement(row pgx.Row) (*Entitlement, error) {
	var e Entitlement
	if err := row.Scan(&e.ID, &e.UserID, &e.Status, &e.PurchaseSessionID, &e.PurchasedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("entitlement: scan: %w", err)
	}
	return &e, nil
}

var _ Store = (*Repository)(nil)
