package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/indiepro/indiepro/internal/platform/db"
	"github.com/indiepro/indiepro/internal/shared"
)

// Repository provides PostgreSQL backed persistence. It runs against a pool
// or, via WithQuerier, inside a caller's transaction.
type Repository struct {
	q     db.Querier
	now   func() time.Time
	newID func() string
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{
		q:     q,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// WithQuerier returns a copy bound to q, typically a pgx.Tx.
func (r *Repository) WithQuerier(q db.Querier) *Repository {
	clone := *r
	clone.q = q
	return &clone
}

// FindOrCreate returns the user for email, inserting it when absent. An
// existing row is never modified.
func (r *Repository) FindOrCreate(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	now := r.now()
	_, err := r.q.Exec(ctx,
		`INSERT INTO users (id, email, created_at, updated_at) VALUES ($1, $2, $3, $3)
		 ON CONFLICT (email) DO NOTHING`,
		r.newID(), email, now)
	if err != nil {
		return nil, fmt.Errorf("users: upsert: %w", err)
	}
	return r.FindByEmail(ctx, email)
}

// FindByEmail fetches a user by normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.q.QueryRow(ctx,
		`SELECT id, email, created_at, updated_at FROM users WHERE email = $1`,
		NormalizeEmail(email))
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.q.QueryRow(ctx,
		`SELECT id, email, created_at, updated_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: scan: %w", err)
	}
	return &u, nil
}
